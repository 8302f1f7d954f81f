package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 answers path-style requests for bucket "atlas" under prefix
// "primview". Objects not listed return a bare 404.
type fakeS3 struct {
	objects map[string]string // key -> body
	broken  map[string]bool   // key -> answer 500

	mu    sync.Mutex
	heads map[string]int
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/atlas/")
	if r.Method == http.MethodHead {
		f.mu.Lock()
		f.heads[key]++
		f.mu.Unlock()
	}
	if f.broken[key] {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	body, ok := f.objects[key]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("Last-Modified", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).Format(http.TimeFormat))
	w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write([]byte(body))
	}
}

func (f *fakeS3) headCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.heads[key]
}

func newFakeS3(t *testing.T, objects map[string]string, broken ...string) (*fakeS3, *MinioSource) {
	t.Helper()
	f := &fakeS3{objects: objects, broken: map[string]bool{}, heads: map[string]int{}}
	for _, k := range broken {
		f.broken[k] = true
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	src, err := NewMinioSource(S3Options{
		Endpoint:   strings.TrimPrefix(srv.URL, "http://"),
		Bucket:     "atlas",
		Prefix:     "primview",
		Region:     "us-east-1",
		MaxRetries: 1,
	})
	require.NoError(t, err)
	return f, src
}

func TestMinioSource_StatOutcomes(t *testing.T) {
	s3, src := newFakeS3(t, map[string]string{
		"primview/assets/png/FMA1.png": "png",
	}, "primview/assets/png/FMA500.png")
	ctx := context.Background()

	ok, err := src.Probe(ctx, Image, "FMA1.png")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = src.Probe(ctx, Image, "FMA2.png")
	require.NoError(t, err, "a missing object is an answer, not an error")
	assert.False(t, ok)

	ok, err = src.Probe(ctx, Image, "FMA500.png")
	assert.Error(t, err)
	assert.False(t, isNotFound(err))
	assert.False(t, ok)

	assert.Equal(t, 1, s3.headCount("primview/assets/png/FMA1.png"))
}

func TestMinioSource_ResolverFallsBackWithoutManifest(t *testing.T) {
	s3, src := newFakeS3(t, map[string]string{
		"primview/assets/png/FMA1.png": "png",
	}, "primview/assets/png/FMA500.png")
	r := NewResolver(src)
	ctx := context.Background()

	for range 2 {
		assert.True(t, r.Available(ctx, Image, "FMA1.png"))
		assert.False(t, r.Available(ctx, Image, "FMA2.png"))
		assert.False(t, r.Available(ctx, Image, "FMA500.png"))
	}

	for _, key := range []string{
		"primview/assets/png/FMA1.png",
		"primview/assets/png/FMA2.png",
		"primview/assets/png/FMA500.png",
	} {
		assert.Equal(t, 1, s3.headCount(key), key)
	}
	st := r.Stats()
	assert.True(t, st.ManifestFailed)
	assert.Equal(t, 1, st.Positive[Image])
	assert.Equal(t, 2, st.Negative[Image])
	assert.Equal(t, int64(3), st.Probes)
}

func TestMinioSource_ManifestIsAuthoritative(t *testing.T) {
	s3, src := newFakeS3(t, map[string]string{
		"primview/assets/manifest.json": `{"png": ["FMA1.png"], "stl": ["FMA1.stl"]}`,
		"primview/assets/png/FMA2.png":  "png",
	})
	r := NewResolver(src)
	ctx := context.Background()

	assert.True(t, r.Available(ctx, Image, "FMA1.png"))
	assert.True(t, r.Available(ctx, Model, "FMA1.stl"))
	assert.False(t, r.Available(ctx, Image, "FMA2.png"))

	assert.Equal(t, 0, s3.headCount("primview/assets/png/FMA2.png"))
	assert.False(t, r.Stats().ManifestFailed)
}
