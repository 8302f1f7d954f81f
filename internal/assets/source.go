package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Source is the transport behind a Resolver.
//
// Probe reports whether a single file exists without transferring its body.
// A non-nil error means the answer is unknown; the resolver treats it as
// absent.
type Source interface {
	FetchManifest(ctx context.Context) ([]byte, error)
	Probe(ctx context.Context, c Class, fileName string) (bool, error)
}

// maxManifestSize caps the manifest body read from any source.
const maxManifestSize = 16 << 20

// HTTPOptions configures an HTTPSource.
type HTTPOptions struct {
	// Timeout per request (default 15s).
	Timeout time.Duration
	// ProbeRate caps probes per second; 0 disables the limit.
	ProbeRate float64
	// ProbeBurst is the limiter burst (default 4).
	ProbeBurst int
	// Transport allows injecting a custom round tripper.
	Transport http.RoundTripper
}

// HTTPSource serves assets from a static web root.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPSource returns a source rooted at baseURL, e.g. https://example.org/atlas.
func NewHTTPSource(baseURL string, opts HTTPOptions) *HTTPSource {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.ProbeBurst <= 0 {
		opts.ProbeBurst = 4
	}
	s := &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: opts.Timeout, Transport: opts.Transport},
	}
	if opts.ProbeRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.ProbeRate), opts.ProbeBurst)
	}
	return s
}

func (s *HTTPSource) url(rel string) string {
	return s.baseURL + "/" + rel
}

// FetchManifest GETs <base>/assets/manifest.json.
func (s *HTTPSource) FetchManifest(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url(ManifestPath), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("manifest request failed: HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxManifestSize))
}

// Probe issues HEAD <base>/assets/<class>/<fileName>.
func (s *HTTPSource) Probe(ctx context.Context, c Class, fileName string) (bool, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return false, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.url(c.Path(fileName)), nil)
	if err != nil {
		return false, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

// DirSource serves assets from a local directory laid out like the web root.
type DirSource struct {
	root string
}

// NewDirSource returns a source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{root: dir}
}

func (s *DirSource) FetchManifest(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := filepath.Join(s.root, filepath.FromSlash(ManifestPath))
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("cannot read manifest %s: %w", p, err)
	}
	return b, nil
}

func (s *DirSource) Probe(ctx context.Context, c Class, fileName string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if strings.ContainsAny(fileName, `/\`) {
		return false, nil
	}
	info, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(c.Path(fileName))))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}
