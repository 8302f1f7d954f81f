package assets

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type fileSet map[string]struct{}

func (s fileSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

// Resolver answers "does this asset file exist" for the whole process.
//
// The manifest is fetched once, on first use, and every caller waits on that
// same fetch. While the manifest is loaded it is the closed-world answer.
// If it fails to load, each file is probed once and the outcome (positive or
// negative) is kept for the life of the Resolver. Nothing is ever evicted.
type Resolver struct {
	src Source
	log *zap.Logger

	start sync.Once
	ready chan struct{}

	mu             sync.RWMutex
	manifestFailed bool
	authoritative  map[Class]fileSet
	positive       map[Class]fileSet
	negative       map[Class]fileSet

	flights singleflight.Group
	probes  atomic.Int64
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// NewResolver returns a resolver over src. Construct one per process and
// share it.
func NewResolver(src Source, opts ...Option) *Resolver {
	r := &Resolver{
		src:           src,
		log:           zap.NewNop(),
		ready:         make(chan struct{}),
		authoritative: make(map[Class]fileSet),
		positive:      make(map[Class]fileSet),
		negative:      make(map[Class]fileSet),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Warm starts the manifest fetch if it has not started yet and waits for it.
// It reports false when ctx ends first.
func (r *Resolver) Warm(ctx context.Context) bool {
	r.start.Do(func() {
		// The fetch outlives the first caller's cancellation: its outcome is
		// shared by every later caller.
		go r.loadManifest(context.WithoutCancel(ctx))
	})
	select {
	case <-r.ready:
		return true
	case <-ctx.Done():
		return false
	}
}

func (r *Resolver) loadManifest(ctx context.Context) {
	defer close(r.ready)

	b, err := r.src.FetchManifest(ctx)
	var m Manifest
	if err == nil {
		m, err = ParseManifest(b)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.manifestFailed = true
		r.log.Warn("asset manifest unavailable; falling back to per-file probes", zap.Error(err))
		return
	}
	for _, c := range Classes {
		set := make(fileSet)
		for _, name := range m.Files(c) {
			set[name] = struct{}{}
		}
		r.authoritative[c] = set
	}
	r.log.Debug("asset manifest loaded",
		zap.Int("png", len(r.authoritative[Image])),
		zap.Int("stl", len(r.authoritative[Model])))
}

// Available reports whether fileName exists for class c. It never fails:
// every error path answers false.
func (r *Resolver) Available(ctx context.Context, c Class, fileName string) bool {
	if fileName == "" {
		return false
	}
	if !r.Warm(ctx) {
		return false
	}

	if ok, known := r.lookup(c, fileName); known {
		return ok
	}

	key := string(c) + "/" + fileName
	// The probe runs detached so its answer can be cached for every caller;
	// each caller stops waiting when its own ctx ends.
	pctx := context.WithoutCancel(ctx)
	ch := r.flights.DoChan(key, func() (any, error) {
		// An earlier flight for the same key may have finished between the
		// lookup above and this call.
		if ok, known := r.lookup(c, fileName); known {
			return ok, nil
		}
		r.probes.Add(1)
		ok, err := r.src.Probe(pctx, c, fileName)
		if err != nil {
			r.log.Debug("asset probe failed", zap.String("class", string(c)), zap.String("file", fileName), zap.Error(err))
			ok = false
		}
		r.record(c, fileName, ok)
		return ok, nil
	})
	select {
	case res := <-ch:
		ok, _ := res.Val.(bool)
		return ok
	case <-ctx.Done():
		return false
	}
}

// lookup answers from the manifest or the probe caches. known is false when
// a probe is required.
func (r *Resolver) lookup(c Class, fileName string) (ok, known bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.manifestFailed {
		return r.authoritative[c].has(fileName), true
	}
	if r.positive[c].has(fileName) {
		return true, true
	}
	if r.negative[c].has(fileName) {
		return false, true
	}
	return false, false
}

func (r *Resolver) record(c Class, fileName string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	target := r.negative
	if ok {
		target = r.positive
	}
	set := target[c]
	if set == nil {
		set = make(fileSet)
		target[c] = set
	}
	set[fileName] = struct{}{}
}

// CheckAll resolves many file names of one class with at most workers
// concurrent lookups.
func (r *Resolver) CheckAll(ctx context.Context, c Class, fileNames []string, workers int) map[string]bool {
	if workers <= 0 {
		workers = 8
	}
	out := make(map[string]bool, len(fileNames))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, name := range fileNames {
		g.Go(func() error {
			ok := r.Available(gctx, c, name)
			mu.Lock()
			out[name] = ok
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Stats is a snapshot of the resolver's state.
type Stats struct {
	ManifestDone   bool
	ManifestFailed bool
	Manifest       map[Class]int
	Positive       map[Class]int
	Negative       map[Class]int
	Probes         int64
}

// Stats returns a snapshot. It does not start the manifest fetch.
func (r *Resolver) Stats() Stats {
	s := Stats{
		Manifest: make(map[Class]int),
		Positive: make(map[Class]int),
		Negative: make(map[Class]int),
		Probes:   r.probes.Load(),
	}
	select {
	case <-r.ready:
		s.ManifestDone = true
	default:
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	s.ManifestFailed = r.manifestFailed
	for _, c := range Classes {
		s.Manifest[c] = len(r.authoritative[c])
		s.Positive[c] = len(r.positive[c])
		s.Negative[c] = len(r.negative[c])
	}
	return s
}
