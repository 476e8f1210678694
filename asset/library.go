package asset

import (
	"context"
	"io/fs"
	"log"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/retroblast-engine/aseanim/atlas"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Library loads assets from a file system and keeps them by name. It is
// safe for concurrent use: concurrent requests for a name that is not
// loaded yet share one decode.
type Library struct {
	fsys   fs.FS
	opts   []atlas.Option
	logger *log.Logger

	mu     sync.RWMutex
	assets map[string]*Asset
	loads  singleflight.Group
}

// NewLibrary returns a library reading from fsys and packing with opts. A nil
// logger logs to log.Default().
func NewLibrary(fsys fs.FS, logger *log.Logger, opts ...atlas.Option) *Library {
	if logger == nil {
		logger = log.Default()
	}
	return &Library{
		fsys:   fsys,
		opts:   opts,
		logger: logger,
		assets: make(map[string]*Asset),
	}
}

// Get returns the asset called name, loading it on first use.
func (l *Library) Get(name string) (*Asset, error) {
	l.mu.RLock()
	a, ok := l.assets[name]
	l.mu.RUnlock()
	if ok {
		return a, nil
	}

	v, err, _ := l.loads.Do(name, func() (any, error) {
		l.mu.RLock()
		a, ok := l.assets[name]
		l.mu.RUnlock()
		if ok {
			return a, nil
		}

		return l.load(name)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Asset), nil
}

// Reload loads name again. The cached asset is replaced only if loading
// succeeds; players of the old asset keep working with it.
func (l *Library) Reload(name string) (*Asset, error) {
	return l.load(name)
}

func (l *Library) load(name string) (*Asset, error) {
	start := time.Now()
	a, err := LoadFS(l.fsys, name, l.opts...)
	if err != nil {
		return nil, err
	}
	for _, w := range a.Warnings {
		l.logger.Printf("asset: %s: %s", name, w)
	}
	l.logger.Printf("asset: loaded %s: %d frames in %v", name, a.Info.FrameCount(), time.Since(start))

	l.mu.Lock()
	l.assets[name] = a
	l.mu.Unlock()
	return a, nil
}

// Forget drops the cached asset called name.
func (l *Library) Forget(name string) {
	l.mu.Lock()
	delete(l.assets, name)
	l.mu.Unlock()
}

// Names returns the names of the loaded assets, sorted.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Sorted(maps.Keys(l.assets))
}

// LoadAll loads names with at most workers decodes at a time, stopping at
// the first error. Workers below 1 mean no limit.
func (l *Library) LoadAll(ctx context.Context, names []string, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for _, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := l.Get(name)
			return err
		})
	}
	return g.Wait()
}
