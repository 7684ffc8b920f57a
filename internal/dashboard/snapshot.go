// Package dashboard wires the loaders, the selection resolver and the
// aggregation pipeline into the service the presentation layer talks
// to.
package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"cartorios/internal/core"
	"cartorios/internal/sources"
)

// Snapshot is the memoized output of both loaders: the office registry
// and the cleaned collections, shared read-only across requests.
type Snapshot struct {
	Offices     []core.Office
	Collections []core.Collection
	LoadedAt    time.Time
}

// Loader loads the snapshot once per process. The first successful load
// is kept for the process lifetime; a source changing afterwards is not
// detected. Concurrent first loads are collapsed into a single fetch.
type Loader struct {
	registry    sources.RegistryReader
	collections sources.CollectionsReader

	mu    sync.RWMutex
	snap  *Snapshot
	group singleflight.Group
}

func NewLoader(registry sources.RegistryReader, collections sources.CollectionsReader) *Loader {
	return &Loader{registry: registry, collections: collections}
}

// Snapshot returns the cached snapshot, loading it on first use. A
// failed load is not cached; the next request retries from scratch.
func (l *Loader) Snapshot(ctx context.Context) (*Snapshot, error) {
	l.mu.RLock()
	snap := l.snap
	l.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	v, err, _ := l.group.Do("snapshot", func() (interface{}, error) {
		// Re-check under the group: a concurrent caller may have
		// populated the cache while this one waited.
		l.mu.RLock()
		cached := l.snap
		l.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		loaded, err := l.load(ctx)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.snap = loaded
		l.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

func (l *Loader) load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()

	offices, err := l.registry.ReadOffices(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := l.collections.ReadCollections(ctx)
	if err != nil {
		return nil, err
	}

	cleaned, rep := core.Clean(raw)
	slog.InfoContext(ctx, "Snapshot loaded",
		"offices", len(offices),
		"rows", len(raw),
		"rows_kept", rep.Kept,
		"rows_bad_amount", rep.BadAmount,
		"rows_bad_period", rep.BadPeriod,
		"rows_non_positive", rep.NonPositive,
		"duration_ms", time.Since(start).Milliseconds())

	return &Snapshot{
		Offices:     offices,
		Collections: cleaned,
		LoadedAt:    time.Now(),
	}, nil
}
