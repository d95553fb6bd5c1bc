// Package cache provides read-through caching for remotely-stored entities.
// Each entry is keyed by an entity kind plus an optional id, fetches through a
// bound fetch function with at most one fetch in flight per entry, and fans
// every successfully fetched value out to its subscribers.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/janhq/provider-sync/internal/infrastructure/logger"
	"github.com/janhq/provider-sync/internal/infrastructure/metrics"
	"github.com/janhq/provider-sync/internal/utils/platformerrors"
)

// Kind identifies a class of cached entries.
type Kind string

// Key identifies a single cache entry.
type Key struct {
	Kind Kind
	ID   string
}

func (k Key) String() string {
	if k.ID == "" {
		return string(k.Kind)
	}
	return string(k.Kind) + ":" + k.ID
}

// FetchFunc loads the authoritative value for a cache entry.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// Subscriber receives the new value after every successful fetch.
type Subscriber[V any] func(ctx context.Context, value V)

// Resource is one read-through cache entry. A Resource constructed with a nil
// fetch function is disabled: reads return the zero value without fetching and
// invalidation is a no-op.
type Resource[V any] struct {
	key   Key
	fetch FetchFunc[V]

	mu          sync.RWMutex
	value       V
	hasValue    bool
	stale       bool
	subscribers []Subscriber[V]

	flight singleflight.Group
}

// NewResource creates a cache entry bound to the given fetch function.
func NewResource[V any](key Key, fetch FetchFunc[V]) *Resource[V] {
	return &Resource[V]{key: key, fetch: fetch}
}

// Enabled reports whether the entry has a fetch binding.
func (r *Resource[V]) Enabled() bool {
	return r.fetch != nil
}

// Subscribe registers fn for every successful fetch of this entry. Callbacks
// run on the fetching goroutine and must not read or invalidate the entry
// they observe.
func (r *Resource[V]) Subscribe(fn Subscriber[V]) {
	r.mu.Lock()
	r.subscribers = append(r.subscribers, fn)
	r.mu.Unlock()
}

// Read returns the cached value, fetching it first when the entry is empty or
// stale. Concurrent readers of an empty or stale entry share one fetch.
func (r *Resource[V]) Read(ctx context.Context) (V, error) {
	if !r.Enabled() {
		var zero V
		return zero, nil
	}

	r.mu.RLock()
	if r.hasValue && !r.stale {
		value := r.value
		r.mu.RUnlock()
		metrics.RecordCacheRead(string(r.key.Kind), true)
		return value, nil
	}
	r.mu.RUnlock()

	metrics.RecordCacheRead(string(r.key.Kind), false)
	return r.refresh(ctx)
}

// Invalidate marks the entry stale and refetches it. It returns once the new
// value has been stored and all subscribers notified. An invalidation issued
// while a fetch is already in flight joins that fetch rather than starting
// another.
func (r *Resource[V]) Invalidate(ctx context.Context) error {
	if !r.Enabled() {
		return nil
	}

	r.mu.Lock()
	r.stale = true
	r.mu.Unlock()

	metrics.RecordCacheRefresh(string(r.key.Kind))
	_, err := r.refresh(ctx)
	return err
}

func (r *Resource[V]) refresh(ctx context.Context) (V, error) {
	result, err, _ := r.flight.Do(r.key.String(), func() (any, error) {
		// Double-check after winning the flight: a fetch that completed while
		// this caller was queueing may already have refreshed the entry.
		r.mu.RLock()
		if r.hasValue && !r.stale {
			value := r.value
			r.mu.RUnlock()
			return value, nil
		}
		r.mu.RUnlock()

		log := logger.WithComponent("cache")
		start := time.Now()

		value, err := r.fetch(ctx)
		if err != nil {
			metrics.RecordCacheFetch(string(r.key.Kind), time.Since(start).Seconds(), true)
			log.Error().Err(err).Str("key", r.key.String()).Msg("Cache fetch failed")
			return nil, platformerrors.AsError(ctx, platformerrors.LayerCache, err, "failed to fetch "+r.key.String())
		}
		metrics.RecordCacheFetch(string(r.key.Kind), time.Since(start).Seconds(), false)

		r.mu.Lock()
		r.value = value
		r.hasValue = true
		r.stale = false
		subscribers := make([]Subscriber[V], len(r.subscribers))
		copy(subscribers, r.subscribers)
		r.mu.Unlock()

		log.Debug().Str("key", r.key.String()).Dur("latency", time.Since(start)).Msg("Cache entry refreshed")
		for _, fn := range subscribers {
			fn(ctx, value)
		}
		return value, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return result.(V), nil
}

// Group manages one Resource per id for a single entry kind. Entries are
// created lazily on first read and live for the lifetime of the group.
type Group[V any] struct {
	kind     Kind
	fetchFor func(id string) FetchFunc[V]

	mu      sync.Mutex
	entries map[string]*Resource[V]
	onValue func(ctx context.Context, id string, value V)
}

// NewGroup creates a keyed collection of cache entries of one kind. fetchFor
// builds the fetch binding for each id.
func NewGroup[V any](kind Kind, fetchFor func(id string) FetchFunc[V]) *Group[V] {
	return &Group[V]{
		kind:     kind,
		fetchFor: fetchFor,
		entries:  make(map[string]*Resource[V]),
	}
}

// OnValue registers a callback invoked with every successfully fetched value
// of any entry in the group. It must be called before the first read.
func (g *Group[V]) OnValue(fn func(ctx context.Context, id string, value V)) {
	g.mu.Lock()
	g.onValue = fn
	g.mu.Unlock()
}

// Resource returns the entry for id, creating it on first use.
func (g *Group[V]) Resource(id string) *Resource[V] {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.entries[id]
	if !ok {
		entry = NewResource(Key{Kind: g.kind, ID: id}, g.fetchFor(id))
		if g.onValue != nil {
			onValue := g.onValue
			entry.Subscribe(func(ctx context.Context, value V) {
				onValue(ctx, id, value)
			})
		}
		g.entries[id] = entry
	}
	return entry
}

// Invalidate refreshes the entry for id if it exists. Ids that were never
// read have nothing cached, so there is nothing to refresh.
func (g *Group[V]) Invalidate(ctx context.Context, id string) error {
	g.mu.Lock()
	entry, ok := g.entries[id]
	g.mu.Unlock()
	if !ok {
		return nil
	}
	return entry.Invalidate(ctx)
}
