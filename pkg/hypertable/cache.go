// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package hypertable

import (
	"context"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/hyperplan/hyperplan/pkg/util/log"
	"github.com/hyperplan/hyperplan/pkg/util/syncutil"
	"github.com/lib/pq/oid"
)

// Catalog is the source of hypertable metadata.
type Catalog interface {
	// LookupHypertable returns the metadata of the hypertable with the given
	// relation identifier. It returns nil, nil if the relation is not a
	// hypertable.
	LookupHypertable(ctx context.Context, relid oid.Oid) (*Hypertable, error)
}

// Manager owns the current cache generation. It is safe for concurrent use.
//
// Every Pin must be paired with exactly one Release of the returned handle.
// Invalidate starts a new generation; the entries of the previous one are
// dropped once its last pin is released.
type Manager struct {
	catalog Catalog
	metrics *Metrics

	activePins int64 // accessed atomically

	mu struct {
		syncutil.Mutex
		current    *generation
		generation int64
	}
}

// generation is one version of the cache contents.
type generation struct {
	id int64

	mu struct {
		syncutil.Mutex
		// refs counts the pins plus one for the Manager while the generation
		// is current.
		refs    int
		entries map[oid.Oid]*Hypertable
	}
}

func newGeneration(id int64) *generation {
	g := &generation{id: id}
	g.mu.refs = 1
	g.mu.entries = make(map[oid.Oid]*Hypertable)
	return g
}

func (g *generation) unref(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mu.refs--
	if g.mu.refs == 0 {
		if log.V(2) {
			log.Infof(ctx, "dropping hypertable cache generation %d (%d entries)", g.id, len(g.mu.entries))
		}
		g.mu.entries = nil
	}
}

// NewManager creates a Manager reading from catalog. metrics may be nil.
func NewManager(catalog Catalog, metrics *Metrics) *Manager {
	if metrics == nil {
		metrics = NewMetrics()
	}
	m := &Manager{catalog: catalog, metrics: metrics}
	m.mu.current = newGeneration(0)
	return m
}

// Metrics returns the metrics of the cache.
func (m *Manager) Metrics() *Metrics { return m.metrics }

// Pin pins the current cache generation. The returned handle must be
// released exactly once.
func (m *Manager) Pin() *Cache {
	m.mu.Lock()
	g := m.mu.current
	g.mu.Lock()
	g.mu.refs++
	g.mu.Unlock()
	m.mu.Unlock()

	atomic.AddInt64(&m.activePins, 1)
	m.metrics.Pins.Inc()
	m.metrics.ActivePins.Inc()
	return &Cache{m: m, gen: g}
}

// ActivePins returns the number of pins that have not been released.
func (m *Manager) ActivePins() int {
	return int(atomic.LoadInt64(&m.activePins))
}

// Invalidate discards the cached metadata. Pinned handles keep seeing
// the previous generation.
func (m *Manager) Invalidate(ctx context.Context) {
	m.mu.Lock()
	old := m.mu.current
	m.mu.generation++
	m.mu.current = newGeneration(m.mu.generation)
	m.mu.Unlock()
	old.unref(ctx)
}

// Cache is a pinned handle on the hypertable cache.
type Cache struct {
	m        *Manager
	gen      *generation
	released int32 // accessed atomically
}

// Get returns the hypertable with the given relation identifier, or nil if
// the relation is not a hypertable. Negative answers are cached too.
func (c *Cache) Get(ctx context.Context, relid oid.Oid) (*Hypertable, error) {
	if atomic.LoadInt32(&c.released) != 0 {
		return nil, errors.AssertionFailedf("hypertable cache used after release")
	}
	g := c.gen
	g.mu.Lock()
	ht, ok := g.mu.entries[relid]
	g.mu.Unlock()
	if ok {
		c.m.metrics.CacheHits.Inc()
		return ht, nil
	}

	c.m.metrics.CacheMisses.Inc()
	ht, err := c.m.catalog.LookupHypertable(ctx, relid)
	if err != nil {
		return nil, errors.Wrapf(err, "looking up hypertable for relation %d", relid)
	}
	if ht != nil {
		if err := ht.Validate(); err != nil {
			return nil, err
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if existing, ok := g.mu.entries[relid]; ok {
		// A concurrent lookup won the race.
		return existing, nil
	}
	g.mu.entries[relid] = ht
	return ht, nil
}

// Release unpins the cache. Calling it twice on the same handle is an
// assertion failure.
func (c *Cache) Release() {
	if !atomic.CompareAndSwapInt32(&c.released, 0, 1) {
		panic(errors.AssertionFailedf("hypertable cache released twice"))
	}
	atomic.AddInt64(&c.m.activePins, -1)
	c.m.metrics.ActivePins.Dec()
	c.gen.unref(context.Background())
}
