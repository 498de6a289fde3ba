// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package hypertable

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgcode"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgerror"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/lib/pq/oid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type countingCatalog struct {
	lookups int64
	tables  map[oid.Oid]*Hypertable
	err     error
}

func (c *countingCatalog) LookupHypertable(_ context.Context, relid oid.Oid) (*Hypertable, error) {
	atomic.AddInt64(&c.lookups, 1)
	if c.err != nil {
		return nil, c.err
	}
	return c.tables[relid], nil
}

func eventsHypertable() *Hypertable {
	return &Hypertable{
		ID:     1,
		RelID:  16384,
		Schema: "public",
		Table:  "events",
		Dimensions: []Dimension{{
			ID:         1,
			Column:     "time",
			ColumnType: tree.TimestampFamily,
			Type:       Open,
			Interval:   86400000000,
		}},
	}
}

func TestCacheGet(t *testing.T) {
	ctx := context.Background()
	cat := &countingCatalog{tables: map[oid.Oid]*Hypertable{16384: eventsHypertable()}}
	m := NewManager(cat, nil)

	c := m.Pin()
	ht, err := c.Get(ctx, 16384)
	require.NoError(t, err)
	require.Equal(t, "events", ht.Table)

	// Absent relations are not an error, and the answer is cached.
	ht, err = c.Get(ctx, 1)
	require.NoError(t, err)
	require.Nil(t, ht)
	ht, err = c.Get(ctx, 1)
	require.NoError(t, err)
	require.Nil(t, ht)

	_, err = c.Get(ctx, 16384)
	require.NoError(t, err)
	c.Release()

	require.EqualValues(t, 2, atomic.LoadInt64(&cat.lookups))
	require.Equal(t, 2.0, testutil.ToFloat64(m.Metrics().CacheHits))
	require.Equal(t, 2.0, testutil.ToFloat64(m.Metrics().CacheMisses))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Metrics().Pins))
	require.Equal(t, 0.0, testutil.ToFloat64(m.Metrics().ActivePins))
	require.Equal(t, 0, m.ActivePins())
}

func TestCacheCatalogError(t *testing.T) {
	ctx := context.Background()
	cat := &countingCatalog{err: errors.New("connection refused")}
	m := NewManager(cat, nil)
	c := m.Pin()
	defer c.Release()

	_, err := c.Get(ctx, 16384)
	require.ErrorContains(t, err, "looking up hypertable for relation 16384: connection refused")
}

func TestCacheRejectsInvalidMetadata(t *testing.T) {
	ctx := context.Background()
	ht := eventsHypertable()
	ht.Dimensions = nil
	m := NewManager(&countingCatalog{tables: map[oid.Oid]*Hypertable{16384: ht}}, nil)
	c := m.Pin()
	defer c.Release()

	_, err := c.Get(ctx, 16384)
	require.Equal(t, pgcode.UndefinedTable, pgerror.GetPGCode(err))
}

func TestCacheDoubleRelease(t *testing.T) {
	m := NewManager(&countingCatalog{}, nil)
	c := m.Pin()
	c.Release()
	require.Panics(t, c.Release)
	require.Equal(t, 0, m.ActivePins())

	_, err := c.Get(context.Background(), 1)
	require.True(t, errors.IsAssertionFailure(err))
}

func TestCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	cat := &countingCatalog{tables: map[oid.Oid]*Hypertable{16384: eventsHypertable()}}
	m := NewManager(cat, nil)

	old := m.Pin()
	_, err := old.Get(ctx, 16384)
	require.NoError(t, err)

	m.Invalidate(ctx)
	delete(cat.tables, 16384)

	// The old handle still sees its generation.
	ht, err := old.Get(ctx, 16384)
	require.NoError(t, err)
	require.NotNil(t, ht)
	old.Release()

	c := m.Pin()
	defer c.Release()
	ht, err = c.Get(ctx, 16384)
	require.NoError(t, err)
	require.Nil(t, ht)
}

func TestCacheConcurrentPins(t *testing.T) {
	ctx := context.Background()
	cat := &countingCatalog{tables: map[oid.Oid]*Hypertable{16384: eventsHypertable()}}
	m := NewManager(cat, nil)

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		i := i
		g.Go(func() error {
			c := m.Pin()
			defer c.Release()
			if i%8 == 0 {
				m.Invalidate(ctx)
			}
			ht, err := c.Get(ctx, 16384)
			if err != nil {
				return err
			}
			if ht == nil || ht.Table != "events" {
				return errors.Newf("unexpected hypertable %v", ht)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, 0, m.ActivePins())
	require.Equal(t, 32.0, testutil.ToFloat64(m.Metrics().Pins))
}
