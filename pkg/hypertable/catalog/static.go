// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package catalog provides sources of hypertable metadata.
package catalog

import (
	"context"
	"sort"

	"github.com/hyperplan/hyperplan/pkg/hypertable"
	"github.com/hyperplan/hyperplan/pkg/util/syncutil"
	"github.com/lib/pq/oid"
)

// Static is an in-memory catalog.
type Static struct {
	mu struct {
		syncutil.RWMutex
		byRelID map[oid.Oid]*hypertable.Hypertable
	}
}

var _ hypertable.Catalog = (*Static)(nil)

// NewStatic creates a catalog holding the given hypertables.
func NewStatic(hts ...*hypertable.Hypertable) *Static {
	s := &Static{}
	s.mu.byRelID = make(map[oid.Oid]*hypertable.Hypertable, len(hts))
	for _, ht := range hts {
		s.mu.byRelID[ht.RelID] = ht
	}
	return s
}

// Add adds or replaces a hypertable.
func (s *Static) Add(ht *hypertable.Hypertable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mu.byRelID[ht.RelID] = ht
}

// LookupHypertable implements the hypertable.Catalog interface.
func (s *Static) LookupHypertable(_ context.Context, relid oid.Oid) (*hypertable.Hypertable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mu.byRelID[relid], nil
}

// Hypertables returns all hypertables ordered by relation identifier.
func (s *Static) Hypertables() []*hypertable.Hypertable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]*hypertable.Hypertable, 0, len(s.mu.byRelID))
	for _, ht := range s.mu.byRelID {
		res = append(res, ht)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].RelID < res[j].RelID })
	return res
}
