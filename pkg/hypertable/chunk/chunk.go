// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package chunk tracks the chunks of hypertables: the physical child
// relations that each hold one hypercube of a hypertable's rows.
package chunk

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/google/btree"
	"github.com/hyperplan/hyperplan/pkg/hypertable"
	"github.com/hyperplan/hyperplan/pkg/util/log"
	"github.com/hyperplan/hyperplan/pkg/util/syncutil"
	"github.com/lib/pq/oid"
)

// InternalSchema is the schema that holds chunk relations.
const InternalSchema = "_timescaledb_internal"

// Chunk is one partition of a hypertable.
type Chunk struct {
	ID           int32
	HypertableID int32
	RelID        oid.Oid
	Schema       string
	Table        string
	Cube         hypertable.Hypercube
}

// Less implements btree.Item. Chunks are ordered by the start of their
// slices, dimension by dimension.
func (c *Chunk) Less(than btree.Item) bool {
	o := than.(*Chunk)
	for i := range c.Cube {
		if i >= len(o.Cube) {
			return false
		}
		if c.Cube[i].RangeStart != o.Cube[i].RangeStart {
			return c.Cube[i].RangeStart < o.Cube[i].RangeStart
		}
	}
	return len(c.Cube) < len(o.Cube)
}

// Store creates and finds chunks.
type Store interface {
	// FindOrCreate returns the chunk of ht containing p, creating it if
	// needed.
	FindOrCreate(ctx context.Context, ht *hypertable.Hypertable, p hypertable.Point) (*Chunk, error)
	// Chunks returns the chunks of ht ordered by their hypercube.
	Chunks(ht *hypertable.Hypertable) []*Chunk
	// ChunkByRelID returns the chunk with the given relation identifier,
	// or nil.
	ChunkByRelID(relid oid.Oid) *Chunk
}

// MemStore is an in-memory Store. It is safe for concurrent use.
type MemStore struct {
	mu struct {
		syncutil.RWMutex
		nextID  int32
		nextOid oid.Oid
		// byHypertable maps a hypertable's relation identifier to its
		// chunks.
		byHypertable map[oid.Oid]*btree.BTree
		byRelID      map[oid.Oid]*Chunk
	}
}

var _ Store = (*MemStore)(nil)

// btreeDegree is the degree of the per-hypertable chunk index.
const btreeDegree = 8

// NewMemStore creates an empty store. Chunk relation identifiers are
// allocated starting at firstOid.
func NewMemStore(firstOid oid.Oid) *MemStore {
	s := &MemStore{}
	s.mu.nextID = 1
	s.mu.nextOid = firstOid
	s.mu.byHypertable = make(map[oid.Oid]*btree.BTree)
	s.mu.byRelID = make(map[oid.Oid]*Chunk)
	return s
}

// FindOrCreate implements the Store interface.
func (s *MemStore) FindOrCreate(
	ctx context.Context, ht *hypertable.Hypertable, p hypertable.Point,
) (*Chunk, error) {
	cube, err := ht.HypercubeFor(p)
	if err != nil {
		return nil, err
	}
	key := &Chunk{Cube: cube}

	s.mu.RLock()
	if t, ok := s.mu.byHypertable[ht.RelID]; ok {
		if item := t.Get(key); item != nil {
			s.mu.RUnlock()
			return item.(*Chunk), nil
		}
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.mu.byHypertable[ht.RelID]
	if !ok {
		t = btree.New(btreeDegree)
		s.mu.byHypertable[ht.RelID] = t
	}
	if item := t.Get(key); item != nil {
		return item.(*Chunk), nil
	}
	if s.mu.nextOid == 0 {
		return nil, errors.AssertionFailedf("chunk relation identifiers exhausted")
	}
	c := &Chunk{
		ID:           s.mu.nextID,
		HypertableID: ht.ID,
		RelID:        s.mu.nextOid,
		Schema:       InternalSchema,
		Cube:         cube,
	}
	c.Table = fmt.Sprintf("_hyper_%d_%d_chunk", ht.ID, c.ID)
	s.mu.nextID++
	s.mu.nextOid++
	t.ReplaceOrInsert(c)
	s.mu.byRelID[c.RelID] = c
	log.VEventf(ctx, 2, "created chunk %s.%s for hypertable %s", c.Schema, c.Table, ht.QualifiedName())
	return c, nil
}

// Chunks implements the Store interface.
func (s *MemStore) Chunks(ht *hypertable.Hypertable) []*Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.mu.byHypertable[ht.RelID]
	if !ok {
		return nil
	}
	res := make([]*Chunk, 0, t.Len())
	t.Ascend(func(i btree.Item) bool {
		res = append(res, i.(*Chunk))
		return true
	})
	return res
}

// ChunkByRelID implements the Store interface.
func (s *MemStore) ChunkByRelID(relid oid.Oid) *Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mu.byRelID[relid]
}

// ChildrenOf returns the relation identifiers of the chunks of the
// hypertable with relation identifier parent, in hypercube order.
func (s *MemStore) ChildrenOf(_ context.Context, parent oid.Oid) ([]oid.Oid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.mu.byHypertable[parent]
	if !ok {
		return nil, nil
	}
	res := make([]oid.Oid, 0, t.Len())
	t.Ascend(func(i btree.Item) bool {
		res = append(res, i.(*Chunk).RelID)
		return true
	})
	return res, nil
}

// Len returns the total number of chunks.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.mu.byRelID)
}
