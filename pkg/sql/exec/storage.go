// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package exec

import (
	"context"

	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgcode"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgerror"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/hyperplan/hyperplan/pkg/util/syncutil"
	"github.com/lib/pq/oid"
)

// Storage holds the rows of relations.
type Storage interface {
	// Columns returns the column names of a relation.
	Columns(ctx context.Context, relid oid.Oid) ([]string, error)
	// Scan returns the rows of a relation.
	Scan(ctx context.Context, relid oid.Oid) ([]Row, error)
	// Insert adds a row whose values fill the named columns. Columns that
	// are not named are set to NULL.
	Insert(ctx context.Context, relid oid.Oid, cols []string, row Row) error
	// CreateTableLike creates relid with the columns of like, unless relid
	// already exists.
	CreateTableLike(ctx context.Context, relid, like oid.Oid) error
}

type memTable struct {
	cols []string
	rows []Row
}

// MemStorage is an in-memory Storage. It is safe for concurrent use.
type MemStorage struct {
	mu struct {
		syncutil.Mutex
		tables map[oid.Oid]*memTable
	}
}

var _ Storage = (*MemStorage)(nil)

// NewMemStorage creates an empty storage.
func NewMemStorage() *MemStorage {
	s := &MemStorage{}
	s.mu.tables = make(map[oid.Oid]*memTable)
	return s
}

// CreateTable creates (or replaces) a relation with the given columns.
func (s *MemStorage) CreateTable(relid oid.Oid, cols ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mu.tables[relid] = &memTable{cols: cols}
}

func (s *MemStorage) tableLocked(relid oid.Oid) (*memTable, error) {
	t, ok := s.mu.tables[relid]
	if !ok {
		return nil, pgerror.Newf(pgcode.UndefinedTable, "relation with OID %d does not exist", relid)
	}
	return t, nil
}

// Columns implements the Storage interface.
func (s *MemStorage) Columns(_ context.Context, relid oid.Oid) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.tableLocked(relid)
	if err != nil {
		return nil, err
	}
	return t.cols, nil
}

// Scan implements the Storage interface.
func (s *MemStorage) Scan(_ context.Context, relid oid.Oid) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.tableLocked(relid)
	if err != nil {
		return nil, err
	}
	return append([]Row(nil), t.rows...), nil
}

// Insert implements the Storage interface.
func (s *MemStorage) Insert(_ context.Context, relid oid.Oid, cols []string, row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.tableLocked(relid)
	if err != nil {
		return err
	}
	if len(cols) != len(row) {
		return pgerror.Newf(pgcode.Syntax,
			"INSERT has %d target columns but %d expressions", len(cols), len(row))
	}
	stored := make(Row, len(t.cols))
	for i := range stored {
		stored[i] = tree.DNull
	}
	for i, c := range cols {
		pos := -1
		for j, tc := range t.cols {
			if tc == c {
				pos = j
				break
			}
		}
		if pos < 0 {
			return pgerror.Newf(pgcode.UndefinedColumn,
				"column %q of relation with OID %d does not exist", c, relid)
		}
		stored[pos] = row[i]
	}
	t.rows = append(t.rows, stored)
	return nil
}

// CreateTableLike implements the Storage interface.
func (s *MemStorage) CreateTableLike(_ context.Context, relid, like oid.Oid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mu.tables[relid]; ok {
		return nil
	}
	t, err := s.tableLocked(like)
	if err != nil {
		return err
	}
	s.mu.tables[relid] = &memTable{cols: t.cols}
	return nil
}

// Len returns the number of rows of a relation, or -1 if it does not exist.
func (s *MemStorage) Len(relid oid.Oid) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.mu.tables[relid]
	if !ok {
		return -1
	}
	return len(t.rows)
}
