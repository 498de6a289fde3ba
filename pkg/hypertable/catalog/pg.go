// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package catalog

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/hyperplan/hyperplan/pkg/hypertable"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgcode"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgerror"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq/oid"
)

// Querier is the subset of *pgx.Conn (and pgxpool.Pool) used by PG.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PG reads hypertable metadata from the catalog tables of a running
// TimescaleDB instance.
type PG struct {
	q Querier
}

var _ hypertable.Catalog = (*PG)(nil)

// NewPG creates a catalog reading through q.
func NewPG(q Querier) *PG {
	return &PG{q: q}
}

// ConnectPG opens a connection and returns a catalog reading through it,
// together with a function closing the connection.
func ConnectPG(ctx context.Context, connString string) (*PG, func(context.Context) error, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, nil, errors.Wrap(err, "connecting to catalog")
	}
	return NewPG(conn), conn.Close, nil
}

const lookupHypertableQuery = `
SELECT h.id, h.schema_name, h.table_name
  FROM _timescaledb_catalog.hypertable h
  JOIN pg_catalog.pg_namespace n ON n.nspname = h.schema_name
  JOIN pg_catalog.pg_class c ON c.relname = h.table_name AND c.relnamespace = n.oid
 WHERE c.oid = $1`

const lookupDimensionsQuery = `
SELECT d.id, d.column_name, d.column_type::oid, d.num_slices, d.interval_length
  FROM _timescaledb_catalog.dimension d
 WHERE d.hypertable_id = $1
 ORDER BY d.id`

// LookupHypertable implements the hypertable.Catalog interface.
func (p *PG) LookupHypertable(ctx context.Context, relid oid.Oid) (*hypertable.Hypertable, error) {
	ht := &hypertable.Hypertable{RelID: relid}
	err := p.q.QueryRow(ctx, lookupHypertableQuery, uint32(relid)).Scan(&ht.ID, &ht.Schema, &ht.Table)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := p.q.Query(ctx, lookupDimensionsQuery, ht.ID)
	if err != nil {
		return nil, err
	}
	ht.Dimensions, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (hypertable.Dimension, error) {
		var (
			d         hypertable.Dimension
			typOid    uint32
			numSlices *int16
			interval  *int64
		)
		if err := row.Scan(&d.ID, &d.Column, &typOid, &numSlices, &interval); err != nil {
			return d, err
		}
		d.ColumnType = familyForOid(oid.Oid(typOid))
		if numSlices != nil {
			d.Type = hypertable.Closed
			d.NumSlices = *numSlices
		} else {
			d.Type = hypertable.Open
			if interval == nil {
				return d, pgerror.Newf(pgcode.UndefinedTable,
					"open dimension %q of hypertable %d has no interval", d.Column, ht.ID)
			}
			d.Interval = *interval
		}
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return ht, nil
}

func familyForOid(o oid.Oid) tree.Family {
	switch o {
	case oid.T_timestamp, oid.T_timestamptz:
		return tree.TimestampFamily
	case oid.T_int2, oid.T_int4, oid.T_int8, oid.T_date:
		return tree.IntFamily
	case oid.T_text, oid.T_varchar, oid.T_name:
		return tree.StringFamily
	case oid.T_bool:
		return tree.BoolFamily
	}
	return tree.UnknownFamily
}
