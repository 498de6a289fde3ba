// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package chunkdispatch_test

import (
	"context"
	"testing"
	"time"

	"github.com/hyperplan/hyperplan/pkg/hypertable"
	"github.com/hyperplan/hyperplan/pkg/hypertable/catalog"
	"github.com/hyperplan/hyperplan/pkg/hypertable/chunk"
	"github.com/hyperplan/hyperplan/pkg/sql/chunkdispatch"
	"github.com/hyperplan/hyperplan/pkg/sql/exec"
	"github.com/hyperplan/hyperplan/pkg/sql/hypertableinsert"
	"github.com/hyperplan/hyperplan/pkg/sql/parser"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgcode"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgerror"
	"github.com/hyperplan/hyperplan/pkg/sql/plan"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/lib/pq/oid"
	"github.com/stretchr/testify/require"
)

const (
	metricsRelID = oid.Oid(16384)
	plainRelID   = oid.Oid(16500)
)

func metricsHypertable() *hypertable.Hypertable {
	return &hypertable.Hypertable{
		ID: 3, RelID: metricsRelID, Schema: "public", Table: "metrics",
		Dimensions: []hypertable.Dimension{{
			ID: 1, Column: "time", ColumnType: tree.TimestampFamily, Type: hypertable.Open,
			Interval: (time.Hour).Microseconds(),
		}},
	}
}

type env struct {
	storage *exec.MemStorage
	chunks  *chunk.MemStore
	mgr     *hypertable.Manager
}

func newEnv() *env {
	e := &env{
		storage: exec.NewMemStorage(),
		chunks:  chunk.NewMemStore(30000),
		mgr:     hypertable.NewManager(catalog.NewStatic(metricsHypertable()), nil),
	}
	e.storage.CreateTable(metricsRelID, "time", "value")
	e.storage.CreateTable(plainRelID, "time", "value")
	return e
}

func (e *env) insert(t *testing.T, relid oid.Oid, cols []string, rows ...[]string) error {
	q := &plan.Query{
		CommandType:    plan.CmdInsert,
		ResultRelation: 1,
		RangeTable:     plan.RangeTable{{RelID: relid, RelKind: plan.RelKindRelation}},
		TargetList:     cols,
	}
	vs := &plan.ValuesScan{Columns: cols}
	for _, r := range rows {
		exprs, err := parser.ParseExprs(r)
		require.NoError(t, err)
		vs.Rows = append(vs.Rows, exprs)
	}
	mt := &plan.ModifyTable{
		Operation:       plan.CmdInsert,
		Plans:           []plan.Node{chunkdispatch.New(vs, 1, relid, q)},
		ResultRelations: []plan.Index{1},
	}
	_, _, err := exec.Run(context.Background(), exec.Config{
		Storage: e.storage, Chunks: e.chunks, Hypertables: e.mgr,
	}, &plan.PlannedStmt{
		CommandType:     plan.CmdInsert,
		Plan:            hypertableinsert.New(mt),
		RangeTable:      q.RangeTable,
		ResultRelations: []plan.Index{1},
	})
	return err
}

func TestDispatchUsesTargetListOrder(t *testing.T) {
	e := newEnv()
	require.NoError(t, e.insert(t, metricsRelID, []string{"value", "time"},
		[]string{"1", "'2026-10-16 10:15:00'::timestamp"},
		[]string{"2", "'2026-10-16 10:45:00'::timestamp"},
		[]string{"3", "'2026-10-16 11:00:00'::timestamp"},
	))
	cs := e.chunks.Chunks(metricsHypertable())
	require.Len(t, cs, 2)
	require.Equal(t, "_hyper_3_1_chunk", cs[0].Table)
	require.Equal(t, chunk.InternalSchema, cs[0].Schema)
	require.Equal(t, 2, e.storage.Len(cs[0].RelID))
	require.Equal(t, 1, e.storage.Len(cs[1].RelID))

	// A second statement reuses the existing chunks.
	require.NoError(t, e.insert(t, metricsRelID, []string{"time", "value"},
		[]string{"'2026-10-16 10:30:00'::timestamp", "4"},
	))
	require.Equal(t, 2, e.chunks.Len())
	require.Equal(t, 3, e.storage.Len(cs[0].RelID))
}

func TestDispatchRequiresHypertable(t *testing.T) {
	e := newEnv()
	err := e.insert(t, plainRelID, []string{"time", "value"},
		[]string{"'2026-10-16 10:15:00'::timestamp", "1"})
	require.Error(t, err)
	require.Equal(t, pgcode.UndefinedTable, pgerror.GetPGCode(err))
	require.Equal(t, 0, e.chunks.Len())
	require.Equal(t, 0, e.mgr.ActivePins())
}

func TestFormat(t *testing.T) {
	n := chunkdispatch.New(&plan.ValuesScan{}, 1, metricsRelID, nil)
	require.Equal(t, "ChunkDispatch hypertable=16384\n  ValuesScan rows=0\n", string(plan.FormatTree(n).StripMarkers()))
	require.Nil(t, n.TargetList)
}
