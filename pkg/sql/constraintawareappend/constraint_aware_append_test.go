// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package constraintawareappend

import (
	"context"
	"testing"
	"time"

	"github.com/hyperplan/hyperplan/pkg/hypertable"
	"github.com/hyperplan/hyperplan/pkg/hypertable/catalog"
	"github.com/hyperplan/hyperplan/pkg/hypertable/chunk"
	"github.com/hyperplan/hyperplan/pkg/sql/exec"
	"github.com/hyperplan/hyperplan/pkg/sql/parser"
	"github.com/hyperplan/hyperplan/pkg/sql/plan"
	"github.com/hyperplan/hyperplan/pkg/sql/relopt"
	_ "github.com/hyperplan/hyperplan/pkg/sql/sem/builtins"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/eval"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/stretchr/testify/require"
)

var stmtTS = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func events() *hypertable.Hypertable {
	return &hypertable.Hypertable{
		ID: 1, RelID: 16384, Schema: "public", Table: "events",
		Dimensions: []hypertable.Dimension{{
			ID: 1, Column: "time", ColumnType: tree.TimestampFamily, Type: hypertable.Open,
			Interval: (24 * time.Hour).Microseconds(),
		}},
	}
}

func mustParse(t *testing.T, sql string) tree.Expr {
	t.Helper()
	e, err := parser.ParseExpr(sql)
	require.NoError(t, err)
	return e
}

func TestExcludes(t *testing.T) {
	ctx := context.Background()
	evalCtx := &eval.Context{StmtTimestamp: stmtTS}
	ht := events()
	dim := &ht.Dimensions[0]
	// The chunk covering 2026-10-15.
	slice := dim.SliceFor(time.Date(2026, 10, 15, 6, 0, 0, 0, time.UTC).UnixMicro())

	for _, tc := range []struct {
		clause   string
		excluded bool
	}{
		{"time > now() - interval '1 day'", false},
		{"time > now() - interval '12 hours'", true},
		{"time >= '2026-10-16 00:00:00'::timestamp", true},
		{"time > '2026-10-15 23:59:59.999999'::timestamp", true},
		{"time >= '2026-10-15 23:59:59.999999'::timestamp", false},
		{"time < '2026-10-15 00:00:00'::timestamp", true},
		{"time <= '2026-10-15 00:00:00'::timestamp", false},
		{"time = '2026-10-14 12:00:00'::timestamp", true},
		{"time = '2026-10-15 12:00:00'::timestamp", false},
		{"now() - interval '2 days' > time", true},
		{"now() < time", true},
		{"time > now() - interval '3 days' AND time < now() - interval '2 days'", true},
		{"time > now() OR time < now() - interval '3 days'", true},
		{"time > now() OR time < now()", false},
		{"value > 10", false},
		{"time > value", false},
		{"time > 10", false},
		{"time = NULL", true},
	} {
		t.Run(tc.clause, func(t *testing.T) {
			ex, err := Excludes(ctx, evalCtx, tree.Exprs{mustParse(t, tc.clause)}, dim, slice)
			require.NoError(t, err)
			require.Equal(t, tc.excluded, ex)
		})
	}
}

func TestExcludesTopSlice(t *testing.T) {
	ctx := context.Background()
	dim := &hypertable.Dimension{ID: 1, Column: "id", ColumnType: tree.IntFamily, Type: hypertable.Open, Interval: 1000}
	slice := dim.SliceFor(9223372036854775807)

	for _, tc := range []struct {
		clause   string
		excluded bool
	}{
		{"id > 9223372036854775000", false},
		{"id >= 9223372036854775807", false},
		{"id = 9223372036854775807", false},
		{"id > 9223372036854775806", false},
		{"id < 9223372036854775000", true},
	} {
		t.Run(tc.clause, func(t *testing.T) {
			ex, err := Excludes(ctx, &eval.Context{}, tree.Exprs{mustParse(t, tc.clause)}, dim, slice)
			require.NoError(t, err)
			require.Equal(t, tc.excluded, ex)
		})
	}
}

func TestPathAndExecution(t *testing.T) {
	ctx := context.Background()
	ht := events()
	chunks := chunk.NewMemStore(20000)
	storage := exec.NewMemStorage()
	storage.CreateTable(ht.RelID, "time", "value")

	root := &relopt.PlannerInfo{
		Parse:      &plan.Query{CommandType: plan.CmdSelect},
		RangeTable: plan.RangeTable{{RelID: ht.RelID, RelKind: plan.RelKindRelation, Inh: true}},
	}
	parent := &relopt.RelOptInfo{Kind: relopt.BaseRel, RelID: 1}
	parent.BaseRestrictInfo = []*relopt.RestrictInfo{
		{Clause: mustParse(t, "time > now() - interval '1 day'")},
	}
	root.SimpleRelArray = []*relopt.RelOptInfo{nil, parent}

	ap := &relopt.AppendPath{Rel: parent}
	for i, day := range []int{14, 15, 16} {
		ts := time.Date(2026, 10, day, 20, 0, 0, 0, time.UTC)
		c, err := chunks.FindOrCreate(ctx, ht, hypertable.Point{ts.UnixMicro()})
		require.NoError(t, err)
		require.NoError(t, storage.CreateTableLike(ctx, c.RelID, ht.RelID))
		require.NoError(t, storage.Insert(ctx, c.RelID, []string{"time", "value"},
			exec.Row{tree.MakeDTimestamp(ts), tree.NewDInt(tree.DInt(i))}))
		rti := root.RangeTable.Append(&plan.RangeTblEntry{RelID: c.RelID, RelKind: plan.RelKindRelation})
		child := &relopt.RelOptInfo{Kind: relopt.OtherMemberRel, RelID: rti, BaseRestrictInfo: parent.BaseRestrictInfo}
		root.SimpleRelArray = append(root.SimpleRelArray, child)
		ap.Subpaths = append(ap.Subpaths, &relopt.ScanPath{Rel: child})
	}

	p := NewPath(root, ht, ap)
	require.Equal(t, relopt.PathTypeCustom, p.Type())
	require.Same(t, parent, p.Parent())

	n, err := relopt.CreatePlan(root, p)
	require.NoError(t, err)
	require.Equal(t,
		"ConstraintAwareAppend hypertable=public.events\n"+
			"  Append children=3\n"+
			"    SeqScan rel=2 filter=[time > now() - '24h0m0s'::INTERVAL]\n"+
			"    SeqScan rel=3 filter=[time > now() - '24h0m0s'::INTERVAL]\n"+
			"    SeqScan rel=4 filter=[time > now() - '24h0m0s'::INTERVAL]\n",
		plan.FormatTree(n).StripMarkers())

	mgr := hypertable.NewManager(catalog.NewStatic(ht), nil)
	cache := mgr.Pin()
	defer cache.Release()
	b := &exec.Builder{
		EvalCtx:     &eval.Context{StmtTimestamp: stmtTS},
		RangeTable:  root.RangeTable,
		Storage:     storage,
		Chunks:      chunks,
		Hypertables: cache,
	}
	op, err := b.Build(ctx, n)
	require.NoError(t, err)
	require.NoError(t, op.Init(ctx))
	require.Equal(t, 1, op.(*State).Excluded)

	var values []string
	for {
		row, err := op.Next(ctx)
		require.NoError(t, err)
		if row == nil {
			break
		}
		values = append(values, row[1].String())
	}
	require.Equal(t, []string{"1", "2"}, values)
}
