// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package exec_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/redact"
	"github.com/hyperplan/hyperplan/pkg/sql/exec"
	"github.com/hyperplan/hyperplan/pkg/sql/parser"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgcode"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgerror"
	"github.com/hyperplan/hyperplan/pkg/sql/plan"
	_ "github.com/hyperplan/hyperplan/pkg/sql/sem/builtins"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/lib/pq/oid"
	"github.com/stretchr/testify/require"
)

const metricsRelID = 100

func mustParse(t *testing.T, sql string) tree.Expr {
	t.Helper()
	e, err := parser.ParseExpr(sql)
	require.NoError(t, err)
	return e
}

func insertStmt(t *testing.T, rows ...[]string) *plan.PlannedStmt {
	vs := &plan.ValuesScan{Columns: []string{"time", "value"}}
	for _, r := range rows {
		exprs, err := parser.ParseExprs(r)
		require.NoError(t, err)
		vs.Rows = append(vs.Rows, exprs)
	}
	return &plan.PlannedStmt{
		CommandType: plan.CmdInsert,
		RangeTable:  plan.RangeTable{{RelID: metricsRelID, RelKind: plan.RelKindRelation}},
		Plan: &plan.ModifyTable{
			Operation:       plan.CmdInsert,
			Plans:           []plan.Node{vs},
			ResultRelations: []plan.Index{1},
		},
		ResultRelations: []plan.Index{1},
	}
}

func TestInsertAndScan(t *testing.T) {
	ctx := context.Background()
	storage := exec.NewMemStorage()
	storage.CreateTable(metricsRelID, "time", "value")
	cfg := exec.Config{
		Storage:       storage,
		StmtTimestamp: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC),
	}

	rows, cols, err := exec.Run(ctx, cfg, insertStmt(t,
		[]string{"'2026-10-16 11:00:00'::timestamp", "1"},
		[]string{"'2026-10-16 09:00:00'::timestamp", "2"},
		[]string{"'2026-10-14 09:00:00'::timestamp", "3"},
	))
	require.NoError(t, err)
	require.Equal(t, []string{"count"}, cols)
	require.Equal(t, "3", rows[0][0].String())
	require.Equal(t, 3, storage.Len(metricsRelID))

	scan := &plan.PlannedStmt{
		CommandType: plan.CmdSelect,
		RangeTable:  plan.RangeTable{{RelID: metricsRelID, RelKind: plan.RelKindRelation}},
		Plan: &plan.Limit{
			SingleInput: plan.SingleInput{Input: &plan.Sort{
				SingleInput: plan.SingleInput{Input: &plan.SeqScan{Scan: plan.Scan{
					RelIndex: 1,
					Quals:    tree.Exprs{mustParse(t, "time > now() - interval '1 day'")},
				}}},
				Keys:       tree.Exprs{tree.NewVar("value")},
				Descending: []bool{true},
			}},
			Count: tree.NewDInt(1),
		},
	}
	rows, cols, err = exec.Run(ctx, cfg, scan)
	require.NoError(t, err)
	require.Equal(t, []string{"time", "value"}, cols)
	require.Len(t, rows, 1)
	require.Equal(t, "2", rows[0][1].String())
}

func TestMergeAppend(t *testing.T) {
	ctx := context.Background()
	storage := exec.NewMemStorage()
	storage.CreateTable(1, "v")
	storage.CreateTable(2, "v")
	for relid, vals := range map[oid.Oid][]int{1: {1, 5, 9}, 2: {2, 3, 10}} {
		for _, v := range vals {
			require.NoError(t, storage.Insert(ctx, relid, []string{"v"}, exec.Row{tree.NewDInt(tree.DInt(v))}))
		}
	}
	stmt := &plan.PlannedStmt{
		RangeTable: plan.RangeTable{{RelID: 1}, {RelID: 2}},
		Plan: &plan.MergeAppend{
			Children: []plan.Node{
				&plan.SeqScan{Scan: plan.Scan{RelIndex: 1}},
				&plan.SeqScan{Scan: plan.Scan{RelIndex: 2}},
			},
			SortKeys: tree.Exprs{tree.NewVar("v")},
		},
	}
	rows, _, err := exec.Run(ctx, exec.Config{Storage: storage}, stmt)
	require.NoError(t, err)
	var got []string
	for _, r := range rows {
		got = append(got, r[0].String())
	}
	require.Equal(t, []string{"1", "2", "3", "5", "9", "10"}, got)
}

func TestAppendKeepsColumnsAfterDrain(t *testing.T) {
	ctx := context.Background()
	storage := exec.NewMemStorage()
	storage.CreateTable(1, "time", "value")
	storage.CreateTable(2, "time", "value")
	require.NoError(t, storage.Insert(ctx, 1, []string{"value"}, exec.Row{tree.NewDInt(1)}))
	require.NoError(t, storage.Insert(ctx, 2, []string{"value"}, exec.Row{tree.NewDInt(2)}))
	stmt := &plan.PlannedStmt{
		RangeTable: plan.RangeTable{{RelID: 1}, {RelID: 2}},
		Plan: &plan.Append{Children: []plan.Node{
			&plan.SeqScan{Scan: plan.Scan{RelIndex: 1}},
			&plan.SeqScan{Scan: plan.Scan{RelIndex: 2}},
		}},
	}
	rows, cols, err := exec.Run(ctx, exec.Config{Storage: storage}, stmt)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, []string{"time", "value"}, cols)
}

func TestInsertErrors(t *testing.T) {
	ctx := context.Background()
	storage := exec.NewMemStorage()
	_, _, err := exec.Run(ctx, exec.Config{Storage: storage}, insertStmt(t, []string{"now()", "1"}))
	require.Equal(t, pgcode.UndefinedTable, pgerror.GetPGCode(err))

	storage.CreateTable(metricsRelID, "time")
	_, _, err = exec.Run(ctx, exec.Config{Storage: storage}, insertStmt(t, []string{"now()", "1"}))
	require.Equal(t, pgcode.UndefinedColumn, pgerror.GetPGCode(err))

	stmt := insertStmt(t)
	stmt.Plan.(*plan.ModifyTable).ResultRelations = nil
	_, _, err = exec.Run(ctx, exec.Config{Storage: storage}, stmt)
	require.Equal(t, pgcode.Internal, pgerror.GetPGCode(err))
}

type unknownNode struct {
	plan.ZeroInput
}

func (unknownNode) SafeFormat(w redact.SafePrinter, _ rune) { w.SafeString("Unknown") }

type constNode struct {
	plan.ZeroInput
	n int
}

func (constNode) SafeFormat(w redact.SafePrinter, _ rune) { w.SafeString("Const") }

type constOp struct {
	n, next int
}

func (c *constOp) Init(context.Context) error { return nil }
func (c *constOp) Next(context.Context) (exec.Row, error) {
	if c.next >= c.n {
		return nil, nil
	}
	c.next++
	return exec.Row{tree.NewDInt(tree.DInt(c.next))}, nil
}
func (c *constOp) Columns() []string { return []string{"n"} }

func init() {
	exec.RegisterBuilder(&constNode{}, func(_ context.Context, _ *exec.Builder, n plan.Node) (exec.Operator, error) {
		return &constOp{n: n.(*constNode).n}, nil
	})
}

func TestRegisteredBuilder(t *testing.T) {
	ctx := context.Background()
	rows, _, err := exec.Run(ctx, exec.Config{}, &plan.PlannedStmt{
		Plan: &plan.Append{Children: []plan.Node{&constNode{n: 2}, &constNode{n: 1}}},
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	_, _, err = exec.Run(ctx, exec.Config{}, &plan.PlannedStmt{Plan: &unknownNode{}})
	require.Equal(t, pgcode.FeatureNotSupported, pgerror.GetPGCode(err))

	require.Panics(t, func() {
		exec.RegisterBuilder(&constNode{}, nil)
	})
}

func TestResult(t *testing.T) {
	ctx := context.Background()
	rows, cols, err := exec.Run(ctx, exec.Config{}, &plan.PlannedStmt{
		Plan: &plan.Result{Values: tree.Exprs{mustParse(t, "1 + 2")}},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"?column?"}, cols)
	require.Equal(t, "3", rows[0][0].String())

	rows, _, err = exec.Run(ctx, exec.Config{}, &plan.PlannedStmt{Plan: &plan.Result{}})
	require.NoError(t, err)
	require.Empty(t, rows)
}
