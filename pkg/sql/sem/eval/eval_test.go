// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package eval_test

import (
	"context"
	"testing"
	"time"

	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgcode"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgerror"
	_ "github.com/hyperplan/hyperplan/pkg/sql/sem/builtins"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/eval"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/stretchr/testify/require"
)

type row map[string]tree.Datum

func (r row) VarEval(v *tree.Var) (tree.Datum, error) {
	return r[v.Name], nil
}

func mustFunc(t *testing.T, name string, args ...tree.Expr) *tree.FuncExpr {
	t.Helper()
	f, err := tree.ResolveFunc(name, args...)
	require.NoError(t, err)
	return f
}

func TestEvalNowMinusInterval(t *testing.T) {
	ctx := context.Background()
	stmtTS := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	evalCtx := &eval.Context{
		StmtTimestamp: stmtTS,
		IVarContainer: row{"time": tree.MakeDTimestamp(stmtTS.Add(-30 * time.Minute))},
	}

	cutoff := &tree.BinaryExpr{
		Operator: tree.Minus,
		Left:     mustFunc(t, "now"),
		Right:    &tree.DInterval{Duration: time.Hour},
	}
	d, err := eval.Expr(ctx, evalCtx, cutoff)
	require.NoError(t, err)
	require.True(t, stmtTS.Add(-time.Hour).Equal(d.(*tree.DTimestamp).Time))

	pred := tree.NewComparisonExpr(tree.GT, tree.NewVar("time"), cutoff)
	d, err = eval.Expr(ctx, evalCtx, pred)
	require.NoError(t, err)
	require.Equal(t, tree.DBoolTrue, d)
}

func TestEvalThreeValuedLogic(t *testing.T) {
	ctx := context.Background()
	evalCtx := &eval.Context{IVarContainer: row{"n": tree.DNull, "t": tree.DBoolTrue, "f": tree.DBoolFalse}}
	n, tr, f := tree.NewVar("n"), tree.NewVar("t"), tree.NewVar("f")

	testCases := []struct {
		expr     tree.Expr
		expected tree.Datum
	}{
		{&tree.AndExpr{Left: n, Right: tr}, tree.DNull},
		{&tree.AndExpr{Left: n, Right: f}, tree.DBoolFalse},
		{&tree.AndExpr{Left: tr, Right: tr}, tree.DBoolTrue},
		{&tree.OrExpr{Left: n, Right: tr}, tree.DBoolTrue},
		{&tree.OrExpr{Left: n, Right: f}, tree.DNull},
		{&tree.OrExpr{Left: f, Right: f}, tree.DBoolFalse},
		{&tree.NotExpr{Expr: n}, tree.DNull},
		{&tree.NotExpr{Expr: f}, tree.DBoolTrue},
		{tree.NewComparisonExpr(tree.EQ, n, tree.NewDInt(1)), tree.DNull},
	}
	for _, tc := range testCases {
		d, err := eval.Expr(ctx, evalCtx, tc.expr)
		require.NoError(t, err, tree.AsString(tc.expr))
		require.Equal(t, tc.expected, d, tree.AsString(tc.expr))
	}
}

func TestEvalErrors(t *testing.T) {
	ctx := context.Background()

	_, err := eval.Expr(ctx, &eval.Context{}, tree.NewVar("x"))
	require.Equal(t, pgcode.UndefinedColumn, pgerror.GetPGCode(err))

	_, err = eval.BinaryOp(tree.Plus, tree.NewDInt(1), tree.NewDString("a"))
	require.Equal(t, pgcode.UndefinedFunction, pgerror.GetPGCode(err))

	_, err = eval.Expr(ctx, &eval.Context{}, &tree.AndExpr{Left: tree.NewDInt(1), Right: tree.DBoolTrue})
	require.Equal(t, pgcode.DatatypeMismatch, pgerror.GetPGCode(err))

	_, err = eval.ComparisonOp(tree.LT, tree.NewDInt(1), tree.NewDString("a"))
	require.Equal(t, pgcode.DataException, pgerror.GetPGCode(err))
}
