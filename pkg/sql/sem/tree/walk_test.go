// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package tree

import (
	"testing"
	"time"

	"github.com/hyperplan/hyperplan/pkg/sql/sem/volatility"
	"github.com/stretchr/testify/require"
)

var (
	testNow = &FunctionDefinition{Name: "now", Volatility: volatility.Stable}
	testAbs = &FunctionDefinition{Name: "abs", Volatility: volatility.Immutable, MinArgs: 1, MaxArgs: 1}
)

func TestContainsMutableFunctions(t *testing.T) {
	ts := NewVar("time")
	hour := &DInterval{Duration: time.Hour}

	testCases := []struct {
		expr     Expr
		expected bool
	}{
		{NewComparisonExpr(GT, ts, NewDInt(1)), false},
		{NewComparisonExpr(GT, ts, &FuncExpr{Func: testNow}), true},
		{NewComparisonExpr(GT, ts, &BinaryExpr{Operator: Minus, Left: &FuncExpr{Func: testNow}, Right: hour}), true},
		{&AndExpr{
			Left:  NewComparisonExpr(EQ, NewVar("a"), NewDInt(1)),
			Right: &NotExpr{Expr: NewComparisonExpr(LT, ts, &FuncExpr{Func: testNow})},
		}, true},
		{NewComparisonExpr(EQ, &FuncExpr{Func: testAbs, Args: Exprs{NewVar("a")}}, NewDInt(3)), false},
		{NewComparisonExpr(GE, ts, &BinaryExpr{
			Operator: Minus, Left: &DTimestamp{Time: time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)}, Right: hour,
		}), false},
		{nil, false},
	}
	for _, tc := range testCases {
		var name string
		if tc.expr != nil {
			name = AsString(tc.expr)
		}
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.expected, ContainsMutableFunctions(tc.expr))
		})
	}
}

func TestWalkExprCopyOnWrite(t *testing.T) {
	orig := &AndExpr{
		Left:  NewComparisonExpr(EQ, NewVar("a"), NewDInt(1)),
		Right: NewComparisonExpr(EQ, NewVar("b"), NewDInt(2)),
	}
	replaced, err := SimpleVisit(orig, func(e Expr) (bool, Expr, error) {
		if d, ok := e.(*DInt); ok && *d == 2 {
			return false, NewDInt(3), nil
		}
		return true, e, nil
	})
	require.NoError(t, err)
	require.Equal(t, "(a = 1) AND (b = 3)", AsString(replaced))
	require.Equal(t, "(a = 1) AND (b = 2)", AsString(orig))
	// The untouched left branch is shared.
	require.Same(t, orig.Left, replaced.(*AndExpr).Left)
}

func TestBindVars(t *testing.T) {
	e := NewComparisonExpr(GT, NewVar("time"), &Var{VarNo: 2, Name: "other"})
	BindVars(e, 7)
	require.Equal(t, "7.time > 2.other", AsStringWithFlags(e, FmtShowVarNo))
}

func TestParseDInterval(t *testing.T) {
	for in, expected := range map[string]time.Duration{
		"1h30m":           90 * time.Minute,
		"1 hour":          time.Hour,
		"2 days 3 hours":  51 * time.Hour,
		"1 week":          7 * 24 * time.Hour,
		"500 millisecond": 500 * time.Millisecond,
	} {
		d, err := ParseDInterval(in)
		require.NoError(t, err, in)
		require.Equal(t, expected, d.Duration, in)
	}
	for _, in := range []string{"", "1", "1 month", "x hours"} {
		_, err := ParseDInterval(in)
		require.Error(t, err, in)
	}
}

func TestDatumCompare(t *testing.T) {
	a, err := ParseDTimestamp("2026-01-01 00:00:00")
	require.NoError(t, err)
	b, err := ParseDTimestamp("2026-01-02")
	require.NoError(t, err)

	c, err := a.Compare(b)
	require.NoError(t, err)
	require.Equal(t, -1, c)

	c, err = a.Compare(DNull)
	require.NoError(t, err)
	require.Equal(t, 1, c)

	c, err = DNull.Compare(a)
	require.NoError(t, err)
	require.Equal(t, -1, c)

	_, err = a.Compare(NewDInt(1))
	require.Error(t, err)

	require.Equal(t, "'2026-01-01 00:00:00'::TIMESTAMP", a.String())
	require.Equal(t, "'it''s'", NewDString("it's").String())
}

func TestDatumString(t *testing.T) {
	for _, tc := range []struct {
		d        Datum
		expected string
	}{
		{DNull, "NULL"},
		{NewDInt(42), "42"},
		{NewDString("x"), "'x'"},
	} {
		require.Equal(t, tc.expected, tc.d.String())
	}
}
