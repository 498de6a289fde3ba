// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package sorttransform lets the planner satisfy an ordering on a
// monotonic transformation of a column with an ordering on the column.
//
// date_trunc(unit, col) and time_bucket(width, col) are non-decreasing in
// col, so rows ordered by col are also ordered by the bucketed value. A
// relation that can produce rows ordered by col (an index on time, a
// merge-append over time-ordered chunks) can therefore serve
// "ORDER BY time_bucket('1 hour', time)" without a sort.
package sorttransform

import (
	"context"

	"github.com/hyperplan/hyperplan/pkg/sql/relopt"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/hyperplan/hyperplan/pkg/util/log"
)

// monotonicFuncs maps the names of the functions that are non-decreasing in
// their column argument to that argument's position.
var monotonicFuncs = map[string]int{
	"date_trunc":  1,
	"time_bucket": 1,
}

// Transform returns the column that expr is a monotonic transformation of.
func Transform(expr tree.Expr) (*tree.Var, bool) {
	f, ok := expr.(*tree.FuncExpr)
	if !ok || f.Func == nil {
		return nil, false
	}
	pos, ok := monotonicFuncs[f.Func.Name]
	if !ok || len(f.Args) <= pos {
		return nil, false
	}
	v, ok := f.Args[pos].(*tree.Var)
	if !ok {
		return nil, false
	}
	for i, a := range f.Args {
		if i == pos {
			continue
		}
		// The other arguments must be constant for the transformation to be
		// the same for every row.
		if _, ok := a.(tree.Datum); !ok {
			return nil, false
		}
	}
	return v, true
}

// Apply records on rel an equivalent ordering for every requested query
// ordering that is a monotonic transformation of one of rel's columns.
// Column references bound to rel's append parent are accepted too, since
// an append child produces the parent's columns.
func Apply(ctx context.Context, root *relopt.PlannerInfo, rel *relopt.RelOptInfo) {
	if rel == nil {
		return
	}
	parents := map[uint32]bool{uint32(rel.RelID): true, 0: true}
	for _, ai := range root.AppendRelList {
		if ai.ChildRelID == rel.RelID {
			parents[uint32(ai.ParentRelID)] = true
		}
	}
	for _, pk := range root.QueryPathKeys {
		v, ok := Transform(pk.Expr)
		if !ok || !parents[v.VarNo] {
			continue
		}
		base := relopt.PathKey{
			Expr:       &tree.Var{VarNo: uint32(rel.RelID), AttNo: v.AttNo, Name: v.Name},
			Descending: pk.Descending,
		}
		if hasOrdering(rel, pk, base) {
			continue
		}
		rel.EquivalentOrderings = append(rel.EquivalentOrderings,
			relopt.EquivalentOrdering{Transformed: pk, Base: base})
		log.VEventf(ctx, 2, "relation %d: ordering on %s satisfied by %s", rel.RelID, pk, base)
	}
}

func hasOrdering(rel *relopt.RelOptInfo, transformed, base relopt.PathKey) bool {
	for _, eo := range rel.EquivalentOrderings {
		if eo.Transformed.String() == transformed.String() && eo.Base.String() == base.String() {
			return true
		}
	}
	return false
}
