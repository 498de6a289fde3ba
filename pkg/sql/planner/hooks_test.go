// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package planner

import (
	"context"
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/hyperplan/hyperplan/pkg/sql/plan"
	"github.com/hyperplan/hyperplan/pkg/sql/relopt"
	"github.com/stretchr/testify/require"
)

func tracingPlannerHook(name string, trace *[]string) PlannerHook {
	return func(
		ctx context.Context, q *plan.Query, opts plan.CursorOptions, params *plan.ParamList, next PlannerFn,
	) (*plan.PlannedStmt, error) {
		*trace = append(*trace, name+" before")
		stmt, err := next(ctx, q, opts, params)
		*trace = append(*trace, name+" after")
		return stmt, err
	}
}

func TestPlannerHookChain(t *testing.T) {
	ctx := context.Background()
	var trace []string
	hooks := &Hooks{Standard: func(
		context.Context, *plan.Query, plan.CursorOptions, *plan.ParamList,
	) (*plan.PlannedStmt, error) {
		trace = append(trace, "standard")
		return &plan.PlannedStmt{}, nil
	}}

	a := hooks.AddPlannerHook(tracingPlannerHook("a", &trace))
	b := hooks.AddPlannerHook(tracingPlannerHook("b", &trace))
	c := hooks.AddPlannerHook(tracingPlannerHook("c", &trace))

	_, err := hooks.Plan(ctx, &plan.Query{}, 0, nil)
	require.NoError(t, err)
	require.Equal(t, []string{
		"c before", "b before", "a before", "standard", "a after", "b after", "c after",
	}, trace)

	// Removing a hook from the middle keeps the order of the others.
	trace = nil
	require.NoError(t, b.Remove())
	_, err = hooks.Plan(ctx, &plan.Query{}, 0, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"c before", "a before", "standard", "a after", "c after"}, trace)

	err = b.Remove()
	require.True(t, errors.IsAssertionFailure(err))

	require.NoError(t, a.Remove())
	require.NoError(t, c.Remove())
	require.Equal(t, 0, hooks.NumPlannerHooks())

	trace = nil
	_, err = hooks.Plan(ctx, &plan.Query{}, 0, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"standard"}, trace)
}

func TestPlannerHookWithoutStandardPlanner(t *testing.T) {
	hooks := &Hooks{}
	_, err := hooks.Plan(context.Background(), &plan.Query{}, 0, nil)
	require.True(t, errors.IsAssertionFailure(err))
}

func TestSetRelPathlistHookChain(t *testing.T) {
	ctx := context.Background()
	hooks := &Hooks{}
	var trace []string
	var regs []*Registration
	for i := 0; i < 3; i++ {
		name := fmt.Sprint(i)
		regs = append(regs, hooks.AddSetRelPathlistHook(func(
			ctx context.Context,
			root *relopt.PlannerInfo,
			rel *relopt.RelOptInfo,
			rti plan.Index,
			rte *plan.RangeTblEntry,
			next SetRelPathlistFn,
		) error {
			trace = append(trace, name)
			return next(ctx, root, rel, rti, rte)
		}))
	}
	require.Equal(t, 3, hooks.NumSetRelPathlistHooks())
	require.NoError(t, hooks.SetRelPathlist(ctx, &relopt.PlannerInfo{}, &relopt.RelOptInfo{}, 1, &plan.RangeTblEntry{}))
	require.Equal(t, []string{"2", "1", "0"}, trace)

	for _, r := range regs {
		require.NoError(t, r.Remove())
	}
	trace = nil
	require.NoError(t, hooks.SetRelPathlist(ctx, &relopt.PlannerInfo{}, &relopt.RelOptInfo{}, 1, &plan.RangeTblEntry{}))
	require.Empty(t, trace)
}

func TestSetRelPathlistHookError(t *testing.T) {
	hooks := &Hooks{}
	called := false
	hooks.AddSetRelPathlistHook(func(
		ctx context.Context, root *relopt.PlannerInfo, rel *relopt.RelOptInfo, rti plan.Index,
		rte *plan.RangeTblEntry, next SetRelPathlistFn,
	) error {
		called = true
		return next(ctx, root, rel, rti, rte)
	})
	hooks.AddSetRelPathlistHook(func(
		context.Context, *relopt.PlannerInfo, *relopt.RelOptInfo, plan.Index, *plan.RangeTblEntry, SetRelPathlistFn,
	) error {
		return errors.New("boom")
	})
	err := hooks.SetRelPathlist(context.Background(), &relopt.PlannerInfo{}, &relopt.RelOptInfo{}, 1, &plan.RangeTblEntry{})
	require.EqualError(t, err, "boom")
	require.False(t, called)
}
