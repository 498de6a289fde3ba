// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package planner

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/hyperplan/hyperplan/pkg/sql/plan"
	"github.com/hyperplan/hyperplan/pkg/sql/relopt"
	"github.com/hyperplan/hyperplan/pkg/util/syncutil"
)

// PlannerFn plans a query.
type PlannerFn func(
	ctx context.Context, q *plan.Query, opts plan.CursorOptions, params *plan.ParamList,
) (*plan.PlannedStmt, error)

// PlannerHook intercepts planning. It is expected to call next, the
// previously installed hook or the standard planner, and may rewrite the
// resulting statement.
type PlannerHook func(
	ctx context.Context, q *plan.Query, opts plan.CursorOptions, params *plan.ParamList, next PlannerFn,
) (*plan.PlannedStmt, error)

// SetRelPathlistFn is called once the candidate paths of a relation are
// complete.
type SetRelPathlistFn func(
	ctx context.Context, root *relopt.PlannerInfo, rel *relopt.RelOptInfo, rti plan.Index, rte *plan.RangeTblEntry,
) error

// SetRelPathlistHook intercepts pathlist completion. It is expected to
// call next and may then replace entries of rel.Pathlist.
type SetRelPathlistHook func(
	ctx context.Context,
	root *relopt.PlannerInfo,
	rel *relopt.RelOptInfo,
	rti plan.Index,
	rte *plan.RangeTblEntry,
	next SetRelPathlistFn,
) error

type plannerEntry struct{ hook PlannerHook }

type pathlistEntry struct{ hook SetRelPathlistHook }

// Hooks is the registry of planning hooks of the engine. Hooks run newest
// first; each receives the one installed before it as next. It is safe for
// concurrent use.
type Hooks struct {
	// Standard is the engine's own planner, called at the end of the
	// planner hook chain.
	Standard PlannerFn

	mu struct {
		syncutil.Mutex
		planners  []*plannerEntry
		pathlists []*pathlistEntry
	}
}

// Registration identifies an installed hook.
type Registration struct {
	remove func() error
}

// Remove uninstalls the hook. The other hooks keep their relative order.
// Removing a hook twice is an error.
func (r *Registration) Remove() error {
	return r.remove()
}

// AddPlannerHook installs hook at the head of the planner chain.
func (h *Hooks) AddPlannerHook(hook PlannerHook) *Registration {
	e := &plannerEntry{hook: hook}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mu.planners = append(h.mu.planners, e)
	return &Registration{remove: func() error {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, other := range h.mu.planners {
			if other == e {
				h.mu.planners = append(h.mu.planners[:i:i], h.mu.planners[i+1:]...)
				return nil
			}
		}
		return errors.AssertionFailedf("planner hook is not installed")
	}}
}

// AddSetRelPathlistHook installs hook at the head of the pathlist chain.
func (h *Hooks) AddSetRelPathlistHook(hook SetRelPathlistHook) *Registration {
	e := &pathlistEntry{hook: hook}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mu.pathlists = append(h.mu.pathlists, e)
	return &Registration{remove: func() error {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, other := range h.mu.pathlists {
			if other == e {
				h.mu.pathlists = append(h.mu.pathlists[:i:i], h.mu.pathlists[i+1:]...)
				return nil
			}
		}
		return errors.AssertionFailedf("set_rel_pathlist hook is not installed")
	}}
}

// NumPlannerHooks returns the number of installed planner hooks.
func (h *Hooks) NumPlannerHooks() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.mu.planners)
}

// NumSetRelPathlistHooks returns the number of installed pathlist hooks.
func (h *Hooks) NumSetRelPathlistHooks() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.mu.pathlists)
}

// Plan runs the planner chain.
func (h *Hooks) Plan(
	ctx context.Context, q *plan.Query, opts plan.CursorOptions, params *plan.ParamList,
) (*plan.PlannedStmt, error) {
	h.mu.Lock()
	chain := append([]*plannerEntry(nil), h.mu.planners...)
	h.mu.Unlock()

	if h.Standard == nil {
		return nil, errors.AssertionFailedf("no standard planner")
	}
	next := h.Standard
	for _, e := range chain {
		hook, prev := e.hook, next
		next = func(
			ctx context.Context, q *plan.Query, opts plan.CursorOptions, params *plan.ParamList,
		) (*plan.PlannedStmt, error) {
			return hook(ctx, q, opts, params, prev)
		}
	}
	return next(ctx, q, opts, params)
}

// SetRelPathlist runs the pathlist chain. It has the signature of
// SetRelPathlistFn so that it can be handed to the standard planner.
func (h *Hooks) SetRelPathlist(
	ctx context.Context, root *relopt.PlannerInfo, rel *relopt.RelOptInfo, rti plan.Index, rte *plan.RangeTblEntry,
) error {
	h.mu.Lock()
	chain := append([]*pathlistEntry(nil), h.mu.pathlists...)
	h.mu.Unlock()

	next := SetRelPathlistFn(func(
		context.Context, *relopt.PlannerInfo, *relopt.RelOptInfo, plan.Index, *plan.RangeTblEntry,
	) error {
		return nil
	})
	for _, e := range chain {
		hook, prev := e.hook, next
		next = func(
			ctx context.Context, root *relopt.PlannerInfo, rel *relopt.RelOptInfo, rti plan.Index, rte *plan.RangeTblEntry,
		) error {
			return hook(ctx, root, rel, rti, rte, prev)
		}
	}
	return next(ctx, root, rel, rti, rte)
}
