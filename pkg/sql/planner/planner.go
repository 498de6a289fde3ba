// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package planner rewrites plans for hypertables. It installs two hooks
// into the engine's planner:
//
//   - a planner hook that, after the standard planner ran, routes the
//     tuples of every INSERT into a hypertable through chunk dispatch;
//   - a set_rel_pathlist hook that hands hypertable children to the sort
//     transform and wraps the append paths of hypertables whose
//     restrictions call mutable functions, so that chunks can be excluded
//     when execution starts.
//
// Both hooks pin the hypertable cache for the duration of the call and
// release it on every exit path.
package planner

import (
	"context"
	"sync"

	"github.com/cockroachdb/logtags"
	"github.com/hyperplan/hyperplan/pkg/extension"
	"github.com/hyperplan/hyperplan/pkg/hypertable"
	"github.com/hyperplan/hyperplan/pkg/settings"
	"github.com/hyperplan/hyperplan/pkg/sql/plan"
	"github.com/hyperplan/hyperplan/pkg/sql/relopt"
	"github.com/hyperplan/hyperplan/pkg/util/log"
	"github.com/hyperplan/hyperplan/pkg/util/tracing"
)

// Config configures a Planner.
type Config struct {
	// Settings holds the configuration flags. They are only read.
	Settings *settings.Values
	// Hypertables is the process-wide hypertable cache.
	Hypertables *hypertable.Manager
	// Metrics may be nil.
	Metrics *Metrics
	Knobs   TestingKnobs
}

// TestingKnobs allows tests to observe the planner.
type TestingKnobs struct {
	// SortTransform, if set, is called instead of sorttransform.Apply.
	SortTransform func(ctx context.Context, root *relopt.PlannerInfo, rel *relopt.RelOptInfo)
}

// Planner holds the state shared by the hooks.
type Planner struct {
	cfg Config
}

// NewPlanner creates a Planner.
func NewPlanner(cfg Config) *Planner {
	if cfg.Settings == nil {
		cfg.Settings = settings.MakeValues()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics()
	}
	return &Planner{cfg: cfg}
}

// Metrics returns the planner's metrics.
func (p *Planner) Metrics() *Metrics { return p.cfg.Metrics }

// Install installs the planner's hooks and returns a function removing
// them. The returned function may be called more than once.
func (p *Planner) Install(hooks *Hooks) (uninstall func()) {
	plannerReg := hooks.AddPlannerHook(p.plan)
	pathlistReg := hooks.AddSetRelPathlistHook(p.setRelPathlist)
	var once sync.Once
	return func() {
		once.Do(func() {
			for _, reg := range []*Registration{pathlistReg, plannerReg} {
				if err := reg.Remove(); err != nil {
					log.Warningf(context.Background(), "uninstalling planner hooks: %v", err)
				}
			}
		})
	}
}

// Init creates a Planner for cfg and installs its hooks.
func Init(hooks *Hooks, cfg Config) (uninstall func()) {
	return NewPlanner(cfg).Install(hooks)
}

// plan is the planner hook.
func (p *Planner) plan(
	ctx context.Context,
	q *plan.Query,
	opts plan.CursorOptions,
	params *plan.ParamList,
	next PlannerFn,
) (*plan.PlannedStmt, error) {
	stmt, err := next(ctx, q, opts, params)
	if err != nil {
		return nil, err
	}
	if !extension.IsLoaded() || stmt == nil {
		return stmt, nil
	}

	ctx = logtags.AddTag(ctx, "planner", nil)
	ctx, sp := tracing.ChildSpan(ctx, "planner.plan")
	defer tracing.FinishSpan(sp)

	cache := p.cfg.Hypertables.Pin()
	defer cache.Release()

	r := insertRewriter{
		query:      q,
		cache:      cache,
		rangeTable: stmt.RangeTable,
		metrics:    p.cfg.Metrics,
	}
	if err := r.rewrite(ctx, stmt); err != nil {
		return nil, err
	}
	return stmt, nil
}
