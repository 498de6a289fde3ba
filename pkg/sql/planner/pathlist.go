// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package planner

import (
	"context"

	"github.com/cockroachdb/logtags"
	"github.com/hyperplan/hyperplan/pkg/extension"
	"github.com/hyperplan/hyperplan/pkg/hypertable"
	"github.com/hyperplan/hyperplan/pkg/sql/constraintawareappend"
	"github.com/hyperplan/hyperplan/pkg/sql/plan"
	"github.com/hyperplan/hyperplan/pkg/sql/relopt"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/hyperplan/hyperplan/pkg/sql/sorttransform"
	"github.com/hyperplan/hyperplan/pkg/util/log"
	"github.com/hyperplan/hyperplan/pkg/util/tracing"
)

// isAppendChild is true for a member of an append relation: a plain table
// reached through inheritance expansion.
func isAppendChild(rel *relopt.RelOptInfo, rte *plan.RangeTblEntry) bool {
	return rel.Kind == relopt.OtherMemberRel &&
		!rte.Inh &&
		rel.RTEKind == plan.RTERelation &&
		rte.RelKind == plan.RelKindRelation
}

// isAppendParent is true for a plain table whose inheritance children are
// scanned with it.
func isAppendParent(rel *relopt.RelOptInfo, rte *plan.RangeTblEntry) bool {
	return rel.Kind == relopt.BaseRel &&
		rte.Inh &&
		rel.RTEKind == plan.RTERelation &&
		rte.RelKind == plan.RelKindRelation
}

// setRelPathlist is the set_rel_pathlist hook.
//
// Sort transform delegation for the members of a hypertable happens when
// the hypertable's own member is visited, so the parent relation must have
// registered its append relation records before its members are visited.
func (p *Planner) setRelPathlist(
	ctx context.Context,
	root *relopt.PlannerInfo,
	rel *relopt.RelOptInfo,
	rti plan.Index,
	rte *plan.RangeTblEntry,
	next SetRelPathlistFn,
) error {
	if err := next(ctx, root, rel, rti, rte); err != nil {
		return err
	}
	if !extension.IsLoaded() || rel.IsDummy() || rte.RelID == 0 {
		return nil
	}
	sv := p.cfg.Settings
	optimizeNon := OptimizeNonHypertables.Get(sv)
	appendParent, appendChild := isAppendParent(rel, rte), isAppendChild(rel, rte)
	if !optimizeNon && !appendParent && !appendChild {
		return nil
	}

	ctx = logtags.AddTag(ctx, "planner", nil)
	ctx, sp := tracing.ChildSpan(ctx, "planner.set-rel-pathlist")
	defer tracing.FinishSpan(sp)

	cache := p.cfg.Hypertables.Pin()
	defer cache.Release()

	ht, err := cache.Get(ctx, rte.RelID)
	if err != nil {
		return err
	}
	if DisableOptimizations.Get(sv) || (ht == nil && !optimizeNon) {
		return nil
	}

	if optimizeNon {
		p.sortTransform(ctx, root, rel)
	} else if ht != nil && appendChild {
		for _, ai := range root.AppendRelList {
			if ai.ParentRelOid != rte.RelID {
				continue
			}
			if child := root.Rel(ai.ChildRelID); child != nil {
				p.sortTransform(ctx, root, child)
			}
		}
	}

	if ht != nil && appendParent && (root.Parse == nil || root.Parse.ResultRelation == 0) {
		p.wrapAppendPaths(ctx, root, rel, ht)
	}
	return nil
}

func (p *Planner) sortTransform(ctx context.Context, root *relopt.PlannerInfo, rel *relopt.RelOptInfo) {
	p.cfg.Metrics.SortTransformsDelegated.Inc()
	if fn := p.cfg.Knobs.SortTransform; fn != nil {
		fn(ctx, root, rel)
		return
	}
	sorttransform.Apply(ctx, root, rel)
}

// wrapAppendPaths replaces the append paths of rel by constraint-aware
// append paths when a restriction of rel calls a mutable function.
func (p *Planner) wrapAppendPaths(
	ctx context.Context, root *relopt.PlannerInfo, rel *relopt.RelOptInfo, ht *hypertable.Hypertable,
) {
	sv := p.cfg.Settings
	if !ConstraintAwareAppendEnabled.Get(sv) || ConstraintExclusion.Get(sv) == ConstraintExclusionOff {
		return
	}
	for i, path := range rel.Pathlist {
		switch path.Type() {
		case relopt.PathTypeAppend, relopt.PathTypeMergeAppend:
		default:
			continue
		}
		if !hasMutableRestriction(path.Parent()) {
			continue
		}
		rel.Pathlist[i] = constraintawareappend.NewPath(root, ht, path)
		p.cfg.Metrics.AppendPathsWrapped.Inc()
		log.VEventf(ctx, 2, "wrapped %s path of %s for execution-time chunk exclusion", path.Type(), ht.QualifiedName())
	}
}

func hasMutableRestriction(rel *relopt.RelOptInfo) bool {
	if rel == nil {
		return false
	}
	for _, ri := range rel.BaseRestrictInfo {
		if tree.ContainsMutableFunctions(ri.Clause) {
			return true
		}
	}
	return false
}
