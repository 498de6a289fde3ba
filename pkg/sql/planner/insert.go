// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package planner

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/hyperplan/hyperplan/pkg/hypertable"
	"github.com/hyperplan/hyperplan/pkg/sql/chunkdispatch"
	"github.com/hyperplan/hyperplan/pkg/sql/hypertableinsert"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgcode"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgerror"
	"github.com/hyperplan/hyperplan/pkg/sql/plan"
	"github.com/hyperplan/hyperplan/pkg/util/log"
)

const (
	onConflictConstraintMsg  = "hypertables do not support ON CONFLICT statements that reference constraints"
	onConflictConstraintHint = "Use column names to infer indexes instead."
)

// insertRewriter routes the subplans of INSERTs into hypertables through
// chunk dispatch.
type insertRewriter struct {
	query      *plan.Query
	cache      *hypertable.Cache
	rangeTable plan.RangeTable
	metrics    *Metrics
}

// insertTarget is an INSERT ModifyTable whose result relations include at
// least one hypertable.
type insertTarget struct {
	slot *plan.Node
	mt   *plan.ModifyTable
	// hypertables has one entry per result relation; nil entries are
	// regular tables.
	hypertables []*hypertable.Hypertable
}

// rewrite rewrites stmt in place. Every target is resolved and validated
// before the first mutation, so an error leaves stmt untouched.
func (r *insertRewriter) rewrite(ctx context.Context, stmt *plan.PlannedStmt) error {
	var targets []insertTarget
	if err := plan.WalkStmt(stmt, func(slot *plan.Node) error {
		mt, ok := (*slot).(*plan.ModifyTable)
		if !ok || mt.Operation != plan.CmdInsert {
			return nil
		}
		t, err := r.resolve(ctx, slot, mt)
		if err != nil || t == nil {
			return err
		}
		targets = append(targets, *t)
		return nil
	}); err != nil {
		return err
	}

	// Targets nested below another target are rewritten first so that
	// their slots are still in place.
	for i := len(targets) - 1; i >= 0; i-- {
		r.apply(ctx, &targets[i])
	}
	return nil
}

// resolve looks up the result relations of mt. It returns nil if none of
// them is a hypertable.
func (r *insertRewriter) resolve(
	ctx context.Context, slot *plan.Node, mt *plan.ModifyTable,
) (*insertTarget, error) {
	if len(mt.Plans) != len(mt.ResultRelations) {
		return nil, errors.AssertionFailedf(
			"ModifyTable has %d subplans but %d result relations", len(mt.Plans), len(mt.ResultRelations))
	}
	t := insertTarget{slot: slot, mt: mt, hypertables: make([]*hypertable.Hypertable, len(mt.Plans))}
	found := false
	for i, rti := range mt.ResultRelations {
		rte, err := r.rangeTable.Fetch(rti)
		if err != nil {
			return nil, err
		}
		ht, err := r.cache.Get(ctx, rte.RelID)
		if err != nil {
			return nil, err
		}
		if ht == nil {
			continue
		}
		if oc := r.query.OnConflict; oc != nil && oc.Constraint != 0 {
			return nil, errors.WithHint(
				pgerror.New(pgcode.FeatureNotSupported, onConflictConstraintMsg),
				onConflictConstraintHint,
			)
		}
		t.hypertables[i] = ht
		found = true
	}
	if !found {
		return nil, nil
	}
	return &t, nil
}

func (r *insertRewriter) apply(ctx context.Context, t *insertTarget) {
	for i, ht := range t.hypertables {
		if ht == nil {
			continue
		}
		rti := t.mt.ResultRelations[i]
		t.mt.Plans[i] = chunkdispatch.New(t.mt.Plans[i], rti, ht.RelID, r.query)
		r.metrics.InsertsRedirected.Inc()
		log.VEventf(ctx, 2, "routing inserts into %s through chunk dispatch", ht.QualifiedName())
	}
	*t.slot = hypertableinsert.New(t.mt)
	r.metrics.ModifyTablesWrapped.Inc()
}
