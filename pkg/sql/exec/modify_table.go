// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package exec

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgcode"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgerror"
	"github.com/hyperplan/hyperplan/pkg/sql/plan"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/hyperplan/hyperplan/pkg/util/log"
	"github.com/lib/pq/oid"
)

// ModifyTableState executes a ModifyTable node. It drains each subplan in
// turn and writes the produced tuples to the subplan's result relation.
//
// ResultRelID names the relation that receives the tuple being written.
// Subplans may redirect it while they produce a tuple; it is reset to the
// subplan's result relation before every tuple is pulled.
type ModifyTableState struct {
	b *Builder

	Operation plan.CmdType
	// Subplans holds the operators of the node's plans, in order.
	Subplans []Operator
	// ResultRelIDs holds the relation identifiers of the node's result
	// relations, parallel to Subplans.
	ResultRelIDs []oid.Oid
	ResultRelID  oid.Oid

	done bool
}

var _ Operator = &ModifyTableState{}

func (b *Builder) buildModifyTable(ctx context.Context, n *plan.ModifyTable) (Operator, error) {
	if len(n.Plans) != len(n.ResultRelations) {
		return nil, errors.AssertionFailedf("ModifyTable has %d plans but %d result relations",
			len(n.Plans), len(n.ResultRelations))
	}
	if n.Operation != plan.CmdInsert {
		return nil, pgerror.Newf(pgcode.FeatureNotSupported, "cannot execute %s statements", n.Operation)
	}
	mts := &ModifyTableState{b: b, Operation: n.Operation}
	for i := range n.Plans {
		rte, err := b.RangeTable.Fetch(n.ResultRelations[i])
		if err != nil {
			return nil, err
		}
		op, err := b.Build(ctx, n.Plans[i])
		if err != nil {
			return nil, err
		}
		mts.Subplans = append(mts.Subplans, op)
		mts.ResultRelIDs = append(mts.ResultRelIDs, rte.RelID)
	}
	return mts, nil
}

// Init implements the Operator interface.
func (m *ModifyTableState) Init(ctx context.Context) error {
	for _, sp := range m.Subplans {
		if err := sp.Init(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Next implements the Operator interface. It performs all writes on the
// first call and returns a single row holding the number of written rows.
func (m *ModifyTableState) Next(ctx context.Context) (Row, error) {
	if m.done {
		return nil, nil
	}
	m.done = true
	var count int64
	for i, sp := range m.Subplans {
		for {
			m.ResultRelID = m.ResultRelIDs[i]
			row, err := sp.Next(ctx)
			if err != nil {
				return nil, err
			}
			if row == nil {
				break
			}
			if err := m.b.Storage.Insert(ctx, m.ResultRelID, sp.Columns(), row); err != nil {
				return nil, err
			}
			if log.V(3) {
				log.Infof(ctx, "inserted row into relation %d", m.ResultRelID)
			}
			count++
		}
	}
	return Row{tree.NewDInt(tree.DInt(count))}, nil
}

// Columns implements the Operator interface.
func (m *ModifyTableState) Columns() []string { return []string{"count"} }
