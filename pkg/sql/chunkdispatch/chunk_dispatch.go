// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package chunkdispatch implements the plan node that routes tuples headed
// for a hypertable to the chunk that covers them.
//
// The node sits between an INSERT's ModifyTable node and the subplan that
// produces the tuples. For every tuple it reads from the subplan it finds
// (or creates) the matching chunk and points the ModifyTable's current
// result relation at that chunk before handing the tuple up.
package chunkdispatch

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/hyperplan/hyperplan/pkg/hypertable"
	"github.com/hyperplan/hyperplan/pkg/sql/exec"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgcode"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgerror"
	"github.com/hyperplan/hyperplan/pkg/sql/plan"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/hyperplan/hyperplan/pkg/util/log"
	"github.com/lib/pq/oid"
)

// Node is the chunk-dispatch plan node.
type Node struct {
	plan.SingleInput
	// RTI is the range table index of the hypertable.
	RTI plan.Index
	// HypertableRelID is the relation identifier of the hypertable.
	HypertableRelID oid.Oid
	// TargetList names the hypertable columns filled by the input's tuples.
	TargetList []string
}

var _ plan.Node = &Node{}

// New creates a chunk-dispatch node reading tuples from subplan, which
// produces rows for the hypertable at range table index rti.
func New(subplan plan.Node, rti plan.Index, relid oid.Oid, q *plan.Query) *Node {
	n := &Node{
		SingleInput:     plan.SingleInput{Input: subplan},
		RTI:             rti,
		HypertableRelID: relid,
	}
	if q != nil {
		n.TargetList = append([]string(nil), q.TargetList...)
	}
	return n
}

// SafeFormat implements the plan.Node interface.
func (n *Node) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("ChunkDispatch hypertable=%d", redact.Safe(uint32(n.HypertableRelID)))
}

// State executes a Node.
type State struct {
	b      *exec.Builder
	node   *Node
	input  exec.Operator
	ht     *hypertable.Hypertable
	parent *exec.ModifyTableState
	cols   []string
}

var _ exec.Operator = &State{}

func init() {
	exec.RegisterBuilder(&Node{}, func(ctx context.Context, b *exec.Builder, n plan.Node) (exec.Operator, error) {
		node := n.(*Node)
		input, err := b.Build(ctx, node.Input)
		if err != nil {
			return nil, err
		}
		return &State{b: b, node: node, input: input}, nil
	})
}

// SetParent gives the state access to the ModifyTable that consumes its
// tuples. It must be called before the first call to Next.
func (s *State) SetParent(mts *exec.ModifyTableState) {
	s.parent = mts
}

// Init implements the exec.Operator interface.
func (s *State) Init(ctx context.Context) error {
	if s.b.Hypertables == nil || s.b.Chunks == nil {
		return errors.AssertionFailedf("chunk dispatch requires a hypertable cache and a chunk store")
	}
	ht, err := s.b.Hypertables.Get(ctx, s.node.HypertableRelID)
	if err != nil {
		return err
	}
	if ht == nil {
		return pgerror.Newf(pgcode.UndefinedTable,
			"relation with OID %d is not a hypertable", s.node.HypertableRelID)
	}
	s.ht = ht
	s.cols = s.node.TargetList
	if len(s.cols) == 0 {
		s.cols = s.input.Columns()
	}
	return s.input.Init(ctx)
}

// Next implements the exec.Operator interface.
func (s *State) Next(ctx context.Context) (exec.Row, error) {
	if s.parent == nil {
		return nil, errors.AssertionFailedf("chunk dispatch for hypertable %d has no parent ModifyTable",
			s.node.HypertableRelID)
	}
	row, err := s.input.Next(ctx)
	if err != nil || row == nil {
		return nil, err
	}
	p, err := s.ht.PointFor(func(col string) (tree.Datum, bool) {
		for i, c := range s.cols {
			if c == col && i < len(row) {
				return row[i], true
			}
		}
		return nil, false
	})
	if err != nil {
		return nil, err
	}
	c, err := s.b.Chunks.FindOrCreate(ctx, s.ht, p)
	if err != nil {
		return nil, err
	}
	if err := s.b.Storage.CreateTableLike(ctx, c.RelID, s.ht.RelID); err != nil {
		return nil, err
	}
	if log.V(3) {
		log.Infof(ctx, "dispatching tuple to chunk %s.%s", c.Schema, c.Table)
	}
	s.parent.ResultRelID = c.RelID
	return row, nil
}

// Columns implements the exec.Operator interface.
func (s *State) Columns() []string {
	if len(s.node.TargetList) > 0 {
		return s.node.TargetList
	}
	return s.input.Columns()
}
