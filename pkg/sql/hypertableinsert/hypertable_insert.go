// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package hypertableinsert implements the plan node that wraps an INSERT
// into a hypertable. At execution time it connects the chunk-dispatch
// nodes below the ModifyTable to the ModifyTable's state.
package hypertableinsert

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/hyperplan/hyperplan/pkg/sql/exec"
	"github.com/hyperplan/hyperplan/pkg/sql/plan"
)

// Node is the hypertable-insert plan node. Its input is always the
// ModifyTable it was created for.
type Node struct {
	plan.SingleInput
}

var _ plan.Node = &Node{}

// New wraps mt.
func New(mt *plan.ModifyTable) *Node {
	return &Node{SingleInput: plan.SingleInput{Input: mt}}
}

// ModifyTable returns the wrapped node.
func (n *Node) ModifyTable() *plan.ModifyTable {
	mt, _ := n.Input.(*plan.ModifyTable)
	return mt
}

// SafeFormat implements the plan.Node interface.
func (n *Node) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString("HypertableInsert")
}

// parentSetter is implemented by operators that need the state of the
// ModifyTable consuming their tuples.
type parentSetter interface {
	SetParent(mts *exec.ModifyTableState)
}

func init() {
	exec.RegisterBuilder(&Node{}, func(ctx context.Context, b *exec.Builder, n plan.Node) (exec.Operator, error) {
		input, err := b.Build(ctx, n.(*Node).Input)
		if err != nil {
			return nil, err
		}
		mts, ok := input.(*exec.ModifyTableState)
		if !ok {
			return nil, errors.AssertionFailedf("hypertable insert expects a ModifyTable input, found %T", input)
		}
		for _, sp := range mts.Subplans {
			if ps, ok := sp.(parentSetter); ok {
				ps.SetParent(mts)
			}
		}
		return mts, nil
	})
}
