// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package plan defines the physical plan tree produced by the planner and
// the primitives used to rewrite it in place.
package plan

import (
	"github.com/cockroachdb/redact"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
)

// Node is a node of the plan tree.
//
// A node owns its children. ChildSlots returns pointers into the node's own
// fields so that rewrites can replace a child without knowing the concrete
// type of its parent. The returned slots must cover every child reachable
// from the node, including children held in auxiliary per-branch
// structures.
type Node interface {
	// SafeFormat prints a one-line description of the node, without its
	// children.
	redact.SafeFormatter
	ChildSlots() []*Node
}

// ZeroInput is embedded in Node implementations that have no children.
type ZeroInput struct{}

// ChildSlots implements the Node interface.
func (ZeroInput) ChildSlots() []*Node { return nil }

// SingleInput is embedded in Node implementations that have a single child.
type SingleInput struct {
	Input Node
}

// ChildSlots implements the Node interface.
func (n *SingleInput) ChildSlots() []*Node { return []*Node{&n.Input} }

// TwoInput is embedded in Node implementations with an outer (left) and an
// inner (right) child.
type TwoInput struct {
	Left, Right Node
}

// ChildSlots implements the Node interface.
func (n *TwoInput) ChildSlots() []*Node { return []*Node{&n.Left, &n.Right} }

func slotsOf(nodes []Node) []*Node {
	slots := make([]*Node, len(nodes))
	for i := range nodes {
		slots[i] = &nodes[i]
	}
	return slots
}

// Scan holds the fields shared by relation scans.
type Scan struct {
	RelIndex Index
	Quals    tree.Exprs
}

func (s *Scan) format(w redact.SafePrinter, name redact.SafeString) {
	w.Printf("%s rel=%d", name, s.RelIndex)
	formatExprs(w, "filter", s.Quals)
}

func formatExprs(w redact.SafePrinter, label redact.SafeString, exprs tree.Exprs) {
	if len(exprs) == 0 {
		return
	}
	w.Printf(" %s=[", label)
	for i, e := range exprs {
		if i > 0 {
			w.SafeString(", ")
		}
		w.Print(tree.AsString(e))
	}
	w.SafeRune(']')
}

// Result produces a single row computed from Values. Input is optional.
type Result struct {
	SingleInput
	Values tree.Exprs
}

// SafeFormat implements the Node interface.
func (n *Result) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString("Result")
	formatExprs(w, "values", n.Values)
}

// SeqScan is a sequential scan of a relation.
type SeqScan struct {
	ZeroInput
	Scan
}

// SafeFormat implements the Node interface.
func (n *SeqScan) SafeFormat(w redact.SafePrinter, _ rune) { n.format(w, "SeqScan") }

// IndexScan scans a relation through an index.
type IndexScan struct {
	ZeroInput
	Scan
	IndexName string
}

// SafeFormat implements the Node interface.
func (n *IndexScan) SafeFormat(w redact.SafePrinter, _ rune) {
	n.format(w, "IndexScan")
	w.Printf(" index=%s", n.IndexName)
}

// ValuesScan produces the rows of a VALUES list.
type ValuesScan struct {
	ZeroInput
	Rows []tree.Exprs
	// Columns names the produced columns.
	Columns []string
}

// SafeFormat implements the Node interface.
func (n *ValuesScan) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("ValuesScan rows=%d", redact.Safe(len(n.Rows)))
}

// Append concatenates the output of its children.
type Append struct {
	Children []Node
}

// ChildSlots implements the Node interface.
func (n *Append) ChildSlots() []*Node { return slotsOf(n.Children) }

// SafeFormat implements the Node interface.
func (n *Append) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("Append children=%d", redact.Safe(len(n.Children)))
}

// MergeAppend merges the sorted output of its children.
type MergeAppend struct {
	Children []Node
	SortKeys tree.Exprs
	// Descending has one entry per sort key; a missing entry means
	// ascending.
	Descending []bool
}

// ChildSlots implements the Node interface.
func (n *MergeAppend) ChildSlots() []*Node { return slotsOf(n.Children) }

// SafeFormat implements the Node interface.
func (n *MergeAppend) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("MergeAppend children=%d", redact.Safe(len(n.Children)))
	formatExprs(w, "keys", n.SortKeys)
}

// Sort sorts its input.
type Sort struct {
	SingleInput
	Keys       tree.Exprs
	Descending []bool
}

// SafeFormat implements the Node interface.
func (n *Sort) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString("Sort")
	formatExprs(w, "keys", n.Keys)
}

// Limit returns the first Count rows of its input.
type Limit struct {
	SingleInput
	Count tree.Expr
}

// SafeFormat implements the Node interface.
func (n *Limit) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString("Limit")
	if n.Count != nil {
		formatExprs(w, "count", tree.Exprs{n.Count})
	}
}

// Agg groups its input.
type Agg struct {
	SingleInput
	GroupBy tree.Exprs
}

// SafeFormat implements the Node interface.
func (n *Agg) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString("Agg")
	formatExprs(w, "group", n.GroupBy)
}

// Material materializes its input.
type Material struct {
	SingleInput
}

// SafeFormat implements the Node interface.
func (n *Material) SafeFormat(w redact.SafePrinter, _ rune) { w.SafeString("Material") }

// Hash builds the hash table of a hash join.
type Hash struct {
	SingleInput
}

// SafeFormat implements the Node interface.
func (n *Hash) SafeFormat(w redact.SafePrinter, _ rune) { w.SafeString("Hash") }

// Gather runs its input in parallel workers.
type Gather struct {
	SingleInput
	Workers int
}

// SafeFormat implements the Node interface.
func (n *Gather) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("Gather workers=%d", redact.Safe(n.Workers))
}

// NestLoop is a nested loop join.
type NestLoop struct {
	TwoInput
	JoinQuals tree.Exprs
}

// SafeFormat implements the Node interface.
func (n *NestLoop) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString("NestLoop")
	formatExprs(w, "on", n.JoinQuals)
}

// HashJoin is a hash join. The right input is a Hash node.
type HashJoin struct {
	TwoInput
	JoinQuals tree.Exprs
}

// SafeFormat implements the Node interface.
func (n *HashJoin) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString("HashJoin")
	formatExprs(w, "on", n.JoinQuals)
}

// MergeJoin is a merge join over sorted inputs.
type MergeJoin struct {
	TwoInput
	JoinQuals tree.Exprs
}

// SafeFormat implements the Node interface.
func (n *MergeJoin) SafeFormat(w redact.SafePrinter, _ rune) {
	w.SafeString("MergeJoin")
	formatExprs(w, "on", n.JoinQuals)
}

// RecursiveUnion evaluates a recursive CTE; Left is the non-recursive term.
type RecursiveUnion struct {
	TwoInput
}

// SafeFormat implements the Node interface.
func (n *RecursiveUnion) SafeFormat(w redact.SafePrinter, _ rune) { w.SafeString("RecursiveUnion") }

// SubqueryScan scans the output of a subquery in the FROM clause.
type SubqueryScan struct {
	SingleInput
	RelIndex Index
}

// SafeFormat implements the Node interface.
func (n *SubqueryScan) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("SubqueryScan rel=%d", n.RelIndex)
}

// ConditionalBranch is one arm of a Conditional node.
type ConditionalBranch struct {
	// Cond is nil for the ELSE arm.
	Cond tree.Expr
	Plan Node
}

// Conditional runs the plan of the first branch whose condition holds.
type Conditional struct {
	Branches []ConditionalBranch
}

// ChildSlots implements the Node interface.
func (n *Conditional) ChildSlots() []*Node {
	slots := make([]*Node, len(n.Branches))
	for i := range n.Branches {
		slots[i] = &n.Branches[i].Plan
	}
	return slots
}

// SafeFormat implements the Node interface.
func (n *Conditional) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("Conditional branches=%d", redact.Safe(len(n.Branches)))
}

// ModifyTable performs INSERT, UPDATE or DELETE. Plans[i] produces the
// tuples for ResultRelations[i]; the two lists always have the same length.
type ModifyTable struct {
	Operation       CmdType
	Plans           []Node
	ResultRelations []Index
}

// ChildSlots implements the Node interface.
func (n *ModifyTable) ChildSlots() []*Node { return slotsOf(n.Plans) }

// SafeFormat implements the Node interface.
func (n *ModifyTable) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("ModifyTable %s rels=%v", n.Operation, redact.Safe(n.ResultRelations))
}

var _ Node = (*Result)(nil)
var _ Node = (*SeqScan)(nil)
var _ Node = (*IndexScan)(nil)
var _ Node = (*ValuesScan)(nil)
var _ Node = (*Append)(nil)
var _ Node = (*MergeAppend)(nil)
var _ Node = (*Sort)(nil)
var _ Node = (*Limit)(nil)
var _ Node = (*Agg)(nil)
var _ Node = (*Material)(nil)
var _ Node = (*Hash)(nil)
var _ Node = (*Gather)(nil)
var _ Node = (*NestLoop)(nil)
var _ Node = (*HashJoin)(nil)
var _ Node = (*MergeJoin)(nil)
var _ Node = (*RecursiveUnion)(nil)
var _ Node = (*SubqueryScan)(nil)
var _ Node = (*Conditional)(nil)
var _ Node = (*ModifyTable)(nil)
