// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package relopt defines the planner's per-relation state: candidate access
// paths, restriction clauses and append-relation membership.
package relopt

import (
	"github.com/hyperplan/hyperplan/pkg/sql/plan"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/lib/pq/oid"
)

// RelOptKind classifies a RelOptInfo.
type RelOptKind int

// Relation kinds.
const (
	// BaseRel is a plain relation of the query, possibly the parent of an
	// append relation.
	BaseRel RelOptKind = iota
	JoinRel
	// OtherMemberRel is a member of an append relation, i.e. an inheritance
	// child.
	OtherMemberRel
	UpperRel
)

func (k RelOptKind) String() string {
	switch k {
	case BaseRel:
		return "base"
	case JoinRel:
		return "join"
	case OtherMemberRel:
		return "other-member"
	case UpperRel:
		return "upper"
	}
	return "RelOptKind(?)"
}

// RestrictInfo wraps a restriction clause of a relation.
type RestrictInfo struct {
	Clause tree.Expr
}

// AppendRelInfo maps a child of an append relation to its parent.
type AppendRelInfo struct {
	ParentRelID plan.Index
	ChildRelID  plan.Index
	// ParentRelOid is the relation identifier of the parent.
	ParentRelOid oid.Oid
}

// PathKey is one element of a sort ordering.
type PathKey struct {
	Expr       tree.Expr
	Descending bool
}

// String implements fmt.Stringer.
func (pk PathKey) String() string {
	s := tree.AsString(pk.Expr)
	if pk.Descending {
		s += " DESC"
	}
	return s
}

// RelOptInfo is the planner's state for one relation.
type RelOptInfo struct {
	Kind    RelOptKind
	RelID   plan.Index
	RTEKind plan.RTEKind
	// Pathlist holds the candidate paths. Entries may be replaced in place.
	Pathlist []Path
	// BaseRestrictInfo holds the restriction clauses that reference only
	// this relation.
	BaseRestrictInfo []*RestrictInfo
	// EquivalentOrderings holds orderings that are known to be satisfied by
	// any ordering on the listed expressions; see package sorttransform.
	EquivalentOrderings []EquivalentOrdering
}

// EquivalentOrdering records that ordering by Transformed is satisfied by
// ordering by Base.
type EquivalentOrdering struct {
	Transformed PathKey
	Base        PathKey
}

// AddPath adds a candidate path.
func (rel *RelOptInfo) AddPath(p Path) {
	rel.Pathlist = append(rel.Pathlist, p)
}

// IsDummy is true for a relation that is proven empty: its only path is an
// append path without children.
func (rel *RelOptInfo) IsDummy() bool {
	if len(rel.Pathlist) == 0 {
		return false
	}
	ap, ok := rel.Pathlist[0].(*AppendPath)
	return ok && len(ap.Subpaths) == 0
}

// MarkDummy replaces the paths of rel with a childless append path.
func (rel *RelOptInfo) MarkDummy() {
	rel.Pathlist = []Path{&AppendPath{Rel: rel}}
}

// Clauses returns the restriction clauses of rel.
func (rel *RelOptInfo) Clauses() tree.Exprs {
	exprs := make(tree.Exprs, len(rel.BaseRestrictInfo))
	for i, ri := range rel.BaseRestrictInfo {
		exprs[i] = ri.Clause
	}
	return exprs
}

// PlannerInfo holds the state of one planning call.
type PlannerInfo struct {
	Parse *plan.Query
	// SimpleRelArray is indexed by range table index; entry 0 is unused and
	// entries for relations that are not base or member relations are nil.
	SimpleRelArray []*RelOptInfo
	AppendRelList  []*AppendRelInfo
	// RangeTable is the query's range table extended with the entries of
	// append relation members.
	RangeTable plan.RangeTable
	// QueryPathKeys is the ordering requested by the query.
	QueryPathKeys []PathKey
}

// Rel returns the RelOptInfo for rti, or nil.
func (root *PlannerInfo) Rel(rti plan.Index) *RelOptInfo {
	if int(rti) >= len(root.SimpleRelArray) {
		return nil
	}
	return root.SimpleRelArray[rti]
}

// Children returns the append relation members of the relation at rti.
func (root *PlannerInfo) Children(rti plan.Index) []*AppendRelInfo {
	var res []*AppendRelInfo
	for _, ai := range root.AppendRelList {
		if ai.ParentRelID == rti {
			res = append(res, ai)
		}
	}
	return res
}
