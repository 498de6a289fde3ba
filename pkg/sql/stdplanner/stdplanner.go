// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package stdplanner is a small rule-based planner that produces the plan
// shapes the hypertable hooks rewrite: ModifyTable over a VALUES scan for
// INSERT, and scans of inheritance parents expanded into append relations
// for reads.
//
// Relations are planned one at a time. For an inheritance parent, every
// child is planned first (the parent itself is the first child), then the
// parent's append paths are built. Each relation's pathlist is offered to
// the configured pathlist hook once its paths are complete.
package stdplanner

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgcode"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgerror"
	"github.com/hyperplan/hyperplan/pkg/sql/plan"
	"github.com/hyperplan/hyperplan/pkg/sql/relopt"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/hyperplan/hyperplan/pkg/util/log"
	"github.com/hyperplan/hyperplan/pkg/util/tracing"
	"github.com/lib/pq/oid"
)

// Inheritance lists the children of relations.
type Inheritance interface {
	// ChildrenOf returns the relation identifiers of the inheritance
	// children of parent, excluding parent itself.
	ChildrenOf(ctx context.Context, parent oid.Oid) ([]oid.Oid, error)
}

// SetRelPathlistFn is called once the paths of a relation are complete.
type SetRelPathlistFn = func(
	ctx context.Context, root *relopt.PlannerInfo, rel *relopt.RelOptInfo, rti plan.Index, rte *plan.RangeTblEntry,
) error

// Planner plans queries.
type Planner struct {
	inh            Inheritance
	setRelPathlist SetRelPathlistFn
}

// New creates a planner. inh may be nil if no relation has children;
// setRelPathlist may be nil.
func New(inh Inheritance, setRelPathlist SetRelPathlistFn) *Planner {
	return &Planner{inh: inh, setRelPathlist: setRelPathlist}
}

// Plan plans q.
func (p *Planner) Plan(
	ctx context.Context, q *plan.Query, _ plan.CursorOptions, _ *plan.ParamList,
) (*plan.PlannedStmt, error) {
	ctx, sp := tracing.ChildSpan(ctx, "stdplanner.plan")
	defer tracing.FinishSpan(sp)

	stmt := &plan.PlannedStmt{
		CommandType: q.CommandType,
		RangeTable:  copyRangeTable(q.RangeTable),
	}
	switch q.CommandType {
	case plan.CmdInsert:
		if _, err := stmt.RangeTable.Fetch(q.ResultRelation); err != nil {
			return nil, err
		}
		vs := &plan.ValuesScan{Rows: q.Values, Columns: q.TargetList}
		stmt.Plan = &plan.ModifyTable{
			Operation:       plan.CmdInsert,
			Plans:           []plan.Node{vs},
			ResultRelations: []plan.Index{q.ResultRelation},
		}
		stmt.ResultRelations = []plan.Index{q.ResultRelation}

	case plan.CmdSelect, plan.CmdUpdate, plan.CmdDelete:
		root := &relopt.PlannerInfo{
			Parse:      q,
			RangeTable: stmt.RangeTable,
		}
		for _, sb := range q.SortClause {
			root.QueryPathKeys = append(root.QueryPathKeys, relopt.PathKey{Expr: sb.Expr, Descending: sb.Descending})
		}
		n, err := p.planScanJoin(ctx, root)
		if err != nil {
			return nil, err
		}
		stmt.RangeTable = root.RangeTable
		if q.CommandType == plan.CmdSelect {
			stmt.Plan = n
			break
		}
		if q.ResultRelation == 0 {
			return nil, errors.AssertionFailedf("%s without result relation", q.CommandType)
		}
		stmt.Plan = &plan.ModifyTable{
			Operation:       q.CommandType,
			Plans:           []plan.Node{n},
			ResultRelations: []plan.Index{q.ResultRelation},
		}
		stmt.ResultRelations = []plan.Index{q.ResultRelation}

	default:
		return nil, pgerror.Newf(pgcode.FeatureNotSupported, "cannot plan %s statements", q.CommandType)
	}
	log.VEventf(ctx, 2, "planned %s statement", q.CommandType)
	return stmt, nil
}

func copyRangeTable(rt plan.RangeTable) plan.RangeTable {
	res := make(plan.RangeTable, len(rt))
	for i, rte := range rt {
		c := *rte
		res[i] = &c
	}
	return res
}

// planScanJoin plans the base relations of the query and joins them.
func (p *Planner) planScanJoin(ctx context.Context, root *relopt.PlannerInfo) (plan.Node, error) {
	q := root.Parse
	var baseRTIs []plan.Index
	for i, rte := range q.RangeTable {
		if rte.Kind == plan.RTERelation {
			baseRTIs = append(baseRTIs, plan.Index(i+1))
		}
	}
	if len(baseRTIs) == 0 {
		return &plan.Result{Values: tree.Exprs{tree.DNull}}, nil
	}
	root.SimpleRelArray = make([]*relopt.RelOptInfo, len(root.RangeTable)+1)

	// Distribute the quals: those referencing a single relation restrict
	// that relation, the others become join quals.
	var joinQuals tree.Exprs
	for _, rti := range baseRTIs {
		root.SimpleRelArray[rti] = &relopt.RelOptInfo{Kind: relopt.BaseRel, RelID: rti, RTEKind: plan.RTERelation}
	}
	for _, qual := range q.Quals {
		rti, ok := singleRel(referencedRels(qual), baseRTIs)
		if !ok {
			joinQuals = append(joinQuals, qual)
			continue
		}
		rel := root.Rel(rti)
		if rel == nil {
			return nil, pgerror.Newf(pgcode.UndefinedTable, "qual %s references unknown relation %d",
				tree.AsString(qual), rti)
		}
		rel.BaseRestrictInfo = append(rel.BaseRestrictInfo, &relopt.RestrictInfo{Clause: qual})
	}

	var res plan.Node
	ordered := false
	for _, rti := range baseRTIs {
		n, relOrdered, err := p.planRel(ctx, root, rti)
		if err != nil {
			return nil, err
		}
		if res == nil {
			res, ordered = n, relOrdered
			continue
		}
		res, ordered = &plan.NestLoop{TwoInput: plan.TwoInput{Left: res, Right: n}}, false
	}
	if len(joinQuals) > 0 {
		if nl, ok := res.(*plan.NestLoop); ok {
			nl.JoinQuals = joinQuals
		}
	}
	if len(root.QueryPathKeys) > 0 && !ordered {
		s := &plan.Sort{SingleInput: plan.SingleInput{Input: res}}
		for _, pk := range root.QueryPathKeys {
			s.Keys = append(s.Keys, pk.Expr)
			s.Descending = append(s.Descending, pk.Descending)
		}
		res = s
	}
	return res, nil
}

// singleRel returns the relation restricted by a qual that references the
// relations varNos. With a single base relation, unbound references and
// constant quals belong to it.
func singleRel(varNos map[uint32]bool, baseRTIs []plan.Index) (plan.Index, bool) {
	if len(baseRTIs) == 1 {
		only := baseRTIs[0]
		for v := range varNos {
			if v != 0 && plan.Index(v) != only {
				return 0, false
			}
		}
		return only, true
	}
	if len(varNos) != 1 || varNos[0] {
		return 0, false
	}
	for v := range varNos {
		return plan.Index(v), true
	}
	return 0, false
}

// referencedRels returns the range table indexes of the relations that expr
// references. Unbound references are reported as index 0.
func referencedRels(expr tree.Expr) map[uint32]bool {
	res := make(map[uint32]bool)
	_, _ = tree.SimpleVisit(expr, func(e tree.Expr) (bool, tree.Expr, error) {
		if v, ok := e.(*tree.Var); ok {
			res[v.VarNo] = true
		}
		return true, e, nil
	})
	return res
}

// planRel builds the paths of a base relation and turns the best one into
// a plan. ordered is true if the plan produces the query's ordering.
func (p *Planner) planRel(
	ctx context.Context, root *relopt.PlannerInfo, rti plan.Index,
) (_ plan.Node, ordered bool, _ error) {
	rel := root.Rel(rti)
	rte, err := root.RangeTable.Fetch(rti)
	if err != nil {
		return nil, false, err
	}
	if err := p.setRelPathlistFor(ctx, root, rel, rti, rte); err != nil {
		return nil, false, err
	}
	if len(rel.Pathlist) == 0 {
		return nil, false, errors.AssertionFailedf("relation %d has no paths", rti)
	}
	best, ordered := bestPath(root, rel)
	n, err := relopt.CreatePlan(root, best)
	if err != nil {
		return nil, false, err
	}
	// An empty relation is trivially ordered.
	return n, ordered || rel.IsDummy(), nil
}

// setRelPathlistFor builds the paths of rel and calls the hook.
func (p *Planner) setRelPathlistFor(
	ctx context.Context, root *relopt.PlannerInfo, rel *relopt.RelOptInfo, rti plan.Index, rte *plan.RangeTblEntry,
) error {
	switch {
	case provenEmpty(rel):
		rel.MarkDummy()
	case rte.Inh && rte.IsOrdinaryRelation():
		expanded, err := p.expandInheritance(ctx, root, rel, rti, rte)
		if err != nil {
			return err
		}
		if expanded {
			if err := p.setAppendRelPathlist(ctx, root, rel, rti); err != nil {
				return err
			}
			break
		}
		rel.AddPath(&relopt.ScanPath{Rel: rel})
	default:
		rel.AddPath(&relopt.ScanPath{Rel: rel})
	}
	if p.setRelPathlist != nil {
		return p.setRelPathlist(ctx, root, rel, rti, rte)
	}
	return nil
}

// provenEmpty is true when a restriction is the constant false or NULL.
func provenEmpty(rel *relopt.RelOptInfo) bool {
	for _, ri := range rel.BaseRestrictInfo {
		if ri.Clause == tree.DNull {
			return true
		}
		if b, ok := ri.Clause.(*tree.DBool); ok && !bool(*b) {
			return true
		}
	}
	return false
}

// expandInheritance adds the children of the relation at rti to the range
// table and the append relation list. The parent itself becomes the first
// child. If the relation has no children, its entry is marked as not
// inherited and false is returned.
func (p *Planner) expandInheritance(
	ctx context.Context, root *relopt.PlannerInfo, rel *relopt.RelOptInfo, rti plan.Index, rte *plan.RangeTblEntry,
) (bool, error) {
	var children []oid.Oid
	if p.inh != nil {
		var err error
		if children, err = p.inh.ChildrenOf(ctx, rte.RelID); err != nil {
			return false, errors.Wrapf(err, "listing children of relation %d", rte.RelID)
		}
	}
	if len(children) == 0 {
		rte.Inh = false
		return false, nil
	}
	for _, relid := range append([]oid.Oid{rte.RelID}, children...) {
		childRTE := &plan.RangeTblEntry{
			Kind:    plan.RTERelation,
			RelID:   relid,
			RelKind: plan.RelKindRelation,
			Alias:   rte.Alias,
		}
		childRTI := root.RangeTable.Append(childRTE)
		child := &relopt.RelOptInfo{Kind: relopt.OtherMemberRel, RelID: childRTI, RTEKind: plan.RTERelation}
		for _, ri := range rel.BaseRestrictInfo {
			child.BaseRestrictInfo = append(child.BaseRestrictInfo,
				&relopt.RestrictInfo{Clause: rebindVars(ri.Clause, uint32(rti), uint32(childRTI))})
		}
		root.SimpleRelArray = append(root.SimpleRelArray, child)
		root.AppendRelList = append(root.AppendRelList, &relopt.AppendRelInfo{
			ParentRelID:  rti,
			ChildRelID:   childRTI,
			ParentRelOid: rte.RelID,
		})
	}
	log.VEventf(ctx, 2, "expanded relation %d into %d children", rte.RelID, len(children)+1)
	return true, nil
}

// rebindVars returns a copy of expr in which references to the relation
// from are replaced by references to the relation to.
func rebindVars(expr tree.Expr, from, to uint32) tree.Expr {
	res, _ := tree.SimpleVisit(expr, func(e tree.Expr) (bool, tree.Expr, error) {
		if v, ok := e.(*tree.Var); ok && (v.VarNo == from || v.VarNo == 0) {
			return false, &tree.Var{VarNo: to, AttNo: v.AttNo, Name: v.Name}, nil
		}
		return true, e, nil
	})
	return res
}

// setAppendRelPathlist plans the children of an append relation and builds
// the parent's append paths.
func (p *Planner) setAppendRelPathlist(
	ctx context.Context, root *relopt.PlannerInfo, rel *relopt.RelOptInfo, rti plan.Index,
) error {
	var live []*relopt.RelOptInfo
	for _, ai := range root.Children(rti) {
		child := root.Rel(ai.ChildRelID)
		childRTE, err := root.RangeTable.Fetch(ai.ChildRelID)
		if err != nil {
			return err
		}
		if err := p.setRelPathlistFor(ctx, root, child, ai.ChildRelID, childRTE); err != nil {
			return err
		}
		if !child.IsDummy() {
			live = append(live, child)
		}
	}

	ap := &relopt.AppendPath{Rel: rel}
	for _, child := range live {
		ap.Subpaths = append(ap.Subpaths, child.Pathlist[0])
	}
	rel.AddPath(ap)

	if len(root.QueryPathKeys) == 0 || len(live) == 0 {
		return nil
	}
	// A merge append is possible when every child can produce the requested
	// ordering from an index on the ordering's base column.
	var ordered []relopt.Path
	for _, child := range live {
		idx, ok := orderedPath(root, child)
		if !ok {
			return nil
		}
		child.AddPath(idx)
		ordered = append(ordered, idx)
	}
	rel.AddPath(&relopt.MergeAppendPath{Rel: rel, Subpaths: ordered, PathKeys: root.QueryPathKeys})
	return nil
}

// orderedPath returns an index scan of rel ordered as the query requires.
// The query's ordering must be on a single column of rel, either directly
// or through an equivalent ordering recorded on rel.
func orderedPath(root *relopt.PlannerInfo, rel *relopt.RelOptInfo) (relopt.Path, bool) {
	var column string
	for _, pk := range root.QueryPathKeys {
		base := ""
		if v, ok := pk.Expr.(*tree.Var); ok {
			base = v.Name
		} else {
			for _, eo := range rel.EquivalentOrderings {
				if eo.Transformed.String() == pk.String() {
					base = eo.Base.Expr.(*tree.Var).Name
				}
			}
		}
		if base == "" || (column != "" && base != column) {
			return nil, false
		}
		column = base
	}
	return &relopt.ScanPath{Rel: rel, IndexName: column + "_idx"}, true
}

// bestPath picks the path used for rel: the first path that produces the
// query's ordering, if any, and the first path otherwise.
func bestPath(root *relopt.PlannerInfo, rel *relopt.RelOptInfo) (_ relopt.Path, ordered bool) {
	if len(root.QueryPathKeys) > 0 {
		for _, path := range rel.Pathlist {
			if providesOrdering(path) {
				return path, true
			}
		}
	}
	return rel.Pathlist[0], false
}

func providesOrdering(path relopt.Path) bool {
	switch t := path.(type) {
	case *relopt.MergeAppendPath:
		return true
	case relopt.CustomPath:
		sub := t.CustomSubpaths()
		return len(sub) == 1 && providesOrdering(sub[0])
	}
	return false
}
