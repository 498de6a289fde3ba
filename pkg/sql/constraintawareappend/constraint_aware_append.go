// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package constraintawareappend implements an append over the chunks of a
// hypertable that excludes chunks at executor startup.
//
// Plan-time exclusion cannot use restrictions such as
// "time > now() - interval '1 day'" because now() is not immutable. Once
// the statement starts, such expressions have a fixed value, so the node
// evaluates them and drops every child whose chunk cannot contain a
// matching row.
package constraintawareappend

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/hyperplan/hyperplan/pkg/hypertable"
	"github.com/hyperplan/hyperplan/pkg/sql/exec"
	"github.com/hyperplan/hyperplan/pkg/sql/plan"
	"github.com/hyperplan/hyperplan/pkg/sql/relopt"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/eval"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/hyperplan/hyperplan/pkg/util/log"
	"github.com/lib/pq/oid"
)

// Name is the name under which the path and the plan node are shown.
const Name = "ConstraintAwareAppend"

// Path wraps an append or merge-append path of a hypertable.
type Path struct {
	Hypertable *hypertable.Hypertable
	Subpath    relopt.Path
}

var _ relopt.CustomPath = &Path{}

// NewPath wraps subpath, which must be an append or merge-append path over
// the chunks of ht.
func NewPath(root *relopt.PlannerInfo, ht *hypertable.Hypertable, subpath relopt.Path) *Path {
	return &Path{Hypertable: ht, Subpath: subpath}
}

// Type implements the relopt.Path interface.
func (p *Path) Type() relopt.PathType { return relopt.PathTypeCustom }

// Parent implements the relopt.Path interface.
func (p *Path) Parent() *relopt.RelOptInfo { return p.Subpath.Parent() }

// CustomName implements the relopt.CustomPath interface.
func (p *Path) CustomName() string { return Name }

// CustomSubpaths implements the relopt.CustomPath interface.
func (p *Path) CustomSubpaths() []relopt.Path { return []relopt.Path{p.Subpath} }

// PlanCustomPath implements the relopt.CustomPath interface.
func (p *Path) PlanCustomPath(root *relopt.PlannerInfo, children []plan.Node) (plan.Node, error) {
	if len(children) != 1 {
		return nil, errors.AssertionFailedf("%s expects one child plan, got %d", Name, len(children))
	}
	n := &Node{
		SingleInput:     plan.SingleInput{Input: children[0]},
		HypertableRelID: p.Hypertable.RelID,
		HypertableName:  string(p.Hypertable.QualifiedName().StripMarkers()),
	}
	if d := p.Hypertable.TimeDimension(); d != nil {
		dim := *d
		n.TimeDimension = &dim
	}
	if rel := p.Parent(); rel != nil {
		n.Clauses = rel.Clauses()
	}
	return n, nil
}

// Node is the plan node created for a Path. Its input is the Append or
// MergeAppend over the hypertable's children.
type Node struct {
	plan.SingleInput
	HypertableRelID oid.Oid
	HypertableName  string
	// TimeDimension is the dimension used for exclusion; nil disables it.
	TimeDimension *hypertable.Dimension
	// Clauses are the restrictions of the hypertable, evaluated at startup.
	Clauses tree.Exprs
}

var _ plan.Node = &Node{}

// SafeFormat implements the plan.Node interface.
func (n *Node) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%s hypertable=%s", redact.SafeString(Name), n.HypertableName)
}

// State executes a Node.
type State struct {
	b    *exec.Builder
	node *Node
	op   exec.Operator

	// Excluded is the number of children skipped at startup.
	Excluded int
}

var _ exec.Operator = &State{}

func init() {
	exec.RegisterBuilder(&Node{}, func(_ context.Context, b *exec.Builder, n plan.Node) (exec.Operator, error) {
		return &State{b: b, node: n.(*Node)}, nil
	})
}

// Init implements the exec.Operator interface. It excludes children and
// builds the operators of the remaining ones.
func (s *State) Init(ctx context.Context) error {
	var input plan.Node
	switch t := s.node.Input.(type) {
	case *plan.Append:
		kept, err := s.exclude(ctx, t.Children)
		if err != nil {
			return err
		}
		input = &plan.Append{Children: kept}
	case *plan.MergeAppend:
		kept, err := s.exclude(ctx, t.Children)
		if err != nil {
			return err
		}
		input = &plan.MergeAppend{Children: kept, SortKeys: t.SortKeys, Descending: t.Descending}
	default:
		input = s.node.Input
	}
	op, err := s.b.Build(ctx, input)
	if err != nil {
		return err
	}
	s.op = op
	return s.op.Init(ctx)
}

// Next implements the exec.Operator interface.
func (s *State) Next(ctx context.Context) (exec.Row, error) {
	return s.op.Next(ctx)
}

// Columns implements the exec.Operator interface.
func (s *State) Columns() []string {
	if s.op == nil {
		return nil
	}
	return s.op.Columns()
}

func (s *State) exclude(ctx context.Context, children []plan.Node) ([]plan.Node, error) {
	if s.node.TimeDimension == nil || s.b.Chunks == nil || len(s.node.Clauses) == 0 {
		return children, nil
	}
	kept := make([]plan.Node, 0, len(children))
	for _, child := range children {
		slice, ok, err := s.childSlice(child)
		if err != nil {
			return nil, err
		}
		if ok {
			excluded, err := Excludes(ctx, s.b.EvalCtx, s.node.Clauses, s.node.TimeDimension, slice)
			if err != nil {
				return nil, err
			}
			if excluded {
				s.Excluded++
				continue
			}
		}
		kept = append(kept, child)
	}
	log.VEventf(ctx, 2, "%s on %s: excluded %d of %d children",
		redact.SafeString(Name), s.node.HypertableName, s.Excluded, len(children))
	return kept, nil
}

// childSlice returns the slice of the time dimension covered by the chunk
// that child scans. ok is false if child does not scan a chunk.
func (s *State) childSlice(child plan.Node) (_ hypertable.DimensionSlice, ok bool, _ error) {
	var rti plan.Index
	switch t := child.(type) {
	case *plan.SeqScan:
		rti = t.RelIndex
	case *plan.IndexScan:
		rti = t.RelIndex
	default:
		return hypertable.DimensionSlice{}, false, nil
	}
	rte, err := s.b.RangeTable.Fetch(rti)
	if err != nil {
		return hypertable.DimensionSlice{}, false, err
	}
	c := s.b.Chunks.ChunkByRelID(rte.RelID)
	if c == nil {
		return hypertable.DimensionSlice{}, false, nil
	}
	for _, sl := range c.Cube {
		if sl.DimensionID == s.node.TimeDimension.ID {
			return sl, true, nil
		}
	}
	return hypertable.DimensionSlice{}, false, nil
}

// Excludes reports whether the conjunction of clauses is false for every
// value of dim within slice. Clauses that do not compare the dimension's
// column with an expression free of column references never exclude.
func Excludes(
	ctx context.Context,
	evalCtx *eval.Context,
	clauses tree.Exprs,
	dim *hypertable.Dimension,
	slice hypertable.DimensionSlice,
) (bool, error) {
	for _, c := range clauses {
		ex, err := excludes(ctx, evalCtx, c, dim, slice)
		if err != nil || ex {
			return ex, err
		}
	}
	return false, nil
}

func excludes(
	ctx context.Context,
	evalCtx *eval.Context,
	clause tree.Expr,
	dim *hypertable.Dimension,
	slice hypertable.DimensionSlice,
) (bool, error) {
	switch t := clause.(type) {
	case *tree.AndExpr:
		return Excludes(ctx, evalCtx, tree.Exprs{t.Left, t.Right}, dim, slice)
	case *tree.OrExpr:
		l, err := excludes(ctx, evalCtx, t.Left, dim, slice)
		if err != nil || !l {
			return false, err
		}
		return excludes(ctx, evalCtx, t.Right, dim, slice)
	case *tree.ComparisonExpr:
		return excludesComparison(ctx, evalCtx, t, dim, slice)
	}
	return false, nil
}

func excludesComparison(
	ctx context.Context,
	evalCtx *eval.Context,
	cmp *tree.ComparisonExpr,
	dim *hypertable.Dimension,
	slice hypertable.DimensionSlice,
) (bool, error) {
	op := cmp.Operator
	var other tree.Expr
	if isColumn(cmp.Left, dim.Column) && !hasVars(cmp.Right) {
		other = cmp.Right
	} else if isColumn(cmp.Right, dim.Column) && !hasVars(cmp.Left) {
		other = cmp.Left
		op = op.Commute()
	} else {
		return false, nil
	}
	d, err := eval.Expr(ctx, evalCtx, other)
	if err != nil {
		return false, err
	}
	if d == tree.DNull {
		// Comparisons with NULL are never true.
		return true, nil
	}
	v, err := dim.Coordinate(d)
	if err != nil {
		// Not comparable with the dimension's coordinates.
		return false, nil //nolint:returnerrcheck
	}
	switch op {
	case tree.EQ:
		return !slice.Contains(v), nil
	case tree.LT:
		return slice.RangeStart >= v, nil
	case tree.LE:
		return slice.RangeStart > v, nil
	case tree.GT:
		return slice.Last() <= v, nil
	case tree.GE:
		return slice.Last() < v, nil
	}
	return false, nil
}

func isColumn(e tree.Expr, column string) bool {
	v, ok := e.(*tree.Var)
	return ok && v.Name == column
}

func hasVars(e tree.Expr) bool {
	found := false
	_, _ = tree.SimpleVisit(e, func(e tree.Expr) (bool, tree.Expr, error) {
		if _, ok := e.(*tree.Var); ok {
			found = true
		}
		return !found, e, nil
	})
	return found
}
