// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package relopt

import (
	"github.com/cockroachdb/errors"
	"github.com/hyperplan/hyperplan/pkg/sql/plan"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
)

// PathType is the strategy of an access path.
type PathType int

// Path types.
const (
	PathTypeSeqScan PathType = iota
	PathTypeIndexScan
	PathTypeAppend
	PathTypeMergeAppend
	// PathTypeCustom is reported by paths provided by extensions.
	PathTypeCustom
)

func (t PathType) String() string {
	switch t {
	case PathTypeSeqScan:
		return "seq-scan"
	case PathTypeIndexScan:
		return "index-scan"
	case PathTypeAppend:
		return "append"
	case PathTypeMergeAppend:
		return "merge-append"
	case PathTypeCustom:
		return "custom"
	}
	return "PathType(?)"
}

// Path is a candidate strategy for producing the rows of a relation.
type Path interface {
	Type() PathType
	Parent() *RelOptInfo
}

// CustomPath is implemented by extension paths. The planner turns the
// custom path's children into plans and hands them to PlanCustomPath.
type CustomPath interface {
	Path
	CustomName() string
	CustomSubpaths() []Path
	PlanCustomPath(root *PlannerInfo, children []plan.Node) (plan.Node, error)
}

// ScanPath scans a relation, sequentially or through an index.
type ScanPath struct {
	Rel *RelOptInfo
	// IndexName is set for index scans.
	IndexName string
}

// Type implements the Path interface.
func (p *ScanPath) Type() PathType {
	if p.IndexName != "" {
		return PathTypeIndexScan
	}
	return PathTypeSeqScan
}

// Parent implements the Path interface.
func (p *ScanPath) Parent() *RelOptInfo { return p.Rel }

// AppendPath concatenates the output of its subpaths.
type AppendPath struct {
	Rel      *RelOptInfo
	Subpaths []Path
}

// Type implements the Path interface.
func (p *AppendPath) Type() PathType { return PathTypeAppend }

// Parent implements the Path interface.
func (p *AppendPath) Parent() *RelOptInfo { return p.Rel }

// MergeAppendPath merges the sorted output of its subpaths.
type MergeAppendPath struct {
	Rel      *RelOptInfo
	Subpaths []Path
	PathKeys []PathKey
}

// Type implements the Path interface.
func (p *MergeAppendPath) Type() PathType { return PathTypeMergeAppend }

// Parent implements the Path interface.
func (p *MergeAppendPath) Parent() *RelOptInfo { return p.Rel }

// CreatePlan turns a path into a plan tree.
func CreatePlan(root *PlannerInfo, path Path) (plan.Node, error) {
	switch p := path.(type) {
	case *ScanPath:
		scan := plan.Scan{RelIndex: p.Rel.RelID, Quals: p.Rel.Clauses()}
		if p.IndexName != "" {
			return &plan.IndexScan{Scan: scan, IndexName: p.IndexName}, nil
		}
		return &plan.SeqScan{Scan: scan}, nil

	case *AppendPath:
		children, err := createPlans(root, p.Subpaths)
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			// A dummy relation.
			return &plan.Result{}, nil
		}
		return &plan.Append{Children: children}, nil

	case *MergeAppendPath:
		children, err := createPlans(root, p.Subpaths)
		if err != nil {
			return nil, err
		}
		ma := &plan.MergeAppend{
			Children:   children,
			SortKeys:   make(tree.Exprs, len(p.PathKeys)),
			Descending: make([]bool, len(p.PathKeys)),
		}
		for i, pk := range p.PathKeys {
			ma.SortKeys[i] = pk.Expr
			ma.Descending[i] = pk.Descending
		}
		return ma, nil

	case CustomPath:
		children, err := createPlans(root, p.CustomSubpaths())
		if err != nil {
			return nil, err
		}
		return p.PlanCustomPath(root, children)
	}
	return nil, errors.AssertionFailedf("unsupported path type %T", path)
}

func createPlans(root *PlannerInfo, paths []Path) ([]plan.Node, error) {
	res := make([]plan.Node, len(paths))
	for i, sp := range paths {
		n, err := CreatePlan(root, sp)
		if err != nil {
			return nil, err
		}
		res[i] = n
	}
	return res, nil
}
