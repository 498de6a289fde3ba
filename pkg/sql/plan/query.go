// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package plan

import (
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/lib/pq/oid"
)

// OnConflictAction is the action of an INSERT ... ON CONFLICT clause.
type OnConflictAction int

// ON CONFLICT actions.
const (
	OnConflictNone OnConflictAction = iota
	OnConflictNothing
	OnConflictUpdate
)

// OnConflictExpr is the ON CONFLICT clause of an INSERT.
type OnConflictExpr struct {
	Action OnConflictAction
	// ArbiterColumns is set when the conflict target was given as a column
	// list.
	ArbiterColumns []string
	// Constraint is set when the conflict target was given as ON CONSTRAINT
	// name.
	Constraint oid.Oid
}

// Query is the analyzed form of a statement, as handed to the planner.
type Query struct {
	CommandType CmdType
	// ResultRelation is the target of INSERT/UPDATE/DELETE, or zero.
	ResultRelation Index
	RangeTable     RangeTable
	// TargetList holds the column names of the result relation that the
	// produced tuples fill, in order.
	TargetList []string
	OnConflict *OnConflictExpr

	// Quals holds the WHERE clause as a list of conjuncts. Column references
	// are bound to range table entries.
	Quals tree.Exprs
	// SortClause is the ORDER BY clause.
	SortClause []SortBy
	// Values holds the rows of an INSERT ... VALUES statement.
	Values []tree.Exprs
}

// SortBy is one element of an ORDER BY clause.
type SortBy struct {
	Expr       tree.Expr
	Descending bool
}

// CursorOptions is a bitmask of cursor options passed to the planner.
type CursorOptions int

// Cursor options.
const (
	CursorOptScroll CursorOptions = 1 << iota
	CursorOptNoScroll
	CursorOptBinary
	CursorOptHold
	CursorOptFastPlan
	CursorOptGenericPlan
	CursorOptCustomPlan
	CursorOptParallelOK
)

// ParamList holds the values of bound parameters.
type ParamList struct {
	Params tree.Datums
}

// PlannedStmt is the output of the planner.
type PlannedStmt struct {
	CommandType CmdType
	Plan        Node
	RangeTable  RangeTable
	// Subplans are the plans of initplans and subplans referenced from
	// expressions in the main plan.
	Subplans        []Node
	ResultRelations []Index
}
