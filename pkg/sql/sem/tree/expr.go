// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package tree defines the scalar expressions that appear in restriction
// clauses and query pathkeys.
package tree

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// Expr represents an expression.
type Expr interface {
	NodeFormatter
	// Walk recursively walks all children using WalkExpr. If any children are
	// changed, it returns a copy of this node updated to point to the new
	// children. Otherwise the receiver is returned.
	Walk(Visitor) Expr
}

// Exprs represents a list of value expressions. It's not a valid expression
// because it's not parenthesized.
type Exprs []Expr

// Format implements the NodeFormatter interface.
func (node *Exprs) Format(ctx *FmtCtx) {
	for i, n := range *node {
		if i > 0 {
			ctx.WriteString(", ")
		}
		ctx.FormatNode(n)
	}
}

// Var is a reference to a column of a relation in the range table.
type Var struct {
	// VarNo is the range table index of the relation; 0 means unbound.
	VarNo uint32
	// AttNo is the 1-based column position, 0 when unknown.
	AttNo int
	Name  string
}

// NewVar returns an unbound column reference.
func NewVar(name string) *Var {
	return &Var{Name: name}
}

// Format implements the NodeFormatter interface.
func (node *Var) Format(ctx *FmtCtx) {
	if ctx.HasFlags(FmtShowVarNo) && node.VarNo != 0 {
		ctx.Printf("%d.", node.VarNo)
	}
	ctx.WriteString(node.Name)
}

// FuncExpr represents a call to a builtin function.
type FuncExpr struct {
	Func *FunctionDefinition
	Args Exprs
}

// Format implements the NodeFormatter interface.
func (node *FuncExpr) Format(ctx *FmtCtx) {
	ctx.WriteString(node.Func.Name)
	ctx.WriteByte('(')
	ctx.FormatNode(&node.Args)
	ctx.WriteByte(')')
}

// ResolveFunc looks up a builtin by name and returns a call expression.
func ResolveFunc(name string, args ...Expr) (*FuncExpr, error) {
	def, ok := FunDefs[name]
	if !ok {
		return nil, errors.Newf("unknown function: %s()", redact.Safe(name))
	}
	if def.MinArgs > len(args) || (def.MaxArgs >= 0 && len(args) > def.MaxArgs) {
		return nil, errors.Newf("wrong number of arguments for %s(): %d", redact.Safe(name), len(args))
	}
	return &FuncExpr{Func: def, Args: args}, nil
}

// ComparisonOperator represents a binary comparison.
type ComparisonOperator int

// Comparison operators.
const (
	EQ ComparisonOperator = iota
	NE
	LT
	LE
	GT
	GE
)

var comparisonOpName = [...]string{
	EQ: "=",
	NE: "!=",
	LT: "<",
	LE: "<=",
	GT: ">",
	GE: ">=",
}

func (i ComparisonOperator) String() string {
	if i < 0 || int(i) >= len(comparisonOpName) {
		return "ComparisonOp(?)"
	}
	return comparisonOpName[i]
}

// Commute returns the operator obtained by swapping the operands:
// a < b is b > a.
func (i ComparisonOperator) Commute() ComparisonOperator {
	switch i {
	case LT:
		return GT
	case LE:
		return GE
	case GT:
		return LT
	case GE:
		return LE
	}
	return i
}

// ComparisonExpr represents a two-value comparison expression.
type ComparisonExpr struct {
	Operator    ComparisonOperator
	Left, Right Expr
}

// NewComparisonExpr returns a comparison of left and right.
func NewComparisonExpr(op ComparisonOperator, left, right Expr) *ComparisonExpr {
	return &ComparisonExpr{Operator: op, Left: left, Right: right}
}

// Format implements the NodeFormatter interface.
func (node *ComparisonExpr) Format(ctx *FmtCtx) {
	ctx.FormatNode(node.Left)
	ctx.WriteByte(' ')
	ctx.WriteString(node.Operator.String())
	ctx.WriteByte(' ')
	ctx.FormatNode(node.Right)
}

// BinaryOperator represents a binary arithmetic operator.
type BinaryOperator int

// Binary operators.
const (
	Plus BinaryOperator = iota
	Minus
)

func (i BinaryOperator) String() string {
	switch i {
	case Plus:
		return "+"
	case Minus:
		return "-"
	}
	return "BinaryOp(?)"
}

// BinaryExpr represents a binary value expression.
type BinaryExpr struct {
	Operator    BinaryOperator
	Left, Right Expr
}

// Format implements the NodeFormatter interface.
func (node *BinaryExpr) Format(ctx *FmtCtx) {
	ctx.formatOperand(node.Left)
	ctx.WriteByte(' ')
	ctx.WriteString(node.Operator.String())
	ctx.WriteByte(' ')
	ctx.formatOperand(node.Right)
}

// AndExpr represents an AND expression.
type AndExpr struct {
	Left, Right Expr
}

// Format implements the NodeFormatter interface.
func (node *AndExpr) Format(ctx *FmtCtx) {
	ctx.formatOperand(node.Left)
	ctx.WriteString(" AND ")
	ctx.formatOperand(node.Right)
}

// OrExpr represents an OR expression.
type OrExpr struct {
	Left, Right Expr
}

// Format implements the NodeFormatter interface.
func (node *OrExpr) Format(ctx *FmtCtx) {
	ctx.formatOperand(node.Left)
	ctx.WriteString(" OR ")
	ctx.formatOperand(node.Right)
}

// NotExpr represents a NOT expression.
type NotExpr struct {
	Expr Expr
}

// Format implements the NodeFormatter interface.
func (node *NotExpr) Format(ctx *FmtCtx) {
	ctx.WriteString("NOT ")
	ctx.formatOperand(node.Expr)
}

// formatOperand parenthesizes compound operands so that the printed form
// re-parses to the same tree.
func (ctx *FmtCtx) formatOperand(e Expr) {
	switch e.(type) {
	case *AndExpr, *OrExpr, *NotExpr, *ComparisonExpr, *BinaryExpr:
		ctx.WriteByte('(')
		ctx.FormatNode(e)
		ctx.WriteByte(')')
	default:
		ctx.FormatNode(e)
	}
}
