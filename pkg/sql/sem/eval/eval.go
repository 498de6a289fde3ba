// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package eval evaluates scalar expressions.
package eval

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgcode"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgerror"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
)

// IVarContainer provides the values of column references.
type IVarContainer interface {
	VarEval(v *tree.Var) (tree.Datum, error)
}

// Context defines the context in which to evaluate an expression.
type Context struct {
	// StmtTimestamp is the timestamp as of which the statement runs. It is
	// returned by now().
	StmtTimestamp time.Time

	// IVarContainer is used to evaluate column references. It may be nil if
	// the expression is known not to reference columns.
	IVarContainer IVarContainer
}

var _ tree.FunctionContext = &Context{}

// GetStmtTimestamp implements tree.FunctionContext.
func (ec *Context) GetStmtTimestamp() time.Time {
	return ec.StmtTimestamp
}

// Expr evaluates expr to a datum.
func Expr(ctx context.Context, evalCtx *Context, expr tree.Expr) (tree.Datum, error) {
	switch t := expr.(type) {
	case tree.Datum:
		return t, nil

	case *tree.Var:
		if evalCtx.IVarContainer == nil {
			return nil, pgerror.Newf(pgcode.UndefinedColumn, "no value for column %q", t.Name)
		}
		return evalCtx.IVarContainer.VarEval(t)

	case *tree.FuncExpr:
		args := make(tree.Datums, len(t.Args))
		for i, a := range t.Args {
			d, err := Expr(ctx, evalCtx, a)
			if err != nil {
				return nil, err
			}
			if d == tree.DNull {
				// Builtins are strict: NULL in, NULL out.
				return tree.DNull, nil
			}
			args[i] = d
		}
		return t.Func.Fn(evalCtx, args)

	case *tree.ComparisonExpr:
		left, err := Expr(ctx, evalCtx, t.Left)
		if err != nil {
			return nil, err
		}
		right, err := Expr(ctx, evalCtx, t.Right)
		if err != nil {
			return nil, err
		}
		return ComparisonOp(t.Operator, left, right)

	case *tree.BinaryExpr:
		left, err := Expr(ctx, evalCtx, t.Left)
		if err != nil {
			return nil, err
		}
		right, err := Expr(ctx, evalCtx, t.Right)
		if err != nil {
			return nil, err
		}
		return BinaryOp(t.Operator, left, right)

	case *tree.AndExpr:
		left, err := evalBool(ctx, evalCtx, t.Left)
		if err != nil {
			return nil, err
		}
		if left == tree.DBoolFalse {
			return tree.DBoolFalse, nil
		}
		right, err := evalBool(ctx, evalCtx, t.Right)
		if err != nil {
			return nil, err
		}
		if right == tree.DBoolFalse {
			return tree.DBoolFalse, nil
		}
		if left == tree.DNull || right == tree.DNull {
			return tree.DNull, nil
		}
		return tree.DBoolTrue, nil

	case *tree.OrExpr:
		left, err := evalBool(ctx, evalCtx, t.Left)
		if err != nil {
			return nil, err
		}
		if left == tree.DBoolTrue {
			return tree.DBoolTrue, nil
		}
		right, err := evalBool(ctx, evalCtx, t.Right)
		if err != nil {
			return nil, err
		}
		if right == tree.DBoolTrue {
			return tree.DBoolTrue, nil
		}
		if left == tree.DNull || right == tree.DNull {
			return tree.DNull, nil
		}
		return tree.DBoolFalse, nil

	case *tree.NotExpr:
		d, err := evalBool(ctx, evalCtx, t.Expr)
		if err != nil {
			return nil, err
		}
		switch d {
		case tree.DBoolTrue:
			return tree.DBoolFalse, nil
		case tree.DBoolFalse:
			return tree.DBoolTrue, nil
		}
		return tree.DNull, nil
	}
	return nil, errors.AssertionFailedf("unhandled expression type %T", expr)
}

// evalBool evaluates a boolean expression and returns one of the canonical
// datums tree.DBoolTrue, tree.DBoolFalse or tree.DNull.
func evalBool(ctx context.Context, evalCtx *Context, expr tree.Expr) (tree.Datum, error) {
	d, err := Expr(ctx, evalCtx, expr)
	if err != nil {
		return nil, err
	}
	if d == tree.DNull {
		return d, nil
	}
	b, ok := d.(*tree.DBool)
	if !ok {
		return nil, pgerror.Newf(pgcode.DatatypeMismatch,
			"argument of boolean expression must be type bool, not type %s", d.ResolvedType())
	}
	if *b {
		return tree.DBoolTrue, nil
	}
	return tree.DBoolFalse, nil
}

// ComparisonOp evaluates left op right with SQL NULL semantics.
func ComparisonOp(op tree.ComparisonOperator, left, right tree.Datum) (tree.Datum, error) {
	if left == tree.DNull || right == tree.DNull {
		return tree.DNull, nil
	}
	c, err := left.Compare(right)
	if err != nil {
		return nil, pgerror.Wrapf(err, pgcode.DataException, "comparing %s %s %s",
			left.ResolvedType(), op, right.ResolvedType())
	}
	var res bool
	switch op {
	case tree.EQ:
		res = c == 0
	case tree.NE:
		res = c != 0
	case tree.LT:
		res = c < 0
	case tree.LE:
		res = c <= 0
	case tree.GT:
		res = c > 0
	case tree.GE:
		res = c >= 0
	default:
		return nil, errors.AssertionFailedf("unknown comparison operator %d", op)
	}
	return tree.MakeDBool(res), nil
}

// BinaryOp evaluates left op right.
func BinaryOp(op tree.BinaryOperator, left, right tree.Datum) (tree.Datum, error) {
	if left == tree.DNull || right == tree.DNull {
		return tree.DNull, nil
	}
	sign := time.Duration(1)
	if op == tree.Minus {
		sign = -1
	}
	switch l := left.(type) {
	case *tree.DInt:
		if r, ok := right.(*tree.DInt); ok {
			return tree.NewDInt(*l + tree.DInt(sign)*(*r)), nil
		}
	case *tree.DTimestamp:
		switch r := right.(type) {
		case *tree.DInterval:
			return tree.MakeDTimestamp(l.Time.Add(sign * r.Duration)), nil
		case *tree.DTimestamp:
			if op == tree.Minus {
				return &tree.DInterval{Duration: l.Time.Sub(r.Time)}, nil
			}
		}
	case *tree.DInterval:
		switch r := right.(type) {
		case *tree.DInterval:
			return &tree.DInterval{Duration: l.Duration + sign*r.Duration}, nil
		case *tree.DTimestamp:
			if op == tree.Plus {
				return tree.MakeDTimestamp(r.Time.Add(l.Duration)), nil
			}
		}
	}
	return nil, pgerror.Newf(pgcode.UndefinedFunction, "unsupported binary operator: <%s> %s <%s>",
		left.ResolvedType(), op, right.ResolvedType())
}
