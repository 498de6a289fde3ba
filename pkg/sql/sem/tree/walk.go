// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package tree

// Visitor defines methods that are called for nodes during an expression or
// statement walk.
type Visitor interface {
	// VisitPre is called for each node before recursing into that subtree.
	// Upon return, if recurse is false, the visit will not recurse into the
	// subtree (and VisitPost will not be called for this node).
	//
	// The returned Expr replaces the visited expression and can be used for
	// rewriting expressions.
	VisitPre(expr Expr) (recurse bool, newExpr Expr)

	// VisitPost is called for each node after recursing into the subtree.
	// The returned Expr replaces the visited expression.
	VisitPost(expr Expr) (newNode Expr)
}

// WalkExpr traverses the nodes in an expression.
func WalkExpr(v Visitor, expr Expr) (newExpr Expr, changed bool) {
	recurse, newExpr := v.VisitPre(expr)

	if recurse {
		newExpr = newExpr.Walk(v)
		newExpr = v.VisitPost(newExpr)
	}

	// All Expr implementations are pointers or empty structs, so identity
	// comparison is safe.
	changed = expr != newExpr
	return newExpr, changed
}

// Walk implements the Expr interface.
func (expr *AndExpr) Walk(v Visitor) Expr {
	left, changedL := WalkExpr(v, expr.Left)
	right, changedR := WalkExpr(v, expr.Right)
	if changedL || changedR {
		return &AndExpr{Left: left, Right: right}
	}
	return expr
}

// Walk implements the Expr interface.
func (expr *OrExpr) Walk(v Visitor) Expr {
	left, changedL := WalkExpr(v, expr.Left)
	right, changedR := WalkExpr(v, expr.Right)
	if changedL || changedR {
		return &OrExpr{Left: left, Right: right}
	}
	return expr
}

// Walk implements the Expr interface.
func (expr *NotExpr) Walk(v Visitor) Expr {
	e, changed := WalkExpr(v, expr.Expr)
	if changed {
		return &NotExpr{Expr: e}
	}
	return expr
}

// Walk implements the Expr interface.
func (expr *BinaryExpr) Walk(v Visitor) Expr {
	left, changedL := WalkExpr(v, expr.Left)
	right, changedR := WalkExpr(v, expr.Right)
	if changedL || changedR {
		exprCopy := *expr
		exprCopy.Left = left
		exprCopy.Right = right
		return &exprCopy
	}
	return expr
}

// Walk implements the Expr interface.
func (expr *ComparisonExpr) Walk(v Visitor) Expr {
	left, changedL := WalkExpr(v, expr.Left)
	right, changedR := WalkExpr(v, expr.Right)
	if changedL || changedR {
		exprCopy := *expr
		exprCopy.Left = left
		exprCopy.Right = right
		return &exprCopy
	}
	return expr
}

// Walk implements the Expr interface.
func (expr *FuncExpr) Walk(v Visitor) Expr {
	ret := expr
	for i := range expr.Args {
		e, changed := WalkExpr(v, expr.Args[i])
		if changed {
			if ret == expr {
				ret = &FuncExpr{Func: expr.Func, Args: append(Exprs(nil), expr.Args...)}
			}
			ret.Args[i] = e
		}
	}
	return ret
}

// Walk implements the Expr interface.
func (expr *Var) Walk(_ Visitor) Expr { return expr }

// Walk implements the Expr interface.
func (expr *DBool) Walk(_ Visitor) Expr { return expr }

// Walk implements the Expr interface.
func (expr *DInt) Walk(_ Visitor) Expr { return expr }

// Walk implements the Expr interface.
func (expr *DString) Walk(_ Visitor) Expr { return expr }

// Walk implements the Expr interface.
func (expr *DTimestamp) Walk(_ Visitor) Expr { return expr }

// Walk implements the Expr interface.
func (expr *DInterval) Walk(_ Visitor) Expr { return expr }

// Walk implements the Expr interface.
func (expr dNull) Walk(_ Visitor) Expr { return expr }

// simpleVisitFn is a function that is run for every node in the VisitPre
// stage; see SimpleVisit.
type simpleVisitFn func(expr Expr) (recurse bool, newExpr Expr, err error)

// SimpleVisit is a convenience wrapper for visitors that only have VisitPre
// code and don't return any results except an error. The given function is
// called in VisitPre for every node. The visitor stops as soon as an error is
// returned.
func SimpleVisit(expr Expr, preFn simpleVisitFn) (Expr, error) {
	v := simpleVisitor{fn: preFn}
	newExpr, _ := WalkExpr(&v, expr)
	if v.err != nil {
		return nil, v.err
	}
	return newExpr, nil
}

type simpleVisitor struct {
	fn  simpleVisitFn
	err error
}

var _ Visitor = &simpleVisitor{}

func (v *simpleVisitor) VisitPre(expr Expr) (recurse bool, newExpr Expr) {
	if v.err != nil {
		return false, expr
	}
	recurse, newExpr, v.err = v.fn(expr)
	if v.err != nil {
		return false, expr
	}
	return recurse, newExpr
}

func (*simpleVisitor) VisitPost(expr Expr) Expr { return expr }

// ContainsMutableFunctions reports whether expr calls any function whose
// result cannot be determined at plan time, i.e. any function that is not
// immutable. Operators are always immutable on the supported types.
func ContainsMutableFunctions(expr Expr) bool {
	if expr == nil {
		return false
	}
	found := false
	_, _ = SimpleVisit(expr, func(e Expr) (bool, Expr, error) {
		if found {
			return false, e, nil
		}
		if f, ok := e.(*FuncExpr); ok && f.Func.Volatility.IsMutable() {
			found = true
			return false, e, nil
		}
		return true, e, nil
	})
	return found
}

// BindVars sets the range table index of every column reference in expr
// that is not bound yet. Expressions are modified in place.
func BindVars(expr Expr, varNo uint32) {
	_, _ = SimpleVisit(expr, func(e Expr) (bool, Expr, error) {
		if v, ok := e.(*Var); ok && v.VarNo == 0 {
			v.VarNo = varNo
		}
		return true, e, nil
	})
}
