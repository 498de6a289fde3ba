// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package parser parses the scalar expression subset used in restriction
// clauses and sort keys:
//
//	expr := expr OR expr | expr AND expr | NOT expr
//	      | sum [cmp sum]
//	sum  := primary {(+|-) primary}
//	primary := literal ['::' type] | name | name '(' [expr {, expr}] ')'
//	         | INTERVAL 'str' | TIMESTAMP 'str' | '(' expr ')'
//
// Builtin functions must be registered (see package builtins) before
// calls can be resolved.
package parser

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgcode"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgerror"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
)

// ParseExpr parses a SQL scalar expression.
func ParseExpr(sql string) (tree.Expr, error) {
	p := parser{s: scanner{in: sql}}
	if err := p.advance(); err != nil {
		return nil, p.wrap(err)
	}
	e, err := p.parseOr()
	if err != nil {
		return nil, p.wrap(err)
	}
	if p.tok.kind != tokEOF {
		return nil, p.wrap(p.unexpected())
	}
	return e, nil
}

// ParseExprs parses a list of expressions.
func ParseExprs(sqls []string) (tree.Exprs, error) {
	exprs := make(tree.Exprs, len(sqls))
	for i, s := range sqls {
		e, err := ParseExpr(s)
		if err != nil {
			return nil, err
		}
		exprs[i] = e
	}
	return exprs, nil
}

type parser struct {
	s   scanner
	tok token
}

func (p *parser) wrap(err error) error {
	if pgerror.HasCandidateCode(err) {
		return err
	}
	return pgerror.Wrapf(err, pgcode.Syntax, "parsing %q", p.s.in)
}

func (p *parser) advance() error {
	t, err := p.s.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) isKeyword(kw string) bool {
	return p.tok.kind == tokIdent && p.tok.str == kw
}

func (p *parser) isOp(op string) bool {
	return p.tok.kind == tokOp && p.tok.str == op
}

func (p *parser) unexpected() error {
	if p.tok.kind == tokEOF {
		return errors.New("unexpected end of input")
	}
	return errors.Newf("at or near %d: unexpected %q", p.tok.pos, p.tok.str)
}

func (p *parser) expectOp(op string) error {
	if !p.isOp(op) {
		return p.unexpected()
	}
	return p.advance()
}

func (p *parser) parseOr() (tree.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("or") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &tree.OrExpr{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (tree.Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("and") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &tree.AndExpr{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (tree.Expr, error) {
	if p.isKeyword("not") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &tree.NotExpr{Expr: e}, nil
	}
	return p.parseComparison()
}

var comparisonOps = map[string]tree.ComparisonOperator{
	"=":  tree.EQ,
	"!=": tree.NE,
	"<>": tree.NE,
	"<":  tree.LT,
	"<=": tree.LE,
	">":  tree.GT,
	">=": tree.GE,
}

func (p *parser) parseComparison() (tree.Expr, error) {
	left, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokOp {
		return left, nil
	}
	op, ok := comparisonOps[p.tok.str]
	if !ok {
		return left, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	return tree.NewComparisonExpr(op, left, right), nil
}

func (p *parser) parseSum() (tree.Expr, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := tree.Plus
		if p.tok.str == "-" {
			op = tree.Minus
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = &tree.BinaryExpr{Operator: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parsePrimary() (tree.Expr, error) {
	e, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	for p.isOp("::") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokIdent {
			return nil, p.unexpected()
		}
		typ := p.tok.str
		if err := p.advance(); err != nil {
			return nil, err
		}
		if e, err = castConst(e, typ); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (p *parser) parseOperand() (tree.Expr, error) {
	tok := p.tok
	switch tok.kind {
	case tokInt:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return parseInt(tok.str)

	case tokString:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return tree.NewDString(tok.str), nil

	case tokOp:
		switch tok.str {
		case "(":
			if err := p.advance(); err != nil {
				return nil, err
			}
			e, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			return e, p.expectOp(")")
		case "-":
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.kind != tokInt {
				return nil, p.unexpected()
			}
			s := p.tok.str
			if err := p.advance(); err != nil {
				return nil, err
			}
			return parseInt("-" + s)
		}

	case tokIdent:
		if err := p.advance(); err != nil {
			return nil, err
		}
		switch tok.str {
		case "true":
			return tree.DBoolTrue, nil
		case "false":
			return tree.DBoolFalse, nil
		case "null":
			return tree.DNull, nil
		case "interval", "timestamp":
			if p.tok.kind == tokString {
				s := p.tok.str
				if err := p.advance(); err != nil {
					return nil, err
				}
				return castConst(tree.NewDString(s), tok.str)
			}
		}
		if p.isOp("(") {
			return p.parseFuncCall(tok.str)
		}
		return tree.NewVar(tok.str), nil
	}
	return nil, p.unexpected()
}

func (p *parser) parseFuncCall(name string) (tree.Expr, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	var args tree.Exprs
	for !p.isOp(")") {
		if len(args) > 0 {
			if err := p.expectOp(","); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	f, err := tree.ResolveFunc(name, args...)
	if err != nil {
		return nil, pgerror.WithCandidateCode(err, pgcode.UndefinedFunction)
	}
	return f, nil
}

func parseInt(s string) (tree.Expr, error) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, pgerror.Wrapf(err, pgcode.InvalidParameterValue, "could not parse %q as type int", s)
	}
	return tree.NewDInt(tree.DInt(i)), nil
}

// castConst applies a cast to a literal. Only string literals can be cast.
func castConst(e tree.Expr, typ string) (tree.Expr, error) {
	s, ok := e.(*tree.DString)
	if !ok {
		return nil, pgerror.Newf(pgcode.FeatureNotSupported, "cannot cast %s to %s", tree.AsString(e), typ)
	}
	var (
		d   tree.Datum
		err error
	)
	switch typ {
	case "interval":
		d, err = tree.ParseDInterval(string(*s))
	case "timestamp", "timestamptz":
		d, err = tree.ParseDTimestamp(string(*s))
	case "text", "string":
		return s, nil
	case "int", "int8", "bigint":
		return parseInt(string(*s))
	default:
		return nil, pgerror.Newf(pgcode.FeatureNotSupported, "unsupported cast type %s", typ)
	}
	if err != nil {
		return nil, pgerror.WithCandidateCode(err, pgcode.InvalidParameterValue)
	}
	return d, nil
}
