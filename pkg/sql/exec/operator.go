// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package exec runs plan trees against in-memory storage. It exists so that
// rewritten plans, including nodes injected by the hypertable planner, can be
// observed end to end.
package exec

import (
	"context"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hyperplan/hyperplan/pkg/hypertable"
	"github.com/hyperplan/hyperplan/pkg/hypertable/chunk"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgcode"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgerror"
	"github.com/hyperplan/hyperplan/pkg/sql/plan"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/eval"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/hyperplan/hyperplan/pkg/util/log"
	"github.com/hyperplan/hyperplan/pkg/util/syncutil"
	"github.com/hyperplan/hyperplan/pkg/util/tracing"
)

// Row is a tuple of datums.
type Row = tree.Datums

// Operator produces rows.
type Operator interface {
	// Init prepares the operator and its inputs. It is called once before
	// the first call to Next.
	Init(ctx context.Context) error
	// Next returns the next row, or nil once the operator is exhausted.
	Next(ctx context.Context) (Row, error)
	// Columns names the columns of the produced rows.
	Columns() []string
}

// BuildFn creates the operator for a plan node of a type that is defined
// outside this package.
type BuildFn func(ctx context.Context, b *Builder, n plan.Node) (Operator, error)

var builders struct {
	syncutil.RWMutex
	m map[reflect.Type]BuildFn
}

// RegisterBuilder registers fn as the builder for nodes of the same dynamic
// type as n. It is meant to be called from init functions.
func RegisterBuilder(n plan.Node, fn BuildFn) {
	builders.Lock()
	defer builders.Unlock()
	if builders.m == nil {
		builders.m = make(map[reflect.Type]BuildFn)
	}
	typ := reflect.TypeOf(n)
	if _, ok := builders.m[typ]; ok {
		panic(errors.AssertionFailedf("builder for %s already registered", typ))
	}
	builders.m[typ] = fn
}

func lookupBuilder(n plan.Node) BuildFn {
	builders.RLock()
	defer builders.RUnlock()
	return builders.m[reflect.TypeOf(n)]
}

// Builder turns plan nodes into operators.
type Builder struct {
	EvalCtx    *eval.Context
	RangeTable plan.RangeTable
	Storage    Storage
	Chunks     chunk.Store
	// Hypertables is a pinned cache handle, owned by the caller.
	Hypertables *hypertable.Cache
}

// Build creates the operator tree for n.
func (b *Builder) Build(ctx context.Context, n plan.Node) (Operator, error) {
	switch t := n.(type) {
	case *plan.ValuesScan:
		return newValuesOp(b, t), nil
	case *plan.Result:
		return b.buildResult(ctx, t)
	case *plan.SeqScan:
		return b.buildScan(t.RelIndex, t.Quals)
	case *plan.IndexScan:
		return b.buildScan(t.RelIndex, t.Quals)
	case *plan.Append:
		inputs, err := b.buildAll(ctx, t.Children)
		if err != nil {
			return nil, err
		}
		return NewAppendOp(inputs), nil
	case *plan.MergeAppend:
		inputs, err := b.buildAll(ctx, t.Children)
		if err != nil {
			return nil, err
		}
		return newSortOp(b, NewAppendOp(inputs), t.SortKeys, t.Descending), nil
	case *plan.Sort:
		input, err := b.Build(ctx, t.Input)
		if err != nil {
			return nil, err
		}
		return newSortOp(b, input, t.Keys, t.Descending), nil
	case *plan.Limit:
		input, err := b.Build(ctx, t.Input)
		if err != nil {
			return nil, err
		}
		return newLimitOp(b, input, t.Count), nil
	case *plan.ModifyTable:
		return b.buildModifyTable(ctx, t)
	}
	if fn := lookupBuilder(n); fn != nil {
		return fn(ctx, b, n)
	}
	return nil, pgerror.Newf(pgcode.FeatureNotSupported, "cannot execute %T plan nodes", n)
}

// buildAll builds each of nodes.
func (b *Builder) buildAll(ctx context.Context, nodes []plan.Node) ([]Operator, error) {
	ops := make([]Operator, len(nodes))
	for i, n := range nodes {
		op, err := b.Build(ctx, n)
		if err != nil {
			return nil, err
		}
		ops[i] = op
	}
	return ops, nil
}

// Config configures Run.
type Config struct {
	Storage     Storage
	Chunks      chunk.Store
	Hypertables *hypertable.Manager
	// StmtTimestamp is returned by now(). The zero value means the current
	// time.
	StmtTimestamp time.Time
}

// Run executes stmt and returns the produced rows and their column names.
func Run(ctx context.Context, cfg Config, stmt *plan.PlannedStmt) ([]Row, []string, error) {
	ctx, sp := tracing.ChildSpan(ctx, "exec.run")
	defer tracing.FinishSpan(sp)

	ts := cfg.StmtTimestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	b := &Builder{
		EvalCtx:    &eval.Context{StmtTimestamp: ts},
		RangeTable: stmt.RangeTable,
		Storage:    cfg.Storage,
		Chunks:     cfg.Chunks,
	}
	if cfg.Hypertables != nil {
		b.Hypertables = cfg.Hypertables.Pin()
		defer b.Hypertables.Release()
	}

	op, err := b.Build(ctx, stmt.Plan)
	if err != nil {
		return nil, nil, err
	}
	if err := op.Init(ctx); err != nil {
		return nil, nil, err
	}
	var rows []Row
	for {
		row, err := op.Next(ctx)
		if err != nil {
			return nil, nil, err
		}
		if row == nil {
			break
		}
		rows = append(rows, row)
	}
	log.VEventf(ctx, 2, "%s produced %d rows", stmt.CommandType, len(rows))
	return rows, op.Columns(), nil
}

// rowVars resolves column references against a row.
type rowVars struct {
	cols []string
	row  Row
}

var _ eval.IVarContainer = &rowVars{}

// VarEval implements the eval.IVarContainer interface.
func (r *rowVars) VarEval(v *tree.Var) (tree.Datum, error) {
	for i, c := range r.cols {
		if c == v.Name && i < len(r.row) {
			return r.row[i], nil
		}
	}
	if v.Name == "" && v.AttNo > 0 && v.AttNo <= len(r.row) {
		return r.row[v.AttNo-1], nil
	}
	return nil, pgerror.Newf(pgcode.UndefinedColumn, "column %q does not exist", v.Name)
}

// evalWithRow evaluates expr with column references bound to row.
func (b *Builder) evalWithRow(
	ctx context.Context, expr tree.Expr, cols []string, row Row,
) (tree.Datum, error) {
	evalCtx := *b.EvalCtx
	evalCtx.IVarContainer = &rowVars{cols: cols, row: row}
	return eval.Expr(ctx, &evalCtx, expr)
}

// passes is true if every qual evaluates to true for row.
func (b *Builder) passes(ctx context.Context, quals tree.Exprs, cols []string, row Row) (bool, error) {
	for _, q := range quals {
		d, err := b.evalWithRow(ctx, q, cols, row)
		if err != nil {
			return false, err
		}
		if v, ok := d.(*tree.DBool); !ok || !bool(*v) {
			return false, nil
		}
	}
	return true, nil
}
