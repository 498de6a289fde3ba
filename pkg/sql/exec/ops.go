// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package exec

import (
	"context"
	"sort"

	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgcode"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgerror"
	"github.com/hyperplan/hyperplan/pkg/sql/plan"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/eval"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
)

// valuesOp produces the rows of a VALUES list.
type valuesOp struct {
	b    *Builder
	n    *plan.ValuesScan
	next int
}

var _ Operator = &valuesOp{}

func newValuesOp(b *Builder, n *plan.ValuesScan) *valuesOp {
	return &valuesOp{b: b, n: n}
}

func (v *valuesOp) Init(context.Context) error { return nil }

func (v *valuesOp) Next(ctx context.Context) (Row, error) {
	if v.next >= len(v.n.Rows) {
		return nil, nil
	}
	exprs := v.n.Rows[v.next]
	v.next++
	row := make(Row, len(exprs))
	for i, e := range exprs {
		d, err := eval.Expr(ctx, v.b.EvalCtx, e)
		if err != nil {
			return nil, err
		}
		row[i] = d
	}
	return row, nil
}

func (v *valuesOp) Columns() []string { return v.n.Columns }

// resultOp computes one row from constant expressions, or projects the rows
// of its input.
type resultOp struct {
	b      *Builder
	input  Operator
	values tree.Exprs
	cols   []string
	done   bool
}

var _ Operator = &resultOp{}

func (b *Builder) buildResult(ctx context.Context, n *plan.Result) (Operator, error) {
	r := &resultOp{b: b, values: n.Values}
	if n.Input != nil {
		input, err := b.Build(ctx, n.Input)
		if err != nil {
			return nil, err
		}
		r.input = input
	}
	if len(n.Values) == 0 && r.input != nil {
		r.cols = r.input.Columns()
	} else {
		r.cols = make([]string, len(n.Values))
		for i, e := range n.Values {
			if v, ok := e.(*tree.Var); ok {
				r.cols[i] = v.Name
			} else {
				r.cols[i] = "?column?"
			}
		}
	}
	return r, nil
}

func (r *resultOp) Init(ctx context.Context) error {
	if r.input != nil {
		return r.input.Init(ctx)
	}
	return nil
}

func (r *resultOp) Next(ctx context.Context) (Row, error) {
	var in Row
	if r.input != nil {
		var err error
		if in, err = r.input.Next(ctx); err != nil || in == nil {
			return nil, err
		}
		if len(r.values) == 0 {
			return in, nil
		}
	} else {
		if r.done || len(r.values) == 0 {
			// A Result without values and input stands for an empty
			// relation.
			return nil, nil
		}
		r.done = true
	}
	out := make(Row, len(r.values))
	for i, e := range r.values {
		var inCols []string
		if r.input != nil {
			inCols = r.input.Columns()
		}
		d, err := r.b.evalWithRow(ctx, e, inCols, in)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

func (r *resultOp) Columns() []string { return r.cols }

// scanOp returns the rows of a stored relation that pass its quals.
type scanOp struct {
	b     *Builder
	rti   plan.Index
	quals tree.Exprs
	cols  []string
	rows  []Row
}

var _ Operator = &scanOp{}

func (b *Builder) buildScan(rti plan.Index, quals tree.Exprs) (Operator, error) {
	return &scanOp{b: b, rti: rti, quals: quals}, nil
}

func (s *scanOp) Init(ctx context.Context) error {
	rte, err := s.b.RangeTable.Fetch(s.rti)
	if err != nil {
		return err
	}
	if s.cols, err = s.b.Storage.Columns(ctx, rte.RelID); err != nil {
		return err
	}
	s.rows, err = s.b.Storage.Scan(ctx, rte.RelID)
	return err
}

func (s *scanOp) Next(ctx context.Context) (Row, error) {
	for len(s.rows) > 0 {
		row := s.rows[0]
		s.rows = s.rows[1:]
		ok, err := s.b.passes(ctx, s.quals, s.cols, row)
		if err != nil {
			return nil, err
		}
		if ok {
			return row, nil
		}
	}
	return nil, nil
}

func (s *scanOp) Columns() []string { return s.cols }

// AppendOp concatenates the rows of its inputs.
type AppendOp struct {
	inputs []Operator
	// cur is the index of the input being drained.
	cur int
}

var _ Operator = &AppendOp{}

// NewAppendOp creates an operator returning the rows of each input in turn.
func NewAppendOp(inputs []Operator) *AppendOp {
	return &AppendOp{inputs: inputs}
}

// Init implements the Operator interface.
func (a *AppendOp) Init(ctx context.Context) error {
	for _, in := range a.inputs {
		if err := in.Init(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Next implements the Operator interface.
func (a *AppendOp) Next(ctx context.Context) (Row, error) {
	for a.cur < len(a.inputs) {
		row, err := a.inputs[a.cur].Next(ctx)
		if err != nil || row != nil {
			return row, err
		}
		a.cur++
	}
	return nil, nil
}

// Columns implements the Operator interface.
func (a *AppendOp) Columns() []string {
	if len(a.inputs) == 0 {
		return nil
	}
	return a.inputs[0].Columns()
}

// sortOp buffers its input and returns it ordered by keys.
type sortOp struct {
	b          *Builder
	input      Operator
	keys       tree.Exprs
	descending []bool
	rows       []Row
}

var _ Operator = &sortOp{}

func newSortOp(b *Builder, input Operator, keys tree.Exprs, descending []bool) *sortOp {
	return &sortOp{b: b, input: input, keys: keys, descending: descending}
}

func (s *sortOp) Init(ctx context.Context) error {
	if err := s.input.Init(ctx); err != nil {
		return err
	}
	type keyedRow struct {
		row  Row
		keys tree.Datums
	}
	var buf []keyedRow
	for {
		row, err := s.input.Next(ctx)
		if err != nil {
			return err
		}
		if row == nil {
			break
		}
		kr := keyedRow{row: row, keys: make(tree.Datums, len(s.keys))}
		for i, k := range s.keys {
			if kr.keys[i], err = s.b.evalWithRow(ctx, k, s.input.Columns(), row); err != nil {
				return err
			}
		}
		buf = append(buf, kr)
	}
	var sortErr error
	sort.SliceStable(buf, func(i, j int) bool {
		for k := range s.keys {
			c, err := buf[i].keys[k].Compare(buf[j].keys[k])
			if err != nil {
				sortErr = err
				return false
			}
			if c == 0 {
				continue
			}
			if k < len(s.descending) && s.descending[k] {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	if sortErr != nil {
		return sortErr
	}
	s.rows = make([]Row, len(buf))
	for i := range buf {
		s.rows[i] = buf[i].row
	}
	return nil
}

func (s *sortOp) Next(context.Context) (Row, error) {
	if len(s.rows) == 0 {
		return nil, nil
	}
	row := s.rows[0]
	s.rows = s.rows[1:]
	return row, nil
}

func (s *sortOp) Columns() []string { return s.input.Columns() }

// limitOp returns the first rows of its input.
type limitOp struct {
	b         *Builder
	input     Operator
	count     tree.Expr
	remaining int64
}

var _ Operator = &limitOp{}

func newLimitOp(b *Builder, input Operator, count tree.Expr) *limitOp {
	return &limitOp{b: b, input: input, count: count}
}

func (l *limitOp) Init(ctx context.Context) error {
	l.remaining = -1
	if l.count != nil {
		d, err := eval.Expr(ctx, l.b.EvalCtx, l.count)
		if err != nil {
			return err
		}
		if d != tree.DNull {
			n, ok := d.(*tree.DInt)
			if !ok || *n < 0 {
				return pgerror.Newf(pgcode.InvalidParameterValue, "invalid LIMIT %s", d)
			}
			l.remaining = int64(*n)
		}
	}
	return l.input.Init(ctx)
}

func (l *limitOp) Next(ctx context.Context) (Row, error) {
	if l.remaining == 0 {
		return nil, nil
	}
	row, err := l.input.Next(ctx)
	if err != nil || row == nil {
		return nil, err
	}
	if l.remaining > 0 {
		l.remaining--
	}
	return row, nil
}

func (l *limitOp) Columns() []string { return l.input.Columns() }
