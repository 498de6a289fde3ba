// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package stdplanner

import (
	"context"
	"testing"

	"github.com/hyperplan/hyperplan/pkg/sql/parser"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgcode"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgerror"
	"github.com/hyperplan/hyperplan/pkg/sql/plan"
	"github.com/hyperplan/hyperplan/pkg/sql/relopt"
	_ "github.com/hyperplan/hyperplan/pkg/sql/sem/builtins"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/hyperplan/hyperplan/pkg/sql/sorttransform"
	"github.com/lib/pq/oid"
	"github.com/stretchr/testify/require"
)

type inheritance map[oid.Oid][]oid.Oid

func (i inheritance) ChildrenOf(_ context.Context, parent oid.Oid) ([]oid.Oid, error) {
	return i[parent], nil
}

func mustParse(t *testing.T, sql string) tree.Expr {
	t.Helper()
	e, err := parser.ParseExpr(sql)
	require.NoError(t, err)
	return e
}

func selectQuery(t *testing.T, quals ...string) *plan.Query {
	q := &plan.Query{
		CommandType: plan.CmdSelect,
		RangeTable:  plan.RangeTable{{RelID: 100, RelKind: plan.RelKindRelation, Inh: true}},
	}
	for _, s := range quals {
		q.Quals = append(q.Quals, mustParse(t, s))
	}
	return q
}

type visit struct {
	rti  plan.Index
	kind relopt.RelOptKind
	inh  bool
}

func TestSelectExpandsInheritance(t *testing.T) {
	ctx := context.Background()
	var visits []visit
	p := New(inheritance{100: {201, 202}}, func(
		_ context.Context, _ *relopt.PlannerInfo, rel *relopt.RelOptInfo, rti plan.Index, rte *plan.RangeTblEntry,
	) error {
		visits = append(visits, visit{rti, rel.Kind, rte.Inh})
		return nil
	})
	q := selectQuery(t, "time > now()")
	stmt, err := p.Plan(ctx, q, 0, nil)
	require.NoError(t, err)

	require.Equal(t, []visit{
		{2, relopt.OtherMemberRel, false},
		{3, relopt.OtherMemberRel, false},
		{4, relopt.OtherMemberRel, false},
		{1, relopt.BaseRel, true},
	}, visits)
	require.Len(t, stmt.RangeTable, 4)
	require.Equal(t, oid.Oid(100), stmt.RangeTable[1].RelID)
	require.Equal(t, oid.Oid(202), stmt.RangeTable[3].RelID)
	require.Equal(t,
		"Append children=3\n"+
			"  SeqScan rel=2 filter=[time > now()]\n"+
			"  SeqScan rel=3 filter=[time > now()]\n"+
			"  SeqScan rel=4 filter=[time > now()]\n",
		plan.FormatStmt(stmt).StripMarkers())
	// The query's range table is not modified.
	require.Len(t, q.RangeTable, 1)
}

func TestSelectWithoutChildren(t *testing.T) {
	ctx := context.Background()
	var inh []bool
	p := New(nil, func(
		_ context.Context, _ *relopt.PlannerInfo, _ *relopt.RelOptInfo, _ plan.Index, rte *plan.RangeTblEntry,
	) error {
		inh = append(inh, rte.Inh)
		return nil
	})
	stmt, err := p.Plan(ctx, selectQuery(t), 0, nil)
	require.NoError(t, err)
	require.Equal(t, []bool{false}, inh)
	require.Equal(t, "SeqScan rel=1\n", string(plan.FormatStmt(stmt).StripMarkers()))
}

func TestSelectProvenEmpty(t *testing.T) {
	ctx := context.Background()
	var dummies []bool
	p := New(inheritance{100: {201}}, func(
		_ context.Context, _ *relopt.PlannerInfo, rel *relopt.RelOptInfo, _ plan.Index, _ *plan.RangeTblEntry,
	) error {
		dummies = append(dummies, rel.IsDummy())
		return nil
	})
	stmt, err := p.Plan(ctx, selectQuery(t, "false"), 0, nil)
	require.NoError(t, err)
	require.Equal(t, []bool{true}, dummies)
	require.Equal(t, "Result\n", string(plan.FormatStmt(stmt).StripMarkers()))
}

func TestOrderBy(t *testing.T) {
	ctx := context.Background()
	q := selectQuery(t)
	q.SortClause = []plan.SortBy{{Expr: mustParse(t, "time_bucket(interval '1 hour', time)"), Descending: true}}

	p := New(inheritance{100: {201}}, nil)
	stmt, err := p.Plan(ctx, q, 0, nil)
	require.NoError(t, err)
	require.Equal(t,
		"Sort keys=[time_bucket('1h0m0s'::INTERVAL, time)]\n"+
			"  Append children=2\n"+
			"    SeqScan rel=2\n"+
			"    SeqScan rel=3\n",
		plan.FormatStmt(stmt).StripMarkers())

	// With the sort transform applied to the children, the ordering comes
	// from index scans on time.
	p = New(inheritance{100: {201}}, func(
		ctx context.Context, root *relopt.PlannerInfo, rel *relopt.RelOptInfo, _ plan.Index, _ *plan.RangeTblEntry,
	) error {
		if rel.Kind == relopt.OtherMemberRel {
			sorttransform.Apply(ctx, root, rel)
		}
		return nil
	})
	stmt, err = p.Plan(ctx, q, 0, nil)
	require.NoError(t, err)
	require.Equal(t,
		"MergeAppend children=2 keys=[time_bucket('1h0m0s'::INTERVAL, time)]\n"+
			"  IndexScan rel=2 index=time_idx\n"+
			"  IndexScan rel=3 index=time_idx\n",
		plan.FormatStmt(stmt).StripMarkers())
}

func TestInsert(t *testing.T) {
	ctx := context.Background()
	q := &plan.Query{
		CommandType:    plan.CmdInsert,
		ResultRelation: 1,
		RangeTable:     plan.RangeTable{{RelID: 100, RelKind: plan.RelKindRelation}},
		TargetList:     []string{"time"},
		Values:         []tree.Exprs{{mustParse(t, "now()")}},
	}
	stmt, err := New(nil, nil).Plan(ctx, q, 0, nil)
	require.NoError(t, err)
	require.Equal(t, []plan.Index{1}, stmt.ResultRelations)
	require.Equal(t,
		"ModifyTable insert rels=[1]\n"+
			"  ValuesScan rows=1\n",
		plan.FormatStmt(stmt).StripMarkers())

	q.ResultRelation = 2
	_, err = New(nil, nil).Plan(ctx, q, 0, nil)
	require.Equal(t, pgcode.Internal, pgerror.GetPGCode(err))
}

func TestUpdateAndUtility(t *testing.T) {
	ctx := context.Background()
	q := selectQuery(t)
	q.CommandType = plan.CmdDelete
	q.ResultRelation = 1
	stmt, err := New(nil, nil).Plan(ctx, q, 0, nil)
	require.NoError(t, err)
	require.Equal(t,
		"ModifyTable delete rels=[1]\n"+
			"  SeqScan rel=1\n",
		plan.FormatStmt(stmt).StripMarkers())

	q.CommandType = plan.CmdUtility
	_, err = New(nil, nil).Plan(ctx, q, 0, nil)
	require.Equal(t, pgcode.FeatureNotSupported, pgerror.GetPGCode(err))
}
