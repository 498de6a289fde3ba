// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package plannertest runs statements through the standard planner and the
// hypertable hooks against an in-memory catalog and storage. It backs the
// data-driven planner tests and the hyperplan command-line tool.
package plannertest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hyperplan/hyperplan/pkg/hypertable"
	"github.com/hyperplan/hyperplan/pkg/hypertable/catalog"
	"github.com/hyperplan/hyperplan/pkg/hypertable/chunk"
	"github.com/hyperplan/hyperplan/pkg/settings"
	"github.com/hyperplan/hyperplan/pkg/sql/exec"
	"github.com/hyperplan/hyperplan/pkg/sql/parser"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgcode"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgerror"
	"github.com/hyperplan/hyperplan/pkg/sql/plan"
	"github.com/hyperplan/hyperplan/pkg/sql/planner"
	_ "github.com/hyperplan/hyperplan/pkg/sql/sem/builtins" // register builtins
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/hyperplan/hyperplan/pkg/sql/stdplanner"
	"github.com/lib/pq/oid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"gopkg.in/yaml.v2"
)

// FirstChunkOid is the first relation identifier handed out to chunks.
const FirstChunkOid = oid.Oid(100000)

// TableSpec is the YAML form of a stored table.
type TableSpec struct {
	Name    string   `yaml:"name"`
	RelID   uint32   `yaml:"relid"`
	Columns []string `yaml:"columns"`
}

// Scenario is the YAML form of the relations and configuration of a run:
//
//	tables:
//	- name: events
//	  relid: 16384
//	  columns: [time, value]
//	hypertables:
//	- id: 1
//	  relid: 16384
//	  table: events
//	  dimensions:
//	  - column: time
//	    interval: 1 day
//	settings:
//	  sql.hypertable.disable_optimizations: false
//	now: 2026-10-16 12:00:00
type Scenario struct {
	Tables      []TableSpec              `yaml:"tables"`
	Hypertables []catalog.HypertableSpec `yaml:"hypertables"`
	Settings    map[string]string        `yaml:"settings"`
	// Now is the statement timestamp used at execution.
	Now string `yaml:"now"`
}

// QuerySpec is the YAML form of a statement. Exactly one of Insert, Select,
// Update and Delete names the target table.
//
//	insert: events
//	columns: [time, value]
//	values:
//	- ["'2026-10-15 10:00:00'::timestamp", "1"]
//	on_conflict:
//	  constraint: 17000
//
// Sort keys may end in " desc".
type QuerySpec struct {
	Insert     string          `yaml:"insert"`
	Select     string          `yaml:"select"`
	Update     string          `yaml:"update"`
	Delete     string          `yaml:"delete"`
	Only       bool            `yaml:"only"`
	Columns    []string        `yaml:"columns"`
	Values     [][]string      `yaml:"values"`
	Where      []string        `yaml:"where"`
	OrderBy    []string        `yaml:"order_by"`
	OnConflict *OnConflictSpec `yaml:"on_conflict"`
}

// OnConflictSpec is the YAML form of an ON CONFLICT clause.
type OnConflictSpec struct {
	Constraint uint32   `yaml:"constraint"`
	Columns    []string `yaml:"columns"`
	Update     bool     `yaml:"update"`
}

// Harness holds the state of a run.
type Harness struct {
	Catalog     *catalog.Static
	Hypertables *hypertable.Manager
	Chunks      *chunk.MemStore
	Storage     *exec.MemStorage
	Settings    *settings.Values
	Hooks       *planner.Hooks
	Planner     *planner.Planner
	// Registry holds the metrics of the cache and the planner.
	Registry *prometheus.Registry
	// Now is the statement timestamp at execution.
	Now time.Time

	tables    map[string]TableSpec
	standard  *stdplanner.Planner
	uninstall func()
}

// New creates an empty harness with the planner hooks installed. Close
// uninstalls them.
func New() *Harness {
	h := &Harness{
		Catalog:  catalog.NewStatic(),
		Chunks:   chunk.NewMemStore(FirstChunkOid),
		Storage:  exec.NewMemStorage(),
		Settings: settings.MakeValues(),
		Hooks:    &planner.Hooks{},
		Registry: prometheus.NewRegistry(),
		tables:   make(map[string]TableSpec),
	}
	h.Hypertables = hypertable.NewManager(h.Catalog, nil)
	h.Hooks.Standard = stdplanner.New(h.Chunks, h.Hooks.SetRelPathlist).Plan
	h.standard = stdplanner.New(h.Chunks, nil)
	h.Planner = planner.NewPlanner(planner.Config{Settings: h.Settings, Hypertables: h.Hypertables})
	h.uninstall = h.Planner.Install(h.Hooks)
	h.Registry.MustRegister(h.Hypertables.Metrics().PrometheusCollectors()...)
	h.Registry.MustRegister(h.Planner.Metrics().PrometheusCollectors()...)
	return h
}

// Close uninstalls the planner hooks.
func (h *Harness) Close() {
	h.uninstall()
}

// LoadScenario applies a YAML scenario.
func (h *Harness) LoadScenario(data []byte) error {
	var s Scenario
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return errors.Wrap(err, "parsing scenario")
	}
	for _, t := range s.Tables {
		if err := h.AddTable(t); err != nil {
			return err
		}
	}
	for i := range s.Hypertables {
		ht, err := s.Hypertables[i].Hypertable()
		if err != nil {
			return err
		}
		if err := h.AddHypertable(ht); err != nil {
			return err
		}
	}
	keys := make([]string, 0, len(s.Settings))
	for k := range s.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := h.Settings.Set(k, s.Settings[k]); err != nil {
			return err
		}
	}
	if s.Now != "" {
		ts, err := time.Parse("2006-01-02 15:04:05", s.Now)
		if err != nil {
			return errors.Wrapf(err, "parsing now")
		}
		h.Now = ts
	}
	return nil
}

// AddTable creates a stored table.
func (h *Harness) AddTable(t TableSpec) error {
	if t.Name == "" || t.RelID == 0 {
		return errors.Newf("table %q needs a name and a relid", t.Name)
	}
	if _, ok := h.tables[t.Name]; ok {
		return pgerror.Newf(pgcode.DuplicateRelation, "relation %q already exists", t.Name)
	}
	h.tables[t.Name] = t
	h.Storage.CreateTable(oid.Oid(t.RelID), t.Columns...)
	return nil
}

// AddHypertable registers ht. Its table must exist.
func (h *Harness) AddHypertable(ht *hypertable.Hypertable) error {
	t, ok := h.tables[ht.Table]
	if !ok || oid.Oid(t.RelID) != ht.RelID {
		return pgerror.Newf(pgcode.UndefinedTable, "hypertable %s has no table with relid %d",
			ht.QualifiedName(), ht.RelID)
	}
	h.Catalog.Add(ht)
	h.Hypertables.Invalidate(context.Background())
	return nil
}

// ParseQuery parses a YAML statement.
func (h *Harness) ParseQuery(data []byte) (*plan.Query, error) {
	var qs QuerySpec
	if err := yaml.UnmarshalStrict(data, &qs); err != nil {
		return nil, errors.Wrap(err, "parsing query")
	}
	return h.Query(qs)
}

// Query builds the analyzed form of qs.
func (h *Harness) Query(qs QuerySpec) (*plan.Query, error) {
	q := &plan.Query{}
	var table string
	for _, c := range []struct {
		name string
		typ  plan.CmdType
	}{
		{qs.Insert, plan.CmdInsert},
		{qs.Select, plan.CmdSelect},
		{qs.Update, plan.CmdUpdate},
		{qs.Delete, plan.CmdDelete},
	} {
		if c.name == "" {
			continue
		}
		if table != "" {
			return nil, errors.New("a query names exactly one of insert, select, update and delete")
		}
		table, q.CommandType = c.name, c.typ
	}
	if table == "" {
		return nil, errors.New("a query names exactly one of insert, select, update and delete")
	}
	t, ok := h.tables[table]
	if !ok {
		return nil, pgerror.Newf(pgcode.UndefinedTable, "relation %q does not exist", table)
	}
	q.RangeTable = plan.RangeTable{{
		Kind:    plan.RTERelation,
		RelID:   oid.Oid(t.RelID),
		RelKind: plan.RelKindRelation,
		Inh:     q.CommandType != plan.CmdInsert && !qs.Only,
		Alias:   t.Name,
	}}
	if q.CommandType != plan.CmdSelect {
		q.ResultRelation = 1
	}

	if q.CommandType == plan.CmdInsert {
		q.TargetList = qs.Columns
		if len(q.TargetList) == 0 {
			q.TargetList = t.Columns
		}
		for _, row := range qs.Values {
			exprs, err := parser.ParseExprs(row)
			if err != nil {
				return nil, err
			}
			q.Values = append(q.Values, exprs)
		}
	}
	for _, w := range qs.Where {
		e, err := parser.ParseExpr(w)
		if err != nil {
			return nil, err
		}
		q.Quals = append(q.Quals, e)
	}
	for _, o := range qs.OrderBy {
		sb := plan.SortBy{}
		if s := strings.TrimSpace(o); strings.HasSuffix(strings.ToLower(s), " desc") {
			o, sb.Descending = s[:len(s)-len(" desc")], true
		}
		e, err := parser.ParseExpr(o)
		if err != nil {
			return nil, err
		}
		sb.Expr = e
		q.SortClause = append(q.SortClause, sb)
	}
	if oc := qs.OnConflict; oc != nil {
		q.OnConflict = &plan.OnConflictExpr{
			Action:         plan.OnConflictNothing,
			ArbiterColumns: oc.Columns,
			Constraint:     oid.Oid(oc.Constraint),
		}
		if oc.Update {
			q.OnConflict.Action = plan.OnConflictUpdate
		}
	}
	return q, nil
}

// Plan plans q with the standard planner alone and with the hooks.
func (h *Harness) Plan(ctx context.Context, q *plan.Query) (before, after *plan.PlannedStmt, _ error) {
	before, err := h.standard.Plan(ctx, q, 0, nil)
	if err != nil {
		return nil, nil, err
	}
	after, err = h.Hooks.Plan(ctx, q, 0, nil)
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

// Exec runs stmt.
func (h *Harness) Exec(ctx context.Context, stmt *plan.PlannedStmt) ([]exec.Row, []string, error) {
	return exec.Run(ctx, exec.Config{
		Storage:       h.Storage,
		Chunks:        h.Chunks,
		Hypertables:   h.Hypertables,
		StmtTimestamp: h.Now,
	}, stmt)
}

// ChunkInfo describes one chunk.
type ChunkInfo struct {
	Name       string
	Hypertable string
	Ranges     []string
	Rows       int
}

// ChunkInfos lists the chunks of every hypertable.
func (h *Harness) ChunkInfos() []ChunkInfo {
	var res []ChunkInfo
	for _, ht := range h.Catalog.Hypertables() {
		for _, c := range h.Chunks.Chunks(ht) {
			info := ChunkInfo{
				Name:       c.Schema + "." + c.Table,
				Hypertable: string(ht.QualifiedName().StripMarkers()),
				Rows:       h.Storage.Len(c.RelID),
			}
			for i, s := range c.Cube {
				info.Ranges = append(info.Ranges, formatSlice(&ht.Dimensions[i], s))
			}
			res = append(res, info)
		}
	}
	return res
}

func formatSlice(d *hypertable.Dimension, s hypertable.DimensionSlice) string {
	if d.Type == hypertable.Open && d.ColumnType == tree.TimestampFamily {
		ts := func(v int64) string {
			return time.UnixMicro(v).UTC().Format("2006-01-02 15:04:05")
		}
		return fmt.Sprintf("%s [%s, %s)", d.Column, ts(s.RangeStart), ts(s.RangeEnd))
	}
	return fmt.Sprintf("%s [%d, %d)", d.Column, s.RangeStart, s.RangeEnd)
}

// MetricValue is the current value of one counter or gauge.
type MetricValue struct {
	Name  string
	Value float64
}

// MetricValues returns the metrics of the harness ordered by name.
func (h *Harness) MetricValues() ([]MetricValue, error) {
	families, err := h.Registry.Gather()
	if err != nil {
		return nil, err
	}
	var res []MetricValue
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			v := MetricValue{Name: mf.GetName()}
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				v.Value = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				v.Value = m.GetGauge().GetValue()
			default:
				continue
			}
			res = append(res, v)
		}
	}
	return res, nil
}
