// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperplan/hyperplan/pkg/build"
	"github.com/hyperplan/hyperplan/pkg/hypertable"
	"github.com/hyperplan/hyperplan/pkg/hypertable/catalog"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/stretchr/testify/require"
)

const testScenario = `
tables:
- name: events
  relid: 16384
  columns: [time, value]
- name: users
  relid: 16500
  columns: [id, name]
hypertables:
- id: 1
  relid: 16384
  schema: public
  table: events
  dimensions:
  - column: time
    type: timestamp
    interval: 1 day
now: 2026-10-16 12:00:00
`

const testInsert = `
insert: events
values:
- ["'2026-10-15 10:00:00'::timestamp", "1"]
- ["'2026-10-15 18:30:00'::timestamp", "2"]
- ["'2026-10-16 01:00:00'::timestamp", "3"]
`

// runCLI runs the command line and returns what it printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	defer func(w io.Writer) { osStdout = w }(osStdout)
	osStdout = &out
	err := Run(args)
	return out.String(), err
}

func writeFiles(t *testing.T, files map[string]string) string {
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestExplainInsert(t *testing.T) {
	dir := writeFiles(t, map[string]string{"scenario.yaml": testScenario, "insert.yaml": testInsert})
	out, err := runCLI(t, "explain", "--format=text",
		"--scenario", filepath.Join(dir, "scenario.yaml"), filepath.Join(dir, "insert.yaml"))
	require.NoError(t, err)
	require.Contains(t, out, "standard:\nModifyTable insert rels=[1]\n")
	require.Contains(t, out, "rewritten:\nHypertableInsert\n")
	require.Contains(t, out, "ChunkDispatch hypertable=16384")
}

func TestExplainExec(t *testing.T) {
	dir := writeFiles(t, map[string]string{"scenario.yaml": testScenario, "insert.yaml": testInsert})
	out, err := runCLI(t, "explain", "--format=csv", "--exec",
		"--scenario", filepath.Join(dir, "scenario.yaml"), filepath.Join(dir, "insert.yaml"))
	require.NoError(t, err)
	require.Contains(t, out, "chunk,hypertable,ranges,rows\n")
	require.Contains(t, out, "_timescaledb_internal._hyper_1_1_chunk,public.events,"+
		"\"time [2026-10-15 00:00:00, 2026-10-16 00:00:00)\",2\n")
	require.Contains(t, out, "_timescaledb_internal._hyper_1_2_chunk,public.events,"+
		"\"time [2026-10-16 00:00:00, 2026-10-17 00:00:00)\",1\n")
}

func TestExplainShowMetrics(t *testing.T) {
	dir := writeFiles(t, map[string]string{"scenario.yaml": testScenario, "insert.yaml": testInsert})
	out, err := runCLI(t, "explain", "--format=tsv", "--show-metrics",
		"--scenario", filepath.Join(dir, "scenario.yaml"), filepath.Join(dir, "insert.yaml"))
	require.NoError(t, err)
	require.Contains(t, out, "metric\tvalue\n")
	require.Contains(t, out, "hyperplan_planner_inserts_redirected_total\t1\n")
	require.Contains(t, out, "hyperplan_hypertable_cache_active_pins\t0\n")
}

func TestExplainSettingOverride(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"scenario.yaml": testScenario,
		"insert.yaml":   testInsert,
		"select.yaml":   "select: events\nwhere: [\"time > now() - interval '1 day'\"]\n",
	})
	args := []string{"explain", "--format=text", "--exec",
		"--scenario", filepath.Join(dir, "scenario.yaml"),
		filepath.Join(dir, "insert.yaml"), filepath.Join(dir, "select.yaml")}

	out, err := runCLI(t, args...)
	require.NoError(t, err)
	require.Contains(t, out, "ConstraintAwareAppend hypertable=public.events")
	require.Contains(t, out, "'2026-10-16 01:00:00'::TIMESTAMP 3\n")

	out, err = runCLI(t, append(args, "--set", "sql.hypertable.constraint_aware_append.enabled=false")...)
	require.NoError(t, err)
	require.NotContains(t, out, "ConstraintAwareAppend")

	// Overrides do not leak into the next run.
	out, err = runCLI(t, args...)
	require.NoError(t, err)
	require.Contains(t, out, "ConstraintAwareAppend")
}

func TestExplainOnConflictError(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"scenario.yaml": testScenario,
		"insert.yaml":   testInsert + "on_conflict:\n  constraint: 17000\n",
	})
	_, err := runCLI(t, "explain",
		"--scenario", filepath.Join(dir, "scenario.yaml"), filepath.Join(dir, "insert.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "ON CONFLICT")
}

func TestExplainRequiresScenario(t *testing.T) {
	t.Setenv("HYPERPLAN_SCENARIO", "")
	_, err := runCLI(t, "explain", "query.yaml")
	require.EqualError(t, err, "no scenario given; use --scenario")
}

func TestSettings(t *testing.T) {
	out, err := runCLI(t, "settings", "--format=tsv",
		"--set", "sql.hypertable.disable_optimizations=true")
	require.NoError(t, err)
	require.Contains(t, out, "variable\tvalue\ttype\tdescription\n")
	require.Contains(t, out, "sql.hypertable.disable_optimizations\ttrue\tb\t")
	require.Contains(t, out, "sql.hypertable.optimize_non_hypertables\tfalse\tb\t")

	_, err = runCLI(t, "settings", "--set", "sql.hypertable.no_such_setting=1")
	require.Error(t, err)
}

func TestCatalog(t *testing.T) {
	defer func(f func(context.Context, string) (hypertable.Catalog, func(context.Context) error, error)) {
		connectCatalog = f
	}(connectCatalog)
	var closed bool
	connectCatalog = func(ctx context.Context, url string) (hypertable.Catalog, func(context.Context) error, error) {
		require.Equal(t, "postgres://localhost/tsdb", url)
		events := &hypertable.Hypertable{
			ID: 1, RelID: 16384, Schema: "public", Table: "events",
			Dimensions: []hypertable.Dimension{
				{ID: 1, Column: "time", ColumnType: tree.TimestampFamily, Type: hypertable.Open, Interval: 86400000000},
				{ID: 2, Column: "device", ColumnType: tree.IntFamily, Type: hypertable.Closed, NumSlices: 4},
			},
		}
		return catalog.NewStatic(events), func(context.Context) error {
			closed = true
			return nil
		}, nil
	}

	out, err := runCLI(t, "catalog", "--format=csv", "--url", "postgres://localhost/tsdb",
		"16384", "16500")
	require.NoError(t, err)
	require.True(t, closed)
	require.Equal(t, `3 rows
relid,hypertable,column,type,dimension,partitioning
16384,public.events,time,timestamp,open,24h0m0s
16384,public.events,device,int,closed,4 slices
16500,,,,,not a hypertable
`, out)

	_, err = runCLI(t, "catalog", "--url", "postgres://localhost/tsdb", "events")
	require.ErrorContains(t, err, `invalid relation identifier "events"`)
}

func TestVersion(t *testing.T) {
	defer build.TestingOverrideTag("v1.2.3")()
	out, err := runCLI(t, "version", "--build-tag")
	require.NoError(t, err)
	require.Equal(t, "v1.2.3\n", out)

	out, err = runCLI(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "Build Tag:   v1.2.3\n")
}
