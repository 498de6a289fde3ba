// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/hyperplan/hyperplan/pkg/extension"
	"github.com/hyperplan/hyperplan/pkg/settings"
	"github.com/hyperplan/hyperplan/pkg/sql/plan"
	"github.com/hyperplan/hyperplan/pkg/sql/planner/plannertest"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/hyperplan/hyperplan/pkg/util/tracing"
	"github.com/opentracing/opentracing-go"
	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain --scenario <file> <query-file>...",
	Short: "show how a statement is planned on hypertables",
	Long: `
Plans the YAML statement of each <query-file> (or standard input if "-")
with the standard planner alone and with the hypertable planner, and prints
both plans. The relations are described by the YAML scenario file.

With --exec, each rewritten statement is also run against in-memory storage
and the resulting rows and chunks are printed. Chunks created by one
statement are seen by the next. With --show-metrics, the planner and cache
counters are printed at the end.
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExplain,
}

func runExplain(cmd *cobra.Command, args []string) error {
	ctx, finish := tracing.RootSpan(context.Background(), opentracing.GlobalTracer(), "hyperplan.explain")
	defer finish()
	if cliCtx.scenario == "" {
		return errors.New("no scenario given; use --scenario")
	}
	scenario, err := os.ReadFile(cliCtx.scenario)
	if err != nil {
		return errors.Wrap(err, "reading scenario")
	}

	defer extension.SetLoaded(extension.SetLoaded(true))
	h := plannertest.New()
	defer h.Close()
	if err := h.LoadScenario(scenario); err != nil {
		return err
	}
	if err := applyOverrides(h.Settings, cliCtx.settings); err != nil {
		return err
	}

	for i, path := range args {
		query, err := readInput(cmd.InOrStdin(), path)
		if err != nil {
			return errors.Wrapf(err, "reading query %s", path)
		}
		if i > 0 {
			fmt.Fprintln(osStdout)
		}
		if err := explainQuery(ctx, h, query); err != nil {
			return errors.Wrapf(err, "%s", path)
		}
	}
	if cliCtx.showMetrics {
		fmt.Fprintln(osStdout)
		return printMetrics(h)
	}
	return nil
}

func printMetrics(h *plannertest.Harness) error {
	values, err := h.MetricValues()
	if err != nil {
		return err
	}
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{v.Name, humanize.Ftoa(v.Value)}
	}
	return printQueryOutput(osStdout, []string{"metric", "value"}, rows, cliCtx.displayFormat)
}

func explainQuery(ctx context.Context, h *plannertest.Harness, query []byte) error {
	q, err := h.ParseQuery(query)
	if err != nil {
		return err
	}
	before, after, err := h.Plan(ctx, q)
	if err != nil {
		return err
	}
	if err := printPlans(osStdout, before, after); err != nil {
		return err
	}
	if !cliCtx.exec {
		return nil
	}

	rows, cols, err := h.Exec(ctx, after)
	if err != nil {
		return err
	}
	fmt.Fprintln(osStdout)
	strRows := make([][]string, len(rows))
	for i, row := range rows {
		strRows[i] = make([]string, len(row))
		for j, d := range row {
			strRows[i][j] = tree.AsString(d)
		}
	}
	if err := printQueryOutput(osStdout, cols, strRows, cliCtx.displayFormat); err != nil {
		return err
	}

	fmt.Fprintln(osStdout)
	var chunkRows [][]string
	for _, c := range h.ChunkInfos() {
		chunkRows = append(chunkRows, []string{
			c.Name, c.Hypertable, strings.Join(c.Ranges, ", "), humanize.Comma(int64(c.Rows)),
		})
	}
	return printQueryOutput(osStdout, []string{"chunk", "hypertable", "ranges", "rows"},
		chunkRows, cliCtx.displayFormat)
}

// applyOverrides copies the settings given on the command line over the
// ones of the scenario.
func applyOverrides(dst, overrides *settings.Values) error {
	for _, k := range settings.Keys() {
		s, _, _ := settings.Lookup(k)
		if v := s.String(overrides); v != s.EncodedDefault() {
			if err := dst.Set(k, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func printPlans(w io.Writer, before, after *plan.PlannedStmt) error {
	standard := string(plan.FormatStmt(before).StripMarkers())
	rewritten := string(plan.FormatStmt(after).StripMarkers())
	if cliCtx.displayFormat == tableDisplayText {
		fmt.Fprintf(w, "standard:\n%srewritten:\n%s", standard, rewritten)
		return nil
	}
	return printQueryOutput(w, []string{"standard", "rewritten"},
		[][]string{{strings.TrimSuffix(standard, "\n"), strings.TrimSuffix(rewritten, "\n")}},
		cliCtx.displayFormat)
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
