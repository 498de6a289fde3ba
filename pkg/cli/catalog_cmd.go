// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/hyperplan/hyperplan/pkg/hypertable"
	"github.com/hyperplan/hyperplan/pkg/hypertable/catalog"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/hyperplan/hyperplan/pkg/util/log"
	"github.com/lib/pq/oid"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog --url <url> <relid>...",
	Short: "show the dimensions of hypertables",
	Long: `
Reads the partitioning metadata of the given relations from the catalog of a
running TimescaleDB instance and prints their dimensions. Relations that are
not hypertables are reported as such.
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCatalog,
}

// connectCatalog opens the catalog read by the catalog command. It is
// replaced in tests.
var connectCatalog = func(
	ctx context.Context, url string,
) (hypertable.Catalog, func(context.Context) error, error) {
	pg, closeFn, err := catalog.ConnectPG(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	return pg, closeFn, nil
}

func runCatalog(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if cliCtx.catalogURL == "" {
		return errors.New("no catalog given; use --url")
	}
	relids := make([]oid.Oid, len(args))
	for i, a := range args {
		v, err := strconv.ParseUint(a, 10, 32)
		if err != nil {
			return errors.Wrapf(err, "invalid relation identifier %q", a)
		}
		relids[i] = oid.Oid(v)
	}

	cat, closeFn, err := connectCatalog(ctx, cliCtx.catalogURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeFn(ctx); err != nil {
			log.Warningf(ctx, "closing catalog connection: %v", err)
		}
	}()

	var rows [][]string
	for _, relid := range relids {
		ht, err := cat.LookupHypertable(ctx, relid)
		if err != nil {
			return err
		}
		if ht == nil {
			rows = append(rows, []string{fmt.Sprint(relid), "", "", "", "", "not a hypertable"})
			continue
		}
		for _, d := range ht.Dimensions {
			partitioning := fmt.Sprintf("%d slices", d.NumSlices)
			if d.Type == hypertable.Open {
				partitioning = fmt.Sprint(d.Interval)
				if d.ColumnType == tree.TimestampFamily {
					partitioning = d.IntervalDuration().String()
				}
			}
			rows = append(rows, []string{
				fmt.Sprint(relid), string(ht.QualifiedName().StripMarkers()),
				d.Column, d.ColumnType.String(), d.Type.String(), partitioning,
			})
		}
	}
	return printQueryOutput(osStdout,
		[]string{"relid", "hypertable", "column", "type", "dimension", "partitioning"},
		rows, cliCtx.displayFormat)
}
