// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// tableDisplayFormat identifies the format used to print tables.
type tableDisplayFormat int

const (
	tableDisplayTable tableDisplayFormat = iota
	tableDisplayText
	tableDisplayTSV
	tableDisplayCSV
)

var tableDisplayNames = map[tableDisplayFormat]string{
	tableDisplayTable: "table",
	tableDisplayText:  "text",
	tableDisplayTSV:   "tsv",
	tableDisplayCSV:   "csv",
}

// String implements the pflag.Value interface.
func (f *tableDisplayFormat) String() string { return tableDisplayNames[*f] }

// Type implements the pflag.Value interface.
func (f *tableDisplayFormat) Type() string { return "string" }

// Set implements the pflag.Value interface.
func (f *tableDisplayFormat) Set(s string) error {
	for k, name := range tableDisplayNames {
		if name == s {
			*f = k
			return nil
		}
	}
	return errors.Newf("invalid table display format: %s (possible values: table, text, tsv, csv)", s)
}

// printQueryOutput writes a table with the given column names and rows
// to w, followed by the row count.
func printQueryOutput(w io.Writer, cols []string, rows [][]string, displayFormat tableDisplayFormat) error {
	switch displayFormat {
	case tableDisplayTable:
		table := tablewriter.NewWriter(w)
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.SetHeader(cols)
		table.AppendBulk(rows)
		table.Render()
		fmt.Fprintf(w, "(%s row%s)\n", humanize.Comma(int64(len(rows))), pluralize(len(rows)))

	case tableDisplayText:
		fmt.Fprintln(w, strings.Join(cols, " "))
		for _, row := range rows {
			fmt.Fprintln(w, strings.Join(row, " "))
		}

	case tableDisplayTSV, tableDisplayCSV:
		fmt.Fprintf(w, "%d row%s\n", len(rows), pluralize(len(rows)))
		csvWriter := csv.NewWriter(w)
		if displayFormat == tableDisplayTSV {
			csvWriter.Comma = '\t'
		}
		_ = csvWriter.Write(cols)
		_ = csvWriter.WriteAll(rows)
		return csvWriter.Error()
	}
	return nil
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
