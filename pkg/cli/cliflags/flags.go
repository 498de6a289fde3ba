// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package cliflags defines the names, environment variables and help texts
// of the command-line flags.
package cliflags

// FlagInfo describes a command-line flag.
type FlagInfo struct {
	// Name of the flag as used on the command line.
	Name string
	// Shorthand is the short form of the flag, if any.
	Shorthand string
	// EnvVar, if set, is the environment variable providing the default.
	EnvVar string
	// Description is the help text.
	Description string
}

var (
	Scenario = FlagInfo{
		Name:        "scenario",
		Shorthand:   "s",
		EnvVar:      "HYPERPLAN_SCENARIO",
		Description: `YAML file describing the tables, hypertables and settings.`,
	}

	Exec = FlagInfo{
		Name:        "exec",
		Description: `Run the rewritten statement and show its result and the chunks.`,
	}

	ShowMetrics = FlagInfo{
		Name:        "show-metrics",
		Description: `Print the planner and hypertable cache metrics after the last statement.`,
	}

	Format = FlagInfo{
		Name:        "format",
		Description: `Output format: "table", "text", "tsv" or "csv". Defaults to "table" on a terminal.`,
	}

	CatalogURL = FlagInfo{
		Name:        "url",
		EnvVar:      "HYPERPLAN_CATALOG_URL",
		Description: `Connection URL of the database holding the hypertable catalog.`,
	}

	BuildTag = FlagInfo{
		Name:        "build-tag",
		Description: `Only print the build tag.`,
	}
)
