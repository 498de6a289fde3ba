// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package cli

import (
	"github.com/hyperplan/hyperplan/pkg/settings"
	// Register the planner settings.
	_ "github.com/hyperplan/hyperplan/pkg/sql/planner"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "list the planner settings",
	Long: `
Lists the planner settings with their values after the --set overrides.
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var rows [][]string
		for _, k := range settings.Keys() {
			s, desc, _ := settings.Lookup(k)
			rows = append(rows, []string{k, s.String(cliCtx.settings), s.Typ(), desc})
		}
		return printQueryOutput(osStdout, []string{"variable", "value", "type", "description"},
			rows, cliCtx.displayFormat)
	},
}
