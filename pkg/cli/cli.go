// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package cli implements the hyperplan command-line tool, which shows how
// the hypertable planner rewrites statements.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/hyperplan/hyperplan/pkg/build"
	"github.com/hyperplan/hyperplan/pkg/settings"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgerror"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Proxies to allow overrides in tests.
var (
	osStdout io.Writer = os.Stdout
	osStderr io.Writer = os.Stderr
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "output version information",
	Long: `
Output build version information.
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info := build.GetInfo()
		if cliCtx.buildTag {
			fmt.Fprintln(osStdout, info.Tag)
			return
		}
		fmt.Fprintf(osStdout, "Build Tag:   %s\n", info.Tag)
		fmt.Fprintf(osStdout, "Build Time:  %s\n", info.Time)
		fmt.Fprintf(osStdout, "Revision:    %s\n", info.Revision)
		fmt.Fprintf(osStdout, "Platform:    %s\n", info.Platform)
		fmt.Fprintf(osStdout, "Go Version:  %s\n", info.GoVersion)
	},
}

var hyperplanCmd = &cobra.Command{
	Use:   "hyperplan [command] (flags)",
	Short: "hypertable planner command-line interface",
	Long: `Shows how the hypertable planner rewrites statements on hypertables
and inspects hypertable metadata.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// isInteractive indicates whether both stdin and stdout refer to the
// terminal.
var isInteractive = isatty.IsTerminal(os.Stdout.Fd()) &&
	isatty.IsTerminal(os.Stdin.Fd())

func init() {
	cobra.EnableCommandSorting = false

	hyperplanCmd.AddCommand(
		explainCmd,
		settingsCmd,
		catalogCmd,
		versionCmd,
	)
}

// Main is the entry point of the hyperplan binary.
func Main() {
	settings.Freeze()
	if err := Run(os.Args[1:]); err != nil {
		fmt.Fprintf(osStderr, "ERROR: %s\n", pgerror.FullError(err))
		os.Exit(1)
	}
}

// Run runs the command line given by args.
func Run(args []string) error {
	initCLIDefaults()
	hyperplanCmd.SetArgs(args)
	return hyperplanCmd.Execute()
}
