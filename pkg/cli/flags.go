// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package cli

import (
	"os"

	"github.com/hyperplan/hyperplan/pkg/cli/cliflags"
	"github.com/hyperplan/hyperplan/pkg/settings"
	"github.com/hyperplan/hyperplan/pkg/util/log"
	"github.com/spf13/pflag"
)

// cliCtx holds the values of the command-line flags.
var cliCtx struct {
	scenario      string
	exec          bool
	showMetrics   bool
	displayFormat tableDisplayFormat
	catalogURL    string
	buildTag      bool
	// settings receives the --set overrides.
	settings *settings.Values
}

// initCLIDefaults resets the flag values. Flags given on the command line
// are applied afterwards.
func initCLIDefaults() {
	cliCtx.scenario = envOrDefault(cliflags.Scenario, "")
	cliCtx.exec = false
	cliCtx.showMetrics = false
	cliCtx.displayFormat = tableDisplayText
	if isInteractive {
		cliCtx.displayFormat = tableDisplayTable
	}
	cliCtx.catalogURL = envOrDefault(cliflags.CatalogURL, "")
	cliCtx.buildTag = false
	cliCtx.settings.ResetToDefaults()
}

func envOrDefault(flagInfo cliflags.FlagInfo, def string) string {
	if flagInfo.EnvVar != "" {
		if v, ok := os.LookupEnv(flagInfo.EnvVar); ok {
			return v
		}
	}
	return def
}

// StringFlag creates a string flag and registers it with the FlagSet.
func StringFlag(f *pflag.FlagSet, valPtr *string, flagInfo cliflags.FlagInfo) {
	f.StringVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, *valPtr, flagInfo.Description)
}

// BoolFlag creates a bool flag and registers it with the FlagSet.
func BoolFlag(f *pflag.FlagSet, valPtr *bool, flagInfo cliflags.FlagInfo) {
	f.BoolVarP(valPtr, flagInfo.Name, flagInfo.Shorthand, *valPtr, flagInfo.Description)
}

// VarFlag creates a custom-variable flag and registers it with the FlagSet.
func VarFlag(f *pflag.FlagSet, value pflag.Value, flagInfo cliflags.FlagInfo) {
	f.VarP(value, flagInfo.Name, flagInfo.Shorthand, flagInfo.Description)
}

func init() {
	cliCtx.settings = settings.MakeValues()
	initCLIDefaults()

	log.AddFlags(hyperplanCmd.PersistentFlags())

	{
		f := explainCmd.Flags()
		StringFlag(f, &cliCtx.scenario, cliflags.Scenario)
		BoolFlag(f, &cliCtx.exec, cliflags.Exec)
		BoolFlag(f, &cliCtx.showMetrics, cliflags.ShowMetrics)
		VarFlag(f, &cliCtx.displayFormat, cliflags.Format)
		settings.AddFlags(f, cliCtx.settings)
	}
	{
		f := settingsCmd.Flags()
		VarFlag(f, &cliCtx.displayFormat, cliflags.Format)
		settings.AddFlags(f, cliCtx.settings)
	}
	{
		f := catalogCmd.Flags()
		StringFlag(f, &cliCtx.catalogURL, cliflags.CatalogURL)
		VarFlag(f, &cliCtx.displayFormat, cliflags.Format)
	}
	BoolFlag(versionCmd.Flags(), &cliCtx.buildTag, cliflags.BuildTag)
}
