// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package log

import (
	"strconv"
	"sync/atomic"

	"github.com/spf13/pflag"
)

// verbosityValue adapts the global verbosity to pflag.Value.
type verbosityValue struct{}

var _ pflag.Value = verbosityValue{}

func (verbosityValue) String() string { return strconv.Itoa(int(atomic.LoadInt32(&verbosity))) }

func (verbosityValue) Set(s string) error {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return err
	}
	SetVerbosity(int32(v))
	return nil
}

func (verbosityValue) Type() string { return "int" }

// AddFlags registers the logging flags on the given flag set.
func AddFlags(fs *pflag.FlagSet) {
	fs.Var(verbosityValue{}, "log-verbosity", "verbosity level for V-gated log messages")
}
