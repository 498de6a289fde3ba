// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package settings

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
)

// settingFlag implements pflag.Value; every occurrence of the flag assigns
// one key=value pair.
type settingFlag struct {
	sv  *Values
	set []string
}

var _ pflag.Value = (*settingFlag)(nil)

func (f *settingFlag) String() string {
	return "[" + strings.Join(f.set, ",") + "]"
}

func (f *settingFlag) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return errors.Errorf("expected key=value, found %q", s)
	}
	key = strings.TrimSpace(key)
	if err := f.sv.Set(key, strings.TrimSpace(value)); err != nil {
		return err
	}
	f.set = append(f.set, s)
	return nil
}

func (f *settingFlag) Type() string { return "key=value" }

// AddFlags registers a repeatable --set flag on the given flag set. Every
// value has the form key=value and is applied to sv immediately.
func AddFlags(fs *pflag.FlagSet, sv *Values) {
	fs.Var(&settingFlag{sv: sv}, "set", "override a setting, e.g. --set sql.hypertable.disable_optimizations=true (repeatable)")
}
