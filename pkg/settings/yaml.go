// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package settings

import (
	"fmt"
	"sort"

	"github.com/cockroachdb/errors"
	yaml "gopkg.in/yaml.v2"
)

// LoadYAML applies a YAML mapping of setting keys to values. Keys are applied
// in sorted order; the first invalid entry aborts loading and is reported.
func LoadYAML(data []byte, sv *Values) error {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "parsing settings")
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := sv.Set(k, fmt.Sprint(raw[k])); err != nil {
			return err
		}
	}
	return nil
}
