// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package settings

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// EnumSetting is a StringSetting that restricts the values to be one of the
// `enumValues`.
type EnumSetting struct {
	common
	defaultValue int64
	enumValues   map[int64]string
}

var _ internalSetting = &EnumSetting{}

// Get retrieves the enum value in the setting.
func (e *EnumSetting) Get(sv *Values) int64 {
	return sv.getInt64(e.slot)
}

func (e *EnumSetting) String(sv *Values) string {
	v := e.Get(sv)
	if name, ok := e.enumValues[v]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", v)
}

// EncodedDefault returns the encoded default value of the setting.
func (e *EnumSetting) EncodedDefault() string {
	return e.enumValues[e.defaultValue]
}

// Typ returns the short (1 char) string denoting the type of setting.
func (*EnumSetting) Typ() string {
	return "e"
}

// ParseEnum returns the enum value, and a boolean that indicates if it was
// parseable. The name is case-insensitive; the integer value is also
// accepted.
func (e *EnumSetting) ParseEnum(raw string) (int64, bool) {
	rawLower := strings.ToLower(raw)
	for k, v := range e.enumValues {
		if v == rawLower {
			return k, true
		}
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	_, ok := e.enumValues[v]
	return v, ok
}

// Override sets the setting to the given value, bypassing validation. It is
// intended for tests.
func (e *EnumSetting) Override(sv *Values, v int64) {
	sv.setInt64(e.slot, v)
}

func (e *EnumSetting) setToDefault(sv *Values) {
	sv.setInt64(e.slot, e.defaultValue)
}

func (e *EnumSetting) decodeAndSet(sv *Values, encoded string) error {
	v, ok := e.ParseEnum(encoded)
	if !ok {
		return errors.Errorf("invalid value for %s: %q; expected one of %s",
			e.key, encoded, e.optionsString())
	}
	sv.setInt64(e.slot, v)
	return nil
}

func (e *EnumSetting) optionsString() string {
	keys := make([]int64, 0, len(e.enumValues))
	for k := range e.enumValues {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	var buf strings.Builder
	buf.WriteByte('[')
	for i, k := range keys {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s = %d", e.enumValues[k], k)
	}
	buf.WriteByte(']')
	return buf.String()
}

// RegisterEnumSetting defines a new setting with type int whose values are
// restricted to the given set of names.
func RegisterEnumSetting(
	key, desc string, defaultValue string, enumValues map[int64]string,
) *EnumSetting {
	enumValuesLower := make(map[int64]string, len(enumValues))
	var i int64
	var found bool
	for k, v := range enumValues {
		enumValuesLower[k] = strings.ToLower(v)
		if v == defaultValue {
			i = k
			found = true
		}
	}
	if !found {
		panic(fmt.Sprintf("enum registered with default value %s not in map", defaultValue))
	}
	setting := &EnumSetting{
		defaultValue: i,
		enumValues:   enumValuesLower,
	}
	register(key, desc, setting)
	return setting
}
