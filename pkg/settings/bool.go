// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package settings

import (
	"strconv"

	"github.com/cockroachdb/errors"
)

// BoolSetting is the interface of a setting variable that will be updated
// automatically when the corresponding setting of type "bool" is updated.
type BoolSetting struct {
	common
	defaultValue bool
}

var _ internalSetting = &BoolSetting{}

// Get retrieves the bool value in the setting.
func (b *BoolSetting) Get(sv *Values) bool {
	return sv.getInt64(b.slot) != 0
}

func (b *BoolSetting) String(sv *Values) string {
	return EncodeBool(b.Get(sv))
}

// EncodedDefault returns the encoded default value of the setting.
func (b *BoolSetting) EncodedDefault() string {
	return EncodeBool(b.defaultValue)
}

// Typ returns the short (1 char) string denoting the type of setting.
func (*BoolSetting) Typ() string {
	return "b"
}

// Override sets the setting to the given value, bypassing validation. It is
// intended for tests.
func (b *BoolSetting) Override(sv *Values, v bool) {
	b.set(sv, v)
}

func (b *BoolSetting) set(sv *Values, v bool) {
	vInt := int64(0)
	if v {
		vInt = 1
	}
	sv.setInt64(b.slot, vInt)
}

func (b *BoolSetting) setToDefault(sv *Values) {
	b.set(sv, b.defaultValue)
}

func (b *BoolSetting) decodeAndSet(sv *Values, encoded string) error {
	v, err := strconv.ParseBool(encoded)
	if err != nil {
		return errors.Wrapf(err, "invalid value for %s", b.key)
	}
	b.set(sv, v)
	return nil
}

// RegisterBoolSetting defines a new setting with type bool.
func RegisterBoolSetting(key, desc string, defaultValue bool) *BoolSetting {
	setting := &BoolSetting{defaultValue: defaultValue}
	register(key, desc, setting)
	return setting
}

// EncodeBool encodes a bool in the format expected by Set.
func EncodeBool(b bool) string {
	return strconv.FormatBool(b)
}
