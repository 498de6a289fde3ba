// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package settings

// slotIdx is an integer in the range [0, MaxSettings) which is uniquely
// associated with a registered setting.
type slotIdx int32

// Setting is the interface exposing the metadata for a setting.
type Setting interface {
	// Key returns the name of the setting.
	Key() string
	// Description contains a helpful text explaining what the specific
	// setting is for.
	Description() string
	// Typ returns the short (1 char) string denoting the type of setting.
	Typ() string
	// String returns the string representation of the setting's current
	// value.
	String(sv *Values) string
	// EncodedDefault returns the encoded default value of the setting.
	EncodedDefault() string
}

type internalSetting interface {
	Setting

	init(key, desc string, slot slotIdx)
	setHidden()
	isHidden() bool
	setToDefault(sv *Values)
	decodeAndSet(sv *Values, encoded string) error
}

// common implements basic functionality used by all setting types.
type common struct {
	key         string
	description string
	hidden      bool
	slot        slotIdx
}

func (c *common) init(key, desc string, slot slotIdx) {
	c.key = key
	c.description = desc
	c.slot = slot
}

// Key returns the name of the setting.
func (c *common) Key() string { return c.key }

// Description returns the description of the setting.
func (c *common) Description() string { return c.description }

func (c *common) setHidden() { c.hidden = true }

func (c *common) isHidden() bool { return c.hidden }
