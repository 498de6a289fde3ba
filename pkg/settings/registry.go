// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package settings

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// MaxSettings bounds the number of registered settings; Values stores one
// slot per setting in a fixed-size array.
const MaxSettings = 128

// registry maps setting keys to their definitions. It is filled by package
// init functions and read-only afterwards.
var registry = map[string]internalSetting{}

// slotTable maps a slot back to its setting, for ResetToDefaults.
var slotTable [MaxSettings]internalSetting

// frozen is set once the binary starts serving commands.
var frozen int32

// Freeze rejects any later registration. Binaries call it at startup.
func Freeze() { atomic.StoreInt32(&frozen, 1) }

func assertNotFrozen(key string) {
	if atomic.LoadInt32(&frozen) != 0 {
		panic(fmt.Sprintf("setting %s registered after Freeze", key))
	}
}

func register(key, desc string, s internalSetting) {
	assertNotFrozen(key)
	if _, dup := registry[key]; dup {
		panic(fmt.Sprintf("duplicate setting %s", key))
	}
	if len(registry) == MaxSettings {
		panic(fmt.Sprintf("cannot register %s: all %d slots taken", key, MaxSettings))
	}
	slot := slotIdx(len(registry))
	s.init(key, desc, slot)
	registry[key] = s
	slotTable[slot] = s
}

// Hide keeps a setting out of Keys. Lookup and Set still find it by name.
func Hide(key string) {
	assertNotFrozen(key)
	s := registry[key]
	if s == nil {
		panic(fmt.Sprintf("unknown setting %s", key))
	}
	s.setHidden()
}

// Keys lists the visible settings in lexical order.
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for k, s := range registry {
		if !s.isHidden() {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Lookup finds a setting and its description by key.
func Lookup(key string) (_ Setting, desc string, ok bool) {
	s := registry[key]
	if s == nil {
		return nil, "", false
	}
	return s, s.Description(), true
}
