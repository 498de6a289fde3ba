// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package settings

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// Values is a container that stores values for all registered settings.
// Each setting is assigned a unique slot (up to MaxSettings).
// Note that slot indices are 0-based.
//
// Values are read concurrently by planning goroutines; writes go through
// Set or the Override helpers.
type Values struct {
	intVals [MaxSettings]int64
}

// MakeValues returns Values initialized with the defaults of every
// registered setting.
func MakeValues() *Values {
	sv := &Values{}
	sv.ResetToDefaults()
	return sv
}

// ResetToDefaults sets every registered setting back to its default.
func (sv *Values) ResetToDefaults() {
	for _, s := range registry {
		s.setToDefault(sv)
	}
}

// Set decodes the encoded value and assigns it to the named setting. An
// invalid value leaves the previous value in place.
func (sv *Values) Set(key, encoded string) error {
	s, ok := registry[key]
	if !ok {
		return errors.Errorf("unknown setting: %s", key)
	}
	return s.decodeAndSet(sv, encoded)
}

func (sv *Values) getInt64(slot slotIdx) int64 {
	return atomic.LoadInt64(&sv.intVals[slot])
}

func (sv *Values) setInt64(slot slotIdx, newVal int64) {
	atomic.StoreInt64(&sv.intVals[slot], newVal)
}
