// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package extension tracks whether the hypertable extension is active in
// this process. The planner hooks stay installed across loads and unloads
// and do nothing while the extension is inactive.
package extension

import "sync/atomic"

var loaded atomic.Bool

// IsLoaded is true while the extension is active.
func IsLoaded() bool {
	return loaded.Load()
}

// SetLoaded activates or deactivates the extension and returns the previous
// state.
func SetLoaded(v bool) (prev bool) {
	return loaded.Swap(v)
}

// TestingSetLoaded sets the state for the duration of a test and returns a
// function restoring the previous one.
func TestingSetLoaded(v bool) func() {
	prev := SetLoaded(v)
	return func() { SetLoaded(prev) }
}
