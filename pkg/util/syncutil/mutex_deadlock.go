// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

//go:build deadlock

package syncutil

import (
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

func init() {
	// Planning holds the cache locks for microseconds; anything near this
	// long is a lost unlock.
	deadlock.Opts.DeadlockTimeout = 30 * time.Second
}

// Mutex reports lock-order inversions and locks held past the timeout.
type Mutex struct {
	deadlock.Mutex
}

// RWMutex reports lock-order inversions and locks held past the timeout.
type RWMutex struct {
	deadlock.RWMutex
}
