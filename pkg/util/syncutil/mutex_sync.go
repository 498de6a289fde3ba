// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

//go:build !deadlock

// Package syncutil provides the mutexes used throughout the repo. Building
// with the deadlock tag swaps them for lock-order checking versions.
package syncutil

import "sync"

// Mutex is a sync.Mutex unless built with the deadlock tag.
type Mutex struct {
	sync.Mutex
}

// RWMutex is a sync.RWMutex unless built with the deadlock tag.
type RWMutex struct {
	sync.RWMutex
}
