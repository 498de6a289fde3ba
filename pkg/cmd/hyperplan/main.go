// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// This is the entry point of the hyperplan binary.
package main

import "github.com/hyperplan/hyperplan/pkg/cli"

func main() {
	cli.Main()
}
