// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package build reports the version of the binary.
package build

import (
	"fmt"
	"os"
	"runtime"
	"time"
)

// TimeFormat is the reference format for Info.Time. It must match the
// format passed to the linker.
const TimeFormat = "2006/01/02 15:04:05"

var (
	// These variables are initialized via the linker -X flag when compiling
	// release binaries.
	tag      = "unknown" // git describe --tags, with an optional -dirty suffix
	utcTime  string      // build time in UTC
	rev      string      // git rev-parse HEAD
	platform = fmt.Sprintf("%s %s", runtime.GOOS, runtime.GOARCH)
)

// Info describes a build.
type Info struct {
	GoVersion string
	Tag       string
	Time      string
	Revision  string
	Platform  string
}

func init() {
	// Allow tests to override the tag.
	if tagOverride := os.Getenv("HYPERPLAN_TESTING_VERSION_TAG"); tagOverride != "" {
		tag = tagOverride
	}
}

// Short returns a pretty printed build and version summary.
func (b Info) Short() string {
	return fmt.Sprintf("hyperplan %s (%s, built %s, %s)", b.Tag, b.Platform, b.Time, b.GoVersion)
}

// GoTime parses the build time. It returns the zero time if the binary
// was not stamped.
func (b Info) GoTime() time.Time {
	val, err := time.Parse(TimeFormat, b.Time)
	if err != nil {
		return time.Time{}
	}
	return val
}

// GetInfo returns the build information of the binary.
func GetInfo() Info {
	return Info{
		GoVersion: runtime.Version(),
		Tag:       tag,
		Time:      utcTime,
		Revision:  rev,
		Platform:  platform,
	}
}

// TestingOverrideTag allows tests to override the build tag.
func TestingOverrideTag(t string) func() {
	prev := tag
	tag = t
	return func() { tag = prev }
}
