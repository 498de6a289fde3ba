// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package build

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInfo(t *testing.T) {
	defer TestingOverrideTag("v1.2.3")()
	info := GetInfo()
	require.Equal(t, "v1.2.3", info.Tag)
	require.Contains(t, info.Short(), "hyperplan v1.2.3 (")
	require.True(t, info.GoTime().IsZero())

	info.Time = "2026/10/16 12:00:00"
	require.Equal(t, 2026, info.GoTime().Year())
}
