// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package extension

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetLoaded(t *testing.T) {
	defer TestingSetLoaded(false)()
	require.False(t, IsLoaded())
	require.False(t, SetLoaded(true))
	require.True(t, IsLoaded())

	restore := TestingSetLoaded(false)
	require.False(t, IsLoaded())
	restore()
	require.True(t, IsLoaded())
}
