// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package volatility

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVolatilityPostgresRoundTrip(t *testing.T) {
	for _, v := range []V{Leakproof, Immutable, Stable, Volatile} {
		prov, leak := v.ToPostgres()
		res, err := FromPostgres(prov, leak)
		require.NoError(t, err)
		require.Equal(t, v, res)
	}
	_, err := FromPostgres("x", false)
	require.Error(t, err)
}

func TestIsMutable(t *testing.T) {
	require.False(t, Leakproof.IsMutable())
	require.False(t, Immutable.IsMutable())
	require.True(t, Stable.IsMutable())
	require.True(t, Volatile.IsMutable())
}
