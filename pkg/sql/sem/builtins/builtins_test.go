// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package builtins

import (
	"testing"
	"time"

	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/volatility"
	"github.com/stretchr/testify/require"
)

type fixedClock time.Time

func (c fixedClock) GetStmtTimestamp() time.Time { return time.Time(c) }

func TestRegistered(t *testing.T) {
	require.Equal(t, []string{
		"abs", "clock_timestamp", "date_trunc", "now", "random", "time_bucket", "to_timestamp",
	}, AllBuiltinNames)
	require.Equal(t, volatility.Stable, tree.FunDefs["now"].Volatility)
	require.Equal(t, volatility.Volatile, tree.FunDefs["random"].Volatility)
	require.False(t, tree.FunDefs["date_trunc"].Volatility.IsMutable())
	require.Equal(t, 2, tree.FunDefs["time_bucket"].MaxArgs)
}

func TestDateTrunc(t *testing.T) {
	ts := tree.MakeDTimestamp(time.Date(2026, 10, 16, 13, 45, 30, 0, time.UTC)) // Friday
	for unit, expected := range map[string]string{
		"second": "2026-10-16 13:45:30",
		"minute": "2026-10-16 13:45:00",
		"hour":   "2026-10-16 13:00:00",
		"day":    "2026-10-16 00:00:00",
		"week":   "2026-10-12 00:00:00",
		"month":  "2026-10-01 00:00:00",
		"year":   "2026-01-01 00:00:00",
	} {
		res, err := builtins["date_trunc"].Fn(nil, tree.Datums{tree.NewDString(unit), ts})
		require.NoError(t, err, unit)
		require.Equal(t, expected, res.(*tree.DTimestamp).Time.Format(tree.TimestampOutputFormat), unit)
	}
	_, err := builtins["date_trunc"].Fn(nil, tree.Datums{tree.NewDString("fortnight"), ts})
	require.Error(t, err)
}

func TestTimeBucket(t *testing.T) {
	ts := time.Date(2026, 10, 16, 13, 45, 30, 0, time.UTC)
	require.Equal(t, time.Date(2026, 10, 16, 13, 45, 0, 0, time.UTC), TimeBucket(15*time.Minute, ts))
	justBefore := time.Date(2026, 10, 16, 13, 44, 59, 0, time.UTC)
	require.Equal(t, time.Date(2026, 10, 16, 13, 30, 0, 0, time.UTC), TimeBucket(15*time.Minute, justBefore))
	require.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), TimeBucket(24*time.Hour, ts))
	// Before the origin, buckets still round down.
	old := time.Date(1999, 12, 31, 23, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC), TimeBucket(24*time.Hour, old))
}

func TestNow(t *testing.T) {
	stmtTS := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	res, err := builtins["now"].Fn(fixedClock(stmtTS), nil)
	require.NoError(t, err)
	require.True(t, stmtTS.Equal(res.(*tree.DTimestamp).Time))
}
