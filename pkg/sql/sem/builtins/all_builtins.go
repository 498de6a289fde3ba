// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package builtins registers the builtin functions understood by the
// expression evaluator.
package builtins

import (
	"math/rand"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/volatility"
)

// AllBuiltinNames is an array containing all the built-in function
// names, sorted in alphabetical order. This can be used for a
// deterministic walk through the Builtins map.
var AllBuiltinNames []string

// timeBucketOrigin is the default origin for bucketing: a Monday, so that
// week-wide buckets start on Mondays.
var timeBucketOrigin = time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC)

var builtins = map[string]*tree.FunctionDefinition{
	"now": {
		Volatility: volatility.Stable,
		Info:       "Returns the time the current statement started.",
		Fn: func(ctx tree.FunctionContext, _ tree.Datums) (tree.Datum, error) {
			return tree.MakeDTimestamp(ctx.GetStmtTimestamp()), nil
		},
	},
	"clock_timestamp": {
		Volatility: volatility.Volatile,
		Info:       "Returns the current system time.",
		Fn: func(_ tree.FunctionContext, _ tree.Datums) (tree.Datum, error) {
			return tree.MakeDTimestamp(time.Now()), nil
		},
	},
	"random": {
		Volatility: volatility.Volatile,
		Info:       "Returns a random integer.",
		Fn: func(_ tree.FunctionContext, _ tree.Datums) (tree.Datum, error) {
			return tree.NewDInt(tree.DInt(rand.Int63())), nil
		},
	},
	"abs": {
		Volatility: volatility.Leakproof,
		MinArgs:    1,
		MaxArgs:    1,
		Info:       "Calculates the absolute value of `val`.",
		Fn: func(_ tree.FunctionContext, args tree.Datums) (tree.Datum, error) {
			i, err := mustBeDInt(args[0])
			if err != nil {
				return nil, err
			}
			if i < 0 {
				i = -i
			}
			return tree.NewDInt(i), nil
		},
	},
	"to_timestamp": {
		Volatility: volatility.Immutable,
		MinArgs:    1,
		MaxArgs:    1,
		Info:       "Converts `seconds` since the Unix epoch to a timestamp.",
		Fn: func(_ tree.FunctionContext, args tree.Datums) (tree.Datum, error) {
			i, err := mustBeDInt(args[0])
			if err != nil {
				return nil, err
			}
			return tree.MakeDTimestamp(time.Unix(int64(i), 0)), nil
		},
	},
	"date_trunc": {
		Volatility: volatility.Immutable,
		MinArgs:    2,
		MaxArgs:    2,
		Info:       "Truncates `input` to precision `element`.",
		Fn: func(_ tree.FunctionContext, args tree.Datums) (tree.Datum, error) {
			unit, ok := args[0].(*tree.DString)
			if !ok {
				return nil, errors.Newf("date_trunc(): unit must be a string, got %s", args[0].ResolvedType())
			}
			ts, err := mustBeDTimestamp(args[1])
			if err != nil {
				return nil, err
			}
			t, err := truncateTimestamp(ts.Time, string(*unit))
			if err != nil {
				return nil, err
			}
			return tree.MakeDTimestamp(t), nil
		},
	},
	"time_bucket": {
		Volatility: volatility.Immutable,
		MinArgs:    2,
		MaxArgs:    2,
		Info:       "Buckets `ts` into intervals of `bucket_width`.",
		Fn: func(_ tree.FunctionContext, args tree.Datums) (tree.Datum, error) {
			width, ok := args[0].(*tree.DInterval)
			if !ok {
				return nil, errors.Newf("time_bucket(): width must be an interval, got %s", args[0].ResolvedType())
			}
			if width.Duration <= 0 {
				return nil, errors.New("time_bucket(): width must be positive")
			}
			ts, err := mustBeDTimestamp(args[1])
			if err != nil {
				return nil, err
			}
			return tree.MakeDTimestamp(TimeBucket(width.Duration, ts.Time)), nil
		},
	},
}

func init() {
	tree.FunDefs = make(map[string]*tree.FunctionDefinition, len(builtins))
	AllBuiltinNames = make([]string, 0, len(builtins))
	for name, def := range builtins {
		def.Name = name
		tree.FunDefs[name] = def
		AllBuiltinNames = append(AllBuiltinNames, name)
	}
	sort.Strings(AllBuiltinNames)
}

// TimeBucket returns the start of the width-wide bucket containing t.
func TimeBucket(width time.Duration, t time.Time) time.Time {
	offset := t.Sub(timeBucketOrigin)
	bucket := offset / width
	if offset < 0 && offset%width != 0 {
		bucket--
	}
	return timeBucketOrigin.Add(bucket * width)
}

func truncateTimestamp(t time.Time, unit string) (time.Time, error) {
	t = t.UTC()
	year, month, day := t.Date()
	switch unit {
	case "microsecond", "microseconds":
		return t.Truncate(time.Microsecond), nil
	case "millisecond", "milliseconds":
		return t.Truncate(time.Millisecond), nil
	case "second", "seconds":
		return t.Truncate(time.Second), nil
	case "minute", "minutes":
		return t.Truncate(time.Minute), nil
	case "hour", "hours":
		return time.Date(year, month, day, t.Hour(), 0, 0, 0, time.UTC), nil
	case "day", "days":
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
	case "week", "weeks":
		// Weeks start on Monday.
		daysSinceMonday := (int(t.Weekday()) + 6) % 7
		return time.Date(year, month, day-daysSinceMonday, 0, 0, 0, 0, time.UTC), nil
	case "month", "months":
		return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), nil
	case "year", "years":
		return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, errors.Newf("date_trunc(): unsupported timespan: %s", unit)
}

func mustBeDInt(d tree.Datum) (tree.DInt, error) {
	i, ok := d.(*tree.DInt)
	if !ok {
		return 0, errors.Newf("expected int, found %s", d.ResolvedType())
	}
	return *i, nil
}

func mustBeDTimestamp(d tree.Datum) (*tree.DTimestamp, error) {
	ts, ok := d.(*tree.DTimestamp)
	if !ok {
		return nil, errors.Newf("expected timestamp, found %s", d.ResolvedType())
	}
	return ts, nil
}
