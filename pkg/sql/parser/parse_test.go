// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package parser_test

import (
	"testing"

	"github.com/hyperplan/hyperplan/pkg/sql/parser"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgcode"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgerror"
	_ "github.com/hyperplan/hyperplan/pkg/sql/sem/builtins"
	"github.com/hyperplan/hyperplan/pkg/sql/sem/tree"
	"github.com/stretchr/testify/require"
)

func TestParseExpr(t *testing.T) {
	testData := []struct {
		sql      string
		expected string
		mutable  bool
	}{
		{`a = 1`, `a = 1`, false},
		{`time > now() - interval '1 hour'`, `time > now() - '1h0m0s'::INTERVAL`, true},
		{`time > now() - '1 day'::interval`, `time > now() - '24h0m0s'::INTERVAL`, true},
		{`"Time" >= '2026-01-01'::timestamp`, `Time >= '2026-01-01 00:00:00'::TIMESTAMP`, false},
		{`a = 1 AND (b < -2 OR NOT c)`, `(a = 1) AND ((b < -2) OR (NOT c))`, false},
		{`date_trunc('hour', time)`, `date_trunc('hour', time)`, false},
		{`time_bucket(INTERVAL '5 minutes', time) <> random()`, `time_bucket('5m0s'::INTERVAL, time) != random()`, true},
		{`x IS_NOT_A_KEYWORD`, ``, false},
	}
	for _, d := range testData {
		t.Run(d.sql, func(t *testing.T) {
			e, err := parser.ParseExpr(d.sql)
			if d.expected == "" {
				require.Error(t, err)
				require.Equal(t, pgcode.Syntax, pgerror.GetPGCode(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, d.expected, tree.AsString(e))
			require.Equal(t, d.mutable, tree.ContainsMutableFunctions(e))
		})
	}
}

func TestParseErrors(t *testing.T) {
	testData := []struct {
		sql  string
		code pgcode.Code
	}{
		{`'unterminated`, pgcode.Syntax},
		{`a = `, pgcode.Syntax},
		{`(a = 1`, pgcode.Syntax},
		{`frobnicate(a)`, pgcode.UndefinedFunction},
		{`now(1)`, pgcode.UndefinedFunction},
		{`'soon'::timestamp`, pgcode.InvalidParameterValue},
		{`1::interval`, pgcode.FeatureNotSupported},
		{`a # b`, pgcode.Syntax},
	}
	for _, d := range testData {
		_, err := parser.ParseExpr(d.sql)
		require.Error(t, err, d.sql)
		require.Equal(t, d.code, pgerror.GetPGCode(err), "%s: %v", d.sql, err)
	}
}
