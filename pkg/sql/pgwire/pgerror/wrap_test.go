// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package pgerror_test

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgcode"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgerror"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	testData := []struct {
		err          error
		expectedCode pgcode.Code
	}{
		{errors.New("woo"), pgcode.System},
		{pgerror.New(pgcode.FeatureNotSupported, "woo"), pgcode.FeatureNotSupported},
		{errors.AssertionFailedf("woo"), pgcode.System},
	}

	for i, test := range testData {
		werr := pgerror.Wrap(test.err, pgcode.System, "wrapped")
		require.Equal(t, test.expectedCode, pgerror.GetPGCode(werr), "%d", i)
		require.True(t, pgerror.HasCandidateCode(werr))
		require.Equal(t, "wrapped: woo", werr.Error())
	}

	require.Nil(t, pgerror.WithCandidateCode(nil, pgcode.System))
	require.Equal(t, "woo", pgerror.Wrap(errors.New("woo"), pgcode.System, "").Error())
}

func TestGetPGCode(t *testing.T) {
	require.Equal(t, pgcode.Uncategorized, pgerror.GetPGCode(fmt.Errorf("plain")))
	require.Equal(t, pgcode.Internal, pgerror.GetPGCode(errors.AssertionFailedf("bad")))
	require.Equal(t, pgcode.UndefinedTable,
		pgerror.GetPGCode(errors.Wrap(pgerror.Newf(pgcode.UndefinedTable, "relation %d", 42), "ctx")))
}

func TestFullError(t *testing.T) {
	err := errors.WithHint(
		pgerror.New(pgcode.FeatureNotSupported, "not supported"),
		"Try something else.",
	)
	require.Equal(t, "pq: not supported\nHINT: Try something else.", pgerror.FullError(err))

	flat := pgerror.Flatten(err)
	require.Equal(t, "0A000", flat.Code)
	require.Equal(t, "Try something else.", flat.Hint)

	pqErr := &pq.Error{Message: "from server", Hint: "server hint", Detail: "server detail"}
	require.Equal(t, "pq: from server\nHINT: server hint\nDETAIL: server detail",
		pgerror.FullError(errors.Wrap(pqErr, "outer")))

	pgxErr := &pgconn.PgError{Code: "42P01", Message: `relation "_timescaledb_catalog.hypertable" does not exist`}
	require.Equal(t, `pq: relation "_timescaledb_catalog.hypertable" does not exist`,
		pgerror.FullError(errors.Wrap(pgxErr, "looking up hypertable")))

	require.Equal(t, "", pgerror.FullError(nil))
}
