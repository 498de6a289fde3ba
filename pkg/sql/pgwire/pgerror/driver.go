// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package pgerror

import (
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// fromDriver renders errors reported by a server through lib/pq or pgx,
// such as a failed catalog query. The server's message, hint and detail
// are used as is.
func fromDriver(err error) (string, bool) {
	if pgErr := (*pgconn.PgError)(nil); errors.As(err, &pgErr) {
		return formatMsgHintDetail("pq", pgErr.Message, pgErr.Hint, pgErr.Detail), true
	}
	if pqErr := (*pq.Error)(nil); errors.As(err, &pqErr) {
		return formatMsgHintDetail("pq", pqErr.Message, pqErr.Hint, pqErr.Detail), true
	}
	return "", false
}
