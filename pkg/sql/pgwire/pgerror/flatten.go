// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package pgerror

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Error is the flattened, client-facing form of an error.
type Error struct {
	Code    string
	Message string
	Hint    string
	Detail  string
}

// Flatten turns any error into a pgerror with fields populated.
// Returns a nil ptr if err was nil to start with.
func Flatten(err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    GetPGCode(err).String(),
		Message: err.Error(),
		Hint:    errors.FlattenHints(err),
		Detail:  errors.FlattenDetails(err),
	}
}

// FullError can be used when the hint and/or detail are to be tested.
func FullError(err error) string {
	if s, ok := fromDriver(err); ok {
		return s
	}
	pgErr := Flatten(err)
	if pgErr == nil {
		return ""
	}
	return formatMsgHintDetail("pq", pgErr.Message, pgErr.Hint, pgErr.Detail)
}

func formatMsgHintDetail(prefix, msg, hint, detail string) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(": ")
	b.WriteString(msg)
	if hint != "" {
		b.WriteString("\nHINT: ")
		b.WriteString(hint)
	}
	if detail != "" {
		b.WriteString("\nDETAIL: ")
		b.WriteString(detail)
	}
	return b.String()
}
