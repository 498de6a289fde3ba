// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package pgerror attaches PostgreSQL error codes to errors built with
// github.com/cockroachdb/errors.
package pgerror

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/hyperplan/hyperplan/pkg/sql/pgwire/pgcode"
)

// New creates an error object with a Postgres error code.
func New(code pgcode.Code, msg string) error {
	err := errors.NewWithDepth(1, msg)
	err = WithCandidateCode(err, code)
	return err
}

// Newf creates an Error with a format string.
func Newf(code pgcode.Code, format string, args ...interface{}) error {
	err := errors.NewWithDepthf(1, format, args...)
	err = WithCandidateCode(err, code)
	return err
}

// WithCandidateCode decorates the error with a candidate postgres
// error code. It is called "candidate" because the code is only used
// by GetPGCode if no other code is found deeper in the causal chain.
func WithCandidateCode(err error, code pgcode.Code) error {
	if err == nil {
		return nil
	}
	return &withCandidateCode{cause: err, code: code.String()}
}

// HasCandidateCode returns true iff the error or one of its causes has a
// candidate pg error code.
func HasCandidateCode(err error) bool {
	return errors.HasType(err, (*withCandidateCode)(nil))
}

// GetPGCode retrieves the error code for an error. If multiple codes are
// present in the causal chain, the innermost one wins. Errors without any
// code report pgcode.Uncategorized; assertion failures report
// pgcode.Internal.
func GetPGCode(err error) pgcode.Code {
	code := pgcode.Uncategorized
	for c := err; c != nil; c = errors.UnwrapOnce(c) {
		if w, ok := c.(*withCandidateCode); ok {
			code = pgcode.MakeCode(w.code)
		}
	}
	if code == pgcode.Uncategorized && errors.IsAssertionFailure(err) {
		code = pgcode.Internal
	}
	return code
}

type withCandidateCode struct {
	cause error
	code  string
}

var _ error = (*withCandidateCode)(nil)
var _ errors.SafeFormatter = (*withCandidateCode)(nil)
var _ fmt.Formatter = (*withCandidateCode)(nil)

func (w *withCandidateCode) Error() string { return w.cause.Error() }
func (w *withCandidateCode) Cause() error  { return w.cause }
func (w *withCandidateCode) Unwrap() error { return w.cause }

// Format implements the fmt.Formatter interface.
func (w *withCandidateCode) Format(s fmt.State, verb rune) { errors.FormatError(w, s, verb) }

// SafeFormatError implements errors.SafeFormatter.
func (w *withCandidateCode) SafeFormatError(p errors.Printer) (next error) {
	if p.Detail() {
		p.Printf("candidate pg code: %s", errors.Safe(w.code))
	}
	return w.cause
}
