// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package pgcode defines the PostgreSQL error codes (SQLSTATE) used by the
// planner.
package pgcode

// Code is a wrapper around a string to ensure that pgcodes are used in
// different pgerror functions by avoiding accidental string input.
type Code struct {
	code string
}

// MakeCode converts a string into a Code.
func MakeCode(s string) Code {
	return Code{code: s}
}

// String returns the underlying pg code string.
func (c Code) String() string {
	return c.code
}

// PG error codes from:
// http://www.postgresql.org/docs/current/static/errcodes-appendix.html.
var (
	// Section: Class 0A - Feature Not Supported
	FeatureNotSupported = MakeCode("0A000")
	// Section: Class 22 - Data Exception
	DataException         = MakeCode("22000")
	InvalidParameterValue = MakeCode("22023")
	// Section: Class 23 - Integrity Constraint Violation
	CheckViolation = MakeCode("23514")
	// Section: Class 42 - Syntax Error or Access Rule Violation
	Syntax            = MakeCode("42601")
	DatatypeMismatch  = MakeCode("42804")
	UndefinedTable    = MakeCode("42P01")
	DuplicateRelation = MakeCode("42P07")
	UndefinedColumn   = MakeCode("42703")
	UndefinedFunction = MakeCode("42883")
	// Section: Class 58 - System Error
	System = MakeCode("58000")
	// Section: Class XX - Internal Error
	Internal = MakeCode("XX000")

	// Uncategorized is used for errors that flow out to a client
	// when there's no code known yet.
	Uncategorized = MakeCode("XXUUU")
)
