// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package volatility defines the volatility classes of builtin functions.
package volatility

import "github.com/cockroachdb/errors"

// V indicates whether the result of a function is dependent *only*
// on the values of its explicit arguments, or can change due to outside
// factors (such as the statement timestamp or a random number generator).
type V int8

const (
	// Leakproof means that the function is immutable and also doesn't
	// reveal any information about its arguments other than by its return
	// value.
	Leakproof V = 1 + iota
	// Immutable means that the function always returns the same result
	// for the same arguments. It can be folded at plan time.
	Immutable
	// Stable means that the function returns the same result for the same
	// arguments within a single statement, for example now().
	Stable
	// Volatile means that the function can return different results each
	// time it is called, for example random().
	Volatile
)

// String returns the byte representation of Volatility as a string.
func (v V) String() string {
	switch v {
	case Leakproof:
		return "leakproof"
	case Immutable:
		return "immutable"
	case Stable:
		return "stable"
	case Volatile:
		return "volatile"
	default:
		return "invalid"
	}
}

// IsMutable reports whether the result cannot be determined at plan
// time, which is the case for anything that is not immutable.
func (v V) IsMutable() bool {
	return v != Leakproof && v != Immutable
}

// ToPostgres returns the postgres "provolatile" string ("i" or "s" or "v")
// and the "proleakproof" flag.
func (v V) ToPostgres() (provolatile string, proleakproof bool) {
	switch v {
	case Leakproof:
		return "i", true
	case Immutable:
		return "i", false
	case Stable:
		return "s", false
	case Volatile:
		return "v", false
	default:
		panic(errors.AssertionFailedf("invalid volatility %s", v))
	}
}

// FromPostgres returns a V that matches the postgres
// provolatile/proleakproof settings.
func FromPostgres(provolatile string, proleakproof bool) (V, error) {
	switch provolatile {
	case "i":
		if proleakproof {
			return Leakproof, nil
		}
		return Immutable, nil
	case "s":
		return Stable, nil
	case "v":
		return Volatile, nil
	default:
		return 0, errors.Newf("invalid provolatile %s", provolatile)
	}
}
