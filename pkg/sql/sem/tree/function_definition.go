// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package tree

import (
	"time"

	"github.com/hyperplan/hyperplan/pkg/sql/sem/volatility"
)

// FunctionContext is the part of the evaluation context visible to builtin
// implementations.
type FunctionContext interface {
	// GetStmtTimestamp returns the timestamp of the current statement.
	GetStmtTimestamp() time.Time
}

// FunctionDefinition describes a builtin function.
type FunctionDefinition struct {
	// Name is the short name of the function.
	Name string
	// Volatility is used to decide whether calls can be folded at plan time.
	Volatility volatility.V
	// MinArgs and MaxArgs bound the number of arguments. MaxArgs < 0 means
	// unbounded.
	MinArgs, MaxArgs int
	// Info is a description of the function, which is surfaced on the CLI.
	Info string
	// Fn evaluates a call with already evaluated arguments.
	Fn func(ctx FunctionContext, args Datums) (Datum, error)
}

// FunDefs holds pre-allocated FunctionDefinition instances for every
// builtin function. Initialized by builtins.init().
var FunDefs map[string]*FunctionDefinition

// Format implements the NodeFormatter interface.
func (fd *FunctionDefinition) Format(ctx *FmtCtx) {
	ctx.WriteString(fd.Name)
}

func (fd *FunctionDefinition) String() string { return AsString(fd) }
