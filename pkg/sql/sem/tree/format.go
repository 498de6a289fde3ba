// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package tree

import (
	"bytes"
	"fmt"
)

// FmtFlags carries options for the pretty-printer.
type FmtFlags int

const (
	// FmtSimple instructs the pretty-printer to produce a straightforward
	// representation.
	FmtSimple FmtFlags = 0
	// FmtShowVarNo prefixes column references with their range table index.
	FmtShowVarNo FmtFlags = 1 << iota
)

// NodeFormatter is implemented by nodes that can be pretty-printed.
type NodeFormatter interface {
	// Format performs pretty-printing towards a bytes buffer.
	Format(ctx *FmtCtx)
}

// FmtCtx is suitable for passing to Format() methods.
type FmtCtx struct {
	bytes.Buffer
	flags FmtFlags
}

// NewFmtCtx creates a FmtCtx.
func NewFmtCtx(f FmtFlags) *FmtCtx {
	return &FmtCtx{flags: f}
}

// HasFlags returns true iff the given flags are set in the formatter
// context.
func (ctx *FmtCtx) HasFlags(f FmtFlags) bool {
	return ctx.flags&f == f
}

// Printf calls fmt.Fprintf on the linked bytes.Buffer.
func (ctx *FmtCtx) Printf(f string, args ...interface{}) {
	fmt.Fprintf(&ctx.Buffer, f, args...)
}

// FormatNode recurses into a node for pretty-printing.
func (ctx *FmtCtx) FormatNode(n NodeFormatter) {
	n.Format(ctx)
}

// AsStringWithFlags pretty prints a node to a string given specific flags.
func AsStringWithFlags(n NodeFormatter, fl FmtFlags) string {
	ctx := NewFmtCtx(fl)
	ctx.FormatNode(n)
	return ctx.String()
}

// AsString pretty prints a node to a string.
func AsString(n NodeFormatter) string {
	return AsStringWithFlags(n, FmtSimple)
}

func (node *Var) String() string            { return AsString(node) }
func (node *FuncExpr) String() string       { return AsString(node) }
func (node *ComparisonExpr) String() string { return AsString(node) }
func (node *BinaryExpr) String() string     { return AsString(node) }
func (node *AndExpr) String() string        { return AsString(node) }
func (node *OrExpr) String() string         { return AsString(node) }
func (node *NotExpr) String() string        { return AsString(node) }
