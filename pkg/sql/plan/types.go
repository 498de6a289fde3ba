// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package plan

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/lib/pq/oid"
)

// Index is a 1-based position in the range table. The zero value means
// "no relation".
type Index uint32

// CmdType is the kind of statement a query or ModifyTable node performs.
type CmdType int

// Command types.
const (
	CmdUnknown CmdType = iota
	CmdSelect
	CmdUpdate
	CmdInsert
	CmdDelete
	CmdUtility
)

var cmdTypeName = [...]string{
	CmdUnknown: "unknown",
	CmdSelect:  "select",
	CmdUpdate:  "update",
	CmdInsert:  "insert",
	CmdDelete:  "delete",
	CmdUtility: "utility",
}

// String implements fmt.Stringer.
func (c CmdType) String() string {
	if c < 0 || int(c) >= len(cmdTypeName) {
		return "CmdType(?)"
	}
	return cmdTypeName[c]
}

// SafeValue implements redact.SafeValue.
func (CmdType) SafeValue() {}

// SafeValue implements redact.SafeValue.
func (Index) SafeValue() {}

var _ redact.SafeValue = CmdType(0)
var _ redact.SafeValue = Index(0)

// RTEKind is the kind of a range table entry.
type RTEKind int

// Range table entry kinds.
const (
	RTERelation RTEKind = iota
	RTESubquery
	RTEJoin
	RTEFunction
	RTEValues
	RTECTE
)

// RelKind is the pg_class.relkind of a relation.
type RelKind byte

// Relation kinds.
const (
	RelKindRelation    RelKind = 'r'
	RelKindPartitioned RelKind = 'p'
	RelKindView        RelKind = 'v'
	RelKindForeign     RelKind = 'f'
	RelKindMatView     RelKind = 'm'
)

// RangeTblEntry describes one relation reference of a query.
type RangeTblEntry struct {
	Kind RTEKind
	// RelID is the relation's identifier. It is invalid (zero) for entries
	// that do not reference a stored relation.
	RelID   oid.Oid
	RelKind RelKind
	// Inh is set when the relation is expanded to include its inheritance
	// children.
	Inh   bool
	Alias string
}

// IsOrdinaryRelation is true when the entry references a plain table.
func (rte *RangeTblEntry) IsOrdinaryRelation() bool {
	return rte.Kind == RTERelation && rte.RelKind == RelKindRelation
}

// RangeTable is the ordered list of relations referenced by a query.
type RangeTable []*RangeTblEntry

// Fetch returns the entry at the 1-based index rti.
func (rt RangeTable) Fetch(rti Index) (*RangeTblEntry, error) {
	if rti == 0 || int(rti) > len(rt) {
		return nil, errors.AssertionFailedf("range table index %d out of range [1, %d]", rti, len(rt))
	}
	return rt[rti-1], nil
}

// Append adds an entry and returns its index.
func (rt *RangeTable) Append(rte *RangeTblEntry) Index {
	*rt = append(*rt, rte)
	return Index(len(*rt))
}
