// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package plan

// WalkFn is called for every node reachable from the walk root. It receives
// the slot holding the node and may overwrite it to splice in a replacement.
type WalkFn func(slot *Node) error

// Walk calls fn on every node reachable from *slot, including the root, in
// pre-order. Nil slots are skipped.
//
// After fn returns, the walk continues into the children of the node that
// was in the slot before fn ran. A replacement that wraps the original node
// is therefore neither visited itself nor offered to fn a second time, while
// the original node's children are still visited. Children that fn installed
// into the original node (for example wrappers around its subplans) are
// visited, since they now occupy the original node's slots.
//
// An error returned by fn stops the walk and is returned unchanged.
func Walk(slot *Node, fn WalkFn) error {
	if slot == nil || *slot == nil {
		return nil
	}
	orig := *slot
	if err := fn(slot); err != nil {
		return err
	}
	for _, child := range orig.ChildSlots() {
		if err := Walk(child, fn); err != nil {
			return err
		}
	}
	return nil
}

// WalkStmt walks the main plan of stmt and each of its subplans.
func WalkStmt(stmt *PlannedStmt, fn WalkFn) error {
	if err := Walk(&stmt.Plan, fn); err != nil {
		return err
	}
	for i := range stmt.Subplans {
		if err := Walk(&stmt.Subplans[i], fn); err != nil {
			return err
		}
	}
	return nil
}
