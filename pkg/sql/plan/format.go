// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package plan

import (
	"github.com/cockroachdb/redact"
)

// FormatTree renders the tree rooted at n, one node per line, children
// indented below their parent. User data such as expressions is marked
// as unsafe for redaction.
func FormatTree(n Node) redact.RedactableString {
	var b redact.StringBuilder
	formatTree(&b, n, 0)
	return b.RedactableString()
}

// FormatStmt renders the main plan and the subplans of stmt.
func FormatStmt(stmt *PlannedStmt) redact.RedactableString {
	var b redact.StringBuilder
	formatTree(&b, stmt.Plan, 0)
	for i, sp := range stmt.Subplans {
		b.Printf("subplan %d:\n", redact.Safe(i+1))
		formatTree(&b, sp, 1)
	}
	return b.RedactableString()
}

func formatTree(b *redact.StringBuilder, n Node, depth int) {
	for i := 0; i < depth; i++ {
		b.SafeString("  ")
	}
	if n == nil {
		b.SafeString("<nil>\n")
		return
	}
	b.Print(n)
	b.SafeRune('\n')
	for _, child := range n.ChildSlots() {
		if *child == nil {
			continue
		}
		formatTree(b, *child, depth+1)
	}
}
