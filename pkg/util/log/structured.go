// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

package log

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
)

var redactableLogs int32

// SetRedactable configures whether log output keeps redaction markers
// around unsafe values. It returns the previous setting.
func SetRedactable(enabled bool) bool {
	var v int32
	if enabled {
		v = 1
	}
	return atomic.SwapInt32(&redactableLogs, v) == 1
}

// FormatWithContextTags formats the string and prepends the context
// tags.
//
// Redaction markers are *not* inserted. The resulting
// string is generally unsafe for reporting.
func FormatWithContextTags(ctx context.Context, format string, args ...interface{}) string {
	var buf strings.Builder
	formatTags(ctx, &buf)
	buf.WriteString(redact.Sprintf(format, args...).StripMarkers())
	return buf.String()
}

// makeMessage renders the context tags followed by the formatted message.
// Values not marked safe are enclosed in redaction markers.
func makeMessage(ctx context.Context, format string, args []interface{}) redact.RedactableString {
	var buf redact.StringBuilder
	if tags := logtags.FromContext(ctx); tags != nil {
		buf.SafeRune('[')
		buf.Print(tags)
		buf.SafeString("] ")
	}
	buf.Printf(format, args...)
	return buf.RedactableString()
}

func renderForOutput(msg redact.RedactableString) string {
	if atomic.LoadInt32(&redactableLogs) == 1 {
		return string(msg)
	}
	return msg.StripMarkers()
}

func formatTags(ctx context.Context, buf *strings.Builder) {
	tags := logtags.FromContext(ctx)
	if tags == nil {
		return
	}
	buf.WriteByte('[')
	buf.WriteString(tags.String())
	buf.WriteString("] ")
}
