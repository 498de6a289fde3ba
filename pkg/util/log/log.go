// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package log implements leveled, context-aware logging. Messages are
// prefixed with the logging tags attached to the context (see
// github.com/cockroachdb/logtags) and are formatted with
// github.com/cockroachdb/redact so that unsafe values can be told apart from
// safe ones. The output sink is glog.
package log

import (
	"context"
	"sync/atomic"

	"github.com/golang/glog"
	"github.com/opentracing/opentracing-go"
)

// Severity identifies the sort of log: info, warning etc.
type Severity int32

// Severities, in increasing order.
const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityFatal:
		return "FATAL"
	}
	return "UNKNOWN"
}

var verbosity int32

// SetVerbosity sets the global verbosity level used by V and VEventf.
// It returns the previous level.
func SetVerbosity(level int32) int32 {
	return atomic.SwapInt32(&verbosity, level)
}

// V returns true if the logging verbosity is set to the specified level or
// higher.
func V(level int32) bool {
	return atomic.LoadInt32(&verbosity) >= level
}

// Infof logs to the INFO log.
func Infof(ctx context.Context, format string, args ...interface{}) {
	logDepth(ctx, 1, SeverityInfo, format, args)
}

// Warningf logs to the WARNING and INFO logs.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	logDepth(ctx, 1, SeverityWarning, format, args)
}

// Errorf logs to the ERROR, WARNING, and INFO logs.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	logDepth(ctx, 1, SeverityError, format, args)
}

// Fatalf logs to the FATAL, ERROR, WARNING, and INFO logs, then exits.
func Fatalf(ctx context.Context, format string, args ...interface{}) {
	logDepth(ctx, 1, SeverityFatal, format, args)
}

// VEventf either logs a message to the INFO log (if the verbosity is at least
// level), or records it as an event on the span in the context, or both.
func VEventf(ctx context.Context, level int32, format string, args ...interface{}) {
	vEventf(ctx, 1, level, format, args)
}

// Event records the message as an event on the span in the context, if any.
// It never writes to the log output.
func Event(ctx context.Context, msg string) {
	if sp := opentracing.SpanFromContext(ctx); sp != nil {
		sp.LogKV("event", msg)
	}
}

func vEventf(ctx context.Context, depth int, level int32, format string, args []interface{}) {
	sp := opentracing.SpanFromContext(ctx)
	if !V(level) && sp == nil {
		return
	}
	msg := makeMessage(ctx, format, args)
	if sp != nil {
		sp.LogKV("event", msg.StripMarkers())
	}
	if V(level) {
		output(depth+1, SeverityInfo, msg.StripMarkers())
	}
}

func logDepth(ctx context.Context, depth int, sev Severity, format string, args []interface{}) {
	msg := makeMessage(ctx, format, args)
	if sp := opentracing.SpanFromContext(ctx); sp != nil && sev >= SeverityWarning {
		sp.LogKV("event", msg.StripMarkers(), "severity", sev.String())
	}
	output(depth+1, sev, renderForOutput(msg))
}

func output(depth int, sev Severity, msg string) {
	switch sev {
	case SeverityInfo:
		glog.InfoDepth(depth+1, msg)
	case SeverityWarning:
		glog.WarningDepth(depth+1, msg)
	case SeverityError:
		glog.ErrorDepth(depth+1, msg)
	default:
		glog.FatalDepth(depth+1, msg)
	}
}
