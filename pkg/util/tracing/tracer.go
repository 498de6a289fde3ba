// Copyright 2026 The Hyperplan Authors.
//
// Use of this software is governed by the Apache License, Version 2.0,
// included in the /LICENSE file.

// Package tracing opens opentracing spans for the planner entry points.
// Spans are only created below an existing span, so untraced callers pay
// nothing.
package tracing

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
)

// ChildSpan starts a span named op under the span carried by ctx. Without a
// parent span it returns ctx unchanged and a nil span.
func ChildSpan(ctx context.Context, op string) (context.Context, opentracing.Span) {
	parent := opentracing.SpanFromContext(ctx)
	if parent == nil {
		return ctx, nil
	}
	sp := parent.Tracer().StartSpan(op, opentracing.ChildOf(parent.Context()))
	return opentracing.ContextWithSpan(ctx, sp), sp
}

// FinishSpan finishes sp. A nil span is ignored.
func FinishSpan(sp opentracing.Span) {
	if sp == nil {
		return
	}
	sp.Finish()
}

// RootSpan makes sure ctx carries a span, starting one named op on tracer
// when it does not. The returned func finishes the span it started, if any.
func RootSpan(
	ctx context.Context, tracer opentracing.Tracer, op string,
) (context.Context, func()) {
	if opentracing.SpanFromContext(ctx) != nil {
		return ctx, func() {}
	}
	sp := tracer.StartSpan(op)
	return opentracing.ContextWithSpan(ctx, sp), sp.Finish
}
