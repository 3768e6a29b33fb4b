package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SessionIDKey tags request spans with the portal session they belong to.
const SessionIDKey = attribute.Key("portal.session_id")

// GetTraceID extracts the trace ID from context if present
func GetTraceID(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}

// TagSession records the browser session on the request span and returns
// the span's trace ID, empty when the request is not traced.
func TagSession(ctx context.Context, sessionID string) string {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return ""
	}
	span.SetAttributes(SessionIDKey.String(sessionID))
	return span.SpanContext().TraceID().String()
}
