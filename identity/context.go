/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package identity

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

type principalKey struct{}
type traceIDKey struct{}

// WithPrincipal attaches the acting principal to the context for the duration
// of one request.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal attached to the context, or nil.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

// WithTraceID attaches an explicit correlation id to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFrom returns the correlation id for the current request: an explicit
// id set with WithTraceID wins, then the OpenTelemetry span context's trace
// id, then "".
func TraceIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey{}).(string); ok && id != "" {
		return id
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

// EnsureTraceID returns the context's correlation id, generating one when the
// request arrived without any. Generated ids keep audit events correlatable
// even for untraced callers.
func EnsureTraceID(ctx context.Context) string {
	if id := TraceIDFrom(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
