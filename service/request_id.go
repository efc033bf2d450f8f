package services

import (
	"context"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// ContextWithRequestID tags ctx with id so log lines of one request can be correlated.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored in ctx, or a fresh one when none is set.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
