// Package net provides utilities for working with request contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ctxKey is an unexported key type for context values
type ctxKey string

const keyLineID ctxKey = "line_id"

// WithRequest annotates context with common request scoped ids
func WithRequest(ctx context.Context, reqID, lineID string) context.Context {
	if reqID != "" {
		// set chi RequestID so chimw.GetReqID can retrieve it
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	if lineID != "" {
		ctx = context.WithValue(ctx, keyLineID, lineID)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	if v := chimw.GetReqID(ctx); v != "" {
		return v
	}
	return ""
}

// LineID returns the production line id on the context if present
func LineID(ctx context.Context) string {
	if v, ok := ctx.Value(keyLineID).(string); ok {
		return v
	}
	return ""
}
