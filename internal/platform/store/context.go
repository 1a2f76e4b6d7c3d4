package store

import "context"

type (
	lineKey  struct{}
	reqIDKey struct{}
)

// WithLine attaches a production line id to the context
func WithLine(ctx context.Context, lineID string) context.Context {
	return context.WithValue(ctx, lineKey{}, lineID)
}

// LineID retrieves a production line id from context if present
func LineID(ctx context.Context) (string, bool) {
	v := ctx.Value(lineKey{})
	if v == nil {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// WithRequestID attaches a request id to the context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, reqIDKey{}, id)
}

// RequestID retrieves a request id from context if present
func RequestID(ctx context.Context) (string, bool) {
	v := ctx.Value(reqIDKey{})
	if v == nil {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}
