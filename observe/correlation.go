package observe

import (
	"context"

	"github.com/google/uuid"
)

// CorrelationID groups one request's log lines within a single service
// instance. It is minted locally per hop and never propagated downstream;
// collision probability at 8 hex characters is acceptable for log grepping.
type CorrelationID string

// String returns the string representation of the correlation ID.
func (c CorrelationID) String() string {
	return string(c)
}

// NewCorrelationID generates a new short correlation ID.
func NewCorrelationID() CorrelationID {
	id := uuid.New()
	return CorrelationID(id.String()[:8])
}

type correlationCtxKey struct{}

// ContextWithCorrelationID returns a new context with the correlation ID attached.
func ContextWithCorrelationID(ctx context.Context, id CorrelationID) context.Context {
	return context.WithValue(ctx, correlationCtxKey{}, id)
}

// CorrelationIDFromContext extracts the correlation ID from the context.
// Returns the empty ID if none is present.
func CorrelationIDFromContext(ctx context.Context) CorrelationID {
	id, ok := ctx.Value(correlationCtxKey{}).(CorrelationID)
	if !ok {
		return ""
	}
	return id
}
