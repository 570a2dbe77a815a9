package correlationid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header and message header key carrying the correlation ID.
const Header = "X-Correlation-ID"

type ctxKey struct{}

// NewContext returns a new context carrying the given correlation ID.
func NewContext(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, correlationID)
}

// FromContext extracts the correlation ID from the context.
func FromContext(ctx context.Context) (string, bool) {
	correlationID, ok := ctx.Value(ctxKey{}).(string)
	return correlationID, ok
}

// Generate returns a new random correlation ID.
func Generate() string {
	return uuid.NewString()
}
