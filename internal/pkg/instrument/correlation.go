package instrument

import "context"

type correlationKey struct{}

// invalidCorrelationID is returned when the context carries no correlation ID.
const invalidCorrelationID = "[invalid_chain_id]"

// SetCorrelationID returns a copy of ctx carrying cID.
func SetCorrelationID(ctx context.Context, cID string) context.Context {
	return context.WithValue(ctx, correlationKey{}, cID)
}

// GetCorrelationID returns the correlation ID stored in ctx, or "[invalid_chain_id]".
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return invalidCorrelationID
	}

	if cID, ok := ctx.Value(correlationKey{}).(string); ok && cID != "" {
		return cID
	}

	return invalidCorrelationID
}
