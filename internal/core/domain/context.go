package domain

import "context"

type requestIDContextKey struct{}

// WithRequestID attaches the inbound request id so pipeline logs and audit
// events can be correlated with the HTTP access log.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	requestID, _ := ctx.Value(requestIDContextKey{}).(string)
	return requestID
}
