package types

import "context"

type contextKey string

// clientNameKey carries the impersonated client name ("web", "tv", ...)
// through request paths so transports and event sinks can label work.
const clientNameKey contextKey = "clientName"

// WithClientName returns a context annotated with the active client name.
func WithClientName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, clientNameKey, name)
}

// ClientNameFromContext reports the active client name, if one was set.
func ClientNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(clientNameKey).(string)
	return name, ok
}
