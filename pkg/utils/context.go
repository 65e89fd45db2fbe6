package utils

import (
	"context"
)

type contextKey string

const (
	CallerKey contextKey = "caller"
)

// Caller is the authenticated identity issued by the platform identity
// service, as verified by the auth middleware.
type Caller struct {
	Subject string
	Email   string
	Role    string
}

func GetCallerFromContext(ctx context.Context) (Caller, bool) {
	callerVal := ctx.Value(CallerKey)
	if callerVal == nil {
		return Caller{}, false
	}

	caller, ok := callerVal.(Caller)
	if !ok || caller.Subject == "" {
		return Caller{}, false
	}

	return caller, true
}

func SetCallerContext(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, CallerKey, caller)
}
