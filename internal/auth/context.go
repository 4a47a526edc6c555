package auth

import (
	"context"

	"github.com/scribe/scribe/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// callerContextKey is the context key for the authenticated user.
	callerContextKey contextKey = "caller"
)

// ContextWithCaller adds the authenticated user to the context.
func ContextWithCaller(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, callerContextKey, user)
}

// CallerFromContext retrieves the authenticated user from the context.
// Returns nil if not present.
func CallerFromContext(ctx context.Context) *model.User {
	user, ok := ctx.Value(callerContextKey).(*model.User)
	if !ok {
		return nil
	}
	return user
}

// MustCallerFromContext retrieves the authenticated user from the context.
// Panics if not present; use only behind the auth middleware.
func MustCallerFromContext(ctx context.Context) *model.User {
	user := CallerFromContext(ctx)
	if user == nil {
		panic("auth: caller not found in context")
	}
	return user
}
