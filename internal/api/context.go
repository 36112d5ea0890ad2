package api

import (
	"context"
	"errors"
)

// tokenContextKey is the context key for the caller's bearer token.
type tokenContextKey struct{}

// ErrNoTokenInContext indicates no token was found in the context.
var ErrNoTokenInContext = errors.New("no token in context")

// WithToken returns a new context carrying the caller's bearer token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext extracts the caller's bearer token.
// Returns ErrNoTokenInContext if not present or empty.
func TokenFromContext(ctx context.Context) (string, error) {
	token, ok := ctx.Value(tokenContextKey{}).(string)
	if !ok || token == "" {
		return "", ErrNoTokenInContext
	}
	return token, nil
}
