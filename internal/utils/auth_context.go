package utils

import "context"

type authenticatedUserKey struct{}

// WithAuthenticatedUser adds an authenticated user to the context
func WithAuthenticatedUser(ctx context.Context, user *AuthenticatedUser) context.Context {
	return context.WithValue(ctx, authenticatedUserKey{}, user)
}

// GetAuthenticatedUser returns the user stored in the context, or nil
func GetAuthenticatedUser(ctx context.Context) *AuthenticatedUser {
	user, _ := ctx.Value(authenticatedUserKey{}).(*AuthenticatedUser)
	return user
}
