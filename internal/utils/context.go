// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys, gzip framing,
// HTTP response writing, HTTP client initialization, host key generation
// and validation, and session key generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// UserLoginCtxKey is the key used to store the authenticated account login
// in the context.
var UserLoginCtxKey = contextKey("userLogin")

// WithUserLogin returns a copy of ctx carrying login.
func WithUserLogin(ctx context.Context, login string) context.Context {
	return context.WithValue(ctx, UserLoginCtxKey, login)
}

// GetUserLoginFromContext retrieves the account login from the context.
//
// Returns ok == false when the value is missing, empty or has an unexpected
// type.
func GetUserLoginFromContext(ctx context.Context) (string, bool) {
	login, ok := ctx.Value(UserLoginCtxKey).(string)
	return login, ok && login != ""
}
