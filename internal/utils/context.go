// Package utils holds small helpers shared by the client and the remote
// store: context keys, HMAC hashing, JSON responses, the resty client, JWT
// parsing and id generation.
package utils

import (
	"context"
)

// contextKey keeps context keys of this package from colliding with
// string keys set elsewhere.
type contextKey string

func (c contextKey) String() string {
	return string(c)
}

// UserIDCtxKey carries the authenticated user id (int64) on the server.
var UserIDCtxKey = contextKey("userID")

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDCtxKey, userID)
}

// GetUserIDFromContext returns the user id stored by [WithUserID]; ok is
// false when it is missing or of the wrong type.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(int64)
	return userID, ok
}
