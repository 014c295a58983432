// Package auth issues and checks the session tokens of signed-in users.
package auth

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identity is the signed-in user carried by a request.
type Identity struct {
	UserID primitive.ObjectID `json:"id"`
	Email  string             `json:"email"`
	Pseudo string             `json:"pseudo"`
}

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by the middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok && !id.UserID.IsZero()
}
