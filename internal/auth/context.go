package auth

import (
	"context"

	"github.com/inkgen/inkgen/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// identityKey is the context key for storing the authenticated Identity.
const identityKey contextKey = "identity"

// ContextWithIdentity adds the authenticated Identity to the context.
// The identity is stored by value; nothing downstream can mutate it.
func ContextWithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the Identity from the context.
// The second return value reports whether one was present.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(model.Identity)
	return id, ok
}

// MustIdentityFromContext retrieves the Identity from the context.
// Panics if not present (use only when auth middleware has run).
func MustIdentityFromContext(ctx context.Context) model.Identity {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		panic("identity not found in context - ensure auth middleware is applied")
	}
	return id
}
