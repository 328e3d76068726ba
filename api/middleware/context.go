package middleware

import (
	"context"

	"github.com/delish-app/tiffin-backend/pkg/auth"
	"github.com/google/uuid"
)

type (
	principalKey   struct{}
	cartSessionKey struct{}
)

// WithPrincipal records the authenticated caller. Auth is the only producer
// outside of tests.
func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the authenticated caller, if any.
func PrincipalFromContext(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(auth.Principal)
	if !ok || p.UserID == uuid.Nil {
		return auth.Principal{}, false
	}
	return p, true
}

func WithCartSession(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, cartSessionKey{}, key)
}

// CartSessionFromContext returns the storage key of the caller's cart, "user:<id>"
// or "guest:<header>", or "" before CartSession ran.
func CartSessionFromContext(ctx context.Context) string {
	key, _ := ctx.Value(cartSessionKey{}).(string)
	return key
}
