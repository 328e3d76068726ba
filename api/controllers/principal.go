package controllers

import (
	"net/http"

	"github.com/delish-app/tiffin-backend/api/middleware"
	"github.com/delish-app/tiffin-backend/pkg/auth"
	pkgerrors "github.com/delish-app/tiffin-backend/pkg/errors"
)

func requirePrincipal(r *http.Request) (auth.Principal, error) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return auth.Principal{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return p, nil
}

// optionalPrincipal returns nil for anonymous callers.
func optionalPrincipal(r *http.Request) *auth.Principal {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return nil
	}
	return &p
}
