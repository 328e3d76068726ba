package middleware

import (
	"net/http"

	"github.com/delish-app/tiffin-backend/api/responses"
	"github.com/delish-app/tiffin-backend/internal/cart"
	"github.com/delish-app/tiffin-backend/pkg/logger"
	"github.com/google/uuid"
)

// CartSession resolves which cart the request operates on. Authenticated
// callers use their account cart; guests must send the session header.
func CartSession(header string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var userID *uuid.UUID
			if p, ok := PrincipalFromContext(r.Context()); ok {
				userID = &p.UserID
			}
			key, err := cart.SessionKey(userID, r.Header.Get(header))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			ctx := WithCartSession(r.Context(), key)
			if logg != nil {
				ctx = logg.WithCartSession(ctx, key)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
