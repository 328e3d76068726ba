package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
)

const corsPreflightCache = 5 * time.Minute

// CORS applies the browser origin policy. Origins come from config; the cart
// session header is allowed so guest carts work cross-origin, and the
// idempotency, replay and token headers are readable by the frontend. No
// origins means same-origin only; the cors package would read it as "*".
func CORS(origins []string, cartHeader string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	allowed := []string{"Accept", "Authorization", "Content-Type", idempotencyHeader, requestIDHeader}
	if cartHeader != "" {
		allowed = append(allowed, cartHeader)
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   allowed,
		ExposedHeaders:   []string{requestIDHeader, replayedHeader, "X-Tiffin-Token", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           int(corsPreflightCache.Seconds()),
	})
}
