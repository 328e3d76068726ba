package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func preflight(origin string) *http.Request {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/checkout", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Idempotency-Key, X-Cart-Session")
	return req
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	handler := CORS([]string{"https://app.delish.test"}, "X-Cart-Session")(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, preflight("https://app.delish.test"))
	assert.Equal(t, "https://app.delish.test", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, preflight("https://evil.test"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWithoutOriginsIsSameOriginOnly(t *testing.T) {
	rec := httptest.NewRecorder()
	CORS(nil, "X-Cart-Session")(okHandler()).ServeHTTP(rec, preflight("https://evil.test"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
