package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/delish-app/tiffin-backend/pkg/errors"
)

// ParseQueryInt reads an optional integer query parameter bounded by [min, max].
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw, ok := queryValue(r, key)
	if !ok {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, key+" must be an integer").
			WithDetails(map[string]string{key: "must be an integer"})
	}
	if value < min || value > max {
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be between %d and %d", key, min, max).
			WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseQueryString returns a trimmed, length-capped query value, or "" when absent.
func ParseQueryString(r *http.Request, key string, maxLen int) string {
	raw, _ := queryValue(r, key)
	return SanitizeString(raw, maxLen)
}

func queryValue(r *http.Request, key string) (string, bool) {
	if r == nil || r.URL == nil {
		return "", false
	}
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	return raw, raw != ""
}
