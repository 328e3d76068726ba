package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/delish-app/tiffin-backend/api/responses"
	"github.com/delish-app/tiffin-backend/pkg/config"
	pkgerrors "github.com/delish-app/tiffin-backend/pkg/errors"
	"github.com/delish-app/tiffin-backend/pkg/logger"
)

// WindowLimiter counts hits per scope inside a fixed window. *redis.Client
// implements it with INCR + EXPIRE.
type WindowLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimitRule throttles one endpoint per client IP and per submitted email.
// A zero limit disables that dimension.
type RateLimitRule struct {
	Name     string
	Window   time.Duration
	PerIP    int
	PerEmail int
}

// LoginRule and RegisterRule read their limits from the auth rate limit config.
func LoginRule(cfg config.AuthRateLimitConfig) RateLimitRule {
	return RateLimitRule{Name: "login", Window: cfg.LoginWindow, PerIP: cfg.LoginIPLimit, PerEmail: cfg.LoginEmailLimit}
}

func RegisterRule(cfg config.AuthRateLimitConfig) RateLimitRule {
	return RateLimitRule{Name: "register", Window: cfg.RegisterWindow, PerIP: cfg.RegisterIPLimit, PerEmail: cfg.RegisterEmailLimit}
}

func (r RateLimitRule) active() bool {
	return r.Window > 0 && (r.PerIP > 0 || r.PerEmail > 0)
}

// RateLimit rejects requests over the rule with 429 and a Retry-After header.
// Limiter failures surface as 503 rather than letting traffic through.
func RateLimit(rule RateLimitRule, limiter WindowLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	name := strings.ToLower(strings.TrimSpace(rule.Name))
	if name == "" {
		name = "auth"
	}
	return func(next http.Handler) http.Handler {
		if !rule.active() || limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			checks := make([]limitCheck, 0, 2)
			if rule.PerIP > 0 {
				if ip := clientIP(r); ip != "" {
					checks = append(checks, limitCheck{dimension: "ip", scope: name + ":ip:" + ip, limit: rule.PerIP})
				}
			}
			if rule.PerEmail > 0 {
				email, err := peekEmail(r)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable request body"))
					return
				}
				if email != "" {
					checks = append(checks, limitCheck{dimension: "email", scope: name + ":email:" + digest(email), limit: rule.PerEmail})
				}
			}

			for _, c := range checks {
				allowed, count, err := limiter.FixedWindowAllow(ctx, c.scope, int64(c.limit), rule.Window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiter unavailable"))
					return
				}
				if !allowed {
					if logg != nil {
						logg.Warn(logg.WithFields(ctx, map[string]any{
							"rule":      name,
							"dimension": c.dimension,
							"attempts":  count,
							"limit":     c.limit,
						}), "rate_limit.blocked")
					}
					w.Header().Set("Retry-After", strconv.Itoa(int(rule.Window.Seconds())))
					responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

type limitCheck struct {
	dimension string
	scope     string
	limit     int
}

// peekEmail reads the "email" field of a JSON body and restores the body for
// the next handler. Non-JSON bodies yield "".
func peekEmail(r *http.Request) (string, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return "", nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return "", err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var payload struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return "", nil
	}
	return strings.ToLower(strings.TrimSpace(payload.Email)), nil
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return host
}

// digest keeps raw emails out of Redis keys.
func digest(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:12])
}
