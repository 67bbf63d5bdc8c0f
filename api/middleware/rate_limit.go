package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cartloom/cartloom-backend/api/responses"
	"github.com/cartloom/cartloom-backend/pkg/config"
	pkgerrors "github.com/cartloom/cartloom-backend/pkg/errors"
	"github.com/cartloom/cartloom-backend/pkg/logger"
)

// RateLimiter is the fixed-window counter surface backed by Redis.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// LoginRateLimit throttles the login endpoint per client IP. The
// per-email limit is applied inside the auth controller where the
// parsed body is available.
func LoginRateLimit(limiter RateLimiter, cfg config.AuthRateLimitConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := fmt.Sprintf("login:ip:%s", clientIP(r))
			allowed, _, err := limiter.FixedWindowAllow(r.Context(), scope, int64(cfg.LoginIPLimit), cfg.LoginWindow)
			if err != nil {
				// rate limiting is protective, not load bearing
				logg.Error(r.Context(), "rate limit check failed, allowing request", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				responses.WriteError(w, r, logg, pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
