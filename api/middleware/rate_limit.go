package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tubeboost/storefront-backend/api/responses"
	pkgerrors "github.com/tubeboost/storefront-backend/pkg/errors"
	"github.com/tubeboost/storefront-backend/pkg/logger"
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimitPolicy is one named fixed-window limit.
type RateLimitPolicy struct {
	Name   string
	Window time.Duration
	Limit  int64
}

// NewRateLimitPolicy builds a policy, falling back to permissive defaults
// when config leaves the knobs unset.
func NewRateLimitPolicy(name string, window time.Duration, limit int) RateLimitPolicy {
	if window <= 0 {
		window = time.Minute
	}
	if limit <= 0 {
		limit = 60
	}
	return RateLimitPolicy{Name: name, Window: window, Limit: int64(limit)}
}

// RateLimit applies a per-session fixed-window limit. A limiter outage
// fails open: blocking checkout on a redis blip costs more than letting a
// few extra requests through.
func RateLimit(policy RateLimitPolicy, limiter rateLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			scope := fmt.Sprintf("%s:%s", policy.Name, SessionIDFromContext(ctx))
			allowed, count, err := limiter.FixedWindowAllow(ctx, scope, policy.Limit, policy.Window)
			if err != nil {
				if logg != nil {
					logg.Error(ctx, "rate limiter unavailable, failing open", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				if logg != nil {
					lctx := logg.WithFields(ctx, map[string]any{"policy": policy.Name, "count": count})
					logg.Warn(lctx, "rate limit exceeded")
				}
				responses.WriteError(ctx, logg, w,
					pkgerrors.New(pkgerrors.CodeRateLimit, fmt.Sprintf("too many %s attempts, slow down", policy.Name)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
