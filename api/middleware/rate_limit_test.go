package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type stubLimiter struct {
	allowed bool
	err     error
	scopes  []string
}

func (s *stubLimiter) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	s.scopes = append(s.scopes, scope)
	if s.err != nil {
		return false, 0, s.err
	}
	return s.allowed, 1, nil
}

func runLimited(t *testing.T, limiter *stubLimiter) *httptest.ResponseRecorder {
	t.Helper()
	policy := NewRateLimitPolicy("payment", time.Minute, 5)
	handler := RateLimit(policy, limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	return w
}

func TestRateLimitAllows(t *testing.T) {
	w := runLimited(t, &stubLimiter{allowed: true})
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through, got %d", w.Code)
	}
}

func TestRateLimitBlocks(t *testing.T) {
	w := runLimited(t, &stubLimiter{allowed: false})
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	w := runLimited(t, &stubLimiter{err: errors.New("redis down")})
	if w.Code != http.StatusNoContent {
		t.Fatalf("limiter outage must fail open, got %d", w.Code)
	}
}

func TestRateLimitPolicyDefaults(t *testing.T) {
	policy := NewRateLimitPolicy("payment", 0, 0)
	if policy.Window != time.Minute || policy.Limit != 60 {
		t.Fatalf("unexpected defaults %+v", policy)
	}
}
