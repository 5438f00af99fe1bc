package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/tubeboost/storefront-backend/pkg/logger"
)

const sessionIDHeader = "X-Session-ID"

type sessionCtxKey struct{}

// Session resolves the anonymous storefront session. Carts and payment
// flows are keyed on this id; a browser without one gets a fresh id minted
// and echoed back so the client can persist it.
func Session(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := r.Header.Get(sessionIDHeader)
			if sessionID == "" || !isValidSessionID(sessionID) {
				sessionID = uuid.NewString()
			}

			w.Header().Set(sessionIDHeader, sessionID)

			ctx := context.WithValue(r.Context(), sessionCtxKey{}, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromContext returns the session id resolved by Session, or "".
func SessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionCtxKey{}).(string); ok {
		return id
	}
	return ""
}

// Session ids are minted as UUIDs; anything else is treated as untrusted
// input and replaced rather than propagated into redis keys.
func isValidSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
