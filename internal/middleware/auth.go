package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// userIDHeader carries the caller's identity. Authentication itself is
// handled upstream (gateway or reverse proxy); this service trusts the
// header and only verifies it is a well-formed UUID.
const userIDHeader = "X-User-ID"

type userIDKey struct{}

// RequireUser rejects requests without a valid X-User-ID header and puts
// the parsed UUID on the request context for handlers to read via
// UserIDFrom.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get(userIDHeader))
		if err != nil || id == uuid.Nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]map[string]string{
				"error": {"code": "unauthorized", "message": "missing or invalid " + userIDHeader + " header"},
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey{}, id)))
	})
}

// UserIDFrom returns the authenticated user ID placed on ctx by
// RequireUser. It returns uuid.Nil when the middleware did not run,
// which only happens on misrouted internal wiring.
func UserIDFrom(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(userIDKey{}).(uuid.UUID)
	return id
}
