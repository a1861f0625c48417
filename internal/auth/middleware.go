package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type ownerKey struct{}

// OwnerFromContext returns the authenticated user ID set by RequireAuth.
func OwnerFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ownerKey{}).(string)
	return id, ok
}

// WithOwner stores the authenticated user ID in the context. Exposed for
// handler tests.
func WithOwner(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, userID)
}

// RequireAuth rejects requests without a valid bearer token and puts the
// token subject in the request context.
func RequireAuth(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, "missing bearer token")
				return
			}
			userID, err := svc.ParseToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), userID)))
		})
	}
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
