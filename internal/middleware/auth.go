package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/resto-pos/api/internal/auth"
	"github.com/resto-pos/api/internal/database"
)

type contextKey string

const claimsKey contextKey = "claims"

// TabletSessionStore checks that a tablet token is still honored.
type TabletSessionStore interface {
	GetTabletSession(ctx context.Context, id uuid.UUID) (database.GetTabletSessionRow, error)
}

// Authenticate validates the bearer token and puts the claims on the request
// context. Tablet tokens carry a session version; a version bumped since the
// token was issued, or a blocked or deactivated tablet, is rejected.
func Authenticate(jwtSecret string, sessions TabletSessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing authorization header"})
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid authorization format"})
				return
			}

			claims, err := auth.ValidateToken(jwtSecret, parts[1])
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
				return
			}

			if claims.TabletID != nil {
				session, err := sessions.GetTabletSession(r.Context(), *claims.TabletID)
				if err != nil {
					// Fail closed: a tablet we cannot verify does not get in.
					writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "tablet session not recognized"})
					return
				}
				if session.Blocked || !session.Active || session.SessionVersion != claims.SessionVersion {
					writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "tablet session revoked"})
					return
				}
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows the listed roles through. A superuser passes every
// check.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
				return
			}

			if claims.Superuser {
				next.ServeHTTP(w, r)
				return
			}

			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeJSON(w, http.StatusForbidden, map[string]string{"error": "insufficient permissions"})
		})
	}
}

func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
