// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/staffhub/staffhub/internal/app/system/httperr"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-principal helper                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// Principal is what the verified token claims decode to and what we inject
// into r.Context(). It is a snapshot of identity at token issuance; handlers
// must not treat it as fresh user data.
type Principal struct {
	ID         string // user ObjectID hex
	EmployeeID string
	Name       string
	Role       string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the request's principal & "found?" flag.
func CurrentUser(r *http.Request) (*Principal, bool) {
	p, ok := r.Context().Value(currentUserKey).(*Principal)
	return p, ok
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// Verifier returns middleware that checks the Authorization header on every
// request. A valid bearer token puts the decoded principal into context;
// anything else leaves the request anonymous. Per-route middleware
// (RequireSignedIn, RequireRole) decides whether anonymous is acceptable.
func Verifier(tm *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok {
				if claims, err := tm.Verify(token); err == nil {
					r = withPrincipal(r, &Principal{
						ID:         claims.Subject,
						EmployeeID: claims.EmployeeID,
						Name:       claims.Name,
						Role:       claims.Role,
					})
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSignedIn ensures there is a principal in context (set by Verifier).
// Anonymous requests get a 401 JSON error.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			httperr.WriteMessage(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole ensures the principal's role is one of the allowed roles.
// Not signed in → 401; signed in with the wrong role → 403.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := CurrentUser(r)
			if !ok {
				httperr.WriteMessage(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if _, has := set[strings.ToLower(p.Role)]; !has {
				httperr.WriteMessage(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(h[len(prefix):])
	return tok, tok != ""
}

func withPrincipal(r *http.Request, p *Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, p))
}

// WithTestUser injects a principal into the request context.
// For use in handler tests only.
func WithTestUser(r *http.Request, p *Principal) *http.Request {
	return withPrincipal(r, p)
}
