package httpx

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"bookfeed/internal/platform/crypto"
)

const InternalSecretHeader = "X-Internal-Secret"

// InternalAuthMiddleware guards job endpoints. A request passes with the
// shared internal secret header or with a bearer token carrying the ADMIN
// role. With neither credential configured every request is refused.
func InternalAuthMiddleware(internalSecret, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if internalSecret != "" {
				got := r.Header.Get(InternalSecretHeader)
				if got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(internalSecret)) == 1 {
					ctx := ContextWithCaller(r.Context(), "internal-secret", crypto.RoleAdmin)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			authHeader := r.Header.Get("Authorization")
			if jwtSecret == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid credentials", nil)
				return
			}

			claims, err := crypto.Authorize(jwtSecret, strings.TrimPrefix(authHeader, "Bearer "), crypto.RoleAdmin)
			if err != nil {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid credentials", nil)
				return
			}

			ctx := ContextWithCaller(r.Context(), claims.Subject, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
