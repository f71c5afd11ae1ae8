package middleware

import (
	"net/http"

	"daztao-be/internal/auth"
	"daztao-be/internal/logger"
	"daztao-be/internal/utils"

	"go.uber.org/zap"
)

// TokenParser validates an admin session token.
type TokenParser interface {
	ParseToken(token string) (*auth.AdminClaims, error)
}

// AuthMiddleware attaches the admin session to the request context when a valid
// token is present. Requests without a token pass through anonymously. A bad
// bearer token is rejected; a stale cookie is ignored so the storefront keeps working.
func AuthMiddleware(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := parser.ParseToken(tokenStr)
			if err != nil {
				if fromHeader(r) {
					utils.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				logger.FromCtx(r.Context()).Debug("ignoring invalid session cookie", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			ctx := utils.SetAdminContext(r.Context(), claims.Subject, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests that do not carry an admin session.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !utils.IsAdmin(r.Context()) {
			utils.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func fromHeader(r *http.Request) bool {
	c, err := r.Cookie(auth.SessionCookie)
	return err != nil || c.Value == ""
}
