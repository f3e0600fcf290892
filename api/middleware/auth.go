package middleware

import (
	"net/http"

	"github.com/novathreads/storefront-backend/api/responses"
	"github.com/novathreads/storefront-backend/api/validators"
	pkgAuth "github.com/novathreads/storefront-backend/pkg/auth"
	"github.com/novathreads/storefront-backend/pkg/config"
	pkgerrors "github.com/novathreads/storefront-backend/pkg/errors"
	"github.com/novathreads/storefront-backend/pkg/logger"
)

const (
	msgAuthRequired = "Authentication required. Please provide a valid token."
	msgInvalidToken = "Invalid or expired token. Please login again."
)

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := validators.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, msgAuthRequired))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgInvalidToken))
				return
			}

			userID := claims.UserID.String()
			ctx := WithIdentity(r.Context(), userID, claims.Email, string(claims.Role))
			if logg != nil {
				ctx = logg.WithUserID(ctx, userID)
				ctx = logg.WithActorRole(ctx, string(claims.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
