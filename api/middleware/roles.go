package middleware

import (
	"net/http"

	"github.com/novathreads/storefront-backend/api/responses"
	"github.com/novathreads/storefront-backend/pkg/enums"
	pkgerrors "github.com/novathreads/storefront-backend/pkg/errors"
	"github.com/novathreads/storefront-backend/pkg/logger"
)

// RequireRole rejects requests whose authenticated role is not role. It must
// run after Auth.
func RequireRole(role enums.UserRole, logg *logger.Logger) func(http.Handler) http.Handler {
	message := "Access denied."
	if role == enums.UserRoleAdmin {
		message = "Access denied. Admin privileges required."
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, msgAuthRequired))
				return
			}
			if actual := RoleFromContext(r.Context()); actual != string(role) {
				if logg != nil {
					logCtx := logg.WithFields(r.Context(), map[string]any{
						"email":         EmailFromContext(r.Context()),
						"role":          actual,
						"required_role": string(role),
					})
					logg.Warn(logCtx, "auth.role_denied")
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, message))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
