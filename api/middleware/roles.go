package middleware

import (
	"fmt"
	"net/http"

	"github.com/prostore-labs/storefront-backend/api/responses"
	pkgerrors "github.com/prostore-labs/storefront-backend/pkg/errors"
	"github.com/prostore-labs/storefront-backend/pkg/logger"
)

// RequireRole gates a route group on the role carried in the session token.
// Run it after Auth, otherwise no role is in the context and everything is
// rejected.
func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != role {
				msg := fmt.Sprintf("%s access required", role)
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, msg))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
