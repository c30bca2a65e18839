package middleware

import (
	"fmt"
	"net/http"

	"github.com/timepay/timepay-backend/internal/domain/user"
	"github.com/timepay/timepay-backend/internal/handler/http/response"
	"github.com/timepay/timepay-backend/internal/pkg/jwt"
)

// RequirePermission rejects callers whose role is not allowed to perform action.
func RequirePermission(action user.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := jwt.ClaimsFromContext(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}

			if !claims.Can(action) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user role is '%s'", action, claims.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
