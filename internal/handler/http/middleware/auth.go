package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/timepay/timepay-backend/internal/domain/auth"
	"github.com/timepay/timepay-backend/internal/handler/http/response"
	"github.com/timepay/timepay-backend/internal/pkg/jwt"
)

// AuthRequired accepts only verified, unrevoked access tokens and stores the
// caller's claims in the request context. It must run after jwtauth.Verifier.
func AuthRequired(tokens jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, raw, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			if tokens.IsTokenRevoked(token.JwtID()) {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			tokenType, ok := raw["type"].(string)
			if !ok || tokenType != jwt.TokenTypeAccess {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			claims, err := jwt.ClaimsFromMap(raw)
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.WithClaims(r.Context(), claims)))
		}
		return http.HandlerFunc(hfn)
	}
}
