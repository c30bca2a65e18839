package jwt

import (
	"context"
	"errors"

	"github.com/go-chi/jwtauth/v5"
	"github.com/timepay/timepay-backend/internal/domain/user"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeSSE     = "sse"
)

var ErrMissingClaims = errors.New("authentication claims missing from context")

// Claims is the caller identity carried by an access token.
type Claims struct {
	UserID     string
	Email      string
	EmployeeID string
	Role       user.Role
}

// Can reports whether the caller may perform action.
func (c Claims) Can(action user.Action) bool {
	return user.Can(c.Role, action)
}

type claimsKey struct{}

// WithClaims stores c in ctx.
func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the claims stored by WithClaims, falling back to
// the raw token placed in ctx by jwtauth.Verifier.
func ClaimsFromContext(ctx context.Context) (Claims, error) {
	if c, ok := ctx.Value(claimsKey{}).(Claims); ok {
		return c, nil
	}

	_, raw, err := jwtauth.FromContext(ctx)
	if err != nil || raw == nil {
		return Claims{}, ErrMissingClaims
	}
	return ClaimsFromMap(raw)
}

// ClaimsFromMap converts decoded token claims into Claims.
func ClaimsFromMap(raw map[string]interface{}) (Claims, error) {
	userID, _ := raw["user_id"].(string)
	if userID == "" {
		return Claims{}, ErrMissingClaims
	}
	email, _ := raw["email"].(string)
	employeeID, _ := raw["employee_id"].(string)
	role, _ := raw["role"].(string)

	return Claims{
		UserID:     userID,
		Email:      email,
		EmployeeID: employeeID,
		Role:       user.Role(role),
	}, nil
}
