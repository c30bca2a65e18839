package jwt

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/timepay/timepay-backend/internal/domain/user"
)

const (
	RefreshCookieName = "refresh_token"
	refreshCookiePath = "/api/v1/auth"

	sseTokenTTL = 5 * time.Minute
	clockSkew   = 30 * time.Second
)

type Service interface {
	GenerateAccessToken(userID string, email string, employeeID *string, role user.Role) (token string, expiresAt int64, err error)
	GenerateRefreshToken(userID string) (token string, expiresAt int64, err error)
	GenerateSSEToken(userID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (userID string, err error)
	ValidateRefreshToken(tokenString string) (userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
	RefreshTokenCookie(token string, expiresAt int64) *http.Cookie
	// RevokeToken blocks a signed token by its id until the token expires.
	RevokeToken(tokenString string) error
	IsTokenRevoked(tokenID string) bool
}

// lifetime is a configured token duration; err is kept so a bad value
// surfaces on the first token issued with it.
type lifetime struct {
	d   time.Duration
	err error
}

func parseLifetime(name, value string) lifetime {
	d, err := time.ParseDuration(value)
	if err != nil {
		return lifetime{err: fmt.Errorf("%s token expiration %q: %w", name, value, err)}
	}
	return lifetime{d: d}
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
	access    lifetime
	refresh   lifetime
	now       func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewJWTService(secretKey string, accessTokenExpirationTime string, refreshTokenExpirationTime string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(clockSkew)),
		access:    parseLifetime("access", accessTokenExpirationTime),
		refresh:   parseLifetime("refresh", refreshTokenExpirationTime),
		now:       time.Now,
		revoked:   make(map[string]time.Time),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// issue signs a token of kind for userID. Every token carries a unique jti so
// rotated refresh tokens never collide and single tokens can be revoked.
func (j *JWTService) issue(kind, userID string, ttl time.Duration, extra map[string]interface{}) (string, time.Time, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", time.Time{}, err
	}

	issuedAt := j.now()
	expiresAt := issuedAt.Add(ttl)
	claims := map[string]interface{}{
		"jti":     id.String(),
		"user_id": userID,
		"type":    kind,
		"iat":     issuedAt.Unix(),
		"exp":     expiresAt.Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

func (j *JWTService) GenerateAccessToken(userID string, email string, employeeID *string, role user.Role) (string, int64, error) {
	if j.access.err != nil {
		return "", 0, j.access.err
	}

	var employee interface{}
	if employeeID != nil {
		employee = *employeeID
	}
	token, exp, err := j.issue(TokenTypeAccess, userID, j.access.d, map[string]interface{}{
		"email":       email,
		"employee_id": employee,
		"role":        string(role),
	})
	if err != nil {
		return "", 0, err
	}
	return token, exp.Unix(), nil
}

func (j *JWTService) GenerateRefreshToken(userID string) (string, int64, error) {
	if j.refresh.err != nil {
		return "", 0, j.refresh.err
	}
	token, exp, err := j.issue(TokenTypeRefresh, userID, j.refresh.d, nil)
	if err != nil {
		return "", 0, err
	}
	return token, exp.Unix(), nil
}

// GenerateSSEToken issues the short-lived token an EventSource passes as a query parameter.
func (j *JWTService) GenerateSSEToken(userID string) (string, int, error) {
	token, _, err := j.issue(TokenTypeSSE, userID, sseTokenTTL, nil)
	if err != nil {
		return "", 0, err
	}
	return token, int(sseTokenTTL.Seconds()), nil
}

func (j *JWTService) RefreshTokenCookie(token string, expiresAt int64) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		Expires:  time.Unix(expiresAt, 0),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

func (j *JWTService) ValidateSSEToken(tokenString string) (string, error) {
	return j.validate(tokenString, TokenTypeSSE)
}

func (j *JWTService) ValidateRefreshToken(tokenString string) (string, error) {
	return j.validate(tokenString, TokenTypeRefresh)
}

func (j *JWTService) decode(tokenString string) (jwt.Token, error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return nil, err
	}
	if err := jwt.Validate(token, jwt.WithClock(jwt.ClockFunc(j.now)), jwt.WithAcceptableSkew(clockSkew)); err != nil {
		return nil, err
	}
	return token, nil
}

func (j *JWTService) validate(tokenString string, want string) (string, error) {
	token, err := j.decode(tokenString)
	if err != nil {
		return "", err
	}

	if kind, ok := token.Get("type"); !ok || kind != want {
		return "", jwt.ErrInvalidJWT()
	}
	if j.IsTokenRevoked(token.JwtID()) {
		return "", jwt.ErrInvalidJWT()
	}

	raw, _ := token.Get("user_id")
	userID, ok := raw.(string)
	if !ok || userID == "" {
		return "", jwt.ErrInvalidJWT()
	}
	return userID, nil
}

func (j *JWTService) RevokeToken(tokenString string) error {
	token, err := j.decode(tokenString)
	if err != nil {
		return err
	}
	if token.JwtID() == "" {
		return jwt.ErrInvalidJWT()
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	now := j.now()
	for id, exp := range j.revoked {
		if !now.Before(exp) {
			delete(j.revoked, id)
		}
	}
	j.revoked[token.JwtID()] = token.Expiration()
	return nil
}

func (j *JWTService) IsTokenRevoked(tokenID string) bool {
	if tokenID == "" {
		return false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	exp, ok := j.revoked[tokenID]
	return ok && j.now().Before(exp)
}
