package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timepay/timepay-backend/internal/domain/user"
)

const testSecret = "test-secret-key-for-jwt"

func TestGenerateAccessToken_RoundTrip(t *testing.T) {
	svc := NewJWTService(testSecret, "1h", "24h")
	employeeID := "0190a1b2-0000-7000-8000-000000000001"

	token, exp, err := svc.GenerateAccessToken("user-1", "jane@example.com", &employeeID, user.RoleAccountant)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Greater(t, exp, int64(0))

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	raw, err := decoded.AsMap(context.Background())
	require.NoError(t, err)

	claims, err := ClaimsFromMap(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, employeeID, claims.EmployeeID)
	assert.Equal(t, user.RoleAccountant, claims.Role)
	assert.True(t, claims.Can(user.ActionPaymentManage))
	assert.False(t, claims.Can(user.ActionUserManage))
}

func TestValidateRefreshToken_RejectsOtherTypes(t *testing.T) {
	svc := NewJWTService(testSecret, "1h", "24h")

	refresh, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	userID, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	sse, _, err := svc.GenerateSSEToken("user-1")
	require.NoError(t, err)
	_, err = svc.ValidateRefreshToken(sse)
	assert.Error(t, err)

	userID, err = svc.ValidateSSEToken(sse)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestGenerateAccessToken_InvalidDuration(t *testing.T) {
	svc := NewJWTService(testSecret, "soon", "24h")
	_, _, err := svc.GenerateAccessToken("user-1", "a@b.co", nil, user.RoleEmployee)
	assert.Error(t, err)
}

func TestClaimsContext(t *testing.T) {
	_, err := ClaimsFromContext(context.Background())
	assert.ErrorIs(t, err, ErrMissingClaims)

	ctx := WithClaims(context.Background(), Claims{UserID: "u", Role: user.RoleAdmin})
	c, err := ClaimsFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u", c.UserID)
}

func TestRevokeToken(t *testing.T) {
	svc := NewJWTService(testSecret, "1h", "24h")

	refresh, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	decoded, err := svc.JWTAuth().Decode(refresh)
	require.NoError(t, err)
	require.NotEmpty(t, decoded.JwtID())
	assert.False(t, svc.IsTokenRevoked(decoded.JwtID()))

	require.NoError(t, svc.RevokeToken(refresh))
	assert.True(t, svc.IsTokenRevoked(decoded.JwtID()))
	_, err = svc.ValidateRefreshToken(refresh)
	assert.Error(t, err)

	assert.Error(t, svc.RevokeToken("not-a-token"))
	assert.False(t, svc.IsTokenRevoked(""))
}

func TestRevokeToken_ExpiresWithToken(t *testing.T) {
	svc := NewJWTService(testSecret, "1h", "24h").(*JWTService)

	access, _, err := svc.GenerateAccessToken("user-1", "a@b.co", nil, user.RoleEmployee)
	require.NoError(t, err)
	decoded, err := svc.JWTAuth().Decode(access)
	require.NoError(t, err)
	require.NoError(t, svc.RevokeToken(access))

	later := time.Now().Add(2 * time.Hour)
	svc.now = func() time.Time { return later }
	assert.False(t, svc.IsTokenRevoked(decoded.JwtID()))
}

func TestGenerateRefreshToken_Unique(t *testing.T) {
	svc := NewJWTService(testSecret, "1h", "24h")

	a, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	b, _, err := svc.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGenerateSSEToken_Lifetime(t *testing.T) {
	svc := NewJWTService(testSecret, "1h", "24h")

	_, expiresIn, err := svc.GenerateSSEToken("user-1")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)
}
