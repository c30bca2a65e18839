package auth

import (
	"context"
	"time"
)

// TokenRepository stores refresh tokens and password reset tokens. Only
// hashes of the raw tokens are persisted.
type TokenRepository interface {
	CreateRefreshToken(ctx context.Context, userID string, token string, expiresAt time.Time, session SessionTrackingRequest) error
	IsRefreshTokenRevoked(ctx context.Context, token string) (bool, error)
	RevokeRefreshToken(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID string) error

	CreateResetToken(ctx context.Context, userID string, token string, expiresAt time.Time) error
	// ConsumeResetToken marks an unexpired, unused token as used and returns its user.
	ConsumeResetToken(ctx context.Context, token string, now time.Time) (string, error)
}
