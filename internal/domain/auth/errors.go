package auth

import "errors"

var (
	ErrInvalidCredentials     = errors.New("Invalid credentials")
	ErrAccountDeactivated     = errors.New("Account is deactivated")
	ErrInvalidToken           = errors.New("Invalid or expired token")
	ErrTokenExpired           = errors.New("token has expired")
	ErrRefreshTokenRevoked    = errors.New("refresh token has been revoked")
	ErrUserNotFound           = errors.New("user not found")
	ErrEmailAlreadyRegistered = errors.New("Email already registered")
	ErrIncorrectPassword      = errors.New("Current password is incorrect")
	ErrGoogleNotLinked        = errors.New("no active account is registered for this Google email")
	ErrOAuthDisabled          = errors.New("Google sign-in is not configured")
	ErrInvalidOAuthState      = errors.New("invalid oauth state")
)
