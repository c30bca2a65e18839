package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/timepay/timepay-backend/internal/domain/auth"
	"github.com/timepay/timepay-backend/internal/domain/employee"
	"github.com/timepay/timepay-backend/internal/domain/user"
	"github.com/timepay/timepay-backend/internal/pkg/database"
	"github.com/timepay/timepay-backend/internal/pkg/email"
	"github.com/timepay/timepay-backend/internal/pkg/jwt"
	"github.com/timepay/timepay-backend/internal/pkg/oauth"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenTTL = time.Hour

type AuthServiceImpl struct {
	tx          database.Transactor
	users       user.UserRepository
	employees   employee.EmployeeRepository
	tokens      auth.TokenRepository
	jwt         jwt.Service
	google      oauth.GoogleService
	mailer      email.EmailService
	frontendURL string
	now         func() time.Time
}

// NewAuthService wires the auth flows. google may be nil when Google sign-in
// is not configured.
func NewAuthService(
	tx database.Transactor,
	users user.UserRepository,
	employees employee.EmployeeRepository,
	tokens auth.TokenRepository,
	jwtService jwt.Service,
	google oauth.GoogleService,
	mailer email.EmailService,
	frontendURL string,
) auth.AuthService {
	return &AuthServiceImpl{
		tx:          tx,
		users:       users,
		employees:   employees,
		tokens:      tokens,
		jwt:         jwtService,
		google:      google,
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         time.Now,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// issueTokens mints an access/refresh pair for u and stores the refresh token.
func (a *AuthServiceImpl) issueTokens(ctx context.Context, u user.User, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var resp auth.TokenResponse
	var err error

	resp.AccessToken, resp.AccessTokenExpiresIn, err = a.jwt.GenerateAccessToken(u.ID, u.Email, u.EmployeeID, u.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	resp.RefreshToken, resp.RefreshTokenExpiresIn, err = a.jwt.GenerateRefreshToken(u.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}

	if err := a.tokens.CreateRefreshToken(ctx, u.ID, resp.RefreshToken, time.Unix(resp.RefreshTokenExpiresIn, 0), session); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to save refresh token to database: %w", err)
	}

	resp.User = user.ToResponse(u)
	return resp, nil
}

// Register implements auth.AuthService.
func (a *AuthServiceImpl) Register(ctx context.Context, req auth.RegisterRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	address := strings.ToLower(strings.TrimSpace(req.Email))

	_, err := a.users.GetByEmail(ctx, address)
	if err == nil {
		return auth.TokenResponse{}, auth.ErrEmailAlreadyRegistered
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return auth.TokenResponse{}, fmt.Errorf("failed to get user data by email: %w", err)
	}

	hashedPassword, err := hashPassword(req.Password)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var resp auth.TokenResponse
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		code, err := a.employees.NextCode(ctx)
		if err != nil {
			return fmt.Errorf("failed to reserve employee code: %w", err)
		}

		req.Employee.Email = &address
		newEmployee, err := req.Employee.Build(code)
		if err != nil {
			return err
		}
		if !newEmployee.OldEnough() {
			return employee.ErrMinimumAge
		}
		newEmployee, err = a.employees.Create(ctx, newEmployee)
		if err != nil {
			return err
		}

		newUser, err := a.users.Create(ctx, user.User{
			EmployeeID:   &newEmployee.ID,
			Email:        address,
			PasswordHash: &hashedPassword,
			Role:         user.RoleEmployee,
			IsActive:     true,
		})
		if err != nil {
			if errors.Is(err, user.ErrUserEmailExists) {
				return auth.ErrEmailAlreadyRegistered
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		resp, err = a.issueTokens(ctx, newUser, session)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	return resp, nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	userData, err := a.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if userData.PasswordHash == nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*userData.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if !userData.IsActive {
		return auth.TokenResponse{}, auth.ErrAccountDeactivated
	}

	return a.completeLogin(ctx, userData, session)
}

func (a *AuthServiceImpl) completeLogin(ctx context.Context, userData user.User, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var resp auth.TokenResponse
	err := a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := a.users.UpdateLastLogin(ctx, userData.ID); err != nil {
			return fmt.Errorf("failed to record last login: %w", err)
		}
		now := a.now()
		userData.LastLogin = &now

		var err error
		resp, err = a.issueTokens(ctx, userData, session)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}
	return resp, nil
}

// GoogleAuthURL implements auth.AuthService.
func (a *AuthServiceImpl) GoogleAuthURL(ctx context.Context) (string, string, error) {
	if a.google == nil {
		return "", "", auth.ErrOAuthDisabled
	}
	state, err := a.google.GenerateState()
	if err != nil {
		return "", "", err
	}
	return a.google.RedirectURL(state), state, nil
}

// OAuthCallbackGoogle implements auth.AuthService. Only existing, active
// accounts may sign in with Google.
func (a *AuthServiceImpl) OAuthCallbackGoogle(ctx context.Context, code string, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if a.google == nil {
		return auth.TokenResponse{}, auth.ErrOAuthDisabled
	}

	token, err := a.google.Exchange(ctx, code)
	if err != nil {
		slog.Warn("google code exchange failed", "error", err)
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}
	info, err := a.google.UserInfo(ctx, token)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to fetch google profile: %w", err)
	}
	if !info.VerifiedEmail {
		return auth.TokenResponse{}, auth.ErrGoogleNotLinked
	}

	userData, err := a.users.GetByEmail(ctx, strings.ToLower(info.Email))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrGoogleNotLinked
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	if !userData.IsActive {
		return auth.TokenResponse{}, auth.ErrAccountDeactivated
	}

	if userData.OAuthProviderID == nil {
		if err := a.users.LinkGoogleAccount(ctx, userData.ID, info.GoogleID); err != nil {
			return auth.TokenResponse{}, fmt.Errorf("failed to link google account: %w", err)
		}
	}

	return a.completeLogin(ctx, userData, session)
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	revoked, err := a.tokens.IsRefreshTokenRevoked(ctx, refreshToken)
	if err != nil {
		return fmt.Errorf("failed to check if refresh token is revoked: %w", err)
	}
	if revoked {
		return nil
	}
	if err := a.tokens.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RefreshToken implements auth.AuthService. The presented token is revoked
// and replaced.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	userID, err := a.jwt.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}

	revoked, err := a.tokens.IsRefreshTokenRevoked(ctx, req.RefreshToken)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if revoked {
		return auth.TokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	userData, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrUserNotFound
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user: %w", err)
	}
	if !userData.IsActive {
		return auth.TokenResponse{}, auth.ErrAccountDeactivated
	}

	var resp auth.TokenResponse
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := a.tokens.RevokeRefreshToken(ctx, req.RefreshToken); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
		var err error
		resp, err = a.issueTokens(ctx, userData, session)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}
	return resp, nil
}

// ForgotPassword implements auth.AuthService. Unknown emails succeed silently.
func (a *AuthServiceImpl) ForgotPassword(ctx context.Context, req auth.ForgotPasswordRequest) error {
	userData, err := a.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get user by email: %w", err)
	}
	if !userData.IsActive {
		return nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)
	expiresAt := a.now().Add(resetTokenTTL)

	if err := a.tokens.CreateResetToken(ctx, userData.ID, token, expiresAt); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password/%s", a.frontendURL, token)
	if err := a.mailer.SendPasswordReset(ctx, userData.Email, link, expiresAt.Format(time.RFC1123)); err != nil {
		slog.Error("failed to send password reset email", "user_id", userData.ID, "error", err)
	}
	return nil
}

// ResetPassword implements auth.AuthService. Every session of the user is
// revoked.
func (a *AuthServiceImpl) ResetPassword(ctx context.Context, req auth.ResetPasswordRequest) error {
	hashed, err := hashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		userID, err := a.tokens.ConsumeResetToken(ctx, req.Token, a.now())
		if err != nil {
			return err
		}
		if err := a.users.UpdatePassword(ctx, userID, hashed); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		if err := a.tokens.RevokeAllForUser(ctx, userID); err != nil {
			return fmt.Errorf("failed to revoke sessions: %w", err)
		}
		return nil
	})
}

// ChangePassword implements auth.AuthService.
func (a *AuthServiceImpl) ChangePassword(ctx context.Context, req auth.ChangePasswordRequest) error {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	userData, err := a.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return err
	}
	if userData.PasswordHash == nil {
		return auth.ErrIncorrectPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*userData.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return auth.ErrIncorrectPassword
	}

	hashed, err := hashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := a.users.UpdatePassword(ctx, userData.ID, hashed); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context) (auth.MeResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return auth.MeResponse{}, err
	}

	userData, err := a.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return auth.MeResponse{}, err
	}

	resp := auth.MeResponse{User: user.ToResponse(userData)}
	if userData.EmployeeID != nil {
		emp, err := a.employees.GetByID(ctx, *userData.EmployeeID)
		switch {
		case err == nil:
			empResp := employee.ToResponse(emp)
			resp.Employee = &empResp
		case !errors.Is(err, employee.ErrEmployeeNotFound):
			return auth.MeResponse{}, fmt.Errorf("failed to get employee: %w", err)
		}
	}
	return resp, nil
}
