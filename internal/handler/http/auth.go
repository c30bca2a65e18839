package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/timepay/timepay-backend/internal/domain/auth"
	"github.com/timepay/timepay-backend/internal/handler/http/response"
	"github.com/timepay/timepay-backend/internal/pkg/jwt"
)

const (
	refreshTokenCookieName = jwt.RefreshCookieName
	oauthStateCookieName   = "oauth_state"
	oauthCallbackPath      = "/api/v1/auth/oauth/callback/google"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	LoginWithGoogle(w http.ResponseWriter, r *http.Request)
	OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	RefreshToken(w http.ResponseWriter, r *http.Request)
	ForgotPassword(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
	ChangePassword(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	jwtService  jwt.Service
	authService auth.AuthService
	frontendURL string
}

func NewAuthHandler(jwtService jwt.Service, authService auth.AuthService, frontendURL string) AuthHandler {
	return &AuthHandlerImpl{
		jwtService:  jwtService,
		authService: authService,
		frontendURL: frontendURL,
	}
}

func sessionFrom(r *http.Request) auth.SessionTrackingRequest {
	return auth.SessionTrackingRequest{
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}

func (a *AuthHandlerImpl) setRefreshCookie(w http.ResponseWriter, tokens auth.TokenResponse) {
	http.SetCookie(w, a.jwtService.RefreshTokenCookie(tokens.RefreshToken, tokens.RefreshTokenExpiresIn))
}

// Register implements AuthHandler.
func (a *AuthHandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	var registerReq auth.RegisterRequest
	if !decodeJSON(w, r, &registerReq, "Register") {
		return
	}

	if err := registerReq.Validate(); err != nil {
		slog.Error("Register validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	tokenResponse, err := a.authService.Register(r.Context(), registerReq, sessionFrom(r))
	if err != nil {
		slog.Error("Register service error", "error", err)
		response.HandleError(w, err)
		return
	}

	a.setRefreshCookie(w, tokenResponse)
	slog.Info("User registered successfully", "user_id", tokenResponse.User.ID)
	response.Created(w, "User created successfully", tokenResponse)
}

// Login implements AuthHandler.
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq auth.LoginRequest
	if !decodeJSON(w, r, &loginReq, "Login") {
		return
	}

	if err := loginReq.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	tokenResponse, err := a.authService.Login(r.Context(), loginReq, sessionFrom(r))
	if err != nil {
		slog.Error("Login service error", "error", err)
		response.HandleError(w, err)
		return
	}

	a.setRefreshCookie(w, tokenResponse)
	slog.Info("User logged in successfully", "user_id", tokenResponse.User.ID)
	response.Success(w, tokenResponse)
}

// LoginWithGoogle redirects to the Google consent screen, pinning the state in
// a short-lived cookie scoped to the callback.
func (a *AuthHandlerImpl) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	redirectURL, state, err := a.authService.GoogleAuthURL(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Path:     oauthCallbackPath,
		Expires:  time.Now().Add(5 * time.Minute),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}

// OAuthCallbackGoogle finishes Google sign-in and hands the access token to
// the frontend. Failures are reported to the frontend as an error code.
func (a *AuthHandlerImpl) OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request) {
	redirectWithError := func(code string) {
		target := fmt.Sprintf("%s/auth/callback/google?error=%s", a.frontendURL, url.QueryEscape(code))
		http.Redirect(w, r, target, http.StatusTemporaryRedirect)
	}

	if errorValue := r.URL.Query().Get("error"); errorValue != "" {
		slog.Warn("Google sign-in aborted", "error", errorValue)
		redirectWithError(errorValue)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookieName)
	if err != nil || stateCookie.Value == "" {
		slog.Error("OAuth state cookie missing", "error", auth.ErrInvalidOAuthState)
		redirectWithError("state_cookie_not_found")
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		slog.Error("OAuth state mismatch", "error", auth.ErrInvalidOAuthState)
		redirectWithError("state_mismatch")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		redirectWithError("code_empty")
		return
	}

	tokenResponse, err := a.authService.OAuthCallbackGoogle(r.Context(), code, sessionFrom(r))
	if err != nil {
		slog.Error("Failed to login with Google", "error", err)
		redirectWithError("login_failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:    oauthStateCookieName,
		Path:    oauthCallbackPath,
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	})
	a.setRefreshCookie(w, tokenResponse)
	slog.Info("User logged in via Google", "user_id", tokenResponse.User.ID)

	target := fmt.Sprintf("%s/auth/callback/google?access_token=%s&expires_in=%d",
		a.frontendURL,
		url.QueryEscape(tokenResponse.AccessToken),
		tokenResponse.AccessTokenExpiresIn,
	)
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// refreshTokenFrom prefers the cookie and falls back to a JSON body.
func refreshTokenFrom(w http.ResponseWriter, r *http.Request, op string) (auth.RefreshTokenRequest, bool) {
	var req auth.RefreshTokenRequest
	if cookie, err := r.Cookie(refreshTokenCookieName); err == nil && cookie.Value != "" {
		req.RefreshToken = cookie.Value
	} else if !decodeJSON(w, r, &req, op) {
		return req, false
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return req, false
	}
	return req, true
}

// Logout implements AuthHandler.
func (a *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	req, ok := refreshTokenFrom(w, r, "Logout")
	if !ok {
		return
	}

	if err := a.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		response.HandleError(w, err)
		return
	}

	if bearer := jwtauth.TokenFromHeader(r); bearer != "" {
		if err := a.jwtService.RevokeToken(bearer); err != nil {
			slog.Warn("Access token not revoked on logout", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookieName,
		Value:    "",
		Path:     "/api/v1/auth",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	response.SuccessWithMessage(w, "User logged out successfully", nil)
}

// RefreshToken rotates the refresh token and issues a new access token.
func (a *AuthHandlerImpl) RefreshToken(w http.ResponseWriter, r *http.Request) {
	req, ok := refreshTokenFrom(w, r, "RefreshToken")
	if !ok {
		return
	}

	tokenResponse, err := a.authService.RefreshToken(r.Context(), req, sessionFrom(r))
	if err != nil {
		slog.Error("Refresh Token service error", "error", err)
		response.HandleError(w, err)
		return
	}

	a.setRefreshCookie(w, tokenResponse)
	response.Success(w, tokenResponse)
}

// ForgotPassword always answers success so callers cannot probe for accounts.
func (a *AuthHandlerImpl) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var forgotPasswordReq auth.ForgotPasswordRequest
	if !decodeJSON(w, r, &forgotPasswordReq, "ForgotPassword") {
		return
	}

	if err := forgotPasswordReq.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := a.authService.ForgotPassword(r.Context(), forgotPasswordReq); err != nil {
		slog.Error("ForgotPassword service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "If the email is registered, a password reset link has been sent", nil)
}

// ResetPassword handles POST /auth/reset-password/{token}
func (a *AuthHandlerImpl) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var resetPasswordReq auth.ResetPasswordRequest
	if !decodeJSON(w, r, &resetPasswordReq, "ResetPassword") {
		return
	}
	resetPasswordReq.Token = chi.URLParam(r, "token")

	if err := resetPasswordReq.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := a.authService.ResetPassword(r.Context(), resetPasswordReq); err != nil {
		slog.Error("ResetPassword service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("Password reset successfully")
	response.SuccessWithMessage(w, "Password has been reset successfully", nil)
}

func (a *AuthHandlerImpl) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req auth.ChangePasswordRequest
	if !decodeJSON(w, r, &req, "ChangePassword") {
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := a.authService.ChangePassword(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Password changed successfully", nil)
}

func (a *AuthHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	result, err := a.authService.Me(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
