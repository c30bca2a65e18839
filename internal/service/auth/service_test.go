package auth

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timepay/timepay-backend/internal/domain/auth"
	"github.com/timepay/timepay-backend/internal/domain/employee"
	"github.com/timepay/timepay-backend/internal/domain/user"
	"github.com/timepay/timepay-backend/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAccessExp  = "1h"
	testRefreshExp = "24h"
	testSecret     = "test-secret-key-for-jwt"
)

type fakeTx struct{}

func (fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUsers struct {
	user.UserRepository
	byID      map[string]user.User
	lastLogin map[string]bool
	seq       int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]user.User{}, lastLogin: map[string]bool{}}
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) Create(ctx context.Context, u user.User) (user.User, error) {
	if _, err := f.GetByEmail(ctx, u.Email); err == nil {
		return user.User{}, user.ErrUserEmailExists
	}
	f.seq++
	u.ID = fmt.Sprintf("user-%d", f.seq)
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id string) error {
	f.lastLogin[id] = true
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, hash string) error {
	u := f.byID[id]
	u.PasswordHash = &hash
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) add(t *testing.T, email, password string, active bool) user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	h := string(hash)
	u, err := f.Create(context.Background(), user.User{Email: email, PasswordHash: &h, Role: user.RoleEmployee, IsActive: active})
	require.NoError(t, err)
	return u
}

type fakeEmployees struct {
	employee.EmployeeRepository
	created []employee.Employee
}

func (f *fakeEmployees) NextCode(context.Context) (string, error) {
	return employee.FormatCode(int64(len(f.created) + 1)), nil
}

func (f *fakeEmployees) Create(_ context.Context, e employee.Employee) (employee.Employee, error) {
	e.ID = "emp-" + e.EmployeeCode
	f.created = append(f.created, e)
	return e, nil
}

type fakeTokens struct {
	refresh       map[string]bool // token -> revoked
	reset         map[string]string
	used          map[string]bool
	revokedAllFor []string
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{refresh: map[string]bool{}, reset: map[string]string{}, used: map[string]bool{}}
}

func (f *fakeTokens) CreateRefreshToken(_ context.Context, _ string, token string, _ time.Time, _ auth.SessionTrackingRequest) error {
	f.refresh[token] = false
	return nil
}

func (f *fakeTokens) IsRefreshTokenRevoked(_ context.Context, token string) (bool, error) {
	revoked, ok := f.refresh[token]
	return !ok || revoked, nil
}

func (f *fakeTokens) RevokeRefreshToken(_ context.Context, token string) error {
	f.refresh[token] = true
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID string) error {
	f.revokedAllFor = append(f.revokedAllFor, userID)
	return nil
}

func (f *fakeTokens) CreateResetToken(_ context.Context, userID string, token string, _ time.Time) error {
	f.reset[token] = userID
	return nil
}

func (f *fakeTokens) ConsumeResetToken(_ context.Context, token string, _ time.Time) (string, error) {
	userID, ok := f.reset[token]
	if !ok || f.used[token] {
		return "", auth.ErrInvalidToken
	}
	f.used[token] = true
	return userID, nil
}

type fakeMailer struct {
	resetLinks []string
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, _, link, _ string) error {
	f.resetLinks = append(f.resetLinks, link)
	return nil
}

func (f *fakeMailer) SendNotificationEmail(context.Context, string, string, string, string, *string) error {
	return nil
}

type fixture struct {
	svc       *AuthServiceImpl
	users     *fakeUsers
	employees *fakeEmployees
	tokens    *fakeTokens
	mailer    *fakeMailer
}

func newFixture() fixture {
	f := fixture{
		users:     newFakeUsers(),
		employees: &fakeEmployees{},
		tokens:    newFakeTokens(),
		mailer:    &fakeMailer{},
	}
	f.svc = NewAuthService(
		fakeTx{}, f.users, f.employees, f.tokens,
		jwt.NewJWTService(testSecret, testAccessExp, testRefreshExp),
		nil, f.mailer, "https://hr.example.com/",
	).(*AuthServiceImpl)
	return f
}

var session = auth.SessionTrackingRequest{IPAddress: "127.0.0.1", UserAgent: "Mozilla/5.0"}

func TestAuthService_Login_Success(t *testing.T) {
	f := newFixture()
	u := f.users.add(t, "login@example.com", "password123", true)

	resp, err := f.svc.Login(context.Background(), auth.LoginRequest{Email: "Login@Example.com", Password: "password123"}, session)

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Greater(t, resp.AccessTokenExpiresIn, int64(0))
	assert.Equal(t, u.ID, resp.User.ID)
	assert.True(t, f.users.lastLogin[u.ID])
	assert.Contains(t, f.tokens.refresh, resp.RefreshToken)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	f := newFixture()
	f.users.add(t, "login@example.com", "password123", true)

	_, err := f.svc.Login(context.Background(), auth.LoginRequest{Email: "login@example.com", Password: "wrong-password"}, session)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), auth.LoginRequest{Email: "nobody@example.com", Password: "password123"}, session)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_Login_Deactivated(t *testing.T) {
	f := newFixture()
	f.users.add(t, "inactive@example.com", "password123", false)

	_, err := f.svc.Login(context.Background(), auth.LoginRequest{Email: "inactive@example.com", Password: "password123"}, session)
	assert.ErrorIs(t, err, auth.ErrAccountDeactivated)
}

func TestAuthService_Register(t *testing.T) {
	f := newFixture()

	req := auth.RegisterRequest{
		Email:    "new@example.com",
		Password: "password123",
		Employee: employee.CreateEmployeeRequest{
			FirstName:   "Kamala",
			LastName:    "Silva",
			Position:    string(employee.PositionCashier),
			Department:  "Sales",
			BranchID:    "0190a6c4-0000-7000-8000-000000000001",
			JoiningDate: "2025-01-06",
		},
	}

	resp, err := f.svc.Register(context.Background(), req, session)
	require.NoError(t, err)

	require.Len(t, f.employees.created, 1)
	emp := f.employees.created[0]
	assert.Equal(t, "EMP00001", emp.EmployeeCode)
	require.NotNil(t, emp.Email)
	assert.Equal(t, "new@example.com", *emp.Email)

	assert.Equal(t, user.RoleEmployee, resp.User.Role)
	require.NotNil(t, resp.User.EmployeeID)
	assert.Equal(t, emp.ID, *resp.User.EmployeeID)

	_, err = f.svc.Register(context.Background(), req, session)
	assert.ErrorIs(t, err, auth.ErrEmailAlreadyRegistered)
}

func TestAuthService_RefreshToken_Rotates(t *testing.T) {
	f := newFixture()
	f.users.add(t, "rotate@example.com", "password123", true)

	login, err := f.svc.Login(context.Background(), auth.LoginRequest{Email: "rotate@example.com", Password: "password123"}, session)
	require.NoError(t, err)

	refreshed, err := f.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{RefreshToken: login.RefreshToken}, session)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.True(t, f.tokens.refresh[login.RefreshToken])

	_, err = f.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{RefreshToken: login.RefreshToken}, session)
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)
}

func TestAuthService_RefreshToken_RejectsGarbage(t *testing.T) {
	f := newFixture()

	_, err := f.svc.RefreshToken(context.Background(), auth.RefreshTokenRequest{RefreshToken: "not-a-jwt"}, session)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_ForgotAndResetPassword(t *testing.T) {
	f := newFixture()
	u := f.users.add(t, "forgot@example.com", "password123", true)
	ctx := context.Background()

	require.NoError(t, f.svc.ForgotPassword(ctx, auth.ForgotPasswordRequest{Email: "unknown@example.com"}))
	assert.Empty(t, f.mailer.resetLinks)

	require.NoError(t, f.svc.ForgotPassword(ctx, auth.ForgotPasswordRequest{Email: "forgot@example.com"}))
	require.Len(t, f.mailer.resetLinks, 1)
	link := f.mailer.resetLinks[0]
	require.True(t, strings.HasPrefix(link, "https://hr.example.com/reset-password/"))
	token := strings.TrimPrefix(link, "https://hr.example.com/reset-password/")

	err := f.svc.ResetPassword(ctx, auth.ResetPasswordRequest{Token: token, Password: "newpassword1", ConfirmPassword: "newpassword1"})
	require.NoError(t, err)
	assert.Equal(t, []string{u.ID}, f.tokens.revokedAllFor)

	_, err = f.svc.Login(ctx, auth.LoginRequest{Email: "forgot@example.com", Password: "newpassword1"}, session)
	assert.NoError(t, err)

	err = f.svc.ResetPassword(ctx, auth.ResetPasswordRequest{Token: token, Password: "another-one", ConfirmPassword: "another-one"})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_ChangePassword_WrongCurrent(t *testing.T) {
	f := newFixture()
	u := f.users.add(t, "change@example.com", "password123", true)
	ctx := jwt.WithClaims(context.Background(), jwt.Claims{UserID: u.ID, Email: u.Email, Role: u.Role})

	err := f.svc.ChangePassword(ctx, auth.ChangePasswordRequest{CurrentPassword: "wrong-password", NewPassword: "newpassword1"})
	assert.ErrorIs(t, err, auth.ErrIncorrectPassword)

	err = f.svc.ChangePassword(ctx, auth.ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "newpassword1"})
	assert.NoError(t, err)
}

func TestAuthService_GoogleDisabled(t *testing.T) {
	f := newFixture()

	_, _, err := f.svc.GoogleAuthURL(context.Background())
	assert.ErrorIs(t, err, auth.ErrOAuthDisabled)
}
