package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timepay/timepay-backend/internal/domain/user"
	"github.com/timepay/timepay-backend/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers struct {
	user.UserRepository
	byID map[string]user.User
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) Create(_ context.Context, u user.User) (user.User, error) {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return user.User{}, user.ErrUserEmailExists
		}
	}
	u.ID = "u-new"
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) UpdateRole(_ context.Context, id string, role user.Role) error {
	u, ok := f.byID[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.Role = role
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) SetActive(_ context.Context, id string, active bool) error {
	u, ok := f.byID[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.IsActive = active
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) List(_ context.Context, _ user.UserFilter) ([]user.User, int64, error) {
	var out []user.User
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, 45, nil
}

func newService() (*UserServiceImpl, *fakeUsers) {
	repo := &fakeUsers{byID: map[string]user.User{
		"admin": {ID: "admin", Email: "admin@example.com", Role: user.RoleAdmin, IsActive: true},
		"staff": {ID: "staff", Email: "staff@example.com", Role: user.RoleEmployee, IsActive: true},
	}}
	return NewUserService(repo).(*UserServiceImpl), repo
}

func adminCtx() context.Context {
	return jwt.WithClaims(context.Background(), jwt.Claims{UserID: "admin", Role: user.RoleAdmin})
}

func TestUserService_Create_HashesPassword(t *testing.T) {
	svc, repo := newService()

	resp, err := svc.Create(adminCtx(), user.CreateUserRequest{Email: " New@Example.com ", Password: "password123", Role: string(user.RoleAccountant)})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", resp.Email)
	assert.Equal(t, user.RoleAccountant, resp.Role)

	stored := repo.byID[resp.ID]
	require.NotNil(t, stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*stored.PasswordHash), []byte("password123")))

	_, err = svc.Create(adminCtx(), user.CreateUserRequest{Email: "staff@example.com", Password: "password123", Role: string(user.RoleEmployee)})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)
}

func TestUserService_UpdateRole(t *testing.T) {
	svc, _ := newService()

	resp, err := svc.UpdateRole(adminCtx(), user.UpdateUserRoleRequest{ID: "staff", Role: string(user.RoleSupervisor)})
	require.NoError(t, err)
	assert.Equal(t, user.RoleSupervisor, resp.Role)

	_, err = svc.UpdateRole(adminCtx(), user.UpdateUserRoleRequest{ID: "admin", Role: string(user.RoleEmployee)})
	assert.ErrorIs(t, err, user.ErrCannotModifySelf)
}

func TestUserService_Deactivate(t *testing.T) {
	svc, repo := newService()

	require.NoError(t, svc.Deactivate(adminCtx(), "staff"))
	assert.False(t, repo.byID["staff"].IsActive)

	require.NoError(t, svc.Activate(adminCtx(), "staff"))
	assert.True(t, repo.byID["staff"].IsActive)

	assert.ErrorIs(t, svc.Deactivate(adminCtx(), "admin"), user.ErrCannotModifySelf)
	assert.ErrorIs(t, svc.Delete(adminCtx(), "admin"), user.ErrCannotModifySelf)
}

func TestUserService_List_Pagination(t *testing.T) {
	svc, _ := newService()

	resp, err := svc.List(context.Background(), user.UserFilter{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.Limit)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Len(t, resp.Users, 2)
}
