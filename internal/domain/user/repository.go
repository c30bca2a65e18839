package user

import (
	"context"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (User, error)
	Create(ctx context.Context, newUser User) (User, error)
	List(ctx context.Context, filter UserFilter) ([]User, int64, error)
	ListByRoles(ctx context.Context, roles []Role) ([]User, error)
	Update(ctx context.Context, req UpdateUserRequest) error
	UpdateRole(ctx context.Context, id string, role Role) error
	SetActive(ctx context.Context, id string, active bool) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID string) error
	LinkGoogleAccount(ctx context.Context, userID, googleID string) error
	Delete(ctx context.Context, id string) error
}
