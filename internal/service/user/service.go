package user

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/timepay/timepay-backend/internal/domain/user"
	"github.com/timepay/timepay-backend/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceImpl struct {
	users user.UserRepository
}

func NewUserService(users user.UserRepository) user.UserService {
	return &UserServiceImpl{users: users}
}

// List implements user.UserService.
func (s *UserServiceImpl) List(ctx context.Context, filter user.UserFilter) (user.ListUserResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return user.ListUserResponse{}, fmt.Errorf("failed to list users: %w", err)
	}

	resp := user.ListUserResponse{
		Users:      make([]user.UserResponse, 0, len(users)),
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}
	for _, u := range users {
		resp.Users = append(resp.Users, user.ToResponse(u))
	}
	return resp, nil
}

// Get implements user.UserService.
func (s *UserServiceImpl) Get(ctx context.Context, id string) (user.UserResponse, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(u), nil
}

// Create implements user.UserService.
func (s *UserServiceImpl) Create(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	address := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}
	hashed := string(hash)

	created, err := s.users.Create(ctx, user.User{
		EmployeeID:   req.EmployeeID,
		Email:        address,
		PasswordHash: &hashed,
		Role:         user.Role(req.Role),
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, user.ErrUserEmailExists) {
			return user.UserResponse{}, err
		}
		return user.UserResponse{}, fmt.Errorf("failed to create user: %w", err)
	}
	return user.ToResponse(created), nil
}

// Update implements user.UserService.
func (s *UserServiceImpl) Update(ctx context.Context, req user.UpdateUserRequest) (user.UserResponse, error) {
	if req.Role != nil {
		if err := s.guardSelf(ctx, req.ID); err != nil {
			return user.UserResponse{}, err
		}
	}
	if req.Email != nil {
		address := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &address
	}
	if err := s.users.Update(ctx, req); err != nil {
		return user.UserResponse{}, err
	}
	return s.Get(ctx, req.ID)
}

// UpdateRole implements user.UserService.
func (s *UserServiceImpl) UpdateRole(ctx context.Context, req user.UpdateUserRoleRequest) (user.UserResponse, error) {
	if err := s.guardSelf(ctx, req.ID); err != nil {
		return user.UserResponse{}, err
	}
	if err := s.users.UpdateRole(ctx, req.ID, user.Role(req.Role)); err != nil {
		return user.UserResponse{}, err
	}
	return s.Get(ctx, req.ID)
}

// Activate implements user.UserService.
func (s *UserServiceImpl) Activate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, true)
}

// Deactivate implements user.UserService.
func (s *UserServiceImpl) Deactivate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, false)
}

func (s *UserServiceImpl) setActive(ctx context.Context, id string, active bool) error {
	if err := s.guardSelf(ctx, id); err != nil {
		return err
	}
	return s.users.SetActive(ctx, id, active)
}

// Delete implements user.UserService.
func (s *UserServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.guardSelf(ctx, id); err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}

// guardSelf stops an admin from demoting, deactivating or deleting their own account.
func (s *UserServiceImpl) guardSelf(ctx context.Context, id string) error {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	if claims.UserID == id {
		return user.ErrCannotModifySelf
	}
	return nil
}
