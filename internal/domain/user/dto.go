package user

import (
	"time"

	"github.com/timepay/timepay-backend/internal/pkg/validator"
)

type UserFilter struct {
	Role     *string
	IsActive *bool
	Search   *string
	Page     int
	Limit    int
}

type CreateUserRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Role       string  `json:"role"`
	EmployeeID *string `json:"employee_id,omitempty"`
}

func (r *CreateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "email is required"})
	} else if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "email must be a valid email address"})
	}
	if len(r.Password) < 8 {
		errs = append(errs, validator.ValidationError{Field: "password", Message: "password must be at least 8 characters long"})
	}
	if !Role(r.Role).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "role", Message: "role is invalid"})
	}
	if r.EmployeeID != nil && !validator.IsValidUUID(*r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id must be a valid UUID"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateUserRequest struct {
	ID    string  `json:"-"`
	Email *string `json:"email,omitempty"`
	Role  *string `json:"role,omitempty"`
}

func (r *UpdateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Email != nil && !validator.IsValidEmail(*r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "email must be a valid email address"})
	}
	if r.Role != nil && !Role(*r.Role).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "role", Message: "role is invalid"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateUserRoleRequest struct {
	ID   string `json:"-"`
	Role string `json:"role"`
}

func (r *UpdateUserRoleRequest) Validate() error {
	if !Role(r.Role).IsValid() {
		return validator.ValidationErrors{{Field: "role", Message: "role is invalid"}}
	}
	return nil
}

type UserResponse struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	EmployeeID   *string    `json:"employee_id,omitempty"`
	EmployeeCode *string    `json:"employee_code,omitempty"`
	FullName     *string    `json:"full_name,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToResponse strips credentials from u.
func ToResponse(u User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Role:         u.Role,
		IsActive:     u.IsActive,
		EmployeeID:   u.EmployeeID,
		EmployeeCode: u.EmployeeCode,
		FullName:     u.FullName,
		LastLogin:    u.LastLogin,
		CreatedAt:    u.CreatedAt,
	}
}

type ListUserResponse struct {
	Users      []UserResponse `json:"users"`
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}
