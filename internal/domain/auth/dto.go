package auth

import (
	"github.com/timepay/timepay-backend/internal/domain/employee"
	"github.com/timepay/timepay-backend/internal/domain/user"
	"github.com/timepay/timepay-backend/internal/pkg/validator"
)

func validateEmail(email string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if validator.IsEmpty(email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
		return errs
	}
	if len(email) > 254 {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must not exceed 254 characters",
		})
	}
	if !validator.IsValidEmail(email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address, e.g. user@example.com",
		})
	}
	return errs
}

func validatePassword(field, password string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if validator.IsEmpty(password) {
		errs = append(errs, validator.ValidationError{
			Field:   field,
			Message: field + " is required",
		})
	} else if len(password) < 8 {
		errs = append(errs, validator.ValidationError{
			Field:   field,
			Message: field + " must be at least 8 characters long",
		})
	} else if len(password) > 72 {
		errs = append(errs, validator.ValidationError{
			Field:   field,
			Message: field + " must not exceed 72 characters",
		})
	}
	return errs
}

func validateConfirmation(password, confirm string) validator.ValidationErrors {
	if validator.IsEmpty(confirm) {
		return validator.ValidationErrors{{Field: "confirm_password", Message: "confirm_password is required"}}
	}
	if confirm != password {
		return validator.ValidationErrors{{Field: "confirm_password", Message: "password and confirm_password do not match"}}
	}
	return nil
}

// RegisterRequest creates an employee record and its login in one step.
type RegisterRequest struct {
	Email           string                         `json:"email"`
	Password        string                         `json:"password"`
	ConfirmPassword string                         `json:"confirm_password"`
	Employee        employee.CreateEmployeeRequest `json:"employee"`
}

func (r *RegisterRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateEmail(r.Email)...)
	errs = append(errs, validatePassword("password", r.Password)...)
	errs = append(errs, validateConfirmation(r.Password, r.ConfirmPassword)...)

	r.Employee.Email = &r.Email
	if err := r.Employee.Validate(); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, v := range verrs {
				v.Field = "employee." + v.Field
				errs = append(errs, v)
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateEmail(r.Email)...)
	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshTokenRequest) Validate() error {
	var errs validator.ValidationErrors

	// Refresh Token
	if validator.IsEmpty(r.RefreshToken) {
		errs = append(errs, validator.ValidationError{
			Field:   "refresh_token",
			Message: "refresh_token is required",
		})
	}
	if len(r.RefreshToken) > 2048 {
		errs = append(errs, validator.ValidationError{
			Field:   "refresh_token",
			Message: "refresh_token must not exceed 2048 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r *ForgotPasswordRequest) Validate() error {
	if errs := validateEmail(r.Email); len(errs) > 0 {
		return errs
	}
	return nil
}

type ResetPasswordRequest struct {
	Token           string `json:"-"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *ResetPasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	// Token
	if validator.IsEmpty(r.Token) {
		errs = append(errs, validator.ValidationError{
			Field:   "token",
			Message: "token is required",
		})
	}
	errs = append(errs, validatePassword("password", r.Password)...)
	errs = append(errs, validateConfirmation(r.Password, r.ConfirmPassword)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r *ChangePasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CurrentPassword) {
		errs = append(errs, validator.ValidationError{
			Field:   "current_password",
			Message: "current_password is required",
		})
	}
	errs = append(errs, validatePassword("new_password", r.NewPassword)...)
	if r.NewPassword != "" && r.NewPassword == r.CurrentPassword {
		errs = append(errs, validator.ValidationError{
			Field:   "new_password",
			Message: "new_password must differ from current_password",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SessionTrackingRequest struct {
	UserAgent string
	IPAddress string
}

type TokenResponse struct {
	AccessToken           string            `json:"access_token"`
	AccessTokenExpiresIn  int64             `json:"access_token_expires_in"`
	RefreshToken          string            `json:"refresh_token"`
	RefreshTokenExpiresIn int64             `json:"refresh_token_expires_in"`
	User                  user.UserResponse `json:"user"`
}

type AccessTokenResponse struct {
	AccessToken          string `json:"access_token"`
	AccessTokenExpiresIn int64  `json:"access_token_expires_in"`
}

// MeResponse is the authenticated user with their employee profile.
type MeResponse struct {
	User     user.UserResponse          `json:"user"`
	Employee *employee.EmployeeResponse `json:"employee,omitempty"`
}
