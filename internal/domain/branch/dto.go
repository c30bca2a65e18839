package branch

import (
	"strings"
	"time"

	"github.com/timepay/timepay-backend/internal/pkg/validator"
)

// BranchResponse represents the response structure for a branch.
type BranchResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Address     *string   `json:"address,omitempty"`
	City        *string   `json:"city,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Email       *string   `json:"email,omitempty"`
	ManagerID   *string   `json:"manager_id,omitempty"`
	ManagerName *string   `json:"manager_name,omitempty"`
	Departments []string  `json:"departments"`
	IsActive    bool      `json:"is_active"`
	OpeningTime string    `json:"opening_time"`
	ClosingTime string    `json:"closing_time"`
	WorkingDays []int     `json:"working_days"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToResponse(b Branch) BranchResponse {
	departments := b.Departments
	if departments == nil {
		departments = []string{}
	}
	return BranchResponse{
		ID:          b.ID,
		Name:        b.Name,
		Code:        b.Code,
		Address:     b.Address,
		City:        b.City,
		Phone:       b.Phone,
		Email:       b.Email,
		ManagerID:   b.ManagerID,
		ManagerName: b.ManagerName,
		Departments: departments,
		IsActive:    b.IsActive,
		OpeningTime: b.Schedule().Opening.String(),
		ClosingTime: b.Schedule().Closing.String(),
		WorkingDays: b.WorkingDays,
		CreatedAt:   b.CreatedAt,
	}
}

type BranchFilter struct {
	ActiveOnly bool
	Search     *string
}

// CreateBranchRequest represents the request structure for creating a branch.
type CreateBranchRequest struct {
	Name        string   `json:"name"`
	Code        string   `json:"code"`
	Address     *string  `json:"address,omitempty"`
	City        *string  `json:"city,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
	Email       *string  `json:"email,omitempty"`
	ManagerID   *string  `json:"manager_id,omitempty"`
	Departments []string `json:"departments,omitempty"`
	OpeningTime string   `json:"opening_time,omitempty"`
	ClosingTime string   `json:"closing_time,omitempty"`
	WorkingDays []int    `json:"working_days,omitempty"`
}

func (r *CreateBranchRequest) Validate() error {
	var errs validator.ValidationErrors

	// Name
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 100 characters",
		})
	}

	// Code
	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	if !validator.IsValidBranchCode(r.Code) {
		errs = append(errs, validator.ValidationError{
			Field:   "code",
			Message: "code must be 2-20 letters, digits, underscores or hyphens",
		})
	}

	if r.Email != nil && !validator.IsValidEmail(*r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}
	if r.Phone != nil && !validator.IsValidPhoneNumber(*r.Phone) {
		errs = append(errs, validator.ValidationError{
			Field:   "phone",
			Message: "phone must be a valid phone number",
		})
	}
	if r.ManagerID != nil && !validator.IsValidUUID(*r.ManagerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "manager_id",
			Message: "manager_id must be a valid UUID",
		})
	}

	errs = append(errs, validateHours(r.OpeningTime, r.ClosingTime)...)
	errs = append(errs, validateWorkingDays(r.WorkingDays)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateBranchRequest represents the request structure for updating a branch.
type UpdateBranchRequest struct {
	ID          string    `json:"-"`
	Name        *string   `json:"name,omitempty"`
	Code        *string   `json:"code,omitempty"`
	Address     *string   `json:"address,omitempty"`
	City        *string   `json:"city,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Email       *string   `json:"email,omitempty"`
	ManagerID   *string   `json:"manager_id,omitempty"`
	Departments *[]string `json:"departments,omitempty"`
	IsActive    *bool     `json:"is_active,omitempty"`
	OpeningTime *string   `json:"opening_time,omitempty"`
	ClosingTime *string   `json:"closing_time,omitempty"`
	WorkingDays *[]int    `json:"working_days,omitempty"`
}

func (r *UpdateBranchRequest) Validate() error {
	var errs validator.ValidationErrors

	// ID
	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	// Name
	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not be empty",
			})
		}
		if len(*r.Name) > 100 {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not exceed 100 characters",
			})
		}
	}

	if r.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*r.Code))
		r.Code = &code
		if !validator.IsValidBranchCode(code) {
			errs = append(errs, validator.ValidationError{
				Field:   "code",
				Message: "code must be 2-20 letters, digits, underscores or hyphens",
			})
		}
	}
	if r.Email != nil && !validator.IsValidEmail(*r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}

	var opening, closing string
	if r.OpeningTime != nil {
		opening = *r.OpeningTime
	}
	if r.ClosingTime != nil {
		closing = *r.ClosingTime
	}
	errs = append(errs, validateHours(opening, closing)...)
	if r.WorkingDays != nil {
		errs = append(errs, validateWorkingDays(*r.WorkingDays)...)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateHours(opening, closing string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if opening != "" && !validator.IsValidClock(opening) {
		errs = append(errs, validator.ValidationError{Field: "opening_time", Message: "opening_time must be HH:MM"})
	}
	if closing != "" && !validator.IsValidClock(closing) {
		errs = append(errs, validator.ValidationError{Field: "closing_time", Message: "closing_time must be HH:MM"})
	}
	if len(errs) == 0 && opening != "" && closing != "" && closing <= opening {
		errs = append(errs, validator.ValidationError{Field: "closing_time", Message: "closing_time must be after opening_time"})
	}
	return errs
}

func validateWorkingDays(days []int) validator.ValidationErrors {
	for _, d := range days {
		if d < 0 || d > 6 {
			return validator.ValidationErrors{{Field: "working_days", Message: "working_days must contain values 0 (Sunday) to 6 (Saturday)"}}
		}
	}
	return nil
}

type StatsResponse struct {
	BranchID        string         `json:"branch_id"`
	TotalEmployees  int            `json:"total_employees"`
	ActiveEmployees int            `json:"active_employees"`
	Departments     map[string]int `json:"departments"`
	PresentToday    int            `json:"present_today"`
	LateToday       int            `json:"late_today"`
	OnLeaveToday    int            `json:"on_leave_today"`
}
