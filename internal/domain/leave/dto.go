package leave

import (
	"time"

	"github.com/timepay/timepay-backend/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

type LeaveFilter struct {
	EmployeeID *string
	Status     *string
	Type       *string
	BranchID   *string
	Department *string
	From       *string
	To         *string
	Year       *int
	Page       int
	Limit      int
}

func (f *LeaveFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type StatsFilter struct {
	Year       *int
	Month      *int
	BranchID   *string
	Department *string
}

type ApplyLeaveRequest struct {
	EmployeeID         string       `json:"-"`
	LeaveType          string       `json:"leave_type"`
	StartDate          string       `json:"start_date"`
	EndDate            string       `json:"end_date"`
	Reason             string       `json:"reason"`
	IsHalfDay          bool         `json:"is_half_day"`
	HalfDayPeriod      *string      `json:"half_day_period,omitempty"`
	Priority           string       `json:"priority,omitempty"`
	CoveringEmployeeID *string      `json:"covering_employee_id,omitempty"`
	Attachments        []Attachment `json:"attachments,omitempty"`

	start, end time.Time
}

func (r *ApplyLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if !Type(r.LeaveType).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "leave_type", Message: "leave_type is invalid"})
	}
	if d, ok := validator.IsValidDate(r.StartDate); ok {
		r.start = d
	} else {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
	}
	if d, ok := validator.IsValidDate(r.EndDate); ok {
		r.end = d
	} else {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason is required"})
	}
	if r.IsHalfDay {
		if r.HalfDayPeriod == nil || (HalfDayPeriod(*r.HalfDayPeriod) != HalfDayMorning && HalfDayPeriod(*r.HalfDayPeriod) != HalfDayAfternoon) {
			errs = append(errs, validator.ValidationError{Field: "half_day_period", Message: "half_day_period must be morning or afternoon"})
		}
	}
	if r.Priority == "" {
		r.Priority = string(PriorityMedium)
	}
	if !Priority(r.Priority).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "priority", Message: "priority must be low, medium, high or urgent"})
	}
	if r.CoveringEmployeeID != nil && !validator.IsValidUUID(*r.CoveringEmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "covering_employee_id", Message: "covering_employee_id must be a valid UUID"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Dates returns the parsed start and end dates in loc. Call after Validate.
func (r ApplyLeaveRequest) Dates(loc *time.Location) (time.Time, time.Time) {
	in := func(t time.Time) time.Time { return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc) }
	return in(r.start), in(r.end)
}

type ApproveLeaveRequest struct {
	ID       string  `json:"-"`
	Comments *string `json:"comments,omitempty"`
}

type RejectLeaveRequest struct {
	ID       string  `json:"-"`
	Reason   *string `json:"reason,omitempty"`
	Comments *string `json:"comments,omitempty"`
}

// RejectionReason prefers the explicit reason and falls back to comments.
func (r RejectLeaveRequest) RejectionReason() *string {
	if r.Reason != nil && *r.Reason != "" {
		return r.Reason
	}
	return r.Comments
}

type ConfigurationRequest struct {
	ID                        string   `json:"-"`
	Name                      string   `json:"name"`
	Type                      string   `json:"type"`
	MaxDaysPerYear            float64  `json:"max_days_per_year"`
	MaxConsecutiveDays        *float64 `json:"max_consecutive_days,omitempty"`
	CarryForwardAllowed       bool     `json:"carry_forward_allowed"`
	MaxCarryForwardDays       float64  `json:"max_carry_forward_days"`
	RequiresApproval          *bool    `json:"requires_approval,omitempty"`
	MinimumNoticeDays         *int     `json:"minimum_notice_days,omitempty"`
	DocumentRequired          bool     `json:"document_required"`
	AllowHalfDay              *bool    `json:"allow_half_day,omitempty"`
	AllowBackdating           bool     `json:"allow_backdating"`
	MaxBackdatingDays         int      `json:"max_backdating_days"`
	IsPaid                    *bool    `json:"is_paid,omitempty"`
	ApplicablePositions       []string `json:"applicable_positions,omitempty"`
	ApplicableEmploymentTypes []string `json:"applicable_employment_types,omitempty"`
	Description               *string  `json:"description,omitempty"`
	IsActive                  *bool    `json:"is_active,omitempty"`
}

func (r *ConfigurationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}
	if !Type(r.Type).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "type is invalid"})
	}
	if r.MaxDaysPerYear < 0 {
		errs = append(errs, validator.ValidationError{Field: "max_days_per_year", Message: "max_days_per_year must not be negative"})
	}
	if r.MaxConsecutiveDays != nil && *r.MaxConsecutiveDays < 0 {
		errs = append(errs, validator.ValidationError{Field: "max_consecutive_days", Message: "max_consecutive_days must not be negative"})
	}
	if r.MinimumNoticeDays != nil && *r.MinimumNoticeDays < 0 {
		errs = append(errs, validator.ValidationError{Field: "minimum_notice_days", Message: "minimum_notice_days must not be negative"})
	}
	if r.MaxBackdatingDays < 0 {
		errs = append(errs, validator.ValidationError{Field: "max_backdating_days", Message: "max_backdating_days must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToConfiguration applies model defaults for omitted fields.
func (r ConfigurationRequest) ToConfiguration() Configuration {
	boolOr := func(p *bool, def bool) bool {
		if p == nil {
			return def
		}
		return *p
	}
	notice := 1
	if r.MinimumNoticeDays != nil {
		notice = *r.MinimumNoticeDays
	}
	positions := r.ApplicablePositions
	if len(positions) == 0 {
		positions = []string{AllScope}
	}
	types := r.ApplicableEmploymentTypes
	if len(types) == 0 {
		types = []string{AllScope}
	}
	return Configuration{
		ID:                        r.ID,
		Name:                      r.Name,
		Type:                      Type(r.Type),
		MaxDaysPerYear:            r.MaxDaysPerYear,
		MaxConsecutiveDays:        r.MaxConsecutiveDays,
		CarryForwardAllowed:       r.CarryForwardAllowed,
		MaxCarryForwardDays:       r.MaxCarryForwardDays,
		RequiresApproval:          boolOr(r.RequiresApproval, true),
		MinimumNoticeDays:         notice,
		DocumentRequired:          r.DocumentRequired,
		AllowHalfDay:              boolOr(r.AllowHalfDay, true),
		AllowBackdating:           r.AllowBackdating,
		MaxBackdatingDays:         r.MaxBackdatingDays,
		IsPaid:                    boolOr(r.IsPaid, true),
		ApplicablePositions:       positions,
		ApplicableEmploymentTypes: types,
		Description:               r.Description,
		IsActive:                  boolOr(r.IsActive, true),
	}
}

type LeaveResponse struct {
	ID                 string       `json:"id"`
	EmployeeID         string       `json:"employee_id"`
	EmployeeCode       string       `json:"employee_code,omitempty"`
	EmployeeName       string       `json:"employee_name,omitempty"`
	Department         string       `json:"department,omitempty"`
	LeaveType          Type         `json:"leave_type"`
	StartDate          string       `json:"start_date"`
	EndDate            string       `json:"end_date"`
	NumberOfDays       float64      `json:"number_of_days"`
	Reason             string       `json:"reason"`
	Status             Status       `json:"status"`
	Priority           Priority     `json:"priority"`
	IsHalfDay          bool         `json:"is_half_day"`
	HalfDayPeriod      *string      `json:"half_day_period,omitempty"`
	CoveringEmployeeID *string      `json:"covering_employee_id,omitempty"`
	Attachments        []Attachment `json:"attachments"`
	ApprovedBy         *string      `json:"approved_by,omitempty"`
	ApprovalDate       *time.Time   `json:"approval_date,omitempty"`
	ApprovalComments   *string      `json:"approval_comments,omitempty"`
	RejectedBy         *string      `json:"rejected_by,omitempty"`
	RejectionDate      *time.Time   `json:"rejection_date,omitempty"`
	RejectionReason    *string      `json:"rejection_reason,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
}

func ToResponse(r Request) LeaveResponse {
	resp := LeaveResponse{
		ID:                 r.ID,
		EmployeeID:         r.EmployeeID,
		EmployeeCode:       r.EmployeeCode,
		EmployeeName:       r.EmployeeName,
		Department:         r.Department,
		LeaveType:          r.Type,
		StartDate:          r.StartDate.Format(dateLayout),
		EndDate:            r.EndDate.Format(dateLayout),
		NumberOfDays:       r.Days,
		Reason:             r.Reason,
		Status:             r.Status,
		Priority:           r.Priority,
		IsHalfDay:          r.IsHalfDay,
		CoveringEmployeeID: r.CoveringEmployeeID,
		Attachments:        r.Attachments,
		ApprovedBy:         r.ApprovedBy,
		ApprovalDate:       r.ApprovalDate,
		ApprovalComments:   r.ApprovalComments,
		RejectedBy:         r.RejectedBy,
		RejectionDate:      r.RejectionDate,
		RejectionReason:    r.RejectionReason,
		CreatedAt:          r.CreatedAt,
	}
	if r.HalfDayPeriod != nil {
		p := string(*r.HalfDayPeriod)
		resp.HalfDayPeriod = &p
	}
	if resp.Attachments == nil {
		resp.Attachments = []Attachment{}
	}
	return resp
}

type ListLeaveResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Leaves     []LeaveResponse `json:"leaves"`
}

type BalanceResponse struct {
	EmployeeID string           `json:"employee_id"`
	Year       int              `json:"year"`
	Balances   map[Type]Balance `json:"balances"`
}

type TypeStatsResponse struct {
	Total     int     `json:"total"`
	Pending   int     `json:"pending"`
	Approved  int     `json:"approved"`
	Rejected  int     `json:"rejected"`
	Cancelled int     `json:"cancelled"`
	TotalDays float64 `json:"total_days"`
}

type StatsResponse struct {
	TotalRequests int                        `json:"total_requests"`
	Pending       int                        `json:"pending"`
	Approved      int                        `json:"approved"`
	Rejected      int                        `json:"rejected"`
	Cancelled     int                        `json:"cancelled"`
	ByType        map[Type]TypeStatsResponse `json:"by_type"`
}

func ToStatsResponse(s Stats) StatsResponse {
	resp := StatsResponse{
		TotalRequests: s.TotalRequests,
		Pending:       s.Pending,
		Approved:      s.Approved,
		Rejected:      s.Rejected,
		Cancelled:     s.Cancelled,
		ByType:        make(map[Type]TypeStatsResponse, len(s.ByType)),
	}
	for t, ts := range s.ByType {
		resp.ByType[t] = TypeStatsResponse(*ts)
	}
	return resp
}

type ConfigurationResponse struct {
	ID                        string   `json:"id"`
	Name                      string   `json:"name"`
	Type                      Type     `json:"type"`
	MaxDaysPerYear            float64  `json:"max_days_per_year"`
	MaxConsecutiveDays        *float64 `json:"max_consecutive_days,omitempty"`
	CarryForwardAllowed       bool     `json:"carry_forward_allowed"`
	MaxCarryForwardDays       float64  `json:"max_carry_forward_days"`
	RequiresApproval          bool     `json:"requires_approval"`
	MinimumNoticeDays         int      `json:"minimum_notice_days"`
	DocumentRequired          bool     `json:"document_required"`
	AllowHalfDay              bool     `json:"allow_half_day"`
	AllowBackdating           bool     `json:"allow_backdating"`
	MaxBackdatingDays         int      `json:"max_backdating_days"`
	IsPaid                    bool     `json:"is_paid"`
	ApplicablePositions       []string `json:"applicable_positions"`
	ApplicableEmploymentTypes []string `json:"applicable_employment_types"`
	Description               *string  `json:"description,omitempty"`
	IsActive                  bool     `json:"is_active"`
}

func ToConfigurationResponse(c Configuration) ConfigurationResponse {
	return ConfigurationResponse{
		ID:                        c.ID,
		Name:                      c.Name,
		Type:                      c.Type,
		MaxDaysPerYear:            c.MaxDaysPerYear,
		MaxConsecutiveDays:        c.MaxConsecutiveDays,
		CarryForwardAllowed:       c.CarryForwardAllowed,
		MaxCarryForwardDays:       c.MaxCarryForwardDays,
		RequiresApproval:          c.RequiresApproval,
		MinimumNoticeDays:         c.MinimumNoticeDays,
		DocumentRequired:          c.DocumentRequired,
		AllowHalfDay:              c.AllowHalfDay,
		AllowBackdating:           c.AllowBackdating,
		MaxBackdatingDays:         c.MaxBackdatingDays,
		IsPaid:                    c.IsPaid,
		ApplicablePositions:       c.ApplicablePositions,
		ApplicableEmploymentTypes: c.ApplicableEmploymentTypes,
		Description:               c.Description,
		IsActive:                  c.IsActive,
	}
}
