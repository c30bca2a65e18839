package payroll

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/timepay/timepay-backend/internal/pkg/validator"
)

type PayrollFilter struct {
	EmployeeID *string
	Month      *int
	Year       *int
	Status     *string
	BranchID   *string
	Department *string
	Page       int
	Limit      int
}

func (f *PayrollFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

type LineItemRequest struct {
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

func toLineItems(reqs []LineItemRequest) []LineItem {
	items := make([]LineItem, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, LineItem{Name: r.Name, Type: ItemType(r.Type), Amount: r.Amount, Description: r.Description})
	}
	return items
}

func validateItems(field string, reqs []LineItemRequest) validator.ValidationErrors {
	var errs validator.ValidationErrors
	for _, r := range reqs {
		if validator.IsEmpty(r.Name) {
			errs = append(errs, validator.ValidationError{Field: field, Message: "each item requires a name"})
		}
		if ItemType(r.Type) != ItemFixed && ItemType(r.Type) != ItemPercentage {
			errs = append(errs, validator.ValidationError{Field: field, Message: "type must be fixed or percentage"})
		}
		if r.Amount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field, Message: "amount must not be negative"})
		}
	}
	return errs
}

func validatePeriod(month, year int) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if !validator.IsValidMonth(month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be between 1 and 12"})
	}
	if !validator.IsValidYear(year) {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "year is out of range"})
	}
	return errs
}

func validateNonNegative(field string, v *decimal.Decimal) validator.ValidationErrors {
	if v != nil && v.IsNegative() {
		return validator.ValidationErrors{{Field: field, Message: field + " must not be negative"}}
	}
	return nil
}

type GenerateRequest struct {
	EmployeeID     string            `json:"employee_id"`
	Month          int               `json:"month"`
	Year           int               `json:"year"`
	Bonus          *decimal.Decimal  `json:"bonus,omitempty"`
	Tax            *decimal.Decimal  `json:"tax,omitempty"`
	Allowances     []LineItemRequest `json:"allowances,omitempty"`
	Deductions     []LineItemRequest `json:"deductions,omitempty"`
	UnpaidLeave    *float64          `json:"unpaid_leave_days,omitempty"`
	LeaveDeduction *decimal.Decimal  `json:"leave_deduction,omitempty"`
	Notes          *string           `json:"notes,omitempty"`
}

func (r *GenerateRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id must be a valid UUID"})
	}
	errs = append(errs, validatePeriod(r.Month, r.Year)...)
	errs = append(errs, validateNonNegative("bonus", r.Bonus)...)
	errs = append(errs, validateNonNegative("tax", r.Tax)...)
	errs = append(errs, validateNonNegative("leave_deduction", r.LeaveDeduction)...)
	errs = append(errs, validateItems("allowances", r.Allowances)...)
	errs = append(errs, validateItems("deductions", r.Deductions)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Inputs converts the request's one-off adjustments.
func (r GenerateRequest) Inputs() Inputs {
	in := Inputs{
		Bonus:      valueOrZero(r.Bonus),
		Tax:        valueOrZero(r.Tax),
		Allowances: toLineItems(r.Allowances),
		Deductions: toLineItems(r.Deductions),
		Leave:      LeaveDeduction{Amount: valueOrZero(r.LeaveDeduction)},
		Notes:      r.Notes,
	}
	if r.UnpaidLeave != nil {
		in.Leave.UnpaidDays = *r.UnpaidLeave
	}
	return in
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

type BulkGenerateRequest struct {
	Month    int     `json:"month"`
	Year     int     `json:"year"`
	BranchID *string `json:"branch_id,omitempty"`
}

func (r *BulkGenerateRequest) Validate() error {
	errs := validatePeriod(r.Month, r.Year)
	if r.BranchID != nil && !validator.IsValidUUID(*r.BranchID) {
		errs = append(errs, validator.ValidationError{Field: "branch_id", Message: "branch_id must be a valid UUID"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BulkStatus string

const (
	BulkSuccess       BulkStatus = "success"
	BulkAlreadyExists BulkStatus = "already_exists"
	BulkError         BulkStatus = "error"
)

type BulkResult struct {
	EmployeeID   string     `json:"employee_id"`
	EmployeeCode string     `json:"employee_code"`
	Status       BulkStatus `json:"status"`
	Message      string     `json:"message,omitempty"`
	PayrollID    string     `json:"payroll_id,omitempty"`
}

type BulkGenerateResponse struct {
	Month         int          `json:"month"`
	Year          int          `json:"year"`
	Generated     int          `json:"generated"`
	AlreadyExists int          `json:"already_exists"`
	Failed        int          `json:"failed"`
	Results       []BulkResult `json:"results"`
}

// UpdateRequest changes the editable inputs of a draft or pending payroll.
type UpdateRequest struct {
	ID             string             `json:"-"`
	Bonus          *decimal.Decimal   `json:"bonus,omitempty"`
	Tax            *decimal.Decimal   `json:"tax,omitempty"`
	Allowances     *[]LineItemRequest `json:"allowances,omitempty"`
	Deductions     *[]LineItemRequest `json:"deductions,omitempty"`
	UnpaidLeave    *float64           `json:"unpaid_leave_days,omitempty"`
	LeaveDeduction *decimal.Decimal   `json:"leave_deduction,omitempty"`
	Notes          *string            `json:"notes,omitempty"`
	Submit         bool               `json:"submit,omitempty"`
}

func (r *UpdateRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	errs = append(errs, validateNonNegative("bonus", r.Bonus)...)
	errs = append(errs, validateNonNegative("tax", r.Tax)...)
	errs = append(errs, validateNonNegative("leave_deduction", r.LeaveDeduction)...)
	if r.Allowances != nil {
		errs = append(errs, validateItems("allowances", *r.Allowances)...)
	}
	if r.Deductions != nil {
		errs = append(errs, validateItems("deductions", *r.Deductions)...)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Apply copies the set inputs onto p. Derived fields are left for Derive.
func (r UpdateRequest) Apply(p *Payroll) error {
	if !p.Status.Editable() {
		return ErrNotEditable
	}
	if r.Bonus != nil {
		p.Bonus = *r.Bonus
	}
	if r.Tax != nil {
		p.Tax = *r.Tax
	}
	if r.Allowances != nil {
		p.Allowances = toLineItems(*r.Allowances)
	}
	if r.Deductions != nil {
		p.Deductions = toLineItems(*r.Deductions)
	}
	if r.UnpaidLeave != nil {
		p.LeaveDeduction.UnpaidDays = *r.UnpaidLeave
	}
	if r.LeaveDeduction != nil {
		p.LeaveDeduction.Amount = *r.LeaveDeduction
	}
	if r.Notes != nil {
		p.Notes = r.Notes
	}
	if r.Submit {
		return p.Submit()
	}
	return nil
}

type ApproveRequest struct {
	ID            string `json:"-"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

type PayRequest struct {
	ID               string  `json:"-"`
	PaymentReference *string `json:"payment_reference,omitempty"`
}

type LineItemResponse struct {
	Name             string          `json:"name"`
	Type             ItemType        `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	CalculatedAmount decimal.Decimal `json:"calculated_amount"`
	Description      string          `json:"description,omitempty"`
}

type PayrollResponse struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeCode string `json:"employee_code,omitempty"`
	EmployeeName string `json:"employee_name,omitempty"`
	Position     string `json:"position,omitempty"`
	Department   string `json:"department,omitempty"`
	BranchID     string `json:"branch_id"`
	BranchName   string `json:"branch_name,omitempty"`
	Month        int    `json:"month"`
	Year         int    `json:"year"`

	WorkingDays   int     `json:"working_days"`
	PresentDays   int     `json:"present_days"`
	AbsentDays    int     `json:"absent_days"`
	LeaveDays     int     `json:"leave_days"`
	Holidays      int     `json:"holidays"`
	Weekends      int     `json:"weekends"`
	RegularHours  float64 `json:"regular_hours"`
	OvertimeHours float64 `json:"overtime_hours"`

	BaseSalary      decimal.Decimal    `json:"base_salary"`
	Allowances      []LineItemResponse `json:"allowances"`
	Deductions      []LineItemResponse `json:"deductions"`
	Bonus           decimal.Decimal    `json:"bonus"`
	Overtime        OvertimeResponse   `json:"overtime"`
	LateDeduction   MinuteResponse     `json:"late_deduction"`
	EarlyLeave      MinuteResponse     `json:"early_leave_deduction"`
	LeaveDeduction  LeaveResponse      `json:"leave_deduction"`
	Tax             decimal.Decimal    `json:"tax"`
	EPF             EPFResponse        `json:"epf"`
	ETF             ETFResponse        `json:"etf"`
	TotalAllowances decimal.Decimal    `json:"total_allowances"`
	GrossSalary     decimal.Decimal    `json:"gross_salary"`
	TotalDeductions decimal.Decimal    `json:"total_deductions"`
	NetSalary       decimal.Decimal    `json:"net_salary"`

	PaymentStatus    Status        `json:"payment_status"`
	PaymentMethod    PaymentMethod `json:"payment_method"`
	PaymentDate      *time.Time    `json:"payment_date,omitempty"`
	PaymentReference *string       `json:"payment_reference,omitempty"`
	ApprovedBy       *string       `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time    `json:"approved_at,omitempty"`
	GeneratedBy      *string       `json:"generated_by,omitempty"`
	Notes            *string       `json:"notes,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

type OvertimeResponse struct {
	Hours  float64         `json:"hours"`
	Rate   float64         `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

type MinuteResponse struct {
	Minutes int             `json:"minutes"`
	Amount  decimal.Decimal `json:"amount"`
}

type LeaveResponse struct {
	UnpaidDays float64         `json:"unpaid_days"`
	Amount     decimal.Decimal `json:"amount"`
}

type EPFResponse struct {
	EmployeePercentage   decimal.Decimal `json:"employee_percentage"`
	EmployerPercentage   decimal.Decimal `json:"employer_percentage"`
	EmployeeContribution decimal.Decimal `json:"employee_contribution"`
	EmployerContribution decimal.Decimal `json:"employer_contribution"`
	TotalContribution    decimal.Decimal `json:"total_contribution"`
}

type ETFResponse struct {
	Percentage           decimal.Decimal `json:"percentage"`
	EmployerContribution decimal.Decimal `json:"employer_contribution"`
}

func toItemResponses(items []LineItem) []LineItemResponse {
	out := make([]LineItemResponse, 0, len(items))
	for _, i := range items {
		out = append(out, LineItemResponse(i))
	}
	return out
}

func ToResponse(p Payroll) PayrollResponse {
	return PayrollResponse{
		ID:           p.ID,
		EmployeeID:   p.EmployeeID,
		EmployeeCode: p.EmployeeCode,
		EmployeeName: p.EmployeeName,
		Position:     p.Position,
		Department:   p.Department,
		BranchID:     p.BranchID,
		BranchName:   p.BranchName,
		Month:        p.Month,
		Year:         p.Year,

		WorkingDays:   p.Attendance.WorkingDays,
		PresentDays:   p.Attendance.PresentDays,
		AbsentDays:    p.Attendance.AbsentDays,
		LeaveDays:     p.Attendance.LeaveDays,
		Holidays:      p.Attendance.Holidays,
		Weekends:      p.Attendance.Weekends,
		RegularHours:  p.Attendance.RegularHours,
		OvertimeHours: p.Attendance.OvertimeHours,

		BaseSalary:      p.BaseSalary,
		Allowances:      toItemResponses(p.Allowances),
		Deductions:      toItemResponses(p.Deductions),
		Bonus:           p.Bonus,
		Overtime:        OvertimeResponse(p.Overtime),
		LateDeduction:   MinuteResponse(p.Late),
		EarlyLeave:      MinuteResponse(p.EarlyLeave),
		LeaveDeduction:  LeaveResponse(p.LeaveDeduction),
		Tax:             p.Tax,
		EPF:             EPFResponse(p.EPF),
		ETF:             ETFResponse(p.ETF),
		TotalAllowances: p.TotalAllowances,
		GrossSalary:     p.GrossSalary,
		TotalDeductions: p.TotalDeductions,
		NetSalary:       p.NetSalary,

		PaymentStatus:    p.Status,
		PaymentMethod:    p.PaymentMethod,
		PaymentDate:      p.PaymentDate,
		PaymentReference: p.PaymentReference,
		ApprovedBy:       p.ApprovedBy,
		ApprovedAt:       p.ApprovedAt,
		GeneratedBy:      p.GeneratedBy,
		Notes:            p.Notes,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

type ListPayrollResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Payrolls   []PayrollResponse `json:"payrolls"`
}

type StatsResponse struct {
	Count           int             `json:"count"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalNet        decimal.Decimal `json:"total_net"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalEPF        decimal.Decimal `json:"total_epf"`
	TotalETF        decimal.Decimal `json:"total_etf"`
	TotalOvertime   decimal.Decimal `json:"total_overtime"`
	ByStatus        map[Status]int  `json:"by_status"`
}

func ToStatsResponse(s Stats) StatsResponse {
	return StatsResponse(s)
}
