package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the payroll lifecycle: draft → pending → approved → paid, with
// cancelled reachable from any state before paid.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// Editable reports whether inputs may still change.
func (s Status) Editable() bool {
	return s == StatusDraft || s == StatusPending
}

type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodOnline       PaymentMethod = "online"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodCash, PaymentMethodCheque, PaymentMethodOnline:
		return true
	}
	return false
}

type ItemType string

const (
	ItemFixed      ItemType = "fixed"
	ItemPercentage ItemType = "percentage"
)

// LineItem is an allowance or deduction. CalculatedAmount is derived.
type LineItem struct {
	Name             string          `json:"name"`
	Type             ItemType        `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	CalculatedAmount decimal.Decimal `json:"calculated_amount"`
	Description      string          `json:"description,omitempty"`
}

type Overtime struct {
	Hours  float64
	Rate   float64
	Amount decimal.Decimal
}

type MinuteDeduction struct {
	Minutes int
	Amount  decimal.Decimal
}

type LeaveDeduction struct {
	UnpaidDays float64
	Amount     decimal.Decimal
}

type EPF struct {
	EmployeePercentage   decimal.Decimal
	EmployerPercentage   decimal.Decimal
	EmployeeContribution decimal.Decimal
	EmployerContribution decimal.Decimal
	TotalContribution    decimal.Decimal
}

type ETF struct {
	Percentage           decimal.Decimal
	EmployerContribution decimal.Decimal
}

// AttendanceSnapshot freezes the month's attendance aggregates on the payslip.
type AttendanceSnapshot struct {
	WorkingDays   int     `json:"working_days"`
	PresentDays   int     `json:"present_days"`
	AbsentDays    int     `json:"absent_days"`
	LeaveDays     int     `json:"leave_days"`
	Holidays      int     `json:"holidays"`
	Weekends      int     `json:"weekends"`
	RegularHours  float64 `json:"regular_hours"`
	OvertimeHours float64 `json:"overtime_hours"`
}

type Payroll struct {
	ID         string
	EmployeeID string
	BranchID   string
	Month      int
	Year       int

	Attendance     AttendanceSnapshot
	BaseSalary     decimal.Decimal
	Allowances     []LineItem
	Deductions     []LineItem
	Bonus          decimal.Decimal
	Overtime       Overtime
	Late           MinuteDeduction
	EarlyLeave     MinuteDeduction
	LeaveDeduction LeaveDeduction
	Tax            decimal.Decimal
	EPF            EPF
	ETF            ETF

	// Derived
	TotalAllowances decimal.Decimal
	GrossSalary     decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal

	Status           Status
	PaymentMethod    PaymentMethod
	PaymentDate      *time.Time
	PaymentReference *string
	ApprovedBy       *string
	ApprovedAt       *time.Time
	GeneratedBy      *string
	Notes            *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined
	EmployeeCode   string
	EmployeeName   string
	EmployeeUserID *string
	Position       string
	Department     string
	BranchName     string
	BankDetails    *BankAccount
}

// BankAccount is the employee's payout account as joined for exports.
type BankAccount struct {
	AccountName   string
	AccountNumber string
	BankName      string
	Branch        string
}

// Approve moves a draft or pending payroll to approved.
func (p *Payroll) Approve(actorID string, method PaymentMethod, at time.Time) error {
	if !p.Status.Editable() {
		return ErrInvalidTransition
	}
	if method == "" {
		method = PaymentMethodBankTransfer
	}
	if !method.IsValid() {
		return ErrInvalidPaymentMethod
	}
	p.Status = StatusApproved
	p.ApprovedBy = &actorID
	p.ApprovedAt = &at
	p.PaymentMethod = method
	return nil
}

// MarkPaid requires an approved payroll.
func (p *Payroll) MarkPaid(reference *string, at time.Time) error {
	if p.Status != StatusApproved {
		return ErrNotApproved
	}
	p.Status = StatusPaid
	p.PaymentDate = &at
	p.PaymentReference = reference
	return nil
}

func (p *Payroll) Cancel() error {
	switch p.Status {
	case StatusPaid:
		return ErrAlreadyPaid
	case StatusCancelled:
		return ErrInvalidTransition
	}
	p.Status = StatusCancelled
	return nil
}

// Submit moves a draft to pending review.
func (p *Payroll) Submit() error {
	if p.Status != StatusDraft {
		return ErrInvalidTransition
	}
	p.Status = StatusPending
	return nil
}

// Period returns the first day of the payroll month in loc.
func (p Payroll) Period(loc *time.Location) time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, loc)
}

type Stats struct {
	Count           int
	TotalGross      decimal.Decimal
	TotalNet        decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalEPF        decimal.Decimal
	TotalETF        decimal.Decimal
	TotalOvertime   decimal.Decimal
	ByStatus        map[Status]int
}

// Aggregate sums derived totals across payrolls. EPF counts both shares.
func Aggregate(payrolls []Payroll) Stats {
	s := Stats{ByStatus: make(map[Status]int)}
	for _, p := range payrolls {
		s.Count++
		s.TotalGross = s.TotalGross.Add(p.GrossSalary)
		s.TotalNet = s.TotalNet.Add(p.NetSalary)
		s.TotalDeductions = s.TotalDeductions.Add(p.TotalDeductions)
		s.TotalEPF = s.TotalEPF.Add(p.EPF.TotalContribution)
		s.TotalETF = s.TotalETF.Add(p.ETF.EmployerContribution)
		s.TotalOvertime = s.TotalOvertime.Add(p.Overtime.Amount)
		s.ByStatus[p.Status]++
	}
	return s
}
