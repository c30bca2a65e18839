package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID           string
	EmployeeCode string
	UserID       *string

	// Personal
	FirstName        string
	LastName         string
	Email            *string
	Phone            *string
	DateOfBirth      *time.Time
	Gender           *Gender
	MaritalStatus    *string
	Nationality      *string
	NationalID       *string
	Address          *string
	City             *string
	EmergencyContact *EmergencyContact
	AvatarURL        *string

	// Employment
	Position           Position
	Department         string
	BranchID           string
	ManagerID          *string
	JoiningDate        time.Time
	EmploymentType     EmploymentType
	Status             Status
	ProbationEndDate   *time.Time
	ContractEndDate    *time.Time
	WorkingHoursPerDay float64
	OvertimeRate       float64

	// Compensation
	BaseSalary   decimal.Decimal
	Currency     string
	Allowances   []PayComponent
	Deductions   []PayComponent
	EPFEmployee  decimal.Decimal
	EPFEmployer  decimal.Decimal
	ETF          decimal.Decimal
	BankDetails  *BankDetails
	LeaveBalance LeaveBalance

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time

	// Joined
	BranchName *string
}

func (e Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// StandardHours is the per-day hour budget used to split regular and overtime.
func (e Employee) StandardHours() float64 {
	if e.WorkingHoursPerDay <= 0 {
		return 8
	}
	return e.WorkingHoursPerDay
}

func (e Employee) OvertimeMultiplier() float64 {
	if e.OvertimeRate <= 0 {
		return DefaultOvertimeRate
	}
	return e.OvertimeRate
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

type Position string

const (
	PositionSalesman   Position = "salesman"
	PositionDriver     Position = "driver"
	PositionSupervisor Position = "supervisor"
	PositionCleaner    Position = "cleaner"
	PositionSecurity   Position = "security"
	PositionCashier    Position = "cashier"
	PositionManager    Position = "manager"
	PositionAccountant Position = "accountant"
	PositionAdmin      Position = "admin"
	PositionOther      Position = "other"
)

func (p Position) IsValid() bool {
	switch p {
	case PositionSalesman, PositionDriver, PositionSupervisor, PositionCleaner, PositionSecurity,
		PositionCashier, PositionManager, PositionAccountant, PositionAdmin, PositionOther:
		return true
	}
	return false
}

type EmploymentType string

const (
	EmploymentTypeFullTime EmploymentType = "full-time"
	EmploymentTypePartTime EmploymentType = "part-time"
	EmploymentTypeContract EmploymentType = "contract"
	EmploymentTypeIntern   EmploymentType = "intern"
)

func (t EmploymentType) IsValid() bool {
	switch t {
	case EmploymentTypeFullTime, EmploymentTypePartTime, EmploymentTypeContract, EmploymentTypeIntern:
		return true
	}
	return false
}

type Status string

const (
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusTerminated Status = "terminated"
	StatusOnLeave    Status = "on-leave"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusTerminated, StatusOnLeave:
		return true
	}
	return false
}

type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone"`
}

type BankDetails struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	Branch        string `json:"branch,omitempty"`
	Code          string `json:"code,omitempty"`
}

type ComponentType string

const (
	ComponentFixed      ComponentType = "fixed"
	ComponentPercentage ComponentType = "percentage"
)

// PayComponent is a standing allowance or deduction on an employee's compensation plan.
type PayComponent struct {
	Name        string          `json:"name"`
	Type        ComponentType   `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

const (
	DefaultOvertimeRate       = 1.5
	DefaultWorkingHoursPerDay = 8.0
	DefaultCurrency           = "LKR"
	codePrefix                = "EMP"
)

var (
	DefaultEPFEmployee = decimal.NewFromInt(8)
	DefaultEPFEmployer = decimal.NewFromInt(12)
	DefaultETF         = decimal.NewFromInt(3)
)

type Document struct {
	ID         string
	EmployeeID string
	Name       string
	Type       string
	URL        string
	UploadedAt time.Time
}

// HistoryEntry is one row of the append-only leave audit trail.
type HistoryEntry struct {
	ID         string
	EmployeeID string
	LeaveID    *string
	LeaveType  string
	StartDate  time.Time
	EndDate    time.Time
	Days       float64
	Status     string
	ActorID    *string
	Reason     *string
	RecordedAt time.Time
}
