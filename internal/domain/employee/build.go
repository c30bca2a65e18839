package employee

import (
	"strings"
	"time"
)

// Build turns a validated create request into a new active employee with code
// and the default compensation and leave settings filled in.
func (r CreateEmployeeRequest) Build(code string) (Employee, error) {
	e := Employee{
		EmployeeCode:     code,
		UserID:           r.UserID,
		FirstName:        strings.TrimSpace(r.FirstName),
		LastName:         strings.TrimSpace(r.LastName),
		Email:            r.Email,
		Phone:            r.Phone,
		MaritalStatus:    r.MaritalStatus,
		Nationality:      r.Nationality,
		NationalID:       r.NationalID,
		Address:          r.Address,
		City:             r.City,
		EmergencyContact: r.EmergencyContact,

		Position:           Position(r.Position),
		Department:         strings.TrimSpace(r.Department),
		BranchID:           r.BranchID,
		ManagerID:          r.ManagerID,
		EmploymentType:     EmploymentType(r.EmploymentType),
		Status:             StatusActive,
		WorkingHoursPerDay: DefaultWorkingHoursPerDay,
		OvertimeRate:       DefaultOvertimeRate,

		BaseSalary:  r.BaseSalary,
		Currency:    r.Currency,
		Allowances:  r.Allowances,
		Deductions:  r.Deductions,
		EPFEmployee: DefaultEPFEmployee,
		EPFEmployer: DefaultEPFEmployer,
		ETF:         DefaultETF,
		BankDetails: r.BankDetails,
	}

	if e.EmploymentType == "" {
		e.EmploymentType = EmploymentTypeFullTime
	}
	if e.Currency == "" {
		e.Currency = DefaultCurrency
	}
	if r.WorkingHoursPerDay != nil {
		e.WorkingHoursPerDay = *r.WorkingHoursPerDay
	}
	if r.OvertimeRate != nil {
		e.OvertimeRate = *r.OvertimeRate
	}
	if r.EPFEmployee != nil {
		e.EPFEmployee = *r.EPFEmployee
	}
	if r.EPFEmployer != nil {
		e.EPFEmployer = *r.EPFEmployer
	}
	if r.ETF != nil {
		e.ETF = *r.ETF
	}
	if r.Gender != nil {
		g := Gender(*r.Gender)
		e.Gender = &g
	}

	var err error
	if e.JoiningDate, err = time.Parse("2006-01-02", r.JoiningDate); err != nil {
		return Employee{}, err
	}
	if e.DateOfBirth, err = parseOptionalDate(r.DateOfBirth); err != nil {
		return Employee{}, err
	}
	if e.ProbationEndDate, err = parseOptionalDate(r.ProbationEndDate); err != nil {
		return Employee{}, err
	}
	if e.ContractEndDate, err = parseOptionalDate(r.ContractEndDate); err != nil {
		return Employee{}, err
	}

	if e.LeaveBalance, err = DefaultLeaveBalance().Merge(r.LeaveBalance); err != nil {
		return Employee{}, err
	}

	return e, nil
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// MinimumAge is the youngest an employee may be on their joining date.
const MinimumAge = 16

// OldEnough reports whether e is at least MinimumAge on the joining date.
// Employees without a date of birth pass.
func (e Employee) OldEnough() bool {
	if e.DateOfBirth == nil {
		return true
	}
	return !e.DateOfBirth.AddDate(MinimumAge, 0, 0).After(e.JoiningDate)
}
