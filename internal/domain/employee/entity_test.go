package employee

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCode(t *testing.T) {
	assert.Equal(t, "EMP00001", FormatCode(1))
	assert.Equal(t, "EMP01234", FormatCode(1234))
	assert.Equal(t, "EMP123456", FormatCode(123456))
}

func TestDefaultLeaveBalance(t *testing.T) {
	b := DefaultLeaveBalance()
	assert.Equal(t, 21.0, b.Entitlement("annual"))
	assert.Equal(t, 10.0, b.Entitlement("sick"))
	assert.Equal(t, 90.0, b.Entitlement("maternity"))
	assert.Zero(t, b.Entitlement("unpaid"))
	assert.Zero(t, b.Entitlement("emergency"))
	assert.Len(t, b.Types(), 7)
}

func TestLeaveBalance_Merge(t *testing.T) {
	base := DefaultLeaveBalance()
	merged, err := base.Merge(LeaveBalance{"annual": 25, "emergency": 3})
	require.NoError(t, err)
	assert.Equal(t, 25.0, merged["annual"])
	assert.Equal(t, 3.0, merged["emergency"])
	assert.Equal(t, 21.0, base["annual"], "original must not change")

	_, err = base.Merge(LeaveBalance{"sick": -1})
	assert.ErrorIs(t, err, ErrNegativeLeaveBalance)
}

func TestEmployee_Defaults(t *testing.T) {
	e := Employee{FirstName: "Nimal", LastName: "Perera"}
	assert.Equal(t, "Nimal Perera", e.FullName())
	assert.Equal(t, 8.0, e.StandardHours())
	assert.Equal(t, 1.5, e.OvertimeMultiplier())

	e.WorkingHoursPerDay = 6
	e.OvertimeRate = 2
	assert.Equal(t, 6.0, e.StandardHours())
	assert.Equal(t, 2.0, e.OvertimeMultiplier())
}

func TestCreateEmployeeRequest_Validate(t *testing.T) {
	valid := CreateEmployeeRequest{
		FirstName:   "Nimal",
		LastName:    "Perera",
		Position:    "cashier",
		Department:  "Sales",
		BranchID:    "0190a5d2-7a3c-7b1e-8f00-1234567890ab",
		JoiningDate: "2024-01-15",
		BaseSalary:  decimal.NewFromInt(85000),
		Allowances:  []PayComponent{{Name: "Transport", Type: ComponentFixed, Amount: decimal.NewFromInt(5000)}},
	}
	require.NoError(t, valid.Validate())
	assert.Equal(t, string(EmploymentTypeFullTime), valid.EmploymentType)

	invalid := valid
	invalid.Position = "astronaut"
	invalid.BaseSalary = decimal.Zero
	invalid.Deductions = []PayComponent{{Name: "Loan", Type: "weird", Amount: decimal.NewFromInt(-1)}}
	err := invalid.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "position")
	assert.Contains(t, err.Error(), "base_salary")
	assert.Contains(t, err.Error(), "deductions")
}

func TestUpdateEmployeeRequest_Apply(t *testing.T) {
	e := Employee{FirstName: "Nimal", Position: PositionCashier, LeaveBalance: DefaultLeaveBalance()}
	dept := "Logistics"
	pos := "driver"
	salary := decimal.NewFromInt(90000)
	req := UpdateEmployeeRequest{
		Department:   &dept,
		Position:     &pos,
		BaseSalary:   &salary,
		LeaveBalance: LeaveBalance{"annual": 14},
	}
	require.NoError(t, req.Apply(&e))
	assert.Equal(t, "Logistics", e.Department)
	assert.Equal(t, PositionDriver, e.Position)
	assert.True(t, e.BaseSalary.Equal(salary))
	assert.Equal(t, 14.0, e.LeaveBalance["annual"])
	assert.Equal(t, 10.0, e.LeaveBalance["sick"])
}

func TestCreateEmployeeRequest_Build_Defaults(t *testing.T) {
	dob := "1990-05-01"
	req := CreateEmployeeRequest{
		FirstName:    " Nimal ",
		LastName:     "Perera",
		DateOfBirth:  &dob,
		Position:     string(PositionCashier),
		Department:   "Sales",
		BranchID:     "0190a6c4-0000-7000-8000-000000000001",
		JoiningDate:  "2024-02-01",
		BaseSalary:   decimal.NewFromInt(60000),
		LeaveBalance: LeaveBalance{"annual": 14},
	}

	e, err := req.Build("EMP00007")
	require.NoError(t, err)

	assert.Equal(t, "EMP00007", e.EmployeeCode)
	assert.Equal(t, "Nimal", e.FirstName)
	assert.Equal(t, StatusActive, e.Status)
	assert.Equal(t, EmploymentTypeFullTime, e.EmploymentType)
	assert.Equal(t, DefaultCurrency, e.Currency)
	assert.Equal(t, DefaultWorkingHoursPerDay, e.WorkingHoursPerDay)
	assert.True(t, e.EPFEmployee.Equal(DefaultEPFEmployee))
	assert.Equal(t, 14.0, e.LeaveBalance.Entitlement("annual"))
	assert.Equal(t, 10.0, e.LeaveBalance.Entitlement("sick"))
	assert.True(t, e.OldEnough())
}

func TestEmployee_OldEnough(t *testing.T) {
	dob := time.Date(2010, time.March, 1, 0, 0, 0, 0, time.UTC)
	e := Employee{DateOfBirth: &dob, JoiningDate: time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC)}
	assert.False(t, e.OldEnough())

	e.JoiningDate = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, e.OldEnough())
}
