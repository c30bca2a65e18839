package payslip

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timepay/timepay-backend/internal/domain/payroll"
)

func TestRender(t *testing.T) {
	p := payroll.Derive(payroll.Payroll{
		EmployeeID:   "emp-1",
		EmployeeName: "Nimal Perera",
		EmployeeCode: "EMP00001",
		Month:        3,
		Year:         2025,
		BaseSalary:   decimal.NewFromInt(100000),
		EPF:          payroll.EPF{EmployeePercentage: decimal.NewFromInt(8), EmployerPercentage: decimal.NewFromInt(12)},
		ETF:          payroll.ETF{Percentage: decimal.NewFromInt(3)},
		Status:       payroll.StatusApproved,
	})

	out, err := Render(p, "TimePay Stores")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "payslip_emp-1_3_2025.pdf", Filename(payroll.Payroll{EmployeeID: "emp-1", Month: 3, Year: 2025}))
}
