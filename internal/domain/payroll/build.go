package payroll

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/timepay/timepay-backend/internal/domain/attendance"
	"github.com/timepay/timepay-backend/internal/domain/employee"
)

// Inputs are the one-off adjustments supplied when a payslip is generated.
type Inputs struct {
	Bonus      decimal.Decimal
	Tax        decimal.Decimal
	Allowances []LineItem
	Deductions []LineItem
	Leave      LeaveDeduction
	Notes      *string
}

// DaysIn returns the number of calendar days in month.
func DaysIn(month, year int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// HourlyRate spreads the base salary over every calendar day of the month.
func HourlyRate(base decimal.Decimal, workingDays int, hoursPerDay float64) decimal.Decimal {
	if workingDays <= 0 || hoursPerDay <= 0 {
		return decimal.Zero
	}
	return base.Div(decimal.NewFromInt(int64(workingDays)).Mul(decimal.NewFromFloat(hoursPerDay)))
}

// Build assembles an underived draft payroll for emp from the month's
// attendance summary and the supplied inputs. Callers run Derive before
// persisting.
func Build(emp employee.Employee, summary attendance.MonthlySummary, month, year int, in Inputs) Payroll {
	workingDays := DaysIn(month, year)
	hourly := HourlyRate(emp.BaseSalary, workingDays, emp.StandardHours())
	rate := emp.OvertimeMultiplier()

	overtimeHours := decimal.NewFromFloat(summary.OvertimeHours)
	minutesToHours := func(m int) decimal.Decimal {
		return decimal.NewFromInt(int64(m)).Div(decimal.NewFromInt(60))
	}

	allowances := make([]LineItem, 0, len(emp.Allowances)+len(in.Allowances))
	for _, a := range emp.Allowances {
		allowances = append(allowances, fromComponent(a))
	}
	allowances = append(allowances, in.Allowances...)

	deductions := make([]LineItem, 0, len(emp.Deductions)+len(in.Deductions))
	for _, d := range emp.Deductions {
		deductions = append(deductions, fromComponent(d))
	}
	deductions = append(deductions, in.Deductions...)

	return Payroll{
		EmployeeID: emp.ID,
		BranchID:   emp.BranchID,
		Month:      month,
		Year:       year,
		Attendance: AttendanceSnapshot{
			WorkingDays:   workingDays,
			PresentDays:   summary.PresentDays,
			AbsentDays:    summary.AbsentDays,
			LeaveDays:     summary.LeaveDays,
			Holidays:      summary.HolidayDays,
			Weekends:      summary.WeekendDays,
			RegularHours:  summary.RegularHours,
			OvertimeHours: summary.OvertimeHours,
		},
		BaseSalary: emp.BaseSalary,
		Allowances: allowances,
		Deductions: deductions,
		Bonus:      in.Bonus,
		Tax:        in.Tax,
		Overtime: Overtime{
			Hours:  summary.OvertimeHours,
			Rate:   rate,
			Amount: money(overtimeHours.Mul(hourly).Mul(decimal.NewFromFloat(rate))),
		},
		Late: MinuteDeduction{
			Minutes: summary.LateMinutes,
			Amount:  money(minutesToHours(summary.LateMinutes).Mul(hourly)),
		},
		EarlyLeave: MinuteDeduction{
			Minutes: summary.EarlyLeaveMinutes,
			Amount:  money(minutesToHours(summary.EarlyLeaveMinutes).Mul(hourly)),
		},
		LeaveDeduction: in.Leave,
		EPF: EPF{
			EmployeePercentage: emp.EPFEmployee,
			EmployerPercentage: emp.EPFEmployer,
		},
		ETF:           ETF{Percentage: emp.ETF},
		Status:        StatusDraft,
		PaymentMethod: PaymentMethodBankTransfer,
		Notes:         in.Notes,
	}
}

func fromComponent(c employee.PayComponent) LineItem {
	return LineItem{
		Name:        c.Name,
		Type:        ItemType(c.Type),
		Amount:      c.Amount,
		Description: c.Description,
	}
}
