// Package payslip renders payroll records as PDF documents.
package payslip

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/timepay/timepay-backend/internal/domain/payroll"
)

const currency = "Rs."

// Filename is the attachment name of a payslip download.
func Filename(p payroll.Payroll) string {
	return fmt.Sprintf("payslip_%s_%d_%d.pdf", p.EmployeeID, p.Month, p.Year)
}

func amount(d decimal.Decimal) string {
	return currency + " " + d.StringFixed(2)
}

type row struct {
	label string
	value decimal.Decimal
}

// Render draws p on a single A4 page under the organization heading.
func Render(p payroll.Payroll, organization string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Payslip %s %d", time.Month(p.Month), p.Year), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, organization, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Payslip for %s %d", time.Month(p.Month), p.Year), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 10)
	details := [][2]string{
		{"Employee", p.EmployeeName},
		{"Employee Code", p.EmployeeCode},
		{"Position", p.Position},
		{"Department", p.Department},
		{"Branch", p.BranchName},
		{"Status", string(p.Status)},
	}
	for _, d := range details {
		if d[1] == "" {
			continue
		}
		pdf.CellFormat(45, 6, d[0]+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, d[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	a := p.Attendance
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Attendance", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Working days %d   Present %d   Absent %d   Leave %d   Overtime %.2f h",
		a.WorkingDays, a.PresentDays, a.AbsentDays, a.LeaveDays, a.OvertimeHours), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	earnings := []row{{"Basic Salary", p.BaseSalary}}
	for _, al := range p.Allowances {
		earnings = append(earnings, row{al.Name, al.CalculatedAmount})
	}
	if !p.Bonus.IsZero() {
		earnings = append(earnings, row{"Bonus", p.Bonus})
	}
	if !p.Overtime.Amount.IsZero() {
		earnings = append(earnings, row{fmt.Sprintf("Overtime (%.2f h)", p.Overtime.Hours), p.Overtime.Amount})
	}

	deductions := []row{{"EPF (Employee)", p.EPF.EmployeeContribution}}
	for _, d := range p.Deductions {
		deductions = append(deductions, row{d.Name, d.CalculatedAmount})
	}
	if !p.Late.Amount.IsZero() {
		deductions = append(deductions, row{fmt.Sprintf("Late (%d min)", p.Late.Minutes), p.Late.Amount})
	}
	if !p.EarlyLeave.Amount.IsZero() {
		deductions = append(deductions, row{fmt.Sprintf("Early leave (%d min)", p.EarlyLeave.Minutes), p.EarlyLeave.Amount})
	}
	if !p.LeaveDeduction.Amount.IsZero() {
		deductions = append(deductions, row{"Unpaid leave", p.LeaveDeduction.Amount})
	}
	if !p.Tax.IsZero() {
		deductions = append(deductions, row{"Tax", p.Tax})
	}

	section(pdf, "Earnings", earnings, "Gross Salary", p.GrossSalary)
	section(pdf, "Deductions", deductions, "Total Deductions", p.TotalDeductions)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(120, 9, "Net Salary", "TB", 0, "L", false, 0, "")
	pdf.CellFormat(0, 9, amount(p.NetSalary), "TB", 1, "R", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Employer contributions: EPF %s, ETF %s",
		amount(p.EPF.EmployerContribution), amount(p.ETF.EmployerContribution)), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render payslip: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string, rows []row, totalLabel string, total decimal.Decimal) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, title, "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, r := range rows {
		pdf.CellFormat(120, 6, r.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, amount(r.value), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(120, 7, totalLabel, "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, amount(total), "T", 1, "R", false, 0, "")
	pdf.Ln(3)
}
