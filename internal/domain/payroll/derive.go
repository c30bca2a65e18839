package payroll

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func (li LineItem) calculate(base decimal.Decimal) decimal.Decimal {
	if li.Type == ItemPercentage {
		return money(base.Mul(li.Amount).Div(hundred))
	}
	return money(li.Amount)
}

// Derive recomputes every derived field of p from its inputs and returns the
// result. It never mutates p and applying it twice yields the same payroll.
// Employer EPF and ETF shares never reduce the net salary.
func Derive(p Payroll) Payroll {
	out := p
	base := p.BaseSalary

	out.Allowances = make([]LineItem, len(p.Allowances))
	totalAllowances := decimal.Zero
	for i, a := range p.Allowances {
		a.CalculatedAmount = a.calculate(base)
		totalAllowances = totalAllowances.Add(a.CalculatedAmount)
		out.Allowances[i] = a
	}
	out.TotalAllowances = totalAllowances

	out.GrossSalary = base.Add(totalAllowances).Add(p.Bonus).Add(p.Overtime.Amount)

	epfBase := base.Add(totalAllowances)
	out.EPF.EmployeeContribution = money(epfBase.Mul(p.EPF.EmployeePercentage).Div(hundred))
	out.EPF.EmployerContribution = money(epfBase.Mul(p.EPF.EmployerPercentage).Div(hundred))
	out.EPF.TotalContribution = out.EPF.EmployeeContribution.Add(out.EPF.EmployerContribution)
	out.ETF.EmployerContribution = money(epfBase.Mul(p.ETF.Percentage).Div(hundred))

	out.Deductions = make([]LineItem, len(p.Deductions))
	totalDeductions := out.EPF.EmployeeContribution
	for i, d := range p.Deductions {
		d.CalculatedAmount = d.calculate(base)
		totalDeductions = totalDeductions.Add(d.CalculatedAmount)
		out.Deductions[i] = d
	}
	totalDeductions = totalDeductions.
		Add(p.Late.Amount).
		Add(p.EarlyLeave.Amount).
		Add(p.LeaveDeduction.Amount).
		Add(p.Tax)
	out.TotalDeductions = totalDeductions

	out.NetSalary = out.GrossSalary.Sub(out.TotalDeductions)
	return out
}
