package report

import (
	"sort"

	"github.com/shopspring/decimal"
)

func countMap(counts []Count) map[string]int64 {
	m := make(map[string]int64, len(counts))
	for _, c := range counts {
		key := c.Key
		if key == "" {
			key = "unspecified"
		}
		m[key] += c.Count
	}
	return m
}

// SummarizeEmployees folds per-dimension counts into an EmployeeSummary.
func SummarizeEmployees(byStatus, byDepartment, byPosition, byType, byGender []Count) EmployeeSummary {
	s := EmployeeSummary{
		ByStatus:         countMap(byStatus),
		ByDepartment:     countMap(byDepartment),
		ByPosition:       countMap(byPosition),
		ByEmploymentType: countMap(byType),
		ByGender:         countMap(byGender),
	}
	for _, n := range s.ByStatus {
		s.TotalEmployees += n
	}
	s.ActiveEmployees = s.ByStatus["active"]
	s.InactiveEmployees = s.ByStatus["inactive"]
	s.OnLeaveEmployees = s.ByStatus["on-leave"]
	return s
}

// SummarizeAttendance totals attendance records overall and per department.
func SummarizeAttendance(month, year int, counts []AttendanceCount) AttendanceSummary {
	s := AttendanceSummary{
		Month:        month,
		Year:         year,
		ByStatus:     map[string]int64{},
		ByDepartment: map[string]map[string]int64{},
	}
	for _, c := range counts {
		s.ByStatus[c.Status] += c.Records
		s.TotalRecords += c.Records
		s.TotalOvertimeHours += c.OvertimeHours
		if c.Department == "" {
			continue
		}
		dept, ok := s.ByDepartment[c.Department]
		if !ok {
			dept = map[string]int64{}
			s.ByDepartment[c.Department] = dept
		}
		dept[c.Status] += c.Records
	}
	s.TotalOvertimeHours = round2(s.TotalOvertimeHours)
	return s
}

// SummarizeLeaves totals leave requests by status, type and department.
func SummarizeLeaves(year int, counts []LeaveCount) LeaveSummary {
	s := LeaveSummary{
		Year:         year,
		ByStatus:     map[string]int64{},
		ByType:       map[string]int64{},
		ByDepartment: map[string]LeaveDepartment{},
	}
	for _, c := range counts {
		s.TotalRequests += c.Requests
		s.ByStatus[c.Status] += c.Requests
		s.ByType[c.Type] += c.Requests
		if c.Status == "approved" {
			s.ApprovedDays += c.Days
		}
		if c.Department == "" {
			continue
		}
		d := s.ByDepartment[c.Department]
		d.Total += c.Requests
		switch c.Status {
		case "approved":
			d.Approved += c.Requests
		case "pending":
			d.Pending += c.Requests
		case "rejected":
			d.Rejected += c.Requests
		case "cancelled":
			d.Cancelled += c.Requests
		}
		s.ByDepartment[c.Department] = d
	}
	return s
}

// SummarizePayroll totals payroll figures and averages net salary per department.
func SummarizePayroll(month, year *int, totals []PayrollTotals) PayrollSummary {
	s := PayrollSummary{
		Month:        month,
		Year:         year,
		ByStatus:     map[string]int64{},
		ByDepartment: map[string]PayrollDepartment{},
	}
	for _, t := range totals {
		s.TotalPayrolls += t.Count
		s.ByStatus[t.Status] += t.Count
		s.TotalGross = s.TotalGross.Add(t.Gross)
		s.TotalNet = s.TotalNet.Add(t.Net)
		s.TotalTax = s.TotalTax.Add(t.Tax)
		s.TotalBonus = s.TotalBonus.Add(t.Bonus)
		s.TotalOvertime = s.TotalOvertime.Add(t.Overtime)
		s.TotalEPFEmployee = s.TotalEPFEmployee.Add(t.EPFEmployee)
		s.TotalEPFEmployer = s.TotalEPFEmployer.Add(t.EPFEmployer)
		s.TotalETF = s.TotalETF.Add(t.ETF)

		dept := t.Department
		if dept == "" {
			dept = "unspecified"
		}
		d := s.ByDepartment[dept]
		d.Count += t.Count
		d.TotalAmount = d.TotalAmount.Add(t.Net)
		s.ByDepartment[dept] = d
	}
	for name, d := range s.ByDepartment {
		if d.Count > 0 {
			d.AverageSalary = d.TotalAmount.Div(decimal.NewFromInt(d.Count)).Round(2)
		}
		s.ByDepartment[name] = d
	}
	return s
}

// SummarizeDepartments converts raw figures into rows sorted by department name.
func SummarizeDepartments(figures []DepartmentFigures) []DepartmentSummary {
	out := make([]DepartmentSummary, 0, len(figures))
	for _, f := range figures {
		row := DepartmentSummary{
			Department:          f.Department,
			TotalEmployees:      f.TotalEmployees,
			ActiveEmployees:     f.ActiveEmployees,
			TotalLeavesThisYear: f.ApprovedLeaves,
			TotalPayrollCost:    f.PayrollCost,
		}
		if f.TotalEmployees > 0 {
			row.AverageAttendance = round2(float64(f.PresentDays) / float64(f.TotalEmployees))
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
