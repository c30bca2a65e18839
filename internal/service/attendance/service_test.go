package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timepay/timepay-backend/internal/domain/attendance"
	"github.com/timepay/timepay-backend/internal/domain/branch"
	"github.com/timepay/timepay-backend/internal/domain/employee"
	"github.com/timepay/timepay-backend/internal/domain/user"
	"github.com/timepay/timepay-backend/internal/pkg/jwt"
)

var colombo = mustLoad("Asia/Colombo")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("IST", 5*3600+1800)
	}
	return loc
}

type fakeAttendance struct {
	attendance.AttendanceRepository
	records map[string]attendance.Attendance
}

func key(employeeID string, day time.Time) string {
	return employeeID + "/" + day.Format("2006-01-02")
}

func (f *fakeAttendance) GetByEmployeeAndDate(_ context.Context, employeeID string, day time.Time) (attendance.Attendance, error) {
	a, ok := f.records[key(employeeID, day)]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

func (f *fakeAttendance) GetByID(_ context.Context, id string) (attendance.Attendance, error) {
	for _, a := range f.records {
		if a.ID == id {
			return a, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (f *fakeAttendance) Create(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	k := key(a.EmployeeID, a.Date)
	if _, ok := f.records[k]; ok {
		return attendance.Attendance{}, attendance.ErrAttendanceAlreadyMarked
	}
	a.ID = "att-" + k
	f.records[k] = a
	return a, nil
}

func (f *fakeAttendance) Update(_ context.Context, a attendance.Attendance) error {
	f.records[key(a.EmployeeID, a.Date)] = a
	return nil
}

func (f *fakeAttendance) ListByEmployeeAndRange(_ context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, a := range f.records {
		if a.EmployeeID == employeeID && !a.Date.Before(from) && !a.Date.After(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeEmployees struct {
	employee.EmployeeRepository
}

func (fakeEmployees) GetByID(_ context.Context, id string) (employee.Employee, error) {
	if id != "emp-1" {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return employee.Employee{ID: id, BranchID: "br-1", WorkingHoursPerDay: 8}, nil
}

type fakeBranches struct {
	branch.BranchRepository
	b *branch.Branch
}

func (f fakeBranches) GetByID(context.Context, string) (branch.Branch, error) {
	if f.b == nil {
		return branch.Branch{}, branch.ErrBranchNotFound
	}
	return *f.b, nil
}

type fixture struct {
	svc   *AttendanceServiceImpl
	store *fakeAttendance
	clock time.Time
}

func newFixture(b *branch.Branch) *fixture {
	f := &fixture{store: &fakeAttendance{records: map[string]attendance.Attendance{}}}
	f.svc = NewAttendanceService(f.store, fakeEmployees{}, fakeBranches{b: b}, colombo).(*AttendanceServiceImpl)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) at(hour, minute int) {
	f.clock = time.Date(2025, 3, 3, hour, minute, 0, 0, colombo)
}

func TestClockIn_LateAgainstDefaultSchedule(t *testing.T) {
	f := newFixture(nil)
	f.at(9, 15)

	resp, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Equal(t, 15, resp.LateMinutes)
	assert.Equal(t, attendance.StatusPresent, resp.Status)
	assert.Equal(t, attendance.WorkTypeOffice, resp.WorkType)
	assert.Equal(t, "2025-03-03", resp.Date)

	_, err = f.svc.ClockIn(context.Background(), attendance.ClockInRequest{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedIn)
}

func TestClockIn_UsesBranchHours(t *testing.T) {
	f := newFixture(&branch.Branch{OpeningTime: "08:00", ClosingTime: "17:00"})
	f.at(8, 40)

	resp, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{EmployeeID: "emp-1", WorkType: "field"})
	require.NoError(t, err)
	assert.Equal(t, 40, resp.LateMinutes)
	assert.Equal(t, attendance.WorkTypeField, resp.WorkType)
}

func TestClockOut_EarlyLeave(t *testing.T) {
	f := newFixture(nil)
	f.at(9, 15)
	_, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)

	f.at(17, 30)
	resp, err := f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Equal(t, 30, resp.EarlyLeaveMinutes)
	assert.Equal(t, 15, resp.LateMinutes)
	assert.Equal(t, 60, resp.BreakTime)
	assert.InDelta(t, 7.25, resp.TotalHours, 0.001)
	assert.InDelta(t, 7.25, resp.RegularHours, 0.001)
	assert.Zero(t, resp.OvertimeHours)

	_, err = f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, attendance.ErrAlreadyClockedOut)
}

func TestClockOut_Overtime(t *testing.T) {
	f := newFixture(nil)
	f.at(9, 0)
	_, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)

	f.at(19, 15)
	brk := 30
	resp, err := f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{EmployeeID: "emp-1", BreakTime: &brk})
	require.NoError(t, err)
	assert.InDelta(t, 9.75, resp.TotalHours, 0.001)
	assert.InDelta(t, 8, resp.RegularHours, 0.001)
	assert.InDelta(t, 1.75, resp.OvertimeHours, 0.001)
	assert.InDelta(t, resp.TotalHours, resp.RegularHours+resp.OvertimeHours, 0.001)
	assert.Zero(t, resp.EarlyLeaveMinutes)
}

func TestClockOut_WithoutClockIn(t *testing.T) {
	f := newFixture(nil)
	f.at(18, 0)

	_, err := f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, attendance.ErrNoClockIn)
}

func TestGetToday(t *testing.T) {
	f := newFixture(nil)
	f.at(8, 0)

	resp, err := f.svc.GetToday(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Nil(t, resp)

	_, err = f.svc.ClockIn(context.Background(), attendance.ClockInRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)
	resp, err = f.svc.GetToday(context.Background(), "emp-1")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Zero(t, resp.LateMinutes)
}

func markCtx() context.Context {
	return jwt.WithClaims(context.Background(), jwt.Claims{UserID: "admin-1", Role: user.RoleAdmin})
}

func TestMark_DerivesAndRejectsDuplicates(t *testing.T) {
	f := newFixture(nil)
	f.at(12, 0)

	in, out := "2025-02-28T09:30:00+05:30", "2025-02-28T18:00:00+05:30"
	req := attendance.MarkAttendanceRequest{
		EmployeeID: "0190a6c4-0000-7000-8000-000000000001",
		Date:       "2025-02-28",
		Status:     "present",
		ClockIn:    &in,
		ClockOut:   &out,
	}
	require.NoError(t, req.Validate())
	req.EmployeeID = "emp-1"

	resp, err := f.svc.Mark(markCtx(), req)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-28", resp.Date)
	assert.Equal(t, 30, resp.LateMinutes)
	assert.InDelta(t, 7.5, resp.TotalHours, 0.001)
	require.NotNil(t, resp.ApprovedBy)
	assert.Equal(t, "admin-1", *resp.ApprovedBy)

	_, err = f.svc.Mark(markCtx(), req)
	assert.ErrorIs(t, err, attendance.ErrAttendanceAlreadyMarked)
}

func TestUpdate_PatchRederives(t *testing.T) {
	f := newFixture(nil)
	f.at(9, 45)
	created, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)
	require.Equal(t, 45, created.LateMinutes)

	in := "2025-03-03T09:00:00+05:30"
	status := "half-day"
	resp, err := f.svc.Update(markCtx(), attendance.UpdateAttendanceRequest{ID: created.ID, ClockIn: &in, Status: &status})
	require.NoError(t, err)
	assert.Zero(t, resp.LateMinutes)
	assert.Equal(t, attendance.StatusHalfDay, resp.Status)

	_, err = f.svc.Update(markCtx(), attendance.UpdateAttendanceRequest{ID: created.ID})
	assert.ErrorIs(t, err, attendance.ErrEmptyPatch)
}

func TestReport_Summarizes(t *testing.T) {
	f := newFixture(nil)
	for day, status := range map[int]attendance.Status{3: attendance.StatusPresent, 4: attendance.StatusHalfDay, 5: attendance.StatusAbsent} {
		d := time.Date(2025, 3, day, 0, 0, 0, 0, colombo)
		f.store.records[key("emp-1", d)] = attendance.Attendance{EmployeeID: "emp-1", Date: d, Status: status, OvertimeHours: 0.5}
	}
	f.at(12, 0)

	resp, err := f.svc.Report(context.Background(), "emp-1", 3, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Summary.PresentDays)
	assert.Equal(t, 1, resp.Summary.HalfDays)
	assert.Equal(t, 1, resp.Summary.AbsentDays)
	assert.InDelta(t, 1.5, resp.Summary.OvertimeHours, 0.001)
	assert.Len(t, resp.Records, 3)

	_, err = f.svc.Report(context.Background(), "missing", 3, 2025)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}
