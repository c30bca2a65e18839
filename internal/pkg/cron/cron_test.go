package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timepay/timepay-backend/internal/domain/attendance"
	"github.com/timepay/timepay-backend/internal/domain/branch"
	"github.com/timepay/timepay-backend/internal/domain/employee"
	"github.com/timepay/timepay-backend/internal/domain/leave"
	"github.com/timepay/timepay-backend/internal/domain/notification"
)

type fakeAttendance struct {
	attendance.AttendanceRepository
	recorded map[string]struct{}
	created  []attendance.Attendance
}

func (f *fakeAttendance) ListEmployeeIDsWithRecord(context.Context, time.Time) (map[string]struct{}, error) {
	return f.recorded, nil
}

func (f *fakeAttendance) Create(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	if _, ok := f.recorded[a.EmployeeID]; ok {
		return attendance.Attendance{}, attendance.ErrAttendanceAlreadyMarked
	}
	f.recorded[a.EmployeeID] = struct{}{}
	f.created = append(f.created, a)
	return a, nil
}

type fakeEmployees struct {
	employee.EmployeeRepository
	active    []employee.Employee
	birthdays []employee.Employee
	calls     int
}

func (f *fakeEmployees) ListActive(context.Context, *string) ([]employee.Employee, error) {
	return f.active, nil
}

func (f *fakeEmployees) ListBirthdays(context.Context, time.Time) ([]employee.Employee, error) {
	f.calls++
	return f.birthdays, nil
}

type fakeBranches struct {
	branch.BranchRepository
	byID map[string]branch.Branch
}

func (f fakeBranches) GetByID(_ context.Context, id string) (branch.Branch, error) {
	b, ok := f.byID[id]
	if !ok {
		return branch.Branch{}, branch.ErrBranchNotFound
	}
	return b, nil
}

type fakeLeaves struct {
	leave.LeaveRepository
	approved map[string]leave.Request
}

func (f fakeLeaves) ListApprovedOn(context.Context, time.Time) (map[string]leave.Request, error) {
	return f.approved, nil
}

type fakeNotifier struct {
	notification.Service
	queued []notification.CreateNotificationRequest
}

func (f *fakeNotifier) QueueBulkNotification(_ context.Context, reqs []notification.CreateNotificationRequest) error {
	f.queued = append(f.queued, reqs...)
	return nil
}

func newAttendanceFixture(now time.Time) (*AttendanceJobs, *fakeAttendance) {
	att := &fakeAttendance{recorded: map[string]struct{}{"emp-1": {}}}
	emps := &fakeEmployees{active: []employee.Employee{
		{ID: "emp-1", BranchID: "br-1"},
		{ID: "emp-2", BranchID: "br-1"},
		{ID: "emp-3", BranchID: "br-1"},
		{ID: "emp-4", BranchID: "br-sat"},
		{ID: "emp-5", BranchID: "gone"},
	}}
	branches := fakeBranches{byID: map[string]branch.Branch{
		"br-1":   {ID: "br-1", OpeningTime: "08:00", ClosingTime: "17:00"},
		"br-sat": {ID: "br-sat", OpeningTime: "08:00", ClosingTime: "20:00", WorkingDays: []int{1, 2, 3, 4, 5, 6}},
	}}
	leaves := fakeLeaves{approved: map[string]leave.Request{"emp-3": {ID: "lv-1", EmployeeID: "emp-3"}}}

	jobs := NewAttendanceJobs(att, emps, branches, leaves, time.UTC)
	jobs.now = func() time.Time { return now }
	return jobs, att
}

func statuses(created []attendance.Attendance) map[string]attendance.Status {
	out := make(map[string]attendance.Status, len(created))
	for _, a := range created {
		out[a.EmployeeID] = a.Status
	}
	return out
}

func TestMarkAbsentEmployees_AfterClosing(t *testing.T) {
	// Monday 2025-03-03 18:30
	jobs, att := newAttendanceFixture(time.Date(2025, time.March, 3, 18, 30, 0, 0, time.UTC))

	require.NoError(t, jobs.MarkAbsentEmployees(context.Background()))

	got := statuses(att.created)
	assert.Equal(t, attendance.StatusAbsent, got["emp-2"])
	assert.Equal(t, attendance.StatusOnLeave, got["emp-3"])
	assert.Equal(t, attendance.StatusAbsent, got["emp-5"], "missing branch uses default hours")
	assert.NotContains(t, got, "emp-1")
	assert.NotContains(t, got, "emp-4", "branch still open")
	assert.Equal(t, time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC), att.created[0].Date)

	att.created = nil
	require.NoError(t, jobs.MarkAbsentEmployees(context.Background()))
	assert.Empty(t, att.created)
}

func TestMarkAbsentEmployees_NonWorkingDay(t *testing.T) {
	// Saturday 2025-03-08 21:00
	jobs, att := newAttendanceFixture(time.Date(2025, time.March, 8, 21, 0, 0, 0, time.UTC))

	require.NoError(t, jobs.MarkAbsentEmployees(context.Background()))

	got := statuses(att.created)
	assert.Len(t, got, 1)
	assert.Equal(t, attendance.StatusAbsent, got["emp-4"])
}

func TestMarkAbsentEmployees_BeforeClosing(t *testing.T) {
	jobs, att := newAttendanceFixture(time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC))

	require.NoError(t, jobs.MarkAbsentEmployees(context.Background()))
	assert.Empty(t, att.created)
}

func TestSendBirthdayGreetings_OncePerDay(t *testing.T) {
	userID := "u-2"
	emps := &fakeEmployees{birthdays: []employee.Employee{
		{ID: "emp-1", FirstName: "Nimal"},
		{ID: "emp-2", FirstName: "Kamala", UserID: &userID},
	}}
	notifier := &fakeNotifier{}
	jobs := NewBirthdayJobs(emps, notifier, time.UTC)
	now := time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)
	jobs.now = func() time.Time { return now }

	require.NoError(t, jobs.SendBirthdayGreetings(context.Background()))
	require.NoError(t, jobs.SendBirthdayGreetings(context.Background()))

	assert.Equal(t, 1, emps.calls)
	require.Len(t, notifier.queued, 1)
	assert.Equal(t, "u-2", notifier.queued[0].RecipientID)
	assert.Equal(t, notification.TypeBirthday, notifier.queued[0].Type)
	assert.Contains(t, notifier.queued[0].Message, "Kamala")

	now = now.AddDate(0, 0, 1)
	require.NoError(t, jobs.SendBirthdayGreetings(context.Background()))
	assert.Equal(t, 2, emps.calls)
}

func TestScheduler_RunOnceAndStop(t *testing.T) {
	s := NewScheduler(context.Background())
	var ok, failed int32
	s.AddJob("ok", time.Hour, func(context.Context) error {
		atomic.AddInt32(&ok, 1)
		return nil
	})
	s.AddJob("fails", time.Hour, func(context.Context) error {
		atomic.AddInt32(&failed, 1)
		return errors.New("boom")
	})

	s.RunOnce(context.Background())
	assert.EqualValues(t, 1, atomic.LoadInt32(&ok))
	assert.EqualValues(t, 1, atomic.LoadInt32(&failed))

	s.Start()
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&ok) == 2 }, time.Second, 10*time.Millisecond)
	s.Stop()
}
