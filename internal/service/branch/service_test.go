package branch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timepay/timepay-backend/internal/domain/branch"
	"github.com/timepay/timepay-backend/internal/domain/employee"
)

type fakeBranches struct {
	branch.BranchRepository
	byID    map[string]branch.Branch
	statsOn time.Time
}

func (f *fakeBranches) Create(_ context.Context, b branch.Branch) (branch.Branch, error) {
	for _, existing := range f.byID {
		if existing.Code == b.Code {
			return branch.Branch{}, branch.ErrBranchCodeExists
		}
	}
	b.ID = "b-" + b.Code
	f.byID[b.ID] = b
	return b, nil
}

func (f *fakeBranches) GetByID(_ context.Context, id string) (branch.Branch, error) {
	b, ok := f.byID[id]
	if !ok {
		return branch.Branch{}, branch.ErrBranchNotFound
	}
	return b, nil
}

func (f *fakeBranches) Update(_ context.Context, req branch.UpdateBranchRequest) error {
	b := f.byID[req.ID]
	if req.OpeningTime != nil {
		b.OpeningTime = *req.OpeningTime
	}
	if req.ClosingTime != nil {
		b.ClosingTime = *req.ClosingTime
	}
	f.byID[req.ID] = b
	return nil
}

func (f *fakeBranches) Delete(_ context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeBranches) GetStats(_ context.Context, _ string, day time.Time) (branch.Stats, error) {
	f.statsOn = day
	return branch.Stats{TotalEmployees: 4, ActiveEmployees: 3, PresentToday: 2, LateToday: 1}, nil
}

type fakeEmployees struct {
	employee.EmployeeRepository
	counts map[string]int64
}

func (f *fakeEmployees) CountByBranch(_ context.Context, branchID string) (int64, error) {
	return f.counts[branchID], nil
}

func newService() (*BranchServiceImpl, *fakeBranches, *fakeEmployees) {
	branches := &fakeBranches{byID: map[string]branch.Branch{}}
	employees := &fakeEmployees{counts: map[string]int64{}}
	loc, _ := time.LoadLocation("Asia/Colombo")
	svc := NewBranchService(branches, employees, loc).(*BranchServiceImpl)
	svc.now = func() time.Time { return time.Date(2025, 3, 3, 20, 0, 0, 0, time.UTC) }
	return svc, branches, employees
}

func TestBranchService_Create_Defaults(t *testing.T) {
	svc, _, _ := newService()

	resp, err := svc.Create(context.Background(), branch.CreateBranchRequest{Name: " Kandy ", Code: "KDY"})
	require.NoError(t, err)
	assert.Equal(t, "Kandy", resp.Name)
	assert.Equal(t, "09:00", resp.OpeningTime)
	assert.Equal(t, "18:00", resp.ClosingTime)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, resp.WorkingDays)
	assert.True(t, resp.IsActive)
	assert.Equal(t, []string{}, resp.Departments)

	_, err = svc.Create(context.Background(), branch.CreateBranchRequest{Name: "Kandy 2", Code: "KDY"})
	assert.ErrorIs(t, err, branch.ErrBranchCodeExists)
}

func TestBranchService_Update_RejectsInvertedHours(t *testing.T) {
	svc, branches, _ := newService()
	branches.byID["b1"] = branch.Branch{ID: "b1", OpeningTime: "09:00", ClosingTime: "18:00"}

	closing := "08:30"
	_, err := svc.Update(context.Background(), branch.UpdateBranchRequest{ID: "b1", ClosingTime: &closing})
	assert.ErrorIs(t, err, branch.ErrInvalidHours)

	closing = "17:00"
	resp, err := svc.Update(context.Background(), branch.UpdateBranchRequest{ID: "b1", ClosingTime: &closing})
	require.NoError(t, err)
	assert.Equal(t, "17:00", resp.ClosingTime)
}

func TestBranchService_Delete_WithStaff(t *testing.T) {
	svc, branches, employees := newService()
	branches.byID["b1"] = branch.Branch{ID: "b1"}
	employees.counts["b1"] = 2

	assert.ErrorIs(t, svc.Delete(context.Background(), "b1"), branch.ErrBranchHasStaff)

	employees.counts["b1"] = 0
	require.NoError(t, svc.Delete(context.Background(), "b1"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "b1"), branch.ErrBranchNotFound)
}

func TestBranchService_Stats_UsesLocalDay(t *testing.T) {
	svc, branches, _ := newService()
	branches.byID["b1"] = branch.Branch{ID: "b1"}

	resp, err := svc.Stats(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.PresentToday)
	assert.NotNil(t, resp.Departments)
	// 20:00 UTC is already the next day in Colombo.
	assert.Equal(t, 4, branches.statsOn.Day())
}
