package branch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/timepay/timepay-backend/internal/domain/attendance"
	"github.com/timepay/timepay-backend/internal/domain/branch"
	"github.com/timepay/timepay-backend/internal/domain/employee"
)

type BranchServiceImpl struct {
	branches  branch.BranchRepository
	employees employee.EmployeeRepository
	loc       *time.Location
	now       func() time.Time
}

func NewBranchService(branches branch.BranchRepository, employees employee.EmployeeRepository, loc *time.Location) branch.BranchService {
	if loc == nil {
		loc = time.Local
	}
	return &BranchServiceImpl{
		branches:  branches,
		employees: employees,
		loc:       loc,
		now:       time.Now,
	}
}

// Create implements branch.BranchService.
func (s *BranchServiceImpl) Create(ctx context.Context, req branch.CreateBranchRequest) (branch.BranchResponse, error) {
	b := branch.Branch{
		Name:        strings.TrimSpace(req.Name),
		Code:        req.Code,
		Address:     req.Address,
		City:        req.City,
		Phone:       req.Phone,
		Email:       req.Email,
		ManagerID:   req.ManagerID,
		Departments: req.Departments,
		IsActive:    true,
		OpeningTime: req.OpeningTime,
		ClosingTime: req.ClosingTime,
		WorkingDays: req.WorkingDays,
	}
	if b.OpeningTime == "" {
		b.OpeningTime = attendance.DefaultSchedule.Opening.String()
	}
	if b.ClosingTime == "" {
		b.ClosingTime = attendance.DefaultSchedule.Closing.String()
	}
	if len(b.WorkingDays) == 0 {
		b.WorkingDays = branch.DefaultWorkingDays
	}

	created, err := s.branches.Create(ctx, b)
	if err != nil {
		if errors.Is(err, branch.ErrBranchCodeExists) {
			return branch.BranchResponse{}, err
		}
		return branch.BranchResponse{}, fmt.Errorf("failed to create branch: %w", err)
	}
	return branch.ToResponse(created), nil
}

// Get implements branch.BranchService.
func (s *BranchServiceImpl) Get(ctx context.Context, id string) (branch.BranchResponse, error) {
	b, err := s.branches.GetByID(ctx, id)
	if err != nil {
		return branch.BranchResponse{}, err
	}
	return branch.ToResponse(b), nil
}

// List implements branch.BranchService.
func (s *BranchServiceImpl) List(ctx context.Context, filter branch.BranchFilter) ([]branch.BranchResponse, error) {
	branches, err := s.branches.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := make([]branch.BranchResponse, 0, len(branches))
	for _, b := range branches {
		resp = append(resp, branch.ToResponse(b))
	}
	return resp, nil
}

// Update implements branch.BranchService.
func (s *BranchServiceImpl) Update(ctx context.Context, req branch.UpdateBranchRequest) (branch.BranchResponse, error) {
	existing, err := s.branches.GetByID(ctx, req.ID)
	if err != nil {
		return branch.BranchResponse{}, err
	}

	// A partial hours update must still leave opening before closing.
	opening, closing := existing.OpeningTime, existing.ClosingTime
	if req.OpeningTime != nil {
		opening = *req.OpeningTime
	}
	if req.ClosingTime != nil {
		closing = *req.ClosingTime
	}
	if opening != "" && closing != "" && closing <= opening {
		return branch.BranchResponse{}, branch.ErrInvalidHours
	}

	if err := s.branches.Update(ctx, req); err != nil {
		return branch.BranchResponse{}, err
	}
	return s.Get(ctx, req.ID)
}

// Delete implements branch.BranchService. Branches with staff cannot be removed.
func (s *BranchServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := s.branches.GetByID(ctx, id); err != nil {
		return err
	}
	count, err := s.employees.CountByBranch(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count branch employees: %w", err)
	}
	if count > 0 {
		return branch.ErrBranchHasStaff
	}
	return s.branches.Delete(ctx, id)
}

// Stats implements branch.BranchService.
func (s *BranchServiceImpl) Stats(ctx context.Context, id string) (branch.StatsResponse, error) {
	if _, err := s.branches.GetByID(ctx, id); err != nil {
		return branch.StatsResponse{}, err
	}

	stats, err := s.branches.GetStats(ctx, id, s.now().In(s.loc))
	if err != nil {
		return branch.StatsResponse{}, fmt.Errorf("failed to get branch stats: %w", err)
	}

	departments := stats.Departments
	if departments == nil {
		departments = map[string]int{}
	}
	return branch.StatsResponse{
		BranchID:        id,
		TotalEmployees:  stats.TotalEmployees,
		ActiveEmployees: stats.ActiveEmployees,
		Departments:     departments,
		PresentToday:    stats.PresentToday,
		LateToday:       stats.LateToday,
		OnLeaveToday:    stats.OnLeaveToday,
	}, nil
}
