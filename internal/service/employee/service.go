package employee

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/timepay/timepay-backend/internal/domain/employee"
	"github.com/timepay/timepay-backend/internal/domain/user"
	"github.com/timepay/timepay-backend/internal/pkg/database"
	"github.com/timepay/timepay-backend/internal/pkg/jwt"
	"github.com/timepay/timepay-backend/internal/service/file"
)

type EmployeeServiceImpl struct {
	tx          database.Transactor
	employees   employee.EmployeeRepository
	fileService file.FileService
}

func NewEmployeeService(tx database.Transactor, employees employee.EmployeeRepository, fileService file.FileService) employee.EmployeeService {
	return &EmployeeServiceImpl{
		tx:          tx,
		employees:   employees,
		fileService: fileService,
	}
}

// authorize lets staff with action through and everyone else only for their
// own record.
func authorize(ctx context.Context, employeeID string, action user.Action) error {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	if claims.Can(action) {
		return nil
	}
	if claims.EmployeeID != "" && claims.EmployeeID == employeeID {
		return nil
	}
	return employee.ErrUnauthorized
}

// Create implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if req.Email != nil {
		address := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &address
	}

	var created employee.Employee
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		code, err := s.employees.NextCode(ctx)
		if err != nil {
			return fmt.Errorf("failed to reserve employee code: %w", err)
		}

		newEmployee, err := req.Build(code)
		if err != nil {
			return err
		}
		if !newEmployee.OldEnough() {
			return employee.ErrMinimumAge
		}

		created, err = s.employees.Create(ctx, newEmployee)
		return err
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("employee created", "employee_id", created.ID, "employee_code", created.EmployeeCode)
	return employee.ToResponse(created), nil
}

// Get implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Get(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	if err := authorize(ctx, id, user.ActionEmployeeViewAll); err != nil {
		return employee.EmployeeResponse{}, err
	}

	emp, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.ToResponse(emp), nil
}

// GetMe implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetMe(ctx context.Context) (employee.EmployeeResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if claims.EmployeeID == "" {
		return employee.EmployeeResponse{}, employee.ErrNoEmployeeProfile
	}

	emp, err := s.employees.GetByID(ctx, claims.EmployeeID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.ToResponse(emp), nil
}

// List implements employee.EmployeeService.
func (s *EmployeeServiceImpl) List(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	filter.Normalize()

	employees, total, err := s.employees.List(ctx, filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, emp := range employees {
		responses = append(responses, employee.ToResponse(emp))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return employee.ListEmployeeResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Employees:  responses,
	}, nil
}

// Update implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Update(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	emp, err := s.employees.GetByID(ctx, req.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	if err := req.Apply(&emp); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if !emp.OldEnough() {
		return employee.EmployeeResponse{}, employee.ErrMinimumAge
	}

	if err := s.employees.Update(ctx, emp); err != nil {
		return employee.EmployeeResponse{}, err
	}

	updated, err := s.employees.GetByID(ctx, req.ID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.ToResponse(updated), nil
}

// Delete implements employee.EmployeeService. Records are soft deleted so
// payroll and attendance history stays intact.
func (s *EmployeeServiceImpl) Delete(ctx context.Context, id string) error {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	if claims.EmployeeID != "" && claims.EmployeeID == id {
		return employee.ErrCannotDeleteSelf
	}
	return s.employees.Delete(ctx, id)
}

// LeaveHistory implements employee.EmployeeService.
func (s *EmployeeServiceImpl) LeaveHistory(ctx context.Context, id string) ([]employee.HistoryEntryResponse, error) {
	if err := authorize(ctx, id, user.ActionEmployeeViewAll); err != nil {
		return nil, err
	}
	if _, err := s.employees.GetByID(ctx, id); err != nil {
		return nil, err
	}

	entries, err := s.employees.ListHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave history: %w", err)
	}
	resp := make([]employee.HistoryEntryResponse, 0, len(entries))
	for _, h := range entries {
		resp = append(resp, employee.ToHistoryResponse(h))
	}
	return resp, nil
}

// UploadAvatar implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UploadAvatar(ctx context.Context, req employee.UploadAvatarRequest) (employee.EmployeeResponse, error) {
	if err := authorize(ctx, req.EmployeeID, user.ActionEmployeeManage); err != nil {
		return employee.EmployeeResponse{}, err
	}
	if _, err := s.employees.GetByID(ctx, req.EmployeeID); err != nil {
		return employee.EmployeeResponse{}, err
	}

	url, err := s.fileService.UploadAvatar(ctx, req.EmployeeID, req.File, req.Filename)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	if err := s.employees.SetAvatar(ctx, req.EmployeeID, url); err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to save avatar: %w", err)
	}

	emp, err := s.employees.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.ToResponse(emp), nil
}

// UploadDocument implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UploadDocument(ctx context.Context, req employee.UploadDocumentRequest) (employee.DocumentResponse, error) {
	if err := authorize(ctx, req.EmployeeID, user.ActionEmployeeManage); err != nil {
		return employee.DocumentResponse{}, err
	}
	if _, err := s.employees.GetByID(ctx, req.EmployeeID); err != nil {
		return employee.DocumentResponse{}, err
	}

	url, err := s.fileService.UploadDocument(ctx, req.EmployeeID, req.File, req.Filename, req.Type)
	if err != nil {
		return employee.DocumentResponse{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = req.Filename
	}
	doc, err := s.employees.AddDocument(ctx, employee.Document{
		EmployeeID: req.EmployeeID,
		Name:       name,
		Type:       req.Type,
		URL:        url,
	})
	if err != nil {
		return employee.DocumentResponse{}, fmt.Errorf("failed to save document: %w", err)
	}
	return employee.ToDocumentResponse(doc), nil
}

// ListDocuments implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListDocuments(ctx context.Context, id string) ([]employee.DocumentResponse, error) {
	if err := authorize(ctx, id, user.ActionEmployeeViewAll); err != nil {
		return nil, err
	}

	docs, err := s.employees.ListDocuments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	resp := make([]employee.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		resp = append(resp, employee.ToDocumentResponse(d))
	}
	return resp, nil
}
