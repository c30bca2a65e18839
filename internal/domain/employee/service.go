package employee

import (
	"context"
)

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	// Create assigns the next EMP code and default leave balances.
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	Get(ctx context.Context, id string) (EmployeeResponse, error)
	// GetMe resolves the caller's own profile from the JWT claims.
	GetMe(ctx context.Context) (EmployeeResponse, error)
	List(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)
	Update(ctx context.Context, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, id string) error

	LeaveHistory(ctx context.Context, id string) ([]HistoryEntryResponse, error)
	UploadAvatar(ctx context.Context, req UploadAvatarRequest) (EmployeeResponse, error)
	UploadDocument(ctx context.Context, req UploadDocumentRequest) (DocumentResponse, error)
	ListDocuments(ctx context.Context, id string) ([]DocumentResponse, error)
}
