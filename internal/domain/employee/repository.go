package employee

import (
	"context"
	"time"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByCode(ctx context.Context, code string) (Employee, error)
	// NextCode reserves the next sequential employee code.
	NextCode(ctx context.Context) (string, error)
	Create(ctx context.Context, e Employee) (Employee, error)
	Update(ctx context.Context, e Employee) error
	SetAvatar(ctx context.Context, id string, url string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, int64, error)
	ListActive(ctx context.Context, branchID *string) ([]Employee, error)

	AppendHistory(ctx context.Context, entry HistoryEntry) error
	ListHistory(ctx context.Context, employeeID string) ([]HistoryEntry, error)

	AddDocument(ctx context.Context, doc Document) (Document, error)
	ListDocuments(ctx context.Context, employeeID string) ([]Document, error)

	CountByBranch(ctx context.Context, branchID string) (int64, error)
	ListBirthdays(ctx context.Context, on time.Time) ([]Employee, error)
}
