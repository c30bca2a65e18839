package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/timepay/timepay-backend/internal/domain/branch"
	"github.com/timepay/timepay-backend/internal/domain/employee"
	"github.com/timepay/timepay-backend/internal/pkg/database"
	"github.com/timepay/timepay-backend/internal/repository/postgresql"
)

// testDB is nil when TEST_DATABASE_URL is unset; every test then skips.
var testDB *database.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn != "" {
		db, err := database.NewPostgreSQLDB(dsn)
		if err != nil {
			fmt.Fprintln(os.Stderr, "failed to connect to test database:", err)
			os.Exit(1)
		}
		if err := resetSchema(context.Background(), db); err != nil {
			fmt.Fprintln(os.Stderr, "failed to apply schema:", err)
			os.Exit(1)
		}
		testDB = db
	}

	code := m.Run()
	if testDB != nil {
		testDB.Close()
	}
	os.Exit(code)
}

// resetSchema recreates the public schema from the migrations directory.
func resetSchema(ctx context.Context, db *database.DB) error {
	_, file, _, _ := runtime.Caller(0)
	path := filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "migrations", "0001_init.sql")

	ddl, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if _, err := db.Exec(ctx, "DROP SCHEMA public CASCADE; CREATE SCHEMA public;"); err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(ddl))
	return err
}

func requireDB(t *testing.T) {
	t.Helper()
	if testDB == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}
}

// truncateAll empties every table between tests.
func truncateAll(t *testing.T) {
	t.Helper()

	tables := []string{
		"notifications",
		"notification_preferences",
		"payments",
		"payrolls",
		"leave_requests",
		"leave_configurations",
		"attendances",
		"employee_documents",
		"employee_leave_history",
		"password_reset_tokens",
		"refresh_tokens",
		"users",
		"employees",
		"branches",
	}

	ctx := context.Background()
	tx, err := testDB.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err)
	}
	require.NoError(t, tx.Commit(ctx))
}

func createTestBranch(t *testing.T, ctx context.Context, code string) branch.Branch {
	t.Helper()

	b, err := postgresql.NewBranchRepository(testDB).Create(ctx, branch.Branch{
		Name:        "Branch " + code,
		Code:        code,
		Departments: []string{"Sales"},
		IsActive:    true,
		OpeningTime: "09:00",
		ClosingTime: "18:00",
		WorkingDays: branch.DefaultWorkingDays,
	})
	require.NoError(t, err)
	return b
}

func createTestEmployee(t *testing.T, ctx context.Context, branchID, email string) employee.Employee {
	t.Helper()

	repo := postgresql.NewEmployeeRepository(testDB)
	code, err := repo.NextCode(ctx)
	require.NoError(t, err)

	e, err := repo.Create(ctx, employee.Employee{
		EmployeeCode:       code,
		FirstName:          "Nimal",
		LastName:           "Perera",
		Email:              &email,
		Position:           employee.PositionSalesman,
		Department:         "Sales",
		BranchID:           branchID,
		JoiningDate:        time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		EmploymentType:     employee.EmploymentTypeFullTime,
		Status:             employee.StatusActive,
		WorkingHoursPerDay: 8,
		OvertimeRate:       1.5,
		BaseSalary:         decimal.NewFromInt(50000),
		Currency:           "LKR",
		EPFEmployee:        decimal.NewFromInt(8),
		EPFEmployer:        decimal.NewFromInt(12),
		ETF:                decimal.NewFromInt(3),
		LeaveBalance:       employee.DefaultLeaveBalance(),
	})
	require.NoError(t, err)
	return e
}
