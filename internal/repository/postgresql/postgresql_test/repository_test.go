package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timepay/timepay-backend/internal/domain/attendance"
	"github.com/timepay/timepay-backend/internal/domain/auth"
	"github.com/timepay/timepay-backend/internal/domain/branch"
	"github.com/timepay/timepay-backend/internal/domain/payment"
	"github.com/timepay/timepay-backend/internal/domain/payroll"
	"github.com/timepay/timepay-backend/internal/domain/user"
	"github.com/timepay/timepay-backend/internal/repository/postgresql"
	"golang.org/x/crypto/bcrypt"
)

func createTestUser(t *testing.T, ctx context.Context, email string, employeeID *string) user.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	hash := string(hashed)

	u, err := postgresql.NewUserRepository(testDB).Create(ctx, user.User{
		EmployeeID:   employeeID,
		Email:        email,
		PasswordHash: &hash,
		Role:         user.RoleEmployee,
		IsActive:     true,
	})
	require.NoError(t, err)
	return u
}

// ===== USER REPOSITORY TESTS =====

func TestUserRepository_CreateAndGet(t *testing.T) {
	requireDB(t)
	truncateAll(t)

	ctx := context.Background()
	b := createTestBranch(t, ctx, "CMB")
	emp := createTestEmployee(t, ctx, b.ID, "nimal@example.com")
	created := createTestUser(t, ctx, "nimal@example.com", &emp.ID)

	repo := postgresql.NewUserRepository(testDB)

	got, err := repo.GetByEmail(ctx, "nimal@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, user.RoleEmployee, got.Role)
	require.NotNil(t, got.EmployeeCode)
	assert.Equal(t, emp.EmployeeCode, *got.EmployeeCode)

	byEmployee, err := repo.GetByEmployeeID(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmployee.ID)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	requireDB(t)
	truncateAll(t)

	ctx := context.Background()
	createTestUser(t, ctx, "dup@example.com", nil)

	hash := "x"
	_, err := postgresql.NewUserRepository(testDB).Create(ctx, user.User{
		Email:        "dup@example.com",
		PasswordHash: &hash,
		Role:         user.RoleEmployee,
		IsActive:     true,
	})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	requireDB(t)
	truncateAll(t)

	_, err := postgresql.NewUserRepository(testDB).GetByID(context.Background(), "0190a6c4-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

// ===== TOKEN REPOSITORY TESTS =====

func TestTokenRepository_RefreshLifecycle(t *testing.T) {
	requireDB(t)
	truncateAll(t)

	ctx := context.Background()
	u := createTestUser(t, ctx, "token@example.com", nil)
	repo := postgresql.NewTokenRepository(testDB)

	require.NoError(t, repo.CreateRefreshToken(ctx, u.ID, "raw-refresh", time.Now().Add(time.Hour), auth.SessionTrackingRequest{}))

	revoked, err := repo.IsRefreshTokenRevoked(ctx, "raw-refresh")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, repo.RevokeRefreshToken(ctx, "raw-refresh"))

	revoked, err = repo.IsRefreshTokenRevoked(ctx, "raw-refresh")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = repo.IsRefreshTokenRevoked(ctx, "never-issued")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestTokenRepository_ResetTokenSingleUse(t *testing.T) {
	requireDB(t)
	truncateAll(t)

	ctx := context.Background()
	u := createTestUser(t, ctx, "reset@example.com", nil)
	repo := postgresql.NewTokenRepository(testDB)
	now := time.Now()

	require.NoError(t, repo.CreateResetToken(ctx, u.ID, "reset-token", now.Add(time.Hour)))

	userID, err := repo.ConsumeResetToken(ctx, "reset-token", now)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)

	_, err = repo.ConsumeResetToken(ctx, "reset-token", now)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

// ===== BRANCH REPOSITORY TESTS =====

func TestBranchRepository_DuplicateCode(t *testing.T) {
	requireDB(t)
	truncateAll(t)

	ctx := context.Background()
	createTestBranch(t, ctx, "KDY")

	_, err := postgresql.NewBranchRepository(testDB).Create(ctx, branch.Branch{
		Name:        "Kandy Two",
		Code:        "KDY",
		IsActive:    true,
		OpeningTime: "09:00",
		ClosingTime: "18:00",
		WorkingDays: branch.DefaultWorkingDays,
	})
	assert.ErrorIs(t, err, branch.ErrBranchCodeExists)
}

// ===== EMPLOYEE REPOSITORY TESTS =====

func TestEmployeeRepository_SequentialCodes(t *testing.T) {
	requireDB(t)
	truncateAll(t)

	ctx := context.Background()
	b := createTestBranch(t, ctx, "GLE")
	first := createTestEmployee(t, ctx, b.ID, "a@example.com")
	second := createTestEmployee(t, ctx, b.ID, "b@example.com")

	assert.NotEqual(t, first.EmployeeCode, second.EmployeeCode)
	assert.Regexp(t, `^EMP\d+$`, first.EmployeeCode)

	got, err := postgresql.NewEmployeeRepository(testDB).GetByCode(ctx, second.EmployeeCode)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.True(t, decimal.NewFromInt(50000).Equal(got.BaseSalary))
	assert.Equal(t, float64(21), got.LeaveBalance["annual"])
}

// ===== ATTENDANCE REPOSITORY TESTS =====

func TestAttendanceRepository_OnePerDay(t *testing.T) {
	requireDB(t)
	truncateAll(t)

	ctx := context.Background()
	b := createTestBranch(t, ctx, "NEG")
	emp := createTestEmployee(t, ctx, b.ID, "att@example.com")
	repo := postgresql.NewAttendanceRepository(testDB)

	day := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	clockIn := time.Date(2025, time.March, 3, 9, 5, 0, 0, time.UTC)
	record := attendance.Attendance{
		EmployeeID: emp.ID,
		Date:       day,
		ClockIn:    &clockIn,
		BreakTime:  60,
		Status:     attendance.StatusPresent,
		WorkType:   attendance.WorkTypeOffice,
	}

	_, err := repo.Create(ctx, record)
	require.NoError(t, err)

	_, err = repo.Create(ctx, record)
	assert.ErrorIs(t, err, attendance.ErrAttendanceAlreadyMarked)

	got, err := repo.GetByEmployeeAndDate(ctx, emp.ID, day)
	require.NoError(t, err)
	require.NotNil(t, got.ClockIn)
	assert.True(t, clockIn.Equal(*got.ClockIn))
}

// ===== PAYROLL AND PAYMENT REPOSITORY TESTS =====

func TestPayrollRepository_UniquePeriodAndPayment(t *testing.T) {
	requireDB(t)
	truncateAll(t)

	ctx := context.Background()
	b := createTestBranch(t, ctx, "JAF")
	emp := createTestEmployee(t, ctx, b.ID, "pay@example.com")
	payrolls := postgresql.NewPayrollRepository(testDB)

	p := payroll.Payroll{
		EmployeeID:  emp.ID,
		BranchID:    b.ID,
		Month:       3,
		Year:        2025,
		BaseSalary:  decimal.NewFromInt(50000),
		GrossSalary: decimal.NewFromInt(50000),
		NetSalary:   decimal.NewFromInt(46000),
		Status:      payroll.StatusDraft,
	}
	created, err := payrolls.Create(ctx, p)
	require.NoError(t, err)

	_, err = payrolls.Create(ctx, p)
	assert.ErrorIs(t, err, payroll.ErrPayrollExists)

	got, err := payrolls.GetByPeriod(ctx, emp.ID, 3, 2025)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, emp.EmployeeCode, got.EmployeeCode)
	assert.Equal(t, "Nimal Perera", got.EmployeeName)

	require.NoError(t, got.Approve(emp.ID, payroll.PaymentMethodBankTransfer, time.Now()))
	require.NoError(t, payrolls.Update(ctx, got))

	payments := postgresql.NewPaymentRepository(testDB)
	pm, err := payments.Create(ctx, payment.Payment{
		PayrollID:  got.ID,
		EmployeeID: emp.ID,
		BranchID:   b.ID,
		Amount:     got.NetSalary,
		Currency:   "LKR",
		Method:     payment.MethodBankTransfer,
		Gateway:    payment.GatewayBankAPI,
		Status:     payment.StatusPending,
	})
	require.NoError(t, err)

	_, err = payments.Create(ctx, payment.Payment{
		PayrollID:  got.ID,
		EmployeeID: emp.ID,
		BranchID:   b.ID,
		Amount:     got.NetSalary,
		Currency:   "LKR",
		Method:     payment.MethodCash,
		Gateway:    payment.GatewayManual,
		Status:     payment.StatusPending,
	})
	assert.ErrorIs(t, err, payment.ErrPaymentAlreadyExists)

	byPayroll, err := payments.GetByPayrollID(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, pm.ID, byPayroll.ID)
	assert.Equal(t, 3, byPayroll.PayrollMonth)
	assert.Equal(t, 2025, byPayroll.PayrollYear)
}
