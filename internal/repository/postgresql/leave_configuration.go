package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/timepay/timepay-backend/internal/domain/leave"
	"github.com/timepay/timepay-backend/internal/pkg/database"
)

type leaveConfigurationRepositoryImpl struct {
	db *database.DB
}

func NewLeaveConfigurationRepository(db *database.DB) leave.ConfigurationRepository {
	return &leaveConfigurationRepositoryImpl{db: db}
}

const leaveConfigurationColumns = `
	id, name, leave_type, max_days_per_year, max_consecutive_days, carry_forward_allowed,
	max_carry_forward_days, requires_approval, minimum_notice_days, document_required,
	allow_half_day, allow_backdating, max_backdating_days, is_paid,
	applicable_positions, applicable_employment_types, description, is_active,
	created_at, updated_at
`

func scanLeaveConfiguration(row pgx.Row) (leave.Configuration, error) {
	var c leave.Configuration
	err := row.Scan(
		&c.ID, &c.Name, &c.Type, &c.MaxDaysPerYear, &c.MaxConsecutiveDays, &c.CarryForwardAllowed,
		&c.MaxCarryForwardDays, &c.RequiresApproval, &c.MinimumNoticeDays, &c.DocumentRequired,
		&c.AllowHalfDay, &c.AllowBackdating, &c.MaxBackdatingDays, &c.IsPaid,
		&c.ApplicablePositions, &c.ApplicableEmploymentTypes, &c.Description, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r *leaveConfigurationRepositoryImpl) query(ctx context.Context, where string, args ...interface{}) ([]leave.Configuration, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, "SELECT "+leaveConfigurationColumns+" FROM leave_configurations WHERE "+where+" ORDER BY leave_type", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave configurations: %w", err)
	}
	defer rows.Close()

	var out []leave.Configuration
	for rows.Next() {
		c, err := scanLeaveConfiguration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave configuration: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Create implements leave.ConfigurationRepository.
func (r *leaveConfigurationRepositoryImpl) Create(ctx context.Context, c leave.Configuration) (leave.Configuration, error) {
	q := GetQuerier(ctx, r.db)

	c.ID = uuid.Must(uuid.NewV7()).String()
	query := `
		INSERT INTO leave_configurations (
			id, name, leave_type, max_days_per_year, max_consecutive_days, carry_forward_allowed,
			max_carry_forward_days, requires_approval, minimum_notice_days, document_required,
			allow_half_day, allow_backdating, max_backdating_days, is_paid,
			applicable_positions, applicable_employment_types, description, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		c.ID, c.Name, c.Type, c.MaxDaysPerYear, c.MaxConsecutiveDays, c.CarryForwardAllowed,
		c.MaxCarryForwardDays, c.RequiresApproval, c.MinimumNoticeDays, c.DocumentRequired,
		c.AllowHalfDay, c.AllowBackdating, c.MaxBackdatingDays, c.IsPaid,
		c.ApplicablePositions, c.ApplicableEmploymentTypes, c.Description, c.IsActive,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_leave_configuration_type") {
			return leave.Configuration{}, leave.ErrConfigurationTypeExists
		}
		return leave.Configuration{}, fmt.Errorf("failed to create leave configuration: %w", err)
	}
	return c, nil
}

// GetByID implements leave.ConfigurationRepository.
func (r *leaveConfigurationRepositoryImpl) GetByID(ctx context.Context, id string) (leave.Configuration, error) {
	q := GetQuerier(ctx, r.db)

	c, err := scanLeaveConfiguration(q.QueryRow(ctx, "SELECT "+leaveConfigurationColumns+" FROM leave_configurations WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Configuration{}, leave.ErrConfigurationNotFound
		}
		return leave.Configuration{}, fmt.Errorf("failed to get leave configuration: %w", err)
	}
	return c, nil
}

// Update implements leave.ConfigurationRepository.
func (r *leaveConfigurationRepositoryImpl) Update(ctx context.Context, c leave.Configuration) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_configurations SET
			name = $2, leave_type = $3, max_days_per_year = $4, max_consecutive_days = $5,
			carry_forward_allowed = $6, max_carry_forward_days = $7, requires_approval = $8,
			minimum_notice_days = $9, document_required = $10, allow_half_day = $11,
			allow_backdating = $12, max_backdating_days = $13, is_paid = $14,
			applicable_positions = $15, applicable_employment_types = $16, description = $17,
			is_active = $18, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		c.ID, c.Name, c.Type, c.MaxDaysPerYear, c.MaxConsecutiveDays,
		c.CarryForwardAllowed, c.MaxCarryForwardDays, c.RequiresApproval,
		c.MinimumNoticeDays, c.DocumentRequired, c.AllowHalfDay,
		c.AllowBackdating, c.MaxBackdatingDays, c.IsPaid,
		c.ApplicablePositions, c.ApplicableEmploymentTypes, c.Description,
		c.IsActive,
	)
	if err != nil {
		if strings.Contains(err.Error(), "uk_leave_configuration_type") {
			return leave.ErrConfigurationTypeExists
		}
		return fmt.Errorf("failed to update leave configuration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrConfigurationNotFound
	}
	return nil
}

// List implements leave.ConfigurationRepository.
func (r *leaveConfigurationRepositoryImpl) List(ctx context.Context, activeOnly bool) ([]leave.Configuration, error) {
	if activeOnly {
		return r.query(ctx, "is_active = TRUE")
	}
	return r.query(ctx, "1=1")
}

// ListActiveByType implements leave.ConfigurationRepository.
func (r *leaveConfigurationRepositoryImpl) ListActiveByType(ctx context.Context, t leave.Type) ([]leave.Configuration, error) {
	return r.query(ctx, "is_active = TRUE AND leave_type = $1", t)
}
