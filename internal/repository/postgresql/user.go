package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/timepay/timepay-backend/internal/domain/notification"
	"github.com/timepay/timepay-backend/internal/domain/user"
	"github.com/timepay/timepay-backend/internal/pkg/database"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

// NewRecipientDirectory resolves notification audiences from the users table.
func NewRecipientDirectory(db *database.DB) notification.RecipientDirectory {
	return &userRepositoryImpl{db: db}
}

const userColumns = `
	u.id, u.employee_id, u.email, u.password_hash, u.role, u.is_active,
	u.oauth_provider, u.oauth_provider_id, u.last_login, u.created_at, u.updated_at,
	e.employee_code, NULLIF(TRIM(e.first_name || ' ' || e.last_name), '')
`

const userFrom = `
	FROM users u
	LEFT JOIN employees e ON e.id = u.employee_id
`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.EmployeeID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive,
		&u.OAuthProvider, &u.OAuthProviderID, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
		&u.EmployeeCode, &u.FullName,
	)
	return u, err
}

func (r *userRepositoryImpl) getOne(ctx context.Context, where string, arg interface{}) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + userColumns + userFrom + " WHERE " + where

	u, err := scanUser(q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "LOWER(u.email) = LOWER($1)", email)
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, "u.id = $1", id)
}

// GetByEmployeeID implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) (user.User, error) {
	return r.getOne(ctx, "u.employee_id = $1", employeeID)
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	if newUser.ID == "" {
		newUser.ID = uuid.Must(uuid.NewV7()).String()
	}

	query := `
		INSERT INTO users (id, employee_id, email, password_hash, role, is_active, oauth_provider, oauth_provider_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newUser.ID,
		newUser.EmployeeID,
		strings.ToLower(newUser.Email),
		newUser.PasswordHash,
		newUser.Role,
		newUser.IsActive,
		newUser.OAuthProvider,
		newUser.OAuthProviderID,
	).Scan(&newUser.CreatedAt, &newUser.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_user_email") {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, err
	}

	// Keep employees.user_id in step with users.employee_id.
	if newUser.EmployeeID != nil {
		if _, err := q.Exec(ctx, `UPDATE employees SET user_id = $1, updated_at = NOW() WHERE id = $2`, newUser.ID, *newUser.EmployeeID); err != nil {
			return user.User{}, fmt.Errorf("failed to link employee: %w", err)
		}
	}

	newUser.Email = strings.ToLower(newUser.Email)
	return newUser, nil
}

// List implements user.UserRepository.
func (r *userRepositoryImpl) List(ctx context.Context, filter user.UserFilter) ([]user.User, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.Role != nil && *filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("u.role = $%d", argIdx))
		args = append(args, *filter.Role)
		argIdx++
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("u.is_active = $%d", argIdx))
		args = append(args, *filter.IsActive)
		argIdx++
	}
	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(u.email ILIKE $%d OR e.first_name ILIKE $%d OR e.last_name ILIKE $%d OR e.employee_code ILIKE $%d)", argIdx, argIdx, argIdx, argIdx))
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*)" + userFrom + " WHERE " + whereClause
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY u.created_at DESC LIMIT $%d OFFSET $%d",
		userColumns, userFrom, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ListByRoles implements user.UserRepository.
func (r *userRepositoryImpl) ListByRoles(ctx context.Context, roles []user.Role) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}

	query := "SELECT " + userColumns + userFrom + " WHERE u.is_active = TRUE AND u.role = ANY($1)"
	rows, err := q.Query(ctx, query, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update implements user.UserRepository.
func (r *userRepositoryImpl) Update(ctx context.Context, req user.UpdateUserRequest) error {
	q := GetQuerier(ctx, r.db)

	updates := []string{}
	args := []interface{}{}
	argIdx := 1

	if req.Email != nil {
		updates = append(updates, fmt.Sprintf("email = $%d", argIdx))
		args = append(args, strings.ToLower(*req.Email))
		argIdx++
	}
	if req.Role != nil {
		updates = append(updates, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, *req.Role)
		argIdx++
	}
	if len(updates) == 0 {
		return nil
	}
	updates = append(updates, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(updates, ", "), argIdx)
	args = append(args, req.ID)

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		if strings.Contains(err.Error(), "uk_user_email") {
			return user.ErrUserEmailExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *userRepositoryImpl) exec(ctx context.Context, query string, args ...interface{}) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// UpdateRole implements user.UserRepository.
func (r *userRepositoryImpl) UpdateRole(ctx context.Context, id string, role user.Role) error {
	return r.exec(ctx, `UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2`, role, id)
}

// SetActive implements user.UserRepository.
func (r *userRepositoryImpl) SetActive(ctx context.Context, id string, active bool) error {
	return r.exec(ctx, `UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
}

// UpdatePassword implements user.UserRepository.
func (r *userRepositoryImpl) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, userID)
}

// UpdateLastLogin implements user.UserRepository.
func (r *userRepositoryImpl) UpdateLastLogin(ctx context.Context, userID string) error {
	return r.exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, userID)
}

// LinkGoogleAccount implements user.UserRepository.
func (r *userRepositoryImpl) LinkGoogleAccount(ctx context.Context, userID, googleID string) error {
	return r.exec(ctx, `
		UPDATE users
		SET oauth_provider = 'google', oauth_provider_id = $1, updated_at = NOW()
		WHERE id = $2
	`, googleID, userID)
}

// Delete implements user.UserRepository.
func (r *userRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM users WHERE id = $1`, id)
}

// GetRecipient implements notification.RecipientDirectory.
func (r *userRepositoryImpl) GetRecipient(ctx context.Context, userID string) (notification.Recipient, error) {
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return notification.Recipient{}, err
	}
	return toRecipient(u), nil
}

// ListRecipients implements notification.RecipientDirectory.
func (r *userRepositoryImpl) ListRecipients(ctx context.Context, filter notification.AudienceFilter) ([]notification.Recipient, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"u.is_active = TRUE"}
	args := []interface{}{}
	argIdx := 1

	if len(filter.UserIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("u.id = ANY($%d::uuid[])", argIdx))
		args = append(args, filter.UserIDs)
		argIdx++
	}
	if filter.Department != nil && *filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("e.department = $%d", argIdx))
		args = append(args, *filter.Department)
		argIdx++
	}
	if filter.Role != nil && *filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("u.role = $%d", argIdx))
		args = append(args, *filter.Role)
	}

	query := "SELECT " + userColumns + userFrom + " WHERE " + strings.Join(conditions, " AND ")
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}
	defer rows.Close()

	var out []notification.Recipient
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, toRecipient(u))
	}
	return out, rows.Err()
}

func toRecipient(u user.User) notification.Recipient {
	name := u.Email
	if u.FullName != nil {
		name = *u.FullName
	}
	return notification.Recipient{UserID: u.ID, Email: u.Email, Name: name}
}
