package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"carwash_backend/internal/models"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	CreateUser(executor SQLExecutor, user *models.User) (int64, error)
	FindUserByID(userID int64) (*models.User, error)
	FindUserByUsername(username string) (*models.User, error) // includes PasswordHash
	GetUsers(filters models.UserFilters) ([]models.User, int, error)
	UpdateUser(executor SQLExecutor, user *models.User) error
	UpdatePassword(executor SQLExecutor, userID int64, passwordHash string) error
	DeleteUser(executor SQLExecutor, userID int64) error
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, password_hash, full_name, phone_number, email, role, is_active, created_at, updated_at`

func scanUser(s scanner) (*models.User, error) {
	u := &models.User{}
	err := s.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.PhoneNumber, &u.Email,
		&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUser inserts a new user. PasswordHash must already be hashed.
func (r *userRepository) CreateUser(executor SQLExecutor, user *models.User) (int64, error) {
	query := `INSERT INTO users (username, password_hash, full_name, phone_number, email, role, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`

	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now

	err := executor.QueryRow(query,
		user.Username, user.PasswordHash, user.FullName, user.PhoneNumber, user.Email,
		user.Role, user.IsActive, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		return 0, classifyWriteError(err, "creating user")
	}
	return user.ID, nil
}

// FindUserByID retrieves a user by ID. The password hash is cleared.
func (r *userRepository) FindUserByID(userID int64) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by ID %d: %v", ErrDatabaseError, userID, err)
	}
	user.PasswordHash = ""
	return user, nil
}

// FindUserByUsername retrieves a user with the stored password hash for login.
func (r *userRepository) FindUserByUsername(username string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE LOWER(username) = LOWER($1)`, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by username %s: %v", ErrDatabaseError, username, err)
	}
	return user, nil
}

// GetUsers lists users filtered by role and a name/username/phone search.
func (r *userRepository) GetUsers(filters models.UserFilters) ([]models.User, int, error) {
	users := []models.User{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + userColumns + `, COUNT(*) OVER() AS total_count FROM users`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Role != nil && *filters.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argCount))
		args = append(args, *filters.Role)
		argCount++
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(full_name ILIKE $%d OR username ILIKE $%d OR phone_number ILIKE $%d)", argCount, argCount, argCount))
		args = append(args, "%"+*filters.Search+"%")
		argCount++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY full_name ASC, id ASC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, filters.PageSize, pageOffset(filters.Page, filters.PageSize))
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.PhoneNumber, &u.Email,
			&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		u.PasswordHash = ""
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating user rows: %v", ErrDatabaseError, err)
	}
	return users, totalCount, nil
}

// UpdateUser updates profile fields (not the password).
func (r *userRepository) UpdateUser(executor SQLExecutor, user *models.User) error {
	query := `UPDATE users SET
	            username = $1, full_name = $2, phone_number = $3, email = $4, role = $5, is_active = $6, updated_at = $7
	          WHERE id = $8`
	user.UpdatedAt = time.Now()
	result, err := executor.Exec(query, user.Username, user.FullName, user.PhoneNumber, user.Email,
		user.Role, user.IsActive, user.UpdatedAt, user.ID)
	if err != nil {
		return classifyWriteError(err, fmt.Sprintf("updating user ID %d", user.ID))
	}
	return checkAffected(result, fmt.Sprintf("updating user ID %d", user.ID))
}

// UpdatePassword replaces the stored password hash.
func (r *userRepository) UpdatePassword(executor SQLExecutor, userID int64, passwordHash string) error {
	result, err := executor.Exec(`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`, passwordHash, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("%w: updating password for user ID %d: %v", ErrDatabaseError, userID, err)
	}
	return checkAffected(result, fmt.Sprintf("updating password for user ID %d", userID))
}

// DeleteUser removes a user; referenced users fail with ErrForeignKey.
func (r *userRepository) DeleteUser(executor SQLExecutor, userID int64) error {
	result, err := executor.Exec(`DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return classifyWriteError(err, fmt.Sprintf("deleting user ID %d", userID))
	}
	return checkAffected(result, fmt.Sprintf("deleting user ID %d", userID))
}
