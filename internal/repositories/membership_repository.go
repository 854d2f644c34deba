package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"carwash_backend/internal/models"
)

// MembershipRepository defines the interface for membership database operations.
type MembershipRepository interface {
	CreateMembership(executor SQLExecutor, membership *models.Membership) (int64, error)
	GetMembershipByID(executor SQLExecutor, id int64) (*models.Membership, error)
	// FindActiveMembership returns the most recently started membership of the
	// vehicle still running on referenceDate, or ErrNotFound.
	FindActiveMembership(executor SQLExecutor, vehicleID int64, referenceDate time.Time) (*models.Membership, error)
	GetMembershipsByVehicle(executor SQLExecutor, vehicleID int64) ([]models.Membership, error)
	GetMemberships(filters models.MembershipFilters) ([]models.Membership, int, error)
	UpdateMembershipEndsAt(executor SQLExecutor, id int64, endsAt time.Time) error
	DeleteMembership(executor SQLExecutor, id int64) error
}

type membershipRepository struct {
	db *sql.DB
}

// NewMembershipRepository creates a new instance of MembershipRepository.
func NewMembershipRepository(db *sql.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

const membershipColumns = `m.id, m.vehicle_id, m.tier, m.starts_at, m.ends_at, m.duration_months, m.extra_vehicles, m.created_at`

// sqlDate renders a date-only parameter so Postgres never reinterprets it in
// the session time zone.
func sqlDate(t time.Time) string {
	return t.Format(models.DateLayout)
}

func scanMembership(s scanner, extra ...interface{}) (*models.Membership, error) {
	m := &models.Membership{}
	dest := append([]interface{}{&m.ID, &m.VehicleID, &m.Tier, &m.StartsAt, &m.EndsAt, &m.DurationMonths,
		&m.ExtraVehicles, &m.CreatedAt}, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	m.StartsAt = models.TruncateDay(m.StartsAt)
	m.EndsAt = models.TruncateDay(m.EndsAt)
	return m, nil
}

func (r *membershipRepository) CreateMembership(executor SQLExecutor, membership *models.Membership) (int64, error) {
	query := `INSERT INTO memberships (vehicle_id, tier, starts_at, ends_at, duration_months, extra_vehicles, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	membership.CreatedAt = time.Now()
	err := executor.QueryRow(query, membership.VehicleID, membership.Tier, sqlDate(membership.StartsAt),
		sqlDate(membership.EndsAt), membership.DurationMonths, membership.ExtraVehicles, membership.CreatedAt,
	).Scan(&membership.ID)
	if err != nil {
		return 0, classifyWriteError(err, "creating membership")
	}
	return membership.ID, nil
}

func (r *membershipRepository) GetMembershipByID(executor SQLExecutor, id int64) (*models.Membership, error) {
	m, err := scanMembership(executor.QueryRow(`SELECT `+membershipColumns+` FROM memberships m WHERE m.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting membership by ID %d: %v", ErrDatabaseError, id, err)
	}
	return m, nil
}

func (r *membershipRepository) FindActiveMembership(executor SQLExecutor, vehicleID int64, referenceDate time.Time) (*models.Membership, error) {
	query := `SELECT ` + membershipColumns + `
	          FROM memberships m
	          WHERE m.vehicle_id = $1 AND m.ends_at >= $2
	          ORDER BY m.starts_at DESC, m.id DESC
	          LIMIT 1`
	m, err := scanMembership(executor.QueryRow(query, vehicleID, sqlDate(referenceDate)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding active membership for vehicle %d: %v", ErrDatabaseError, vehicleID, err)
	}
	return m, nil
}

// GetMembershipsByVehicle returns every membership of the vehicle, newest start first.
func (r *membershipRepository) GetMembershipsByVehicle(executor SQLExecutor, vehicleID int64) ([]models.Membership, error) {
	query := `SELECT ` + membershipColumns + `
	          FROM memberships m
	          WHERE m.vehicle_id = $1
	          ORDER BY m.starts_at DESC, m.id DESC`
	rows, err := executor.Query(query, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying memberships for vehicle %d: %v", ErrDatabaseError, vehicleID, err)
	}
	defer rows.Close()

	memberships := []models.Membership{}
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning membership: %v", ErrDatabaseError, err)
		}
		memberships = append(memberships, *m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating membership rows: %v", ErrDatabaseError, err)
	}
	return memberships, nil
}

func (r *membershipRepository) GetMemberships(filters models.MembershipFilters) ([]models.Membership, int, error) {
	memberships := []models.Membership{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + membershipColumns + `, v.plate_number, COUNT(*) OVER() AS total_count
	          FROM memberships m
	          JOIN vehicles v ON v.id = m.vehicle_id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.VehicleID != nil {
		conditions = append(conditions, fmt.Sprintf("m.vehicle_id = $%d", argCount))
		args = append(args, *filters.VehicleID)
		argCount++
	}
	if filters.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("v.customer_id = $%d", argCount))
		args = append(args, *filters.CustomerID)
		argCount++
	}
	if filters.Tier != nil && *filters.Tier != "" {
		conditions = append(conditions, fmt.Sprintf("m.tier = $%d", argCount))
		args = append(args, *filters.Tier)
		argCount++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY m.starts_at DESC, m.id DESC")
	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, filters.PageSize, pageOffset(filters.Page, filters.PageSize))
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying memberships: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var plate string
		m, err := scanMembership(rows, &plate, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning membership: %v", ErrDatabaseError, err)
		}
		m.PlateNumber = &plate
		memberships = append(memberships, *m)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating membership rows: %v", ErrDatabaseError, err)
	}
	return memberships, totalCount, nil
}

func (r *membershipRepository) UpdateMembershipEndsAt(executor SQLExecutor, id int64, endsAt time.Time) error {
	result, err := executor.Exec(`UPDATE memberships SET ends_at = $1 WHERE id = $2`, sqlDate(endsAt), id)
	if err != nil {
		return fmt.Errorf("%w: updating ends_at of membership ID %d: %v", ErrDatabaseError, id, err)
	}
	return checkAffected(result, fmt.Sprintf("updating ends_at of membership ID %d", id))
}

func (r *membershipRepository) DeleteMembership(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM memberships WHERE id = $1`, id)
	if err != nil {
		return classifyWriteError(err, fmt.Sprintf("deleting membership ID %d", id))
	}
	return checkAffected(result, fmt.Sprintf("deleting membership ID %d", id))
}
