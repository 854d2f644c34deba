package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"carwash_backend/internal/models"
)

// TransactionRepository defines the interface for cashier transaction database operations.
type TransactionRepository interface {
	CreateTransaction(executor SQLExecutor, trx *models.Transaction) (int64, error)
	GetTransactionByID(executor SQLExecutor, id int64) (*models.Transaction, error)
	GetTransactions(filters models.TransactionFilters) ([]models.Transaction, int, error)
	UpdateTransaction(executor SQLExecutor, trx *models.Transaction) error
	UpdateTransactionStatus(executor SQLExecutor, id int64, status string, updatedAt time.Time) error
	DeleteTransaction(executor SQLExecutor, id int64) error

	// CountHistory counts past transactions of one customer and plate. It is
	// the single query behind both the free-wash quota and the loyalty cycle.
	CountHistory(executor SQLExecutor, filter models.HistoryFilter) (int, error)
	// LockCustomerPlate takes a transaction-scoped advisory lock so concurrent
	// submissions for the same customer and plate are serialized until commit.
	LockCustomerPlate(executor SQLExecutor, customerID int64, plateNumber string) error
}

type transactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new instance of TransactionRepository.
func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `t.id, t.trx_date, t.customer_id, t.vehicle_id, t.category_id, t.employee_id,
	t.car_brand, t.plate_number, t.notes, t.price, t.base_price, t.discount_percent, t.discount_amount,
	t.is_membership_quota_free, t.is_loyalty_free, t.is_rain_guarantee_free, t.status, t.created_at, t.updated_at`

func scanTransaction(s scanner, extra ...interface{}) (*models.Transaction, error) {
	t := &models.Transaction{}
	dest := append([]interface{}{
		&t.ID, &t.TrxDate, &t.CustomerID, &t.VehicleID, &t.CategoryID, &t.EmployeeID,
		&t.CarBrand, &t.PlateNumber, &t.Notes, &t.Price, &t.BasePrice, &t.DiscountPercent, &t.DiscountAmount,
		&t.IsMembershipQuotaFree, &t.IsLoyaltyFree, &t.IsRainGuaranteeFree, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	}, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	t.TrxDate = models.TruncateDay(t.TrxDate)
	return t, nil
}

func (r *transactionRepository) CreateTransaction(executor SQLExecutor, trx *models.Transaction) (int64, error) {
	query := `INSERT INTO transactions
	            (trx_date, customer_id, vehicle_id, category_id, employee_id, car_brand, plate_number, notes,
	             price, base_price, discount_percent, discount_amount,
	             is_membership_quota_free, is_loyalty_free, is_rain_guarantee_free, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	          RETURNING id`

	now := time.Now()
	trx.CreatedAt, trx.UpdatedAt = now, now

	err := executor.QueryRow(query,
		sqlDate(trx.TrxDate), trx.CustomerID, trx.VehicleID, trx.CategoryID, trx.EmployeeID, trx.CarBrand, trx.PlateNumber, trx.Notes,
		trx.Price, trx.BasePrice, trx.DiscountPercent, trx.DiscountAmount,
		trx.IsMembershipQuotaFree, trx.IsLoyaltyFree, trx.IsRainGuaranteeFree, trx.Status, trx.CreatedAt, trx.UpdatedAt,
	).Scan(&trx.ID)
	if err != nil {
		return 0, classifyWriteError(err, "creating transaction")
	}
	return trx.ID, nil
}

func (r *transactionRepository) GetTransactionByID(executor SQLExecutor, id int64) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + `, c.name, cu.full_name, e.full_name
	          FROM transactions t
	          JOIN categories c ON c.id = t.category_id
	          LEFT JOIN users cu ON cu.id = t.customer_id
	          LEFT JOIN users e ON e.id = t.employee_id
	          WHERE t.id = $1`
	var categoryName string
	var customerName, employeeName sql.NullString
	trx, err := scanTransaction(executor.QueryRow(query, id), &categoryName, &customerName, &employeeName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting transaction by ID %d: %v", ErrDatabaseError, id, err)
	}
	attachNames(trx, categoryName, customerName, employeeName)
	return trx, nil
}

func attachNames(trx *models.Transaction, categoryName string, customerName, employeeName sql.NullString) {
	trx.CategoryName = &categoryName
	if customerName.Valid {
		name := customerName.String
		trx.CustomerName = &name
	}
	if employeeName.Valid {
		name := employeeName.String
		trx.EmployeeName = &name
	}
}

// GetTransactions lists transactions newest first. A zero PageSize returns every match.
func (r *transactionRepository) GetTransactions(filters models.TransactionFilters) ([]models.Transaction, int, error) {
	transactions := []models.Transaction{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + transactionColumns + `, c.name, cu.full_name, e.full_name, COUNT(*) OVER() AS total_count
	          FROM transactions t
	          JOIN categories c ON c.id = t.category_id
	          LEFT JOIN users cu ON cu.id = t.customer_id
	          LEFT JOIN users e ON e.id = t.employee_id`)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("t.customer_id = $%d", argCounter))
		args = append(args, *filters.CustomerID)
		argCounter++
	}
	if filters.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("t.employee_id = $%d", argCounter))
		args = append(args, *filters.EmployeeID)
		argCounter++
	}
	if filters.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("t.category_id = $%d", argCounter))
		args = append(args, *filters.CategoryID)
		argCounter++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", argCounter))
		args = append(args, *filters.Status)
		argCounter++
	}
	if filters.PlateNumber != nil && *filters.PlateNumber != "" {
		conditions = append(conditions, fmt.Sprintf("t.plate_number = $%d", argCounter))
		args = append(args, models.NormalizePlate(*filters.PlateNumber))
		argCounter++
	}
	if filters.DateFrom != nil && *filters.DateFrom != "" {
		if from, err := models.ParseDate(*filters.DateFrom); err == nil {
			conditions = append(conditions, fmt.Sprintf("t.trx_date >= $%d", argCounter))
			args = append(args, sqlDate(from))
			argCounter++
		}
	}
	if filters.DateTo != nil && *filters.DateTo != "" {
		if to, err := models.ParseDate(*filters.DateTo); err == nil {
			conditions = append(conditions, fmt.Sprintf("t.trx_date <= $%d", argCounter))
			args = append(args, sqlDate(to))
			argCounter++
		}
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY t.trx_date DESC, t.id DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCounter, argCounter+1))
		args = append(args, filters.PageSize, pageOffset(filters.Page, filters.PageSize))
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying transactions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var categoryName string
		var customerName, employeeName sql.NullString
		trx, err := scanTransaction(rows, &categoryName, &customerName, &employeeName, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning transaction: %v", ErrDatabaseError, err)
		}
		attachNames(trx, categoryName, customerName, employeeName)
		transactions = append(transactions, *trx)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating transaction rows: %v", ErrDatabaseError, err)
	}
	return transactions, totalCount, nil
}

// UpdateTransaction rewrites the editable and pricing columns; status is untouched.
func (r *transactionRepository) UpdateTransaction(executor SQLExecutor, trx *models.Transaction) error {
	query := `UPDATE transactions SET
	            trx_date = $1, customer_id = $2, vehicle_id = $3, category_id = $4, employee_id = $5,
	            car_brand = $6, plate_number = $7, notes = $8,
	            price = $9, base_price = $10, discount_percent = $11, discount_amount = $12,
	            is_membership_quota_free = $13, is_loyalty_free = $14, is_rain_guarantee_free = $15,
	            updated_at = $16
	          WHERE id = $17`
	trx.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		sqlDate(trx.TrxDate), trx.CustomerID, trx.VehicleID, trx.CategoryID, trx.EmployeeID,
		trx.CarBrand, trx.PlateNumber, trx.Notes,
		trx.Price, trx.BasePrice, trx.DiscountPercent, trx.DiscountAmount,
		trx.IsMembershipQuotaFree, trx.IsLoyaltyFree, trx.IsRainGuaranteeFree,
		trx.UpdatedAt, trx.ID,
	)
	if err != nil {
		return classifyWriteError(err, fmt.Sprintf("updating transaction ID %d", trx.ID))
	}
	return checkAffected(result, fmt.Sprintf("updating transaction ID %d", trx.ID))
}

func (r *transactionRepository) UpdateTransactionStatus(executor SQLExecutor, id int64, status string, updatedAt time.Time) error {
	result, err := executor.Exec(`UPDATE transactions SET status = $1, updated_at = $2 WHERE id = $3`, status, updatedAt, id)
	if err != nil {
		return fmt.Errorf("%w: updating status of transaction ID %d: %v", ErrDatabaseError, id, err)
	}
	return checkAffected(result, fmt.Sprintf("updating status of transaction ID %d", id))
}

func (r *transactionRepository) DeleteTransaction(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return classifyWriteError(err, fmt.Sprintf("deleting transaction ID %d", id))
	}
	return checkAffected(result, fmt.Sprintf("deleting transaction ID %d", id))
}

func (r *transactionRepository) CountHistory(executor SQLExecutor, filter models.HistoryFilter) (int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT COUNT(*) FROM transactions t
	          WHERE t.customer_id = $1 AND t.plate_number = $2 AND t.trx_date <= $3`)
	args := []interface{}{filter.CustomerID, filter.PlateNumber, sqlDate(filter.To)}
	argCounter := 4

	if filter.From != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.trx_date >= $%d", argCounter))
		args = append(args, sqlDate(*filter.From))
		argCounter++
	}
	if len(filter.WashTypes) > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.category_id IN (SELECT id FROM categories WHERE wash_type = ANY($%d))", argCounter))
		args = append(args, pq.Array(filter.WashTypes))
		argCounter++
	}
	if filter.IsMembershipQuotaFree != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.is_membership_quota_free = $%d", argCounter))
		args = append(args, *filter.IsMembershipQuotaFree)
		argCounter++
	}
	if filter.IsRainGuaranteeFree != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.is_rain_guarantee_free = $%d", argCounter))
		args = append(args, *filter.IsRainGuaranteeFree)
		argCounter++
	}
	if filter.ExcludeTransactionID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND t.id <> $%d", argCounter))
		args = append(args, *filter.ExcludeTransactionID)
	}

	var count int
	if err := executor.QueryRow(queryBuilder.String(), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting history of customer %d plate %s: %v", ErrDatabaseError, filter.CustomerID, filter.PlateNumber, err)
	}
	return count, nil
}

func (r *transactionRepository) LockCustomerPlate(executor SQLExecutor, customerID int64, plateNumber string) error {
	key := fmt.Sprintf("trx:%d:%s", customerID, plateNumber)
	if _, err := executor.Exec(`SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("%w: locking customer %d plate %s: %v", ErrDatabaseError, customerID, plateNumber, err)
	}
	return nil
}
