package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"carwash_backend/internal/models"
)

// PointRepository defines the interface for loyalty point database operations.
type PointRepository interface {
	CreatePointEntry(executor SQLExecutor, entry *models.PointEntry) (int64, error)
	GetPointEntryByTransactionID(transactionID int64) (*models.PointEntry, error)
	ExistsForTransaction(executor SQLExecutor, transactionID int64) (bool, error)
	DeleteByTransactionID(executor SQLExecutor, transactionID int64) (int64, error)
	// GetActiveEntries returns the customer's entries that have not expired on asOf.
	GetActiveEntries(customerID int64, asOf time.Time) ([]models.PointEntry, error)
}

type pointRepository struct {
	db *sql.DB
}

// NewPointRepository creates a new instance of PointRepository.
func NewPointRepository(db *sql.DB) PointRepository {
	return &pointRepository{db: db}
}

const pointColumns = `id, customer_id, transaction_id, points, earned_at, expires_at, created_at`

func scanPointEntry(s scanner) (*models.PointEntry, error) {
	p := &models.PointEntry{}
	if err := s.Scan(&p.ID, &p.CustomerID, &p.TransactionID, &p.Points, &p.EarnedAt, &p.ExpiresAt, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.EarnedAt = models.TruncateDay(p.EarnedAt)
	p.ExpiresAt = models.TruncateDay(p.ExpiresAt)
	return p, nil
}

func (r *pointRepository) CreatePointEntry(executor SQLExecutor, entry *models.PointEntry) (int64, error) {
	query := `INSERT INTO points (customer_id, transaction_id, points, earned_at, expires_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (transaction_id) DO NOTHING
	          RETURNING id`
	entry.CreatedAt = time.Now()
	err := executor.QueryRow(query, entry.CustomerID, entry.TransactionID, entry.Points,
		sqlDate(entry.EarnedAt), sqlDate(entry.ExpiresAt), entry.CreatedAt).Scan(&entry.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: points already granted for transaction %d", ErrDuplicateKey, entry.TransactionID)
	}
	if err != nil {
		return 0, classifyWriteError(err, fmt.Sprintf("creating point entry for transaction %d", entry.TransactionID))
	}
	return entry.ID, nil
}

func (r *pointRepository) GetPointEntryByTransactionID(transactionID int64) (*models.PointEntry, error) {
	query := `SELECT ` + pointColumns + ` FROM points WHERE transaction_id = $1`
	entry, err := scanPointEntry(r.db.QueryRow(query, transactionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting points of transaction %d: %v", ErrDatabaseError, transactionID, err)
	}
	return entry, nil
}

func (r *pointRepository) ExistsForTransaction(executor SQLExecutor, transactionID int64) (bool, error) {
	var exists bool
	err := executor.QueryRow(`SELECT EXISTS (SELECT 1 FROM points WHERE transaction_id = $1)`, transactionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: checking points of transaction %d: %v", ErrDatabaseError, transactionID, err)
	}
	return exists, nil
}

// DeleteByTransactionID removes the grant of a transaction. Deleting nothing is not an error.
func (r *pointRepository) DeleteByTransactionID(executor SQLExecutor, transactionID int64) (int64, error) {
	result, err := executor.Exec(`DELETE FROM points WHERE transaction_id = $1`, transactionID)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting points of transaction %d: %v", ErrDatabaseError, transactionID, err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for points of transaction %d: %v", ErrDatabaseError, transactionID, err)
	}
	return deleted, nil
}

func (r *pointRepository) GetActiveEntries(customerID int64, asOf time.Time) ([]models.PointEntry, error) {
	query := `SELECT ` + pointColumns + ` FROM points
	          WHERE customer_id = $1 AND expires_at >= $2
	          ORDER BY expires_at ASC, id ASC`
	rows, err := r.db.Query(query, customerID, sqlDate(asOf))
	if err != nil {
		return nil, fmt.Errorf("%w: querying points of customer %d: %v", ErrDatabaseError, customerID, err)
	}
	defer rows.Close()

	entries := []models.PointEntry{}
	for rows.Next() {
		entry, err := scanPointEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning point entry: %v", ErrDatabaseError, err)
		}
		entries = append(entries, *entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating point rows: %v", ErrDatabaseError, err)
	}
	return entries, nil
}
