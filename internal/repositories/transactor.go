package repositories

import (
	"database/sql"
	"fmt"
)

// Transactor runs a unit of work inside one database transaction.
type Transactor interface {
	WithinTransaction(fn func(tx SQLExecutor) error) error
}

type sqlTransactor struct {
	db *sql.DB
}

// NewTransactor creates a Transactor over the connection pool.
func NewTransactor(db *sql.DB) Transactor {
	return &sqlTransactor{db: db}
}

// WithinTransaction commits when fn returns nil and rolls back otherwise.
func (t *sqlTransactor) WithinTransaction(fn func(tx SQLExecutor) error) error {
	tx, err := t.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: starting transaction: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", ErrDatabaseError, err)
	}
	return nil
}
