package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PointEntry is the loyalty grant of one completed transaction.
type PointEntry struct {
	ID            int64           `json:"id" db:"id"`
	CustomerID    int64           `json:"customer_id" db:"customer_id"`
	TransactionID int64           `json:"transaction_id" db:"transaction_id"`
	Points        decimal.Decimal `json:"points" db:"points"`
	EarnedAt      time.Time       `json:"earned_at" db:"earned_at"`
	ExpiresAt     time.Time       `json:"expires_at" db:"expires_at"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// IsExpiredOn reports whether the entry can no longer be spent on day.
func (p PointEntry) IsExpiredOn(day time.Time) bool {
	return p.ExpiresAt.Before(day)
}

// PointBalance summarizes a customer's spendable points.
type PointBalance struct {
	CustomerID int64           `json:"customer_id"`
	AsOf       time.Time       `json:"as_of"`
	Balance    decimal.Decimal `json:"balance"`
	Entries    []PointEntry    `json:"entries"`
}
