package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wash types tag categories for the benefit rules.
const (
	WashTypeRegular = "regular"
	WashTypeExpress = "express"
	WashTypeOther   = "other"
)

// Category is a priced service on the menu board.
type Category struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	WashType    string          `json:"wash_type" db:"wash_type"`
	Description *string         `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// IsRegularWash reports whether the category is one of the regular washes.
func (c Category) IsRegularWash() bool { return c.WashType == WashTypeRegular }

// IsExpress reports whether the category is the express wash.
func (c Category) IsExpress() bool { return c.WashType == WashTypeExpress }

// CountsForLoyalty reports whether washes in this category take part in the
// every-9th-wash program, both as the wash being priced and as history.
func (c Category) CountsForLoyalty() bool { return c.IsRegularWash() || c.IsExpress() }

// IsValidWashType reports whether t is a known wash type.
func IsValidWashType(t string) bool {
	switch t {
	case WashTypeRegular, WashTypeExpress, WashTypeOther:
		return true
	default:
		return false
	}
}

// LoyaltyWashTypes lists the wash types whose transactions count toward the loyalty cycle.
var LoyaltyWashTypes = []string{WashTypeRegular, WashTypeExpress}
