package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction statuses, in the order a car moves through the bay.
const (
	StatusQueued    = "QUEUED"
	StatusWashing   = "WASHING"
	StatusFinishing = "FINISHING"
	StatusDone      = "DONE"
)

// IsValidTransactionStatus reports whether status is a known transaction status.
func IsValidTransactionStatus(status string) bool {
	switch status {
	case StatusQueued, StatusWashing, StatusFinishing, StatusDone:
		return true
	default:
		return false
	}
}

// Transaction is one wash rung up at the counter.
type Transaction struct {
	ID                    int64           `json:"id" db:"id"`
	TrxDate               time.Time       `json:"trx_date" db:"trx_date"`
	CustomerID            *int64          `json:"customer_id,omitempty" db:"customer_id"`
	VehicleID             *int64          `json:"vehicle_id,omitempty" db:"vehicle_id"`
	CategoryID            int64           `json:"category_id" db:"category_id"`
	EmployeeID            int64           `json:"employee_id" db:"employee_id"`
	CarBrand              string          `json:"car_brand" db:"car_brand"`
	PlateNumber           string          `json:"plate_number" db:"plate_number"`
	Notes                 *string         `json:"notes,omitempty" db:"notes"`
	Price                 decimal.Decimal `json:"price" db:"price"`
	BasePrice             decimal.Decimal `json:"base_price" db:"base_price"`
	DiscountPercent       int64           `json:"discount_percent" db:"discount_percent"`
	DiscountAmount        decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	IsMembershipQuotaFree bool            `json:"is_membership_quota_free" db:"is_membership_quota_free"`
	IsLoyaltyFree         bool            `json:"is_loyalty_free" db:"is_loyalty_free"`
	IsRainGuaranteeFree   bool            `json:"is_rain_guarantee_free" db:"is_rain_guarantee_free"`
	Status                string          `json:"status" db:"status"`
	CreatedAt             time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at" db:"updated_at"`

	// Joined for listings.
	CategoryName *string `json:"category_name,omitempty"`
	CustomerName *string `json:"customer_name,omitempty"`
	EmployeeName *string `json:"employee_name,omitempty"`
}

// ApplyPricing copies a pricing result onto the persisted columns.
func (t *Transaction) ApplyPricing(p PricingResult) {
	t.BasePrice = p.BasePrice
	t.DiscountPercent = p.DiscountPercent
	t.DiscountAmount = p.DiscountAmount
	t.IsMembershipQuotaFree = p.IsMembershipQuotaFree
	t.IsLoyaltyFree = p.IsLoyaltyFree
	t.IsRainGuaranteeFree = p.IsRainGuaranteeFree
	t.Price = p.FinalPrice
}

// PricingResult is both the preview response and the set of pricing columns
// written onto a transaction (tier is not stored).
type PricingResult struct {
	Tier                  Tier            `json:"tier"`
	BasePrice             decimal.Decimal `json:"base_price"`
	DiscountPercent       int64           `json:"discount_percent"`
	DiscountAmount        decimal.Decimal `json:"discount_amount"`
	IsMembershipQuotaFree bool            `json:"is_membership_quota_free"`
	IsLoyaltyFree         bool            `json:"is_loyalty_free"`
	IsRainGuaranteeFree   bool            `json:"is_rain_guarantee_free"`
	FinalPrice            decimal.Decimal `json:"final_price"`
}

// IsFree reports whether any free-wash benefit zeroed the price.
func (p PricingResult) IsFree() bool {
	return p.IsMembershipQuotaFree || p.IsLoyaltyFree || p.IsRainGuaranteeFree
}

// HistoryFilter selects past transactions of one customer and plate for the
// quota and loyalty counts. Nil fields do not filter.
type HistoryFilter struct {
	CustomerID            int64
	PlateNumber           string
	From                  *time.Time
	To                    time.Time
	WashTypes             []string
	IsMembershipQuotaFree *bool
	IsRainGuaranteeFree   *bool
	ExcludeTransactionID  *int64
}

// TransactionFilters narrows transaction listings and exports.
type TransactionFilters struct {
	CustomerID  *int64  `form:"customer_id"`
	EmployeeID  *int64  `form:"employee_id"`
	CategoryID  *int64  `form:"category_id"`
	Status      *string `form:"status"`
	PlateNumber *string `form:"plate_number"`
	DateFrom    *string `form:"date_from"` // YYYY-MM-DD
	DateTo      *string `form:"date_to"`   // YYYY-MM-DD
	Page        int     `form:"page"`
	PageSize    int     `form:"page_size"`
}
