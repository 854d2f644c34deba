package models

import "github.com/shopspring/decimal"

// DashboardSummary holds key metrics for the dashboard.
type DashboardSummary struct {
	WashesToday         int             `json:"washes_today"`
	QueuedCount         int             `json:"queued_count"`
	InProgressCount     int             `json:"in_progress_count"` // WASHING + FINISHING
	RevenueToday        decimal.Decimal `json:"revenue_today"`
	RevenueThisMonth    decimal.Decimal `json:"revenue_this_month"`
	FreeWashesThisMonth int             `json:"free_washes_this_month"`
	ActiveMemberships   int             `json:"active_memberships"`
}
