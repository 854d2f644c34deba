package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tier is a membership level.
type Tier string

const (
	TierBasic       Tier = "BASIC"
	TierBronze      Tier = "BRONZE"
	TierSilver      Tier = "SILVER"
	TierGold        Tier = "GOLD"
	TierPlatinumVIP Tier = "PLATINUM_VIP"
)

const (
	// PointExpiryDays is how long an earned point stays spendable.
	PointExpiryDays = 365
	// LoyaltyCycle is the length of the every-Nth-wash-free program.
	LoyaltyCycle = 9
)

// TierBenefits is one row of the tier schedule.
type TierBenefits struct {
	DiscountPercent int64
	MonthlyFreeWash int
	PointRate       decimal.Decimal
	RainGuarantee   bool
	ExtraVehicles   bool
}

var tierSchedule = map[Tier]TierBenefits{
	TierBasic:       {DiscountPercent: 0, MonthlyFreeWash: 1, PointRate: decimal.NewFromInt(1)},
	TierBronze:      {DiscountPercent: 5, MonthlyFreeWash: 1, PointRate: decimal.NewFromInt(1)},
	TierSilver:      {DiscountPercent: 10, MonthlyFreeWash: 1, PointRate: decimal.RequireFromString("1.5")},
	TierGold:        {DiscountPercent: 15, MonthlyFreeWash: 4, PointRate: decimal.RequireFromString("2.5"), RainGuarantee: true},
	TierPlatinumVIP: {DiscountPercent: 20, MonthlyFreeWash: 5, PointRate: decimal.NewFromInt(3), RainGuarantee: true, ExtraVehicles: true},
}

// Tiers returns every tier from lowest to highest.
func Tiers() []Tier {
	return []Tier{TierBasic, TierBronze, TierSilver, TierGold, TierPlatinumVIP}
}

// IsValid reports whether t is a known tier.
func (t Tier) IsValid() bool {
	_, ok := tierSchedule[t]
	return ok
}

// Benefits returns a copy of the schedule row for t. Unknown tiers get BASIC.
func (t Tier) Benefits() TierBenefits {
	if b, ok := tierSchedule[t]; ok {
		return b
	}
	return tierSchedule[TierBasic]
}

func (t Tier) DiscountPercent() int64 { return t.Benefits().DiscountPercent }
func (t Tier) MonthlyFreeWashQuota() int { return t.Benefits().MonthlyFreeWash }
func (t Tier) PointRate() decimal.Decimal { return t.Benefits().PointRate }
func (t Tier) HasRainGuarantee() bool { return t.Benefits().RainGuarantee }
func (t Tier) AllowsExtraVehicles() bool { return t.Benefits().ExtraVehicles }

// Membership is one purchased membership period for a vehicle.
type Membership struct {
	ID             int64     `json:"id" db:"id"`
	VehicleID      int64     `json:"vehicle_id" db:"vehicle_id"`
	Tier           Tier      `json:"tier" db:"tier"`
	StartsAt       time.Time `json:"starts_at" db:"starts_at"`
	EndsAt         time.Time `json:"ends_at" db:"ends_at"`
	DurationMonths int       `json:"duration_months" db:"duration_months"`
	ExtraVehicles  int       `json:"extra_vehicles" db:"extra_vehicles"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	PlateNumber *string `json:"plate_number,omitempty"`
}

// IsActiveOn reports whether the membership still covers day.
func (m Membership) IsActiveOn(day time.Time) bool {
	return !m.EndsAt.Before(day)
}

// MembershipFilters narrows membership listings.
type MembershipFilters struct {
	VehicleID  *int64 `form:"vehicle_id"`
	CustomerID *int64 `form:"customer_id"`
	Tier       *Tier  `form:"tier"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}
