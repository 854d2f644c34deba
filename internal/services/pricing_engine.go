package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"carwash_backend/internal/models"
	"carwash_backend/internal/repositories"
)

var ErrPricingValidation = errors.New("pricing input validation error")

var hundred = decimal.NewFromInt(100)

// PricingInput carries everything the engine needs to price one wash.
// CustomerID and VehicleID are optional; walk-in sales leave them nil.
type PricingInput struct {
	TrxDate              time.Time
	CustomerID           *int64
	VehicleID            *int64
	Category             *models.Category
	PlateNumber          string
	RainGuaranteeFree    bool
	ExcludeTransactionID *int64 // set when re-pricing an existing transaction
}

func (in PricingInput) validate() error {
	var missing []string
	if in.TrxDate.IsZero() {
		missing = append(missing, "trx_date")
	}
	if in.Category == nil {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(in.PlateNumber) == "" {
		missing = append(missing, "plate_number")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrPricingValidation, strings.Join(missing, ", "))
	}
	return nil
}

// PricingEngine computes the price and free-wash benefits of a wash.
type PricingEngine interface {
	ComputePricing(executor repositories.SQLExecutor, in PricingInput) (*models.PricingResult, error)
}

type pricingEngine struct {
	resolver MembershipResolver
	trxRepo  repositories.TransactionRepository
}

// NewPricingEngine creates a new instance of PricingEngine.
func NewPricingEngine(resolver MembershipResolver, trxRepo repositories.TransactionRepository) PricingEngine {
	return &pricingEngine{resolver: resolver, trxRepo: trxRepo}
}

func (e *pricingEngine) ComputePricing(executor repositories.SQLExecutor, in PricingInput) (*models.PricingResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	trxDate := models.TruncateDay(in.TrxDate)
	plate := models.NormalizePlate(in.PlateNumber)

	basePrice := in.Category.Price
	tier := models.TierBasic

	var membership *models.Membership
	if in.VehicleID != nil {
		m, err := e.resolver.ResolveActiveMembership(executor, *in.VehicleID, trxDate)
		if err != nil {
			return nil, err
		}
		if m != nil {
			membership = m
			tier = m.Tier
		}
	}

	// Percent is applied as a whole-number rounding before dividing by 100.
	discountPercent := tier.DiscountPercent()
	discountAmount := basePrice.Mul(decimal.NewFromInt(discountPercent)).Round(0).Div(hundred)
	finalPrice := decimal.Max(decimal.Zero, basePrice.Sub(discountAmount))

	result := &models.PricingResult{
		Tier:            tier,
		BasePrice:       basePrice,
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
	}

	if membership != nil && in.CustomerID != nil {
		quotaFree, err := e.withinMonthlyQuota(executor, in, *in.CustomerID, plate, trxDate, tier)
		if err != nil {
			return nil, err
		}
		result.IsMembershipQuotaFree = quotaFree
	}

	if !result.IsMembershipQuotaFree && in.CustomerID != nil && in.Category.CountsForLoyalty() {
		loyaltyFree, err := e.reachesLoyaltyMilestone(executor, in, *in.CustomerID, plate, trxDate)
		if err != nil {
			return nil, err
		}
		result.IsLoyaltyFree = loyaltyFree
	}

	if membership != nil && tier.HasRainGuarantee() && in.Category.IsExpress() && in.RainGuaranteeFree {
		result.IsRainGuaranteeFree = true
	}

	if result.IsFree() {
		finalPrice = decimal.Zero
	}
	result.FinalPrice = finalPrice
	return result, nil
}

func (e *pricingEngine) withinMonthlyQuota(executor repositories.SQLExecutor, in PricingInput, customerID int64, plate string, trxDate time.Time, tier models.Tier) (bool, error) {
	quota := tier.MonthlyFreeWashQuota()
	if quota <= 0 {
		return false, nil
	}
	from := models.FirstOfMonth(trxDate)
	quotaFree := true
	used, err := e.trxRepo.CountHistory(executor, models.HistoryFilter{
		CustomerID:            customerID,
		PlateNumber:           plate,
		From:                  &from,
		To:                    trxDate,
		IsMembershipQuotaFree: &quotaFree,
		ExcludeTransactionID:  in.ExcludeTransactionID,
	})
	if err != nil {
		return false, fmt.Errorf("counting used free washes: %w", err)
	}
	return used < quota, nil
}

func (e *pricingEngine) reachesLoyaltyMilestone(executor repositories.SQLExecutor, in PricingInput, customerID int64, plate string, trxDate time.Time) (bool, error) {
	notFree := false
	prior, err := e.trxRepo.CountHistory(executor, models.HistoryFilter{
		CustomerID:            customerID,
		PlateNumber:           plate,
		To:                    trxDate,
		WashTypes:             models.LoyaltyWashTypes,
		IsMembershipQuotaFree: &notFree,
		IsRainGuaranteeFree:   &notFree,
		ExcludeTransactionID:  in.ExcludeTransactionID,
	})
	if err != nil {
		return false, fmt.Errorf("counting loyalty washes: %w", err)
	}
	// The current wash is number prior+1 of its cycle.
	return prior%models.LoyaltyCycle == models.LoyaltyCycle-1, nil
}
