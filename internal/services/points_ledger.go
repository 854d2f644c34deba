package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"carwash_backend/internal/models"
	"carwash_backend/internal/repositories"
	"carwash_backend/pkg/utils"
)

// ErrPointEntryNotFound means the transaction has not earned points.
var ErrPointEntryNotFound = errors.New("no points granted for this transaction")

// PointsLedger grants loyalty points when a wash is completed and takes them
// back when it is not.
type PointsLedger interface {
	// OnStatusChange applies the point rules for trx moving to newStatus.
	OnStatusChange(executor repositories.SQLExecutor, trx *models.Transaction, newStatus string) error
	// Revoke removes the grant of a transaction, if any.
	Revoke(executor repositories.SQLExecutor, transactionID int64) error
	Balance(customerID int64, asOf time.Time) (*models.PointBalance, error)
	// EntryForTransaction returns what a single wash earned.
	EntryForTransaction(transactionID int64) (*models.PointEntry, error)
}

type pointsLedger struct {
	pointRepo   repositories.PointRepository
	vehicleRepo repositories.VehicleRepository
	resolver    MembershipResolver
}

// NewPointsLedger creates a new instance of PointsLedger.
func NewPointsLedger(pr repositories.PointRepository, vr repositories.VehicleRepository, resolver MembershipResolver) PointsLedger {
	return &pointsLedger{pointRepo: pr, vehicleRepo: vr, resolver: resolver}
}

func (l *pointsLedger) OnStatusChange(executor repositories.SQLExecutor, trx *models.Transaction, newStatus string) error {
	if newStatus != models.StatusDone {
		return l.Revoke(executor, trx.ID)
	}
	if trx.CustomerID == nil {
		return nil
	}

	exists, err := l.pointRepo.ExistsForTransaction(executor, trx.ID)
	if err != nil {
		return err
	}
	if exists {
		utils.LogDebug("Points already granted, skipping", map[string]interface{}{"transaction_id": trx.ID})
		return nil
	}

	tier, err := l.tierAt(executor, *trx.CustomerID, trx.PlateNumber, trx.TrxDate)
	if err != nil {
		return err
	}

	earnedAt := models.TruncateDay(trx.TrxDate)
	entry := &models.PointEntry{
		CustomerID:    *trx.CustomerID,
		TransactionID: trx.ID,
		Points:        tier.PointRate(),
		EarnedAt:      earnedAt,
		ExpiresAt:     earnedAt.AddDate(0, 0, models.PointExpiryDays),
	}
	if _, err := l.pointRepo.CreatePointEntry(executor, entry); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			// A concurrent DONE transition won the insert.
			utils.LogDebug("Points already granted, skipping", map[string]interface{}{"transaction_id": trx.ID})
			return nil
		}
		return fmt.Errorf("granting points for transaction %d: %w", trx.ID, err)
	}
	utils.LogInfo("Points granted", map[string]interface{}{
		"transaction_id": trx.ID,
		"customer_id":    entry.CustomerID,
		"tier":           string(tier),
		"points":         entry.Points.String(),
	})
	return nil
}

// tierAt resolves the customer's vehicle by plate and its membership on day.
// An unregistered plate earns at the BASIC rate.
func (l *pointsLedger) tierAt(executor repositories.SQLExecutor, customerID int64, plate string, day time.Time) (models.Tier, error) {
	vehicle, err := l.vehicleRepo.GetVehicleByCustomerAndPlate(executor, customerID, models.NormalizePlate(plate))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.TierBasic, nil
		}
		return "", fmt.Errorf("resolving vehicle for points: %w", err)
	}
	membership, err := l.resolver.ResolveActiveMembership(executor, vehicle.ID, day)
	if err != nil {
		return "", err
	}
	if membership == nil {
		return models.TierBasic, nil
	}
	return membership.Tier, nil
}

func (l *pointsLedger) Revoke(executor repositories.SQLExecutor, transactionID int64) error {
	deleted, err := l.pointRepo.DeleteByTransactionID(executor, transactionID)
	if err != nil {
		return fmt.Errorf("revoking points for transaction %d: %w", transactionID, err)
	}
	if deleted > 0 {
		utils.LogInfo("Points revoked", map[string]interface{}{"transaction_id": transactionID, "entries": deleted})
	}
	return nil
}

func (l *pointsLedger) Balance(customerID int64, asOf time.Time) (*models.PointBalance, error) {
	day := models.TruncateDay(asOf)
	entries, err := l.pointRepo.GetActiveEntries(customerID, day)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Points)
	}
	return &models.PointBalance{CustomerID: customerID, AsOf: day, Balance: total, Entries: entries}, nil
}

func (l *pointsLedger) EntryForTransaction(transactionID int64) (*models.PointEntry, error) {
	entry, err := l.pointRepo.GetPointEntryByTransactionID(transactionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: transaction %d", ErrPointEntryNotFound, transactionID)
		}
		return nil, err
	}
	return entry, nil
}
