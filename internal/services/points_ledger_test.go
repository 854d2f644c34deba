package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carwash_backend/internal/models"
)

func (w *carWash) completedWash(customerID *int64, plate, date string) *models.Transaction {
	trx := models.Transaction{TrxDate: mustDate(date), CustomerID: customerID, PlateNumber: plate, Status: models.StatusQueued}
	trx.ID = w.trxs.seed(trx)
	return &trx
}

func TestPointsLedger_GrantsTierRate(t *testing.T) {
	tests := []struct {
		tier models.Tier
		want string
	}{
		{models.TierBasic, "1"},
		{models.TierBronze, "1"},
		{models.TierSilver, "1.5"},
		{models.TierGold, "2.5"},
		{models.TierPlatinumVIP, "3"},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			w := newCarWash()
			customer := w.users.add(models.RoleCustomer, "Lina Marlina")
			vehicle := w.vehicles.add(customer.ID, "P1P")
			w.memberships.add(vehicle.ID, tt.tier, "2025-01-01", "2025-12-31")
			trx := w.completedWash(int64Ptr(customer.ID), "P1P", "2025-03-15")

			require.NoError(t, w.ledger.OnStatusChange(nil, trx, models.StatusDone))

			entry, err := w.points.GetPointEntryByTransactionID(trx.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, entry.Points.String())
			assert.Equal(t, customer.ID, entry.CustomerID)
		})
	}
}

func TestPointsLedger_ExpiresAfterAYear(t *testing.T) {
	w := newCarWash()
	customer := w.users.add(models.RoleCustomer, "Lina Marlina")
	trx := w.completedWash(int64Ptr(customer.ID), "P1P", "2024-03-15")

	require.NoError(t, w.ledger.OnStatusChange(nil, trx, models.StatusDone))

	entry, err := w.points.GetPointEntryByTransactionID(trx.ID)
	require.NoError(t, err)
	assert.Equal(t, mustDate("2024-03-15"), entry.EarnedAt)
	assert.Equal(t, mustDate("2025-03-15"), entry.ExpiresAt)

	onLastDay, err := w.ledger.Balance(customer.ID, mustDate("2025-03-15"))
	require.NoError(t, err)
	assert.Equal(t, "1", onLastDay.Balance.String())

	afterExpiry, err := w.ledger.Balance(customer.ID, mustDate("2025-03-16"))
	require.NoError(t, err)
	assert.True(t, afterExpiry.Balance.IsZero())
	assert.Empty(t, afterExpiry.Entries)
}

func TestPointsLedger_RepeatedDoneGrantsOnce(t *testing.T) {
	w := newCarWash()
	customer := w.users.add(models.RoleCustomer, "Lina Marlina")
	trx := w.completedWash(int64Ptr(customer.ID), "P1P", "2025-03-15")

	require.NoError(t, w.ledger.OnStatusChange(nil, trx, models.StatusDone))
	require.NoError(t, w.ledger.OnStatusChange(nil, trx, models.StatusDone))
	assert.Equal(t, 1, w.points.count())
}

func TestPointsLedger_LeavingDoneRevokes(t *testing.T) {
	w := newCarWash()
	customer := w.users.add(models.RoleCustomer, "Lina Marlina")
	trx := w.completedWash(int64Ptr(customer.ID), "P1P", "2025-03-15")

	require.NoError(t, w.ledger.OnStatusChange(nil, trx, models.StatusDone))
	require.NoError(t, w.ledger.OnStatusChange(nil, trx, models.StatusWashing))
	assert.Equal(t, 0, w.points.count())

	require.NoError(t, w.ledger.OnStatusChange(nil, trx, models.StatusDone))
	assert.Equal(t, 1, w.points.count())
}

func TestPointsLedger_WalkInEarnsNothing(t *testing.T) {
	w := newCarWash()
	trx := w.completedWash(nil, "P1P", "2025-03-15")

	require.NoError(t, w.ledger.OnStatusChange(nil, trx, models.StatusDone))
	assert.Equal(t, 0, w.points.count())
}

func TestPointsLedger_UnregisteredPlateEarnsBasicRate(t *testing.T) {
	w := newCarWash()
	customer := w.users.add(models.RoleCustomer, "Lina Marlina")
	vehicle := w.vehicles.add(customer.ID, "P1P")
	w.memberships.add(vehicle.ID, models.TierGold, "2025-01-01", "2025-12-31")
	trx := w.completedWash(int64Ptr(customer.ID), "Z9Z", "2025-03-15")

	require.NoError(t, w.ledger.OnStatusChange(nil, trx, models.StatusDone))

	entry, err := w.points.GetPointEntryByTransactionID(trx.ID)
	require.NoError(t, err)
	assert.Equal(t, "1", entry.Points.String())
}

func TestPointsLedger_BalanceSumsCustomerEntries(t *testing.T) {
	w := newCarWash()
	customer := w.users.add(models.RoleCustomer, "Lina Marlina")
	other := w.users.add(models.RoleCustomer, "Hendra Gunawan")
	vehicle := w.vehicles.add(customer.ID, "P1P")
	w.memberships.add(vehicle.ID, models.TierSilver, "2025-01-01", "2025-12-31")

	for _, date := range []string{"2025-02-01", "2025-02-08"} {
		require.NoError(t, w.ledger.OnStatusChange(nil, w.completedWash(int64Ptr(customer.ID), "P1P", date), models.StatusDone))
	}
	require.NoError(t, w.ledger.OnStatusChange(nil, w.completedWash(int64Ptr(other.ID), "Q1Q", "2025-02-08"), models.StatusDone))

	balance, err := w.ledger.Balance(customer.ID, mustDate("2025-06-01"))
	require.NoError(t, err)
	assert.Equal(t, "3", balance.Balance.String())
	assert.Len(t, balance.Entries, 2)
	assert.Equal(t, mustDate("2025-06-01"), balance.AsOf)
}

func TestPointsLedger_EntryForTransaction(t *testing.T) {
	w := newCarWash()
	customer := w.users.add(models.RoleCustomer, "Lina Marlina")
	trx := w.completedWash(int64Ptr(customer.ID), "P1P", "2025-03-15")

	_, err := w.ledger.EntryForTransaction(trx.ID)
	assert.ErrorIs(t, err, ErrPointEntryNotFound)

	require.NoError(t, w.ledger.OnStatusChange(nil, trx, models.StatusDone))
	entry, err := w.ledger.EntryForTransaction(trx.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, entry.CustomerID)
	assert.Equal(t, mustDate("2026-03-15"), entry.ExpiresAt)
}
