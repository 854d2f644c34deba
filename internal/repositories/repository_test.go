package repositories

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carwash_backend/internal/models"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func date(s string) time.Time {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCountHistory_QuotaWindowWithExclusion(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTransactionRepository(db)

	from := date("2025-04-01")
	quotaFree := true
	exclude := int64(99)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE t.customer_id = $1 AND t.plate_number = $2 AND t.trx_date <= $3 AND t.trx_date >= $4 AND t.is_membership_quota_free = $5 AND t.id <> $6`)).
		WithArgs(int64(7), "B1234XY", "2025-04-10", "2025-04-01", true, int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.CountHistory(db, models.HistoryFilter{
		CustomerID:            7,
		PlateNumber:           "B1234XY",
		From:                  &from,
		To:                    date("2025-04-10"),
		IsMembershipQuotaFree: &quotaFree,
		ExcludeTransactionID:  &exclude,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCountHistory_LoyaltyWashTypes(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTransactionRepository(db)

	notFree := false
	mock.ExpectQuery(regexp.QuoteMeta(`AND t.category_id IN (SELECT id FROM categories WHERE wash_type = ANY($4)) AND t.is_membership_quota_free = $5 AND t.is_rain_guarantee_free = $6`)).
		WithArgs(int64(7), "B1234XY", "2025-04-10", sqlmock.AnyArg(), false, false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(8))

	n, err := repo.CountHistory(db, models.HistoryFilter{
		CustomerID:            7,
		PlateNumber:           "B1234XY",
		To:                    date("2025-04-10"),
		WashTypes:             models.LoyaltyWashTypes,
		IsMembershipQuotaFree: &notFree,
		IsRainGuaranteeFree:   &notFree,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestLockCustomerPlate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTransactionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtext($1))`)).
		WithArgs("trx:7:B1234XY").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.LockCustomerPlate(db, 7, "B1234XY"))
}

func TestUpdateTransactionStatus_MissingRow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTransactionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE transactions SET status = $1, updated_at = $2 WHERE id = $3`)).
		WithArgs(models.StatusDone, sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateTransactionStatus(db, 5, models.StatusDone, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetTransactionByID_AttachesNames(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTransactionRepository(db)

	now := time.Now()
	columns := []string{"id", "trx_date", "customer_id", "vehicle_id", "category_id", "employee_id",
		"car_brand", "plate_number", "notes", "price", "base_price", "discount_percent", "discount_amount",
		"is_membership_quota_free", "is_loyalty_free", "is_rain_guarantee_free", "status", "created_at", "updated_at",
		"category_name", "customer_name", "employee_name"}
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE t.id = $1`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			int64(3), time.Date(2025, 4, 2, 0, 0, 0, 0, time.Local), nil, nil, int64(1), int64(2),
			"Honda", "B1234XY", nil, "36000.00", "40000.00", int64(10), "4000.00",
			false, false, false, models.StatusQueued, now, now,
			"Regular", nil, "Eko Saputra"))

	trx, err := repo.GetTransactionByID(db, 3)
	require.NoError(t, err)
	assert.Equal(t, date("2025-04-02"), trx.TrxDate)
	assert.Nil(t, trx.CustomerID)
	assert.True(t, trx.Price.Equal(decimal.NewFromInt(36000)))
	assert.Equal(t, "Regular", *trx.CategoryName)
	assert.Nil(t, trx.CustomerName)
	assert.Equal(t, "Eko Saputra", *trx.EmployeeName)
}

func TestGetTransactionByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTransactionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE t.id = $1`)).WithArgs(int64(3)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetTransactionByID(db, 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindActiveMembership_LatestStartWins(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMembershipRepository(db)

	columns := []string{"id", "vehicle_id", "tier", "starts_at", "ends_at", "duration_months", "extra_vehicles", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE m.vehicle_id = $1 AND m.ends_at >= $2
	          ORDER BY m.starts_at DESC, m.id DESC
	          LIMIT 1`)).
		WithArgs(int64(4), "2025-04-10").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			int64(12), int64(4), "GOLD", date("2025-04-01"), date("2025-06-30"), int64(3), int64(0), time.Now()))

	m, err := repo.FindActiveMembership(db, 4, date("2025-04-10"))
	require.NoError(t, err)
	assert.Equal(t, int64(12), m.ID)
	assert.Equal(t, models.TierGold, m.Tier)
	assert.Equal(t, date("2025-06-30"), m.EndsAt)
}

func TestFindActiveMembership_None(t *testing.T) {
	db, mock := newMock(t)
	repo := NewMembershipRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM memberships m`)).
		WithArgs(int64(4), "2025-04-10").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindActiveMembership(db, 4, date("2025-04-10"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreatePointEntry_ConflictIsDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPointRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT (transaction_id) DO NOTHING`)).
		WithArgs(int64(7), int64(3), sqlmock.AnyArg(), "2025-04-02", "2026-04-02", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.CreatePointEntry(db, &models.PointEntry{
		CustomerID:    7,
		TransactionID: 3,
		Points:        decimal.RequireFromString("2.5"),
		EarnedAt:      date("2025-04-02"),
		ExpiresAt:     date("2026-04-02"),
	})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestCreatePointEntry_Inserted(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPointRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO points`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(41)))

	id, err := repo.CreatePointEntry(db, &models.PointEntry{CustomerID: 7, TransactionID: 3, Points: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.Equal(t, int64(41), id)
}

func TestGetPointEntryByTransactionID_NoGrant(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPointRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM points WHERE transaction_id = $1`)).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetPointEntryByTransactionID(9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClassifyWriteError(t *testing.T) {
	unique := &pq.Error{Code: "23505", Message: "duplicate key", Constraint: "vehicles_customer_id_plate_number_key"}
	assert.ErrorIs(t, classifyWriteError(unique, "creating vehicle"), ErrDuplicateKey)

	fk := &pq.Error{Code: "23503", Constraint: "transactions_category_id_fkey"}
	assert.ErrorIs(t, classifyWriteError(fk, "deleting category"), ErrForeignKey)

	other := classifyWriteError(errors.New("connection reset"), "creating vehicle")
	assert.ErrorIs(t, other, ErrDatabaseError)
}

func TestCreateVehicle_UniqueViolation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewVehicleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO vehicles`)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "vehicles_customer_id_plate_number_key"})

	_, err := repo.CreateVehicle(db, &models.Vehicle{CustomerID: 1, PlateNumber: "B1", CarBrand: "Toyota"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestWithinTransaction(t *testing.T) {
	db, mock := newMock(t)
	transactor := NewTransactor(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM points`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	err := transactor.WithinTransaction(func(tx SQLExecutor) error {
		_, err := NewPointRepository(db).DeleteByTransactionID(tx, 3)
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()
	err = transactor.WithinTransaction(func(tx SQLExecutor) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, pageOffset(0, 20))
	assert.Equal(t, 0, pageOffset(1, 20))
	assert.Equal(t, 40, pageOffset(3, 20))
}
