package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"carwash_backend/internal/models"
	"carwash_backend/internal/repositories"
	"carwash_backend/pkg/utils"
)

var (
	ErrTransactionNotFound      = errors.New("transaction not found")
	ErrTransactionValidation    = errors.New("transaction data validation error")
	ErrInvalidTransactionStatus = errors.New("invalid transaction status")
	ErrCategoryNotFound         = errors.New("category not found")
	ErrVehicleNotFound          = errors.New("vehicle not found")
	ErrCustomerNotFound         = errors.New("customer not found")
)

// --- Transaction DTOs ---

// PreviewPricingRequest prices a wash without saving anything.
type PreviewPricingRequest struct {
	TrxDate           string `json:"trx_date" binding:"required,isodate"`
	CustomerID        *int64 `json:"customer_id"`
	VehicleID         *int64 `json:"vehicle_id"`
	CategoryID        int64  `json:"category_id" binding:"required"`
	PlateNumber       string `json:"plate_number" binding:"required"`
	RainGuaranteeFree bool   `json:"rain_guarantee_free"`
}

// TransactionRequest is the body of create and update. EmployeeID defaults to
// the logged-in user when omitted.
type TransactionRequest struct {
	TrxDate           string  `json:"trx_date" binding:"required,isodate"`
	CustomerID        *int64  `json:"customer_id"`
	VehicleID         *int64  `json:"vehicle_id"`
	CategoryID        int64   `json:"category_id" binding:"required"`
	CarBrand          string  `json:"car_brand" binding:"required"`
	PlateNumber       string  `json:"plate_number" binding:"required"`
	EmployeeID        int64   `json:"employee_id"`
	Notes             *string `json:"notes"`
	RainGuaranteeFree bool    `json:"rain_guarantee_free"`
}

type UpdateTransactionStatusRequest struct {
	Status string `json:"status" binding:"required,trxstatus"`
}

// --- TransactionService Interface ---
type TransactionService interface {
	PreviewPricing(req PreviewPricingRequest) (*models.PricingResult, error)
	CreateTransaction(req TransactionRequest) (*models.Transaction, error)
	UpdateTransaction(id int64, req TransactionRequest) (*models.Transaction, error)
	UpdateTransactionStatus(id int64, req UpdateTransactionStatusRequest) (*models.Transaction, error)
	GetTransactionByID(id int64) (*models.Transaction, error)
	GetTransactions(filters models.TransactionFilters) ([]models.Transaction, int, error)
	DeleteTransaction(id int64) error
	ExportTransactionsCSV(filters models.TransactionFilters, w io.Writer) error
}

// --- transactionService Implementation ---
type transactionService struct {
	trxRepo      repositories.TransactionRepository
	categoryRepo repositories.CategoryRepository
	vehicleRepo  repositories.VehicleRepository
	userRepo     repositories.UserRepository
	engine       PricingEngine
	ledger       PointsLedger
	transactor   repositories.Transactor
	db           repositories.SQLExecutor
	locks        *keyedMutex
}

// NewTransactionService creates a new instance of TransactionService.
func NewTransactionService(
	tr repositories.TransactionRepository,
	cr repositories.CategoryRepository,
	vr repositories.VehicleRepository,
	ur repositories.UserRepository,
	engine PricingEngine,
	ledger PointsLedger,
	transactor repositories.Transactor,
	db repositories.SQLExecutor,
) TransactionService {
	return &transactionService{
		trxRepo:      tr,
		categoryRepo: cr,
		vehicleRepo:  vr,
		userRepo:     ur,
		engine:       engine,
		ledger:       ledger,
		transactor:   transactor,
		db:           db,
		locks:        newKeyedMutex(),
	}
}

// pricingContext resolves and checks the references of a pricing request.
// It runs before any write so a bad reference never leaves partial state.
func (s *transactionService) pricingContext(trxDate string, customerID, vehicleID *int64, categoryID int64, plate string, rain bool) (*PricingInput, error) {
	date, err := models.ParseDate(strings.TrimSpace(trxDate))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionValidation, err)
	}
	plate = models.NormalizePlate(plate)
	if plate == "" {
		return nil, fmt.Errorf("%w: plate number is required", ErrTransactionValidation)
	}
	if categoryID <= 0 {
		return nil, fmt.Errorf("%w: category is required", ErrTransactionValidation)
	}

	category, err := s.categoryRepo.GetCategoryByID(s.db, categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	if customerID != nil {
		customer, err := s.userRepo.FindUserByID(*customerID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrCustomerNotFound
			}
			return nil, err
		}
		if customer.Role != models.RoleCustomer {
			return nil, fmt.Errorf("%w: user %d is not a customer", ErrTransactionValidation, *customerID)
		}
	}

	if vehicleID != nil {
		vehicle, err := s.vehicleRepo.GetVehicleByID(s.db, *vehicleID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrVehicleNotFound
			}
			return nil, err
		}
		if customerID != nil && vehicle.CustomerID != *customerID {
			return nil, fmt.Errorf("%w: vehicle %d does not belong to customer %d", ErrTransactionValidation, vehicle.ID, *customerID)
		}
	}

	return &PricingInput{
		TrxDate:           date,
		CustomerID:        customerID,
		VehicleID:         vehicleID,
		Category:          category,
		PlateNumber:       plate,
		RainGuaranteeFree: rain,
	}, nil
}

func (s *transactionService) PreviewPricing(req PreviewPricingRequest) (*models.PricingResult, error) {
	in, err := s.pricingContext(req.TrxDate, req.CustomerID, req.VehicleID, req.CategoryID, req.PlateNumber, req.RainGuaranteeFree)
	if err != nil {
		return nil, err
	}
	return s.engine.ComputePricing(s.db, *in)
}

func (s *transactionService) buildTransaction(req TransactionRequest) (*models.Transaction, *PricingInput, error) {
	if strings.TrimSpace(req.CarBrand) == "" {
		return nil, nil, fmt.Errorf("%w: car brand is required", ErrTransactionValidation)
	}
	if req.EmployeeID <= 0 {
		return nil, nil, fmt.Errorf("%w: employee is required", ErrTransactionValidation)
	}
	in, err := s.pricingContext(req.TrxDate, req.CustomerID, req.VehicleID, req.CategoryID, req.PlateNumber, req.RainGuaranteeFree)
	if err != nil {
		return nil, nil, err
	}
	trx := &models.Transaction{
		TrxDate:     in.TrxDate,
		CustomerID:  req.CustomerID,
		VehicleID:   req.VehicleID,
		CategoryID:  in.Category.ID,
		EmployeeID:  req.EmployeeID,
		CarBrand:    strings.TrimSpace(req.CarBrand),
		PlateNumber: in.PlateNumber,
		Notes:       req.Notes,
	}
	return trx, in, nil
}

// lockCustomerPlate serializes pricing and saving for one customer and plate,
// in this process and, through the advisory lock, across processes.
func (s *transactionService) lockCustomerPlate(trx *models.Transaction) func() {
	if trx.CustomerID == nil {
		return func() {}
	}
	return s.locks.Lock(fmt.Sprintf("%d|%s", *trx.CustomerID, trx.PlateNumber))
}

func (s *transactionService) priceWithinTx(tx repositories.SQLExecutor, trx *models.Transaction, in PricingInput) error {
	if trx.CustomerID != nil {
		if err := s.trxRepo.LockCustomerPlate(tx, *trx.CustomerID, trx.PlateNumber); err != nil {
			return err
		}
	}
	pricing, err := s.engine.ComputePricing(tx, in)
	if err != nil {
		return err
	}
	trx.ApplyPricing(*pricing)
	return nil
}

func (s *transactionService) CreateTransaction(req TransactionRequest) (*models.Transaction, error) {
	trx, in, err := s.buildTransaction(req)
	if err != nil {
		return nil, err
	}
	trx.Status = models.StatusQueued

	unlock := s.lockCustomerPlate(trx)
	defer unlock()

	err = s.transactor.WithinTransaction(func(tx repositories.SQLExecutor) error {
		if err := s.priceWithinTx(tx, trx, *in); err != nil {
			return err
		}
		_, err := s.trxRepo.CreateTransaction(tx, trx)
		return err
	})
	if err != nil {
		return nil, s.mapWriteError(err)
	}

	utils.LogInfo("Transaction created", map[string]interface{}{
		"transaction_id": trx.ID,
		"plate_number":   trx.PlateNumber,
		"price":          trx.Price.String(),
	})
	return s.GetTransactionByID(trx.ID)
}

func (s *transactionService) UpdateTransaction(id int64, req TransactionRequest) (*models.Transaction, error) {
	existing, err := s.GetTransactionByID(id)
	if err != nil {
		return nil, err
	}
	trx, in, err := s.buildTransaction(req)
	if err != nil {
		return nil, err
	}
	trx.ID = existing.ID
	trx.Status = existing.Status
	trx.CreatedAt = existing.CreatedAt
	in.ExcludeTransactionID = &trx.ID

	unlock := s.lockCustomerPlate(trx)
	defer unlock()

	err = s.transactor.WithinTransaction(func(tx repositories.SQLExecutor) error {
		if err := s.priceWithinTx(tx, trx, *in); err != nil {
			return err
		}
		if err := s.trxRepo.UpdateTransaction(tx, trx); err != nil {
			return err
		}
		if trx.Status != models.StatusDone {
			return nil
		}
		// A completed wash may have changed customer, plate or date, so its
		// grant is recomputed.
		if err := s.ledger.Revoke(tx, trx.ID); err != nil {
			return err
		}
		return s.ledger.OnStatusChange(tx, trx, models.StatusDone)
	})
	if err != nil {
		return nil, s.mapWriteError(err)
	}
	return s.GetTransactionByID(id)
}

func (s *transactionService) UpdateTransactionStatus(id int64, req UpdateTransactionStatusRequest) (*models.Transaction, error) {
	if !models.IsValidTransactionStatus(req.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTransactionStatus, req.Status)
	}

	err := s.transactor.WithinTransaction(func(tx repositories.SQLExecutor) error {
		trx, err := s.trxRepo.GetTransactionByID(tx, id)
		if err != nil {
			return err
		}
		if err := s.trxRepo.UpdateTransactionStatus(tx, id, req.Status, time.Now()); err != nil {
			return err
		}
		trx.Status = req.Status
		return s.ledger.OnStatusChange(tx, trx, req.Status)
	})
	if err != nil {
		return nil, s.mapWriteError(err)
	}

	utils.LogInfo("Transaction status changed", map[string]interface{}{"transaction_id": id, "status": req.Status})
	return s.GetTransactionByID(id)
}

func (s *transactionService) GetTransactionByID(id int64) (*models.Transaction, error) {
	trx, err := s.trxRepo.GetTransactionByID(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return trx, nil
}

func (s *transactionService) GetTransactions(filters models.TransactionFilters) ([]models.Transaction, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}
	if filters.Status != nil && *filters.Status != "" && !models.IsValidTransactionStatus(*filters.Status) {
		return nil, 0, fmt.Errorf("%w: %q", ErrInvalidTransactionStatus, *filters.Status)
	}
	return s.trxRepo.GetTransactions(filters)
}

func (s *transactionService) DeleteTransaction(id int64) error {
	err := s.transactor.WithinTransaction(func(tx repositories.SQLExecutor) error {
		if err := s.ledger.Revoke(tx, id); err != nil {
			return err
		}
		return s.trxRepo.DeleteTransaction(tx, id)
	})
	if err != nil {
		return s.mapWriteError(err)
	}
	utils.LogInfo("Transaction deleted", map[string]interface{}{"transaction_id": id})
	return nil
}

var csvHeader = []string{
	"id", "trx_date", "plate_number", "car_brand", "category", "customer", "employee", "status",
	"base_price", "discount_percent", "discount_amount", "price",
	"membership_quota_free", "loyalty_free", "rain_guarantee_free",
}

// ExportTransactionsCSV writes every transaction matching filters, ignoring pagination.
func (s *transactionService) ExportTransactionsCSV(filters models.TransactionFilters, w io.Writer) error {
	filters.Page, filters.PageSize = 0, 0
	transactions, _, err := s.trxRepo.GetTransactions(filters)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range transactions {
		record := []string{
			utils.Int64ToStr(t.ID),
			t.TrxDate.Format(models.DateLayout),
			t.PlateNumber,
			t.CarBrand,
			derefString(t.CategoryName),
			derefString(t.CustomerName),
			derefString(t.EmployeeName),
			t.Status,
			t.BasePrice.StringFixed(2),
			strconv.FormatInt(t.DiscountPercent, 10),
			t.DiscountAmount.StringFixed(2),
			t.Price.StringFixed(2),
			strconv.FormatBool(t.IsMembershipQuotaFree),
			strconv.FormatBool(t.IsLoyaltyFree),
			strconv.FormatBool(t.IsRainGuaranteeFree),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *transactionService) mapWriteError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return ErrTransactionNotFound
	case errors.Is(err, repositories.ErrForeignKey):
		return fmt.Errorf("%w: %v", ErrTransactionValidation, err)
	}
	return err
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
