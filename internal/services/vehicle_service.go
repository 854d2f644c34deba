package services

import (
	"errors"
	"fmt"
	"strings"

	"carwash_backend/internal/models"
	"carwash_backend/internal/repositories"
	"carwash_backend/pkg/utils"
)

var (
	ErrVehicleValidation = errors.New("vehicle data validation error")
	ErrVehicleExists     = errors.New("customer already has a vehicle with this plate number")
	ErrVehicleInUse      = errors.New("vehicle cannot be deleted as it is referenced in other records")
)

type CreateVehicleRequest struct {
	CustomerID  int64   `json:"customer_id" binding:"required"`
	PlateNumber string  `json:"plate_number" binding:"required"`
	CarBrand    string  `json:"car_brand" binding:"required"`
	CarType     *string `json:"car_type"`
}

type UpdateVehicleRequest struct {
	PlateNumber *string `json:"plate_number"`
	CarBrand    *string `json:"car_brand"`
	CarType     *string `json:"car_type"`
}

type VehicleService interface {
	CreateVehicle(req CreateVehicleRequest) (*models.Vehicle, error)
	GetVehicleByID(id int64) (*models.Vehicle, error)
	GetVehicles(filters models.VehicleFilters) ([]models.Vehicle, int, error)
	UpdateVehicle(id int64, req UpdateVehicleRequest) (*models.Vehicle, error)
	DeleteVehicle(id int64) error
}

type vehicleService struct {
	vehicleRepo repositories.VehicleRepository
	userRepo    repositories.UserRepository
	db          repositories.SQLExecutor
}

// NewVehicleService creates a new instance of VehicleService.
func NewVehicleService(vr repositories.VehicleRepository, ur repositories.UserRepository, db repositories.SQLExecutor) VehicleService {
	return &vehicleService{vehicleRepo: vr, userRepo: ur, db: db}
}

func mapVehicleWriteError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrDuplicateKey):
		return ErrVehicleExists
	case errors.Is(err, repositories.ErrNotFound):
		return ErrVehicleNotFound
	}
	return err
}

func (s *vehicleService) CreateVehicle(req CreateVehicleRequest) (*models.Vehicle, error) {
	plate := models.NormalizePlate(req.PlateNumber)
	if plate == "" || utils.IsEmpty(req.CarBrand) {
		return nil, fmt.Errorf("%w: plate number and car brand are required", ErrVehicleValidation)
	}
	owner, err := s.userRepo.FindUserByID(req.CustomerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	if owner.Role != models.RoleCustomer {
		return nil, fmt.Errorf("%w: user %d is not a customer", ErrVehicleValidation, owner.ID)
	}

	vehicle := &models.Vehicle{
		CustomerID:  owner.ID,
		PlateNumber: plate,
		CarBrand:    strings.TrimSpace(req.CarBrand),
		CarType:     req.CarType,
	}
	if _, err := s.vehicleRepo.CreateVehicle(s.db, vehicle); err != nil {
		return nil, mapVehicleWriteError(err)
	}
	vehicle.CustomerName = &owner.FullName
	return vehicle, nil
}

func (s *vehicleService) GetVehicleByID(id int64) (*models.Vehicle, error) {
	v, err := s.vehicleRepo.GetVehicleByID(s.db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return v, nil
}

func (s *vehicleService) GetVehicles(filters models.VehicleFilters) ([]models.Vehicle, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}
	return s.vehicleRepo.GetVehicles(filters)
}

func (s *vehicleService) UpdateVehicle(id int64, req UpdateVehicleRequest) (*models.Vehicle, error) {
	vehicle, err := s.GetVehicleByID(id)
	if err != nil {
		return nil, err
	}
	if req.PlateNumber != nil {
		plate := models.NormalizePlate(*req.PlateNumber)
		if plate == "" {
			return nil, fmt.Errorf("%w: plate number cannot be empty if provided", ErrVehicleValidation)
		}
		vehicle.PlateNumber = plate
	}
	if req.CarBrand != nil {
		if utils.IsEmpty(*req.CarBrand) {
			return nil, fmt.Errorf("%w: car brand cannot be empty if provided", ErrVehicleValidation)
		}
		vehicle.CarBrand = strings.TrimSpace(*req.CarBrand)
	}
	if req.CarType != nil {
		vehicle.CarType = utils.NewNullString(*req.CarType)
	}
	if err := s.vehicleRepo.UpdateVehicle(s.db, vehicle); err != nil {
		return nil, mapVehicleWriteError(err)
	}
	return vehicle, nil
}

func (s *vehicleService) DeleteVehicle(id int64) error {
	if err := s.vehicleRepo.DeleteVehicle(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrForeignKey) {
			return ErrVehicleInUse
		}
		return mapVehicleWriteError(err)
	}
	return nil
}
