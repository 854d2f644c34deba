package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"carwash_backend/internal/models"
)

// VehicleRepository defines the interface for vehicle-related database operations.
type VehicleRepository interface {
	CreateVehicle(executor SQLExecutor, vehicle *models.Vehicle) (int64, error)
	GetVehicleByID(executor SQLExecutor, id int64) (*models.Vehicle, error)
	GetVehicleByCustomerAndPlate(executor SQLExecutor, customerID int64, plateNumber string) (*models.Vehicle, error)
	GetVehicles(filters models.VehicleFilters) ([]models.Vehicle, int, error)
	UpdateVehicle(executor SQLExecutor, vehicle *models.Vehicle) error
	DeleteVehicle(executor SQLExecutor, id int64) error
}

type vehicleRepository struct {
	db *sql.DB
}

// NewVehicleRepository creates a new instance of VehicleRepository.
func NewVehicleRepository(db *sql.DB) VehicleRepository {
	return &vehicleRepository{db: db}
}

const vehicleColumns = `v.id, v.customer_id, v.plate_number, v.car_brand, v.car_type, v.created_at, v.updated_at`

func (r *vehicleRepository) CreateVehicle(executor SQLExecutor, vehicle *models.Vehicle) (int64, error) {
	query := `INSERT INTO vehicles (customer_id, plate_number, car_brand, car_type, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	now := time.Now()
	vehicle.CreatedAt, vehicle.UpdatedAt = now, now
	err := executor.QueryRow(query, vehicle.CustomerID, vehicle.PlateNumber, vehicle.CarBrand, vehicle.CarType,
		vehicle.CreatedAt, vehicle.UpdatedAt).Scan(&vehicle.ID)
	if err != nil {
		return 0, classifyWriteError(err, "creating vehicle")
	}
	return vehicle.ID, nil
}

func (r *vehicleRepository) getOne(executor SQLExecutor, where string, args ...interface{}) (*models.Vehicle, error) {
	v := &models.Vehicle{}
	query := `SELECT ` + vehicleColumns + `, u.full_name
	          FROM vehicles v
	          LEFT JOIN users u ON u.id = v.customer_id
	          WHERE ` + where
	err := executor.QueryRow(query, args...).Scan(&v.ID, &v.CustomerID, &v.PlateNumber, &v.CarBrand, &v.CarType,
		&v.CreatedAt, &v.UpdatedAt, &v.CustomerName)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// GetVehicleByID retrieves a vehicle by its ID.
func (r *vehicleRepository) GetVehicleByID(executor SQLExecutor, id int64) (*models.Vehicle, error) {
	v, err := r.getOne(executor, "v.id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting vehicle by ID %d: %v", ErrDatabaseError, id, err)
	}
	return v, nil
}

// GetVehicleByCustomerAndPlate finds the customer's car by its normalized plate.
func (r *vehicleRepository) GetVehicleByCustomerAndPlate(executor SQLExecutor, customerID int64, plateNumber string) (*models.Vehicle, error) {
	v, err := r.getOne(executor, "v.customer_id = $1 AND v.plate_number = $2", customerID, plateNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting vehicle %s of customer %d: %v", ErrDatabaseError, plateNumber, customerID, err)
	}
	return v, nil
}

// GetVehicles lists vehicles with optional owner and plate/brand search.
func (r *vehicleRepository) GetVehicles(filters models.VehicleFilters) ([]models.Vehicle, int, error) {
	vehicles := []models.Vehicle{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + vehicleColumns + `, u.full_name, COUNT(*) OVER() AS total_count
	          FROM vehicles v
	          LEFT JOIN users u ON u.id = v.customer_id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("v.customer_id = $%d", argCount))
		args = append(args, *filters.CustomerID)
		argCount++
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(v.plate_number ILIKE $%d OR v.car_brand ILIKE $%d OR u.full_name ILIKE $%d)", argCount, argCount, argCount))
		args = append(args, "%"+*filters.Search+"%")
		argCount++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY v.plate_number ASC, v.id ASC")
	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, filters.PageSize, pageOffset(filters.Page, filters.PageSize))
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying vehicles: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.ID, &v.CustomerID, &v.PlateNumber, &v.CarBrand, &v.CarType,
			&v.CreatedAt, &v.UpdatedAt, &v.CustomerName, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning vehicle: %v", ErrDatabaseError, err)
		}
		vehicles = append(vehicles, v)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating vehicle rows: %v", ErrDatabaseError, err)
	}
	return vehicles, totalCount, nil
}

func (r *vehicleRepository) UpdateVehicle(executor SQLExecutor, vehicle *models.Vehicle) error {
	query := `UPDATE vehicles SET customer_id = $1, plate_number = $2, car_brand = $3, car_type = $4, updated_at = $5
	          WHERE id = $6`
	vehicle.UpdatedAt = time.Now()
	result, err := executor.Exec(query, vehicle.CustomerID, vehicle.PlateNumber, vehicle.CarBrand, vehicle.CarType,
		vehicle.UpdatedAt, vehicle.ID)
	if err != nil {
		return classifyWriteError(err, fmt.Sprintf("updating vehicle ID %d", vehicle.ID))
	}
	return checkAffected(result, fmt.Sprintf("updating vehicle ID %d", vehicle.ID))
}

func (r *vehicleRepository) DeleteVehicle(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return classifyWriteError(err, fmt.Sprintf("deleting vehicle ID %d", id))
	}
	return checkAffected(result, fmt.Sprintf("deleting vehicle ID %d", id))
}
