package models

import (
	"strings"
	"time"
)

// Vehicle is a customer's car, identified at the counter by its plate number.
type Vehicle struct {
	ID          int64     `json:"id" db:"id"`
	CustomerID  int64     `json:"customer_id" db:"customer_id"`
	PlateNumber string    `json:"plate_number" db:"plate_number"`
	CarBrand    string    `json:"car_brand" db:"car_brand"`
	CarType     *string   `json:"car_type,omitempty" db:"car_type"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	CustomerName *string `json:"customer_name,omitempty"`
}

// VehicleFilters narrows vehicle listings.
type VehicleFilters struct {
	CustomerID *int64  `form:"customer_id"`
	Search     *string `form:"search"`
	Page       int     `form:"page"`
	PageSize   int     `form:"page_size"`
}

// NormalizePlate upper-cases a plate number and strips whitespace so
// "b 1234 xy" and "B1234XY" refer to the same car.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.Join(strings.Fields(plate), ""))
}
