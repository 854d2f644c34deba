package models

import "time"

// Role names carried in the JWT "role" claim.
const (
	RoleSuperadmin = "superadmin"
	RoleAdmin      = "admin"
	RoleEmployee   = "employee"
	RoleCustomer   = "customer"
)

// User is any account of the car wash: staff members and customers alike.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // never serialized
	FullName     string    `json:"full_name" db:"full_name"`
	PhoneNumber  *string   `json:"phone_number,omitempty" db:"phone_number"`
	Email        *string   `json:"email,omitempty" db:"email"`
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserFilters narrows user listings.
type UserFilters struct {
	Role     *string `form:"role"`
	Search   *string `form:"search"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleSuperadmin, RoleAdmin, RoleEmployee, RoleCustomer:
		return true
	default:
		return false
	}
}
