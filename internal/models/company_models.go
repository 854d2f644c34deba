package models

import "time"

// CompanyProfile is the single row of business details shown on receipts and the dashboard.
type CompanyProfile struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   *string   `json:"address,omitempty" db:"address"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Email     *string   `json:"email,omitempty" db:"email"`
	LogoPath  *string   `json:"logo_path,omitempty" db:"logo_path"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
