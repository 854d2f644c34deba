package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"carwash_backend/internal/models"
)

// CompanyRepository reads and writes the single company profile row.
type CompanyRepository interface {
	GetProfile() (*models.CompanyProfile, error)
	UpdateProfile(profile *models.CompanyProfile) error
	UpdateLogoPath(path string) error
}

type companyRepository struct {
	db *sql.DB
}

// NewCompanyRepository creates a new instance of CompanyRepository.
func NewCompanyRepository(db *sql.DB) CompanyRepository {
	return &companyRepository{db: db}
}

const companyProfileID = 1

func (r *companyRepository) GetProfile() (*models.CompanyProfile, error) {
	p := &models.CompanyProfile{}
	query := `SELECT id, name, address, phone, email, logo_path, updated_at FROM company_profile WHERE id = $1`
	err := r.db.QueryRow(query, companyProfileID).Scan(&p.ID, &p.Name, &p.Address, &p.Phone, &p.Email, &p.LogoPath, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting company profile: %v", ErrDatabaseError, err)
	}
	return p, nil
}

// UpdateProfile writes the text fields; the logo is changed through UpdateLogoPath.
func (r *companyRepository) UpdateProfile(profile *models.CompanyProfile) error {
	profile.UpdatedAt = time.Now()
	query := `INSERT INTO company_profile (id, name, address, phone, email, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (id) DO UPDATE SET
	            name = EXCLUDED.name, address = EXCLUDED.address, phone = EXCLUDED.phone,
	            email = EXCLUDED.email, updated_at = EXCLUDED.updated_at`
	_, err := r.db.Exec(query, companyProfileID, profile.Name, profile.Address, profile.Phone, profile.Email, profile.UpdatedAt)
	if err != nil {
		return classifyWriteError(err, "updating company profile")
	}
	profile.ID = companyProfileID
	return nil
}

func (r *companyRepository) UpdateLogoPath(path string) error {
	result, err := r.db.Exec(`UPDATE company_profile SET logo_path = $1, updated_at = $2 WHERE id = $3`, path, time.Now(), companyProfileID)
	if err != nil {
		return fmt.Errorf("%w: updating company logo: %v", ErrDatabaseError, err)
	}
	return checkAffected(result, "updating company logo")
}
