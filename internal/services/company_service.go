package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"carwash_backend/internal/models"
	"carwash_backend/internal/repositories"
	"carwash_backend/pkg/utils"
)

var (
	ErrCompanyValidation = errors.New("company profile validation error")
	ErrLogoTooLarge      = errors.New("logo file is too large")
	ErrLogoType          = errors.New("logo must be a PNG, JPEG or WebP image")
)

// MaxLogoSize caps uploaded logo files.
const MaxLogoSize = 2 << 20

var logoExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

type UpdateCompanyProfileRequest struct {
	Name    string  `json:"name" binding:"required"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email" binding:"omitempty,email"`
}

type CompanyService interface {
	GetProfile() (*models.CompanyProfile, error)
	UpdateProfile(req UpdateCompanyProfileRequest) (*models.CompanyProfile, error)
	UploadLogo(file *multipart.FileHeader) (*models.CompanyProfile, error)
}

type companyService struct {
	companyRepo repositories.CompanyRepository
	uploadDir   string
}

// NewCompanyService creates a new instance of CompanyService. Logos are
// written under uploadDir.
func NewCompanyService(cr repositories.CompanyRepository, uploadDir string) CompanyService {
	return &companyService{companyRepo: cr, uploadDir: uploadDir}
}

func (s *companyService) GetProfile() (*models.CompanyProfile, error) {
	return s.companyRepo.GetProfile()
}

func (s *companyService) UpdateProfile(req UpdateCompanyProfileRequest) (*models.CompanyProfile, error) {
	if utils.IsEmpty(req.Name) {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrCompanyValidation)
	}
	profile := &models.CompanyProfile{
		Name:    strings.TrimSpace(req.Name),
		Address: req.Address,
		Phone:   req.Phone,
		Email:   req.Email,
	}
	if err := s.companyRepo.UpdateProfile(profile); err != nil {
		return nil, err
	}
	return s.companyRepo.GetProfile()
}

// UploadLogo stores the image under a random name and points the profile at it.
// The previous logo file is removed once the profile is updated.
func (s *companyService) UploadLogo(file *multipart.FileHeader) (*models.CompanyProfile, error) {
	if file.Size > MaxLogoSize {
		return nil, ErrLogoTooLarge
	}
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("opening uploaded logo: %w", err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading uploaded logo: %w", err)
	}
	ext, ok := logoExtensions[http.DetectContentType(head[:n])]
	if !ok {
		return nil, ErrLogoType
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding uploaded logo: %w", err)
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.uploadDir, name))
	if err != nil {
		return nil, fmt.Errorf("creating logo file: %w", err)
	}
	written, err := io.Copy(dst, io.LimitReader(src, MaxLogoSize+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > MaxLogoSize {
		err = ErrLogoTooLarge
	}
	if err != nil {
		os.Remove(filepath.Join(s.uploadDir, name))
		if errors.Is(err, ErrLogoTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("writing logo file: %w", err)
	}

	previous, err := s.companyRepo.GetProfile()
	if err != nil {
		return nil, err
	}
	if err := s.companyRepo.UpdateLogoPath(name); err != nil {
		os.Remove(filepath.Join(s.uploadDir, name))
		return nil, err
	}
	if previous.LogoPath != nil && *previous.LogoPath != "" {
		if err := os.Remove(filepath.Join(s.uploadDir, filepath.Base(*previous.LogoPath))); err != nil && !os.IsNotExist(err) {
			utils.LogWarn("Failed to remove previous logo", map[string]interface{}{"path": *previous.LogoPath, "error": err.Error()})
		}
	}
	utils.LogInfo("Company logo updated", map[string]interface{}{"logo_path": name})
	return s.companyRepo.GetProfile()
}
