package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"carwash_backend/internal/models"
	"carwash_backend/internal/repositories"
	"carwash_backend/pkg/utils"
)

var (
	ErrCategoryValidation = errors.New("category data validation error")
	ErrCategoryExists     = errors.New("category name already exists")
	ErrCategoryInUse      = errors.New("category cannot be deleted as it is referenced by transactions")
)

type CreateCategoryRequest struct {
	Name        string           `json:"name" binding:"required"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	WashType    string           `json:"wash_type" binding:"omitempty,washtype"`
	Description *string          `json:"description"`
}

type UpdateCategoryRequest struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	WashType    *string          `json:"wash_type" binding:"omitempty,washtype"`
	Description *string          `json:"description"`
}

type CategoryService interface {
	CreateCategory(req CreateCategoryRequest) (*models.Category, error)
	GetCategoryByID(id int64) (*models.Category, error)
	GetCategories(washType *string) ([]models.Category, error)
	UpdateCategory(id int64, req UpdateCategoryRequest) (*models.Category, error)
	DeleteCategory(id int64) error
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
	db           repositories.SQLExecutor
}

// NewCategoryService creates a new instance of CategoryService.
func NewCategoryService(cr repositories.CategoryRepository, db repositories.SQLExecutor) CategoryService {
	return &categoryService{categoryRepo: cr, db: db}
}

func validateCategory(c *models.Category) error {
	if utils.IsEmpty(c.Name) {
		return fmt.Errorf("%w: name cannot be empty", ErrCategoryValidation)
	}
	if c.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrCategoryValidation)
	}
	if !models.IsValidWashType(c.WashType) {
		return fmt.Errorf("%w: unknown wash type %q", ErrCategoryValidation, c.WashType)
	}
	return nil
}

func mapCategoryWriteError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrDuplicateKey):
		return ErrCategoryExists
	case errors.Is(err, repositories.ErrForeignKey):
		return ErrCategoryInUse
	case errors.Is(err, repositories.ErrNotFound):
		return ErrCategoryNotFound
	}
	return err
}

func (s *categoryService) CreateCategory(req CreateCategoryRequest) (*models.Category, error) {
	if req.Price == nil {
		return nil, fmt.Errorf("%w: price is required", ErrCategoryValidation)
	}
	category := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Price:       req.Price.Round(2),
		WashType:    req.WashType,
		Description: req.Description,
	}
	if category.WashType == "" {
		category.WashType = models.WashTypeOther
	}
	if err := validateCategory(category); err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.CreateCategory(s.db, category); err != nil {
		return nil, mapCategoryWriteError(err)
	}
	return category, nil
}

func (s *categoryService) GetCategoryByID(id int64) (*models.Category, error) {
	c, err := s.categoryRepo.GetCategoryByID(s.db, id)
	if err != nil {
		return nil, mapCategoryWriteError(err)
	}
	return c, nil
}

func (s *categoryService) GetCategories(washType *string) ([]models.Category, error) {
	if washType != nil && *washType != "" && !models.IsValidWashType(*washType) {
		return nil, fmt.Errorf("%w: unknown wash type %q", ErrCategoryValidation, *washType)
	}
	return s.categoryRepo.GetCategories(washType)
}

func (s *categoryService) UpdateCategory(id int64, req UpdateCategoryRequest) (*models.Category, error) {
	category, err := s.GetCategoryByID(id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		category.Name = strings.TrimSpace(*req.Name)
	}
	if req.Price != nil {
		category.Price = req.Price.Round(2)
	}
	if req.WashType != nil {
		category.WashType = *req.WashType
	}
	if req.Description != nil {
		category.Description = utils.NewNullString(*req.Description)
	}
	if err := validateCategory(category); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.UpdateCategory(s.db, category); err != nil {
		return nil, mapCategoryWriteError(err)
	}
	return category, nil
}

func (s *categoryService) DeleteCategory(id int64) error {
	if err := s.categoryRepo.DeleteCategory(s.db, id); err != nil {
		return mapCategoryWriteError(err)
	}
	return nil
}
