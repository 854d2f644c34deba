package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"carwash_backend/internal/models"
)

// CategoryRepository defines the interface for service-category database operations.
type CategoryRepository interface {
	CreateCategory(executor SQLExecutor, category *models.Category) (int64, error)
	GetCategoryByID(executor SQLExecutor, id int64) (*models.Category, error)
	GetCategories(washType *string) ([]models.Category, error)
	UpdateCategory(executor SQLExecutor, category *models.Category) error
	DeleteCategory(executor SQLExecutor, id int64) error
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository.
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

const categoryColumns = `id, name, price, wash_type, description, created_at, updated_at`

func scanCategory(s scanner) (*models.Category, error) {
	c := &models.Category{}
	err := s.Scan(&c.ID, &c.Name, &c.Price, &c.WashType, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *categoryRepository) CreateCategory(executor SQLExecutor, category *models.Category) (int64, error) {
	query := `INSERT INTO categories (name, price, wash_type, description, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	now := time.Now()
	category.CreatedAt, category.UpdatedAt = now, now
	err := executor.QueryRow(query, category.Name, category.Price, category.WashType, category.Description,
		category.CreatedAt, category.UpdatedAt).Scan(&category.ID)
	if err != nil {
		return 0, classifyWriteError(err, "creating category")
	}
	return category.ID, nil
}

func (r *categoryRepository) GetCategoryByID(executor SQLExecutor, id int64) (*models.Category, error) {
	category, err := scanCategory(executor.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting category by ID %d: %v", ErrDatabaseError, id, err)
	}
	return category, nil
}

// GetCategories returns the whole menu, optionally restricted to one wash type.
func (r *categoryRepository) GetCategories(washType *string) ([]models.Category, error) {
	categories := []models.Category{}
	query := `SELECT ` + categoryColumns + ` FROM categories`
	var args []interface{}
	if washType != nil && *washType != "" {
		query += ` WHERE wash_type = $1`
		args = append(args, *washType)
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getting categories: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning category: %v", ErrDatabaseError, err)
		}
		categories = append(categories, *category)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating categories: %v", ErrDatabaseError, err)
	}
	return categories, nil
}

func (r *categoryRepository) UpdateCategory(executor SQLExecutor, category *models.Category) error {
	query := `UPDATE categories SET name = $1, price = $2, wash_type = $3, description = $4, updated_at = $5 WHERE id = $6`
	category.UpdatedAt = time.Now()
	result, err := executor.Exec(query, category.Name, category.Price, category.WashType, category.Description,
		category.UpdatedAt, category.ID)
	if err != nil {
		return classifyWriteError(err, fmt.Sprintf("updating category ID %d", category.ID))
	}
	return checkAffected(result, fmt.Sprintf("updating category ID %d", category.ID))
}

// DeleteCategory removes a category that no transaction references.
func (r *categoryRepository) DeleteCategory(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return classifyWriteError(err, fmt.Sprintf("deleting category ID %d", id))
	}
	return checkAffected(result, fmt.Sprintf("deleting category ID %d", id))
}
