package category

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/iyunix/chat-gateway/internal/domain"
)

var ErrCategoryNotFound = errors.New("category not found")

type gormCategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &gormCategoryRepository{db: db}
}

func (r *gormCategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, fmt.Errorf("database error creating category: %w", err)
	}
	return category, nil
}

func (r *gormCategoryRepository) FindByID(ctx context.Context, id uint) (*domain.Category, error) {
	var category domain.Category
	err := r.db.WithContext(ctx).First(&category, id).Error
	return handleFindError(err, &category)
}

func (r *gormCategoryRepository) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	var category domain.Category
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&category).Error
	return handleFindError(err, &category)
}

func (r *gormCategoryRepository) FindAll(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("database error fetching categories: %w", err)
	}
	return categories, nil
}

func handleFindError(err error, category *domain.Category) (*domain.Category, error) {
	if err == nil {
		return category, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	return nil, fmt.Errorf("database query failed: %w", err)
}
