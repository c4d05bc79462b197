package model

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/iyunix/chat-gateway/internal/domain"
)

var ErrModelNotFound = errors.New("model not found")

type gormModelRepository struct {
	db *gorm.DB
}

func NewModelRepository(db *gorm.DB) ModelRepository {
	return &gormModelRepository{db: db}
}

func (r *gormModelRepository) Create(ctx context.Context, model *domain.ModelDescriptor) (*domain.ModelDescriptor, error) {
	if model.Name == "" {
		return nil, errors.New("validation failed: model name is required")
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, fmt.Errorf("database error creating model %q: %w", model.Name, err)
	}
	return model, nil
}

func (r *gormModelRepository) FindByID(ctx context.Context, id uint) (*domain.ModelDescriptor, error) {
	var model domain.ModelDescriptor
	err := r.db.WithContext(ctx).First(&model, id).Error
	return handleFindError(err, &model)
}

// FindByName returns the oldest entry with the given name.
func (r *gormModelRepository) FindByName(ctx context.Context, name string) (*domain.ModelDescriptor, error) {
	var model domain.ModelDescriptor
	err := r.db.WithContext(ctx).Where("name = ?", name).Order("id ASC").First(&model).Error
	return handleFindError(err, &model)
}

func (r *gormModelRepository) FindAll(ctx context.Context) ([]domain.ModelDescriptor, error) {
	var models []domain.ModelDescriptor
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("database error fetching models: %w", err)
	}
	return models, nil
}

func (r *gormModelRepository) SetAvailability(ctx context.Context, id uint, available bool) error {
	result := r.db.WithContext(ctx).
		Model(&domain.ModelDescriptor{}).
		Where("id = ?", id).
		Update("is_avail", available)
	if result.Error != nil {
		return fmt.Errorf("database error updating availability for model %d: %w", id, result.Error)
	}
	return nil
}

func handleFindError(err error, model *domain.ModelDescriptor) (*domain.ModelDescriptor, error) {
	if err == nil {
		return model, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrModelNotFound
	}
	return nil, fmt.Errorf("database query failed: %w", err)
}
