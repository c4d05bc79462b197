package model

import (
	"context"

	"github.com/iyunix/chat-gateway/internal/domain"
)

// ModelRepository persists the model registry table.
type ModelRepository interface {
	Create(ctx context.Context, model *domain.ModelDescriptor) (*domain.ModelDescriptor, error)
	FindByID(ctx context.Context, id uint) (*domain.ModelDescriptor, error)
	FindByName(ctx context.Context, name string) (*domain.ModelDescriptor, error)
	FindAll(ctx context.Context) ([]domain.ModelDescriptor, error)
	SetAvailability(ctx context.Context, id uint, available bool) error
}
