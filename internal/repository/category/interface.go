package category

import (
	"context"

	"github.com/iyunix/chat-gateway/internal/domain"
)

// CategoryRepository reads the seeded category reference data.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	FindByID(ctx context.Context, id uint) (*domain.Category, error)
	FindByName(ctx context.Context, name string) (*domain.Category, error)
	FindAll(ctx context.Context) ([]domain.Category, error)
}
