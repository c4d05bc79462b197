package conversation

import (
	"context"

	"github.com/iyunix/chat-gateway/internal/domain"
)

// ConversationRepository handles conversation data operations. Lookups
// preload the bound model and category.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *domain.Conversation) (*domain.Conversation, error)
	FindByID(ctx context.Context, id uint) (*domain.Conversation, error)
	FindByIDAndUserID(ctx context.Context, id, userID uint) (*domain.Conversation, error)
	// ListWithMessages returns conversations with their messages, scoped to
	// userID unless userID is zero.
	ListWithMessages(ctx context.Context, userID uint) ([]domain.Conversation, error)
	FindAll(ctx context.Context, limit int) ([]domain.Conversation, error)
	UpdateTitle(ctx context.Context, id uint, title string) error
	TouchUpdatedAt(ctx context.Context, id uint) error
	// DeleteWithMessages removes the messages first, then the conversation,
	// in one transaction.
	DeleteWithMessages(ctx context.Context, id uint) error
}
