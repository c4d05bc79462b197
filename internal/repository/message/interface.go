// File: internal/repository/message/interface.go
package message

import (
	"context"

	"github.com/iyunix/chat-gateway/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	FindByConversationID(ctx context.Context, conversationID uint) ([]domain.Message, error)
	FindAll(ctx context.Context, limit int) ([]domain.Message, error)
	CountByConversationID(ctx context.Context, conversationID uint) (int64, error)
}
