// File: internal/services/chat/conversations.go
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/iyunix/chat-gateway/internal/domain"
	"github.com/iyunix/chat-gateway/internal/repository/conversation"
)

// ConversationService lists and edits conversations. Admins see and edit
// every conversation; other users only their own.
type ConversationService struct {
	conversations conversation.ConversationRepository
	logger        Logger
}

func NewConversationService(conversations conversation.ConversationRepository, logger Logger) *ConversationService {
	return &ConversationService{conversations: conversations, logger: logger}
}

// List returns conversations with messages in chronological order.
func (s *ConversationService) List(ctx context.Context, user *domain.User) ([]domain.Conversation, error) {
	scope := user.ID
	if user.IsAdmin {
		scope = 0
	}
	convs, err := s.conversations.ListWithMessages(ctx, scope)
	if err != nil {
		return nil, NewStorageError("list_conversations", err)
	}
	return convs, nil
}

// Delete removes a conversation and all of its messages.
func (s *ConversationService) Delete(ctx context.Context, user *domain.User, id uint) error {
	if _, err := s.find(ctx, user, id); err != nil {
		return err
	}
	if err := s.conversations.DeleteWithMessages(ctx, id); err != nil {
		if errors.Is(err, conversation.ErrConversationNotFound) {
			return notFound(user.ID, id)
		}
		return NewStorageError("delete_conversation", err)
	}
	s.logger.Info("conversation deleted", "user_id", user.ID, "conversation_id", id)
	return nil
}

func (s *ConversationService) UpdateTitle(ctx context.Context, user *domain.User, id uint, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return NewValidationError("update_title", "title is required")
	}
	if _, err := s.find(ctx, user, id); err != nil {
		return err
	}
	if err := s.conversations.UpdateTitle(ctx, id, title); err != nil {
		if errors.Is(err, conversation.ErrConversationNotFound) {
			return notFound(user.ID, id)
		}
		return NewStorageError("update_title", err)
	}
	return nil
}

func (s *ConversationService) find(ctx context.Context, user *domain.User, id uint) (*domain.Conversation, error) {
	var conv *domain.Conversation
	var err error
	if user.IsAdmin {
		conv, err = s.conversations.FindByID(ctx, id)
	} else {
		conv, err = s.conversations.FindByIDAndUserID(ctx, id, user.ID)
	}
	if err != nil {
		if errors.Is(err, conversation.ErrConversationNotFound) {
			return nil, notFound(user.ID, id)
		}
		return nil, NewStorageError("load_conversation", err)
	}
	return conv, nil
}

func notFound(userID, conversationID uint) *ChatError {
	return &ChatError{
		Type:           ErrTypeNotFound,
		Operation:      "authorization",
		Message:        "Conversation not found",
		UserID:         userID,
		ConversationID: conversationID,
	}
}
