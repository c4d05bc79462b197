// File: internal/repository/conversation/conversation_repository.go
package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/iyunix/chat-gateway/internal/domain"
)

var ErrConversationNotFound = errors.New("conversation not found")

type gormConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &gormConversationRepository{db: db}
}

func (r *gormConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) (*domain.Conversation, error) {
	if conversation == nil || conversation.UserID == 0 {
		return nil, errors.New("validation failed: user ID is required")
	}
	if conversation.Title == "" {
		conversation.Title = domain.DefaultConversationTitle
	}
	if err := r.db.WithContext(ctx).Create(conversation).Error; err != nil {
		return nil, fmt.Errorf("database error creating conversation for user %d: %w", conversation.UserID, err)
	}
	// Reload so the associations are populated for the caller.
	return r.FindByID(ctx, conversation.ID)
}

func (r *gormConversationRepository) FindByID(ctx context.Context, id uint) (*domain.Conversation, error) {
	var conversation domain.Conversation
	err := r.withRefs(ctx).First(&conversation, id).Error
	return handleFindError(err, &conversation)
}

func (r *gormConversationRepository) FindByIDAndUserID(ctx context.Context, id, userID uint) (*domain.Conversation, error) {
	var conversation domain.Conversation
	err := r.withRefs(ctx).Where("id = ? AND user_id = ?", id, userID).First(&conversation).Error
	return handleFindError(err, &conversation)
}

func (r *gormConversationRepository) ListWithMessages(ctx context.Context, userID uint) ([]domain.Conversation, error) {
	q := r.withRefs(ctx).Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	})
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}

	var conversations []domain.Conversation
	if err := q.Order("id ASC").Find(&conversations).Error; err != nil {
		return nil, fmt.Errorf("database error fetching conversations: %w", err)
	}
	return conversations, nil
}

func (r *gormConversationRepository) FindAll(ctx context.Context, limit int) ([]domain.Conversation, error) {
	q := r.db.WithContext(ctx).Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var conversations []domain.Conversation
	if err := q.Find(&conversations).Error; err != nil {
		return nil, fmt.Errorf("database error fetching conversations: %w", err)
	}
	return conversations, nil
}

func (r *gormConversationRepository) UpdateTitle(ctx context.Context, id uint, title string) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"title": title, "updated_at": time.Now()})
	if result.Error != nil {
		return fmt.Errorf("database error updating title for conversation %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (r *gormConversationRepository) TouchUpdatedAt(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("database error updating timestamp for conversation %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (r *gormConversationRepository) DeleteWithMessages(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&domain.Message{}).Error; err != nil {
			return fmt.Errorf("database error deleting messages for conversation %d: %w", id, err)
		}
		result := tx.Delete(&domain.Conversation{}, id)
		if result.Error != nil {
			return fmt.Errorf("database error deleting conversation %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrConversationNotFound
		}
		return nil
	})
}

func (r *gormConversationRepository) withRefs(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Model").Preload("Category")
}

func handleFindError(err error, conversation *domain.Conversation) (*domain.Conversation, error) {
	if err == nil {
		return conversation, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	return nil, fmt.Errorf("database query failed: %w", err)
}
