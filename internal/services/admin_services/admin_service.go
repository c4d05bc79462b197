// File: internal/services/admin_services/admin_service.go
package admin_services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iyunix/chat-gateway/internal/domain"
	"github.com/iyunix/chat-gateway/internal/repository/category"
	"github.com/iyunix/chat-gateway/internal/repository/conversation"
	"github.com/iyunix/chat-gateway/internal/repository/message"
	"github.com/iyunix/chat-gateway/internal/repository/model"
	"github.com/iyunix/chat-gateway/internal/repository/user"
)

const (
	// RowLimit caps the conversation and message tables in a snapshot.
	RowLimit = 100
	// ContentPreviewLength is the number of characters of message content
	// shown before it is cut with "...".
	ContentPreviewLength = 100
)

type UserRow struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

type ConversationRow struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"user_id"`
	ModelID    *uint     `json:"model_id"`
	CategoryID *uint     `json:"category_id"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type MessageRow struct {
	ID             uint      `json:"id"`
	ConversationID uint      `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// Tables is a read-only dump of every table for the admin view.
type Tables struct {
	Users         []UserRow                `json:"users"`
	Categories    []domain.Category        `json:"categories"`
	Models        []domain.ModelDescriptor `json:"models"`
	Conversations []ConversationRow        `json:"conversations"`
	Messages      []MessageRow             `json:"messages"`
}

// AdminService provides functionalities for administrative tasks.
type AdminService struct {
	userRepo         user.UserRepository
	categoryRepo     category.CategoryRepository
	modelRepo        model.ModelRepository
	conversationRepo conversation.ConversationRepository
	messageRepo      message.MessageRepository
}

// NewAdminService creates a new instance of AdminService.
func NewAdminService(
	userRepo user.UserRepository,
	categoryRepo category.CategoryRepository,
	modelRepo model.ModelRepository,
	conversationRepo conversation.ConversationRepository,
	messageRepo message.MessageRepository,
) *AdminService {
	return &AdminService{
		userRepo:         userRepo,
		categoryRepo:     categoryRepo,
		modelRepo:        modelRepo,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
	}
}

// GetTables snapshots all tables. Conversations and messages are capped at
// RowLimit rows and message content is shortened to a preview.
func (s *AdminService) GetTables(ctx context.Context) (*Tables, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	models, err := s.modelRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get models: %w", err)
	}
	conversations, err := s.conversationRepo.FindAll(ctx, RowLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversations: %w", err)
	}
	messages, err := s.messageRepo.FindAll(ctx, RowLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	tables := &Tables{
		Users:         make([]UserRow, 0, len(users)),
		Categories:    categories,
		Models:        models,
		Conversations: make([]ConversationRow, 0, len(conversations)),
		Messages:      make([]MessageRow, 0, len(messages)),
	}
	for _, u := range users {
		tables.Users = append(tables.Users, UserRow{
			ID: u.ID, Username: u.Username, Email: u.Email, IsAdmin: u.IsAdmin, CreatedAt: u.CreatedAt,
		})
	}
	for _, c := range conversations {
		tables.Conversations = append(tables.Conversations, ConversationRow{
			ID: c.ID, UserID: c.UserID, ModelID: c.ModelID, CategoryID: c.CategoryID,
			Title: c.Title, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
		})
	}
	for _, m := range messages {
		tables.Messages = append(tables.Messages, MessageRow{
			ID: m.ID, ConversationID: m.ConversationID, Role: m.Role,
			Content: Preview(m.Content, ContentPreviewLength), CreatedAt: m.CreatedAt,
		})
	}
	return tables, nil
}

// Preview cuts input to maxLen runes and appends "..." when anything was
// removed.
func Preview(input string, maxLen int) string {
	if utf8.RuneCountInString(input) <= maxLen {
		return input
	}

	var b strings.Builder
	count := 0
	for _, r := range input {
		if count >= maxLen {
			break
		}
		b.WriteRune(r)
		count++
	}
	b.WriteString("...")
	return b.String()
}
