package admin_services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/chat-gateway/internal/database"
	"github.com/iyunix/chat-gateway/internal/domain"
	"github.com/iyunix/chat-gateway/internal/repository/category"
	"github.com/iyunix/chat-gateway/internal/repository/conversation"
	"github.com/iyunix/chat-gateway/internal/repository/message"
	"github.com/iyunix/chat-gateway/internal/repository/model"
	"github.com/iyunix/chat-gateway/internal/repository/user"
)

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short", 100))
	exact := strings.Repeat("a", 100)
	assert.Equal(t, exact, Preview(exact, 100))
	assert.Equal(t, exact+"...", Preview(exact+"b", 100))
	assert.Equal(t, "héé...", Preview("héééé", 3))
}

func TestGetTables(t *testing.T) {
	db := database.OpenTest(t)
	svc := NewAdminService(
		user.NewGormUserRepository(db),
		category.NewCategoryRepository(db),
		model.NewModelRepository(db),
		conversation.NewConversationRepository(db),
		message.NewMessageRepository(db),
	)

	u := &domain.User{Username: "alice", Email: "a@example.com", Password: "secret-hash"}
	require.NoError(t, db.Create(u).Error)
	require.NoError(t, db.Create(&domain.Category{Name: "General"}).Error)
	require.NoError(t, db.Create(&domain.ModelDescriptor{Name: "llama3.2", Kind: domain.ModelKindLocal}).Error)
	for i := 0; i < RowLimit+5; i++ {
		require.NoError(t, db.Create(&domain.Conversation{UserID: u.ID, Title: "c"}).Error)
	}
	long := strings.Repeat("x", 150)
	for i := 0; i < RowLimit+5; i++ {
		require.NoError(t, db.Create(&domain.Message{ConversationID: 1, Role: domain.RoleUser, Content: long}).Error)
	}

	tables, err := svc.GetTables(context.Background())
	require.NoError(t, err)
	require.Len(t, tables.Users, 1)
	assert.Equal(t, "alice", tables.Users[0].Username)
	assert.Len(t, tables.Categories, 1)
	assert.Len(t, tables.Models, 1)
	assert.Len(t, tables.Conversations, RowLimit)
	require.Len(t, tables.Messages, RowLimit)
	assert.Equal(t, strings.Repeat("x", 100)+"...", tables.Messages[0].Content)
}
