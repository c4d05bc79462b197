package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iyunix/chat-gateway/internal/database"
	"github.com/iyunix/chat-gateway/internal/domain"
)

func seedUser(t *testing.T, db *gorm.DB, name string) *domain.User {
	t.Helper()
	u := &domain.User{Username: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestCreateDefaultsTitleAndPreloads(t *testing.T) {
	db := database.OpenTest(t)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	u := seedUser(t, db, "alice")
	cat := &domain.Category{Name: "Goal Setting"}
	require.NoError(t, db.Create(cat).Error)
	m := &domain.ModelDescriptor{Name: "llama3.2", Kind: domain.ModelKindLocal, IsAvailable: true}
	require.NoError(t, db.Create(m).Error)

	conv, err := repo.Create(ctx, &domain.Conversation{UserID: u.ID, ModelID: &m.ID, CategoryID: &cat.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConversationTitle, conv.Title)
	require.NotNil(t, conv.Model)
	assert.Equal(t, "llama3.2", conv.Model.Name)
	assert.Equal(t, "Goal Setting", conv.CategoryName())
}

func TestFindByIDAndUserIDScopesOwnership(t *testing.T) {
	db := database.OpenTest(t)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	conv, err := repo.Create(ctx, &domain.Conversation{UserID: alice.ID})
	require.NoError(t, err)

	_, err = repo.FindByIDAndUserID(ctx, conv.ID, bob.ID)
	assert.ErrorIs(t, err, ErrConversationNotFound)

	found, err := repo.FindByIDAndUserID(ctx, conv.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, found.ID)

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestListWithMessagesOrdersMessages(t *testing.T) {
	db := database.OpenTest(t)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	c1, err := repo.Create(ctx, &domain.Conversation{UserID: alice.ID})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Conversation{UserID: bob.ID})
	require.NoError(t, err)

	same := time.Now()
	require.NoError(t, db.Create(&domain.Message{ConversationID: c1.ID, Role: domain.RoleUser, Content: "first", CreatedAt: same}).Error)
	require.NoError(t, db.Create(&domain.Message{ConversationID: c1.ID, Role: domain.RoleAssistant, Content: "second", CreatedAt: same}).Error)

	mine, err := repo.ListWithMessages(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Len(t, mine[0].Messages, 2)
	assert.Equal(t, "first", mine[0].Messages[0].Content)
	assert.Equal(t, "second", mine[0].Messages[1].Content)

	all, err := repo.ListWithMessages(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateTitleAndTouch(t *testing.T) {
	db := database.OpenTest(t)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	u := seedUser(t, db, "alice")
	conv, err := repo.Create(ctx, &domain.Conversation{UserID: u.ID})
	require.NoError(t, err)
	before := conv.UpdatedAt

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, repo.UpdateTitle(ctx, conv.ID, "Plans"))
	reloaded, err := repo.FindByID(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Plans", reloaded.Title)
	assert.True(t, reloaded.UpdatedAt.After(before))

	assert.ErrorIs(t, repo.UpdateTitle(ctx, 9999, "x"), ErrConversationNotFound)
	assert.ErrorIs(t, repo.TouchUpdatedAt(ctx, 9999), ErrConversationNotFound)
}

func TestDeleteWithMessages(t *testing.T) {
	db := database.OpenTest(t)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	u := seedUser(t, db, "alice")
	conv, err := repo.Create(ctx, &domain.Conversation{UserID: u.ID})
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.Message{ConversationID: conv.ID, Role: domain.RoleUser, Content: "hi"}).Error)

	require.NoError(t, repo.DeleteWithMessages(ctx, conv.ID))

	var count int64
	require.NoError(t, db.Model(&domain.Message{}).Count(&count).Error)
	assert.Zero(t, count)
	_, err = repo.FindByID(ctx, conv.ID)
	assert.ErrorIs(t, err, ErrConversationNotFound)

	assert.ErrorIs(t, repo.DeleteWithMessages(ctx, conv.ID), ErrConversationNotFound)
}

func TestFindAllLimit(t *testing.T) {
	db := database.OpenTest(t)
	repo := NewConversationRepository(db)
	ctx := context.Background()

	u := seedUser(t, db, "alice")
	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, &domain.Conversation{UserID: u.ID})
		require.NoError(t, err)
	}

	limited, err := repo.FindAll(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
