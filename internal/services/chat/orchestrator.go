// File: internal/services/chat/orchestrator.go
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iyunix/chat-gateway/internal/domain"
	"github.com/iyunix/chat-gateway/internal/repository/category"
	"github.com/iyunix/chat-gateway/internal/repository/conversation"
	"github.com/iyunix/chat-gateway/internal/repository/message"
	"github.com/iyunix/chat-gateway/internal/services/prompt"
	"github.com/iyunix/chat-gateway/internal/services/provider"
	"github.com/iyunix/chat-gateway/internal/services/registry"
)

// Orchestrator runs a chat turn: it resolves the model and conversation,
// records the user message, builds the provider input and relays the
// provider's stream.
type Orchestrator struct {
	config        *Config
	models        ModelResolver
	conversations conversation.ConversationRepository
	messages      message.MessageRepository
	categories    category.CategoryRepository
	assembler     *prompt.Assembler
	recorder      StreamRecorder
	logger        Logger
}

func NewOrchestrator(
	config *Config,
	models ModelResolver,
	conversations conversation.ConversationRepository,
	messages message.MessageRepository,
	categories category.CategoryRepository,
	assembler *prompt.Assembler,
	recorder StreamRecorder,
	logger Logger,
) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Orchestrator{
		config:        config,
		models:        models,
		conversations: conversations,
		messages:      messages,
		categories:    categories,
		assembler:     assembler,
		recorder:      recorder,
		logger:        logger,
	}
}

// Session is a prepared turn whose stream has not started yet.
type Session struct {
	// ConversationID is zero for guest sessions.
	ConversationID uint
	Model          *registry.ModelHandle
	Input          prompt.Input

	persist bool
	o       *Orchestrator
}

// Prepare does everything that can still fail with an HTTP status: model
// lookup, conversation lookup or creation, and the user message write.
func (o *Orchestrator) Prepare(ctx context.Context, user *domain.User, req ChatRequest) (*Session, error) {
	model, err := o.models.Resolve(ctx, req.ModelID)
	if err != nil {
		if errors.Is(err, registry.ErrModelNotFound) {
			return nil, NewNotFoundError("resolve_model", "Model not found")
		}
		return nil, NewStorageError("resolve_model", err)
	}

	conv, created, err := o.resolveConversation(ctx, user, req, model)
	if err != nil {
		return nil, err
	}

	// History is read before the new turn is written so it never contains it.
	var history []prompt.Turn
	if req.RememberHistory {
		if created {
			history = req.History
		} else {
			stored, err := o.messages.FindByConversationID(ctx, conv.ID)
			if err != nil {
				return nil, NewStorageError("load_history", err)
			}
			history = prompt.TurnsFromMessages(stored)
		}
	}

	if _, err := o.messages.Create(ctx, &domain.Message{
		ConversationID: conv.ID,
		Role:           domain.RoleUser,
		Content:        req.UserInput,
	}); err != nil {
		return nil, NewStorageError("save_user_message", err)
	}
	if err := o.conversations.TouchUpdatedAt(ctx, conv.ID); err != nil {
		o.logger.Warn("failed to touch conversation", "conversation_id", conv.ID, "error", err)
	}

	o.logger.Info("chat turn prepared",
		"user_id", user.ID,
		"conversation_id", conv.ID,
		"model", model.Name,
		"provider", string(model.Kind),
		"new_conversation", created,
		"history_turns", len(history))

	return &Session{
		ConversationID: conv.ID,
		Model:          model,
		Input:          o.assembler.Build(conv.CategoryName(), history, req.UserInput),
		persist:        true,
		o:              o,
	}, nil
}

// resolveConversation returns the requested conversation when the user may
// use it (admins may use any). An unknown or foreign ID, or no ID at all,
// starts a new conversation bound to the model and the requested category.
func (o *Orchestrator) resolveConversation(ctx context.Context, user *domain.User, req ChatRequest, model *registry.ModelHandle) (*domain.Conversation, bool, error) {
	if req.ConversationID != nil {
		var conv *domain.Conversation
		var err error
		if user.IsAdmin {
			conv, err = o.conversations.FindByID(ctx, *req.ConversationID)
		} else {
			conv, err = o.conversations.FindByIDAndUserID(ctx, *req.ConversationID, user.ID)
		}
		if err == nil {
			return conv, false, nil
		}
		if !errors.Is(err, conversation.ErrConversationNotFound) {
			return nil, false, NewStorageError("load_conversation", err)
		}
		o.logger.Info("requested conversation not usable, starting a new one",
			"user_id", user.ID,
			"requested_conversation_id", *req.ConversationID)
	}

	newConv := &domain.Conversation{
		UserID:     user.ID,
		CategoryID: o.knownCategory(ctx, req.CategoryID),
		Title:      domain.DefaultConversationTitle,
	}
	if model.ID != 0 {
		modelID := model.ID
		newConv.ModelID = &modelID
	}

	conv, err := o.conversations.Create(ctx, newConv)
	if err != nil {
		return nil, false, NewStorageError("create_conversation", err)
	}
	return conv, true, nil
}

// knownCategory drops a category ID that does not exist so the conversation
// falls back to the general template instead of failing the foreign key.
func (o *Orchestrator) knownCategory(ctx context.Context, id *uint) *uint {
	if id == nil {
		return nil
	}
	if _, err := o.categories.FindByID(ctx, *id); err != nil {
		o.logger.Warn("ignoring unknown category", "category_id", *id, "error", err)
		return nil
	}
	value := *id
	return &value
}

// PrepareGuest resolves a model by name for an anonymous turn. Nothing is
// stored.
func (o *Orchestrator) PrepareGuest(ctx context.Context, req GuestChatRequest) (*Session, error) {
	model, err := o.models.ResolveLive(ctx, req.Model)
	if err != nil {
		if errors.Is(err, registry.ErrModelNotFound) {
			return nil, NewNotFoundError("resolve_model", "Model not found")
		}
		return nil, NewStorageError("resolve_model", err)
	}

	switch model.Kind {
	case domain.ModelKindLocal:
		ok, err := model.Provider.Resolve(ctx, req.Model)
		if err != nil || !ok {
			return nil, NewNotFoundError("resolve_model", "Ollama model not available")
		}
	case domain.ModelKindCloud:
		if err := model.Provider.Available(); err != nil {
			return nil, NewConfigError("resolve_model", "Groq API key not configured")
		}
	}

	categoryID := req.CategoryID
	if categoryID == 0 {
		categoryID = o.config.GuestCategoryID
	}
	categoryName := ""
	if cat, err := o.categories.FindByID(ctx, categoryID); err == nil {
		categoryName = cat.Name
	}

	return &Session{
		Model:   model,
		Input:   o.assembler.Build(categoryName, req.History, req.UserInput),
		persist: false,
		o:       o,
	}, nil
}

// Stream relays provider deltas to onDelta. When generation fails a single
// error marker is sent in place of further text and nothing is stored; on
// success the full reply is stored as one assistant message.
func (s *Session) Stream(ctx context.Context, onDelta func(string) error) error {
	o := s.o
	start := time.Now()

	var reply strings.Builder
	err := s.Model.Provider.StreamCompletion(ctx, s.Model.Name, s.Input, func(delta string) error {
		reply.WriteString(delta)
		return onDelta(delta)
	})
	if err != nil {
		o.recorder.RecordStream(string(s.Model.Kind), "error", time.Since(start))
		o.logger.Error("stream completion failed",
			"conversation_id", s.ConversationID,
			"model", s.Model.Name,
			"partial_length", reply.Len(),
			"error", err)
		if writeErr := onDelta(errorMarker(err)); writeErr != nil {
			o.logger.Debug("could not deliver error marker", "error", writeErr)
		}
		return NewStreamingError(s.ConversationID, err)
	}

	o.recorder.RecordStream(string(s.Model.Kind), "success", time.Since(start))
	if s.persist {
		o.saveAssistantMessage(s.ConversationID, reply.String())
	}
	o.logger.Info("stream completed",
		"conversation_id", s.ConversationID,
		"model", s.Model.Name,
		"response_length", reply.Len(),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// saveAssistantMessage runs on its own context so a client that disconnects
// right after the last token does not lose the reply.
func (o *Orchestrator) saveAssistantMessage(conversationID uint, content string) {
	ctx, cancel := context.WithTimeout(context.Background(), o.config.AssistantSaveTimeout)
	defer cancel()

	if _, err := o.messages.Create(ctx, &domain.Message{
		ConversationID: conversationID,
		Role:           domain.RoleAssistant,
		Content:        content,
	}); err != nil {
		o.logger.Error("failed to save assistant message", "conversation_id", conversationID, "error", err)
		return
	}
	if err := o.conversations.TouchUpdatedAt(ctx, conversationID); err != nil {
		o.logger.Warn("failed to touch conversation", "conversation_id", conversationID, "error", err)
	}
}

func errorMarker(err error) string {
	if errors.Is(err, provider.ErrProviderUnavailable) {
		return MissingKeyMarker
	}
	return GenerationErrorPrefix + err.Error()
}
