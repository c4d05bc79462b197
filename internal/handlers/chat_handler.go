// File: internal/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iyunix/chat-gateway/internal/dtos"
	"github.com/iyunix/chat-gateway/internal/middleware"
	"github.com/iyunix/chat-gateway/internal/services"
	"github.com/iyunix/chat-gateway/internal/services/chat"
)

const ConversationIDHeader = "X-Conversation-ID"

type ChatHandler struct {
	orchestrator  *chat.Orchestrator
	conversations *chat.ConversationService
	logger        services.Logger
}

func NewChatHandler(orchestrator *chat.Orchestrator, conversations *chat.ConversationService, logger services.Logger) *ChatHandler {
	return &ChatHandler{
		orchestrator:  orchestrator,
		conversations: conversations,
		logger:        logger,
	}
}

// Chat streams a reply for an authenticated user as plain text. The
// conversation used is returned in the X-Conversation-ID header.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, "Could not validate credentials", http.StatusUnauthorized)
		return
	}

	var req dtos.ChatRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ModelID == nil {
		writeError(w, "model_id is required", http.StatusUnprocessableEntity)
		return
	}

	session, err := h.orchestrator.Prepare(r.Context(), user, chat.ChatRequest{
		UserInput:       req.UserInput,
		RememberHistory: req.RememberHistory,
		History:         dtos.ToTurns(req.History),
		ModelID:         *req.ModelID,
		ConversationID:  req.ConversationID,
		CategoryID:      req.CategoryID,
	})
	if err != nil {
		h.logger.Warn("chat request rejected", "user_id", user.ID, "error", err)
		writeChatError(w, err)
		return
	}

	w.Header().Set(ConversationIDHeader, strconv.FormatUint(uint64(session.ConversationID), 10))
	h.stream(w, r, session)
}

// GuestChat streams a reply without an account. Nothing is stored.
func (h *ChatHandler) GuestChat(w http.ResponseWriter, r *http.Request) {
	var req dtos.GuestChatRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Model == "" {
		writeError(w, "model is required", http.StatusUnprocessableEntity)
		return
	}

	var categoryID uint
	if req.Category != nil {
		categoryID = *req.Category
	}
	session, err := h.orchestrator.PrepareGuest(r.Context(), chat.GuestChatRequest{
		UserInput:  req.UserInput,
		History:    dtos.ToTurns(req.History),
		Model:      req.Model,
		CategoryID: categoryID,
	})
	if err != nil {
		h.logger.Warn("guest chat rejected", "model", req.Model, "error", err)
		writeChatError(w, err)
		return
	}

	h.stream(w, r, session)
}

// stream commits to a 200 and relays deltas, flushing each one. Failures
// past this point reach the client only as the in-stream marker.
func (h *ChatHandler) stream(w http.ResponseWriter, r *http.Request, session *chat.Session) {
	flusher, _ := w.(http.Flusher)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if flusher != nil {
		flusher.Flush()
	}

	err := session.Stream(r.Context(), func(delta string) error {
		if _, err := io.WriteString(w, delta); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		h.logger.Debug("stream ended with error",
			"conversation_id", session.ConversationID,
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"error", err)
	}
}

// ListConversations returns the caller's conversations, or all of them for
// an admin.
func (h *ChatHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, "Could not validate credentials", http.StatusUnauthorized)
		return
	}

	convs, err := h.conversations.List(r.Context(), user)
	if err != nil {
		h.logger.Error("failed to list conversations", "user_id", user.ID, "error", err)
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.ToConversationList(convs))
}

func (h *ChatHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, "Could not validate credentials", http.StatusUnauthorized)
		return
	}
	id, ok := conversationID(w, r)
	if !ok {
		return
	}

	if err := h.conversations.Delete(r.Context(), user, id); err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.MessageResponseDTO{Message: "Conversation deleted successfully"})
}

func (h *ChatHandler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, "Could not validate credentials", http.StatusUnauthorized)
		return
	}
	id, ok := conversationID(w, r)
	if !ok {
		return
	}

	var req dtos.ConversationTitleDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.conversations.UpdateTitle(r.Context(), user, id, req.Title); err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.MessageResponseDTO{Message: "Title updated successfully"})
}

func conversationID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		writeError(w, "Invalid conversation ID", http.StatusBadRequest)
		return 0, false
	}
	return uint(id), true
}
