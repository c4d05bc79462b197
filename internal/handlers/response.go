package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iyunix/chat-gateway/internal/dtos"
	"github.com/iyunix/chat-gateway/internal/services/chat"
)

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, dtos.ErrorResponseDTO{Detail: message})
}

// writeChatError maps a chat service error to its HTTP status.
func writeChatError(w http.ResponseWriter, err error) {
	var ce *chat.ChatError
	if !errors.As(err, &ce) {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	switch ce.Type {
	case chat.ErrTypeNotFound:
		writeError(w, ce.Message, http.StatusNotFound)
	case chat.ErrTypeValidation:
		writeError(w, ce.Message, http.StatusBadRequest)
	case chat.ErrTypeConfig:
		writeError(w, ce.Message, http.StatusInternalServerError)
	default:
		writeError(w, err.Error(), http.StatusInternalServerError)
	}
}
