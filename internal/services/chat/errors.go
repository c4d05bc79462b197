// File: internal/services/chat/errors.go
package chat

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeStreaming  ErrorType = "STREAMING"
)

// Terminal markers written into a stream that fails after it has started.
const (
	GenerationErrorPrefix = "[Error] Failed to generate response: "
	MissingKeyMarker      = "[Error] Groq API key is not configured"
)

type ChatError struct {
	Type           ErrorType
	Operation      string
	Message        string
	ConversationID uint
	UserID         uint
	Cause          error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error {
	return e.Cause
}

func NewValidationError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewNotFoundError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeNotFound, Operation: operation, Message: msg}
}

func NewConfigError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeConfig, Operation: operation, Message: msg}
}

func NewStorageError(operation string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeStorage, Operation: operation, Message: "storage failure", Cause: cause}
}

func NewStreamingError(conversationID uint, cause error) *ChatError {
	return &ChatError{
		Type:           ErrTypeStreaming,
		Operation:      "streaming",
		Message:        "generation failed",
		ConversationID: conversationID,
		Cause:          cause,
	}
}

// ErrorTypeOf returns the ChatError type of err, or "" when err is not a
// ChatError.
func ErrorTypeOf(err error) ErrorType {
	var ce *ChatError
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ""
}
