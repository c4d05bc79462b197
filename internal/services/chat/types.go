// File: internal/services/chat/types.go
package chat

import (
	"context"
	"time"

	"github.com/iyunix/chat-gateway/internal/services/prompt"
	"github.com/iyunix/chat-gateway/internal/services/registry"
)

// Logger defines the logging interface used across chat services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// ModelResolver is the part of the model registry the orchestrator needs.
type ModelResolver interface {
	Resolve(ctx context.Context, id uint) (*registry.ModelHandle, error)
	ResolveLive(ctx context.Context, name string) (*registry.ModelHandle, error)
}

// StreamRecorder observes finished streams, e.g. for metrics.
type StreamRecorder interface {
	RecordStream(provider, outcome string, duration time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) RecordStream(string, string, time.Duration) {}

// ChatRequest is an authenticated chat turn.
type ChatRequest struct {
	UserInput       string
	RememberHistory bool
	// History is used only when the conversation is created by this request.
	History        []prompt.Turn
	ModelID        uint
	ConversationID *uint
	CategoryID     *uint
}

// GuestChatRequest is an anonymous, unpersisted chat turn.
type GuestChatRequest struct {
	UserInput  string
	History    []prompt.Turn
	Model      string
	CategoryID uint
}
