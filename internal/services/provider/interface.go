// File: internal/services/provider/interface.go
package provider

import (
	"context"

	"github.com/iyunix/chat-gateway/internal/domain"
	"github.com/iyunix/chat-gateway/internal/services/prompt"
)

// Provider is one model backend. Implementations are safe for concurrent
// use.
type Provider interface {
	Kind() domain.ModelKind
	// ListCatalog returns the model names the backend currently serves.
	ListCatalog(ctx context.Context) ([]string, error)
	// Resolve reports whether name is in the live catalog.
	Resolve(ctx context.Context, name string) (bool, error)
	// StreamCompletion calls onDelta for each generated text fragment, in
	// order. An error returned by onDelta stops the stream and is returned.
	StreamCompletion(ctx context.Context, model string, in prompt.Input, onDelta func(string) error) error
	// Available returns ErrProviderUnavailable when the backend cannot be
	// used at all.
	Available() error
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
