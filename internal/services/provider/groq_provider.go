// File: internal/services/provider/groq_provider.go
package provider

import (
	"context"
	"errors"
	"io"

	"github.com/patrickmn/go-cache"
	openai "github.com/sashabaranov/go-openai"

	"github.com/iyunix/chat-gateway/internal/domain"
	"github.com/iyunix/chat-gateway/internal/services/prompt"
)

const (
	groqName        = "groq"
	catalogCacheKey = "catalog"
)

// GroqProvider talks to Groq's OpenAI-compatible API.
type GroqProvider struct {
	config *GroqConfig
	client *openai.Client
	cache  *cache.Cache
	logger Logger
}

func NewGroqProvider(config *GroqConfig, logger Logger) *GroqProvider {
	if config == nil {
		config = DefaultGroqConfig()
	}
	p := &GroqProvider{config: config, logger: logger}

	if config.APIKey != "" {
		clientConfig := openai.DefaultConfig(config.APIKey)
		if config.BaseURL != "" {
			clientConfig.BaseURL = config.BaseURL
		}
		p.client = openai.NewClientWithConfig(clientConfig)
	}
	if config.CatalogTTL > 0 {
		p.cache = cache.New(config.CatalogTTL, 2*config.CatalogTTL)
	}
	return p
}

func (p *GroqProvider) Kind() domain.ModelKind { return domain.ModelKindCloud }

func (p *GroqProvider) Available() error {
	if p.client == nil {
		return ErrProviderUnavailable
	}
	return nil
}

// ListCatalog returns the live model IDs. A failed listing falls back to
// DefaultCloudModels; only a missing credential is an error.
func (p *GroqProvider) ListCatalog(ctx context.Context) ([]string, error) {
	if err := p.Available(); err != nil {
		return nil, err
	}

	if p.cache != nil {
		if cached, ok := p.cache.Get(catalogCacheKey); ok {
			return cached.([]string), nil
		}
	}

	resp, err := p.client.ListModels(ctx)
	if err != nil {
		p.logger.Warn("groq model listing failed, using default catalog", "error", err)
		return append([]string(nil), DefaultCloudModels...), nil
	}

	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		if m.ID != "" && !containsName(names, m.ID) {
			names = append(names, m.ID)
		}
	}
	if p.cache != nil {
		p.cache.SetDefault(catalogCacheKey, names)
	}
	p.logger.Debug("groq catalog fetched", "count", len(names))
	return names, nil
}

func (p *GroqProvider) Resolve(ctx context.Context, name string) (bool, error) {
	names, err := p.ListCatalog(ctx)
	if err != nil {
		return false, err
	}
	return containsName(names, name), nil
}

// StreamCompletion sends the role-tagged message list.
func (p *GroqProvider) StreamCompletion(ctx context.Context, model string, in prompt.Input, onDelta func(string) error) error {
	if err := p.Available(); err != nil {
		return err
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: toChatMessages(in.Messages),
		Stream:   true,
	})
	if err != nil {
		return NewProviderError(groqName, "streaming", "failed to create stream", err)
	}
	defer stream.Close()

	for {
		response, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return NewProviderError(groqName, "streaming", "stream receive error", err)
		}

		if len(response.Choices) > 0 {
			delta := response.Choices[0].Delta.Content
			if delta != "" && onDelta != nil {
				if cbErr := onDelta(delta); cbErr != nil {
					return cbErr
				}
			}
		}
	}
}

func toChatMessages(turns []prompt.Turn) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		role := openai.ChatMessageRoleAssistant
		switch t.Role {
		case "system":
			role = openai.ChatMessageRoleSystem
		case domain.RoleUser:
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Content})
	}
	return messages
}
