// File: internal/services/provider/ollama_provider.go
package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/iyunix/chat-gateway/internal/domain"
	"github.com/iyunix/chat-gateway/internal/services/prompt"
)

const ollamaName = "ollama"

type OllamaProvider struct {
	config     *OllamaConfig
	httpClient *http.Client
	logger     Logger
}

func NewOllamaProvider(config *OllamaConfig, logger Logger) *OllamaProvider {
	if config == nil {
		config = DefaultOllamaConfig()
	}
	if config.CatalogTimeout == 0 {
		config.CatalogTimeout = DefaultOllamaConfig().CatalogTimeout
	}
	config.Host = strings.TrimRight(config.Host, "/")
	return &OllamaProvider{
		config:     config,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

func (p *OllamaProvider) Kind() domain.ModelKind { return domain.ModelKindLocal }

// Available always succeeds; reachability shows up as a catalog error.
func (p *OllamaProvider) Available() error { return nil }

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ListCatalog lists installed models by base name, dropping the ":tag"
// suffix and duplicates.
func (p *OllamaProvider) ListCatalog(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.CatalogTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.Host+"/api/tags", nil)
	if err != nil {
		return nil, NewNetworkError(ollamaName, "catalog", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, NewNetworkError(ollamaName, "catalog", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewProviderError(ollamaName, "catalog", "unexpected status "+resp.Status, nil)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, NewProviderError(ollamaName, "catalog", "invalid tags response", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		base := BaseModelName(m.Name)
		if base != "" && !containsName(names, base) {
			names = append(names, base)
		}
	}
	p.logger.Debug("ollama catalog fetched", "count", len(names))
	return names, nil
}

func (p *OllamaProvider) Resolve(ctx context.Context, name string) (bool, error) {
	names, err := p.ListCatalog(ctx)
	if err != nil {
		return false, err
	}
	return containsName(names, BaseModelName(name)), nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// StreamCompletion posts the flattened transcript to /api/generate and relays
// each NDJSON chunk's text.
func (p *OllamaProvider) StreamCompletion(ctx context.Context, model string, in prompt.Input, onDelta func(string) error) error {
	body, err := json.Marshal(generateRequest{Model: model, Prompt: in.Transcript, Stream: true})
	if err != nil {
		return NewProviderError(ollamaName, "streaming", "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.Host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return NewNetworkError(ollamaName, "streaming", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return NewNetworkError(ollamaName, "streaming", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode == http.StatusNotFound {
			return NewModelError(ollamaName, model, strings.TrimSpace(string(msg)))
		}
		return NewProviderError(ollamaName, "streaming",
			fmt.Sprintf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(msg))), nil)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk generateChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return NewProviderError(ollamaName, "streaming", "invalid stream chunk", err)
		}
		if chunk.Error != "" {
			return NewProviderError(ollamaName, "streaming", chunk.Error, nil)
		}
		if chunk.Response != "" && onDelta != nil {
			if cbErr := onDelta(chunk.Response); cbErr != nil {
				return cbErr
			}
		}
		if chunk.Done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return NewNetworkError(ollamaName, "streaming", err)
	}
	return nil
}

// BaseModelName strips an Ollama tag: "llama3.2:latest" becomes "llama3.2".
func BaseModelName(name string) string {
	if i := strings.Index(name, ":"); i >= 0 {
		return name[:i]
	}
	return name
}
