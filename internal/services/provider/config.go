// File: internal/services/provider/config.go
package provider

import (
	"fmt"
	"strings"
	"time"
)

// DefaultCloudModels is served as the cloud catalog when the live listing
// fails.
var DefaultCloudModels = []string{"llama3-70b-8192", "llama3-8b-8192", "gemma-7b-it"}

type OllamaConfig struct {
	Host string
	// CatalogTimeout bounds the /api/tags call. Completions are bounded only
	// by the caller's context.
	CatalogTimeout time.Duration
}

func (c *OllamaConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("OLLAMA_HOST is required")
	}
	if !strings.HasPrefix(c.Host, "http://") && !strings.HasPrefix(c.Host, "https://") {
		return fmt.Errorf("OLLAMA_HOST must start with http:// or https://")
	}
	return nil
}

func DefaultOllamaConfig() *OllamaConfig {
	return &OllamaConfig{
		Host:           "http://127.0.0.1:11434",
		CatalogTimeout: 10 * time.Second,
	}
}

type GroqConfig struct {
	APIKey  string
	BaseURL string
	// CatalogTTL caches a successful live catalog. Zero disables caching.
	CatalogTTL time.Duration
}

func DefaultGroqConfig() *GroqConfig {
	return &GroqConfig{
		BaseURL:    "https://api.groq.com/openai/v1",
		CatalogTTL: 30 * time.Second,
	}
}
