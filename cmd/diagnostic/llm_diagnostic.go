// File: cmd/diagnostic/llm_diagnostic.go
//
// Checks that the configured model backends answer: lists the Ollama and
// Groq catalogs and optionally sends one short prompt through each.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/iyunix/chat-gateway/internal/config"
	"github.com/iyunix/chat-gateway/internal/services"
	"github.com/iyunix/chat-gateway/internal/services/prompt"
	"github.com/iyunix/chat-gateway/internal/services/provider"
)

func main() {
	var (
		localModel string
		cloudModel string
		question   string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:          "llm-diagnostic",
		Short:        "Probe the Ollama and Groq backends",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			logger := services.NewLogrusLogger(services.NewBaseLogger(cfg.Environment, cfg.LogLevel, cfg.LogFormat), "diagnostic")
			failed := false

			ollamaCfg := provider.DefaultOllamaConfig()
			ollamaCfg.Host = cfg.OllamaHost
			ollama := provider.NewOllamaProvider(ollamaCfg, logger)
			if err := probe(ctx, ollama, localModel, question); err != nil {
				fmt.Printf("❌ ollama: %v\n", err)
				failed = true
			}

			if cfg.GroqAPIKey == "" {
				fmt.Println("⚠️  groq: GROQ_API_KEY not set, skipping")
			} else {
				if err := checkGroqKey(ctx, cfg); err != nil {
					fmt.Printf("❌ groq: %v\n", err)
					failed = true
				}
				groqCfg := provider.DefaultGroqConfig()
				groqCfg.APIKey = cfg.GroqAPIKey
				groqCfg.BaseURL = cfg.GroqBaseURL
				groqCfg.CatalogTTL = 0
				if err := probe(ctx, provider.NewGroqProvider(groqCfg, logger), cloudModel, question); err != nil {
					fmt.Printf("❌ groq: %v\n", err)
					failed = true
				}
			}

			if failed {
				return fmt.Errorf("one or more backends failed")
			}
			fmt.Println("✅ all configured backends answered")
			return nil
		},
	}

	cmd.Flags().StringVar(&localModel, "local-model", "", "Ollama model to prompt (catalog only when empty)")
	cmd.Flags().StringVar(&cloudModel, "cloud-model", "", "Groq model to prompt (catalog only when empty)")
	cmd.Flags().StringVar(&question, "question", "Reply with the single word: pong", "prompt sent to each model")
	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "overall deadline")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func probe(ctx context.Context, p provider.Provider, model, question string) error {
	catalog, err := p.ListCatalog(ctx)
	if err != nil {
		return fmt.Errorf("list catalog: %w", err)
	}
	fmt.Printf("✅ %s catalog (%d): %s\n", p.Kind(), len(catalog), strings.Join(catalog, ", "))

	if model == "" {
		return nil
	}

	var reply strings.Builder
	start := time.Now()
	input := prompt.NewAssemblerFromMap(nil).Build("", nil, question)
	err = p.StreamCompletion(ctx, model, input, func(delta string) error {
		reply.WriteString(delta)
		return nil
	})
	if err != nil {
		return fmt.Errorf("stream %s: %w", model, err)
	}
	fmt.Printf("✅ %s/%s answered in %s: %q\n", p.Kind(), model, time.Since(start).Round(time.Millisecond), reply.String())
	return nil
}

// checkGroqKey calls the models endpoint directly so an auth failure is
// reported as such instead of being hidden by the static fallback list.
func checkGroqKey(ctx context.Context, cfg *config.Config) error {
	clientCfg := openai.DefaultConfig(cfg.GroqAPIKey)
	clientCfg.BaseURL = cfg.GroqBaseURL
	client := openai.NewClientWithConfig(clientCfg)

	list, err := client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	fmt.Printf("✅ groq key accepted, %d models visible\n", len(list.Models))
	return nil
}
