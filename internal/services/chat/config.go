// File: internal/services/chat/config.go
package chat

import (
	"fmt"
	"time"
)

type Config struct {
	// AssistantSaveTimeout bounds the write of the assistant reply, which runs
	// on a fresh context after the request's stream has finished.
	AssistantSaveTimeout time.Duration
	// GuestCategoryID is used when a guest request names no category.
	GuestCategoryID uint
}

func (c *Config) Validate() error {
	if c.AssistantSaveTimeout <= 0 {
		return fmt.Errorf("assistant_save_timeout must be positive")
	}
	if c.GuestCategoryID == 0 {
		return fmt.Errorf("guest_category_id is required")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		AssistantSaveTimeout: 5 * time.Second,
		GuestCategoryID:      1,
	}
}
