// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort        string
	Environment       string
	SecretKey         string
	AccessTokenTTL    time.Duration
	DBDriver          string
	DatabaseURL       string
	OllamaHost        string
	GroqAPIKey        string
	GroqBaseURL       string
	CloudCatalogTTL   time.Duration
	PromptsDir        string
	LogLevel          string
	LogFormat         string
	SeedAdminPassword string
	SeedAdminEmail    string
}

// Load reads configuration from environment variables or .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	env := v.GetString("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	setDefaults(v)

	cfg := &Config{
		ServerPort:        v.GetString("SERVER_PORT"),
		Environment:       env,
		SecretKey:         v.GetString("SECRET_KEY"),
		AccessTokenTTL:    time.Duration(v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES")) * time.Minute,
		DBDriver:          strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		OllamaHost:        strings.TrimRight(v.GetString("OLLAMA_HOST"), "/"),
		GroqAPIKey:        v.GetString("GROQ_API_KEY"),
		GroqBaseURL:       v.GetString("GROQ_BASE_URL"),
		CloudCatalogTTL:   v.GetDuration("CLOUD_CATALOG_TTL"),
		PromptsDir:        v.GetString("PROMPTS_DIR"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
		SeedAdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),
		SeedAdminEmail:    v.GetString("SEED_ADMIN_EMAIL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8000")
	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "chat.db")
	v.SetDefault("OLLAMA_HOST", "http://127.0.0.1:11434")
	v.SetDefault("GROQ_API_KEY", "")
	v.SetDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1")
	v.SetDefault("CLOUD_CATALOG_TTL", "30s")
	v.SetDefault("PROMPTS_DIR", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "")
	v.SetDefault("SEED_ADMIN_PASSWORD", "")
	v.SetDefault("SEED_ADMIN_EMAIL", "admin@localhost")
}

// IsProduction reports whether ENV is set to production.
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Environment) == "production"
}

// Validate checks settings that must hold before the server starts. A
// missing GROQ_API_KEY is deliberately not an error: the cloud provider just
// reports itself unavailable.
func (c *Config) Validate() error {
	if c.DBDriver != "sqlite" && c.DBDriver != "postgres" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.IsProduction() {
		missing := []string{}
		if c.SecretKey == "" {
			missing = append(missing, "SECRET_KEY")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required production environment variables: %v", missing)
		}
	}
	if c.SecretKey == "" {
		log.Println("Warning: SECRET_KEY not set; using an insecure development key")
		c.SecretKey = "dev-secret-key-change-me"
	}
	return nil
}
