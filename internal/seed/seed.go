// Package seed loads the reference rows a fresh database needs.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/iyunix/chat-gateway/internal/domain"
	"github.com/iyunix/chat-gateway/internal/repository/category"
	"github.com/iyunix/chat-gateway/internal/repository/model"
	"github.com/iyunix/chat-gateway/internal/repository/user"
)

//go:embed seed.yaml
var defaultData []byte

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

type Data struct {
	Admin struct {
		Username string `yaml:"username"`
	} `yaml:"admin"`
	Categories []string    `yaml:"categories"`
	Models     []ModelSeed `yaml:"models"`
}

type ModelSeed struct {
	Name      string           `yaml:"name"`
	Kind      domain.ModelKind `yaml:"kind"`
	Available bool             `yaml:"available"`
}

// AdminCredentials come from configuration, never from the embedded file.
type AdminCredentials struct {
	Email    string
	Password string
}

// Result counts the rows a run inserted.
type Result struct {
	AdminCreated bool
	Categories   int
	Models       int
}

// Default returns the embedded seed data.
func Default() (*Data, error) {
	return Parse(defaultData)
}

func Parse(raw []byte) (*Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	for i, m := range data.Models {
		if m.Name == "" {
			return nil, fmt.Errorf("seed model %d has no name", i)
		}
		if m.Kind == "" {
			data.Models[i].Kind = domain.ModelKindLocal
		}
		if data.Models[i].Kind != domain.ModelKindLocal && data.Models[i].Kind != domain.ModelKindCloud {
			return nil, fmt.Errorf("seed model %s has unknown kind %q", m.Name, m.Kind)
		}
	}
	return &data, nil
}

type Seeder struct {
	users      user.UserRepository
	categories category.CategoryRepository
	models     model.ModelRepository
	logger     Logger
}

func NewSeeder(users user.UserRepository, categories category.CategoryRepository, models model.ModelRepository, logger Logger) *Seeder {
	return &Seeder{users: users, categories: categories, models: models, logger: logger}
}

// Run inserts whatever is missing. Existing rows are left untouched, so it
// is safe to run on every start.
func (s *Seeder) Run(ctx context.Context, data *Data, admin AdminCredentials) (*Result, error) {
	result := &Result{}

	for _, name := range data.Categories {
		_, err := s.categories.FindByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, category.ErrCategoryNotFound) {
			return nil, fmt.Errorf("lookup category %s: %w", name, err)
		}
		if _, err := s.categories.Create(ctx, &domain.Category{Name: name}); err != nil {
			return nil, fmt.Errorf("create category %s: %w", name, err)
		}
		result.Categories++
	}

	for _, m := range data.Models {
		_, err := s.models.FindByName(ctx, m.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, model.ErrModelNotFound) {
			return nil, fmt.Errorf("lookup model %s: %w", m.Name, err)
		}
		if _, err := s.models.Create(ctx, &domain.ModelDescriptor{Name: m.Name, Kind: m.Kind, IsAvailable: m.Available}); err != nil {
			return nil, fmt.Errorf("create model %s: %w", m.Name, err)
		}
		result.Models++
	}

	created, err := s.seedAdmin(ctx, data.Admin.Username, admin)
	if err != nil {
		return nil, err
	}
	result.AdminCreated = created

	s.logger.Info("seed complete",
		"categories_created", result.Categories,
		"models_created", result.Models,
		"admin_created", result.AdminCreated)
	return result, nil
}

func (s *Seeder) seedAdmin(ctx context.Context, username string, creds AdminCredentials) (bool, error) {
	if username == "" {
		return false, nil
	}
	if creds.Password == "" {
		s.logger.Warn("SEED_ADMIN_PASSWORD not set, skipping admin user")
		return false, nil
	}

	_, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return false, fmt.Errorf("lookup admin: %w", err)
	}

	admin := &domain.User{Username: username, Email: creds.Email, IsAdmin: true}
	if err := admin.HashPassword(creds.Password); err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	if _, err := s.users.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
