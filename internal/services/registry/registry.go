// Package registry reconciles the stored model table with what the
// configured providers currently serve, and resolves requested models to the
// provider that can run them.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/iyunix/chat-gateway/internal/domain"
	"github.com/iyunix/chat-gateway/internal/repository/model"
	"github.com/iyunix/chat-gateway/internal/services/provider"
)

var ErrModelNotFound = errors.New("model not found")

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// ModelHandle is a resolved model plus the provider that serves it. ID is
// zero for a model found only in a live catalog.
type ModelHandle struct {
	ID       uint
	Name     string
	Kind     domain.ModelKind
	Provider provider.Provider
}

type Registry struct {
	models    model.ModelRepository
	providers []provider.Provider
	logger    Logger
}

// NewRegistry polls providers in the given order.
func NewRegistry(models model.ModelRepository, logger Logger, providers ...provider.Provider) *Registry {
	return &Registry{models: models, providers: providers, logger: logger}
}

// Provider returns the provider for a kind, or nil.
func (r *Registry) Provider(kind domain.ModelKind) provider.Provider {
	for _, p := range r.providers {
		if p.Kind() == kind {
			return p
		}
	}
	return nil
}

// ListModels refreshes availability of stored models from each provider's
// live catalog and records newly seen names. A provider whose catalog cannot
// be read has its stored models marked unavailable; only store failures fail
// the call.
func (r *Registry) ListModels(ctx context.Context) ([]domain.ModelDescriptor, error) {
	stored, err := r.models.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load models: %w", err)
	}

	known := make(map[string]bool, len(stored))
	for _, m := range stored {
		known[m.Name] = true
	}

	for _, p := range r.providers {
		names, catalogErr := p.ListCatalog(ctx)
		if catalogErr != nil {
			level := r.logger.Warn
			if errors.Is(catalogErr, provider.ErrProviderUnavailable) {
				level = r.logger.Debug
			}
			level("provider catalog unavailable", "provider", string(p.Kind()), "error", catalogErr)
		}

		live := make(map[string]bool, len(names))
		for _, n := range names {
			live[n] = true
		}

		for i := range stored {
			if stored[i].Kind != p.Kind() {
				continue
			}
			available := catalogErr == nil && live[stored[i].Name]
			if stored[i].IsAvailable == available {
				continue
			}
			if err := r.models.SetAvailability(ctx, stored[i].ID, available); err != nil {
				return nil, err
			}
			stored[i].IsAvailable = available
		}

		if catalogErr != nil {
			continue
		}
		for _, n := range names {
			if known[n] {
				continue
			}
			created, err := r.models.Create(ctx, &domain.ModelDescriptor{Name: n, Kind: p.Kind(), IsAvailable: true})
			if err != nil {
				return nil, err
			}
			known[n] = true
			stored = append(stored, *created)
			r.logger.Info("registered new model", "name", n, "provider", string(p.Kind()))
		}
	}
	return stored, nil
}

// Resolve looks a stored model up by ID.
func (r *Registry) Resolve(ctx context.Context, id uint) (*ModelHandle, error) {
	m, err := r.models.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrModelNotFound) {
			return nil, ErrModelNotFound
		}
		return nil, err
	}
	return r.handle(m)
}

// ResolveName looks a stored model up by name.
func (r *Registry) ResolveName(ctx context.Context, name string) (*ModelHandle, error) {
	m, err := r.models.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, model.ErrModelNotFound) {
			return nil, ErrModelNotFound
		}
		return nil, err
	}
	return r.handle(m)
}

// ResolveLive tries the stored table first, then each provider's live
// catalog in order.
func (r *Registry) ResolveLive(ctx context.Context, name string) (*ModelHandle, error) {
	h, err := r.ResolveName(ctx, name)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, ErrModelNotFound) {
		return nil, err
	}

	for _, p := range r.providers {
		ok, perr := p.Resolve(ctx, name)
		if perr != nil {
			r.logger.Debug("live catalog lookup failed", "provider", string(p.Kind()), "error", perr)
			continue
		}
		if ok {
			return &ModelHandle{Name: name, Kind: p.Kind(), Provider: p}, nil
		}
	}
	return nil, ErrModelNotFound
}

func (r *Registry) handle(m *domain.ModelDescriptor) (*ModelHandle, error) {
	p := r.Provider(m.Kind)
	if p == nil {
		return nil, fmt.Errorf("no provider configured for model type %q", m.Kind)
	}
	return &ModelHandle{ID: m.ID, Name: m.Name, Kind: m.Kind, Provider: p}, nil
}
