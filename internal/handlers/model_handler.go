package handlers

import (
	"context"
	"net/http"

	"github.com/iyunix/chat-gateway/internal/domain"
	"github.com/iyunix/chat-gateway/internal/dtos"
	"github.com/iyunix/chat-gateway/internal/services"
)

// ModelLister returns the reconciled model table.
type ModelLister interface {
	ListModels(ctx context.Context) ([]domain.ModelDescriptor, error)
}

type ModelHandler struct {
	models ModelLister
	logger services.Logger
}

func NewModelHandler(models ModelLister, logger services.Logger) *ModelHandler {
	return &ModelHandler{models: models, logger: logger}
}

func (h *ModelHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.models.ListModels(r.Context())
	if err != nil {
		h.logger.Error("failed to list models", "error", err)
		writeError(w, "Could not list models", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dtos.ToModelList(models))
}
