// File: internal/handlers/admin_handler.go
package handlers

import (
	"net/http"

	"github.com/iyunix/chat-gateway/internal/services"
	"github.com/iyunix/chat-gateway/internal/services/admin_services"
)

type AdminHandler struct {
	adminService *admin_services.AdminService
	logger       services.Logger
}

func NewAdminHandler(adminService *admin_services.AdminService, logger services.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

// GetTables returns a snapshot of every table.
func (h *AdminHandler) GetTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.adminService.GetTables(r.Context())
	if err != nil {
		h.logger.Error("failed to load admin tables", "error", err)
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}
