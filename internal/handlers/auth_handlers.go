// File: internal/handlers/auth_handlers.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/iyunix/chat-gateway/internal/dtos"
	"github.com/iyunix/chat-gateway/internal/middleware"
	"github.com/iyunix/chat-gateway/internal/services"
	"github.com/iyunix/chat-gateway/internal/services/user_services"
)

// AuthHandler holds the dependencies for authentication handlers.
type AuthHandler struct {
	authService *user_services.AuthService
	logger      services.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *user_services.AuthService, logger services.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// Register creates an account from a JSON body.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, "username, email and password are required", http.StatusUnprocessableEntity)
		return
	}

	user, err := h.authService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user_services.ErrUserExists) {
			writeError(w, "Username or email already registered", http.StatusBadRequest)
			return
		}
		h.logger.Error("registration failed", "error", err)
		writeError(w, "Could not register user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, dtos.ToUserResponse(user))
}

// Login exchanges form-encoded credentials for a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	_, token, err := h.authService.Login(r.Context(), strings.TrimSpace(r.PostFormValue("username")), r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, user_services.ErrInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, "Incorrect username or password", http.StatusUnauthorized)
			return
		}
		h.logger.Error("login failed", "error", err)
		writeError(w, "Could not log in", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, dtos.TokenResponseDTO{AccessToken: token, TokenType: "bearer"})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, "Could not validate credentials", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, dtos.ToUserResponse(user))
}
