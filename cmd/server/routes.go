package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/chat-gateway/internal/handlers"
	"github.com/iyunix/chat-gateway/internal/middleware"
	"github.com/iyunix/chat-gateway/internal/services"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", handlers.ConversationIDHeader+", "+middleware.RequestIDHeader)
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type routeDeps struct {
	auth          *handlers.AuthHandler
	models        *handlers.ModelHandler
	chat          *handlers.ChatHandler
	admin         *handlers.AdminHandler
	authenticator middleware.Authenticator
	logger        services.Logger
}

func newRouter(d routeDeps) http.Handler {
	r := mux.NewRouter()
	authMiddleware := middleware.NewJWTMiddleware(d.authenticator, d.logger)
	adminMiddleware := middleware.RequireAdmin(d.logger)

	r.Use(middleware.RecoverPanic(d.logger))
	r.Use(middleware.LoggingMiddleware(d.logger))
	r.Use(middleware.MetricsMiddleware)

	// --- Public Routes ---
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")
	r.Handle("/metrics", middleware.MetricsHandler()).Methods("GET")
	r.HandleFunc("/auth/register", d.auth.Register).Methods("POST")
	r.HandleFunc("/auth/token", d.auth.Login).Methods("POST")
	r.HandleFunc("/models", d.models.ListModels).Methods("GET")
	r.HandleFunc("/guest/chat", d.chat.GuestChat).Methods("POST")

	// --- Protected Routes ---
	protected := r.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/auth/me", d.auth.Me).Methods("GET")
	protected.HandleFunc("/chat", d.chat.Chat).Methods("POST")
	protected.HandleFunc("/conversations", d.chat.ListConversations).Methods("GET")
	protected.HandleFunc("/conversations/{id:[0-9]+}", d.chat.DeleteConversation).Methods("DELETE")
	protected.HandleFunc("/conversations/{id:[0-9]+}/title", d.chat.UpdateTitle).Methods("PUT")

	// --- Admin Routes ---
	adminRoutes := r.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(authMiddleware)
	adminRoutes.Use(adminMiddleware)
	adminRoutes.HandleFunc("/tables", d.admin.GetTables).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not Found"}`))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte(`{"detail":"Method Not Allowed"}`))
	})

	return corsMiddleware(r)
}
