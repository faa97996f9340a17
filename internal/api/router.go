package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/Jirawatp058/random-buddy/internal/api/handler"
	"github.com/Jirawatp058/random-buddy/internal/api/middleware"
	"github.com/Jirawatp058/random-buddy/internal/api/response"
	"github.com/Jirawatp058/random-buddy/internal/services/auth"
	"github.com/Jirawatp058/random-buddy/internal/services/exchange"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	AuthService        *auth.Service
	ExchangeController *exchange.Controller
	// AllowedOrigins enables CORS for the listed origins. Empty disables CORS.
	AllowedOrigins []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	// Participant names may contain reserved characters; keep them encoded for matching
	r := mux.NewRouter().UseEncodedPath()

	// Create handlers
	exchangeHandler := handler.NewExchangeHandler(cfg.ExchangeController)
	adminHandler := handler.NewAdminHandler(cfg.AuthService, cfg.ExchangeController)

	// Create middleware
	adminAuthMiddleware := middleware.AdminAuth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Participant routes (no auth; reveal checks the participant's own password)
	api.HandleFunc("/exchange", exchangeHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/participants", exchangeHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/reveal", exchangeHandler.Reveal).Methods(http.MethodPost)

	// Admin login exchanges the shared password for a session token
	api.HandleFunc("/admin/login", adminHandler.Login).Methods(http.MethodPost)

	// Protected admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(adminAuthMiddleware)
	admin.HandleFunc("/logout", adminHandler.Logout).Methods(http.MethodPost)
	admin.HandleFunc("/participants", adminHandler.ListParticipants).Methods(http.MethodGet)
	admin.HandleFunc("/participants/{name}", adminHandler.RemoveParticipant).Methods(http.MethodDelete)
	admin.HandleFunc("/exclusions", adminHandler.ListExclusions).Methods(http.MethodGet)
	admin.HandleFunc("/exclusions", adminHandler.AddExclusion).Methods(http.MethodPost)
	admin.HandleFunc("/exclusions/remove", adminHandler.RemoveExclusion).Methods(http.MethodPost)
	admin.HandleFunc("/feasibility", adminHandler.Feasibility).Methods(http.MethodGet)
	admin.HandleFunc("/match", adminHandler.Match).Methods(http.MethodPost)
	admin.HandleFunc("/reset", adminHandler.Reset).Methods(http.MethodPost)

	if len(cfg.AllowedOrigins) == 0 {
		return r
	}
	return cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"X-Request-ID"},
	}).Handler(r)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
