package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Jirawatp058/random-buddy/internal/services/auth"
	"github.com/Jirawatp058/random-buddy/internal/services/exchange"
	"github.com/Jirawatp058/random-buddy/internal/web/handler"
	"github.com/Jirawatp058/random-buddy/internal/web/middleware"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger             *slog.Logger
	AuthService        *auth.Service
	ExchangeController *exchange.Controller
	StaticDir          string // Path to static files directory
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	homeHandler := handler.NewHomeHandler(cfg.ExchangeController, cfg.Logger)
	adminHandler := handler.NewAdminHandler(cfg.AuthService, cfg.ExchangeController, cfg.Logger)

	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(staticHandler)
	}

	// Participant pages
	public := r.NewRoute().Subrouter()
	public.Use(middleware.Flash())
	public.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)
	public.HandleFunc("/register", homeHandler.Register).Methods(http.MethodPost)
	public.HandleFunc("/check", homeHandler.Check).Methods(http.MethodPost)
	public.HandleFunc("/admin", adminHandler.LoginPage).Methods(http.MethodGet)
	public.HandleFunc("/admin/login", adminHandler.Login).Methods(http.MethodPost)
	public.HandleFunc("/admin/logout", adminHandler.Logout).Methods(http.MethodPost)

	// Admin pages (require an admin session cookie)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.Flash())
	admin.Use(middleware.AdminAuth(cfg.AuthService))
	admin.HandleFunc("/dashboard", adminHandler.Dashboard).Methods(http.MethodGet)
	admin.HandleFunc("/exclusions", adminHandler.AddExclusion).Methods(http.MethodPost)
	admin.HandleFunc("/exclusions/remove", adminHandler.RemoveExclusion).Methods(http.MethodPost)
	admin.HandleFunc("/participants/remove", adminHandler.RemoveParticipant).Methods(http.MethodPost)
	admin.HandleFunc("/match", adminHandler.Match).Methods(http.MethodPost)
	admin.HandleFunc("/reset", adminHandler.Reset).Methods(http.MethodPost)

	return r
}
