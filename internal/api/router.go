package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gamedb-go/internal/api/handler"
	"github.com/mcoot/gamedb-go/internal/api/middleware"
	"github.com/mcoot/gamedb-go/internal/services/account"
	"github.com/mcoot/gamedb-go/internal/services/sweep"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger   *slog.Logger
	Accounts *account.Service
	Sweeps   *sweep.Service
	Stores   handler.StoreProvider
	// AdminToken guards the admin routes when set
	AdminToken string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	accountHandler := handler.NewAccountHandler(cfg.Accounts)
	sweepHandler := handler.NewSweepHandler(cfg.Sweeps)
	healthHandler := handler.NewHealthHandler(cfg.Stores)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Session routes used by the game server
	api.HandleFunc("/accounts/login", accountHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/accounts/register", accountHandler.Register).Methods(http.MethodPost)

	// Admin routes
	admin := api.NewRoute().Subrouter()
	admin.Use(middleware.AdminAuth(cfg.AdminToken))
	admin.HandleFunc("/accounts/count", accountHandler.Count).Methods(http.MethodGet)
	admin.HandleFunc("/accounts/{username}/exists", accountHandler.Exists).Methods(http.MethodGet)
	admin.HandleFunc("/accounts/{username}/rank", accountHandler.SetRank).Methods(http.MethodPut)
	admin.HandleFunc("/accounts/{username}/position", accountHandler.SavePosition).Methods(http.MethodPut)
	admin.HandleFunc("/sweeps/positions", sweepHandler.Positions).Methods(http.MethodPost)
	admin.HandleFunc("/sweeps/containers", sweepHandler.Containers).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler.Check).Methods(http.MethodGet)

	return r
}
