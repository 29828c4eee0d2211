package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tileduel/tileduel/internal/api/handler"
	"github.com/tileduel/tileduel/internal/api/middleware"
	"github.com/tileduel/tileduel/internal/services/auth"
	"github.com/tileduel/tileduel/internal/services/leaderboard"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	AuthService        *auth.Service
	LeaderboardService *leaderboard.Service
	WSHandler          http.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.LeaderboardService)

	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// Websocket endpoint sits outside the API prefix; it handles its own
	// auth handshake in-band
	if cfg.WSHandler != nil {
		r.Handle("/ws", cfg.WSHandler)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Player routes (no auth required for creating players/logging in)
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)

	// Protected player routes
	playerProtected := api.PathPrefix("/players").Subrouter()
	playerProtected.Use(authMiddleware)
	playerProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)
	playerProtected.HandleFunc("/me/best", leaderboardHandler.GetMyBest).Methods(http.MethodGet)

	// Result routes
	results := api.PathPrefix("/results").Subrouter()
	results.Use(authMiddleware)
	results.HandleFunc("", leaderboardHandler.SubmitResult).Methods(http.MethodPost)

	// Leaderboard is public
	api.HandleFunc("/leaderboard", leaderboardHandler.GetLeaderboard).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
