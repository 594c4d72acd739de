package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/trackmyhand/internal/api/handler"
	"github.com/mcoot/trackmyhand/internal/api/middleware"
	"github.com/mcoot/trackmyhand/internal/api/stream"
	"github.com/mcoot/trackmyhand/internal/metrics"
	"github.com/mcoot/trackmyhand/internal/services/game"
	"github.com/mcoot/trackmyhand/internal/services/prediction"
	"github.com/mcoot/trackmyhand/internal/services/profile"
	"github.com/mcoot/trackmyhand/internal/services/stats"
	"github.com/mcoot/trackmyhand/internal/services/tracker"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Profiles       *profile.Service
	Aggregator     *stats.Aggregator
	Predictions    *prediction.Service
	GameController *game.Controller
	Trackers       *tracker.Manager
	// Streams carries live game events; a private manager is used when nil
	Streams *stream.Manager
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	streams := cfg.Streams
	if streams == nil {
		streams = stream.NewManager(cfg.Metrics, cfg.Logger)
	}
	gameHandler := handler.NewGameHandler(cfg.GameController, cfg.Trackers, cfg.Predictions, streams, cfg.Logger)
	userHandler := handler.NewUserHandler(cfg.Profiles, cfg.Aggregator)

	// Create middleware
	pinMiddleware := middleware.RequirePIN(cfg.Profiles)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger, cfg.Metrics))

	// Game routes
	api.HandleFunc("/games", gameHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/games", gameHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", gameHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/players", gameHandler.AddPlayer).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/start", gameHandler.Start).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/entries", gameHandler.RecordEntry).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/join", gameHandler.Join).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/end", gameHandler.End).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/cash-out", gameHandler.CashOut).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/archive", gameHandler.Archive).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/predictions", gameHandler.Predictions).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/events", gameHandler.Events).Methods(http.MethodGet)

	// Clock routes
	api.HandleFunc("/games/{id}/clock", gameHandler.Clock).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/clock/start", gameHandler.StartClock).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/clock/pause", gameHandler.PauseClock).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/clock/resume", gameHandler.ResumeClock).Methods(http.MethodPost)

	// User routes
	api.HandleFunc("/users", userHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/users", userHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", userHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/summary", userHandler.Summary).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", userHandler.Leaderboard).Methods(http.MethodGet)

	// Profile changes require the profile's PIN
	protected := api.PathPrefix("/users/{id}").Subrouter()
	protected.Use(pinMiddleware)
	protected.HandleFunc("/favorite", userHandler.ToggleFavorite).Methods(http.MethodPost)
	protected.HandleFunc("/pin", userHandler.SetPIN).Methods(http.MethodPut)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Prometheus scrape endpoint, outside the logged API
	r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
