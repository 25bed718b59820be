package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/conquest-go/internal/api/handler"
	apimiddleware "github.com/mcoot/conquest-go/internal/api/middleware"
	"github.com/mcoot/conquest-go/internal/api/stream"
	"github.com/mcoot/conquest-go/internal/middleware"
	"github.com/mcoot/conquest-go/internal/services/auth"
	"github.com/mcoot/conquest-go/internal/services/game"
	"github.com/mcoot/conquest-go/internal/services/registry"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	AuthService     *auth.Service
	RegistryService *registry.Service
	GameController  game.ControllerInterface
	Hubs            *stream.HubManager
	// RateLimiter is optional; nil disables limiting
	RateLimiter *apimiddleware.RateLimiter
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	programHandler := handler.NewProgramHandler(cfg.RegistryService)
	gameHandler := handler.NewGameHandler(cfg.GameController, cfg.Hubs)

	authMiddleware := apimiddleware.Auth(cfg.AuthService)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Logging(cfg.Logger))
	api.Use(apimiddleware.Recovery(cfg.Logger))
	if cfg.RateLimiter != nil {
		api.Use(cfg.RateLimiter.Middleware)
	}

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Program routes (no auth)
	api.HandleFunc("/program/initialize", programHandler.Initialize).Methods(http.MethodPost)
	api.HandleFunc("/program", programHandler.Get).Methods(http.MethodGet)

	// Player routes (no auth required for creating players/logging in)
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)

	// Protected player routes
	playerProtected := api.PathPrefix("/players").Subrouter()
	playerProtected.Use(authMiddleware)
	playerProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)
	playerProtected.HandleFunc("/logout", playerHandler.Logout).Methods(http.MethodPost)

	// Profile routes
	profile := api.PathPrefix("/profile").Subrouter()
	profile.Use(authMiddleware)
	profile.HandleFunc("", programHandler.CreateProfile).Methods(http.MethodPost)
	profile.HandleFunc("", programHandler.GetProfile).Methods(http.MethodGet)

	// Game routes (all require auth)
	games := api.PathPrefix("/games").Subrouter()
	games.Use(authMiddleware)
	games.HandleFunc("", gameHandler.Create).Methods(http.MethodPost)
	games.HandleFunc("/{id:[0-9]+}", gameHandler.Get).Methods(http.MethodGet)
	games.HandleFunc("/{id:[0-9]+}/join", gameHandler.Join).Methods(http.MethodPost)
	games.HandleFunc("/{id:[0-9]+}/move", gameHandler.Move).Methods(http.MethodPost)
	games.HandleFunc("/{id:[0-9]+}/recruit", gameHandler.Recruit).Methods(http.MethodPost)
	games.HandleFunc("/{id:[0-9]+}/build", gameHandler.Build).Methods(http.MethodPost)
	games.HandleFunc("/{id:[0-9]+}/end-turn", gameHandler.EndTurn).Methods(http.MethodPost)
	games.HandleFunc("/{id:[0-9]+}/events", gameHandler.Events).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
