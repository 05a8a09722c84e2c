package api

import (
	"encoding/json"
	"net/http"

	"mikroblog/internal/auth"
	"mikroblog/internal/config"
	"mikroblog/internal/database"
	"mikroblog/internal/websocket"
)

type Server struct {
	config   *config.Config
	store    *database.Store
	resolver *auth.Resolver
	tokens   *auth.TokenManager
	wsHub    *websocket.Hub
}

func NewServer(cfg *config.Config, store *database.Store, wsHub *websocket.Hub) *Server {
	tokens := auth.NewTokenManager(store, cfg.Auth.TokenTTL, cfg.Auth.TokenReuseBuffer)
	return &Server{
		config:   cfg,
		store:    store,
		resolver: auth.NewResolver(store, tokens, cfg.Auth.Strategies),
		tokens:   tokens,
		wsHub:    wsHub,
	}
}

// @Summary      Health check
// @Description  Reports whether the service and its database are reachable.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {string}  string "Service Unavailable"
// @Router       /health [get]
func (s *Server) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.store.GetPool().Ping(r.Context()); err != nil {
		http.Error(w, "database unreachable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
