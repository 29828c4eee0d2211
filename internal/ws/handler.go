// Package ws is the websocket transport for the realtime match engine.
// One connection per client multiplexes the whole protocol catalogue.
package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/tileduel/tileduel/internal/services/auth"
	"github.com/tileduel/tileduel/internal/services/match"
)

// Handler upgrades HTTP requests and hands each connection to a client loop
type Handler struct {
	auth        *auth.Service
	coordinator *match.Coordinator
	upgrader    websocket.Upgrader
	logger      *slog.Logger
}

// NewHandler creates a websocket Handler
func NewHandler(authService *auth.Service, coordinator *match.Coordinator, logger *slog.Logger) *Handler {
	return &Handler{
		auth:        authService,
		coordinator: coordinator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// The bearer token is the actual trust boundary
				return true
			},
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP handles GET /ws
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := newClient(conn, h)
	go client.writePump()
	go client.readLoop()
}
