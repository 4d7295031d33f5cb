package handlers

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/otalvarodev/liga-live/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the deployed frontend origins before exposing
		// this publicly.
		return true
	},
}

type WebSocketHandler struct {
	hub    *realtime.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeWs upgrades the connection and starts the client pumps. Topic
// subscription happens over the socket itself, not the URL, so one
// connection can follow several matches and categories.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	origin := r.RemoteAddr
	if host, _, splitErr := net.SplitHostPort(r.RemoteAddr); splitErr == nil {
		origin = host
	}

	client := realtime.NewClient(h.hub, conn, origin, h.logger)
	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("websocket client connected",
		slog.String("client", client.ID.String()), slog.String("origin", origin))
}
