package handlers

import (
	"net/http"

	"github.com/Dias221467/EventEase/internal/realtime"
	"github.com/gorilla/websocket"
)

type RealtimeHandler struct {
	Hub      *realtime.Hub
	upgrader *websocket.Upgrader
}

func NewRealtimeHandler(hub *realtime.Hub, allowedOrigins []string) *RealtimeHandler {
	return &RealtimeHandler{Hub: hub, upgrader: realtime.NewUpgrader(allowedOrigins)}
}

// GET /ws
func (h *RealtimeHandler) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	realtime.ServeWS(h.Hub, h.upgrader, w, r)
}

// GET /health
func (h *RealtimeHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"connections": h.Hub.ConnectionCount(),
	})
}
