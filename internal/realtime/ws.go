package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Dias221467/EventEase/pkg/logger"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// NewUpgrader builds an upgrader that accepts the given origins, or any
// origin when the list is empty or contains "*".
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return allowAll || origin == "" || allowed[origin]
		},
	}
}

// ServeWS upgrades the request and serves the connection until it closes.
// The connection is in no room until it sends a join frame.
func ServeWS(hub RoomRegistry, upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		logger.Log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := hub.Register()
	logger.Log.WithField("connID", client.ID).Info("WebSocket connected")

	go writePump(conn, client)
	readPump(hub, conn, client)
}

func readPump(hub RoomRegistry, conn *websocket.Conn, client *Client) {
	defer func() {
		hub.OnDisconnect(client.ID)
		conn.Close()
		logger.Log.WithField("connID", client.ID).Info("WebSocket disconnected")
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.WithError(err).WithField("connID", client.ID).Warn("WebSocket read error")
			}
			return
		}

		frame, err := DecodeFrame(raw)
		if err != nil {
			logger.Log.WithError(err).WithField("connID", client.ID).Debug("Ignoring malformed frame")
			continue
		}

		switch frame.Event {
		case EventJoin:
			var room string
			if err := json.Unmarshal(frame.Data, &room); err != nil {
				logger.Log.WithError(err).WithField("connID", client.ID).Debug("Ignoring join with non-string room")
				continue
			}
			if err := hub.Join(client.ID, room); err != nil {
				logger.Log.WithError(err).WithFields(logrus.Fields{"connID": client.ID, "room": room}).Debug("Join rejected")
			}
		default:
			logger.Log.WithFields(logrus.Fields{"connID": client.ID, "event": frame.Event}).Debug("Ignoring unknown client event")
		}
	}
}

func writePump(conn *websocket.Conn, client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame, ok := <-client.Send():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
