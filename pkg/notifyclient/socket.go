package notifyclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dias221467/EventEase/internal/models"
	"github.com/Dias221467/EventEase/internal/realtime"
	"github.com/gorilla/websocket"
)

// Socket is a push subscription for one recipient.
type Socket struct {
	conn *websocket.Conn
}

// Dial connects to the realtime endpoint and joins the recipient's room.
func Dial(ctx context.Context, wsURL, recipient string) (*Socket, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", wsURL, err)
	}

	join, err := realtime.EncodeFrame(realtime.EventJoin, recipient)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.WriteMessage(websocket.TextMessage, join); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to join room: %w", err)
	}
	return &Socket{conn: conn}, nil
}

// Next blocks until the next push that maps to an Event. Unknown or
// malformed frames are skipped.
func (s *Socket) Next() (Event, error) {
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		frame, err := realtime.DecodeFrame(raw)
		if err != nil {
			continue
		}
		if ev, ok := decodeEvent(frame); ok {
			return ev, nil
		}
	}
}

func (s *Socket) Close() error {
	return s.conn.Close()
}

func decodeEvent(f realtime.Frame) (Event, bool) {
	switch f.Event {
	case realtime.EventNotification:
		var n models.Notification
		if json.Unmarshal(f.Data, &n) != nil {
			return nil, false
		}
		return Created{Notification: n}, true
	case realtime.EventNotificationUpdate:
		var u realtime.NotificationUpdate
		if json.Unmarshal(f.Data, &u) != nil {
			return nil, false
		}
		return Updated{ID: u.ID, IsRead: u.IsRead}, true
	case realtime.EventAllNotificationsRead:
		return AllRead{}, true
	case realtime.EventNotificationDeleted:
		var d realtime.NotificationDeleted
		if json.Unmarshal(f.Data, &d) != nil {
			return nil, false
		}
		return Deleted{ID: d.ID}, true
	}
	return nil, false
}
