package realtime

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event names carried in Frame.Event.
const (
	EventJoin                 = "join"
	EventNotification         = "notification"
	EventNotificationUpdate   = "notificationUpdate"
	EventAllNotificationsRead = "allNotificationsRead"
	EventNotificationDeleted  = "notificationDeleted"
)

// Frame is the JSON envelope of every websocket message in either direction.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type NotificationUpdate struct {
	ID         string    `json:"id"`
	IsRead     bool      `json:"isRead"`
	UpdateTime time.Time `json:"updateTime"`
}

type AllNotificationsRead struct {
	Timestamp time.Time `json:"timestamp"`
}

type NotificationDeleted struct {
	ID        string    `json:"id"`
	DeletedAt time.Time `json:"deletedAt"`
}

// EncodeFrame marshals an event and its payload into a wire frame.
func EncodeFrame(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", event, err)
	}
	return json.Marshal(Frame{Event: event, Data: data})
}

// DecodeFrame parses a wire frame.
func DecodeFrame(raw []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return Frame{}, fmt.Errorf("failed to decode frame: %w", err)
	}
	if f.Event == "" {
		return Frame{}, fmt.Errorf("frame has no event name")
	}
	return f, nil
}
