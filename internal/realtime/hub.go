package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Dias221467/EventEase/internal/metrics"
	"github.com/Dias221467/EventEase/pkg/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownConnection = errors.New("unknown connection")
	ErrEmptyRoom         = errors.New("room name is empty")
)

// Publisher pushes an event to every connection in a room. Publishing to a
// room nobody joined is a no-op, not an error.
type Publisher interface {
	Publish(ctx context.Context, room, event string, payload interface{}) error
}

// RoomRegistry tracks which live connection listens to which room.
type RoomRegistry interface {
	Publisher
	Register() *Client
	Join(connID, room string) error
	OnDisconnect(connID string)
}

// Relay forwards frames published on this node to other nodes.
type Relay interface {
	Forward(ctx context.Context, room string, frame []byte) error
}

var _ RoomRegistry = (*Hub)(nil)

const defaultSendBuffer = 64

// Client is one registered connection. Its queue is drained by exactly one
// writer, which keeps delivery in publish order per connection.
type Client struct {
	ID   string
	room string
	send chan []byte
}

// Send is the outbound queue; it is closed when the connection is removed.
func (c *Client) Send() <-chan []byte {
	return c.send
}

// Hub is the process-wide room registry.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*Client
	rooms      map[string]map[string]*Client
	relay      Relay
	sendBuffer int
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		sendBuffer: defaultSendBuffer,
	}
}

// SetRelay enables cross-node delivery. Call before serving connections.
func (h *Hub) SetRelay(r Relay) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.relay = r
}

// Register adds a connection that is not in any room yet.
func (h *Hub) Register() *Client {
	c := &Client{
		ID:   uuid.NewString(),
		send: make(chan []byte, h.sendBuffer),
	}

	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()

	metrics.RealtimeConnections.Inc()
	return c
}

// Join places a connection in a room. A second join moves it.
func (h *Hub) Join(connID, room string) error {
	if room == "" {
		return ErrEmptyRoom
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return ErrUnknownConnection
	}
	if c.room != "" {
		h.leaveLocked(c)
	}

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[room] = members
	}
	members[c.ID] = c
	c.room = room

	logger.Log.WithFields(logrus.Fields{"connID": connID, "room": room}).Debug("Connection joined room")
	return nil
}

// OnDisconnect drops the connection and its room membership.
func (h *Hub) OnDisconnect(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return
	}
	h.leaveLocked(c)
	delete(h.clients, connID)
	close(c.send)

	metrics.RealtimeConnections.Dec()
}

func (h *Hub) leaveLocked(c *Client) {
	if members, ok := h.rooms[c.room]; ok {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(h.rooms, c.room)
		}
	}
	c.room = ""
}

// Publish encodes the event once and queues it for every local member of the
// room, then hands it to the relay when one is configured.
func (h *Hub) Publish(ctx context.Context, room, event string, payload interface{}) error {
	frame, err := EncodeFrame(event, payload)
	if err != nil {
		return err
	}

	h.deliver(room, frame)
	metrics.RealtimeEventsPublished.WithLabelValues(event).Inc()

	h.mu.RLock()
	relay := h.relay
	h.mu.RUnlock()
	if relay != nil {
		if err := relay.Forward(ctx, room, frame); err != nil {
			return fmt.Errorf("failed to relay %s to room %s: %w", event, room, err)
		}
	}
	return nil
}

// deliver queues a frame for local room members and reports how many got it.
func (h *Hub) deliver(room string, frame []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, c := range h.rooms[room] {
		select {
		case c.send <- frame:
			delivered++
		default:
			metrics.RealtimeFramesDropped.Inc()
			logger.Log.WithFields(logrus.Fields{"connID": c.ID, "room": room}).Warn("Outbound queue full, dropping frame")
		}
	}
	return delivered
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
