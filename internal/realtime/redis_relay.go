package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dias221467/EventEase/pkg/logger"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type relayMessage struct {
	Node  string          `json:"node"`
	Room  string          `json:"room"`
	Frame json.RawMessage `json:"frame"`
}

// RedisRelay fans frames out between server replicas over a Redis pub/sub
// channel. Each node skips messages it published itself.
type RedisRelay struct {
	client  *redis.Client
	channel string
	nodeID  string
	hub     *Hub
}

func NewRedisRelay(client *redis.Client, channel string, hub *Hub) *RedisRelay {
	return &RedisRelay{
		client:  client,
		channel: channel,
		nodeID:  uuid.NewString(),
		hub:     hub,
	}
}

func (r *RedisRelay) NodeID() string {
	return r.nodeID
}

func (r *RedisRelay) Forward(ctx context.Context, room string, frame []byte) error {
	msg, err := json.Marshal(relayMessage{Node: r.nodeID, Room: room, Frame: frame})
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, msg).Err()
}

// Start subscribes to the relay channel and returns once the subscription is
// confirmed. Incoming frames are delivered to local rooms until ctx ends.
func (r *RedisRelay) Start(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}

	go r.consume(ctx, sub)
	return nil
}

func (r *RedisRelay) consume(ctx context.Context, sub *redis.PubSub) {
	defer sub.Close()
	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			var msg relayMessage
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				logger.Log.WithError(err).Warn("Dropping malformed relay message")
				continue
			}
			if msg.Node == r.nodeID {
				continue
			}
			n := r.hub.deliver(msg.Room, msg.Frame)
			logger.Log.WithFields(logrus.Fields{"room": msg.Room, "from": msg.Node, "delivered": n}).Debug("Relayed frame")
		}
	}
}
