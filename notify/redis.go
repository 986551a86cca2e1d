package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "session:"

func Channel(sessionID uint) string {
	return fmt.Sprintf("%s%d", channelPrefix, sessionID)
}

// RedisPublisher sends events over redis pubsub so every instance's Relay can
// forward them to its own websocket listeners.
type RedisPublisher struct {
	client redis.UniversalClient
}

func NewRedisPublisher(client redis.UniversalClient) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, Channel(ev.SessionID), payload).Err()
}

// Relay subscribes to every session channel and republishes into hub until
// ctx is cancelled.
func Relay(ctx context.Context, client redis.UniversalClient, hub *Hub) error {
	pubsub := client.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s*: %w", channelPrefix, err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("notify: drop malformed payload on %s: %v", msg.Channel, err)
				continue
			}
			if ev.SessionID == 0 {
				id, err := strconv.ParseUint(strings.TrimPrefix(msg.Channel, channelPrefix), 10, 64)
				if err != nil {
					continue
				}
				ev.SessionID = uint(id)
			}
			_ = hub.Publish(ctx, ev)
		}
	}
}
