package websocket

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"royalchat/pkg/logger"
)

// EnableRedisBridge relays published frames through a shared Redis channel
// so rooms span every process subscribed to it. Each process delivers an
// incoming frame only to its own local connections, which keeps delivery
// at-most-once per socket.
func (m *Manager) EnableRedisBridge(ctx context.Context, rdb *redis.Client) {
	m.rdb = rdb
	m.bridgeCtx = ctx

	go func() {
		pubsub := rdb.Subscribe(ctx, bridgeChannel)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var envelope bridgeEnvelope
				if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
					logger.Error("Failed to decode bridge envelope: %v", err)
					continue
				}

				m.deliverLocal(envelope.Room, envelope.Frame)

			case <-ctx.Done():
				return
			}
		}
	}()

	logger.Info("Redis room bridge enabled on channel %s", bridgeChannel)
}
