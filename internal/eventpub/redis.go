// Package eventpub publishes wallet domain events to Redis pub/sub.
package eventpub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/walletcore/wallet-engine/internal/domain"
)

// Publisher emits domain events on a single Redis channel.
type Publisher struct {
	client  *redis.Client
	channel string
}

// New returns a Publisher bound to the given channel.
func New(client *redis.Client, channel string) *Publisher {
	return &Publisher{
		client:  client,
		channel: channel,
	}
}

// Emit marshals the event and publishes it. Delivery is fire and forget;
// subscribers that are not listening at publish time miss the event.
func (p *Publisher) Emit(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}

	return nil
}
