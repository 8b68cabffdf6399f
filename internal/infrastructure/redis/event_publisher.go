package redis

import (
	"context"
	"encoding/json"

	"auction-platform/internal/domain"

	"github.com/go-redis/redis/v8"
)

// EventPublisher fans domain events out over Redis pub/sub. Delivery is
// at-most-once per connected subscriber; missed events are gone.
type EventPublisher struct {
	client *redis.Client
}

func NewEventPublisher(client *redis.Client) *EventPublisher {
	return &EventPublisher{client: client}
}

func (p *EventPublisher) Publish(ctx context.Context, topic string, event *domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, topic, data).Err()
}
