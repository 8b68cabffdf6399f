package redis

import (
	"context"
	"encoding/json"

	"auction-platform/internal/domain"
	"auction-platform/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// topicPatterns covers every topic family the platform publishes.
var topicPatterns = []string{
	"bid-placed:*",
	"auction-updated:*",
	"auction-extended:*",
	"auction-ended:*",
	"bid-error:*",
}

type EventSubscriber struct {
	client *redis.Client
	log    logger.Logger
}

func NewEventSubscriber(client *redis.Client, log logger.Logger) *EventSubscriber {
	return &EventSubscriber{
		client: client,
		log:    log,
	}
}

// Subscribe blocks, delivering every published event to handler until ctx is
// cancelled. A handler error is logged and the loop keeps going; one bad
// payload must not stall the fan-out.
func (s *EventSubscriber) Subscribe(ctx context.Context, handler domain.EventHandler) error {
	pubsub := s.client.PSubscribe(ctx, topicPatterns...)
	defer pubsub.Close()

	ch := pubsub.Channel()

	s.log.Info("Subscribed to auction events", "patterns", topicPatterns)

	for {
		select {
		case msg := <-ch:
			var event domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				s.log.Error("Failed to parse event", "channel", msg.Channel, "error", err)
				continue
			}

			if err := handler(&event); err != nil {
				s.log.Error("Failed to handle event", "type", event.Type,
					"auction_id", event.AuctionID, "error", err)
			}

		case <-ctx.Done():
			s.log.Info("Event subscriber stopped")
			return ctx.Err()
		}
	}
}
