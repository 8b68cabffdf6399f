package services

import (
	"context"
	"fmt"

	"auction-platform/internal/domain"
	"auction-platform/pkg/logger"
)

// EventListener bridges the pub/sub fan-out into WebSocket delivery:
// auction-scoped events go to the auction room, rejections go to the
// submitting bidder alone.
type EventListener struct {
	connManager domain.ConnectionManager
	log         logger.Logger
}

func NewEventListener(connManager domain.ConnectionManager, log logger.Logger) *EventListener {
	return &EventListener{
		connManager: connManager,
		log:         log,
	}
}

func (el *EventListener) Start(ctx context.Context, subscriber domain.EventSubscriber) error {
	el.log.Info("Starting event listener")
	return subscriber.Subscribe(ctx, el.handleEvent)
}

func (el *EventListener) handleEvent(event *domain.Event) error {
	el.log.Debug("Handling event", "type", event.Type, "auction_id", event.AuctionID)

	switch event.Type {
	case domain.EventBidPlaced, domain.EventAuctionUpdated, domain.EventAuctionExtended:
		return el.connManager.BroadcastToAuction(event.AuctionID, event)

	case domain.EventBidRejected:
		return el.connManager.NotifyUser(event.BidderID, event)

	case domain.EventAuctionEnded:
		if err := el.connManager.BroadcastToAuction(event.AuctionID, event); err != nil {
			el.log.Error("Failed to broadcast auction end", "auction_id", event.AuctionID, "error", err)
		}
		return el.connManager.CloseAndUnregisterConnections(event.AuctionID)
	}

	return fmt.Errorf("unknown event type %q", event.Type)
}
