package bidding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-platform/internal/domain"
	"auction-platform/pkg/logger"
	"auction-platform/pkg/utils"

	"github.com/shopspring/decimal"
)

type Options struct {
	CacheTTL           time.Duration
	ExtensionThreshold time.Duration
	ExtensionWindow    time.Duration
	MaxExtensions      int
	LockWait           time.Duration
	CommitRetries      int
}

func (o Options) withDefaults() Options {
	if o.CacheTTL <= 0 {
		o.CacheTTL = time.Hour
	}
	if o.ExtensionThreshold <= 0 {
		o.ExtensionThreshold = 5 * time.Minute
	}
	if o.ExtensionWindow <= 0 {
		o.ExtensionWindow = 5 * time.Minute
	}
	if o.LockWait <= 0 {
		o.LockWait = 2 * time.Second
	}
	if o.CommitRetries <= 0 {
		o.CommitRetries = 3
	}
	return o
}

// PlaceBidRequest is the validated boundary type the engine accepts. The
// transport layer resolves the bidder identity before the core ever runs.
type PlaceBidRequest struct {
	AuctionID string
	BidderID  string
	Amount    decimal.Decimal
}

// Engine validates and commits bids against the authoritative store,
// refreshes the highest-bid cache, publishes domain events and applies the
// anti-sniping extension rule. All collaborators are injected.
type Engine struct {
	store     domain.AuctionStore
	cache     domain.HighestBidCache
	events    domain.EventPublisher
	scheduler domain.EndRescheduler
	locks     *auctionLocks
	opts      Options
	log       logger.Logger
	now       func() time.Time
}

func NewEngine(
	store domain.AuctionStore,
	cache domain.HighestBidCache,
	events domain.EventPublisher,
	scheduler domain.EndRescheduler,
	opts Options,
	log logger.Logger,
) *Engine {
	return &Engine{
		store:     store,
		cache:     cache,
		events:    events,
		scheduler: scheduler,
		locks:     newAuctionLocks(),
		opts:      opts.withDefaults(),
		log:       log,
		now:       time.Now,
	}
}

// PlaceBid runs the load -> gate -> validate -> commit sequence as an atomic
// unit with respect to other PlaceBid calls on the same auction. Calls on
// different auctions do not block each other. The commit carries a price
// guard at the store, so a conflicting write from elsewhere triggers a
// bounded reload-and-retry before surfacing a concurrency error.
func (e *Engine) PlaceBid(ctx context.Context, req PlaceBidRequest) (*domain.BidResult, error) {
	e.log.Info("Placing bid",
		"auction_id", req.AuctionID, "bidder_id", req.BidderID, "amount", req.Amount)

	if err := e.locks.acquire(ctx, req.AuctionID, e.opts.LockWait); err != nil {
		var bidErr *domain.BidError
		if errors.As(err, &bidErr) {
			return nil, e.reject(ctx, req, bidErr)
		}
		return nil, err
	}
	defer e.locks.release(req.AuctionID)

	for attempt := 0; attempt < e.opts.CommitRetries; attempt++ {
		result, err := e.tryPlaceBid(ctx, req)
		if errors.Is(err, domain.ErrPriceConflict) {
			e.log.Warn("Bid commit conflicted, reloading",
				"auction_id", req.AuctionID, "attempt", attempt+1)
			continue
		}
		if err != nil {
			var bidErr *domain.BidError
			if errors.As(err, &bidErr) {
				return nil, e.reject(ctx, req, bidErr)
			}
			// Infrastructure failure: nothing was applied. The bidder still
			// gets a rejection event; the raw error propagates to the caller.
			e.publish(ctx, domain.TopicBidError(req.BidderID), &domain.Event{
				Type:      domain.EventBidRejected,
				AuctionID: req.AuctionID,
				BidderID:  req.BidderID,
				Amount:    req.Amount,
				Reason:    "Failed to place bid",
				Timestamp: e.now(),
			})
			return nil, err
		}
		return result, nil
	}

	return nil, e.reject(ctx, req, domain.ErrConcurrentUpdate)
}

func (e *Engine) tryPlaceBid(ctx context.Context, req PlaceBidRequest) (*domain.BidResult, error) {
	// The authoritative store is the only read the write path trusts; the
	// cache can be stale relative to concurrent commits.
	auction, topBid, err := e.store.LoadAuctionWithTopBid(ctx, req.AuctionID)
	if errors.Is(err, domain.ErrAuctionNotFound) {
		return nil, domain.ErrBidAuctionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load auction %s: %w", req.AuctionID, err)
	}

	now := e.now()
	if err := CheckBiddable(auction, now); err != nil {
		return nil, err
	}

	// The increment is enforced over the starting price even on the first bid.
	currentWinning := auction.StartingPrice
	if topBid != nil {
		currentWinning = decimal.Max(currentWinning, topBid.Amount)
	}
	minimumAcceptable := currentWinning.Add(auction.MinimumIncrement)

	if req.Amount.LessThan(minimumAcceptable) {
		return nil, domain.NewBidTooLowError(minimumAcceptable)
	}

	if topBid != nil && topBid.BidderID == req.BidderID {
		return nil, domain.ErrSelfOutbid
	}

	if req.BidderID == auction.SellerID {
		return nil, domain.ErrSellerCannotBid
	}

	bid := &domain.Bid{
		ID:        utils.GenerateID("bid"),
		AuctionID: req.AuctionID,
		BidderID:  req.BidderID,
		Amount:    req.Amount,
		Timestamp: now,
		IsWinning: true,
	}

	previousWinningID := ""
	if topBid != nil {
		previousWinningID = topBid.ID
	}

	if err := e.store.CommitBid(ctx, bid, previousWinningID, auction.CurrentPrice); err != nil {
		if errors.Is(err, domain.ErrPriceConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("commit bid on auction %s: %w", req.AuctionID, err)
	}

	// Past this point the bid is authoritative. Cache and fan-out failures
	// are logged, never rolled back.
	if err := e.cache.SetHighestBid(ctx, req.AuctionID, bid, e.opts.CacheTTL); err != nil {
		e.log.Error("Failed to refresh highest-bid cache",
			"auction_id", req.AuctionID, "error", err)
	}

	newCount := auction.BidCount + 1
	e.publish(ctx, domain.TopicBidPlaced(req.AuctionID), &domain.Event{
		Type:      domain.EventBidPlaced,
		AuctionID: req.AuctionID,
		Bid:       bid,
		NewPrice:  bid.Amount,
		BidCount:  newCount,
		Timestamp: now,
	})
	e.publish(ctx, domain.TopicAuctionUpdated(req.AuctionID), &domain.Event{
		Type:        domain.EventAuctionUpdated,
		AuctionID:   req.AuctionID,
		NewPrice:    bid.Amount,
		BidCount:    newCount,
		LastBidTime: bid.Timestamp,
		Timestamp:   now,
	})

	extended, newEndTime := e.maybeExtend(ctx, auction, bid)

	return &domain.BidResult{
		Bid:             bid,
		PreviousWinning: topBid,
		NewPrice:        bid.Amount,
		Extended:        extended,
		NewEndTime:      newEndTime,
	}, nil
}

// maybeExtend applies the anti-sniping rule after a successful commit: a bid
// landing within the threshold of the deadline pushes the deadline out by the
// extension window. Extensions chain across late bids up to MaxExtensions
// per auction. Best-effort relative to the commit: a failure here leaves the
// bid in place.
func (e *Engine) maybeExtend(ctx context.Context, auction *domain.Auction, bid *domain.Bid) (bool, time.Time) {
	if auction.EndTime.Sub(bid.Timestamp) > e.opts.ExtensionThreshold {
		return false, auction.EndTime
	}

	if e.opts.MaxExtensions > 0 && auction.ExtensionCount >= e.opts.MaxExtensions {
		e.log.Warn("Extension cap reached",
			"auction_id", auction.ID, "extension_count", auction.ExtensionCount)
		return false, auction.EndTime
	}

	newEndTime := auction.EndTime.Add(e.opts.ExtensionWindow)
	if err := e.store.UpdateAuctionEndTime(ctx, auction.ID, newEndTime, auction.ExtensionCount+1); err != nil {
		e.log.Error("Failed to extend auction",
			"auction_id", auction.ID, "error", err)
		return false, auction.EndTime
	}

	if e.scheduler != nil {
		if err := e.scheduler.RescheduleAuctionEnd(ctx, auction.ID, newEndTime); err != nil {
			e.log.Error("Failed to reschedule auction end",
				"auction_id", auction.ID, "error", err)
		}
	}

	e.publish(ctx, domain.TopicAuctionExtended(auction.ID), &domain.Event{
		Type:       domain.EventAuctionExtended,
		AuctionID:  auction.ID,
		NewEndTime: newEndTime,
		Timestamp:  bid.Timestamp,
	})

	e.log.Info("Auction extended",
		"auction_id", auction.ID, "new_end_time", newEndTime)
	return true, newEndTime
}

// reject broadcasts the failure to the submitting bidder only, so a realtime
// client can tell "your bid failed" apart from "someone else is winning",
// then hands the typed error back.
func (e *Engine) reject(ctx context.Context, req PlaceBidRequest, bidErr *domain.BidError) error {
	e.publish(ctx, domain.TopicBidError(req.BidderID), &domain.Event{
		Type:      domain.EventBidRejected,
		AuctionID: req.AuctionID,
		BidderID:  req.BidderID,
		Amount:    req.Amount,
		Reason:    bidErr.Reason,
		Timestamp: e.now(),
	})
	return bidErr
}

func (e *Engine) publish(ctx context.Context, topic string, event *domain.Event) {
	if err := e.events.Publish(ctx, topic, event); err != nil {
		e.log.Error("Failed to publish event",
			"topic", topic, "type", event.Type, "error", err)
	}
}
