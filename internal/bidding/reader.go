package bidding

import (
	"context"
	"time"

	"auction-platform/internal/domain"
	"auction-platform/pkg/logger"

	"golang.org/x/sync/singleflight"
)

// Reader serves the cache-aside read path for "current highest bid". A hit
// may be briefly stale; staleness is bounded by the TTL and by write-path
// refreshes. Concurrent misses for the same auction collapse into a single
// store read.
type Reader struct {
	store domain.AuctionStore
	cache domain.HighestBidCache
	ttl   time.Duration
	group singleflight.Group
	log   logger.Logger
}

func NewReader(store domain.AuctionStore, cache domain.HighestBidCache, ttl time.Duration, log logger.Logger) *Reader {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Reader{
		store: store,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

// GetHighestBid returns the current winning bid for the auction, or nil when
// no bid has been accepted yet.
func (r *Reader) GetHighestBid(ctx context.Context, auctionID string) (*domain.Bid, error) {
	cached, err := r.cache.GetHighestBid(ctx, auctionID)
	if err != nil {
		// Cache trouble never fails a read; the store can answer.
		r.log.Warn("Highest-bid cache read failed",
			"auction_id", auctionID, "error", err)
	} else if cached != nil {
		return cached, nil
	}

	v, err, _ := r.group.Do(auctionID, func() (interface{}, error) {
		bid, err := r.store.GetWinningBid(ctx, auctionID)
		if err != nil {
			return nil, err
		}
		if bid != nil {
			if err := r.cache.SetHighestBid(ctx, auctionID, bid, r.ttl); err != nil {
				r.log.Warn("Failed to populate highest-bid cache",
					"auction_id", auctionID, "error", err)
			}
		}
		return bid, nil
	})
	if err != nil {
		return nil, err
	}

	bid, _ := v.(*domain.Bid)
	return bid, nil
}
