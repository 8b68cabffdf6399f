package bidding

import (
	"time"

	"auction-platform/internal/domain"
)

// CheckBiddable decides whether a bid attempt against the given auction
// snapshot may proceed, independent of the bid amount. Callers must re-run
// it against freshly loaded state right before committing; a decision made
// against a stale snapshot is not trusted for the write.
func CheckBiddable(auction *domain.Auction, now time.Time) error {
	if auction == nil {
		return domain.ErrBidAuctionNotFound
	}

	if auction.Status != domain.AuctionActive {
		return domain.ErrAuctionNotActive
	}

	if now.Before(auction.StartTime) || now.After(auction.EndTime) {
		return domain.ErrWindowClosed
	}

	return nil
}
