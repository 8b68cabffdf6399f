package bidding

import (
	"context"
	"sync"
	"time"

	"auction-platform/internal/domain"
)

// auctionLocks is the per-auction serialization point. Each auction id maps
// to a one-slot channel acting as a mutex that can be waited on with a
// deadline. Locks for different auctions never contend.
type auctionLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	ch   chan struct{}
	refs int
}

func newAuctionLocks() *auctionLocks {
	return &auctionLocks{
		locks: make(map[string]*lockEntry),
	}
}

// acquire takes the lock for auctionID, waiting at most wait. It fails with
// domain.ErrBusy on timeout and with the context error if ctx is cancelled
// first. Every successful acquire must be paired with a release.
func (al *auctionLocks) acquire(ctx context.Context, auctionID string, wait time.Duration) error {
	al.mu.Lock()
	entry, ok := al.locks[auctionID]
	if !ok {
		entry = &lockEntry{ch: make(chan struct{}, 1)}
		al.locks[auctionID] = entry
	}
	entry.refs++
	al.mu.Unlock()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case entry.ch <- struct{}{}:
		return nil
	case <-timer.C:
		al.unref(auctionID)
		return domain.ErrBusy
	case <-ctx.Done():
		al.unref(auctionID)
		return ctx.Err()
	}
}

func (al *auctionLocks) release(auctionID string) {
	al.mu.Lock()
	entry := al.locks[auctionID]
	al.mu.Unlock()

	<-entry.ch
	al.unref(auctionID)
}

// unref drops one waiter/holder reference and frees the entry once nobody is
// interested, so idle auctions do not accumulate lock state.
func (al *auctionLocks) unref(auctionID string) {
	al.mu.Lock()
	defer al.mu.Unlock()

	entry, ok := al.locks[auctionID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs == 0 {
		delete(al.locks, auctionID)
	}
}
