package bidding

import (
	"context"
	"sync"
	"time"

	"auction-platform/internal/domain"

	"github.com/shopspring/decimal"
)

// fakeStore is an in-memory AuctionStore with a real conditional commit, so
// the race and retry tests exercise the same guard the MySQL store applies.
type fakeStore struct {
	mu            sync.Mutex
	auctions      map[string]*domain.Auction
	bids          map[string][]*domain.Bid // acceptance order
	conflictsLeft int                      // forced ErrPriceConflict responses
	commitErr     error
	winningReads  int
}

func newFakeStore(auctions ...*domain.Auction) *fakeStore {
	s := &fakeStore{
		auctions: make(map[string]*domain.Auction),
		bids:     make(map[string][]*domain.Bid),
	}
	for _, a := range auctions {
		copied := *a
		s.auctions[a.ID] = &copied
	}
	return s
}

func (s *fakeStore) CreateAuction(ctx context.Context, auction *domain.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *auction
	s.auctions[auction.ID] = &copied
	return nil
}

func (s *fakeStore) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	auction, ok := s.auctions[auctionID]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	copied := *auction
	return &copied, nil
}

func (s *fakeStore) LoadAuctionWithTopBid(ctx context.Context, auctionID string) (*domain.Auction, *domain.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	auction, ok := s.auctions[auctionID]
	if !ok {
		return nil, nil, domain.ErrAuctionNotFound
	}
	copied := *auction
	return &copied, s.winningLocked(auctionID), nil
}

func (s *fakeStore) CommitBid(ctx context.Context, bid *domain.Bid, previousWinningID string, expectedPrice decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conflictsLeft > 0 {
		s.conflictsLeft--
		return domain.ErrPriceConflict
	}
	if s.commitErr != nil {
		return s.commitErr
	}

	auction, ok := s.auctions[bid.AuctionID]
	if !ok {
		return domain.ErrAuctionNotFound
	}
	if !auction.CurrentPrice.Equal(expectedPrice) {
		return domain.ErrPriceConflict
	}

	if previousWinningID != "" {
		for _, existing := range s.bids[bid.AuctionID] {
			if existing.ID == previousWinningID {
				existing.IsWinning = false
			}
		}
	}

	copied := *bid
	s.bids[bid.AuctionID] = append(s.bids[bid.AuctionID], &copied)
	auction.CurrentPrice = bid.Amount
	auction.BidCount++
	return nil
}

func (s *fakeStore) UpdateAuctionStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if auction, ok := s.auctions[auctionID]; ok {
		auction.Status = status
	}
	return nil
}

func (s *fakeStore) UpdateAuctionEndTime(ctx context.Context, auctionID string, newEndTime time.Time, extensionCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	auction, ok := s.auctions[auctionID]
	if !ok {
		return domain.ErrAuctionNotFound
	}
	auction.EndTime = newEndTime
	auction.ExtensionCount = extensionCount
	return nil
}

func (s *fakeStore) GetWinningBid(ctx context.Context, auctionID string) (*domain.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.winningReads++
	return s.winningLocked(auctionID), nil
}

func (s *fakeStore) winningLocked(auctionID string) *domain.Bid {
	for _, bid := range s.bids[auctionID] {
		if bid.IsWinning {
			copied := *bid
			return &copied
		}
	}
	return nil
}

func (s *fakeStore) auction(id string) domain.Auction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.auctions[id]
}

func (s *fakeStore) acceptedBids(auctionID string) []domain.Bid {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Bid, 0, len(s.bids[auctionID]))
	for _, bid := range s.bids[auctionID] {
		out = append(out, *bid)
	}
	return out
}

// fakeCache is a TTL-less in-memory HighestBidCache; tests simulate expiry
// by dropping entries.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*domain.Bid
	sets    int
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*domain.Bid)}
}

func (c *fakeCache) GetHighestBid(ctx context.Context, auctionID string) (*domain.Bid, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	bid, ok := c.entries[auctionID]
	if !ok {
		return nil, nil
	}
	copied := *bid
	return &copied, nil
}

func (c *fakeCache) SetHighestBid(ctx context.Context, auctionID string, bid *domain.Bid, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *bid
	c.entries[auctionID] = &copied
	c.sets++
	return nil
}

func (c *fakeCache) drop(auctionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, auctionID)
}

type publishedEvent struct {
	Topic string
	Event domain.Event
}

// fakePublisher captures published events in order.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) Publish(ctx context.Context, topic string, event *domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Event: *event})
	return nil
}

func (p *fakePublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

func (p *fakePublisher) byType(t domain.EventType) []publishedEvent {
	var out []publishedEvent
	for _, pe := range p.published() {
		if pe.Event.Type == t {
			out = append(out, pe)
		}
	}
	return out
}

type fakeRescheduler struct {
	mu    sync.Mutex
	calls []time.Time
}

func (r *fakeRescheduler) RescheduleAuctionEnd(ctx context.Context, auctionID string, newEndTime time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, newEndTime)
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Fatal(string, ...interface{}) {}
