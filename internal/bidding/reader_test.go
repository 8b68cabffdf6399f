package bidding

import (
	"context"
	"errors"
	"testing"
	"time"

	"auction-platform/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func seedWinningBid(t *testing.T, store *fakeStore) *domain.Bid {
	t.Helper()
	bid := &domain.Bid{
		ID:        "bid-1",
		AuctionID: "auction-1",
		BidderID:  "bidder-1",
		Amount:    decimal.NewFromInt(110),
		Timestamp: testNow,
		IsWinning: true,
	}
	require.NoError(t, store.CommitBid(context.Background(), bid, "", decimal.NewFromInt(100)))
	return bid
}

func TestReader_CacheHitSkipsStore(t *testing.T) {
	store := newFakeStore(activeAuction())
	bid := seedWinningBid(t, store)
	cache := newFakeCache()
	require.NoError(t, cache.SetHighestBid(context.Background(), "auction-1", bid, time.Hour))

	reader := NewReader(store, cache, time.Hour, nopLogger{})

	got, err := reader.GetHighestBid(context.Background(), "auction-1")
	require.NoError(t, err)
	require.Equal(t, bid.ID, got.ID)
	require.Zero(t, store.winningReads)
}

func TestReader_MissReadsStoreAndPopulates(t *testing.T) {
	store := newFakeStore(activeAuction())
	bid := seedWinningBid(t, store)
	cache := newFakeCache()
	reader := NewReader(store, cache, time.Hour, nopLogger{})

	got, err := reader.GetHighestBid(context.Background(), "auction-1")
	require.NoError(t, err)
	require.Equal(t, bid.ID, got.ID)
	require.Equal(t, 1, store.winningReads)
	require.Equal(t, 1, cache.sets)

	// Subsequent reads inside the TTL come from the cache.
	for i := 0; i < 5; i++ {
		got, err = reader.GetHighestBid(context.Background(), "auction-1")
		require.NoError(t, err)
		require.Equal(t, bid.ID, got.ID)
	}
	require.Equal(t, 1, store.winningReads)
	require.Equal(t, 1, cache.sets)
}

func TestReader_ExpiryTriggersRepopulate(t *testing.T) {
	store := newFakeStore(activeAuction())
	bid := seedWinningBid(t, store)
	cache := newFakeCache()
	reader := NewReader(store, cache, time.Hour, nopLogger{})

	_, err := reader.GetHighestBid(context.Background(), "auction-1")
	require.NoError(t, err)

	cache.drop("auction-1")

	got, err := reader.GetHighestBid(context.Background(), "auction-1")
	require.NoError(t, err)
	require.Equal(t, bid.ID, got.ID)
	require.Equal(t, 2, store.winningReads)
	require.Equal(t, 2, cache.sets)
}

func TestReader_NoBidsYet(t *testing.T) {
	store := newFakeStore(activeAuction())
	cache := newFakeCache()
	reader := NewReader(store, cache, time.Hour, nopLogger{})

	got, err := reader.GetHighestBid(context.Background(), "auction-1")
	require.NoError(t, err)
	require.Nil(t, got)
	// A nil result is not cached; the next read asks the store again.
	require.Zero(t, cache.sets)

	_, err = reader.GetHighestBid(context.Background(), "auction-1")
	require.NoError(t, err)
	require.Equal(t, 2, store.winningReads)
}

func TestReader_CacheFailureFallsThroughToStore(t *testing.T) {
	store := newFakeStore(activeAuction())
	bid := seedWinningBid(t, store)
	cache := newFakeCache()
	cache.getErr = errors.New("connection refused")
	reader := NewReader(store, cache, time.Hour, nopLogger{})

	got, err := reader.GetHighestBid(context.Background(), "auction-1")
	require.NoError(t, err)
	require.Equal(t, bid.ID, got.ID)
	require.Equal(t, 1, store.winningReads)
}
