package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"auction-platform/internal/domain"

	"github.com/go-redis/redis/v8"
)

// HighestBidCache keeps a JSON projection of the current winning bid per
// auction with a bounded TTL. Entries are overwritten on every commit and
// repopulated on read miss; they are never authoritative.
type HighestBidCache struct {
	client *redis.Client
}

func NewHighestBidCache(client *redis.Client) *HighestBidCache {
	return &HighestBidCache{client: client}
}

func cacheKey(auctionID string) string {
	return fmt.Sprintf("auction:%s:highest_bid", auctionID)
}

// GetHighestBid returns nil on cache miss.
func (c *HighestBidCache) GetHighestBid(ctx context.Context, auctionID string) (*domain.Bid, error) {
	data, err := c.client.Get(ctx, cacheKey(auctionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var bid domain.Bid
	if err := json.Unmarshal([]byte(data), &bid); err != nil {
		return nil, err
	}
	return &bid, nil
}

func (c *HighestBidCache) SetHighestBid(ctx context.Context, auctionID string, bid *domain.Bid, ttl time.Duration) error {
	data, err := json.Marshal(bid)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(auctionID), data, ttl).Err()
}
