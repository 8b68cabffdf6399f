package mysql

import (
	"context"
	"database/sql"

	"auction-platform/internal/domain"
)

type BidStore struct {
	db *sql.DB
}

func NewBidStore(db *sql.DB) *BidStore {
	return &BidStore{db: db}
}

// GetBidHistory returns the most recent bids for an auction, newest first.
func (s *BidStore) GetBidHistory(ctx context.Context, auctionID string, limit int) ([]*domain.Bid, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
        SELECT id, auction_id, bidder_id, amount, timestamp, is_winning
        FROM bids
        WHERE auction_id = ?
        ORDER BY timestamp DESC
        LIMIT ?
    `

	rows, err := s.db.QueryContext(ctx, query, auctionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		var bid domain.Bid
		err := rows.Scan(&bid.ID, &bid.AuctionID, &bid.BidderID,
			&bid.Amount, &bid.Timestamp, &bid.IsWinning)
		if err != nil {
			return nil, err
		}
		bids = append(bids, &bid)
	}

	return bids, rows.Err()
}
