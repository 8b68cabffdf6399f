package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"auction-platform/internal/domain"

	_ "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
)

type AuctionStore struct {
	db *sql.DB
}

func NewAuctionStore(db *sql.DB) *AuctionStore {
	return &AuctionStore{db: db}
}

const auctionColumns = `id, title, description, seller_id, category_id,
        starting_price, current_price, minimum_increment,
        start_time, end_time, status, bid_count, extension_count,
        created_at, updated_at`

func (s *AuctionStore) CreateAuction(ctx context.Context, auction *domain.Auction) error {
	query := `
        INSERT INTO auctions (` + auctionColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := s.db.ExecContext(ctx, query,
		auction.ID, auction.Title, auction.Description, auction.SellerID, auction.CategoryID,
		auction.StartingPrice, auction.CurrentPrice, auction.MinimumIncrement,
		auction.StartTime, auction.EndTime, int(auction.Status), auction.BidCount,
		auction.ExtensionCount, auction.CreatedAt, auction.UpdatedAt)
	return err
}

func (s *AuctionStore) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = ?`
	return scanAuction(s.db.QueryRowContext(ctx, query, auctionID))
}

// LoadAuctionWithTopBid reads the auction and its winning bid inside one
// transaction, so the write path validates against a consistent pair.
func (s *AuctionStore) LoadAuctionWithTopBid(ctx context.Context, auctionID string) (*domain.Auction, *domain.Bid, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = ?`
	auction, err := scanAuction(tx.QueryRowContext(ctx, query, auctionID))
	if err != nil {
		return nil, nil, err
	}

	bid, err := scanWinningBid(tx.QueryRowContext(ctx, winningBidQuery, auctionID))
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return auction, bid, nil
}

// CommitBid is the composable atomic unit of bid acceptance. The price guard
// on the auction update turns a lost race into ErrPriceConflict with nothing
// applied, so callers can reload and retry.
func (s *AuctionStore) CommitBid(ctx context.Context, bid *domain.Bid, previousWinningID string, expectedPrice decimal.Decimal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        UPDATE auctions
        SET current_price = ?, bid_count = bid_count + 1, updated_at = ?
        WHERE id = ? AND current_price = ?
    `, bid.Amount, time.Now(), bid.AuctionID, expectedPrice)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrPriceConflict
	}

	if previousWinningID != "" {
		if _, err := tx.ExecContext(ctx,
			`UPDATE bids SET is_winning = 0 WHERE id = ?`, previousWinningID); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO bids (id, auction_id, bidder_id, amount, timestamp, is_winning)
        VALUES (?, ?, ?, ?, ?, ?)
    `, bid.ID, bid.AuctionID, bid.BidderID, bid.Amount, bid.Timestamp, bid.IsWinning); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *AuctionStore) UpdateAuctionStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) error {
	query := `UPDATE auctions SET status = ?, updated_at = ? WHERE id = ?`
	_, err := s.db.ExecContext(ctx, query, int(status), time.Now(), auctionID)
	return err
}

func (s *AuctionStore) UpdateAuctionEndTime(ctx context.Context, auctionID string, newEndTime time.Time, extensionCount int) error {
	query := `UPDATE auctions SET end_time = ?, extension_count = ?, updated_at = ? WHERE id = ?`
	_, err := s.db.ExecContext(ctx, query, newEndTime, extensionCount, time.Now(), auctionID)
	return err
}

// GetWinningBid returns nil when no bid has been accepted yet.
func (s *AuctionStore) GetWinningBid(ctx context.Context, auctionID string) (*domain.Bid, error) {
	return scanWinningBid(s.db.QueryRowContext(ctx, winningBidQuery, auctionID))
}

const winningBidQuery = `
        SELECT id, auction_id, bidder_id, amount, timestamp, is_winning
        FROM bids WHERE auction_id = ? AND is_winning = 1
    `

func scanAuction(row *sql.Row) (*domain.Auction, error) {
	var auction domain.Auction
	var status int

	err := row.Scan(
		&auction.ID, &auction.Title, &auction.Description, &auction.SellerID, &auction.CategoryID,
		&auction.StartingPrice, &auction.CurrentPrice, &auction.MinimumIncrement,
		&auction.StartTime, &auction.EndTime, &status, &auction.BidCount,
		&auction.ExtensionCount, &auction.CreatedAt, &auction.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAuctionNotFound
	}
	if err != nil {
		return nil, err
	}

	auction.Status = domain.AuctionStatus(status)
	return &auction, nil
}

func scanWinningBid(row *sql.Row) (*domain.Bid, error) {
	var bid domain.Bid
	err := row.Scan(&bid.ID, &bid.AuctionID, &bid.BidderID, &bid.Amount, &bid.Timestamp, &bid.IsWinning)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bid, nil
}
