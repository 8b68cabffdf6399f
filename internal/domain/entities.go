package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Auction struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	SellerID         string          `json:"seller_id"`
	CategoryID       string          `json:"category_id"`
	StartingPrice    decimal.Decimal `json:"starting_price"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	MinimumIncrement decimal.Decimal `json:"minimum_increment"`
	StartTime        time.Time       `json:"start_time"`
	EndTime          time.Time       `json:"end_time"`
	Status           AuctionStatus   `json:"status"`
	BidCount         int             `json:"bid_count"`
	ExtensionCount   int             `json:"extension_count"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type AuctionStatus int

const (
	AuctionDraft AuctionStatus = iota
	AuctionScheduled
	AuctionActive
	AuctionEnded
	AuctionCancelled
)

func (s AuctionStatus) String() string {
	switch s {
	case AuctionDraft:
		return "draft"
	case AuctionScheduled:
		return "scheduled"
	case AuctionActive:
		return "active"
	case AuctionEnded:
		return "ended"
	case AuctionCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Bid is append-only: once accepted, only the IsWinning flag ever changes,
// and at most one bid per auction carries it at a time.
type Bid struct {
	ID        string          `json:"id"`
	AuctionID string          `json:"auction_id"`
	BidderID  string          `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
	IsWinning bool            `json:"is_winning"`
}

// BidResult is the success payload of a PlaceBid call. PreviousWinning is
// carried so the outbid bidder's client can be told directly.
type BidResult struct {
	Bid             *Bid            `json:"bid"`
	PreviousWinning *Bid            `json:"previous_winning,omitempty"`
	NewPrice        decimal.Decimal `json:"new_price"`
	Extended        bool            `json:"extended"`
	NewEndTime      time.Time       `json:"new_end_time"`
}

type EventType string

const (
	EventBidPlaced       EventType = "bid_placed"
	EventAuctionUpdated  EventType = "auction_updated"
	EventBidRejected     EventType = "bid_rejected"
	EventAuctionExtended EventType = "auction_extended"
	EventAuctionEnded    EventType = "auction_ended"
)

// Event is the transient payload fanned out to subscribers. Events are never
// persisted; a subscriber that is offline at publish time misses them.
type Event struct {
	Type        EventType       `json:"type"`
	AuctionID   string          `json:"auction_id"`
	BidderID    string          `json:"bidder_id,omitempty"`
	Bid         *Bid            `json:"bid,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	NewPrice    decimal.Decimal `json:"new_price"`
	BidCount    int             `json:"bid_count,omitempty"`
	LastBidTime time.Time       `json:"last_bid_time,omitzero"`
	NewEndTime  time.Time       `json:"new_end_time,omitzero"`
	Reason      string          `json:"reason,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}

// Topic helpers. Auction-scoped topics feed room broadcasts; the bid-error
// topic is scoped to a single bidder.
func TopicBidPlaced(auctionID string) string       { return "bid-placed:" + auctionID }
func TopicAuctionUpdated(auctionID string) string  { return "auction-updated:" + auctionID }
func TopicAuctionExtended(auctionID string) string { return "auction-extended:" + auctionID }
func TopicAuctionEnded(auctionID string) string    { return "auction-ended:" + auctionID }
func TopicBidError(bidderID string) string         { return "bid-error:" + bidderID }

type ScheduledJob struct {
	ID        string
	AuctionID string
	JobType   JobType
	RunAt     time.Time
	Status    JobStatus
	CreatedAt time.Time
}

type JobType string

const (
	JobStartAuction JobType = "start_auction"
	JobEndAuction   JobType = "end_auction"
)

type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobExecuted  JobStatus = "executed"
	JobCancelled JobStatus = "cancelled"
)
