package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository interfaces
type AuctionStore interface {
	CreateAuction(ctx context.Context, auction *Auction) error
	GetAuction(ctx context.Context, auctionID string) (*Auction, error)
	// LoadAuctionWithTopBid returns the auction and its current winning bid
	// (nil if no bid has been accepted yet) as one consistent read. This is
	// the only read the write path trusts; the cache is never consulted.
	LoadAuctionWithTopBid(ctx context.Context, auctionID string) (*Auction, *Bid, error)
	// CommitBid applies the whole accept-bid unit atomically: insert the new
	// winning bid, flip the previous winning bid's flag, bump the auction
	// price and bid count. expectedPrice guards against a concurrent commit
	// between load and write; ErrPriceConflict is returned when it no longer
	// matches.
	CommitBid(ctx context.Context, bid *Bid, previousWinningID string, expectedPrice decimal.Decimal) error
	UpdateAuctionStatus(ctx context.Context, auctionID string, status AuctionStatus) error
	UpdateAuctionEndTime(ctx context.Context, auctionID string, newEndTime time.Time, extensionCount int) error
	GetWinningBid(ctx context.Context, auctionID string) (*Bid, error)
}

type BidStore interface {
	GetBidHistory(ctx context.Context, auctionID string, limit int) ([]*Bid, error)
}

type SchedulerStore interface {
	CreateJob(ctx context.Context, job *ScheduledJob) error
	GetPendingJobs(ctx context.Context, before time.Time) ([]*ScheduledJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus) error
	CancelJobsForAuction(ctx context.Context, auctionID string) error
}

// HighestBidCache is the read accelerator for the current winning bid. It is
// disposable and always re-derivable from the store.
type HighestBidCache interface {
	GetHighestBid(ctx context.Context, auctionID string) (*Bid, error)
	SetHighestBid(ctx context.Context, auctionID string, bid *Bid, ttl time.Duration) error
}

// EventPublisher fans a named event out to every current subscriber of a
// topic, at most once per subscriber, no persistence. Injected into the
// engine at construction; never a process-wide singleton.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *Event) error
}

type EventSubscriber interface {
	Subscribe(ctx context.Context, handler EventHandler) error
}

type EventHandler func(event *Event) error

// Leader election interface
type LeaderElection interface {
	BecomeLeader(ctx context.Context, instanceID string) (bool, error)
	IsLeader(ctx context.Context, instanceID string) (bool, error)
	ReleaseLeadership(ctx context.Context, instanceID string) error
}

// Scheduler interface
type AuctionScheduler interface {
	ScheduleAuctionStart(ctx context.Context, auctionID string, startTime time.Time) error
	ScheduleAuctionEnd(ctx context.Context, auctionID string, endTime time.Time) error
	RescheduleAuctionEnd(ctx context.Context, auctionID string, newEndTime time.Time) error
	CancelSchedule(ctx context.Context, auctionID string) error
	Start(ctx context.Context) error
	Stop() error
}

// EndRescheduler is the slice of AuctionScheduler the bidding engine needs
// when an anti-sniping extension moves an auction's deadline.
type EndRescheduler interface {
	RescheduleAuctionEnd(ctx context.Context, auctionID string, newEndTime time.Time) error
}

// WebSocket interfaces
type WebSocketConnection interface {
	Send(message interface{}) error
	Close() error
	UserID() string
	AuctionID() string
}

type ConnectionManager interface {
	RegisterConnection(userID, auctionID string, conn WebSocketConnection) error
	UnregisterConnection(userID, auctionID string) error
	BroadcastToAuction(auctionID string, message interface{}) error
	NotifyUser(userID string, message interface{}) error
	CloseAndUnregisterConnections(auctionID string) error
}
