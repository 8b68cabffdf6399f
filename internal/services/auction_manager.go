package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-platform/internal/domain"
	"auction-platform/pkg/logger"
	"auction-platform/pkg/utils"

	"github.com/shopspring/decimal"
)

// Sentinels for lifecycle jobs that must not be consumed yet. The scheduler
// leaves the job pending so it fires again on a later tick.
var (
	ErrNotLeader     = errors.New("not the lifecycle leader")
	ErrAuctionNotDue = errors.New("auction deadline not reached")
)

// AuctionManager owns the auction lifecycle state machine. Bidding never
// moves an auction between states; transitions happen here, and the
// scheduled ones (start at startTime, end at endTime) fire only on the
// leader instance.
type AuctionManager struct {
	store          domain.AuctionStore
	events         domain.EventPublisher
	scheduler      domain.AuctionScheduler
	leaderElection domain.LeaderElection
	instanceID     string
	log            logger.Logger
}

func NewAuctionManager(
	store domain.AuctionStore,
	events domain.EventPublisher,
	scheduler domain.AuctionScheduler,
	leaderElection domain.LeaderElection,
	instanceID string,
	log logger.Logger,
) *AuctionManager {
	return &AuctionManager{
		store:          store,
		events:         events,
		scheduler:      scheduler,
		leaderElection: leaderElection,
		instanceID:     instanceID,
		log:            log,
	}
}

// SetScheduler breaks the construction cycle between the manager and the
// cron scheduler.
func (am *AuctionManager) SetScheduler(scheduler domain.AuctionScheduler) {
	am.scheduler = scheduler
}

func (am *AuctionManager) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	return am.store.GetAuction(ctx, auctionID)
}

type CreateAuctionInput struct {
	Title            string
	Description      string
	SellerID         string
	CategoryID       string
	StartingPrice    decimal.Decimal
	MinimumIncrement decimal.Decimal
	StartTime        time.Time
	EndTime          time.Time
}

func (am *AuctionManager) CreateAuction(ctx context.Context, in CreateAuctionInput) (*domain.Auction, error) {
	if !in.StartingPrice.IsPositive() {
		return nil, fmt.Errorf("starting price must be positive")
	}
	if !in.EndTime.After(in.StartTime) {
		return nil, fmt.Errorf("end time must be after start time")
	}
	if in.MinimumIncrement.IsZero() {
		in.MinimumIncrement = decimal.NewFromInt(1)
	}
	if !in.MinimumIncrement.IsPositive() {
		return nil, fmt.Errorf("minimum increment must be positive")
	}

	now := time.Now()
	auction := &domain.Auction{
		ID:               utils.GenerateID("auction"),
		Title:            in.Title,
		Description:      in.Description,
		SellerID:         in.SellerID,
		CategoryID:       in.CategoryID,
		StartingPrice:    in.StartingPrice,
		CurrentPrice:     in.StartingPrice,
		MinimumIncrement: in.MinimumIncrement,
		StartTime:        in.StartTime,
		EndTime:          in.EndTime,
		Status:           domain.AuctionDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := am.store.CreateAuction(ctx, auction); err != nil {
		return nil, err
	}

	am.log.Info("Auction created", "auction_id", auction.ID, "seller_id", auction.SellerID)
	return auction, nil
}

// ScheduleAuction moves a draft onto the calendar: start and end jobs are
// registered and the auction waits for its window. A draft whose start time
// has already passed goes straight to active.
func (am *AuctionManager) ScheduleAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	auction, err := am.store.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	if auction.Status != domain.AuctionDraft {
		return nil, fmt.Errorf("auction %s is %s, only drafts can be scheduled", auctionID, auction.Status)
	}

	status := domain.AuctionScheduled
	if !time.Now().Before(auction.StartTime) {
		status = domain.AuctionActive
	}

	if err := am.store.UpdateAuctionStatus(ctx, auctionID, status); err != nil {
		return nil, err
	}

	if status == domain.AuctionScheduled {
		if err := am.scheduler.ScheduleAuctionStart(ctx, auctionID, auction.StartTime); err != nil {
			return nil, err
		}
	}
	if err := am.scheduler.ScheduleAuctionEnd(ctx, auctionID, auction.EndTime); err != nil {
		return nil, err
	}

	auction.Status = status
	am.log.Info("Auction scheduled", "auction_id", auctionID, "status", status.String())
	return auction, nil
}

func (am *AuctionManager) StartAuction(ctx context.Context, auctionID string) error {
	isLeader, err := am.leaderElection.IsLeader(ctx, am.instanceID)
	if err != nil {
		return err
	}
	if !isLeader {
		return ErrNotLeader
	}

	auction, err := am.store.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}

	if auction.Status != domain.AuctionScheduled {
		return nil
	}

	am.log.Info("Starting auction", "auction_id", auctionID)
	return am.store.UpdateAuctionStatus(ctx, auctionID, domain.AuctionActive)
}

func (am *AuctionManager) EndAuction(ctx context.Context, auctionID string) error {
	isLeader, err := am.leaderElection.IsLeader(ctx, am.instanceID)
	if err != nil {
		return err
	}
	if !isLeader {
		return ErrNotLeader
	}

	auction, err := am.store.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}

	// An extension may have moved the deadline after this job was created.
	// The job stays pending until the real deadline passes, so a failed
	// reschedule still leaves a job that will end the auction.
	if time.Now().Before(auction.EndTime) {
		return ErrAuctionNotDue
	}

	// Guard against double-ending.
	if auction.Status != domain.AuctionActive {
		return nil
	}

	am.log.Info("Ending auction", "auction_id", auctionID)

	if err := am.store.UpdateAuctionStatus(ctx, auctionID, domain.AuctionEnded); err != nil {
		return err
	}

	return am.events.Publish(ctx, domain.TopicAuctionEnded(auctionID), &domain.Event{
		Type:      domain.EventAuctionEnded,
		AuctionID: auctionID,
		Timestamp: time.Now(),
	})
}

func (am *AuctionManager) CancelAuction(ctx context.Context, auctionID string) error {
	auction, err := am.store.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}

	if auction.Status == domain.AuctionEnded || auction.Status == domain.AuctionCancelled {
		return fmt.Errorf("auction %s is already %s", auctionID, auction.Status)
	}

	am.log.Info("Cancelling auction", "auction_id", auctionID)

	if err := am.store.UpdateAuctionStatus(ctx, auctionID, domain.AuctionCancelled); err != nil {
		return err
	}

	if err := am.scheduler.CancelSchedule(ctx, auctionID); err != nil {
		am.log.Error("Failed to cancel scheduled jobs", "auction_id", auctionID, "error", err)
	}

	return am.events.Publish(ctx, domain.TopicAuctionEnded(auctionID), &domain.Event{
		Type:      domain.EventAuctionEnded,
		AuctionID: auctionID,
		Timestamp: time.Now(),
	})
}
