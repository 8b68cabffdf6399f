package services

import (
	"context"
	"errors"
	"time"

	"auction-platform/internal/domain"
	"auction-platform/pkg/logger"
	"auction-platform/pkg/utils"

	"github.com/robfig/cron/v3"
)

// lifecycleExecutor is the slice of AuctionManager the scheduler drives.
type lifecycleExecutor interface {
	StartAuction(ctx context.Context, auctionID string) error
	EndAuction(ctx context.Context, auctionID string) error
}

// CronAuctionScheduler persists start/end jobs in the store and polls them
// on a cron tick. Jobs survive restarts; a missed tick just means the
// transition fires on the next one.
type CronAuctionScheduler struct {
	cron     *cron.Cron
	store    domain.SchedulerStore
	executor lifecycleExecutor
	log      logger.Logger
}

func NewCronAuctionScheduler(store domain.SchedulerStore, executor lifecycleExecutor,
	log logger.Logger) *CronAuctionScheduler {
	return &CronAuctionScheduler{
		cron:     cron.New(cron.WithSeconds()),
		store:    store,
		executor: executor,
		log:      log,
	}
}

func (s *CronAuctionScheduler) Start(ctx context.Context) error {
	s.log.Info("Starting auction scheduler")

	_, err := s.cron.AddFunc("@every 1m", func() {
		s.processPendingJobs(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *CronAuctionScheduler) Stop() error {
	s.log.Info("Stopping auction scheduler")
	s.cron.Stop()
	return nil
}

func (s *CronAuctionScheduler) ScheduleAuctionStart(ctx context.Context, auctionID string, startTime time.Time) error {
	return s.store.CreateJob(ctx, &domain.ScheduledJob{
		ID:        utils.GenerateID("job"),
		AuctionID: auctionID,
		JobType:   domain.JobStartAuction,
		RunAt:     startTime,
		Status:    domain.JobPending,
		CreatedAt: time.Now(),
	})
}

func (s *CronAuctionScheduler) ScheduleAuctionEnd(ctx context.Context, auctionID string, endTime time.Time) error {
	return s.store.CreateJob(ctx, &domain.ScheduledJob{
		ID:        utils.GenerateID("job"),
		AuctionID: auctionID,
		JobType:   domain.JobEndAuction,
		RunAt:     endTime,
		Status:    domain.JobPending,
		CreatedAt: time.Now(),
	})
}

// RescheduleAuctionEnd replaces the pending end job after an anti-sniping
// extension moved the deadline.
func (s *CronAuctionScheduler) RescheduleAuctionEnd(ctx context.Context, auctionID string, newEndTime time.Time) error {
	if err := s.store.CancelJobsForAuction(ctx, auctionID); err != nil {
		return err
	}

	return s.ScheduleAuctionEnd(ctx, auctionID, newEndTime)
}

func (s *CronAuctionScheduler) CancelSchedule(ctx context.Context, auctionID string) error {
	return s.store.CancelJobsForAuction(ctx, auctionID)
}

func (s *CronAuctionScheduler) processPendingJobs(ctx context.Context) {
	jobs, err := s.store.GetPendingJobs(ctx, time.Now())
	if err != nil {
		s.log.Error("Failed to get pending jobs", "error", err)
		return
	}

	for _, job := range jobs {
		s.log.Info("Processing job", "job_id", job.ID, "type", job.JobType, "auction_id", job.AuctionID)

		var err error
		switch job.JobType {
		case domain.JobStartAuction:
			err = s.executor.StartAuction(ctx, job.AuctionID)
		case domain.JobEndAuction:
			err = s.executor.EndAuction(ctx, job.AuctionID)
		}

		if errors.Is(err, ErrNotLeader) || errors.Is(err, ErrAuctionNotDue) {
			// Left pending; the leader (or a later tick) consumes it.
			continue
		}
		if err != nil {
			s.log.Error("Failed to execute job", "job_id", job.ID, "error", err)
			// Left pending; the next tick retries it.
			continue
		}

		if err := s.store.UpdateJobStatus(ctx, job.ID, domain.JobExecuted); err != nil {
			s.log.Error("Failed to mark job executed", "job_id", job.ID, "error", err)
		}
	}
}
