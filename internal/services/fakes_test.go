package services

import (
	"context"
	"sync"
	"time"

	"auction-platform/internal/domain"

	"github.com/shopspring/decimal"
)

type memStore struct {
	mu       sync.Mutex
	auctions map[string]*domain.Auction
}

func newMemStore(auctions ...*domain.Auction) *memStore {
	s := &memStore{auctions: make(map[string]*domain.Auction)}
	for _, a := range auctions {
		copied := *a
		s.auctions[a.ID] = &copied
	}
	return s
}

func (s *memStore) CreateAuction(ctx context.Context, auction *domain.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *auction
	s.auctions[auction.ID] = &copied
	return nil
}

func (s *memStore) GetAuction(ctx context.Context, auctionID string) (*domain.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	auction, ok := s.auctions[auctionID]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	copied := *auction
	return &copied, nil
}

func (s *memStore) LoadAuctionWithTopBid(ctx context.Context, auctionID string) (*domain.Auction, *domain.Bid, error) {
	auction, err := s.GetAuction(ctx, auctionID)
	return auction, nil, err
}

func (s *memStore) CommitBid(ctx context.Context, bid *domain.Bid, previousWinningID string, expectedPrice decimal.Decimal) error {
	return nil
}

func (s *memStore) UpdateAuctionStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	auction, ok := s.auctions[auctionID]
	if !ok {
		return domain.ErrAuctionNotFound
	}
	auction.Status = status
	return nil
}

func (s *memStore) UpdateAuctionEndTime(ctx context.Context, auctionID string, newEndTime time.Time, extensionCount int) error {
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

func (s *memStore) GetWinningBid(ctx context.Context, auctionID string) (*domain.Bid, error) {
	return nil, nil
}

func (s *memStore) status(id string) domain.AuctionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auctions[id].Status
}

type capturedEvent struct {
	Topic string
	Event domain.Event
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (p *capturingPublisher) Publish(ctx context.Context, topic string, event *domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, capturedEvent{Topic: topic, Event: *event})
	return nil
}

func (p *capturingPublisher) published() []capturedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]capturedEvent(nil), p.events...)
}

type fakeScheduler struct {
	mu         sync.Mutex
	starts     map[string]time.Time
	ends       map[string]time.Time
	cancelled  []string
	rescheduls []time.Time
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{
		starts: make(map[string]time.Time),
		ends:   make(map[string]time.Time),
	}
}

func (s *fakeScheduler) ScheduleAuctionStart(ctx context.Context, auctionID string, startTime time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts[auctionID] = startTime
	return nil
}

func (s *fakeScheduler) ScheduleAuctionEnd(ctx context.Context, auctionID string, endTime time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ends[auctionID] = endTime
	return nil
}

func (s *fakeScheduler) RescheduleAuctionEnd(ctx context.Context, auctionID string, newEndTime time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rescheduls = append(s.rescheduls, newEndTime)
	s.ends[auctionID] = newEndTime
	return nil
}

func (s *fakeScheduler) CancelSchedule(ctx context.Context, auctionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, auctionID)
	delete(s.starts, auctionID)
	delete(s.ends, auctionID)
	return nil
}

func (s *fakeScheduler) Start(ctx context.Context) error { return nil }
func (s *fakeScheduler) Stop() error                     { return nil }

type memJobStore struct {
	mu   sync.Mutex
	jobs map[string]*domain.ScheduledJob
}

func newMemJobStore() *memJobStore {
	return &memJobStore{jobs: make(map[string]*domain.ScheduledJob)}
}

func (s *memJobStore) CreateJob(ctx context.Context, job *domain.ScheduledJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

func (s *memJobStore) GetPendingJobs(ctx context.Context, before time.Time) ([]*domain.ScheduledJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.ScheduledJob
	for _, job := range s.jobs {
		if job.Status == domain.JobPending && !job.RunAt.After(before) {
			copied := *job
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *memJobStore) UpdateJobStatus(ctx context.Context, jobID string, status domain.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[jobID]; ok {
		job.Status = status
	}
	return nil
}

func (s *memJobStore) CancelJobsForAuction(ctx context.Context, auctionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		if job.AuctionID == auctionID && job.Status == domain.JobPending {
			job.Status = domain.JobCancelled
		}
	}
	return nil
}

func (s *memJobStore) jobStatus(jobID string) domain.JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[jobID].Status
}

type fakeLeader struct {
	leader bool
}

func (l *fakeLeader) BecomeLeader(ctx context.Context, instanceID string) (bool, error) {
	return l.leader, nil
}

func (l *fakeLeader) IsLeader(ctx context.Context, instanceID string) (bool, error) {
	return l.leader, nil
}

func (l *fakeLeader) ReleaseLeadership(ctx context.Context, instanceID string) error {
	return nil
}

type fakeConnManager struct {
	mu         sync.Mutex
	broadcasts map[string][]interface{}
	notified   map[string][]interface{}
	closed     []string
}

func newFakeConnManager() *fakeConnManager {
	return &fakeConnManager{
		broadcasts: make(map[string][]interface{}),
		notified:   make(map[string][]interface{}),
	}
}

func (m *fakeConnManager) RegisterConnection(userID, auctionID string, conn domain.WebSocketConnection) error {
	return nil
}

func (m *fakeConnManager) UnregisterConnection(userID, auctionID string) error {
	return nil
}

func (m *fakeConnManager) BroadcastToAuction(auctionID string, message interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcasts[auctionID] = append(m.broadcasts[auctionID], message)
	return nil
}

func (m *fakeConnManager) NotifyUser(userID string, message interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified[userID] = append(m.notified[userID], message)
	return nil
}

func (m *fakeConnManager) CloseAndUnregisterConnections(auctionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = append(m.closed, auctionID)
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Fatal(string, ...interface{}) {}
