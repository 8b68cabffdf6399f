package bidding

import (
	"testing"
	"time"

	"auction-platform/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestCheckBiddable(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	base := domain.Auction{
		ID:        "auction-1",
		Status:    domain.AuctionActive,
		StartTime: now.Add(-time.Hour),
		EndTime:   now.Add(time.Hour),
	}

	tests := []struct {
		name    string
		auction func() *domain.Auction
		wantErr error
	}{
		{
			name:    "active_inside_window",
			auction: func() *domain.Auction { a := base; return &a },
		},
		{
			name:    "nil_auction",
			auction: func() *domain.Auction { return nil },
			wantErr: domain.ErrBidAuctionNotFound,
		},
		{
			name:    "draft",
			auction: func() *domain.Auction { a := base; a.Status = domain.AuctionDraft; return &a },
			wantErr: domain.ErrAuctionNotActive,
		},
		{
			name:    "scheduled",
			auction: func() *domain.Auction { a := base; a.Status = domain.AuctionScheduled; return &a },
			wantErr: domain.ErrAuctionNotActive,
		},
		{
			name:    "ended",
			auction: func() *domain.Auction { a := base; a.Status = domain.AuctionEnded; return &a },
			wantErr: domain.ErrAuctionNotActive,
		},
		{
			name:    "cancelled",
			auction: func() *domain.Auction { a := base; a.Status = domain.AuctionCancelled; return &a },
			wantErr: domain.ErrAuctionNotActive,
		},
		{
			name:    "active_before_start",
			auction: func() *domain.Auction { a := base; a.StartTime = now.Add(time.Second); return &a },
			wantErr: domain.ErrWindowClosed,
		},
		{
			name:    "active_after_end",
			auction: func() *domain.Auction { a := base; a.EndTime = now.Add(-time.Second); return &a },
			wantErr: domain.ErrWindowClosed,
		},
		{
			name:    "exactly_at_start",
			auction: func() *domain.Auction { a := base; a.StartTime = now; return &a },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBiddable(tt.auction(), now)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
