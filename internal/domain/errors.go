package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Store-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrPriceConflict   = errors.New("auction price changed since read")
)

type BidErrorKind string

const (
	KindAuctionNotFound   BidErrorKind = "auction_not_found"
	KindAuctionNotActive  BidErrorKind = "auction_not_active"
	KindWindowClosed      BidErrorKind = "auction_window_closed"
	KindBidTooLow         BidErrorKind = "bid_too_low"
	KindSelfOutbid        BidErrorKind = "self_outbid"
	KindSellerCannotBid   BidErrorKind = "seller_cannot_bid"
	KindConcurrentUpdate  BidErrorKind = "concurrent_update"
	KindBusy              BidErrorKind = "busy"
)

// BidError carries a machine-readable kind alongside the reason string shown
// to the bidder.
type BidError struct {
	Kind   BidErrorKind
	Reason string
}

func (e *BidError) Error() string {
	return e.Reason
}

// Is matches any BidError of the same kind, so callers can test against the
// exported sentinels with errors.Is regardless of the formatted reason.
func (e *BidError) Is(target error) bool {
	var other *BidError
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

var (
	ErrBidAuctionNotFound = &BidError{Kind: KindAuctionNotFound, Reason: "Auction not found"}
	ErrAuctionNotActive   = &BidError{Kind: KindAuctionNotActive, Reason: "Auction is not active"}
	ErrWindowClosed       = &BidError{Kind: KindWindowClosed, Reason: "Auction is not currently active"}
	ErrSelfOutbid         = &BidError{Kind: KindSelfOutbid, Reason: "You are already the highest bidder"}
	ErrSellerCannotBid    = &BidError{Kind: KindSellerCannotBid, Reason: "Cannot bid on your own auction"}
	ErrConcurrentUpdate   = &BidError{Kind: KindConcurrentUpdate, Reason: "Bid conflicted with a concurrent bid, please retry"}
	ErrBusy               = &BidError{Kind: KindBusy, Reason: "Auction is busy, please retry"}
)

func NewBidTooLowError(minimum decimal.Decimal) *BidError {
	return &BidError{
		Kind:   KindBidTooLow,
		Reason: fmt.Sprintf("Bid must be at least $%s", minimum.String()),
	}
}
