package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrAuctionNotFound        = errors.New("auction not found")
	ErrCategoryNotFound       = errors.New("category not found")
	ErrBidNotFound            = errors.New("bid not found")
	ErrInvalidID              = errors.New("invalid id")
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")
	ErrIdempotencyConflict    = errors.New("idempotency conflict")

	// Validation rejections: user-correctable, never retried automatically.
	ErrAuctionNotOpen = errors.New("auction not open for bidding")
	ErrInvalidAmount  = errors.New("invalid bid amount")
	ErrBidTooLow      = errors.New("bid too low")
	ErrSelfBid        = errors.New("seller cannot bid on own auction")

	// ErrConflict is transient: lock acquisition timed out or a concurrent
	// writer won the version check. Safe for the caller to retry with backoff.
	ErrConflict = errors.New("concurrent update conflict, retry")

	// ErrStorageUnavailable means the ledger failed to commit; no partial
	// state was written. Retryable.
	ErrStorageUnavailable = errors.New("storage unavailable")

	ErrInvalidTransition = errors.New("invalid status transition")

	ErrCategoryExists       = errors.New("category already exists")
	ErrTitleRequired        = errors.New("auction title required")
	ErrCategoryNameRequired = errors.New("category name required")
	ErrItemNameRequired     = errors.New("item name required")
	ErrInvalidPrice         = errors.New("invalid price")
	ErrInvalidTimeRange     = errors.New("end time must be after start time")
	ErrInvalidQuantity      = errors.New("invalid quantity")
)

// RejectionError wraps a validation rejection with enough auction context for
// the caller to decide whether to retry with an adjusted amount. Unwrap
// returns the sentinel reason so errors.Is keeps working.
type RejectionError struct {
	Reason       error
	AuctionID    string
	CurrentPrice decimal.Decimal
	MinimumBid   decimal.Decimal
	EndTime      time.Time
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("bid rejected: %v (auction %s, current price %s)", e.Reason, e.AuctionID, e.CurrentPrice)
}

func (e *RejectionError) Unwrap() error {
	return e.Reason
}

// Reject builds a RejectionError carrying the auction's observed state.
func Reject(reason error, a Auction) *RejectionError {
	return &RejectionError{
		Reason:       reason,
		AuctionID:    a.ID,
		CurrentPrice: a.CurrentPrice,
		MinimumBid:   a.MinimumBid(),
		EndTime:      a.EndTime,
	}
}

const (
	RejectCodeAuctionNotOpen = "auction_not_open"
	RejectCodeInvalidAmount  = "invalid_amount"
	RejectCodeBidTooLow      = "bid_too_low"
	RejectCodeSelfBid        = "self_bid"
)

// RejectCode maps a validation rejection to the code stored on the bid row.
func RejectCode(err error) string {
	switch {
	case errors.Is(err, ErrAuctionNotOpen):
		return RejectCodeAuctionNotOpen
	case errors.Is(err, ErrInvalidAmount):
		return RejectCodeInvalidAmount
	case errors.Is(err, ErrBidTooLow):
		return RejectCodeBidTooLow
	case errors.Is(err, ErrSelfBid):
		return RejectCodeSelfBid
	}
	return ""
}

// RejectReason is the inverse of RejectCode, used when replaying a recorded
// rejection. Unknown codes fall back to ErrAuctionNotOpen.
func RejectReason(code string) error {
	switch code {
	case RejectCodeInvalidAmount:
		return ErrInvalidAmount
	case RejectCodeBidTooLow:
		return ErrBidTooLow
	case RejectCodeSelfBid:
		return ErrSelfBid
	}
	return ErrAuctionNotOpen
}
