package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is a state-change notification emitted after a successful commit.
// Emission is post-commit and best-effort; consumers must not assume
// delivery, only that any delivered event reflects committed state.
type Event interface {
	Auction() string
}

// BidAccepted is broadcast when a bid wins the critical section and commits.
type BidAccepted struct {
	AuctionID  string
	Bid        Bid
	NewPrice   decimal.Decimal
	NewEndTime time.Time
	Extended   bool
}

func (e BidAccepted) Auction() string { return e.AuctionID }

// AuctionStateChanged is broadcast on every lifecycle transition, whether
// triggered by an actor or by the close-out sweep.
type AuctionStateChanged struct {
	AuctionID  string
	OldStatus  AuctionStatus
	NewStatus  AuctionStatus
	NewEndTime time.Time
	Actor      string
	OccurredAt time.Time
}

func (e AuctionStateChanged) Auction() string { return e.AuctionID }
