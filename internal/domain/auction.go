package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AuctionStatus string

const (
	AuctionStatusDraft     AuctionStatus = "draft"
	AuctionStatusPending   AuctionStatus = "pending"
	AuctionStatusActive    AuctionStatus = "active"
	AuctionStatusPaused    AuctionStatus = "paused"
	AuctionStatusEnded     AuctionStatus = "ended"
	AuctionStatusCancelled AuctionStatus = "cancelled"
	AuctionStatusSold      AuctionStatus = "sold"
)

// Terminal reports whether no further transition is allowed from s.
func (s AuctionStatus) Terminal() bool {
	switch s {
	case AuctionStatusEnded, AuctionStatusCancelled, AuctionStatusSold:
		return true
	}
	return false
}

// CanTransition reports whether the lifecycle allows moving from one status
// to another. Time-based preconditions (start/end schedule) are checked by
// the lifecycle service, not here.
func CanTransition(from, to AuctionStatus) bool {
	if from.Terminal() {
		return false
	}
	if to == AuctionStatusCancelled {
		return true
	}
	switch from {
	case AuctionStatusDraft:
		return to == AuctionStatusPending || to == AuctionStatusActive
	case AuctionStatusPending:
		return to == AuctionStatusActive
	case AuctionStatusActive:
		return to == AuctionStatusPaused || to == AuctionStatusEnded || to == AuctionStatusSold
	case AuctionStatusPaused:
		return to == AuctionStatusActive
	}
	return false
}

// Auction is the record bids compete over. CurrentPrice, WinningBidID,
// EndTime, Extensions and Version only ever change inside the per-auction
// critical section; EndTime only moves forward.
type Auction struct {
	ID          string
	SellerID    string
	CategoryID  string
	Title       string
	Description string

	StartingPrice decimal.Decimal
	// ReservePrice is a hidden floor: without it, or once met, the auction
	// converts to sold at close; otherwise it merely ends.
	ReservePrice *decimal.Decimal
	MinIncrement decimal.Decimal
	CurrentPrice decimal.Decimal

	StartTime     time.Time
	EndTime       time.Time
	ExtendWindow  time.Duration
	MaxExtensions int
	Extensions    int

	Status       AuctionStatus
	WinningBidID *string
	Version      int64
	CreatedAt    time.Time
}

// MinimumBid returns the lowest amount the next bid must reach.
func (a Auction) MinimumBid() decimal.Decimal {
	if a.WinningBidID == nil {
		return a.StartingPrice
	}
	return a.CurrentPrice.Add(a.MinIncrement)
}

// ReserveMet reports whether the auction can convert to sold at close.
func (a Auction) ReserveMet() bool {
	if a.WinningBidID == nil {
		return false
	}
	if a.ReservePrice == nil {
		return true
	}
	return a.CurrentPrice.GreaterThanOrEqual(*a.ReservePrice)
}

// Snapshot is the lock-free read-path view of an auction.
type Snapshot struct {
	AuctionID    string
	Status       AuctionStatus
	CurrentPrice decimal.Decimal
	WinningBidID *string
	StartTime    time.Time
	EndTime      time.Time
	Version      int64
}
