package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BidStatus string

const (
	BidStatusPending   BidStatus = "pending"
	BidStatusAccepted  BidStatus = "accepted"
	BidStatusRejected  BidStatus = "rejected"
	BidStatusCancelled BidStatus = "cancelled"
)

// Bid is an append-only record of a placement attempt. Accepted means the
// bid was a valid higher bid at its time; only the auction's WinningBidID
// pointer identifies the current leader. A bid is never mutated after its
// terminal status is assigned.
type Bid struct {
	ID        string
	AuctionID string
	BidderID  string
	Amount    decimal.Decimal
	Status    BidStatus
	// RejectReason holds the rejection code when Status is rejected, so an
	// idempotent replay can return the original outcome without re-validating.
	RejectReason string
	// AuctionVersion is the auction's version counter observed at submission,
	// kept for audit and conflict diagnosis.
	AuctionVersion int64
	IdempotencyKey string
	CreatedAt      time.Time
}
