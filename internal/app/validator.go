package app

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/chaolic6505/gavel/internal/domain"
)

// BidCandidate is a bid attempt as seen by the validator: who, how much, and
// the instant the arbitration engine observed it.
type BidCandidate struct {
	BidderID string
	Amount   decimal.Decimal
	At       time.Time
}

// ValidateBid checks a candidate against an auction snapshot. It is a pure
// function of its inputs; rules run in order and the first failure wins.
func ValidateBid(a domain.Auction, c BidCandidate) error {
	if a.Status != domain.AuctionStatusActive {
		return domain.ErrAuctionNotOpen
	}
	// The bidding window is [start, end): a bid at the exact end instant is
	// late, covering expired-but-not-yet-swept auctions.
	if c.At.Before(a.StartTime) || !c.At.Before(a.EndTime) {
		return domain.ErrAuctionNotOpen
	}
	if !c.Amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if c.Amount.LessThan(a.MinimumBid()) {
		return domain.ErrBidTooLow
	}
	if c.BidderID == a.SellerID {
		return domain.ErrSelfBid
	}
	return nil
}
