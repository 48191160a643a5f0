package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	allowed := []struct {
		from, to AuctionStatus
	}{
		{AuctionStatusDraft, AuctionStatusPending},
		{AuctionStatusDraft, AuctionStatusActive},
		{AuctionStatusDraft, AuctionStatusCancelled},
		{AuctionStatusPending, AuctionStatusActive},
		{AuctionStatusPending, AuctionStatusCancelled},
		{AuctionStatusActive, AuctionStatusPaused},
		{AuctionStatusActive, AuctionStatusEnded},
		{AuctionStatusActive, AuctionStatusSold},
		{AuctionStatusActive, AuctionStatusCancelled},
		{AuctionStatusPaused, AuctionStatusActive},
		{AuctionStatusPaused, AuctionStatusCancelled},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct {
		from, to AuctionStatus
	}{
		{AuctionStatusDraft, AuctionStatusEnded},
		{AuctionStatusDraft, AuctionStatusSold},
		{AuctionStatusPending, AuctionStatusPaused},
		{AuctionStatusPaused, AuctionStatusEnded},
		{AuctionStatusPaused, AuctionStatusSold},
		{AuctionStatusActive, AuctionStatusDraft},
		{AuctionStatusEnded, AuctionStatusActive},
		{AuctionStatusEnded, AuctionStatusCancelled},
		{AuctionStatusCancelled, AuctionStatusActive},
		{AuctionStatusSold, AuctionStatusCancelled},
		{AuctionStatusActive, AuctionStatusActive},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestAuctionStatus_Terminal(t *testing.T) {
	t.Parallel()

	terminal := map[AuctionStatus]bool{
		AuctionStatusDraft:     false,
		AuctionStatusPending:   false,
		AuctionStatusActive:    false,
		AuctionStatusPaused:    false,
		AuctionStatusEnded:     true,
		AuctionStatusCancelled: true,
		AuctionStatusSold:      true,
	}
	for status, want := range terminal {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}

func TestAuction_MinimumBid(t *testing.T) {
	t.Parallel()

	a := Auction{
		StartingPrice: decimal.RequireFromString("100.00"),
		MinIncrement:  decimal.RequireFromString("2.50"),
		CurrentPrice:  decimal.RequireFromString("100.00"),
	}

	if got := a.MinimumBid(); !got.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("fresh auction: expected minimum 100.00, got %s", got)
	}

	winner := "bid-1"
	a.WinningBidID = &winner
	a.CurrentPrice = decimal.RequireFromString("110.00")
	if got := a.MinimumBid(); !got.Equal(decimal.RequireFromString("112.50")) {
		t.Fatalf("with winner: expected minimum 112.50, got %s", got)
	}
}

func TestAuction_ReserveMet(t *testing.T) {
	t.Parallel()

	winner := "bid-1"
	reserve := decimal.RequireFromString("150.00")

	t.Run("no winning bid", func(t *testing.T) {
		a := Auction{CurrentPrice: decimal.RequireFromString("200.00")}
		if a.ReserveMet() {
			t.Fatalf("expected reserve unmet without a winning bid")
		}
	})

	t.Run("no reserve set", func(t *testing.T) {
		a := Auction{WinningBidID: &winner, CurrentPrice: decimal.RequireFromString("1.00")}
		if !a.ReserveMet() {
			t.Fatalf("expected reserve met when none is set")
		}
	})

	t.Run("price below reserve", func(t *testing.T) {
		a := Auction{WinningBidID: &winner, ReservePrice: &reserve, CurrentPrice: decimal.RequireFromString("149.99")}
		if a.ReserveMet() {
			t.Fatalf("expected reserve unmet below the reserve price")
		}
	})

	t.Run("price at reserve", func(t *testing.T) {
		a := Auction{WinningBidID: &winner, ReservePrice: &reserve, CurrentPrice: decimal.RequireFromString("150.00")}
		if !a.ReserveMet() {
			t.Fatalf("expected reserve met at the reserve price")
		}
	})
}

func TestRejectionError(t *testing.T) {
	t.Parallel()

	a := Auction{
		ID:            "auction-1",
		StartingPrice: decimal.RequireFromString("100.00"),
		MinIncrement:  decimal.RequireFromString("1.00"),
		CurrentPrice:  decimal.RequireFromString("100.00"),
		EndTime:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	err := Reject(ErrBidTooLow, a)
	if err.AuctionID != "auction-1" {
		t.Fatalf("expected auction id carried, got %s", err.AuctionID)
	}
	if !err.MinimumBid.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("expected minimum bid 100.00, got %s", err.MinimumBid)
	}
	if RejectCode(err) != RejectCodeBidTooLow {
		t.Fatalf("expected code %s, got %s", RejectCodeBidTooLow, RejectCode(err))
	}
}

func TestRejectCodeRoundTrip(t *testing.T) {
	t.Parallel()

	reasons := []error{ErrAuctionNotOpen, ErrInvalidAmount, ErrBidTooLow, ErrSelfBid}
	for _, reason := range reasons {
		code := RejectCode(reason)
		if code == "" {
			t.Fatalf("no code for %v", reason)
		}
		if got := RejectReason(code); got != reason {
			t.Fatalf("round trip for %v: got %v", reason, got)
		}
	}

	if got := RejectReason("garbage"); got != ErrAuctionNotOpen {
		t.Fatalf("expected unknown codes to fall back to ErrAuctionNotOpen, got %v", got)
	}
}
