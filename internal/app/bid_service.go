package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chaolic6505/gavel/internal/clock"
	"github.com/chaolic6505/gavel/internal/domain"
	"github.com/chaolic6505/gavel/internal/lock"
)

type BidRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetAuctionForUpdate(ctx context.Context, auctionID string) (domain.Auction, error)
	FindBidByIdempotencyKey(ctx context.Context, auctionID, key string) (*domain.Bid, error)
	CreateBid(ctx context.Context, bid domain.Bid) error
	UpdateAuctionOnBid(ctx context.Context, a domain.Auction) error
	GetSnapshot(ctx context.Context, auctionID string) (domain.Snapshot, error)
}

// EventEmitter receives committed state changes, post-commit and best-effort.
type EventEmitter interface {
	Emit(ev domain.Event)
}

// BidService is the arbitration engine: it serializes concurrent bid
// attempts per auction, validates them against the latest committed state,
// and commits bid plus auction updates as a single atomic unit.
type BidService struct {
	repo    BidRepository
	locker  lock.AuctionLocker
	clock   clock.Clock
	emitter EventEmitter
}

func NewBidService(repo BidRepository, locker lock.AuctionLocker, clk clock.Clock, emitter EventEmitter) *BidService {
	return &BidService{
		repo:    repo,
		locker:  locker,
		clock:   clk,
		emitter: emitter,
	}
}

type PlaceBidInput struct {
	AuctionID      string
	BidderID       string
	Amount         decimal.Decimal
	IdempotencyKey string
}

type PlaceBidResult struct {
	Bid          domain.Bid
	CurrentPrice decimal.Decimal
	EndTime      time.Time
	Extended     bool
	// Replayed is true when the idempotency key matched a previously
	// committed attempt and the original outcome was returned as-is.
	Replayed bool
}

// PlaceBid decides a single bid attempt. All state observed and written here
// happens inside the per-auction critical section and one ledger
// transaction, so concurrent attempts on the same auction behave as if
// processed one at a time while independent auctions proceed in parallel.
func (s *BidService) PlaceBid(ctx context.Context, in PlaceBidInput) (PlaceBidResult, error) {
	if in.AuctionID == "" || in.BidderID == "" {
		return PlaceBidResult{}, domain.ErrInvalidID
	}
	if in.IdempotencyKey == "" {
		return PlaceBidResult{}, domain.ErrIdempotencyKeyRequired
	}

	release, err := s.locker.Acquire(ctx, in.AuctionID)
	if err != nil {
		return PlaceBidResult{}, err
	}
	defer release()

	var (
		result    PlaceBidResult
		rejection *domain.RejectionError
		accepted  *domain.BidAccepted
	)

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		a, err := s.repo.GetAuctionForUpdate(txCtx, in.AuctionID)
		if err != nil {
			return err
		}

		existing, err := s.repo.FindBidByIdempotencyKey(txCtx, in.AuctionID, in.IdempotencyKey)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.BidderID != in.BidderID || !existing.Amount.Equal(in.Amount) {
				return domain.ErrIdempotencyConflict
			}
			result = PlaceBidResult{
				Bid:          *existing,
				CurrentPrice: a.CurrentPrice,
				EndTime:      a.EndTime,
				Replayed:     true,
			}
			if existing.Status == domain.BidStatusRejected {
				rejection = domain.Reject(domain.RejectReason(existing.RejectReason), a)
			}
			return nil
		}

		now := s.clock.Now()
		if verr := ValidateBid(a, BidCandidate{BidderID: in.BidderID, Amount: in.Amount, At: now}); verr != nil {
			// Rejections are committed too: the bid ledger is append-only
			// and a retried request must get the original outcome back.
			rejected := domain.Bid{
				ID:             newID(),
				AuctionID:      in.AuctionID,
				BidderID:       in.BidderID,
				Amount:         in.Amount,
				Status:         domain.BidStatusRejected,
				RejectReason:   domain.RejectCode(verr),
				AuctionVersion: a.Version,
				IdempotencyKey: in.IdempotencyKey,
				CreatedAt:      now,
			}
			if err := s.repo.CreateBid(txCtx, rejected); err != nil {
				return err
			}
			rejection = domain.Reject(verr, a)
			return nil
		}

		bid := domain.Bid{
			ID:             newID(),
			AuctionID:      in.AuctionID,
			BidderID:       in.BidderID,
			Amount:         in.Amount,
			Status:         domain.BidStatusAccepted,
			AuctionVersion: a.Version,
			IdempotencyKey: in.IdempotencyKey,
			CreatedAt:      now,
		}
		if err := s.repo.CreateBid(txCtx, bid); err != nil {
			return err
		}

		a.CurrentPrice = bid.Amount
		a.WinningBidID = &bid.ID

		extended := false
		if a.ExtendWindow > 0 && a.Extensions < a.MaxExtensions && !now.Before(a.EndTime.Add(-a.ExtendWindow)) {
			// Last-window bid: push the deadline forward from acceptance
			// time. EndTime never moves backward because now is inside
			// [EndTime-window, EndTime).
			a.EndTime = now.Add(a.ExtendWindow)
			a.Extensions++
			extended = true
		}

		if err := s.repo.UpdateAuctionOnBid(txCtx, a); err != nil {
			return err
		}

		result = PlaceBidResult{
			Bid:          bid,
			CurrentPrice: a.CurrentPrice,
			EndTime:      a.EndTime,
			Extended:     extended,
		}
		accepted = &domain.BidAccepted{
			AuctionID:  a.ID,
			Bid:        bid,
			NewPrice:   a.CurrentPrice,
			NewEndTime: a.EndTime,
			Extended:   extended,
		}
		return nil
	})
	if err != nil {
		return PlaceBidResult{}, classifyStorageErr(err)
	}
	if rejection != nil {
		return PlaceBidResult{}, rejection
	}

	// Fan-out never runs inside the critical section.
	if accepted != nil && s.emitter != nil {
		s.emitter.Emit(*accepted)
	}
	return result, nil
}

// Snapshot is the lock-free read path: a recent consistent view of the
// auction's price, status, winner and deadline.
func (s *BidService) Snapshot(ctx context.Context, auctionID string) (domain.Snapshot, error) {
	if auctionID == "" {
		return domain.Snapshot{}, domain.ErrInvalidID
	}
	snap, err := s.repo.GetSnapshot(ctx, auctionID)
	if err != nil {
		return domain.Snapshot{}, classifyStorageErr(err)
	}
	return snap, nil
}

// classifyStorageErr keeps domain sentinels intact and folds everything else
// into ErrStorageUnavailable, which callers treat as retryable.
func classifyStorageErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrAuctionNotFound),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrIdempotencyConflict),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
}
