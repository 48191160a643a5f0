package app

import (
	"context"
	"errors"
	"time"

	"github.com/chaolic6505/gavel/internal/clock"
	"github.com/chaolic6505/gavel/internal/domain"
	"github.com/chaolic6505/gavel/internal/lock"
)

const sweepBatchSize = 100

type LifecycleRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetAuctionForUpdate(ctx context.Context, auctionID string) (domain.Auction, error)
	UpdateAuctionStatus(ctx context.Context, a domain.Auction) error
	ListDueForActivation(ctx context.Context, now time.Time, limit int) ([]string, error)
	ListDueForClose(ctx context.Context, now time.Time, limit int) ([]string, error)
}

// LifecycleService owns auction status transitions. Explicit transitions and
// the close-out sweep compete for the same per-auction critical section as
// bids, so an in-flight extension and a close can never interleave.
type LifecycleService struct {
	repo    LifecycleRepository
	locker  lock.AuctionLocker
	clock   clock.Clock
	emitter EventEmitter
}

func NewLifecycleService(repo LifecycleRepository, locker lock.AuctionLocker, clk clock.Clock, emitter EventEmitter) *LifecycleService {
	return &LifecycleService{
		repo:    repo,
		locker:  locker,
		clock:   clk,
		emitter: emitter,
	}
}

type TransitionInput struct {
	AuctionID string
	To        domain.AuctionStatus
	// Actor identifies the seller/admin who requested the transition. The
	// caller asserts identity; it is recorded on the emitted event only.
	Actor string
}

// Transition applies a seller/admin-requested status change. Ended and sold
// are reached only through the close-out path, never by request.
func (s *LifecycleService) Transition(ctx context.Context, in TransitionInput) (domain.Auction, error) {
	if in.AuctionID == "" {
		return domain.Auction{}, domain.ErrInvalidID
	}
	switch in.To {
	case domain.AuctionStatusPending, domain.AuctionStatusActive, domain.AuctionStatusPaused, domain.AuctionStatusCancelled:
	default:
		return domain.Auction{}, domain.ErrInvalidTransition
	}

	release, err := s.locker.Acquire(ctx, in.AuctionID)
	if err != nil {
		return domain.Auction{}, err
	}
	defer release()

	var (
		updated domain.Auction
		ev      *domain.AuctionStateChanged
	)
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		a, err := s.repo.GetAuctionForUpdate(txCtx, in.AuctionID)
		if err != nil {
			return err
		}
		if !domain.CanTransition(a.Status, in.To) {
			return domain.ErrInvalidTransition
		}

		now := s.clock.Now()
		switch in.To {
		case domain.AuctionStatusPending:
			// Publishing to pending only makes sense before the scheduled start.
			if !a.StartTime.After(now) {
				return domain.ErrInvalidTransition
			}
		case domain.AuctionStatusActive:
			if a.Status != domain.AuctionStatusPaused && now.Before(a.StartTime) {
				return domain.ErrInvalidTransition
			}
		}

		old := a.Status
		a.Status = in.To
		if err := s.repo.UpdateAuctionStatus(txCtx, a); err != nil {
			return err
		}

		updated = a
		ev = &domain.AuctionStateChanged{
			AuctionID:  a.ID,
			OldStatus:  old,
			NewStatus:  a.Status,
			NewEndTime: a.EndTime,
			Actor:      in.Actor,
			OccurredAt: now,
		}
		return nil
	})
	if err != nil {
		return domain.Auction{}, classifyStorageErr(err)
	}

	if ev != nil && s.emitter != nil {
		s.emitter.Emit(*ev)
	}
	return updated, nil
}

// ActivateDue flips pending auctions whose start time has passed to active.
// Returns how many auctions were activated.
func (s *LifecycleService) ActivateDue(ctx context.Context) (int, error) {
	now := s.clock.Now()
	ids, err := s.repo.ListDueForActivation(ctx, now, sweepBatchSize)
	if err != nil {
		return 0, classifyStorageErr(err)
	}

	activated := 0
	var errs []error
	for _, id := range ids {
		ok, err := s.sweepOne(ctx, id, func(a *domain.Auction, now time.Time) bool {
			if a.Status != domain.AuctionStatusPending || now.Before(a.StartTime) {
				return false
			}
			a.Status = domain.AuctionStatusActive
			return true
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			activated++
		}
	}
	return activated, errors.Join(errs...)
}

// CloseDue finalizes active auctions whose deadline has passed: sold when a
// winning bid exists and the reserve (if any) is met, ended otherwise.
// Returns how many auctions were closed.
func (s *LifecycleService) CloseDue(ctx context.Context) (int, error) {
	now := s.clock.Now()
	ids, err := s.repo.ListDueForClose(ctx, now, sweepBatchSize)
	if err != nil {
		return 0, classifyStorageErr(err)
	}

	closed := 0
	var errs []error
	for _, id := range ids {
		ok, err := s.sweepOne(ctx, id, func(a *domain.Auction, now time.Time) bool {
			// Re-check under the lock: a last-moment accepted bid may have
			// extended the deadline after the candidate list was built.
			if a.Status != domain.AuctionStatusActive || now.Before(a.EndTime) {
				return false
			}
			if a.ReserveMet() {
				a.Status = domain.AuctionStatusSold
			} else {
				a.Status = domain.AuctionStatusEnded
			}
			return true
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			closed++
		}
	}
	return closed, errors.Join(errs...)
}

// sweepOne runs a single sweep decision under the auction's critical
// section. decide mutates the auction and reports whether a transition
// applies; a false return means the auction no longer qualifies and is
// skipped without error.
func (s *LifecycleService) sweepOne(ctx context.Context, auctionID string, decide func(a *domain.Auction, now time.Time) bool) (bool, error) {
	release, err := s.locker.Acquire(ctx, auctionID)
	if err != nil {
		return false, err
	}
	defer release()

	var ev *domain.AuctionStateChanged
	applied := false
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		a, err := s.repo.GetAuctionForUpdate(txCtx, auctionID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		old := a.Status
		if !decide(&a, now) {
			return nil
		}
		if err := s.repo.UpdateAuctionStatus(txCtx, a); err != nil {
			return err
		}

		applied = true
		ev = &domain.AuctionStateChanged{
			AuctionID:  a.ID,
			OldStatus:  old,
			NewStatus:  a.Status,
			NewEndTime: a.EndTime,
			OccurredAt: now,
		}
		return nil
	})
	if err != nil {
		return false, classifyStorageErr(err)
	}

	if ev != nil && s.emitter != nil {
		s.emitter.Emit(*ev)
	}
	return applied, nil
}
