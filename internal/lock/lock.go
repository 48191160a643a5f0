// Package lock provides the per-auction critical section: only one bid or
// sweep operation may mutate a given auction's state at a time, while
// independent auctions proceed fully in parallel.
package lock

import "context"

// AuctionLocker serializes all mutations on a single auction. Acquire blocks
// up to the implementation's configured timeout and then fails with
// domain.ErrConflict so callers can retry with backoff. The returned release
// function is safe to call more than once; only the first call releases.
type AuctionLocker interface {
	Acquire(ctx context.Context, auctionID string) (release func(), err error)
}
