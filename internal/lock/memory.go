package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chaolic6505/gavel/internal/domain"
)

const defaultAcquireTimeout = 3 * time.Second

type memoryEntry struct {
	ch   chan struct{}
	refs int
}

// Memory is an in-process AuctionLocker keyed by auction id. Suitable for a
// single-node deployment; multi-node deployments use the redsync-backed
// locker instead.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	timeout time.Duration
}

type MemoryOption func(*Memory)

// WithMemoryAcquireTimeout overrides the bound on how long Acquire may wait.
func WithMemoryAcquireTimeout(d time.Duration) MemoryOption {
	return func(m *Memory) {
		if d > 0 {
			m.timeout = d
		}
	}
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]*memoryEntry),
		timeout: defaultAcquireTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Acquire(ctx context.Context, auctionID string) (func(), error) {
	m.mu.Lock()
	e := m.entries[auctionID]
	if e == nil {
		e = &memoryEntry{ch: make(chan struct{}, 1)}
		m.entries[auctionID] = e
	}
	e.refs++
	m.mu.Unlock()

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case e.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-e.ch
				m.put(auctionID)
			})
		}, nil
	case <-timer.C:
		m.put(auctionID)
		return nil, fmt.Errorf("acquire auction lock %s: %w", auctionID, domain.ErrConflict)
	case <-ctx.Done():
		m.put(auctionID)
		return nil, ctx.Err()
	}
}

// put drops one reference and frees the entry once nobody waits on it, so
// the map does not grow with every auction ever bid on.
func (m *Memory) put(auctionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.entries[auctionID]
	if e == nil {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(m.entries, auctionID)
	}
}
