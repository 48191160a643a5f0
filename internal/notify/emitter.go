// Package notify fans out committed auction events to live subscribers.
// Delivery is fire-and-forget: the bid critical section is never blocked by
// a slow consumer.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/chaolic6505/gavel/internal/domain"
)

// Publisher pushes an encoded event to an external broker for cross-process
// fan-out (the WebSocket/SSE layer subscribes there).
type Publisher interface {
	Publish(ctx context.Context, auctionID string, payload []byte) error
}

type emitterOptions struct {
	logger     *slog.Logger
	publisher  Publisher
	queueSize  int
	bufferSize int
}

type EmitterOption func(*emitterOptions)

// WithEmitterLogger sets the logger used by the dispatch goroutine.
func WithEmitterLogger(logger *slog.Logger) EmitterOption {
	return func(o *emitterOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPublisher adds an external broker behind the in-process fan-out.
func WithPublisher(p Publisher) EmitterOption {
	return func(o *emitterOptions) {
		o.publisher = p
	}
}

// WithQueueSize sets the emit queue capacity; events beyond it are dropped.
func WithQueueSize(n int) EmitterOption {
	return func(o *emitterOptions) {
		if n > 0 {
			o.queueSize = n
		}
	}
}

// WithSubscriberBuffer sets each subscriber channel's capacity.
func WithSubscriberBuffer(n int) EmitterOption {
	return func(o *emitterOptions) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// Emitter dispatches events to per-auction in-process subscribers and, when
// configured, to an external publisher. Emit never blocks the caller.
type Emitter struct {
	logger  *slog.Logger
	options emitterOptions

	mu   sync.Mutex
	subs map[string]map[chan domain.Event]struct{}

	queue   chan domain.Event
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

func NewEmitter(opts ...EmitterOption) *Emitter {
	options := emitterOptions{
		logger:     slog.Default(),
		queueSize:  256,
		bufferSize: 16,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Emitter{
		logger:  options.logger.With(slog.String("caller", "Emitter")),
		options: options,
		subs:    make(map[string]map[chan domain.Event]struct{}),
	}
}

func (e *Emitter) Start() {
	if e.started {
		return
	}
	e.started = true

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.queue = make(chan domain.Event, e.options.queueSize)
	e.logger.Info("starting event emitter")

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.logger.Info("event emitter stopped")

		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-e.queue:
				e.dispatch(ctx, ev)
			}
		}
	}()
}

// Emit queues an event for fan-out. When the queue is full the event is
// dropped and logged; subscribers observe current state via the snapshot
// read path, events are advisory.
func (e *Emitter) Emit(ev domain.Event) {
	if !e.started {
		return
	}
	select {
	case e.queue <- ev:
	default:
		e.logger.Warn("event queue full, dropping event", slog.String("auctionID", ev.Auction()))
	}
}

// Subscribe returns a channel of events for one auction. The caller must
// call the returned cancel function when done.
func (e *Emitter) Subscribe(auctionID string) (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, e.options.bufferSize)

	e.mu.Lock()
	set := e.subs[auctionID]
	if set == nil {
		set = make(map[chan domain.Event]struct{})
		e.subs[auctionID] = set
	}
	set[ch] = struct{}{}
	e.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			if set, ok := e.subs[auctionID]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(e.subs, auctionID)
				}
			}
			e.mu.Unlock()
		})
	}
}

func (e *Emitter) dispatch(ctx context.Context, ev domain.Event) {
	auctionID := ev.Auction()

	e.mu.Lock()
	targets := make([]chan domain.Event, 0, len(e.subs[auctionID]))
	for ch := range e.subs[auctionID] {
		targets = append(targets, ch)
	}
	e.mu.Unlock()

	for _, ch := range targets {
		select {
		case ch <- ev:
		default:
			// Slow subscriber: drop rather than stall the dispatcher.
		}
	}

	if e.options.publisher != nil {
		payload, err := encodeEvent(ev)
		if err != nil {
			e.logger.Error("encode event", slog.Any("error", err))
			return
		}
		if err := e.options.publisher.Publish(ctx, auctionID, payload); err != nil {
			e.logger.Error("publish event", slog.String("auctionID", auctionID), slog.Any("error", err))
		}
	}
}

func (e *Emitter) Close() {
	if !e.started {
		return
	}
	e.started = false
	e.cancel()
	e.wg.Wait()
}
