package notify

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/goleak"

	"github.com/chaolic6505/gavel/internal/domain"
)

func TestEmitter_SubscribeAndEmit(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := NewEmitter()
	e.Start()
	defer e.Close()

	ch, cancel := e.Subscribe("auction-1")
	defer cancel()
	other, cancelOther := e.Subscribe("auction-2")
	defer cancelOther()

	ev := domain.BidAccepted{
		AuctionID:  "auction-1",
		Bid:        domain.Bid{ID: "bid-1", AuctionID: "auction-1", BidderID: "bidder-1"},
		NewPrice:   decimal.RequireFromString("110.00"),
		NewEndTime: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	e.Emit(ev)

	select {
	case got := <-ch:
		accepted, ok := got.(domain.BidAccepted)
		if !ok {
			t.Fatalf("expected BidAccepted, got %T", got)
		}
		if accepted.Bid.ID != "bid-1" {
			t.Fatalf("expected bid-1, got %s", accepted.Bid.ID)
		}
	case <-time.After(time.Second):
		t.Fatalf("subscriber never received the event")
	}

	select {
	case got := <-other:
		t.Fatalf("auction-2 subscriber received foreign event %v", got)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestEmitter_CancelStopsDelivery(t *testing.T) {
	defer goleak.VerifyNone(t)

	e := NewEmitter()
	e.Start()
	defer e.Close()

	ch, cancel := e.Subscribe("auction-1")
	cancel()
	cancel()

	e.Emit(domain.AuctionStateChanged{
		AuctionID: "auction-1",
		OldStatus: domain.AuctionStatusActive,
		NewStatus: domain.AuctionStatusEnded,
	})

	select {
	case got, ok := <-ch:
		if ok {
			t.Fatalf("expected no delivery after cancel, got %v", got)
		}
	case <-time.After(20 * time.Millisecond):
	}
}

func TestEmitter_EmitBeforeStartIsNoop(t *testing.T) {
	e := NewEmitter()
	e.Emit(domain.AuctionStateChanged{AuctionID: "auction-1"})
	e.Close()
}

func TestEmitter_PublishesToBroker(t *testing.T) {
	defer goleak.VerifyNone(t)

	pub := &capturePublisher{done: make(chan struct{})}
	e := NewEmitter(WithPublisher(pub))
	e.Start()
	defer e.Close()

	e.Emit(domain.BidAccepted{
		AuctionID:  "auction-1",
		Bid:        domain.Bid{ID: "bid-1", BidderID: "bidder-1"},
		NewPrice:   decimal.RequireFromString("110.00"),
		NewEndTime: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Extended:   true,
	})

	select {
	case <-pub.done:
	case <-time.After(time.Second):
		t.Fatalf("publisher never invoked")
	}

	auctionID, payload := pub.last()
	if auctionID != "auction-1" {
		t.Fatalf("expected auction-1, got %s", auctionID)
	}

	var envelope map[string]any
	if err := json.Unmarshal(payload, &envelope); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if envelope["type"] != "bid_accepted" {
		t.Fatalf("expected type bid_accepted, got %v", envelope["type"])
	}
	if envelope["amount"] != "110.00" {
		t.Fatalf("expected amount 110.00, got %v", envelope["amount"])
	}
	if envelope["extended"] != true {
		t.Fatalf("expected extended true, got %v", envelope["extended"])
	}
}

func TestEncodeEvent_StateChanged(t *testing.T) {
	t.Parallel()

	payload, err := encodeEvent(domain.AuctionStateChanged{
		AuctionID:  "auction-1",
		OldStatus:  domain.AuctionStatusActive,
		NewStatus:  domain.AuctionStatusSold,
		Actor:      "admin-1",
		NewEndTime: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var envelope map[string]any
	if err := json.Unmarshal(payload, &envelope); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if envelope["type"] != "state_changed" {
		t.Fatalf("expected type state_changed, got %v", envelope["type"])
	}
	if envelope["old_status"] != "active" || envelope["new_status"] != "sold" {
		t.Fatalf("unexpected statuses: %v -> %v", envelope["old_status"], envelope["new_status"])
	}
	if envelope["actor"] != "admin-1" {
		t.Fatalf("expected actor admin-1, got %v", envelope["actor"])
	}
}

type capturePublisher struct {
	mu        sync.Mutex
	auctionID string
	payload   []byte
	done      chan struct{}
	once      sync.Once
}

func (p *capturePublisher) Publish(_ context.Context, auctionID string, payload []byte) error {
	p.mu.Lock()
	p.auctionID = auctionID
	p.payload = append([]byte{}, payload...)
	p.mu.Unlock()
	p.once.Do(func() { close(p.done) })
	return nil
}

func (p *capturePublisher) last() (string, []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.auctionID, p.payload
}
