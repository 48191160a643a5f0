package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/chaolic6505/gavel/internal/domain"
)

// Wire envelope for externally published events. Amounts travel as strings
// to keep decimal precision intact.
type eventEnvelope struct {
	Type      string    `json:"type"`
	AuctionID string    `json:"auction_id"`
	BidID     string    `json:"bid_id,omitempty"`
	BidderID  string    `json:"bidder_id,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	OldStatus string    `json:"old_status,omitempty"`
	NewStatus string    `json:"new_status,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	EndTime   time.Time `json:"end_time"`
	Extended  bool      `json:"extended,omitempty"`
}

func encodeEvent(ev domain.Event) ([]byte, error) {
	switch e := ev.(type) {
	case domain.BidAccepted:
		return json.Marshal(eventEnvelope{
			Type:      "bid_accepted",
			AuctionID: e.AuctionID,
			BidID:     e.Bid.ID,
			BidderID:  e.Bid.BidderID,
			Amount:    e.NewPrice.StringFixed(2),
			EndTime:   e.NewEndTime,
			Extended:  e.Extended,
		})
	case domain.AuctionStateChanged:
		return json.Marshal(eventEnvelope{
			Type:      "state_changed",
			AuctionID: e.AuctionID,
			OldStatus: string(e.OldStatus),
			NewStatus: string(e.NewStatus),
			Actor:     e.Actor,
			EndTime:   e.NewEndTime,
		})
	}
	return nil, fmt.Errorf("unknown event type %T", ev)
}
