package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chaolic6505/gavel/internal/app"
	"github.com/chaolic6505/gavel/internal/domain"
)

const idempotencyHeader = "Idempotency-Key"

// BidPlacer is the minimal interface needed to place a bid.
type BidPlacer interface {
	PlaceBid(ctx context.Context, in app.PlaceBidInput) (app.PlaceBidResult, error)
}

// HandlePlaceBid returns an HTTP handler for placing bids on an auction.
func HandlePlaceBid(svc BidPlacer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		auctionID, ok := parseAuctionBidsPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		key := r.Header.Get(idempotencyHeader)
		if key == "" {
			writeError(w, http.StatusBadRequest, codeIdempotencyRequired, domain.ErrIdempotencyKeyRequired.Error())
			return
		}

		var req placeBidRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.BidderID == "" {
			writeError(w, http.StatusBadRequest, codeInvalidID, domain.ErrInvalidID.Error())
			return
		}
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidAmountFormat, "invalid amount format")
			return
		}

		res, err := svc.PlaceBid(r.Context(), app.PlaceBidInput{
			AuctionID:      auctionID,
			BidderID:       req.BidderID,
			Amount:         amount,
			IdempotencyKey: key,
		})
		if err != nil {
			var rej *domain.RejectionError
			switch {
			case errors.As(err, &rej):
				writeRejection(w, rej)
			case errors.Is(err, domain.ErrInvalidID):
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			case errors.Is(err, domain.ErrIdempotencyKeyRequired):
				writeError(w, http.StatusBadRequest, codeIdempotencyRequired, err.Error())
			case errors.Is(err, domain.ErrAuctionNotFound):
				writeError(w, http.StatusNotFound, codeAuctionNotFound, err.Error())
			case errors.Is(err, domain.ErrIdempotencyConflict):
				writeError(w, http.StatusConflict, codeIdempotencyConflict, err.Error())
			case errors.Is(err, domain.ErrConflict):
				writeError(w, http.StatusConflict, codeConflict, err.Error())
			case errors.Is(err, domain.ErrStorageUnavailable):
				writeError(w, http.StatusServiceUnavailable, codeStorageUnavailable, "storage unavailable")
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		resp := placeBidResponse{
			ID:           res.Bid.ID,
			AuctionID:    res.Bid.AuctionID,
			Status:       string(res.Bid.Status),
			Amount:       res.Bid.Amount.StringFixed(2),
			CurrentPrice: res.CurrentPrice.StringFixed(2),
			EndTime:      res.EndTime,
			Extended:     res.Extended,
		}

		w.Header().Set("Content-Type", "application/json")
		if res.Replayed {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusCreated)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type placeBidRequest struct {
	BidderID string `json:"bidder_id"`
	Amount   string `json:"amount"`
}

type placeBidResponse struct {
	ID           string    `json:"id"`
	AuctionID    string    `json:"auction_id"`
	Status       string    `json:"status"`
	Amount       string    `json:"amount"`
	CurrentPrice string    `json:"current_price"`
	EndTime      time.Time `json:"end_time"`
	Extended     bool      `json:"extended"`
}

func parseAuctionBidsPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != "auctions" || parts[2] != "bids" {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
