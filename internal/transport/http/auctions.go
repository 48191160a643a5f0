package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/chaolic6505/gavel/internal/app"
	"github.com/chaolic6505/gavel/internal/domain"
)

// SnapshotReader is the minimal interface needed to read auction state.
type SnapshotReader interface {
	Snapshot(ctx context.Context, auctionID string) (domain.Snapshot, error)
}

// Transitioner is the minimal interface needed to change auction status.
type Transitioner interface {
	Transition(ctx context.Context, in app.TransitionInput) (domain.Auction, error)
}

// HandleAuction returns an HTTP handler for the auction read path.
func HandleAuction(svc SnapshotReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		auctionID, ok := parseAuctionPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		snap, err := svc.Snapshot(r.Context(), auctionID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidID):
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			case errors.Is(err, domain.ErrAuctionNotFound):
				writeError(w, http.StatusNotFound, codeAuctionNotFound, err.Error())
			case errors.Is(err, domain.ErrStorageUnavailable):
				writeError(w, http.StatusServiceUnavailable, codeStorageUnavailable, "storage unavailable")
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		resp := snapshotResponse{
			AuctionID:    snap.AuctionID,
			Status:       string(snap.Status),
			CurrentPrice: snap.CurrentPrice.StringFixed(2),
			WinningBidID: snap.WinningBidID,
			StartTime:    snap.StartTime,
			EndTime:      snap.EndTime,
			Version:      snap.Version,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleTransition returns an HTTP handler for seller/admin status changes.
func HandleTransition(svc Transitioner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		auctionID, ok := parseAuctionTransitionPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		var req transitionRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.Status == "" {
			writeError(w, http.StatusBadRequest, codeInvalidTransition, "status is required")
			return
		}

		auction, err := svc.Transition(r.Context(), app.TransitionInput{
			AuctionID: auctionID,
			To:        domain.AuctionStatus(req.Status),
			Actor:     req.Actor,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidID):
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			case errors.Is(err, domain.ErrAuctionNotFound):
				writeError(w, http.StatusNotFound, codeAuctionNotFound, err.Error())
			case errors.Is(err, domain.ErrInvalidTransition):
				writeError(w, http.StatusConflict, codeInvalidTransition, err.Error())
			case errors.Is(err, domain.ErrConflict):
				writeError(w, http.StatusConflict, codeConflict, err.Error())
			case errors.Is(err, domain.ErrStorageUnavailable):
				writeError(w, http.StatusServiceUnavailable, codeStorageUnavailable, "storage unavailable")
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		resp := transitionResponse{
			AuctionID: auction.ID,
			Status:    string(auction.Status),
			EndTime:   auction.EndTime,
			Version:   auction.Version,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type snapshotResponse struct {
	AuctionID    string    `json:"auction_id"`
	Status       string    `json:"status"`
	CurrentPrice string    `json:"current_price"`
	WinningBidID *string   `json:"winning_bid_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Version      int64     `json:"version"`
}

type transitionRequest struct {
	Status string `json:"status"`
	Actor  string `json:"actor,omitempty"`
}

type transitionResponse struct {
	AuctionID string    `json:"auction_id"`
	Status    string    `json:"status"`
	EndTime   time.Time `json:"end_time"`
	Version   int64     `json:"version"`
}

func parseAuctionPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 {
		return "", false
	}
	if parts[0] != "auctions" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func parseAuctionTransitionPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != "auctions" || parts[2] != "transition" {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
