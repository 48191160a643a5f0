package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/chaolic6505/gavel/internal/domain"
)

const (
	codeMethodNotAllowed     = "method_not_allowed"
	codeNotFound             = "not_found"
	codeInvalidRequestBody   = "invalid_request_body"
	codeInvalidID            = "invalid_id"
	codeInvalidAmountFormat  = "invalid_amount_format"
	codeTitleRequired        = "title_required"
	codeCategoryNameRequired = "category_name_required"
	codeItemNameRequired     = "item_name_required"
	codeInvalidPrice         = "invalid_price"
	codeInvalidTimeRange     = "invalid_time_range"
	codeInvalidQuantity      = "invalid_quantity"
	codeInvalidTime          = "invalid_time_format"
	codeIdempotencyRequired  = "idempotency_key_required"
	codeIdempotencyConflict  = "idempotency_conflict"
	codeAuctionNotFound      = "auction_not_found"
	codeCategoryNotFound     = "category_not_found"
	codeCategoryExists       = "category_already_exists"
	codeInvalidTransition    = "invalid_transition"
	codeConflict             = "conflict"
	codeForbidden            = "forbidden"
	codeStorageUnavailable   = "storage_unavailable"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// rejectionResponse tells the bidder why the bid lost and what it would take
// to win right now.
type rejectionResponse struct {
	Error        string    `json:"error"`
	Code         string    `json:"code"`
	AuctionID    string    `json:"auction_id"`
	CurrentPrice string    `json:"current_price"`
	MinimumBid   string    `json:"minimum_bid"`
	EndTime      time.Time `json:"end_time"`
}

func writeRejection(w http.ResponseWriter, rej *domain.RejectionError) {
	status := http.StatusUnprocessableEntity
	if domain.RejectCode(rej.Reason) == domain.RejectCodeBidTooLow {
		status = http.StatusConflict
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rejectionResponse{
		Error:        rej.Error(),
		Code:         domain.RejectCode(rej.Reason),
		AuctionID:    rej.AuctionID,
		CurrentPrice: rej.CurrentPrice.StringFixed(2),
		MinimumBid:   rej.MinimumBid.StringFixed(2),
		EndTime:      rej.EndTime,
	})
}
