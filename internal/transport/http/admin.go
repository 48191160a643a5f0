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

// AdminCategoryService is the minimal interface needed for category endpoints.
type AdminCategoryService interface {
	CreateCategory(ctx context.Context, in app.CreateCategoryInput) (domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// AdminAuctionService is the minimal interface needed for auction creation.
type AdminAuctionService interface {
	CreateAuction(ctx context.Context, in app.CreateAuctionInput) (domain.Auction, error)
}

// AdminItemService is the minimal interface needed for auction item endpoints.
type AdminItemService interface {
	CreateItem(ctx context.Context, in app.CreateItemInput) (domain.AuctionItem, error)
	ListItems(ctx context.Context, auctionID string) ([]domain.AuctionItem, error)
}

// HandleAdminCategories returns an HTTP handler for category creation/listing.
func HandleAdminCategories(svc AdminCategoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			categories, err := svc.ListCategories(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			resp := make([]categoryResponse, 0, len(categories))
			for _, c := range categories {
				resp = append(resp, categoryResponse{
					ID:       c.ID,
					Name:     c.Name,
					Slug:     c.Slug,
					IsActive: c.IsActive,
				})
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
			return
		case http.MethodPost:
			var req createCategoryRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			category, err := svc.CreateCategory(r.Context(), app.CreateCategoryInput{
				Name:        req.Name,
				Description: req.Description,
				Slug:        req.Slug,
			})
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrCategoryNameRequired):
					writeError(w, http.StatusBadRequest, codeCategoryNameRequired, err.Error())
				case errors.Is(err, domain.ErrCategoryExists):
					writeError(w, http.StatusConflict, codeCategoryExists, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
				return
			}

			resp := categoryResponse{
				ID:       category.ID,
				Name:     category.Name,
				Slug:     category.Slug,
				IsActive: category.IsActive,
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(resp)
			return
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
	}
}

// HandleAdminAuctions returns an HTTP handler for creating auction drafts.
func HandleAdminAuctions(svc AdminAuctionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createAuctionRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		in, err := req.toInput()
		if err != nil {
			var code string
			switch {
			case errors.Is(err, errInvalidAmountFormat):
				code = codeInvalidAmountFormat
			case errors.Is(err, errInvalidTimeFormat):
				code = codeInvalidTime
			default:
				code = codeInvalidRequestBody
			}
			writeError(w, http.StatusBadRequest, code, err.Error())
			return
		}

		auction, err := svc.CreateAuction(r.Context(), in)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidID):
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			case errors.Is(err, domain.ErrTitleRequired):
				writeError(w, http.StatusBadRequest, codeTitleRequired, err.Error())
			case errors.Is(err, domain.ErrInvalidPrice):
				writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
			case errors.Is(err, domain.ErrInvalidTimeRange):
				writeError(w, http.StatusBadRequest, codeInvalidTimeRange, err.Error())
			case errors.Is(err, domain.ErrCategoryNotFound):
				writeError(w, http.StatusNotFound, codeCategoryNotFound, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		resp := auctionResponse{
			ID:            auction.ID,
			SellerID:      auction.SellerID,
			CategoryID:    auction.CategoryID,
			Title:         auction.Title,
			Status:        string(auction.Status),
			StartingPrice: auction.StartingPrice.StringFixed(2),
			CurrentPrice:  auction.CurrentPrice.StringFixed(2),
			MinIncrement:  auction.MinIncrement.StringFixed(2),
			StartTime:     auction.StartTime,
			EndTime:       auction.EndTime,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleAdminItems returns an HTTP handler for item creation/listing under an
// auction.
func HandleAdminItems(svc AdminItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auctionID, ok := parseAdminAuctionItemsPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch r.Method {
		case http.MethodGet:
			items, err := svc.ListItems(r.Context(), auctionID)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrInvalidID):
					writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
				case errors.Is(err, domain.ErrAuctionNotFound):
					writeError(w, http.StatusNotFound, codeAuctionNotFound, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
				return
			}
			resp := make([]itemResponse, 0, len(items))
			for _, it := range items {
				resp = append(resp, itemResponse{
					ID:        it.ID,
					AuctionID: it.AuctionID,
					Name:      it.Name,
					Condition: it.Condition,
					Quantity:  it.Quantity,
				})
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
			return
		case http.MethodPost:
			var req createItemRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			item, err := svc.CreateItem(r.Context(), app.CreateItemInput{
				AuctionID:   auctionID,
				Name:        req.Name,
				Description: req.Description,
				Condition:   req.Condition,
				Quantity:    req.Quantity,
			})
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrInvalidID):
					writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
				case errors.Is(err, domain.ErrItemNameRequired):
					writeError(w, http.StatusBadRequest, codeItemNameRequired, err.Error())
				case errors.Is(err, domain.ErrInvalidQuantity):
					writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
				case errors.Is(err, domain.ErrAuctionNotFound):
					writeError(w, http.StatusNotFound, codeAuctionNotFound, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
				return
			}

			resp := itemResponse{
				ID:        item.ID,
				AuctionID: item.AuctionID,
				Name:      item.Name,
				Condition: item.Condition,
				Quantity:  item.Quantity,
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(resp)
			return
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
	}
}

var (
	errInvalidAmountFormat = errors.New("invalid amount format")
	errInvalidTimeFormat   = errors.New("invalid time format")
)

type createCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Slug        string `json:"slug,omitempty"`
}

type categoryResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	IsActive bool   `json:"is_active"`
}

type createAuctionRequest struct {
	SellerID      string `json:"seller_id"`
	CategoryID    string `json:"category_id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	StartingPrice string `json:"starting_price"`
	ReservePrice  string `json:"reserve_price,omitempty"`
	MinIncrement  string `json:"min_bid_increment,omitempty"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	ExtendSeconds int    `json:"auto_extend_seconds,omitempty"`
	MaxExtensions int    `json:"max_extensions,omitempty"`
}

func (r createAuctionRequest) toInput() (app.CreateAuctionInput, error) {
	starting, err := decimal.NewFromString(r.StartingPrice)
	if err != nil {
		return app.CreateAuctionInput{}, errInvalidAmountFormat
	}
	var reserve *decimal.Decimal
	if r.ReservePrice != "" {
		d, err := decimal.NewFromString(r.ReservePrice)
		if err != nil {
			return app.CreateAuctionInput{}, errInvalidAmountFormat
		}
		reserve = &d
	}
	var increment decimal.Decimal
	if r.MinIncrement != "" {
		increment, err = decimal.NewFromString(r.MinIncrement)
		if err != nil {
			return app.CreateAuctionInput{}, errInvalidAmountFormat
		}
	}

	startTime, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return app.CreateAuctionInput{}, errInvalidTimeFormat
	}
	endTime, err := time.Parse(time.RFC3339, r.EndTime)
	if err != nil {
		return app.CreateAuctionInput{}, errInvalidTimeFormat
	}

	return app.CreateAuctionInput{
		SellerID:      r.SellerID,
		CategoryID:    r.CategoryID,
		Title:         r.Title,
		Description:   r.Description,
		StartingPrice: starting,
		ReservePrice:  reserve,
		MinIncrement:  increment,
		StartTime:     startTime,
		EndTime:       endTime,
		ExtendWindow:  time.Duration(r.ExtendSeconds) * time.Second,
		MaxExtensions: r.MaxExtensions,
	}, nil
}

type auctionResponse struct {
	ID            string    `json:"id"`
	SellerID      string    `json:"seller_id"`
	CategoryID    string    `json:"category_id"`
	Title         string    `json:"title"`
	Status        string    `json:"status"`
	StartingPrice string    `json:"starting_price"`
	CurrentPrice  string    `json:"current_price"`
	MinIncrement  string    `json:"min_bid_increment"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
}

type createItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Condition   string `json:"condition,omitempty"`
	Quantity    int    `json:"quantity,omitempty"`
}

type itemResponse struct {
	ID        string `json:"id"`
	AuctionID string `json:"auction_id"`
	Name      string `json:"name"`
	Condition string `json:"condition"`
	Quantity  int    `json:"quantity"`
}

func parseAdminAuctionItemsPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 4 {
		return "", false
	}
	if parts[0] != "admin" || parts[1] != "auctions" || parts[3] != "items" {
		return "", false
	}
	if parts[2] == "" {
		return "", false
	}
	return parts[2], true
}
