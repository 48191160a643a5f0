package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/chaolic6505/gavel/internal/app"
	"github.com/chaolic6505/gavel/internal/clock"
	"github.com/chaolic6505/gavel/internal/domain"
	"github.com/chaolic6505/gavel/internal/lock"
	"github.com/chaolic6505/gavel/internal/storage/postgres"
	"github.com/chaolic6505/gavel/internal/testutil"
)

func TestPlaceBid_HTTPIntegration(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := postgres.NewAuctionRepository(pool)
	svc := app.NewBidService(repo, lock.NewMemory(), clock.NewSystem(), nil)

	categoryID := testutil.InsertCategory(t, ctx, pool, "watches")
	sellerID := uuid.NewString()
	auctionID := testutil.InsertAuction(t, ctx, pool, testutil.TestAuction(sellerID, categoryID))
	bidderID := uuid.NewString()

	mux := http.NewServeMux()
	mux.Handle("/auctions/", HandlePlaceBid(svc))

	postBid := func(body string, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auctions/"+auctionID+"/bids", bytes.NewBufferString(body))
		req.Header.Set(idempotencyHeader, key)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	body := `{"bidder_id":"` + bidderID + `","amount":"100.00"}`
	rec := postBid(body, "idem-1")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (body %s)", rec.Code, rec.Body.String())
	}

	var created placeBidResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Status != string(domain.BidStatusAccepted) {
		t.Fatalf("expected accepted, got %s", created.Status)
	}
	if created.CurrentPrice != "100.00" {
		t.Fatalf("expected price 100.00, got %s", created.CurrentPrice)
	}

	// Same key replays the original outcome without a second row.
	rec2 := postBid(body, "idem-1")
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected status 200 on replay, got %d", rec2.Code)
	}
	var replayed placeBidResponse
	if err := json.NewDecoder(rec2.Body).Decode(&replayed); err != nil {
		t.Fatalf("decode replay: %v", err)
	}
	if replayed.ID != created.ID {
		t.Fatalf("expected same bid id on replay")
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM bids WHERE auction_id = $1`, auctionID).Scan(&count); err != nil {
		t.Fatalf("count bids: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 bid row, got %d", count)
	}

	// Same key with a different amount is a conflict.
	rec3 := postBid(`{"bidder_id":"`+bidderID+`","amount":"120.00"}`, "idem-1")
	if rec3.Code != http.StatusConflict {
		t.Fatalf("expected status 409 on idempotency conflict, got %d", rec3.Code)
	}

	// A losing amount gets the structured rejection payload.
	rec4 := postBid(`{"bidder_id":"`+uuid.NewString()+`","amount":"100.50"}`, "idem-2")
	if rec4.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for bid_too_low, got %d (body %s)", rec4.Code, rec4.Body.String())
	}
	var rejection rejectionResponse
	if err := json.NewDecoder(rec4.Body).Decode(&rejection); err != nil {
		t.Fatalf("decode rejection: %v", err)
	}
	if rejection.Code != domain.RejectCodeBidTooLow {
		t.Fatalf("expected bid_too_low, got %s", rejection.Code)
	}
	if rejection.MinimumBid != "101.00" {
		t.Fatalf("expected minimum bid 101.00, got %s", rejection.MinimumBid)
	}

	// The seller cannot outbid on their own auction.
	rec5 := postBid(`{"bidder_id":"`+sellerID+`","amount":"150.00"}`, "idem-3")
	if rec5.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422 for self_bid, got %d", rec5.Code)
	}
}
