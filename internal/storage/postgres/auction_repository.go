package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/chaolic6505/gavel/internal/domain"
)

// AuctionRepository is the ledger for the arbitration and lifecycle
// services. Row locks on the auctions table serialize writers inside a
// transaction; the version counter guards against anything slipping past
// the row lock.
type AuctionRepository struct {
	pool *pgxpool.Pool
}

func NewAuctionRepository(pool *pgxpool.Pool) *AuctionRepository {
	return &AuctionRepository{pool: pool}
}

func (r *AuctionRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const auctionColumns = `id, seller_id, category_id, title, description,
starting_price, reserve_price, min_bid_increment, current_price,
start_time, end_time, auto_extend_seconds, max_extensions, extensions,
status, current_winning_bid_id, version, created_at`

func (r *AuctionRepository) GetAuctionForUpdate(ctx context.Context, auctionID string) (domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1 FOR UPDATE`
	a, err := scanAuction(r.queryRow(ctx, query, auctionID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Auction{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Auction{}, domain.ErrAuctionNotFound
		}
		return domain.Auction{}, fmt.Errorf("get auction for update: %w", err)
	}
	return a, nil
}

func (r *AuctionRepository) GetSnapshot(ctx context.Context, auctionID string) (domain.Snapshot, error) {
	const query = `
SELECT id, status, current_price, current_winning_bid_id, start_time, end_time, version
FROM auctions
WHERE id = $1`

	var (
		s      domain.Snapshot
		status string
	)
	err := r.queryRow(ctx, query, auctionID).
		Scan(&s.AuctionID, &status, &s.CurrentPrice, &s.WinningBidID, &s.StartTime, &s.EndTime, &s.Version)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Snapshot{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Snapshot{}, domain.ErrAuctionNotFound
		}
		return domain.Snapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	s.Status = domain.AuctionStatus(status)
	return s, nil
}

func (r *AuctionRepository) FindBidByIdempotencyKey(ctx context.Context, auctionID, key string) (*domain.Bid, error) {
	const query = `
SELECT id, auction_id, bidder_id, amount, status, reject_reason, auction_version, idempotency_key, created_at
FROM bids
WHERE auction_id = $1 AND idempotency_key = $2`

	var (
		b      domain.Bid
		status string
	)
	err := r.queryRow(ctx, query, auctionID, key).
		Scan(&b.ID, &b.AuctionID, &b.BidderID, &b.Amount, &status, &b.RejectReason, &b.AuctionVersion, &b.IdempotencyKey, &b.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find bid by idempotency key: %w", err)
	}
	b.Status = domain.BidStatus(status)
	return &b, nil
}

func (r *AuctionRepository) CreateBid(ctx context.Context, bid domain.Bid) error {
	const stmt = `
INSERT INTO bids (id, auction_id, bidder_id, amount, status, reject_reason, auction_version, idempotency_key, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(ctx, stmt,
		bid.ID,
		bid.AuctionID,
		bid.BidderID,
		bid.Amount,
		bid.Status,
		bid.RejectReason,
		bid.AuctionVersion,
		bid.IdempotencyKey,
		bid.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrIdempotencyConflict
		}
		if isForeignKeyViolation(err) {
			return domain.ErrAuctionNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create bid: %w", err)
	}
	return nil
}

// UpdateAuctionOnBid writes the bid outcome back: price, winner pointer,
// possibly-extended deadline, extension count. The version predicate makes
// a lost update impossible even if a writer ever bypassed the row lock.
func (r *AuctionRepository) UpdateAuctionOnBid(ctx context.Context, a domain.Auction) error {
	const stmt = `
UPDATE auctions
SET current_price = $2,
    current_winning_bid_id = $3,
    end_time = $4,
    extensions = $5,
    version = version + 1
WHERE id = $1 AND version = $6`

	tag, err := r.exec(ctx, stmt, a.ID, a.CurrentPrice, a.WinningBidID, a.EndTime, a.Extensions, a.Version)
	if err != nil {
		if isSerializationFailure(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("update auction on bid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *AuctionRepository) UpdateAuctionStatus(ctx context.Context, a domain.Auction) error {
	const stmt = `
UPDATE auctions
SET status = $2,
    version = version + 1
WHERE id = $1 AND version = $3`

	tag, err := r.exec(ctx, stmt, a.ID, a.Status, a.Version)
	if err != nil {
		if isSerializationFailure(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("update auction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *AuctionRepository) ListDueForActivation(ctx context.Context, now time.Time, limit int) ([]string, error) {
	const query = `
SELECT id FROM auctions
WHERE status = 'pending' AND start_time <= $1
ORDER BY start_time
LIMIT $2`

	return r.listIDs(ctx, query, now, limit)
}

func (r *AuctionRepository) ListDueForClose(ctx context.Context, now time.Time, limit int) ([]string, error) {
	const query = `
SELECT id FROM auctions
WHERE status = 'active' AND end_time <= $1
ORDER BY end_time
LIMIT $2`

	return r.listIDs(ctx, query, now, limit)
}

func (r *AuctionRepository) listIDs(ctx context.Context, query string, now time.Time, limit int) ([]string, error) {
	rows, err := r.query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due auctions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan auction id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list due auctions: %w", err)
	}
	return ids, nil
}

func scanAuction(row pgx.Row) (domain.Auction, error) {
	var (
		a             domain.Auction
		reserve       decimal.NullDecimal
		extendSeconds int64
		status        string
	)
	err := row.Scan(
		&a.ID,
		&a.SellerID,
		&a.CategoryID,
		&a.Title,
		&a.Description,
		&a.StartingPrice,
		&reserve,
		&a.MinIncrement,
		&a.CurrentPrice,
		&a.StartTime,
		&a.EndTime,
		&extendSeconds,
		&a.MaxExtensions,
		&a.Extensions,
		&status,
		&a.WinningBidID,
		&a.Version,
		&a.CreatedAt,
	)
	if err != nil {
		return domain.Auction{}, err
	}
	if reserve.Valid {
		a.ReservePrice = &reserve.Decimal
	}
	a.ExtendWindow = time.Duration(extendSeconds) * time.Second
	a.Status = domain.AuctionStatus(status)
	return a, nil
}

func (r *AuctionRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *AuctionRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *AuctionRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
