package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chaolic6505/gavel/internal/domain"
)

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) CreateCategory(ctx context.Context, c domain.Category) error {
	const stmt = `
INSERT INTO categories (id, name, description, slug, is_active, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.exec(ctx, stmt, c.ID, c.Name, c.Description, c.Slug, c.IsActive, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCategoryExists
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const query = `
SELECT id, name, description, slug, is_active, created_at
FROM categories
ORDER BY name`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Slug, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *AdminRepository) CreateAuction(ctx context.Context, a domain.Auction) error {
	const stmt = `
INSERT INTO auctions (id, seller_id, category_id, title, description,
	starting_price, reserve_price, min_bid_increment, current_price,
	start_time, end_time, auto_extend_seconds, max_extensions, extensions,
	status, current_winning_bid_id, version, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	var reserve any
	if a.ReservePrice != nil {
		reserve = *a.ReservePrice
	}

	_, err := r.exec(ctx, stmt,
		a.ID,
		a.SellerID,
		a.CategoryID,
		a.Title,
		a.Description,
		a.StartingPrice,
		reserve,
		a.MinIncrement,
		a.CurrentPrice,
		a.StartTime,
		a.EndTime,
		int64(a.ExtendWindow/time.Second),
		a.MaxExtensions,
		a.Extensions,
		a.Status,
		a.WinningBidID,
		a.Version,
		a.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCategoryNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create auction: %w", err)
	}
	return nil
}

func (r *AdminRepository) GetAuction(ctx context.Context, auctionID string) (domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`
	a, err := scanAuction(r.queryRow(ctx, query, auctionID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Auction{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Auction{}, domain.ErrAuctionNotFound
		}
		return domain.Auction{}, fmt.Errorf("get auction: %w", err)
	}
	return a, nil
}

func (r *AdminRepository) CreateItem(ctx context.Context, item domain.AuctionItem) error {
	const stmt = `
INSERT INTO auction_items (id, auction_id, name, description, condition, quantity, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.exec(ctx, stmt,
		item.ID,
		item.AuctionID,
		item.Name,
		item.Description,
		item.Condition,
		item.Quantity,
		item.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrAuctionNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create auction item: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListItemsByAuction(ctx context.Context, auctionID string) ([]domain.AuctionItem, error) {
	const query = `
SELECT id, auction_id, name, description, condition, quantity, created_at
FROM auction_items
WHERE auction_id = $1
ORDER BY created_at`

	rows, err := r.query(ctx, query, auctionID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list auction items: %w", err)
	}
	defer rows.Close()

	var items []domain.AuctionItem
	for rows.Next() {
		var it domain.AuctionItem
		if err := rows.Scan(&it.ID, &it.AuctionID, &it.Name, &it.Description, &it.Condition, &it.Quantity, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan auction item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list auction items: %w", err)
	}
	return items, nil
}

func (r *AdminRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *AdminRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *AdminRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
