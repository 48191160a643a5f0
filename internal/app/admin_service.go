package app

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chaolic6505/gavel/internal/clock"
	"github.com/chaolic6505/gavel/internal/domain"
)

const (
	defaultMinIncrement  = "1.00"
	defaultExtendWindow  = 5 * time.Minute
	defaultMaxExtensions = 10
)

type AdminRepository interface {
	CreateCategory(ctx context.Context, c domain.Category) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateAuction(ctx context.Context, a domain.Auction) error
	GetAuction(ctx context.Context, auctionID string) (domain.Auction, error)
	CreateItem(ctx context.Context, item domain.AuctionItem) error
	ListItemsByAuction(ctx context.Context, auctionID string) ([]domain.AuctionItem, error)
}

// AdminService covers the seller-facing CRUD around the bidding core:
// categories, auction drafts and their items.
type AdminService struct {
	repo  AdminRepository
	clock clock.Clock
}

func NewAdminService(repo AdminRepository, clk clock.Clock) *AdminService {
	return &AdminService{
		repo:  repo,
		clock: clk,
	}
}

type CreateCategoryInput struct {
	Name        string
	Description string
	Slug        string
}

func (s *AdminService) CreateCategory(ctx context.Context, in CreateCategoryInput) (domain.Category, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Category{}, domain.ErrCategoryNameRequired
	}
	slug := in.Slug
	if slug == "" {
		slug = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(in.Name), " ", "-"))
	}

	category := domain.Category{
		ID:          newID(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Slug:        slug,
		IsActive:    true,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return domain.Category{}, err
	}
	return category, nil
}

func (s *AdminService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

type CreateAuctionInput struct {
	SellerID      string
	CategoryID    string
	Title         string
	Description   string
	StartingPrice decimal.Decimal
	ReservePrice  *decimal.Decimal
	MinIncrement  decimal.Decimal
	StartTime     time.Time
	EndTime       time.Time
	ExtendWindow  time.Duration
	MaxExtensions int
}

// CreateAuction records a new auction in draft. The seller publishes it
// later through the lifecycle service.
func (s *AdminService) CreateAuction(ctx context.Context, in CreateAuctionInput) (domain.Auction, error) {
	if in.SellerID == "" || in.CategoryID == "" {
		return domain.Auction{}, domain.ErrInvalidID
	}
	if strings.TrimSpace(in.Title) == "" {
		return domain.Auction{}, domain.ErrTitleRequired
	}
	if in.StartingPrice.IsNegative() {
		return domain.Auction{}, domain.ErrInvalidPrice
	}
	if in.ReservePrice != nil && in.ReservePrice.IsNegative() {
		return domain.Auction{}, domain.ErrInvalidPrice
	}
	if !in.EndTime.After(in.StartTime) {
		return domain.Auction{}, domain.ErrInvalidTimeRange
	}

	increment := in.MinIncrement
	if increment.IsZero() {
		increment = decimal.RequireFromString(defaultMinIncrement)
	}
	if !increment.IsPositive() {
		return domain.Auction{}, domain.ErrInvalidPrice
	}

	window := in.ExtendWindow
	if window <= 0 {
		window = defaultExtendWindow
	}
	maxExtensions := in.MaxExtensions
	if maxExtensions <= 0 {
		maxExtensions = defaultMaxExtensions
	}

	auction := domain.Auction{
		ID:            newID(),
		SellerID:      in.SellerID,
		CategoryID:    in.CategoryID,
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		StartingPrice: in.StartingPrice,
		ReservePrice:  in.ReservePrice,
		MinIncrement:  increment,
		CurrentPrice:  in.StartingPrice,
		StartTime:     in.StartTime.UTC(),
		EndTime:       in.EndTime.UTC(),
		ExtendWindow:  window,
		MaxExtensions: maxExtensions,
		Status:        domain.AuctionStatusDraft,
		Version:       1,
		CreatedAt:     s.clock.Now(),
	}
	if err := s.repo.CreateAuction(ctx, auction); err != nil {
		return domain.Auction{}, err
	}
	return auction, nil
}

type CreateItemInput struct {
	AuctionID   string
	Name        string
	Description string
	Condition   string
	Quantity    int
}

func (s *AdminService) CreateItem(ctx context.Context, in CreateItemInput) (domain.AuctionItem, error) {
	if in.AuctionID == "" {
		return domain.AuctionItem{}, domain.ErrInvalidID
	}
	if strings.TrimSpace(in.Name) == "" {
		return domain.AuctionItem{}, domain.ErrItemNameRequired
	}
	quantity := in.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return domain.AuctionItem{}, domain.ErrInvalidQuantity
	}

	if _, err := s.repo.GetAuction(ctx, in.AuctionID); err != nil {
		return domain.AuctionItem{}, err
	}

	item := domain.AuctionItem{
		ID:          newID(),
		AuctionID:   in.AuctionID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Condition:   in.Condition,
		Quantity:    quantity,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return domain.AuctionItem{}, err
	}
	return item, nil
}

func (s *AdminService) ListItems(ctx context.Context, auctionID string) ([]domain.AuctionItem, error) {
	if auctionID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListItemsByAuction(ctx, auctionID)
}
