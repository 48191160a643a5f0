package domain

import "time"

// AuctionItem belongs to exactly one auction and is read-mostly; it never
// participates in the bid critical section.
type AuctionItem struct {
	ID          string
	AuctionID   string
	Name        string
	Description string
	Condition   string
	Quantity    int
	CreatedAt   time.Time
}
