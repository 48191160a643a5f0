package domain

import "time"

// Category organizes auctions; it has no lifecycle interaction with bidding.
type Category struct {
	ID          string
	Name        string
	Description string
	Slug        string
	IsActive    bool
	CreatedAt   time.Time
}
