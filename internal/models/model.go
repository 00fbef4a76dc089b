package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a participant in the marketplace (farmer or buyer)
type User struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Item represents a produce listing that can be bid on
type Item struct {
	ItemID      string    `json:"item_id"`
	FarmerID    string    `json:"farmer_id"`
	Category    string    `json:"category"`
	Name        string    `json:"name"`
	Quantity    float64   `json:"quantity"`
	Unit        string    `json:"unit"`
	IsOrganic   bool      `json:"is_organic"`
	Description string    `json:"description"`
	IsBidActive bool      `json:"is_bid_active"`
	DateAdded   time.Time `json:"date_added"`
}

// Bid represents a user's standing offer on an item.
// There is at most one Bid per (ItemID, UserID) pair; placing again
// overwrites Amount and PlacedAt in place.
type Bid struct {
	BidID    string          `json:"bid_id"`
	ItemID   string          `json:"item_id"`
	UserID   string          `json:"user_id"`
	Amount   decimal.Decimal `json:"amount"`
	PlacedAt time.Time       `json:"placed_at"`
}
