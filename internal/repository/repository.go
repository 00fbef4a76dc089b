package repository

import (
	"context"

	model "farmtrade-bidding/internal/models"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// AuctionDB defines the storage interface for the bidding core: bid
// records keyed by (item, user), the per-item bidding lifecycle flag,
// and the item/user directory lookups placement validation needs.
type AuctionDB interface {
	GetItem(ctx context.Context, itemID string) (model.Item, error)
	GetUser(ctx context.Context, userID string) (model.User, error)

	// FindBid reports the caller's existing bid for an item, if any.
	// A missing bid is not an error; found is false.
	FindBid(ctx context.Context, itemID, userID string) (model.Bid, bool, error)

	// UpsertBid atomically creates or replaces the bid keyed by
	// (bid.ItemID, bid.UserID).
	UpsertBid(ctx context.Context, bid model.Bid) error

	// GetBidsByItem returns all bids for an item, descending by amount,
	// ties broken by earliest PlacedAt. Empty slice when none.
	GetBidsByItem(ctx context.Context, itemID string) ([]model.Bid, error)

	// GetMaxBid returns the highest bid amount for an item, or
	// decimal.Zero when the item has no bids.
	GetMaxBid(ctx context.Context, itemID string) (decimal.Decimal, error)

	// SetBidActive updates the item's bidding flag and returns the
	// updated item. Setting the current value again is a no-op success.
	SetBidActive(ctx context.Context, itemID string, active bool) (model.Item, error)

	GetBidsByUser(ctx context.Context, userID string) ([]model.Bid, error)
	GetItemsByFarmer(ctx context.Context, farmerID string) ([]model.Item, error)
}
