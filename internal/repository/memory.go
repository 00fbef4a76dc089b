package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"farmtrade-bidding/internal/biddingerrors"
	model "farmtrade-bidding/internal/models"

	"github.com/shopspring/decimal"
)

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB.
// Bids are keyed itemID -> userID -> Bid, so the one-bid-per-user-per-item
// invariant holds structurally.
type MemoryRepo struct {
	mu    sync.RWMutex
	bids  map[string]map[string]model.Bid // key: itemID -> userID -> bid
	items map[string]model.Item           // key: itemID -> item
	users map[string]model.User           // key: userID -> user
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		bids:  make(map[string]map[string]model.Bid),
		items: make(map[string]model.Item),
		users: make(map[string]model.User),
	}
}

// GetItem returns the item with the given ID
func (r *MemoryRepo) GetItem(_ context.Context, itemID string) (model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[itemID]
	if !ok {
		return model.Item{}, fmt.Errorf("get item %s: %w", itemID, biddingerrors.ErrItemNotFound)
	}
	return item, nil
}

// GetUser returns the user with the given ID
func (r *MemoryRepo) GetUser(_ context.Context, userID string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, biddingerrors.ErrUserNotFound)
	}
	return user, nil
}

// FindBid returns the existing bid for (itemID, userID), if any
func (r *MemoryRepo) FindBid(_ context.Context, itemID, userID string) (model.Bid, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bid, ok := r.bids[itemID][userID]
	return bid, ok, nil
}

// UpsertBid creates or replaces the bid keyed by (ItemID, UserID)
func (r *MemoryRepo) UpsertBid(_ context.Context, bid model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[bid.ItemID]; !ok {
		return fmt.Errorf("upsert bid for item %s: %w", bid.ItemID, biddingerrors.ErrItemNotFound)
	}

	byUser, ok := r.bids[bid.ItemID]
	if !ok {
		byUser = make(map[string]model.Bid)
		r.bids[bid.ItemID] = byUser
	}
	byUser[bid.UserID] = bid

	return nil
}

// GetBidsByItem returns all bids for an item, descending by amount,
// ties broken by earliest PlacedAt
func (r *MemoryRepo) GetBidsByItem(_ context.Context, itemID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byUser := r.bids[itemID]
	bids := make([]model.Bid, 0, len(byUser))
	for _, b := range byUser {
		bids = append(bids, b)
	}
	sortBidsByAmountDesc(bids)

	return bids, nil
}

// GetMaxBid returns the highest bid amount for an item, or zero when none
func (r *MemoryRepo) GetMaxBid(_ context.Context, itemID string) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	max := decimal.Zero
	for _, b := range r.bids[itemID] {
		if b.Amount.GreaterThan(max) {
			max = b.Amount
		}
	}
	return max, nil
}

// SetBidActive updates the item's bidding flag and returns the updated item
func (r *MemoryRepo) SetBidActive(_ context.Context, itemID string, active bool) (model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[itemID]
	if !ok {
		return model.Item{}, fmt.Errorf("set bid active for item %s: %w", itemID, biddingerrors.ErrItemNotFound)
	}

	item.IsBidActive = active
	r.items[itemID] = item
	return item, nil
}

// GetBidsByUser returns all bids placed by a user, newest first
func (r *MemoryRepo) GetBidsByUser(_ context.Context, userID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var bids []model.Bid
	for _, byUser := range r.bids {
		if b, ok := byUser[userID]; ok {
			bids = append(bids, b)
		}
	}
	sort.Slice(bids, func(i, j int) bool {
		return bids[i].PlacedAt.After(bids[j].PlacedAt)
	})

	if bids == nil {
		bids = []model.Bid{}
	}
	return bids, nil
}

// GetItemsByFarmer returns all items listed by a farmer
func (r *MemoryRepo) GetItemsByFarmer(_ context.Context, farmerID string) ([]model.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := []model.Item{}
	for _, item := range r.items {
		if item.FarmerID == farmerID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ItemID < items[j].ItemID
	})
	return items, nil
}

// AddItem adds an item to the repository. Used for seeding and tests.
func (r *MemoryRepo) AddItem(item model.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ItemID] = item
}

// AddUser adds a user to the repository. Used for seeding and tests.
func (r *MemoryRepo) AddUser(user model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.UserID] = user
}

// sortBidsByAmountDesc orders bids highest amount first; equal amounts
// keep the earliest placement ahead.
func sortBidsByAmountDesc(bids []model.Bid) {
	sort.Slice(bids, func(i, j int) bool {
		cmp := bids[i].Amount.Cmp(bids[j].Amount)
		if cmp != 0 {
			return cmp > 0
		}
		return bids[i].PlacedAt.Before(bids[j].PlacedAt)
	})
}
