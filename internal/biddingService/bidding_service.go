package bidding

import (
	"context"
	"fmt"
	"math"
	"time"

	"farmtrade-bidding/internal/biddingerrors"
	model "farmtrade-bidding/internal/models"
	"farmtrade-bidding/internal/repository"
	"farmtrade-bidding/utils"

	"github.com/shopspring/decimal"
)

// BiddingService defines the business logic for auction bidding. It is
// the only component that creates or mutates bid records.
type BiddingService struct {
	repo      repository.AuctionDB
	placement *keyedMutex // serializes placements per (item, user)
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.AuctionDB) *BiddingService {
	return &BiddingService{
		repo:      repo,
		placement: newKeyedMutex(),
	}
}

// PlaceBid validates and records a user's bid for an item. A repeat
// bid by the same user overwrites their earlier amount; it does not
// create a second record. The bidding flag is checked immediately
// before the write: a placement that read the item as open while a
// close was in flight may still land, which is tolerated.
func (s *BiddingService) PlaceBid(ctx context.Context, itemID, userID string, amount float64) (model.Bid, error) {
	if err := validateBidInput(itemID, userID, amount); err != nil {
		return model.Bid{}, err
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: resolve item %s: %w", itemID, err)
	}
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return model.Bid{}, fmt.Errorf("service: resolve user %s: %w", userID, err)
	}

	if !item.IsBidActive {
		return model.Bid{}, fmt.Errorf("service: item %s: %w", itemID, biddingerrors.ErrAuctionClosed)
	}

	unlock := s.placement.Lock(itemID + "\x00" + userID)
	defer unlock()

	existing, found, err := s.repo.FindBid(ctx, itemID, userID)
	if err != nil {
		return model.Bid{}, fmt.Errorf("service: look up bid for item %s by user %s: %w", itemID, userID, err)
	}

	bidID := existing.BidID
	if !found {
		bidID = utils.GenerateID()
	}

	bid := model.Bid{
		BidID:    bidID,
		ItemID:   itemID,
		UserID:   userID,
		Amount:   decimal.NewFromFloat(amount),
		PlacedAt: time.Now().UTC(),
	}

	if err := s.repo.UpsertBid(ctx, bid); err != nil {
		return model.Bid{}, fmt.Errorf("service: record bid for item %s by user %s: %w", itemID, userID, err)
	}

	return bid, nil
}

// validateBidInput checks ids and that the amount is positive and finite
func validateBidInput(itemID, userID string, amount float64) error {
	if itemID == "" || userID == "" {
		return fmt.Errorf("service: %w - missing itemID or userID", biddingerrors.ErrInvalidBid)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("service: %w - amount is not a finite number", biddingerrors.ErrInvalidBid)
	}
	if amount <= 0 {
		return fmt.Errorf("service: %w - non-positive bid amount", biddingerrors.ErrInvalidBid)
	}
	return nil
}

// ListBids returns all bids for an item, highest amount first. An item
// with no bids yields an empty list, not an error.
func (s *BiddingService) ListBids(ctx context.Context, itemID string) ([]model.Bid, error) {
	if itemID == "" {
		return nil, fmt.Errorf("service: %w - empty item ID", biddingerrors.ErrInvalidBid)
	}

	bids, err := s.repo.GetBidsByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("service: get bids for item %s: %w", itemID, err)
	}
	return bids, nil
}

// GetMaxBid returns the current highest bid amount for an item. Zero
// bids is a valid outcome and yields decimal.Zero; a missing item is
// an error.
func (s *BiddingService) GetMaxBid(ctx context.Context, itemID string) (decimal.Decimal, error) {
	if itemID == "" {
		return decimal.Zero, fmt.Errorf("service: %w - empty item ID", biddingerrors.ErrInvalidBid)
	}

	if _, err := s.repo.GetItem(ctx, itemID); err != nil {
		return decimal.Zero, fmt.Errorf("service: resolve item %s: %w", itemID, err)
	}

	max, err := s.repo.GetMaxBid(ctx, itemID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("service: get max bid for item %s: %w", itemID, err)
	}
	return max, nil
}

// SetBidActive opens or closes bidding on an item and returns the
// updated item. Once a close completes, every later placement is
// rejected; bids recorded before the close stay visible.
func (s *BiddingService) SetBidActive(ctx context.Context, itemID string, active bool) (model.Item, error) {
	if itemID == "" {
		return model.Item{}, fmt.Errorf("service: %w - empty item ID", biddingerrors.ErrInvalidBid)
	}

	item, err := s.repo.SetBidActive(ctx, itemID, active)
	if err != nil {
		return model.Item{}, fmt.Errorf("service: set bid active for item %s: %w", itemID, err)
	}

	utils.Info("bidding status changed", map[string]any{
		"item_id":       item.ItemID,
		"is_bid_active": item.IsBidActive,
	})
	return item, nil
}

// GetBidStatus returns the item projection carrying the bidding flag
func (s *BiddingService) GetBidStatus(ctx context.Context, itemID string) (model.Item, error) {
	if itemID == "" {
		return model.Item{}, fmt.Errorf("service: %w - empty item ID", biddingerrors.ErrInvalidBid)
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return model.Item{}, fmt.Errorf("service: get bid status for item %s: %w", itemID, err)
	}
	return item, nil
}

// GetBidsByUser returns all bids a user currently holds, newest first
func (s *BiddingService) GetBidsByUser(ctx context.Context, userID string) ([]model.Bid, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", biddingerrors.ErrInvalidBid)
	}

	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("service: resolve user %s: %w", userID, err)
	}

	bids, err := s.repo.GetBidsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: get bids for user %s: %w", userID, err)
	}
	return bids, nil
}

// GetItemsByFarmer returns the items a farmer has listed
func (s *BiddingService) GetItemsByFarmer(ctx context.Context, farmerID string) ([]model.Item, error) {
	if farmerID == "" {
		return nil, fmt.Errorf("service: %w - empty farmer ID", biddingerrors.ErrInvalidBid)
	}

	items, err := s.repo.GetItemsByFarmer(ctx, farmerID)
	if err != nil {
		return nil, fmt.Errorf("service: get items for farmer %s: %w", farmerID, err)
	}
	return items, nil
}
