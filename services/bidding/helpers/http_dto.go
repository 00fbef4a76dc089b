package helpers

// Request/Response DTOs
type PlaceBidRequest struct {
	ItemID string  `json:"item_id" binding:"required"`
	UserID string  `json:"user_id" binding:"required"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type BidStatusRequest struct {
	IsBidActive *bool `json:"is_bid_active" binding:"required"`
}

type BidResponse struct {
	BidID    string  `json:"bid_id"`
	ItemID   string  `json:"item_id"`
	UserID   string  `json:"user_id"`
	Amount   float64 `json:"amount"`
	PlacedAt string  `json:"placed_at"`
}

type MaxBidResponse struct {
	ItemID string  `json:"item_id"`
	MaxBid float64 `json:"max_bid"`
}

type BidStatusResponse struct {
	ItemID      string `json:"item_id"`
	IsBidActive bool   `json:"is_bid_active"`
}

type ItemResponse struct {
	ItemID      string  `json:"item_id"`
	FarmerID    string  `json:"farmer_id"`
	Category    string  `json:"category"`
	Name        string  `json:"name"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	IsOrganic   bool    `json:"is_organic"`
	Description string  `json:"description"`
	IsBidActive bool    `json:"is_bid_active"`
	DateAdded   string  `json:"date_added"`
}
