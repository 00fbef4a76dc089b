package biddingerrors

import "errors"

// Repository-level errors
var (
	ErrItemNotFound = errors.New("item not found")
	ErrUserNotFound = errors.New("user not found")
	ErrStorage      = errors.New("storage failure")
)

// business logic errors
var (
	ErrInvalidBid    = errors.New("invalid bid")
	ErrAuctionClosed = errors.New("bidding is closed for this item")
)
