package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"farmtrade-bidding/internal/biddingerrors"
	model "farmtrade-bidding/internal/models"
	"farmtrade-bidding/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, biddingerrors.ErrItemNotFound):
		return http.StatusNotFound, "item not found"
	case errors.Is(err, biddingerrors.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, biddingerrors.ErrAuctionClosed):
		return http.StatusConflict, "bidding is closed for this item"
	case errors.Is(err, biddingerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, biddingerrors.ErrStorage):
		return http.StatusInternalServerError, "storage failure"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

// ToBidResponse converts a bid record to its HTTP projection
func ToBidResponse(bid model.Bid) BidResponse {
	return BidResponse{
		BidID:    bid.BidID,
		ItemID:   bid.ItemID,
		UserID:   bid.UserID,
		Amount:   bid.Amount.InexactFloat64(),
		PlacedAt: bid.PlacedAt.UTC().Format(time.RFC3339),
	}
}

// ToBidResponses converts a bid slice, preserving order
func ToBidResponses(bids []model.Bid) []BidResponse {
	out := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, ToBidResponse(b))
	}
	return out
}

// ToItemResponse converts an item record to its HTTP projection
func ToItemResponse(item model.Item) ItemResponse {
	return ItemResponse{
		ItemID:      item.ItemID,
		FarmerID:    item.FarmerID,
		Category:    item.Category,
		Name:        item.Name,
		Quantity:    item.Quantity,
		Unit:        item.Unit,
		IsOrganic:   item.IsOrganic,
		Description: item.Description,
		IsBidActive: item.IsBidActive,
		DateAdded:   item.DateAdded.UTC().Format(time.RFC3339),
	}
}
