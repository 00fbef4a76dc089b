package handler

import (
	"context"
	"fmt"
	"net/http"

	model "farmtrade-bidding/internal/models"
	"farmtrade-bidding/services/bidding/helpers"
	"farmtrade-bidding/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, itemID, userID string, amount float64) (model.Bid, error)
	ListBids(ctx context.Context, itemID string) ([]model.Bid, error)
	GetMaxBid(ctx context.Context, itemID string) (decimal.Decimal, error)
	SetBidActive(ctx context.Context, itemID string, active bool) (model.Item, error)
	GetBidStatus(ctx context.Context, itemID string) (model.Item, error)
	GetBidsByUser(ctx context.Context, userID string) ([]model.Bid, error)
	GetItemsByFarmer(ctx context.Context, farmerID string) ([]model.Item, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// PlaceBidHandler handles POST /bids
func (h *BiddingHandler) PlaceBidHandler(c *gin.Context) {
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	bid, err := h.service.PlaceBid(c.Request.Context(), req.ItemID, req.UserID, req.Amount)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("PlaceBidHandler: failed to place bid", map[string]any{
			"handler": "PlaceBidHandler",
			"item_id": req.ItemID,
			"user_id": req.UserID,
			"error":   err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToBidResponse(bid), "bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"bid_id":  bid.BidID,
		"item_id": bid.ItemID,
		"user_id": bid.UserID,
		"amount":  bid.Amount.InexactFloat64(),
	})
}

// ListBidsHandler handles GET /items/:item_id/bids
func (h *BiddingHandler) ListBidsHandler(c *gin.Context) {
	itemID := c.Param("item_id")
	bids, err := h.service.ListBids(c.Request.Context(), itemID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ListBidsHandler: error retrieving bids", map[string]any{"item_id": itemID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponses(bids), "bids retrieved successfully")
	helpers.LogSuccess("ListBidsHandler", "bids retrieved successfully", map[string]any{
		"item_id": itemID,
		"count":   len(bids),
	})
}

// GetMaxBidHandler handles GET /items/:item_id/max-bid
func (h *BiddingHandler) GetMaxBidHandler(c *gin.Context) {
	itemID := c.Param("item_id")
	max, err := h.service.GetMaxBid(c.Request.Context(), itemID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetMaxBidHandler: max bid error", map[string]any{"item_id": itemID, "error": err.Error()})
		return
	}

	resp := helpers.MaxBidResponse{
		ItemID: itemID,
		MaxBid: max.InexactFloat64(),
	}

	utils.JSONResponse(c, http.StatusOK, resp, "max bid retrieved successfully")
	helpers.LogSuccess("GetMaxBidHandler", "max bid retrieved successfully", map[string]any{
		"item_id": itemID,
		"max_bid": resp.MaxBid,
	})
}

// GetBidStatusHandler handles GET /items/:item_id/bid-status
func (h *BiddingHandler) GetBidStatusHandler(c *gin.Context) {
	itemID := c.Param("item_id")
	item, err := h.service.GetBidStatus(c.Request.Context(), itemID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetBidStatusHandler: error retrieving bid status", map[string]any{"item_id": itemID, "error": err.Error()})
		return
	}

	resp := helpers.BidStatusResponse{
		ItemID:      item.ItemID,
		IsBidActive: item.IsBidActive,
	}

	utils.JSONResponse(c, http.StatusOK, resp, "bid status retrieved successfully")
}

// SetBidStatusHandler handles PATCH /items/:item_id/bid-status
func (h *BiddingHandler) SetBidStatusHandler(c *gin.Context) {
	itemID := c.Param("item_id")

	var req helpers.BidStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SetBidStatusHandler", err)
		return
	}

	item, err := h.service.SetBidActive(c.Request.Context(), itemID, *req.IsBidActive)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("SetBidStatusHandler: failed to update bid status", map[string]any{
			"item_id":       itemID,
			"is_bid_active": *req.IsBidActive,
			"error":         err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToItemResponse(item), "bid status updated successfully")
	helpers.LogSuccess("SetBidStatusHandler", "bid status updated successfully", map[string]any{
		"item_id":       item.ItemID,
		"is_bid_active": item.IsBidActive,
	})
}

// GetBidsByUserHandler handles GET /users/:user_id/bids
func (h *BiddingHandler) GetBidsByUserHandler(c *gin.Context) {
	userID := c.Param("user_id")
	bids, err := h.service.GetBidsByUser(c.Request.Context(), userID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetBidsByUserHandler: error retrieving bids", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ToBidResponses(bids), "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByUserHandler", "bids retrieved successfully", map[string]any{
		"user_id": userID,
		"count":   len(bids),
	})
}

// GetItemsByFarmerHandler handles GET /farmers/:farmer_id/items
func (h *BiddingHandler) GetItemsByFarmerHandler(c *gin.Context) {
	farmerID := c.Param("farmer_id")
	items, err := h.service.GetItemsByFarmer(c.Request.Context(), farmerID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetItemsByFarmerHandler: error retrieving items", map[string]any{"farmer_id": farmerID, "error": err.Error()})
		return
	}

	resp := make([]helpers.ItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, helpers.ToItemResponse(item))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "items retrieved successfully")
	helpers.LogSuccess("GetItemsByFarmerHandler", "items retrieved successfully", map[string]any{
		"farmer_id":   farmerID,
		"items_count": len(items),
	})
}
