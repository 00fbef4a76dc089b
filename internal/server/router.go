package server

import (
	bidding "farmtrade-bidding/internal/biddingService"
	handler "farmtrade-bidding/services/bidding/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(biddingService *bidding.BiddingService) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	biddingHandler := handler.NewBiddingHandler(biddingService)

	bids := router.Group("/bids")
	{
		bids.POST("", biddingHandler.PlaceBidHandler)
	}

	items := router.Group("/items")
	{
		items.GET("/:item_id/bids", biddingHandler.ListBidsHandler)
		items.GET("/:item_id/max-bid", biddingHandler.GetMaxBidHandler)
		items.GET("/:item_id/bid-status", biddingHandler.GetBidStatusHandler)
		items.PATCH("/:item_id/bid-status", biddingHandler.SetBidStatusHandler)
	}

	users := router.Group("/users")
	{
		users.GET("/:user_id/bids", biddingHandler.GetBidsByUserHandler)
	}

	farmers := router.Group("/farmers")
	{
		farmers.GET("/:farmer_id/items", biddingHandler.GetItemsByFarmerHandler)
	}

	return router
}
