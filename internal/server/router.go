package server

import (
	"bidding-room/internal/auth"
	bidding "bidding-room/internal/biddingService"
	handler "bidding-room/services/bidding/handler"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures the HTTP routes and mounts the room websocket at /ws
func SetupRouter(coordinator bidding.CoordinatorInterface, authenticator *auth.Authenticator, rooms http.Handler) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	biddingHandler := handler.NewBiddingHandler(coordinator)

	router.GET("/healthz", biddingHandler.HealthHandler)
	if rooms != nil {
		// the websocket handler authenticates on its own
		router.GET("/ws", gin.WrapH(rooms))
	}

	auctions := router.Group("/auctions", AuthMiddleware(authenticator))
	{
		auctions.GET("/:auction_id/state", biddingHandler.GetStateHandler)
		auctions.GET("/:auction_id/bids", biddingHandler.GetBidsHandler)
		auctions.POST("/:auction_id/bids", biddingHandler.PlaceBidHandler)
	}

	return router
}
