package server

import (
	"github.com/gin-gonic/gin"

	auctionhandler "auction-house/services/auction/handler"
	authhandler "auction-house/services/auth/handler"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(
	auctionService auctionhandler.AuctionServiceInterface,
	authService authhandler.AuthServiceInterface,
	users auctionhandler.UserResolver,
	validator TokenValidator,
) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := auctionhandler.NewAuctionHandler(auctionService, users)
	authHandler := authhandler.NewAuthHandler(authService)

	requireAuth := RequireAuth(validator)
	optionalAuth := OptionalAuth(validator)

	router.POST("/register", authHandler.RegisterHandler)
	router.POST("/login", authHandler.LoginHandler)

	listings := router.Group("/listings")
	{
		listings.GET("", auctionHandler.ListListingsHandler)
		listings.POST("", requireAuth, auctionHandler.CreateListingHandler)
		listings.GET("/:listing_id", optionalAuth, auctionHandler.GetListingHandler)
		listings.GET("/:listing_id/bids", auctionHandler.GetBidsByListingHandler)
		listings.GET("/:listing_id/winning", auctionHandler.GetTopBidHandler)
		listings.POST("/:listing_id/bids", requireAuth, auctionHandler.PlaceBidHandler)
		listings.POST("/:listing_id/close", requireAuth, auctionHandler.CloseAuctionHandler)
		listings.GET("/:listing_id/comments", auctionHandler.GetCommentsHandler)
		listings.POST("/:listing_id/comments", requireAuth, auctionHandler.AddCommentHandler)
		listings.POST("/:listing_id/watch", requireAuth, auctionHandler.ToggleWatchHandler)
	}

	router.GET("/watchlist", requireAuth, auctionHandler.GetWatchlistHandler)

	categories := router.Group("/categories")
	{
		categories.GET("", auctionHandler.ListCategoriesHandler)
		categories.GET("/:category_id/listings", auctionHandler.ListingsByCategoryHandler)
	}

	return router
}
