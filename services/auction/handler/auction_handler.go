package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	auction "auction-house/internal/auctionService"
	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"auction-house/services/auction/helpers"
	"auction-house/utils"
)

type AuctionServiceInterface interface {
	CreateListing(creatorID string, input auction.CreateListingInput) (model.Listing, error)
	PlaceBid(listingID, userID string, amount float64) (model.Bid, error)
	CloseAuction(listingID, callerID string) (model.Listing, error)
	GetListingDetail(listingID, viewerID string) (auction.ListingDetail, error)
	ListActiveListings(categoryID string) ([]model.Listing, error)
	ListCategories() ([]model.Category, error)
	GetBidsForListing(listingID string) ([]model.Bid, error)
	GetTopBid(listingID string) (model.Bid, error)
	AddComment(listingID, author, title, content string) (model.Comment, error)
	GetCommentsForListing(listingID string) ([]model.Comment, error)
	ToggleWatch(userID, listingID string) (bool, error)
	ListWatched(userID string) ([]model.Listing, error)
}

// UserResolver turns an authenticated user id into the full account, used
// to snapshot the commenter's username.
type UserResolver interface {
	GetUserByID(userID string) (model.User, error)
}

type AuctionHandler struct {
	service AuctionServiceInterface
	users   UserResolver
}

func NewAuctionHandler(service AuctionServiceInterface, users UserResolver) *AuctionHandler {
	return &AuctionHandler{service: service, users: users}
}

// ListListingsHandler handles GET /listings
func (h *AuctionHandler) ListListingsHandler(c *gin.Context) {
	categoryID := c.Query("category")

	listings, err := h.service.ListActiveListings(categoryID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ListListingsHandler: error listing active listings", map[string]any{"category_id": categoryID, "error": err.Error()})
		return
	}
	if listings == nil {
		listings = []model.Listing{}
	}

	utils.JSONResponse(c, http.StatusOK, listings, "listings retrieved successfully")
}

// CreateListingHandler handles POST /listings
func (h *AuctionHandler) CreateListingHandler(c *gin.Context) {
	var req helpers.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateListingHandler", err)
		return
	}

	creatorID := helpers.CurrentUserID(c)
	listing, err := h.service.CreateListing(creatorID, auction.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		StartingBid: req.StartingBid,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("CreateListingHandler: failed to create listing", map[string]any{
			"creator_id": creatorID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, listing, "listing created successfully")
	helpers.LogSuccess("CreateListingHandler", "listing created successfully", map[string]any{
		"listing_id":   listing.ListingID,
		"creator_id":   creatorID,
		"starting_bid": listing.StartingBid,
	})
}

// GetListingHandler handles GET /listings/:listing_id
func (h *AuctionHandler) GetListingHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	viewerID := helpers.CurrentUserID(c)

	detail, err := h.service.GetListingDetail(listingID, viewerID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetListingHandler: error retrieving listing", map[string]any{"listing_id": listingID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, detail, "listing retrieved successfully")
}

// PlaceBidHandler handles POST /listings/:listing_id/bids
func (h *AuctionHandler) PlaceBidHandler(c *gin.Context) {
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	listingID := c.Param("listing_id")
	userID := helpers.CurrentUserID(c)

	bid, err := h.service.PlaceBid(listingID, userID, req.Amount)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("PlaceBidHandler: failed to place bid", map[string]any{
			"listing_id": listingID,
			"user_id":    userID,
			"amount":     req.Amount,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid), "bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"bid_id":     bid.BidID,
		"listing_id": listingID,
		"user_id":    userID,
		"amount":     bid.Amount,
	})
}

// CloseAuctionHandler handles POST /listings/:listing_id/close
func (h *AuctionHandler) CloseAuctionHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	callerID := helpers.CurrentUserID(c)

	listing, err := h.service.CloseAuction(listingID, callerID)
	if err != nil {
		// A closable listing without bids means the seed-bid invariant was
		// broken somewhere; report it as an internal failure.
		if errors.Is(err, auctionerrors.ErrNoBids) {
			utils.JSONError(c, http.StatusInternalServerError, err, "internal server error")
			utils.Error("CloseAuctionHandler: listing has no bids", map[string]any{"listing_id": listingID, "error": err.Error()})
			return
		}
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("CloseAuctionHandler: failed to close auction", map[string]any{
			"listing_id": listingID,
			"caller_id":  callerID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, listing, "auction closed successfully")
	helpers.LogSuccess("CloseAuctionHandler", "auction closed successfully", map[string]any{
		"listing_id": listingID,
		"winner_id":  listing.WinnerID,
	})
}

// GetBidsByListingHandler handles GET /listings/:listing_id/bids
func (h *AuctionHandler) GetBidsByListingHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	bids, err := h.service.GetBidsForListing(listingID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetBidsByListingHandler: error retrieving bids", map[string]any{"listing_id": listingID, "error": err.Error()})
		return
	}

	resp := make([]helpers.BidResponse, 0, len(bids))
	for _, b := range bids {
		resp = append(resp, helpers.NewBidResponse(b))
	}
	utils.JSONResponse(c, http.StatusOK, resp, "bids retrieved successfully")
}

// GetTopBidHandler handles GET /listings/:listing_id/winning
func (h *AuctionHandler) GetTopBidHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	bid, err := h.service.GetTopBid(listingID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetTopBidHandler: error retrieving top bid", map[string]any{"listing_id": listingID, "error": err.Error()})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "top bid retrieved successfully")
}

// AddCommentHandler handles POST /listings/:listing_id/comments
func (h *AuctionHandler) AddCommentHandler(c *gin.Context) {
	var req helpers.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "AddCommentHandler", err)
		return
	}

	listingID := c.Param("listing_id")
	userID := helpers.CurrentUserID(c)

	user, err := h.users.GetUserByID(userID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("AddCommentHandler: failed to resolve commenter", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}

	comment, err := h.service.AddComment(listingID, user.Username, req.Title, req.Content)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("AddCommentHandler: failed to add comment", map[string]any{
			"listing_id": listingID,
			"user_id":    userID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, comment, "comment added successfully")
	helpers.LogSuccess("AddCommentHandler", "comment added successfully", map[string]any{
		"comment_id": comment.CommentID,
		"listing_id": listingID,
		"author":     comment.Author,
	})
}

// GetCommentsHandler handles GET /listings/:listing_id/comments
func (h *AuctionHandler) GetCommentsHandler(c *gin.Context) {
	listingID := c.Param("listing_id")

	comments, err := h.service.GetCommentsForListing(listingID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetCommentsHandler: error retrieving comments", map[string]any{"listing_id": listingID, "error": err.Error()})
		return
	}
	if comments == nil {
		comments = []model.Comment{}
	}

	utils.JSONResponse(c, http.StatusOK, comments, "comments retrieved successfully")
}

// ToggleWatchHandler handles POST /listings/:listing_id/watch
func (h *AuctionHandler) ToggleWatchHandler(c *gin.Context) {
	listingID := c.Param("listing_id")
	userID := helpers.CurrentUserID(c)

	watching, err := h.service.ToggleWatch(userID, listingID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ToggleWatchHandler: failed to toggle watch", map[string]any{
			"listing_id": listingID,
			"user_id":    userID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.WatchResponse{ListingID: listingID, Watching: watching}, "watchlist updated successfully")
	helpers.LogSuccess("ToggleWatchHandler", "watchlist updated successfully", map[string]any{
		"listing_id": listingID,
		"user_id":    userID,
		"watching":   watching,
	})
}

// GetWatchlistHandler handles GET /watchlist
func (h *AuctionHandler) GetWatchlistHandler(c *gin.Context) {
	userID := helpers.CurrentUserID(c)

	listings, err := h.service.ListWatched(userID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetWatchlistHandler: error retrieving watchlist", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}
	if listings == nil {
		listings = []model.Listing{}
	}

	utils.JSONResponse(c, http.StatusOK, listings, "watchlist retrieved successfully")
}

// ListCategoriesHandler handles GET /categories
func (h *AuctionHandler) ListCategoriesHandler(c *gin.Context) {
	categories, err := h.service.ListCategories()
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ListCategoriesHandler: error retrieving categories", map[string]any{"error": err.Error()})
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}

	utils.JSONResponse(c, http.StatusOK, categories, "categories retrieved successfully")
}

// ListingsByCategoryHandler handles GET /categories/:category_id/listings
func (h *AuctionHandler) ListingsByCategoryHandler(c *gin.Context) {
	categoryID := c.Param("category_id")

	listings, err := h.service.ListActiveListings(categoryID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ListingsByCategoryHandler: error retrieving listings", map[string]any{"category_id": categoryID, "error": err.Error()})
		return
	}
	if listings == nil {
		listings = []model.Listing{}
	}

	utils.JSONResponse(c, http.StatusOK, listings, "listings retrieved successfully")
}
