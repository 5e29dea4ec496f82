package auction

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"sync"
	"unicode/utf8"

	"auction-house/internal/auctionerrors"
	"auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/utils"
)

const maxTitleLength = 100

// AuctionService implements the auction lifecycle: listing creation with a
// seed bid, bid acceptance, closure, comments, and the watchlist.
type AuctionService struct {
	repo  repository.AuctionDB
	locks *listingLocks
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(repo repository.AuctionDB) *AuctionService {
	return &AuctionService{
		repo:  repo,
		locks: newListingLocks(),
	}
}

// listingLocks hands out one mutex per listing id. Bid acceptance, closure
// and watch toggles are check-then-act sequences; serializing them per
// listing keeps the strict-increase invariant under concurrent requests.
type listingLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newListingLocks() *listingLocks {
	return &listingLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *listingLocks) forListing(listingID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[listingID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[listingID] = lock
	}
	return lock
}

// CreateListingInput carries the validated-on-entry create form fields
type CreateListingInput struct {
	Title       string
	Description string
	StartingBid float64
	ImageURL    string
	CategoryID  string
}

// CreateListing validates the input and atomically creates the listing
// together with its seed bid (amount = starting bid, bidder = creator). On
// validation failure nothing is persisted and the error carries the
// offending fields.
func (s *AuctionService) CreateListing(creatorID string, input CreateListingInput) (models.Listing, error) {
	if creatorID == "" {
		return models.Listing{}, fmt.Errorf("service: %w - missing creator", auctionerrors.ErrInvalidListing)
	}

	fields := auctionerrors.FieldErrors{}
	if input.Title == "" {
		fields["title"] = "title is required"
	} else if utf8.RuneCountInString(input.Title) > maxTitleLength {
		fields["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	}
	if input.StartingBid <= 0 || math.IsNaN(input.StartingBid) || math.IsInf(input.StartingBid, 0) {
		fields["starting_bid"] = "starting bid must be a positive number"
	}
	if !validImageURL(input.ImageURL) {
		fields["image_url"] = "image URL must be a valid http(s) URL"
	}
	if input.CategoryID != "" {
		if _, err := s.repo.GetCategory(input.CategoryID); err != nil {
			if errors.Is(err, auctionerrors.ErrCategoryNotFound) {
				fields["category_id"] = "category does not exist"
			} else {
				return models.Listing{}, fmt.Errorf("service: failed to check category %s: %w", input.CategoryID, err)
			}
		}
	}
	if len(fields) > 0 {
		return models.Listing{}, fmt.Errorf("service: %w", auctionerrors.Invalid(auctionerrors.ErrInvalidListing, fields))
	}

	now := utils.Now()
	listing := models.Listing{
		ListingID:   utils.GenerateID(),
		Title:       input.Title,
		Description: input.Description,
		StartingBid: input.StartingBid,
		ImageURL:    input.ImageURL,
		CategoryID:  input.CategoryID,
		IsActive:    true,
		CreatorID:   creatorID,
		CreatedAt:   now,
	}
	seedBid := models.Bid{
		BidID:     utils.GenerateID(),
		ListingID: listing.ListingID,
		UserID:    creatorID,
		Amount:    input.StartingBid,
		CreatedAt: now,
	}

	if err := s.repo.CreateListing(listing, seedBid); err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to create listing by user %s: %w", creatorID, err)
	}
	return listing, nil
}

// PlaceBid validates and records a user's bid for a listing. The top-bid
// check and the write happen under the listing's lock, so accepted amounts
// are strictly increasing even under concurrent bids.
func (s *AuctionService) PlaceBid(listingID, userID string, amount float64) (models.Bid, error) {
	if listingID == "" || userID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - missing listingID or userID", auctionerrors.ErrInvalidBid)
	}
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return models.Bid{}, fmt.Errorf("service: %w - bid amount must be a positive number", auctionerrors.ErrInvalidBid)
	}

	lock := s.locks.forListing(listingID)
	lock.Lock()
	defer lock.Unlock()

	listing, err := s.repo.GetListing(listingID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to load listing %s: %w", listingID, err)
	}
	if !listing.IsActive {
		return models.Bid{}, fmt.Errorf("service: %w - listing %s no longer accepts bids", auctionerrors.ErrAuctionClosed, listingID)
	}

	topBid, err := s.repo.GetTopBid(listingID)
	if err == nil {
		if amount <= topBid.Amount {
			return models.Bid{}, fmt.Errorf("service: %w - current highest bid is %.2f", auctionerrors.ErrBidTooLow, topBid.Amount)
		}
	} else if !errors.Is(err, auctionerrors.ErrNoBids) {
		return models.Bid{}, fmt.Errorf("service: failed to check top bid: %w", err)
	}

	bid := models.Bid{
		BidID:     utils.GenerateID(),
		ListingID: listingID,
		UserID:    userID,
		Amount:    amount,
		CreatedAt: utils.Now(),
	}
	if err := s.repo.RecordBidForListing(bid); err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to record bid for listing %s by user %s: %w", listingID, userID, err)
	}
	return bid, nil
}

// CloseAuction moves a listing from Open to Closed: winner = bidder of the
// top bid, active = false. Closed is terminal. Only the creator may close.
// ErrNoBids here means the seed-bid invariant was violated; callers treat
// it as an internal-consistency failure.
func (s *AuctionService) CloseAuction(listingID, callerID string) (models.Listing, error) {
	if listingID == "" || callerID == "" {
		return models.Listing{}, fmt.Errorf("service: %w - missing listingID or callerID", auctionerrors.ErrInvalidListing)
	}

	lock := s.locks.forListing(listingID)
	lock.Lock()
	defer lock.Unlock()

	listing, err := s.repo.GetListing(listingID)
	if err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to load listing %s: %w", listingID, err)
	}
	if !listing.IsActive {
		return models.Listing{}, fmt.Errorf("service: %w - listing %s is already closed", auctionerrors.ErrAuctionClosed, listingID)
	}
	if listing.CreatorID != callerID {
		return models.Listing{}, fmt.Errorf("service: %w", auctionerrors.ErrNotCreator)
	}

	topBid, err := s.repo.GetTopBid(listingID)
	if err != nil {
		// Every listing is created with a seed bid, so this is a broken
		// invariant rather than a user error.
		return models.Listing{}, fmt.Errorf("service: failed to determine winner for listing %s: %w", listingID, err)
	}

	if err := s.repo.CloseListing(listingID, topBid.UserID); err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to close listing %s: %w", listingID, err)
	}

	listing.IsActive = false
	listing.WinnerID = topBid.UserID
	return listing, nil
}

// GetListing returns a single listing by id
func (s *AuctionService) GetListing(listingID string) (models.Listing, error) {
	if listingID == "" {
		return models.Listing{}, fmt.Errorf("service: %w - empty listing ID", auctionerrors.ErrListingNotFound)
	}
	listing, err := s.repo.GetListing(listingID)
	if err != nil {
		return models.Listing{}, fmt.Errorf("service: failed to get listing %s: %w", listingID, err)
	}
	return listing, nil
}

// ListingDetail aggregates everything the listing page shows
type ListingDetail struct {
	Listing  models.Listing   `json:"listing"`
	TopBid   models.Bid       `json:"top_bid"`
	Comments []models.Comment `json:"comments"`
	Watching bool             `json:"watching"`
}

// GetListingDetail returns the listing together with its top bid, comments
// and, when viewerID is set, whether the viewer watches it.
func (s *AuctionService) GetListingDetail(listingID, viewerID string) (ListingDetail, error) {
	listing, err := s.GetListing(listingID)
	if err != nil {
		return ListingDetail{}, err
	}

	detail := ListingDetail{Listing: listing, Comments: []models.Comment{}}

	topBid, err := s.repo.GetTopBid(listingID)
	if err != nil && !errors.Is(err, auctionerrors.ErrNoBids) {
		return ListingDetail{}, fmt.Errorf("service: failed to get top bid for listing %s: %w", listingID, err)
	}
	detail.TopBid = topBid

	comments, err := s.repo.GetCommentsByListing(listingID)
	if err != nil {
		return ListingDetail{}, fmt.Errorf("service: failed to get comments for listing %s: %w", listingID, err)
	}
	if comments != nil {
		detail.Comments = comments
	}

	if viewerID != "" {
		watching, err := s.repo.IsWatching(viewerID, listingID)
		if err != nil {
			return ListingDetail{}, fmt.Errorf("service: failed to check watchlist for listing %s: %w", listingID, err)
		}
		detail.Watching = watching
	}
	return detail, nil
}

// ListActiveListings returns active listings, optionally filtered by an
// existing category.
func (s *AuctionService) ListActiveListings(categoryID string) ([]models.Listing, error) {
	if categoryID != "" {
		if _, err := s.repo.GetCategory(categoryID); err != nil {
			return nil, fmt.Errorf("service: failed to resolve category %s: %w", categoryID, err)
		}
	}
	listings, err := s.repo.ListActiveListings(categoryID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list active listings: %w", err)
	}
	return listings, nil
}

// ListCategories returns all categories
func (s *AuctionService) ListCategories() ([]models.Category, error) {
	categories, err := s.repo.ListCategories()
	if err != nil {
		return nil, fmt.Errorf("service: failed to list categories: %w", err)
	}
	return categories, nil
}

// GetBidsForListing returns the listing's bid history in acceptance order
func (s *AuctionService) GetBidsForListing(listingID string) ([]models.Bid, error) {
	if listingID == "" {
		return nil, fmt.Errorf("service: %w - empty listing ID", auctionerrors.ErrInvalidBid)
	}
	bids, err := s.repo.GetBidsByListing(listingID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for listing %s: %w", listingID, err)
	}
	return bids, nil
}

// GetTopBid returns the current highest bid for a listing
func (s *AuctionService) GetTopBid(listingID string) (models.Bid, error) {
	if listingID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - empty listing ID", auctionerrors.ErrInvalidBid)
	}
	topBid, err := s.repo.GetTopBid(listingID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to get top bid for listing %s: %w", listingID, err)
	}
	return topBid, nil
}

// AddComment validates and appends an immutable comment to the listing.
// Author is the commenter's username snapshot.
func (s *AuctionService) AddComment(listingID, author, title, content string) (models.Comment, error) {
	if listingID == "" || author == "" {
		return models.Comment{}, fmt.Errorf("service: %w - missing listingID or author", auctionerrors.ErrInvalidComment)
	}

	fields := auctionerrors.FieldErrors{}
	if title == "" {
		fields["title"] = "title is required"
	} else if utf8.RuneCountInString(title) > maxTitleLength {
		fields["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	}
	if content == "" {
		fields["content"] = "content is required"
	}
	if len(fields) > 0 {
		return models.Comment{}, fmt.Errorf("service: %w", auctionerrors.Invalid(auctionerrors.ErrInvalidComment, fields))
	}

	comment := models.Comment{
		CommentID: utils.GenerateID(),
		ListingID: listingID,
		Title:     title,
		Content:   content,
		Author:    author,
		CreatedAt: utils.Now(),
	}
	if err := s.repo.AddComment(comment); err != nil {
		return models.Comment{}, fmt.Errorf("service: failed to add comment for listing %s: %w", listingID, err)
	}
	return comment, nil
}

// GetCommentsForListing returns comments oldest first
func (s *AuctionService) GetCommentsForListing(listingID string) ([]models.Comment, error) {
	if listingID == "" {
		return nil, fmt.Errorf("service: %w - empty listing ID", auctionerrors.ErrInvalidComment)
	}
	comments, err := s.repo.GetCommentsByListing(listingID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get comments for listing %s: %w", listingID, err)
	}
	return comments, nil
}

// ToggleWatch flips the user's watch state for a listing and returns the
// state after the call. The check and the write run under the listing's
// lock so two racing toggles cannot both insert.
func (s *AuctionService) ToggleWatch(userID, listingID string) (bool, error) {
	if userID == "" || listingID == "" {
		return false, fmt.Errorf("service: %w - missing userID or listingID", auctionerrors.ErrListingNotFound)
	}

	lock := s.locks.forListing(listingID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.repo.GetListing(listingID); err != nil {
		return false, fmt.Errorf("service: failed to load listing %s: %w", listingID, err)
	}

	watching, err := s.repo.IsWatching(userID, listingID)
	if err != nil {
		return false, fmt.Errorf("service: failed to check watchlist for listing %s: %w", listingID, err)
	}

	if watching {
		if err := s.repo.RemoveWatch(userID, listingID); err != nil {
			return false, fmt.Errorf("service: failed to remove watch for listing %s: %w", listingID, err)
		}
		return false, nil
	}

	entry := models.WatchlistEntry{
		UserID:    userID,
		ListingID: listingID,
		CreatedAt: utils.Now(),
	}
	if err := s.repo.AddWatch(entry); err != nil {
		return false, fmt.Errorf("service: failed to add watch for listing %s: %w", listingID, err)
	}
	return true, nil
}

// ListWatched returns the listings the user currently watches
func (s *AuctionService) ListWatched(userID string) ([]models.Listing, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", auctionerrors.ErrUserNotFound)
	}
	listings, err := s.repo.GetWatchedListings(userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list watched listings for user %s: %w", userID, err)
	}
	return listings, nil
}

// validImageURL accepts absolute http(s) URLs with a host
func validImageURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
