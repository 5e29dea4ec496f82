package repository

import (
	"fmt"
	"sync"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
)

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB
type MemoryRepo struct {
	mu         sync.RWMutex
	users      map[string]model.User              // key: userID
	usernames  map[string]string                  // key: username -> userID
	categories map[string]model.Category          // key: categoryID
	listings   map[string]model.Listing           // key: listingID
	bids       map[string][]model.Bid             // key: listingID -> bids in acceptance order
	comments   map[string][]model.Comment         // key: listingID -> comments in insertion order
	watchlists map[string]map[string]model.WatchlistEntry // key: userID -> listingID -> entry
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:      make(map[string]model.User),
		usernames:  make(map[string]string),
		categories: make(map[string]model.Category),
		listings:   make(map[string]model.Listing),
		bids:       make(map[string][]model.Bid),
		comments:   make(map[string][]model.Comment),
		watchlists: make(map[string]map[string]model.WatchlistEntry),
	}
}

// CreateUser stores a new account, rejecting duplicate usernames
func (r *MemoryRepo) CreateUser(user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.usernames[user.Username]; taken {
		return fmt.Errorf("create user %s: %w", user.Username, auctionerrors.ErrDuplicateUsername)
	}

	r.users[user.UserID] = user
	r.usernames[user.Username] = user.UserID
	return nil
}

// GetUserByID returns the account with the given id
func (r *MemoryRepo) GetUserByID(userID string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return user, nil
}

// GetUserByUsername returns the account with the given username
func (r *MemoryRepo) GetUserByUsername(username string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userID, ok := r.usernames[username]
	if !ok {
		return model.User{}, fmt.Errorf("get user by username %s: %w", username, auctionerrors.ErrUserNotFound)
	}
	return r.users[userID], nil
}

// AddCategory stores a category
func (r *MemoryRepo) AddCategory(category model.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.categories[category.CategoryID] = category
	return nil
}

// GetCategory returns the category with the given id
func (r *MemoryRepo) GetCategory(categoryID string) (model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, ok := r.categories[categoryID]
	if !ok {
		return model.Category{}, fmt.Errorf("get category %s: %w", categoryID, auctionerrors.ErrCategoryNotFound)
	}
	return category, nil
}

// ListCategories returns all categories
func (r *MemoryRepo) ListCategories() ([]model.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make([]model.Category, 0, len(r.categories))
	for _, c := range r.categories {
		categories = append(categories, c)
	}
	return categories, nil
}

// CreateListing stores a listing and its seed bid under a single lock
// section, so no reader ever observes a listing without a bid.
func (r *MemoryRepo) CreateListing(listing model.Listing, seedBid model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.listings[listing.ListingID]; exists {
		return fmt.Errorf("create listing %s: listing already exists", listing.ListingID)
	}

	r.listings[listing.ListingID] = listing
	r.bids[listing.ListingID] = append(r.bids[listing.ListingID], seedBid)
	return nil
}

// GetListing returns the listing with the given id
func (r *MemoryRepo) GetListing(listingID string) (model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return model.Listing{}, fmt.Errorf("get listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	return listing, nil
}

// ListActiveListings returns all active listings, optionally restricted to
// a category.
func (r *MemoryRepo) ListActiveListings(categoryID string) ([]model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listings := make([]model.Listing, 0)
	for _, l := range r.listings {
		if !l.IsActive {
			continue
		}
		if categoryID != "" && l.CategoryID != categoryID {
			continue
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// CloseListing marks the listing inactive and records the winner
func (r *MemoryRepo) CloseListing(listingID, winnerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[listingID]
	if !ok {
		return fmt.Errorf("close listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}

	listing.IsActive = false
	listing.WinnerID = winnerID
	r.listings[listingID] = listing
	return nil
}

// RecordBidForListing appends a bid to the listing's ledger
func (r *MemoryRepo) RecordBidForListing(bid model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[bid.ListingID]; !ok {
		return fmt.Errorf("record bid for listing %s: %w", bid.ListingID, auctionerrors.ErrListingNotFound)
	}

	r.bids[bid.ListingID] = append(r.bids[bid.ListingID], bid)
	return nil
}

// GetBidsByListing returns all bids for a listing in acceptance order
func (r *MemoryRepo) GetBidsByListing(listingID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.listings[listingID]; !ok {
		return nil, fmt.Errorf("get bids for listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	return append([]model.Bid(nil), r.bids[listingID]...), nil
}

// GetTopBid returns the highest bid for a listing. Amount ties go to the
// earlier bid; under the strict-increase rule ties never occur.
func (r *MemoryRepo) GetTopBid(listingID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.listings[listingID]; !ok {
		return model.Bid{}, fmt.Errorf("get top bid for listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}

	bids := r.bids[listingID]
	if len(bids) == 0 {
		return model.Bid{}, fmt.Errorf("get top bid for listing %s: %w", listingID, auctionerrors.ErrNoBids)
	}

	top := bids[0]
	for _, b := range bids[1:] {
		if b.Amount > top.Amount || (b.Amount == top.Amount && b.CreatedAt.Before(top.CreatedAt)) {
			top = b
		}
	}
	return top, nil
}

// AddComment appends a comment to the listing's log
func (r *MemoryRepo) AddComment(comment model.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[comment.ListingID]; !ok {
		return fmt.Errorf("add comment for listing %s: %w", comment.ListingID, auctionerrors.ErrListingNotFound)
	}

	r.comments[comment.ListingID] = append(r.comments[comment.ListingID], comment)
	return nil
}

// GetCommentsByListing returns all comments for a listing in insertion order
func (r *MemoryRepo) GetCommentsByListing(listingID string) ([]model.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.listings[listingID]; !ok {
		return nil, fmt.Errorf("get comments for listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	return append([]model.Comment(nil), r.comments[listingID]...), nil
}

// AddWatch records that a user watches a listing
func (r *MemoryRepo) AddWatch(entry model.WatchlistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[entry.ListingID]; !ok {
		return fmt.Errorf("add watch for listing %s: %w", entry.ListingID, auctionerrors.ErrListingNotFound)
	}

	if r.watchlists[entry.UserID] == nil {
		r.watchlists[entry.UserID] = make(map[string]model.WatchlistEntry)
	}
	r.watchlists[entry.UserID][entry.ListingID] = entry
	return nil
}

// RemoveWatch deletes the (user, listing) watch entry if it exists
func (r *MemoryRepo) RemoveWatch(userID, listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.watchlists[userID], listingID)
	return nil
}

// IsWatching reports whether the user currently watches the listing
func (r *MemoryRepo) IsWatching(userID, listingID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, watching := r.watchlists[userID][listingID]
	return watching, nil
}

// GetWatchedListings returns the listings the user watches
func (r *MemoryRepo) GetWatchedListings(userID string) ([]model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.watchlists[userID]
	listings := make([]model.Listing, 0, len(entries))
	for listingID := range entries {
		if l, ok := r.listings[listingID]; ok {
			listings = append(listings, l)
		}
	}
	return listings, nil
}
