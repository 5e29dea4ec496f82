package repository

import (
	model "auction-house/internal/models"
)

// UserStore persists registered accounts
type UserStore interface {
	CreateUser(user model.User) error
	GetUserByID(userID string) (model.User, error)
	GetUserByUsername(username string) (model.User, error)
}

// CategoryStore holds the fixed set of listing categories
type CategoryStore interface {
	AddCategory(category model.Category) error
	GetCategory(categoryID string) (model.Category, error)
	ListCategories() ([]model.Category, error)
}

// ListingStore persists auction listings. CreateListing writes the listing
// and its seed bid atomically: either both records exist afterwards or
// neither does.
type ListingStore interface {
	CreateListing(listing model.Listing, seedBid model.Bid) error
	GetListing(listingID string) (model.Listing, error)
	ListActiveListings(categoryID string) ([]model.Listing, error)
	CloseListing(listingID, winnerID string) error
}

// BidStore is the append-only bid ledger per listing
type BidStore interface {
	RecordBidForListing(bid model.Bid) error
	GetBidsByListing(listingID string) ([]model.Bid, error)
	GetTopBid(listingID string) (model.Bid, error)
}

// CommentStore is the append-only comment log per listing
type CommentStore interface {
	AddComment(comment model.Comment) error
	GetCommentsByListing(listingID string) ([]model.Comment, error)
}

// WatchlistStore indexes which listings each user watches
type WatchlistStore interface {
	AddWatch(entry model.WatchlistEntry) error
	RemoveWatch(userID, listingID string) error
	IsWatching(userID, listingID string) (bool, error)
	GetWatchedListings(userID string) ([]model.Listing, error)
}

// AuctionDB aggregates every store the auction service depends on. Both
// MemoryRepo and SQLRepo implement it.
type AuctionDB interface {
	UserStore
	CategoryStore
	ListingStore
	BidStore
	CommentStore
	WatchlistStore
}
