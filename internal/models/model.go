package models

import "time"

// User represents a registered account in the auction house
type User struct {
	UserID       string    `json:"user_id" db:"user_id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Category groups listings; a listing's category reference is optional
type Category struct {
	CategoryID  string `json:"category_id" db:"category_id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
}

// Listing represents an item up for auction. CreatorID is immutable after
// creation; WinnerID is empty until the auction is closed.
type Listing struct {
	ListingID   string    `json:"listing_id" db:"listing_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	StartingBid float64   `json:"starting_bid" db:"starting_bid"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	CategoryID  string    `json:"category_id,omitempty" db:"category_id"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatorID   string    `json:"creator_id" db:"creator_id"`
	WinnerID    string    `json:"winner_id,omitempty" db:"winner_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Bid represents a user's bid on a listing. Bids are immutable once recorded.
type Bid struct {
	BidID     string    `json:"bid_id" db:"bid_id"`
	ListingID string    `json:"listing_id" db:"listing_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Amount    float64   `json:"amount" db:"amount"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Comment is an immutable remark on a listing. Author is a username
// snapshot taken at write time, not a live user reference.
type Comment struct {
	CommentID string    `json:"comment_id" db:"comment_id"`
	ListingID string    `json:"listing_id" db:"listing_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Author    string    `json:"author" db:"author"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// WatchlistEntry marks a listing as watched by a user
type WatchlistEntry struct {
	UserID    string    `json:"user_id" db:"user_id"`
	ListingID string    `json:"listing_id" db:"listing_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
