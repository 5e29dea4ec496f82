package repository

import (
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id       TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	category_id TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS listings (
	listing_id   TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	starting_bid REAL NOT NULL,
	image_url    TEXT NOT NULL DEFAULT '',
	category_id  TEXT NOT NULL DEFAULT '',
	is_active    BOOLEAN NOT NULL DEFAULT 1,
	creator_id   TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
	winner_id    TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS bids (
	bid_id     TEXT PRIMARY KEY,
	listing_id TEXT NOT NULL REFERENCES listings(listing_id) ON DELETE CASCADE,
	user_id    TEXT NOT NULL,
	amount     REAL NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS comments (
	comment_id TEXT PRIMARY KEY,
	listing_id TEXT NOT NULL REFERENCES listings(listing_id) ON DELETE CASCADE,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	author     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS watchlist (
	user_id    TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
	listing_id TEXT NOT NULL REFERENCES listings(listing_id) ON DELETE CASCADE,
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (user_id, listing_id)
);

CREATE INDEX IF NOT EXISTS idx_bids_listing ON bids(listing_id);
CREATE INDEX IF NOT EXISTS idx_comments_listing ON comments(listing_id);
CREATE INDEX IF NOT EXISTS idx_listings_category ON listings(category_id);
`

// SQLRepo is a SQLite-backed implementation of AuctionDB built on sqlx with
// squirrel query building.
type SQLRepo struct {
	db *sqlx.DB
	sq sq.StatementBuilderType
}

// NewSQLRepo opens (or creates) the database at path and applies the schema.
// Pass ":memory:" for an ephemeral database.
func NewSQLRepo(path string) (*SQLRepo, error) {
	db, err := sqlx.Connect("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("sqlrepo: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlrepo: apply schema: %w", err)
	}
	return &SQLRepo{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}, nil
}

// Close releases the underlying database handle
func (r *SQLRepo) Close() error {
	return r.db.Close()
}

// CreateUser inserts a new account, mapping the UNIQUE violation on
// username to ErrDuplicateUsername.
func (r *SQLRepo) CreateUser(user model.User) error {
	query, args, err := r.sq.Insert("users").
		Columns("user_id", "username", "email", "password_hash", "created_at").
		Values(user.UserID, user.Username, user.Email, user.PasswordHash, user.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("create user %s: %w", user.Username, err)
	}

	if _, err := r.db.Exec(query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user %s: %w", user.Username, auctionerrors.ErrDuplicateUsername)
		}
		return fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return nil
}

// GetUserByID returns the account with the given id
func (r *SQLRepo) GetUserByID(userID string) (model.User, error) {
	var user model.User
	query, args, _ := r.sq.Select("*").From("users").Where(sq.Eq{"user_id": userID}).ToSql()
	if err := r.db.Get(&user, query, args...); err != nil {
		return model.User{}, wrapNoRows(err, fmt.Sprintf("get user %s", userID), auctionerrors.ErrUserNotFound)
	}
	return user, nil
}

// GetUserByUsername returns the account with the given username
func (r *SQLRepo) GetUserByUsername(username string) (model.User, error) {
	var user model.User
	query, args, _ := r.sq.Select("*").From("users").Where(sq.Eq{"username": username}).ToSql()
	if err := r.db.Get(&user, query, args...); err != nil {
		return model.User{}, wrapNoRows(err, fmt.Sprintf("get user by username %s", username), auctionerrors.ErrUserNotFound)
	}
	return user, nil
}

// AddCategory inserts a category, replacing any previous row with the same
// id so startup seeding is idempotent.
func (r *SQLRepo) AddCategory(category model.Category) error {
	query, args, err := r.sq.Insert("categories").
		Columns("category_id", "title", "description").
		Values(category.CategoryID, category.Title, category.Description).
		Suffix("ON CONFLICT(category_id) DO UPDATE SET title=excluded.title, description=excluded.description").
		ToSql()
	if err != nil {
		return fmt.Errorf("add category %s: %w", category.CategoryID, err)
	}
	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("add category %s: %w", category.CategoryID, err)
	}
	return nil
}

// GetCategory returns the category with the given id
func (r *SQLRepo) GetCategory(categoryID string) (model.Category, error) {
	var category model.Category
	query, args, _ := r.sq.Select("*").From("categories").Where(sq.Eq{"category_id": categoryID}).ToSql()
	if err := r.db.Get(&category, query, args...); err != nil {
		return model.Category{}, wrapNoRows(err, fmt.Sprintf("get category %s", categoryID), auctionerrors.ErrCategoryNotFound)
	}
	return category, nil
}

// ListCategories returns all categories ordered by title
func (r *SQLRepo) ListCategories() ([]model.Category, error) {
	categories := []model.Category{}
	query, args, _ := r.sq.Select("*").From("categories").OrderBy("title ASC").ToSql()
	if err := r.db.Select(&categories, query, args...); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// CreateListing inserts the listing and its seed bid in one transaction
func (r *SQLRepo) CreateListing(listing model.Listing, seedBid model.Bid) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("create listing %s: begin: %w", listing.ListingID, err)
	}
	defer tx.Rollback()

	query, args, err := r.sq.Insert("listings").
		Columns("listing_id", "title", "description", "starting_bid", "image_url",
			"category_id", "is_active", "creator_id", "winner_id", "created_at").
		Values(listing.ListingID, listing.Title, listing.Description, listing.StartingBid,
			listing.ImageURL, listing.CategoryID, listing.IsActive, listing.CreatorID,
			listing.WinnerID, listing.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("create listing %s: %w", listing.ListingID, err)
	}
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("create listing %s: %w", listing.ListingID, err)
	}

	query, args, err = r.sq.Insert("bids").
		Columns("bid_id", "listing_id", "user_id", "amount", "created_at").
		Values(seedBid.BidID, seedBid.ListingID, seedBid.UserID, seedBid.Amount, seedBid.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("create listing %s: seed bid: %w", listing.ListingID, err)
	}
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("create listing %s: seed bid: %w", listing.ListingID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create listing %s: commit: %w", listing.ListingID, err)
	}
	return nil
}

// GetListing returns the listing with the given id
func (r *SQLRepo) GetListing(listingID string) (model.Listing, error) {
	var listing model.Listing
	query, args, _ := r.sq.Select("*").From("listings").Where(sq.Eq{"listing_id": listingID}).ToSql()
	if err := r.db.Get(&listing, query, args...); err != nil {
		return model.Listing{}, wrapNoRows(err, fmt.Sprintf("get listing %s", listingID), auctionerrors.ErrListingNotFound)
	}
	return listing, nil
}

// ListActiveListings returns active listings, optionally restricted to a
// category, newest first.
func (r *SQLRepo) ListActiveListings(categoryID string) ([]model.Listing, error) {
	builder := r.sq.Select("*").From("listings").Where(sq.Eq{"is_active": true})
	if categoryID != "" {
		builder = builder.Where(sq.Eq{"category_id": categoryID})
	}
	query, args, _ := builder.OrderBy("created_at DESC").ToSql()

	listings := []model.Listing{}
	if err := r.db.Select(&listings, query, args...); err != nil {
		return nil, fmt.Errorf("list active listings: %w", err)
	}
	return listings, nil
}

// CloseListing marks the listing inactive and records the winner
func (r *SQLRepo) CloseListing(listingID, winnerID string) error {
	query, args, err := r.sq.Update("listings").
		Set("is_active", false).
		Set("winner_id", winnerID).
		Where(sq.Eq{"listing_id": listingID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("close listing %s: %w", listingID, err)
	}

	res, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("close listing %s: %w", listingID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("close listing %s: %w", listingID, auctionerrors.ErrListingNotFound)
	}
	return nil
}

// RecordBidForListing appends a bid to the listing's ledger
func (r *SQLRepo) RecordBidForListing(bid model.Bid) error {
	if _, err := r.GetListing(bid.ListingID); err != nil {
		return fmt.Errorf("record bid: %w", err)
	}

	query, args, err := r.sq.Insert("bids").
		Columns("bid_id", "listing_id", "user_id", "amount", "created_at").
		Values(bid.BidID, bid.ListingID, bid.UserID, bid.Amount, bid.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("record bid for listing %s: %w", bid.ListingID, err)
	}
	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("record bid for listing %s: %w", bid.ListingID, err)
	}
	return nil
}

// GetBidsByListing returns all bids for a listing in acceptance order
func (r *SQLRepo) GetBidsByListing(listingID string) ([]model.Bid, error) {
	if _, err := r.GetListing(listingID); err != nil {
		return nil, fmt.Errorf("get bids: %w", err)
	}

	bids := []model.Bid{}
	query, args, _ := r.sq.Select("*").From("bids").
		Where(sq.Eq{"listing_id": listingID}).
		OrderBy("created_at ASC").
		ToSql()
	if err := r.db.Select(&bids, query, args...); err != nil {
		return nil, fmt.Errorf("get bids for listing %s: %w", listingID, err)
	}
	return bids, nil
}

// GetTopBid returns the highest bid for a listing, earliest first on ties
func (r *SQLRepo) GetTopBid(listingID string) (model.Bid, error) {
	if _, err := r.GetListing(listingID); err != nil {
		return model.Bid{}, fmt.Errorf("get top bid: %w", err)
	}

	var bid model.Bid
	query, args, _ := r.sq.Select("*").From("bids").
		Where(sq.Eq{"listing_id": listingID}).
		OrderBy("amount DESC", "created_at ASC").
		Limit(1).
		ToSql()
	if err := r.db.Get(&bid, query, args...); err != nil {
		return model.Bid{}, wrapNoRows(err, fmt.Sprintf("get top bid for listing %s", listingID), auctionerrors.ErrNoBids)
	}
	return bid, nil
}

// AddComment appends a comment to the listing's log
func (r *SQLRepo) AddComment(comment model.Comment) error {
	if _, err := r.GetListing(comment.ListingID); err != nil {
		return fmt.Errorf("add comment: %w", err)
	}

	query, args, err := r.sq.Insert("comments").
		Columns("comment_id", "listing_id", "title", "content", "author", "created_at").
		Values(comment.CommentID, comment.ListingID, comment.Title, comment.Content,
			comment.Author, comment.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("add comment for listing %s: %w", comment.ListingID, err)
	}
	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("add comment for listing %s: %w", comment.ListingID, err)
	}
	return nil
}

// GetCommentsByListing returns all comments for a listing oldest first
func (r *SQLRepo) GetCommentsByListing(listingID string) ([]model.Comment, error) {
	if _, err := r.GetListing(listingID); err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}

	comments := []model.Comment{}
	query, args, _ := r.sq.Select("*").From("comments").
		Where(sq.Eq{"listing_id": listingID}).
		OrderBy("created_at ASC").
		ToSql()
	if err := r.db.Select(&comments, query, args...); err != nil {
		return nil, fmt.Errorf("get comments for listing %s: %w", listingID, err)
	}
	return comments, nil
}

// AddWatch records that a user watches a listing; re-adding is a no-op
func (r *SQLRepo) AddWatch(entry model.WatchlistEntry) error {
	if _, err := r.GetListing(entry.ListingID); err != nil {
		return fmt.Errorf("add watch: %w", err)
	}

	query, args, err := r.sq.Insert("watchlist").
		Columns("user_id", "listing_id", "created_at").
		Values(entry.UserID, entry.ListingID, entry.CreatedAt).
		Suffix("ON CONFLICT(user_id, listing_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("add watch for listing %s: %w", entry.ListingID, err)
	}
	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("add watch for listing %s: %w", entry.ListingID, err)
	}
	return nil
}

// RemoveWatch deletes the (user, listing) watch entry if it exists
func (r *SQLRepo) RemoveWatch(userID, listingID string) error {
	query, args, err := r.sq.Delete("watchlist").
		Where(sq.Eq{"user_id": userID, "listing_id": listingID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("remove watch for listing %s: %w", listingID, err)
	}
	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("remove watch for listing %s: %w", listingID, err)
	}
	return nil
}

// IsWatching reports whether the user currently watches the listing
func (r *SQLRepo) IsWatching(userID, listingID string) (bool, error) {
	var count int
	query, args, _ := r.sq.Select("COUNT(*)").From("watchlist").
		Where(sq.Eq{"user_id": userID, "listing_id": listingID}).
		ToSql()
	if err := r.db.Get(&count, query, args...); err != nil {
		return false, fmt.Errorf("is watching listing %s: %w", listingID, err)
	}
	return count > 0, nil
}

// GetWatchedListings returns the listings the user watches
func (r *SQLRepo) GetWatchedListings(userID string) ([]model.Listing, error) {
	listings := []model.Listing{}
	query, args, _ := r.sq.Select("l.*").From("listings l").
		Join("watchlist w ON w.listing_id = l.listing_id").
		Where(sq.Eq{"w.user_id": userID}).
		OrderBy("w.created_at DESC").
		ToSql()
	if err := r.db.Select(&listings, query, args...); err != nil {
		return nil, fmt.Errorf("get watched listings for user %s: %w", userID, err)
	}
	return listings, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure
func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode == sqlite3.ErrConstraintUnique || serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// wrapNoRows converts sql.ErrNoRows into the given not-found sentinel
func wrapNoRows(err error, op string, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, notFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
