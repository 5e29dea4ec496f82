package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
)

// newTestSQLRepo opens an ephemeral SQLite database for one test
func newTestSQLRepo(t *testing.T) *SQLRepo {
	t.Helper()

	repo, err := NewSQLRepo(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sqlSeedUser(t *testing.T, repo *SQLRepo, userID, username string) {
	t.Helper()
	require.NoError(t, repo.CreateUser(model.User{
		UserID:       userID,
		Username:     username,
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}))
}

func sqlSeedListing(t *testing.T, repo *SQLRepo, listingID, creatorID string, startingBid float64) model.Listing {
	t.Helper()

	listing := model.Listing{
		ListingID:   listingID,
		Title:       "Listing " + listingID,
		Description: "description",
		StartingBid: startingBid,
		ImageURL:    "https://img.example.com/" + listingID,
		IsActive:    true,
		CreatorID:   creatorID,
		CreatedAt:   time.Now().UTC(),
	}
	seed := model.Bid{
		BidID:     listingID + "-seed",
		ListingID: listingID,
		UserID:    creatorID,
		Amount:    startingBid,
		CreatedAt: listing.CreatedAt,
	}
	require.NoError(t, repo.CreateListing(listing, seed))
	return listing
}

func TestSQLRepo_Users(t *testing.T) {
	t.Parallel()

	repo := newTestSQLRepo(t)
	sqlSeedUser(t, repo, "u1", "alice")

	t.Run("lookup_by_id_and_username", func(t *testing.T) {
		byID, err := repo.GetUserByID("u1")
		require.NoError(t, err)
		require.Equal(t, "alice", byID.Username)

		byName, err := repo.GetUserByUsername("alice")
		require.NoError(t, err)
		require.Equal(t, "u1", byName.UserID)
	})

	t.Run("duplicate_username", func(t *testing.T) {
		err := repo.CreateUser(model.User{UserID: "u2", Username: "alice", PasswordHash: "hash", CreatedAt: time.Now()})
		require.ErrorIs(t, err, auctionerrors.ErrDuplicateUsername)
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := repo.GetUserByID("missing")
		require.ErrorIs(t, err, auctionerrors.ErrUserNotFound)
		_, err = repo.GetUserByUsername("nobody")
		require.ErrorIs(t, err, auctionerrors.ErrUserNotFound)
	})
}

func TestSQLRepo_Categories(t *testing.T) {
	t.Parallel()

	repo := newTestSQLRepo(t)
	require.NoError(t, repo.AddCategory(model.Category{CategoryID: "cat1", Title: "Electronics"}))
	// Re-seeding the same id updates in place
	require.NoError(t, repo.AddCategory(model.Category{CategoryID: "cat1", Title: "Electronics", Description: "updated"}))

	category, err := repo.GetCategory("cat1")
	require.NoError(t, err)
	require.Equal(t, "updated", category.Description)

	categories, err := repo.ListCategories()
	require.NoError(t, err)
	require.Len(t, categories, 1)

	_, err = repo.GetCategory("missing")
	require.ErrorIs(t, err, auctionerrors.ErrCategoryNotFound)
}

func TestSQLRepo_CreateListing_Atomic(t *testing.T) {
	t.Parallel()

	repo := newTestSQLRepo(t)
	sqlSeedUser(t, repo, "u1", "alice")
	sqlSeedListing(t, repo, "listing1", "u1", 50)

	got, err := repo.GetListing("listing1")
	require.NoError(t, err)
	require.True(t, got.IsActive)
	require.Equal(t, "u1", got.CreatorID)

	bids, err := repo.GetBidsByListing("listing1")
	require.NoError(t, err)
	require.Len(t, bids, 1)
	require.Equal(t, 50.0, bids[0].Amount)

	t.Run("duplicate_listing_rolls_back_seed_bid", func(t *testing.T) {
		duplicate := got
		err := repo.CreateListing(duplicate, model.Bid{
			BidID:     "second-seed",
			ListingID: "listing1",
			UserID:    "u1",
			Amount:    50,
			CreatedAt: time.Now(),
		})
		require.Error(t, err)

		bids, err := repo.GetBidsByListing("listing1")
		require.NoError(t, err)
		require.Len(t, bids, 1)
	})
}

func TestSQLRepo_Bids(t *testing.T) {
	t.Parallel()

	repo := newTestSQLRepo(t)
	sqlSeedUser(t, repo, "u1", "alice")
	sqlSeedListing(t, repo, "listing1", "u1", 10)

	now := time.Now().UTC()
	bids := []model.Bid{
		{BidID: "bid1", ListingID: "listing1", UserID: "u2", Amount: 15, CreatedAt: now.Add(1 * time.Second)},
		{BidID: "bid2", ListingID: "listing1", UserID: "u3", Amount: 40, CreatedAt: now.Add(2 * time.Second)},
		{BidID: "bid3", ListingID: "listing1", UserID: "u4", Amount: 25, CreatedAt: now.Add(3 * time.Second)},
	}
	for _, b := range bids {
		require.NoError(t, repo.RecordBidForListing(b))
	}

	t.Run("history_in_acceptance_order", func(t *testing.T) {
		history, err := repo.GetBidsByListing("listing1")
		require.NoError(t, err)
		require.Len(t, history, 4)
		require.Equal(t, "listing1-seed", history[0].BidID)
		require.Equal(t, "bid3", history[3].BidID)
	})

	t.Run("top_bid_by_amount", func(t *testing.T) {
		top, err := repo.GetTopBid("listing1")
		require.NoError(t, err)
		require.Equal(t, "bid2", top.BidID)
		require.Equal(t, 40.0, top.Amount)
	})

	t.Run("unknown_listing", func(t *testing.T) {
		err := repo.RecordBidForListing(model.Bid{BidID: "bidX", ListingID: "missing", UserID: "u2", Amount: 5, CreatedAt: now})
		require.ErrorIs(t, err, auctionerrors.ErrListingNotFound)

		_, err = repo.GetTopBid("missing")
		require.ErrorIs(t, err, auctionerrors.ErrListingNotFound)
	})
}

func TestSQLRepo_CloseListing(t *testing.T) {
	t.Parallel()

	repo := newTestSQLRepo(t)
	sqlSeedUser(t, repo, "u1", "alice")
	sqlSeedListing(t, repo, "listing1", "u1", 10)

	require.NoError(t, repo.CloseListing("listing1", "u2"))

	got, err := repo.GetListing("listing1")
	require.NoError(t, err)
	require.False(t, got.IsActive)
	require.Equal(t, "u2", got.WinnerID)

	require.ErrorIs(t, repo.CloseListing("missing", "u2"), auctionerrors.ErrListingNotFound)

	listings, err := repo.ListActiveListings("")
	require.NoError(t, err)
	require.Empty(t, listings)
}

func TestSQLRepo_Comments(t *testing.T) {
	t.Parallel()

	repo := newTestSQLRepo(t)
	sqlSeedUser(t, repo, "u1", "alice")
	sqlSeedListing(t, repo, "listing1", "u1", 10)

	now := time.Now().UTC()
	for i, title := range []string{"first", "second", "third"} {
		require.NoError(t, repo.AddComment(model.Comment{
			CommentID: title,
			ListingID: "listing1",
			Title:     title,
			Content:   "content",
			Author:    "alice",
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		}))
	}

	comments, err := repo.GetCommentsByListing("listing1")
	require.NoError(t, err)
	require.Len(t, comments, 3)
	require.Equal(t, "first", comments[0].CommentID)
	require.Equal(t, "third", comments[2].CommentID)
}

func TestSQLRepo_Watchlist(t *testing.T) {
	t.Parallel()

	repo := newTestSQLRepo(t)
	sqlSeedUser(t, repo, "u1", "alice")
	sqlSeedUser(t, repo, "u2", "bob")
	listing := sqlSeedListing(t, repo, "listing1", "u1", 10)

	entry := model.WatchlistEntry{UserID: "u2", ListingID: "listing1", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.AddWatch(entry))
	// Re-adding the same pair is a no-op
	require.NoError(t, repo.AddWatch(entry))

	watching, err := repo.IsWatching("u2", "listing1")
	require.NoError(t, err)
	require.True(t, watching)

	watched, err := repo.GetWatchedListings("u2")
	require.NoError(t, err)
	require.Len(t, watched, 1)
	require.Equal(t, listing.ListingID, watched[0].ListingID)

	require.NoError(t, repo.RemoveWatch("u2", "listing1"))
	watching, err = repo.IsWatching("u2", "listing1")
	require.NoError(t, err)
	require.False(t, watching)
}
