package perftests

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	auction "auction-house/internal/auctionService"
	"auction-house/internal/repository"
)

func seedBenchListing(svc *auction.AuctionService, creatorID, title string, startingBid float64) (string, error) {
	listing, err := svc.CreateListing(creatorID, auction.CreateListingInput{
		Title:       title,
		Description: "benchmark listing",
		StartingBid: startingBid,
		ImageURL:    "https://img.example.com/bench.jpg",
	})
	if err != nil {
		return "", err
	}
	return listing.ListingID, nil
}

// Benchmark 1: PlaceBid - Isolated Listings (Low Contention - Micro Benchmark)
func Benchmark_PlaceBid_Isolated(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := auction.NewAuctionService(repo)

	listingIDs := make([]string, b.N)
	for i := 0; i < b.N; i++ {
		id, err := seedBenchListing(svc, "seller", fmt.Sprintf("Low-Contention Listing %d", i), 50)
		if err != nil {
			b.Fatalf("failed to seed listing: %v", err)
		}
		listingIDs[i] = id
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		userID := fmt.Sprintf("user_%d", i)
		bidAmount := float64(51 + rand.Intn(100))
		if _, err := svc.PlaceBid(listingIDs[i], userID, bidAmount); err != nil {
			b.Fatalf("failed to place bid: %v", err)
		}
	}
}

// Benchmark 2: PlaceBid - Shared Listing (High Contention - Concurrency Benchmark)
func Benchmark_PlaceBid_ConcurrentSharedListing(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := auction.NewAuctionService(repo)

	listingID, err := seedBenchListing(svc, "seller", "High-Contention Listing", 50)
	if err != nil {
		b.Fatalf("failed to seed listing: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 50

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			userID := fmt.Sprintf("user_parallel_%d", rnd.Int())

			nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
			_, _ = svc.PlaceBid(listingID, userID, float64(nextBid))
		}
	})
}

// Benchmark 3: GetTopBid - Single-Threaded (Low Contention)
func Benchmark_GetTopBid_SingleThreaded(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := auction.NewAuctionService(repo)

	listingIDs := make([]string, b.N)
	for i := 0; i < b.N; i++ {
		id, err := seedBenchListing(svc, "seller", fmt.Sprintf("Low-Contention Listing %d", i), 50)
		if err != nil {
			b.Fatalf("failed to seed listing: %v", err)
		}
		listingIDs[i] = id

		for j := 0; j < 10; j++ {
			userID := fmt.Sprintf("user_%d_%d", i, j)
			bidAmount := float64(51 + j*10)
			_, _ = svc.PlaceBid(id, userID, bidAmount)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := svc.GetTopBid(listingIDs[i]); err != nil {
			b.Fatalf("failed to get top bid: %v", err)
		}
	}
}

// Benchmark 4: GetTopBid - Concurrent (High Contention)
func Benchmark_GetTopBid_ConcurrentSharedListing(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := auction.NewAuctionService(repo)

	listingID, err := seedBenchListing(svc, "seller", "High-Contention Listing", 50)
	if err != nil {
		b.Fatalf("failed to seed listing: %v", err)
	}

	for j := 0; j < 100; j++ {
		userID := fmt.Sprintf("user_%d", j)
		bidAmount := float64(51 + j)
		_, _ = svc.PlaceBid(listingID, userID, bidAmount)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var counter int64

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := svc.GetTopBid(listingID); err != nil {
				b.Fatalf("failed to get top bid: %v", err)
			}
			atomic.AddInt64(&counter, 1)
		}
	})
}

// Benchmark 5: Mixed Workload (Readers + Writers concurrently)
func Benchmark_MixedWorkload_SharedListing(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := auction.NewAuctionService(repo)

	listingID, err := seedBenchListing(svc, "seller", "Shared Listing", 50)
	if err != nil {
		b.Fatalf("failed to seed listing: %v", err)
	}

	for j := 0; j < 50; j++ {
		userID := fmt.Sprintf("user_seed_%d", j)
		bidAmount := float64(51 + j*2)
		_, _ = svc.PlaceBid(listingID, userID, bidAmount)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 150

	// Ratio: 70% readers, 30% writers
	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			opType := rnd.Intn(10)
			switch {
			case opType < 3:
				userID := fmt.Sprintf("user_writer_%d", rnd.Int())
				nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
				_, _ = svc.PlaceBid(listingID, userID, float64(nextBid))
			default:
				_, _ = svc.GetTopBid(listingID)
			}
		}
	})
}
