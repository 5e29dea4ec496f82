package main

import (
	"fmt"
	"os"
	"time"

	auction "auction-house/internal/auctionService"
	auth "auction-house/internal/authService"
	"auction-house/internal/config"
	model "auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/internal/server"
	"auction-house/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	utils.SetLogLevel(cfg.LogLevel)

	repo, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}

	seedCategories(repo)

	auctionSvc := auction.NewAuctionService(repo)
	authSvc, err := auth.NewAuthService(repo, cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up auth: %v\n", err)
		os.Exit(1)
	}

	router := server.SetupRouter(auctionSvc, authSvc, repo, authSvc)

	utils.Info("Starting auction server", map[string]any{"addr": cfg.Addr(), "store": cfg.Store})
	if err := router.Run(cfg.Addr()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// openStore selects the persistence backend from the configuration
func openStore(cfg config.Config) (repository.AuctionDB, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		return repository.NewSQLRepo(cfg.DatabasePath)
	default:
		return repository.NewMemoryRepo(), nil
	}
}

// seedCategories makes the fixed category set available on startup. The
// upsert keeps restarts idempotent for the SQL store.
func seedCategories(repo repository.AuctionDB) {
	categories := []model.Category{
		{CategoryID: "electronics", Title: "Electronics", Description: "Phones, computers and gadgets"},
		{CategoryID: "fashion", Title: "Fashion", Description: "Clothing, shoes and accessories"},
		{CategoryID: "home", Title: "Home & Garden", Description: "Furniture, decor and tools"},
		{CategoryID: "collectibles", Title: "Collectibles", Description: "Art, antiques and memorabilia"},
		{CategoryID: "sports", Title: "Sports", Description: "Equipment and sportswear"},
	}

	for _, category := range categories {
		if err := repo.AddCategory(category); err != nil {
			utils.Warn("Failed to seed category", map[string]any{"category_id": category.CategoryID, "error": err.Error()})
		}
	}
}
