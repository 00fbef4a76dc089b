package main

import (
	"fmt"
	"os"
	"time"

	bidding "farmtrade-bidding/internal/biddingService"
	"farmtrade-bidding/internal/config"
	model "farmtrade-bidding/internal/models"
	"farmtrade-bidding/internal/repository"
	"farmtrade-bidding/internal/server"
	"farmtrade-bidding/utils"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		utils.Fatal("failed to load configuration", map[string]any{"error": err.Error()})
	}
	utils.SetLogLevel(cfg.LogLevel)

	repo, cleanup, err := openRepository(cfg)
	if err != nil {
		utils.Fatal("failed to open storage", map[string]any{"error": err.Error()})
	}
	defer cleanup()

	biddingSvc := bidding.NewBiddingService(repo)

	router := server.SetupRouter(biddingSvc)

	utils.Info("starting auction server", map[string]any{"addr": cfg.Addr()})
	if err := router.Run(cfg.Addr()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// openRepository selects the store: SQLite when DB_PATH is set, an
// in-memory repo seeded with sample data otherwise.
func openRepository(cfg config.Config) (repository.AuctionDB, func(), error) {
	if cfg.DBPath != "" {
		repo, err := repository.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		utils.Info("using sqlite storage", map[string]any{"path": cfg.DBPath})
		return repo, func() { _ = repo.Close() }, nil
	}

	repo := repository.NewMemoryRepo()
	prepopulate(repo)
	utils.Info("using in-memory storage", nil)
	return repo, func() {}, nil
}

// prepopulate adds sample users and items to the in-memory repo
func prepopulate(repo *repository.MemoryRepo) {
	users := []model.User{
		{UserID: "farmer1", Username: "sunil"},
		{UserID: "buyer1", Username: "kamala"},
		{UserID: "buyer2", Username: "ruwan"},
	}
	for _, user := range users {
		repo.AddUser(user)
	}

	now := time.Now().UTC()
	items := []model.Item{
		{ItemID: "item1", FarmerID: "farmer1", Category: "vegetables", Name: "Carrots", Quantity: 250, Unit: "kg", IsOrganic: true, Description: "Fresh highland carrots", IsBidActive: true, DateAdded: now},
		{ItemID: "item2", FarmerID: "farmer1", Category: "fruits", Name: "Bananas", Quantity: 100, Unit: "kg", IsOrganic: false, Description: "Cavendish bananas", IsBidActive: true, DateAdded: now},
		{ItemID: "item3", FarmerID: "farmer1", Category: "grains", Name: "Red Rice", Quantity: 500, Unit: "kg", IsOrganic: true, Description: "Traditional red rice", IsBidActive: true, DateAdded: now},
	}
	for _, item := range items {
		repo.AddItem(item)
	}
}
