package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"gamevault/backend/internal/config"
	"gamevault/backend/internal/dao"
	"gamevault/backend/internal/database"
	"gamevault/backend/internal/domain"
	"gamevault/backend/internal/hub"
	"gamevault/backend/internal/session"
)

// seed migrates the database and inserts the default accounts and catalog.
// Running it again leaves existing rows untouched.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Watch the default accounts so the run reports which ones it created.
	events := hub.NewHub()
	watched := make(map[string]hub.Client)
	for _, account := range domain.SeedAccounts() {
		client, unwatch := events.Watch(account.Username, 1)
		defer unwatch()
		watched[account.Username] = client
	}

	store := dao.NewGormDAO(db,
		dao.WithHub(events),
		dao.WithSessionConfig(session.Config{
			PollInterval: cfg.SessionPoll,
			PollAttempts: cfg.SessionPollAttempt,
			HoldDelay:    cfg.SessionHoldDelay,
		}),
	)
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := store.EnsureSeedData(ctx); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	for _, account := range domain.SeedAccounts() {
		username := account.Username
		select {
		case msg := <-watched[username]:
			log.Printf("Seeded account %q: %s", username, msg)
		default:
			log.Printf("Account %q already present", username)
		}
	}

	games, err := store.CatalogGames(ctx)
	if err != nil {
		log.Fatalf("Failed to read catalog: %v", err)
	}
	for _, g := range games {
		log.Printf("%3d  %-45s %-12s %s", g.ID, g.Title, g.Platform, g.Rating)
	}
	log.Printf("Catalog holds %d games.", len(games))
}
