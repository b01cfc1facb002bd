package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/Skotchmaster/delivery_shop/internal/config"
	"github.com/Skotchmaster/delivery_shop/internal/db"
	"github.com/Skotchmaster/delivery_shop/internal/logging"
	"github.com/Skotchmaster/delivery_shop/internal/repo"
	"github.com/Skotchmaster/delivery_shop/internal/seed"
)

func main() {
	reset := flag.Bool("reset", false, "delete all existing data before seeding")
	flag.Parse()

	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With("service", cfg.ServiceName, "cmd", "seed")
	ctx, cancel := context.WithTimeout(logging.IntoContext(context.Background(), logger), 2*time.Minute)
	defer cancel()

	gdb, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close(gdb)
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	sum, err := seed.Run(ctx, repo.New(gdb), *reset)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Printf("seeded %d users, %d products, %d orders, %d approved emails", sum.Users, sum.Products, sum.Orders, sum.Approved)
}
