package main

import (
	"context"
	"flag"
	"log"

	"schoolportal/internal/clock"
	"schoolportal/internal/config"
	"schoolportal/internal/seed"
	"schoolportal/internal/store"
)

// Seed drops the portal tables, recreates them and loads the demo data.
func main() {
	cfg := config.Load()
	ifEmpty := flag.Bool("if-empty", false, "only seed when there are no users, keeping existing data")
	flag.Parse()

	ctx := context.Background()
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	clk := clock.New(loc)

	db, err := store.NewDB(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	if *ifEmpty {
		if err := db.Migrate(ctx); err != nil {
			log.Fatalf("migrate failed: %v", err)
		}
		seeded, err := seed.IfEmpty(ctx, db, clk)
		if err != nil {
			log.Fatalf("seed failed: %v", err)
		}
		if !seeded {
			log.Println("users already present, nothing seeded")
			return
		}
	} else if err := seed.Run(ctx, db, clk); err != nil {
		log.Fatalf("seed failed: %v", err)
	}

	log.Println("database seeding complete")
	log.Println("test credentials:")
	for _, a := range seed.Accounts {
		log.Printf("  %-8s %s / %s", a.Role, a.Email, a.Password)
	}
}
