// Command seed bootstraps an empty database with the current registry
// dataset: one full fetch + geocode pass written straight through the store.
//
//	go run ./cmd/seed -env .env.local
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/MissingMap/MM-Backend/internal/config"
	"github.com/MissingMap/MM-Backend/internal/db"
	"github.com/MissingMap/MM-Backend/internal/geocode"
	"github.com/MissingMap/MM-Backend/internal/persons"
	"github.com/MissingMap/MM-Backend/internal/pipeline"
	"github.com/MissingMap/MM-Backend/internal/registry"
)

func main() {
	envPath := flag.String("env", ".env.local", "dotenv file to load")
	dryRun := flag.Bool("dry-run", false, "fetch and diff only, write nothing")
	flag.Parse()

	_ = godotenv.Load(*envPath)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	ctx := context.Background()

	if *dryRun {
		if err := dryRunFetch(ctx, cfg); err != nil {
			log.Fatal(err)
		}
		return
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := persons.Init(database); err != nil {
		log.Fatal("Failed to migrate: ", err)
	}

	runner := pipeline.NewRunner(
		registry.NewClient(cfg),
		geocode.NewClient(cfg),
		persons.NewStore(database, cfg.BatchSize),
	)

	summary, err := runner.Run(ctx)
	if err != nil {
		log.Fatal("Seed run failed: ", err)
	}

	fmt.Printf("%s: %d inserted, %d deleted\n",
		summary.Message, len(summary.InsertedNames), len(summary.DeletedNames))
}

// dryRunFetch reports what a seed run would insert, without geocoding or
// touching the database.
func dryRunFetch(ctx context.Context, cfg config.Config) error {
	raw, err := registry.NewClient(cfg).FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("fetch registry: %w", err)
	}

	cleaned := make([]registry.CleanRecord, len(raw))
	for i, rec := range raw {
		cleaned[i] = registry.Clean(rec)
	}
	diff := pipeline.Reconcile(cleaned, map[string]pipeline.StoredSummary{})

	fmt.Fprintf(os.Stdout, "dry run: %d records fetched, %d would be inserted\n",
		len(raw), len(diff.ToInsert))
	return nil
}
