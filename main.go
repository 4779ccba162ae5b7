package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/MissingMap/MM-Backend/internal/config"
	"github.com/MissingMap/MM-Backend/internal/db"
	"github.com/MissingMap/MM-Backend/internal/geocode"
	"github.com/MissingMap/MM-Backend/internal/middleware"
	"github.com/MissingMap/MM-Backend/internal/persons"
	"github.com/MissingMap/MM-Backend/internal/pipeline"
	"github.com/MissingMap/MM-Backend/internal/registry"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := persons.Init(database); err != nil {
		log.Fatal("Failed to migrate: ", err)
	}

	store := persons.NewStore(database, cfg.BatchSize)
	runner := pipeline.NewRunner(
		registry.NewClient(cfg),
		geocode.NewClient(cfg),
		store,
	)
	handler := &persons.Handler{Store: store, Runner: runner}

	r := chi.NewRouter()
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Get("/", RootHandler)
	r.Mount("/persons", persons.SetupRoutes(handler, cfg.WorkerSecret))
	r.Mount("/pipeline", persons.PipelineRoutes(handler, cfg.WorkerSecret))

	if cfg.RefreshInterval > 0 {
		go scheduleRuns(runner, cfg.RefreshInterval)
	}

	log.Printf("Server listening on port :%s...", cfg.Port)
	if err := http.ListenAndServe("0.0.0.0:"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}

// scheduleRuns is the timer trigger. A tick that lands while a run is still
// going is skipped, not queued.
func scheduleRuns(runner *pipeline.Runner, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		log.Println("[scheduler] timer trigger")
		_, err := runner.Run(context.Background())
		if errors.Is(err, pipeline.ErrRunInProgress) {
			log.Println("[scheduler] run in progress, skipping tick")
			continue
		}
		if err != nil {
			log.Printf("[scheduler] run failed: %v", err)
		}
	}
}
