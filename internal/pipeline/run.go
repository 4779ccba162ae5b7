package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MissingMap/MM-Backend/internal/geocode"
	"github.com/MissingMap/MM-Backend/internal/registry"
)

// ErrRunInProgress is returned when a run is triggered while another is still
// going; triggers are serialized, never queued.
var ErrRunInProgress = errors.New("pipeline run already in progress")

// Fetcher retrieves the full registry record set.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]registry.RawRecord, error)
}

// Geocoder resolves a location query to coordinates, falling back internally.
type Geocoder interface {
	Resolve(ctx context.Context, query string) geocode.Coordinates
}

// EnrichedRecord is an insert candidate with coordinates attached.
type EnrichedRecord struct {
	Candidate
	IncidentX float64
	IncidentY float64
}

// RunRecord captures the outcome of one pipeline run for the history table.
type RunRecord struct {
	ID            uuid.UUID
	StartedAt     time.Time
	FinishedAt    time.Time
	InsertedCount int
	DeletedCount  int
	InsertedNames []string
	DeletedNames  []string
	Error         string
}

// Store is the persistence collaborator the pipeline writes through.
type Store interface {
	// Snapshot returns identifier -> {name, data_hash} for every stored row.
	Snapshot(ctx context.Context) (map[string]StoredSummary, error)

	// Apply removes the rows in deleteIDs, then inserts the enriched
	// records, both in batches. The delete phase finishes before the first
	// insert.
	Apply(ctx context.Context, inserts []EnrichedRecord, deleteIDs []string) error

	// RecordRun appends a run-history row.
	RecordRun(ctx context.Context, run RunRecord) error
}

// Summary is the caller-facing result of a run.
type Summary struct {
	Message       string   `json:"message"`
	InsertedNames []string `json:"new_records_names"`
	DeletedNames  []string `json:"deleted_records_names"`
}

// Runner sequences one full pipeline pass: fetch, reconcile, geocode,
// persist.
type Runner struct {
	fetcher  Fetcher
	geocoder Geocoder
	store    Store
	mu       sync.Mutex
}

func NewRunner(fetcher Fetcher, geocoder Geocoder, store Store) *Runner {
	return &Runner{fetcher: fetcher, geocoder: geocoder, store: store}
}

// Run executes one pipeline pass. Only records the reconciler marks for
// insertion are geocoded; unchanged rows are never touched. A concurrent
// trigger gets ErrRunInProgress.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if !r.mu.TryLock() {
		return Summary{}, ErrRunInProgress
	}
	defer r.mu.Unlock()

	run := RunRecord{ID: uuid.New(), StartedAt: time.Now()}
	log.Printf("[pipeline] run %s started", run.ID)

	summary, err := r.execute(ctx, &run)

	run.FinishedAt = time.Now()
	if err != nil {
		run.Error = err.Error()
	}
	if recErr := r.store.RecordRun(ctx, run); recErr != nil {
		// History is advisory; the run outcome stands.
		log.Printf("[pipeline] run %s: record history: %v", run.ID, recErr)
	}

	if err != nil {
		log.Printf("[pipeline] run %s failed: %v", run.ID, err)
		return Summary{}, err
	}
	log.Printf("[pipeline] run %s finished: %d inserted, %d deleted in %dms",
		run.ID, run.InsertedCount, run.DeletedCount,
		run.FinishedAt.Sub(run.StartedAt).Milliseconds())
	return summary, nil
}

func (r *Runner) execute(ctx context.Context, run *RunRecord) (Summary, error) {
	raw, err := r.fetcher.FetchAll(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("fetch registry: %w", err)
	}

	cleaned := make([]registry.CleanRecord, len(raw))
	for i, rec := range raw {
		cleaned[i] = registry.Clean(rec)
	}

	existing, err := r.store.Snapshot(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("read store snapshot: %w", err)
	}

	diff := Reconcile(cleaned, existing)
	log.Printf("[pipeline] run %s: %d fetched, %d to insert, %d to delete",
		run.ID, len(cleaned), len(diff.ToInsert), len(diff.ToDeleteIDs))

	enriched := make([]EnrichedRecord, 0, len(diff.ToInsert))
	for _, cand := range diff.ToInsert {
		query := ""
		if cand.Record.IncidentLocation != nil {
			query = geocode.ReduceAddress(*cand.Record.IncidentLocation)
		}
		coords := r.geocoder.Resolve(ctx, query)
		enriched = append(enriched, EnrichedRecord{
			Candidate: cand,
			IncidentX: coords.X,
			IncidentY: coords.Y,
		})
	}

	if err := r.store.Apply(ctx, enriched, diff.ToDeleteIDs); err != nil {
		return Summary{}, fmt.Errorf("apply changes: %w", err)
	}

	run.InsertedCount = len(diff.ToInsert)
	run.DeletedCount = len(diff.ToDeleteIDs)
	run.InsertedNames = diff.InsertedNames
	run.DeletedNames = diff.DeletedNames

	return Summary{
		Message:       "Database updated",
		InsertedNames: diff.InsertedNames,
		DeletedNames:  diff.DeletedNames,
	}, nil
}
