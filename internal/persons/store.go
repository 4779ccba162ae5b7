package persons

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/MissingMap/MM-Backend/internal/pipeline"
)

// ErrNotFound is returned by ByID when no row matches.
var ErrNotFound = errors.New("person not found")

// haversine distance in km, Earth radius 6371. Parameters bind as
// (y, x, y, y, x, y, threshold, limit); acos input is clamped against
// floating-point drift past 1.0.
const nearbySQL = `
SELECT id, name, current_age, age_when_missing, incident_date, clothing_description,
       person_type, gender, incident_location, incident_x, incident_y, additional_features,
       photo_base64, data_hash,
       (6371 * ACOS(LEAST(1.0,
            COS(RADIANS(?)) * COS(RADIANS(incident_y)) * COS(RADIANS(incident_x) - RADIANS(?)) +
            SIN(RADIANS(?)) * SIN(RADIANS(incident_y))
       ))) AS distance
FROM missing_persons
WHERE (
    6371 * ACOS(LEAST(1.0,
        COS(RADIANS(?)) * COS(RADIANS(incident_y)) * COS(RADIANS(incident_x) - RADIANS(?)) +
        SIN(RADIANS(?)) * SIN(RADIANS(incident_y))
    ))
) <= ?
ORDER BY distance ASC
LIMIT ?`

// Store is the persistence layer over the missing_persons and pipeline_runs
// tables. It implements pipeline.Store.
type Store struct {
	db        *gorm.DB
	batchSize int
}

var _ pipeline.Store = (*Store)(nil)

func NewStore(db *gorm.DB, batchSize int) *Store {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Store{db: db, batchSize: batchSize}
}

// Snapshot reads identifier -> {name, data_hash} for every stored row.
func (s *Store) Snapshot(ctx context.Context) (map[string]pipeline.StoredSummary, error) {
	var rows []MissingPerson
	if err := s.db.WithContext(ctx).
		Select("id", "name", "data_hash").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	snapshot := make(map[string]pipeline.StoredSummary, len(rows))
	for _, row := range rows {
		snapshot[row.ID] = pipeline.StoredSummary{Name: row.Name, DataHash: row.DataHash}
	}
	return snapshot, nil
}

// Apply removes stale rows and inserts the enriched records, batched, inside
// one transaction. Deletes run first so a changed record's reinsert lands on
// a clean primary key.
func (s *Store) Apply(ctx context.Context, inserts []pipeline.EnrichedRecord, deleteIDs []string) error {
	rows := toRows(dedupeLastWins(inserts))

	start := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, batch := range chunk(deleteIDs, s.batchSize) {
			if err := tx.Where("id IN ?", batch).Delete(&MissingPerson{}).Error; err != nil {
				return fmt.Errorf("delete batch: %w", err)
			}
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, s.batchSize).Error; err != nil {
				return fmt.Errorf("insert batch: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[store] applied %d inserts, %d deletes in %dms",
		len(rows), len(deleteIDs), time.Since(start).Milliseconds())
	return nil
}

// RecordRun appends one run-history row.
func (s *Store) RecordRun(ctx context.Context, run pipeline.RunRecord) error {
	row := PipelineRun{
		ID:            run.ID,
		StartedAt:     run.StartedAt,
		FinishedAt:    run.FinishedAt,
		InsertedCount: run.InsertedCount,
		DeletedCount:  run.DeletedCount,
		InsertedNames: run.InsertedNames,
		DeletedNames:  run.DeletedNames,
		Error:         run.Error,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Nearby returns stored rows within thresholdKM of the center point, closest
// first, capped at limit.
func (s *Store) Nearby(ctx context.Context, x, y, thresholdKM float64, limit int) ([]NearbyPerson, error) {
	var rows []NearbyPerson
	err := s.db.WithContext(ctx).
		Raw(nearbySQL, y, x, y, y, x, y, thresholdKM, limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("nearby query: %w", err)
	}
	return rows, nil
}

// ByID fetches one stored row.
func (s *Store) ByID(ctx context.Context, id string) (*MissingPerson, error) {
	var row MissingPerson
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch person %s: %w", id, err)
	}
	return &row, nil
}

// RecentRuns lists the newest run-history rows.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]PipelineRun, error) {
	var rows []PipelineRun
	err := s.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return rows, nil
}

// dedupeLastWins collapses duplicate identifiers in one insert set, keeping
// the last occurrence in the position of the first. The registry occasionally
// repeats a record across page boundaries; the unique primary key would
// reject the batch otherwise.
func dedupeLastWins(inserts []pipeline.EnrichedRecord) []pipeline.EnrichedRecord {
	byID := make(map[string]int, len(inserts))
	out := make([]pipeline.EnrichedRecord, 0, len(inserts))

	for _, rec := range inserts {
		id := rec.Record.ID.String()
		if pos, ok := byID[id]; ok {
			out[pos] = rec
			continue
		}
		byID[id] = len(out)
		out = append(out, rec)
	}
	return out
}

func toRows(inserts []pipeline.EnrichedRecord) []MissingPerson {
	rows := make([]MissingPerson, len(inserts))
	for i, rec := range inserts {
		rows[i] = MissingPerson{
			ID:                  rec.Record.ID.String(),
			Name:                deref(rec.Record.Name),
			CurrentAge:          numToInt(rec.Record.CurrentAge),
			AgeWhenMissing:      numToInt(rec.Record.AgeWhenMissing),
			IncidentDate:        rec.Record.IncidentDate,
			ClothingDescription: rec.Record.ClothingDescription,
			PersonType:          rec.Record.PersonType,
			Gender:              rec.Record.Gender,
			IncidentLocation:    rec.Record.IncidentLocation,
			IncidentX:           rec.IncidentX,
			IncidentY:           rec.IncidentY,
			AdditionalFeatures:  rec.Record.AdditionalFeatures,
			PhotoBase64:         rec.Record.PhotoBase64,
			DataHash:            rec.DataHash,
		}
	}
	return rows
}

func chunk(ids []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func numToInt(n *json.Number) *int64 {
	if n == nil {
		return nil
	}
	v, err := n.Int64()
	if err != nil {
		return nil
	}
	return &v
}
