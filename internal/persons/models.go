package persons

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// MissingPerson is a stored registry record enriched with coordinates and its
// content hash. Rows are only ever inserted and deleted whole; a changed
// record is deleted and reinserted, never updated in place.
type MissingPerson struct {
	ID                  string  `gorm:"primaryKey" json:"id"`
	Name                string  `json:"name"`
	CurrentAge          *int64  `json:"current_age"`
	AgeWhenMissing      *int64  `json:"age_when_missing"`
	IncidentDate        *string `json:"incident_date"`
	ClothingDescription *string `json:"clothing_description"`
	PersonType          *string `json:"person_type"`
	Gender              *string `json:"gender"`
	IncidentLocation    *string `json:"incident_location"`
	IncidentX           float64 `json:"incident_x"`
	IncidentY           float64 `json:"incident_y"`
	AdditionalFeatures  *string `json:"additional_features"`
	PhotoBase64         *string `gorm:"type:text" json:"photo_base64,omitempty"`
	DataHash            string  `gorm:"not null" json:"data_hash"`
}

// NearbyPerson is a MissingPerson row with its great-circle distance from the
// query point.
type NearbyPerson struct {
	MissingPerson
	Distance float64 `json:"distance"`
}

// PipelineRun is one row of run history.
type PipelineRun struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
	InsertedCount int            `json:"inserted_count"`
	DeletedCount  int            `json:"deleted_count"`
	InsertedNames pq.StringArray `gorm:"type:text[]" json:"inserted_names"`
	DeletedNames  pq.StringArray `gorm:"type:text[]" json:"deleted_names"`
	Error         string         `json:"error,omitempty"`
}
