package pipeline

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/MissingMap/MM-Backend/internal/registry"
)

// hashFields is the fixed, ordered subset of record fields covered by the
// content hash. Field order here is the serialization key order; changing it
// invalidates every stored hash.
type hashFields struct {
	Name                *string      `json:"name"`
	CurrentAge          *json.Number `json:"current_age"`
	AgeWhenMissing      *json.Number `json:"age_when_missing"`
	IncidentDate        *string      `json:"incident_date"`
	ClothingDescription *string      `json:"clothing_description"`
	PersonType          *string      `json:"person_type"`
	Gender              *string      `json:"gender"`
	AdditionalFeatures  *string      `json:"additional_features"`
	PhotoBase64         *string      `json:"photo_base64"`
}

// ContentHash fingerprints a record's mutable fields: compact JSON with the
// fixed key order above, HTML escaping off, absent fields as null, SHA-256,
// lowercase hex. Deterministic for a given record, but not interchangeable
// with hashes computed by other producers: absent fields serialize as null
// rather than being omitted, and the input is the cleaned record.
func ContentHash(rec registry.CleanRecord) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	// Encode cannot fail for this shape.
	_ = enc.Encode(hashFields{
		Name:                rec.Name,
		CurrentAge:          rec.CurrentAge,
		AgeWhenMissing:      rec.AgeWhenMissing,
		IncidentDate:        rec.IncidentDate,
		ClothingDescription: rec.ClothingDescription,
		PersonType:          rec.PersonType,
		Gender:              rec.Gender,
		AdditionalFeatures:  rec.AdditionalFeatures,
		PhotoBase64:         rec.PhotoBase64,
	})

	sum := sha256.Sum256(bytes.TrimRight(buf.Bytes(), "\n"))
	return hex.EncodeToString(sum[:])
}
