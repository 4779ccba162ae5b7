package registry

import "encoding/json"

// RawRecord is a missing-person case exactly as the safe182 registry returns
// it. String fields frequently carry stray whitespace and quote characters;
// age fields arrive as bare JSON numbers. Any field except the identifier may
// be absent.
type RawRecord struct {
	ID                  json.Number  `json:"msspsnIdntfccd"`
	Name                *string      `json:"nm"`
	CurrentAge          *json.Number `json:"ageNow"`
	AgeWhenMissing      *json.Number `json:"age"`
	IncidentDate        *string      `json:"occrde"`
	ClothingDescription *string      `json:"alldressingDscd"`
	PersonType          *string      `json:"writngTrgetDscd"`
	Gender              *string      `json:"sexdstnDscd"`
	IncidentLocation    *string      `json:"occrAdres"`
	AdditionalFeatures  *string      `json:"etcSpfeatr"`
	PhotoBase64         *string      `json:"tknphotoFile"`
}

// CleanRecord is a RawRecord after field cleaning. Absent fields stay absent;
// identifier and ages pass through untouched.
type CleanRecord struct {
	ID                  json.Number
	Name                *string
	CurrentAge          *json.Number
	AgeWhenMissing      *json.Number
	IncidentDate        *string
	ClothingDescription *string
	PersonType          *string
	Gender              *string
	IncidentLocation    *string
	AdditionalFeatures  *string
	PhotoBase64         *string
}
