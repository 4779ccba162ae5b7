package registry

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Clean trims every free-text field of a RawRecord. Registry payloads mix
// precomposed and decomposed Hangul, so fields are NFC-folded first, then
// stripped of surrounding whitespace and quote characters.
func Clean(raw RawRecord) CleanRecord {
	return CleanRecord{
		ID:                  raw.ID,
		Name:                cleanString(raw.Name),
		CurrentAge:          raw.CurrentAge,
		AgeWhenMissing:      raw.AgeWhenMissing,
		IncidentDate:        cleanString(raw.IncidentDate),
		ClothingDescription: cleanString(raw.ClothingDescription),
		PersonType:          cleanString(raw.PersonType),
		Gender:              cleanString(raw.Gender),
		IncidentLocation:    cleanString(raw.IncidentLocation),
		AdditionalFeatures:  cleanString(raw.AdditionalFeatures),
		PhotoBase64:         cleanString(raw.PhotoBase64),
	}
}

func cleanString(p *string) *string {
	if p == nil {
		return nil
	}
	s := norm.NFC.String(*p)
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "'\"`")
	s = strings.TrimSpace(s)
	return &s
}
