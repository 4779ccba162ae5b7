package persons

import (
	"encoding/json"
	"testing"

	"github.com/MissingMap/MM-Backend/internal/pipeline"
	"github.com/MissingMap/MM-Backend/internal/registry"
)

func strPtr(s string) *string { return &s }

func enriched(id, name string, x float64) pipeline.EnrichedRecord {
	return pipeline.EnrichedRecord{
		Candidate: pipeline.Candidate{
			Record: registry.CleanRecord{
				ID:   json.Number(id),
				Name: strPtr(name),
			},
			DataHash: "hash-" + id,
		},
		IncidentX: x,
		IncidentY: 37.5,
	}
}

func TestDedupeLastWins(t *testing.T) {
	in := []pipeline.EnrichedRecord{
		enriched("1", "첫번째", 126.0),
		enriched("2", "홍길동", 127.0),
		enriched("1", "마지막", 128.0),
	}

	out := dedupeLastWins(in)

	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	// Position of the first occurrence, value of the last.
	if out[0].Record.ID.String() != "1" || *out[0].Record.Name != "마지막" {
		t.Errorf("unexpected first record: %+v", out[0])
	}
	if out[0].IncidentX != 128.0 {
		t.Errorf("expected last occurrence's coordinates, got %v", out[0].IncidentX)
	}
	if out[1].Record.ID.String() != "2" {
		t.Errorf("unexpected second record: %+v", out[1])
	}
}

func TestDedupeLastWins_NoDuplicates(t *testing.T) {
	in := []pipeline.EnrichedRecord{enriched("1", "a", 1), enriched("2", "b", 2)}
	out := dedupeLastWins(in)
	if len(out) != 2 {
		t.Errorf("expected passthrough, got %d records", len(out))
	}
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		size int
		want [][]string
	}{
		{"empty", nil, 3, nil},
		{"single partial", []string{"a"}, 3, [][]string{{"a"}}},
		{"exact", []string{"a", "b", "c"}, 3, [][]string{{"a", "b", "c"}}},
		{"remainder", []string{"a", "b", "c", "d"}, 3, [][]string{{"a", "b", "c"}, {"d"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chunk(tt.ids, tt.size)
			if len(got) != len(tt.want) {
				t.Fatalf("chunk(%v, %d) = %v, want %v", tt.ids, tt.size, got, tt.want)
			}
			for i := range got {
				if len(got[i]) != len(tt.want[i]) {
					t.Errorf("batch %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestToRows(t *testing.T) {
	age := json.Number("12")
	rec := pipeline.EnrichedRecord{
		Candidate: pipeline.Candidate{
			Record: registry.CleanRecord{
				ID:               json.Number("20230001"),
				Name:             strPtr("홍길동"),
				CurrentAge:       &age,
				IncidentLocation: strPtr("서울 종로구"),
			},
			DataHash: "abc123",
		},
		IncidentX: 126.97,
		IncidentY: 37.58,
	}

	rows := toRows([]pipeline.EnrichedRecord{rec})

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.ID != "20230001" || row.Name != "홍길동" || row.DataHash != "abc123" {
		t.Errorf("unexpected row: %+v", row)
	}
	if row.CurrentAge == nil || *row.CurrentAge != 12 {
		t.Errorf("current age = %v", row.CurrentAge)
	}
	if row.AgeWhenMissing != nil {
		t.Errorf("absent age must stay nil, got %v", row.AgeWhenMissing)
	}
	if row.IncidentX != 126.97 || row.IncidentY != 37.58 {
		t.Errorf("coordinates = (%v, %v)", row.IncidentX, row.IncidentY)
	}
	if row.IncidentLocation == nil || *row.IncidentLocation != "서울 종로구" {
		t.Errorf("incident location = %v", row.IncidentLocation)
	}
}

func TestNumToInt(t *testing.T) {
	twelve := json.Number("12")
	bad := json.Number("만7세")

	if v := numToInt(&twelve); v == nil || *v != 12 {
		t.Errorf("numToInt(12) = %v", v)
	}
	if v := numToInt(nil); v != nil {
		t.Errorf("numToInt(nil) = %v", v)
	}
	if v := numToInt(&bad); v != nil {
		t.Errorf("numToInt(non-numeric) = %v", v)
	}
}
