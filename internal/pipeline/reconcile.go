package pipeline

import (
	"github.com/MissingMap/MM-Backend/internal/registry"
)

// StoredSummary is what the store remembers about a row for diffing: name and
// content hash, keyed by identifier in the snapshot map.
type StoredSummary struct {
	Name     string
	DataHash string
}

// Candidate is a cleaned record with its content hash attached, queued for
// insertion.
type Candidate struct {
	Record   registry.CleanRecord
	DataHash string
}

// Reconciliation is the diff between a fresh fetch and the stored snapshot.
// An identifier in ToDeleteIDs either vanished from the fetch, or changed
// content and also appears in ToInsert (delete-then-reinsert, never update in
// place).
type Reconciliation struct {
	ToInsert      []Candidate
	ToDeleteIDs   []string
	InsertedNames []string
	DeletedNames  []string
}

// Reconcile diffs fetched records against the stored snapshot by identifier
// and content hash. ToInsert preserves fetch order. Duplicate identifiers in
// one fetch are processed independently; the store deduplicates
// last-occurrence-wins when writing.
func Reconcile(fetched []registry.CleanRecord, existing map[string]StoredSummary) Reconciliation {
	var result Reconciliation
	seen := make(map[string]struct{}, len(fetched))

	for _, rec := range fetched {
		id := rec.ID.String()
		seen[id] = struct{}{}

		hash := ContentHash(rec)
		stored, ok := existing[id]

		switch {
		case !ok:
			result.ToInsert = append(result.ToInsert, Candidate{Record: rec, DataHash: hash})
			result.InsertedNames = append(result.InsertedNames, nameOf(rec))
		case stored.DataHash != hash:
			result.ToDeleteIDs = append(result.ToDeleteIDs, id)
			result.ToInsert = append(result.ToInsert, Candidate{Record: rec, DataHash: hash})
			result.InsertedNames = append(result.InsertedNames, nameOf(rec))
		}
		// Matching hash: unchanged, leave the stored row alone.
	}

	for id, stored := range existing {
		if _, ok := seen[id]; !ok {
			result.ToDeleteIDs = append(result.ToDeleteIDs, id)
			result.DeletedNames = append(result.DeletedNames, stored.Name)
		}
	}

	return result
}

func nameOf(rec registry.CleanRecord) string {
	if rec.Name == nil {
		return ""
	}
	return *rec.Name
}
