package persons

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MissingMap/MM-Backend/internal/pipeline"
)

// Query defaults for the proximity search.
const (
	DefaultThresholdKM = 5.0
	DefaultMaxPeople   = 10
	DefaultRunsLimit   = 20
)

// Reader is the store surface the HTTP handlers need.
type Reader interface {
	Nearby(ctx context.Context, x, y, thresholdKM float64, limit int) ([]NearbyPerson, error)
	ByID(ctx context.Context, id string) (*MissingPerson, error)
	RecentRuns(ctx context.Context, limit int) ([]PipelineRun, error)
}

// Trigger starts a pipeline run.
type Trigger interface {
	Run(ctx context.Context) (pipeline.Summary, error)
}

// Handler serves the lookup and pipeline-trigger endpoints.
type Handler struct {
	Store  Reader
	Runner Trigger
}

type nearbyResponse struct {
	TotalCount int            `json:"totalCount"`
	People     []NearbyPerson `json:"people,omitempty"`
}

// Nearby handles GET /persons/nearby?x&y&threshold_km&max_people&count_only.
func (h *Handler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		writeError(w, http.StatusBadRequest, "Invalid parameters")
		return
	}

	threshold := DefaultThresholdKM
	if v := q.Get("threshold_km"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid parameters")
			return
		}
		threshold = f
	}

	maxPeople := DefaultMaxPeople
	if v := q.Get("max_people"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid parameters")
			return
		}
		maxPeople = n
	}

	people, err := h.Store.Nearby(r.Context(), x, y, threshold, maxPeople)
	if err != nil {
		log.Printf("[persons] nearby: %v", err)
		writeError(w, http.StatusInternalServerError, "Query failed")
		return
	}

	resp := nearbyResponse{TotalCount: len(people)}
	if !countOnly(q.Get("count_only")) {
		resp.People = people
	}
	writeJSON(w, http.StatusOK, resp)
}

// countOnly is truthy only for nonzero numeric values, so count_only=0 and
// count_only=false still return the full rows.
func countOnly(v string) bool {
	f, err := strconv.ParseFloat(v, 64)
	return err == nil && f != 0
}

// Get handles GET /persons/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	person, err := h.Store.ByID(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "Person not found")
		return
	}
	if err != nil {
		log.Printf("[persons] get %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Query failed")
		return
	}
	writeJSON(w, http.StatusOK, person)
}

// Refresh handles POST /pipeline/refresh: runs the pipeline and returns its
// summary.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Runner.Run(r.Context())
	if errors.Is(err, pipeline.ErrRunInProgress) {
		writeError(w, http.StatusConflict, "A refresh is already running")
		return
	}
	if err != nil {
		log.Printf("[persons] refresh: %v", err)
		writeError(w, http.StatusInternalServerError, "Refresh failed")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Runs handles GET /pipeline/runs.
func (h *Handler) Runs(w http.ResponseWriter, r *http.Request) {
	limit := DefaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid parameters")
			return
		}
		limit = n
	}

	runs, err := h.Store.RecentRuns(r.Context(), limit)
	if err != nil {
		log.Printf("[persons] runs: %v", err)
		writeError(w, http.StatusInternalServerError, "Query failed")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[persons] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
