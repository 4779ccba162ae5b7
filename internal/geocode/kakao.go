package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/MissingMap/MM-Backend/internal/config"
)

// Coordinates is a WGS84 pair as Kakao returns it: X is longitude, Y is
// latitude.
type Coordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Fallback is the coordinate used when an address cannot be resolved:
// Gwanghwamun Square, central Seoul.
var Fallback = Coordinates{X: 126.9764, Y: 37.5867}

// retryQueryRunes is the prefix length used for the second, truncated lookup.
const retryQueryRunes = 6

// minRetryRunes is the smallest original query length that still gets a
// truncated retry; anything shorter falls back immediately after one miss.
const minRetryRunes = 6

// Client is a best-effort address resolver over the Kakao local search API.
// Resolve never fails outward; every error path ends at the Fallback
// coordinate.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Kakao geocoding client from the service configuration.
func NewClient(cfg config.Config) *Client {
	return &Client{
		endpoint: cfg.KakaoEndpoint,
		apiKey:   cfg.KakaoAPIKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.GeocodeRate), 1),
	}
}

// Resolve looks up coordinates for a location query. A miss on the full query
// is retried once with the first six characters, unless the query is too
// short for the truncation to mean anything. Transport and parse failures are
// indistinguishable from "no match".
func (c *Client) Resolve(ctx context.Context, query string) Coordinates {
	q := strings.TrimSpace(query)
	if q == "" {
		return Fallback
	}

	if coords, ok := c.lookup(ctx, q); ok {
		return coords
	}

	runes := []rune(q)
	if len(runes) < minRetryRunes {
		return Fallback
	}

	short := strings.TrimSpace(string(runes[:retryQueryRunes]))
	if short == "" || short == q {
		return Fallback
	}

	if coords, ok := c.lookup(ctx, short); ok {
		return coords
	}
	return Fallback
}

type document struct {
	X string `json:"x"`
	Y string `json:"y"`
}

type searchResponse struct {
	Documents []document `json:"documents"`
}

func (c *Client) lookup(ctx context.Context, query string) (Coordinates, bool) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Coordinates{}, false
	}

	u := fmt.Sprintf("%s?query=%s", c.endpoint, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Coordinates{}, false
	}
	req.Header.Set("Authorization", "KakaoAK "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[kakao] lookup %q: %v", query, err)
		return Coordinates{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[kakao] lookup %q: status %d", query, resp.StatusCode)
		return Coordinates{}, false
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Printf("[kakao] lookup %q: decode: %v", query, err)
		return Coordinates{}, false
	}
	if len(out.Documents) == 0 {
		return Coordinates{}, false
	}

	x, errX := strconv.ParseFloat(out.Documents[0].X, 64)
	y, errY := strconv.ParseFloat(out.Documents[0].Y, 64)
	if errX != nil || errY != nil {
		log.Printf("[kakao] lookup %q: bad coordinates %q/%q", query, out.Documents[0].X, out.Documents[0].Y)
		return Coordinates{}, false
	}
	return Coordinates{X: x, Y: y}, true
}
