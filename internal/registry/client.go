package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MissingMap/MM-Backend/internal/config"
)

// PageSize is the registry's fixed page size.
const PageSize = 100

// ErrInvalidResponse is returned when the first page cannot be parsed or is
// missing its record list, leaving no total count to drive pagination.
var ErrInvalidResponse = errors.New("registry returned an invalid response")

// Client fetches missing-person records from the safe182 registry.
type Client struct {
	endpoint   string
	authID     string
	authKey    string
	httpClient *http.Client
}

// NewClient creates a registry client from the service configuration.
func NewClient(cfg config.Config) *Client {
	return &Client{
		endpoint: cfg.RegistryEndpoint,
		authID:   cfg.RegistryAuthID,
		authKey:  cfg.RegistryAuthKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type pageResponse struct {
	List       []RawRecord     `json:"list"`
	TotalCount json.RawMessage `json:"totalCount"`
}

// FetchAll retrieves every page of the registry and merges the records into
// one ordered slice. The first page must parse and carry a record list; later
// pages that fail are logged and skipped.
func (c *Client) FetchAll(ctx context.Context) ([]RawRecord, error) {
	first, err := c.fetchPage(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if first.List == nil {
		return nil, fmt.Errorf("%w: missing 'list' field", ErrInvalidResponse)
	}

	total, err := parseCount(first.TotalCount)
	if err != nil {
		return nil, fmt.Errorf("%w: bad totalCount: %v", ErrInvalidResponse, err)
	}
	totalPages := (total + PageSize - 1) / PageSize

	all := first.List
	for page := 2; page <= totalPages; page++ {
		resp, err := c.fetchPage(ctx, page)
		if err != nil {
			log.Printf("[registry] skipping page %d: %v", page, err)
			continue
		}
		if resp.List == nil {
			log.Printf("[registry] skipping page %d: missing 'list' field", page)
			continue
		}
		all = append(all, resp.List...)
	}

	log.Printf("[registry] fetched %d records across %d pages", len(all), totalPages)
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) (pageResponse, error) {
	form := url.Values{}
	form.Set("esntlId", c.authID)
	form.Set("authKey", c.authKey)
	form.Set("rowSize", strconv.Itoa(PageSize))
	if page > 1 {
		form.Set("page", strconv.Itoa(page))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return pageResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pageResponse{}, fmt.Errorf("registry request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return pageResponse{}, fmt.Errorf("registry status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return pageResponse{}, fmt.Errorf("read registry response: %w", err)
	}

	var out pageResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return pageResponse{}, fmt.Errorf("decode registry response: %w", err)
	}
	return out, nil
}

// parseCount tolerates totalCount arriving as either a number or a quoted
// string.
func parseCount(raw json.RawMessage) (int, error) {
	s := strings.TrimSpace(string(raw))
	s = strings.Trim(s, `"`)
	if s == "" || s == "null" {
		return 0, errors.New("empty totalCount")
	}
	return strconv.Atoi(s)
}
