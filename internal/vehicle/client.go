// Package vehicle looks up vehicle makes from the NHTSA vPIC API for the
// chef delivery-profile surface, caching results for a fixed TTL.
package vehicle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://vpic.nhtsa.dot.gov/api/vehicles"

// Make is one vehicle make as returned by vPIC.
type Make struct {
	ID   int64  `json:"MakeId"`
	Name string `json:"MakeName"`
}

type lookupResponse struct {
	Count   int    `json:"Count"`
	Results []Make `json:"Results"`
}

// Client queries vPIC with a shared TTL cache in front.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *Cache
}

// NewClient builds a lookup client. Empty baseURL uses the public vPIC
// endpoint; a nil clock uses the system clock.
func NewClient(baseURL string, ttl time.Duration, clock Clock) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		cache:   NewCache(ttl, clock),
	}
}

// MakesForVehicleType returns all makes for a vehicle type such as
// "car" or "truck", serving repeat lookups from the cache.
func (c *Client) MakesForVehicleType(ctx context.Context, vehicleType string) ([]Make, error) {
	key := strings.ToLower(strings.TrimSpace(vehicleType))
	if key == "" {
		return nil, fmt.Errorf("vehicle type is required")
	}
	if makes, ok := c.cache.Get(key); ok {
		return makes, nil
	}

	u := fmt.Sprintf("%s/GetMakesForVehicleType/%s?format=json", c.baseURL, url.PathEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vpic request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vpic returned status %d", resp.StatusCode)
	}
	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("vpic decode: %w", err)
	}

	c.cache.Set(key, body.Results)
	return body.Results, nil
}
