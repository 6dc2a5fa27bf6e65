package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dreamevents/marketplace/logger"
)

// NominatimPlace is one result from the OpenStreetMap Nominatim API.
type NominatimPlace struct {
	PlaceID     json.Number `json:"place_id"`
	DisplayName string      `json:"display_name"`
	Lat         string      `json:"lat"`
	Lon         string      `json:"lon"`
}

// NominatimClient wraps forward and reverse geocoding against Nominatim.
// Results are cached in Redis to stay inside the service's usage policy.
type NominatimClient struct {
	baseURL string
	client  *http.Client
	cache   *redis.Client
}

const geocodeCacheTTL = 24 * time.Hour

// NewNominatimClient builds a geocoding client. cache may be nil to disable
// caching.
func NewNominatimClient(cache *redis.Client) *NominatimClient {
	base := os.Getenv("NOMINATIM_URL")
	if base == "" {
		base = "https://nominatim.openstreetmap.org"
	}
	return &NominatimClient{
		baseURL: base,
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   cache,
	}
}

// SearchPlaces performs a forward search: free-text query to a ranked list of
// places.
func (n *NominatimClient) SearchPlaces(ctx context.Context, query string, limit int) ([]NominatimPlace, error) {
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 6
	}

	cacheKey := fmt.Sprintf("geocode:search:%s:%d", query, limit)
	var places []NominatimPlace
	if n.cacheGet(ctx, cacheKey, &places) {
		return places, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(limit))

	if err := n.get(ctx, "/search", params, &places); err != nil {
		return nil, fmt.Errorf("nominatim search failed: %w", err)
	}

	n.cacheSet(ctx, cacheKey, places)
	return places, nil
}

// ReverseGeocode resolves coordinates to the nearest place.
func (n *NominatimClient) ReverseGeocode(ctx context.Context, lat, lon float64) (*NominatimPlace, error) {
	cacheKey := fmt.Sprintf("geocode:reverse:%.5f:%.5f", lat, lon)
	var place NominatimPlace
	if n.cacheGet(ctx, cacheKey, &place) {
		return &place, nil
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")

	if err := n.get(ctx, "/reverse", params, &place); err != nil {
		return nil, fmt.Errorf("nominatim reverse failed: %w", err)
	}

	n.cacheSet(ctx, cacheKey, place)
	return &place, nil
}

func (n *NominatimClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	// Nominatim requires an identifying user agent.
	req.Header.Set("User-Agent", "DreamEvents/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (n *NominatimClient) cacheGet(ctx context.Context, key string, out interface{}) bool {
	if n.cache == nil {
		return false
	}
	raw, err := n.cache.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		logger.WarnLogger.Warnf("Corrupt geocode cache entry %s: %v", key, err)
		return false
	}
	return true
}

func (n *NominatimClient) cacheSet(ctx context.Context, key string, value interface{}) {
	if n.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := n.cache.Set(ctx, key, raw, geocodeCacheTTL).Err(); err != nil {
		logger.WarnLogger.Warnf("Failed to cache geocode result %s: %v", key, err)
	}
}
