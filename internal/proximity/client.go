// internal/proximity/client.go
// Read-only zipcode proximity lookup against an external service, with a
// Redis cache in front. Consumed by peripheral discovery features, not by
// the matching core.

package proximity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/daymatch/daymatch-backend/internal/common/apperr"
)

// Supported lookup radii in miles.
var SupportedRadii = []int{5, 10, 20}

type Client interface {
	// Lookup returns the zipcodes within radiusMiles of the given zipcode,
	// including the source zipcode itself.
	Lookup(ctx context.Context, zipcode string, radiusMiles int) ([]string, error)
}

type httpClient struct {
	baseURL string
	http    *http.Client
	cache   *redis.Client
	ttl     time.Duration
}

// NewClient creates a proximity client. cache may be nil, in which case
// every lookup goes to the upstream service.
func NewClient(baseURL string, cache *redis.Client, ttl time.Duration) Client {
	return &httpClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		cache:   cache,
		ttl:     ttl,
	}
}

func (c *httpClient) Lookup(ctx context.Context, zipcode string, radiusMiles int) ([]string, error) {
	if !validRadius(radiusMiles) {
		return nil, apperr.InvalidRequest(fmt.Sprintf("radius must be one of %v miles", SupportedRadii))
	}

	cacheKey := fmt.Sprintf("proximity:%s:%d", zipcode, radiusMiles)

	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, cacheKey).Result(); err == nil {
			var zips []string
			if json.Unmarshal([]byte(cached), &zips) == nil {
				return zips, nil
			}
		}
	}

	zips, err := c.fetch(ctx, zipcode, radiusMiles)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if payload, err := json.Marshal(zips); err == nil {
			c.cache.Set(ctx, cacheKey, payload, c.ttl)
		}
	}

	return zips, nil
}

func (c *httpClient) fetch(ctx context.Context, zipcode string, radiusMiles int) ([]string, error) {
	url := fmt.Sprintf("%s/nearby/%s?radius=%d", c.baseURL, zipcode, radiusMiles)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.Infrastructure("failed to build proximity request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Infrastructure("proximity service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperr.NotFound("zipcode not found")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Infrastructure(fmt.Sprintf("proximity service returned %d", resp.StatusCode), nil)
	}

	var zips []string
	if err := json.NewDecoder(resp.Body).Decode(&zips); err != nil {
		return nil, apperr.Infrastructure("invalid proximity response", err)
	}

	return zips, nil
}

func validRadius(radiusMiles int) bool {
	for _, r := range SupportedRadii {
		if r == radiusMiles {
			return true
		}
	}
	return false
}
