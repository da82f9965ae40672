package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aparra/img2card-bot/internal/constants"
	"github.com/aparra/img2card-bot/internal/domain"
	"github.com/aparra/img2card-bot/internal/service/cache"
	"github.com/aparra/img2card-bot/pkg/errors"
	"go.uber.org/zap"
)

// GeoClient resolves coordinates to an administrative locality through the
// Geoapify reverse-geocoding API.
type GeoClient struct {
	httpClient *http.Client
	apiKey     string
	cache      *cache.CacheService
	logger     *zap.Logger
}

func NewGeoClient(httpClient *http.Client, apiKey string, cacheSvc *cache.CacheService, logger *zap.Logger) *GeoClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.APIConfig.RequestTimeout}
	}
	return &GeoClient{
		httpClient: httpClient,
		apiKey:     apiKey,
		cache:      cacheSvc,
		logger:     logger,
	}
}

type geoapifyResponse struct {
	Features []struct {
		Properties map[string]any `json:"properties"`
	} `json:"features"`
}

// ReverseGeocode maps coords to {country, state, county, city, postcode},
// each omitted when the upstream value is absent. Coordinates are rounded to
// 4 decimal places before the call, which also keys the cache.
func (c *GeoClient) ReverseGeocode(ctx context.Context, coords domain.Coordinates) (domain.Record, error) {
	lat := roundTo(coords.Latitude, constants.APIConfig.GeocodePrecision)
	lon := roundTo(coords.Longitude, constants.APIConfig.GeocodePrecision)

	cacheKey := fmt.Sprintf("geocode:%s:%s", formatCoord(lat), formatCoord(lon))
	var cached domain.Record
	if hit, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		c.logger.Debug("Reverse geocode served from cache", zap.String("key", cacheKey))
		return cached, nil
	}

	params := url.Values{
		"lat":    {formatCoord(lat)},
		"lon":    {formatCoord(lon)},
		"apiKey": {c.apiKey},
		"format": {"geojson"},
	}
	reqURL := constants.APIConfig.GeoapifyBaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewResolutionError("reverse geocode request failed", "reverse_geocode", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewResolutionError("reverse geocode read failed", "reverse_geocode", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewResolutionError(
			fmt.Sprintf("reverse geocode returned status %d", resp.StatusCode), "reverse_geocode", nil)
	}

	var decoded geoapifyResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.NewResolutionError("reverse geocode decode failed", "reverse_geocode", err)
	}
	if len(decoded.Features) == 0 {
		return nil, errors.NewResolutionError("reverse geocode returned no features", "reverse_geocode", nil)
	}

	locality := BuildLocality(decoded.Features[0].Properties)

	_ = c.cache.Set(ctx, cacheKey, locality, constants.CacheTTL.ReverseGeocode)

	return locality, nil
}

// BuildLocality projects a raw reverse-geocode feature onto the locality
// fields the pipeline merges, applying the omit-if-empty rule.
func BuildLocality(properties map[string]any) domain.Record {
	locality := domain.Record{}
	source := domain.Record(properties)
	for _, key := range []string{"country", "state", "county", "city", "postcode"} {
		locality.CopyKeyIfPresent(source, key)
	}
	return locality
}

func roundTo(value float64, places int) float64 {
	factor := math.Pow10(places)
	return math.Round(value*factor) / factor
}

func formatCoord(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
