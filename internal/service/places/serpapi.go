package places

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aparra/img2card-bot/internal/constants"
	"github.com/aparra/img2card-bot/internal/service/cache"
	"github.com/aparra/img2card-bot/pkg/errors"
	"go.uber.org/zap"
)

// SerpClient issues local-business searches through the SerpApi google_local
// engine. Responses are cached briefly so a retried chat interaction does not
// burn quota.
type SerpClient struct {
	httpClient *http.Client
	apiKey     string
	cache      *cache.CacheService
	logger     *zap.Logger
}

func NewSerpClient(httpClient *http.Client, apiKey string, cacheSvc *cache.CacheService, logger *zap.Logger) *SerpClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.APIConfig.RequestTimeout}
	}
	return &SerpClient{
		httpClient: httpClient,
		apiKey:     apiKey,
		cache:      cacheSvc,
		logger:     logger,
	}
}

type serpResponse struct {
	LocalResults []map[string]any `json:"local_results"`
}

// SearchByToken runs a nearby search scoped by the encoded location token and
// returns the provider's raw candidate records in provider order.
func (c *SerpClient) SearchByToken(ctx context.Context, query, token string) ([]map[string]any, error) {
	return c.search(ctx, url.Values{
		"q":    {query},
		"uule": {token},
	}, constants.CacheTTL.NearbySearch)
}

// SearchByPlaceID runs the precise single-place lookup keyed by place_id.
// Place details drift slower than nearby rankings, so they cache longer.
func (c *SerpClient) SearchByPlaceID(ctx context.Context, query, placeID string) ([]map[string]any, error) {
	return c.search(ctx, url.Values{
		"q":       {query},
		"ludocid": {placeID},
	}, constants.CacheTTL.PlaceDetail)
}

func (c *SerpClient) search(ctx context.Context, extra url.Values, ttl time.Duration) ([]map[string]any, error) {
	params := url.Values{
		"engine":        {constants.APIConfig.SerpEngine},
		"google_domain": {constants.APIConfig.SerpGoogleDomain},
		"gl":            {constants.APIConfig.SerpCountry},
		"hl":            {constants.APIConfig.SerpLanguage},
		"device":        {constants.APIConfig.SerpDevice},
	}
	for key, values := range extra {
		params[key] = values
	}

	cacheKey := "serp:" + hashValues(params)
	var cached []map[string]any
	if hit, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		c.logger.Debug("Local search served from cache", zap.String("key", cacheKey))
		return cached, nil
	}

	params.Set("api_key", c.apiKey)
	reqURL := constants.APIConfig.SerpBaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewResolutionError("local search request failed", "nearby_search", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewResolutionError("local search read failed", "nearby_search", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewResolutionError(
			fmt.Sprintf("local search returned status %d", resp.StatusCode), "nearby_search", nil)
	}

	var decoded serpResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.NewResolutionError("local search decode failed", "nearby_search", err)
	}

	_ = c.cache.Set(ctx, cacheKey, decoded.LocalResults, ttl)

	return decoded.LocalResults, nil
}

// hashValues keys the cache on every search parameter except the API key.
func hashValues(params url.Values) string {
	sum := sha256.Sum256([]byte(params.Encode()))
	return hex.EncodeToString(sum[:16])
}
