package places

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aparra/img2card-bot/internal/constants"
	"github.com/aparra/img2card-bot/internal/domain"
	"go.uber.org/zap"
)

// distanceSeparator splits the provider's composite address strings, e.g.
// "2 m · 123 Main Street".
const distanceSeparator = "·"

// NearbySearcher is the local-search capability the resolver consumes.
type NearbySearcher interface {
	SearchByToken(ctx context.Context, query, token string) ([]map[string]any, error)
	SearchByPlaceID(ctx context.Context, query, placeID string) ([]map[string]any, error)
}

// ReverseGeocoder is the locality-lookup capability the resolver consumes.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, coords domain.Coordinates) (domain.Record, error)
}

// Candidate is one ranked search result. Distance is the sole ranking key;
// candidates whose distance could not be parsed carry their original list
// position instead, which keeps the order total.
type Candidate struct {
	Distance float64
	Record   domain.Record
}

// Resolver disambiguates a claimed venue into a real-world place: reverse
// geocode, locality-augmented nearby search, ranking, and a precise
// second-pass lookup merged over the locality context.
type Resolver struct {
	searcher NearbySearcher
	geocoder ReverseGeocoder
	logger   *zap.Logger
	now      func() time.Time
}

func NewResolver(searcher NearbySearcher, geocoder ReverseGeocoder, logger *zap.Logger) *Resolver {
	return &Resolver{
		searcher: searcher,
		geocoder: geocoder,
		logger:   logger,
		now:      time.Now,
	}
}

// Resolve returns the enriched venue record for query near coords, or nil
// when the nearby search finds no candidates. A reverse-geocode failure fails
// the whole resolution; a failed or empty precise lookup does not.
func (r *Resolver) Resolve(ctx context.Context, query string, coords domain.Coordinates) (domain.Record, error) {
	locality, err := r.geocoder.ReverseGeocode(ctx, coords)
	if err != nil {
		return nil, err
	}

	augmented := AugmentQuery(query, locality)
	token := EncodeLocationToken(coords, constants.APIConfig.SearchRadiusUnits, r.now())

	raw, err := r.searcher.SearchByToken(ctx, augmented, token)
	if err != nil {
		return nil, err
	}

	candidates := BuildCandidates(raw)
	if len(candidates) == 0 {
		r.logger.Info("Nearby search returned no candidates",
			zap.String("query", augmented),
			zap.Float64("lat", coords.Latitude),
			zap.Float64("lon", coords.Longitude),
		)
		return nil, nil
	}

	top := candidates[0]
	r.logger.Debug("Top nearby candidate",
		zap.String("title", top.Record.GetString("title")),
		zap.Float64("distance", top.Distance),
	)

	detail := r.lookupDetail(ctx, augmented, top.Record.GetString("place_id"))

	merged := domain.Record{}
	merged.MergeIfPresent(locality)
	merged.MergeIfPresent(top.Record)
	merged.MergeIfPresent(detail)
	return merged, nil
}

// lookupDetail fails soft: any error or empty result just skips enrichment.
func (r *Resolver) lookupDetail(ctx context.Context, query, placeID string) domain.Record {
	if placeID == "" {
		r.logger.Warn("Top candidate has no place id, skipping detail lookup")
		return nil
	}

	results, err := r.searcher.SearchByPlaceID(ctx, query, placeID)
	if err != nil {
		r.logger.Warn("Place detail lookup failed", zap.String("place_id", placeID), zap.Error(err))
		return nil
	}
	if len(results) == 0 {
		r.logger.Warn("Place detail lookup returned no results", zap.String("place_id", placeID))
		return nil
	}

	return BuildDetail(results[0])
}

// AugmentQuery appends the locality's city and country to the search query to
// disambiguate chains and franchises.
func AugmentQuery(query string, locality domain.Record) string {
	parts := []string{query}
	if city := locality.GetString("city"); city != "" {
		parts = append(parts, city)
	}
	if country := locality.GetString("country"); country != "" {
		parts = append(parts, country)
	}
	return strings.Join(parts, ", ")
}

// BuildCandidates projects raw provider records into ranked candidates,
// sorted ascending by distance. The sort is stable so unparsable entries keep
// their relative provider order.
func BuildCandidates(raw []map[string]any) []Candidate {
	candidates := make([]Candidate, 0, len(raw))
	for position, entry := range raw {
		record := domain.Record(entry)
		address := record.GetString("address")

		distance, ok := ParseDistance(address)
		if !ok {
			distance = float64(position)
		}

		candidate := domain.Record{}
		candidate.SetIfPresent("distance", distance)
		candidate.CopyKeyIfPresent(record, "title")
		candidate.CopyKeyIfPresent(record, "place_id")
		candidate.CopyKeyIfPresent(record, "description")
		candidate.CopyKeyIfPresent(record, "type")
		candidate.CopyKeyIfPresent(record, "phone")
		candidate.SetIfPresent("address", NormalizeAddress(address))
		candidate.SetIfPresent("website", websiteOf(record))
		candidate.CopyKeyIfPresent(record, "gps_coordinates")

		candidates = append(candidates, Candidate{Distance: distance, Record: candidate})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})
	return candidates
}

// BuildDetail projects the precise-lookup record onto the fields worth
// merging over the nearby candidate.
func BuildDetail(entry map[string]any) domain.Record {
	record := domain.Record(entry)
	detail := domain.Record{}
	detail.CopyKeyIfPresent(record, "phone")
	detail.CopyKeyIfPresent(record, "type")
	detail.CopyKeyIfPresent(record, "title")
	detail.SetIfPresent("address", NormalizeAddress(record.GetString("address")))
	detail.CopyKeyIfPresent(record, "gps_coordinates")
	return detail
}

// ParseDistance pulls the leading numeric distance out of a composite address
// string: split on the separator, take the first whitespace-delimited token
// of the left side, parse as float. Units are provider-consistent within one
// result set and are ignored.
func ParseDistance(address string) (float64, bool) {
	idx := strings.Index(address, distanceSeparator)
	if idx < 0 {
		return 0, false
	}

	fields := strings.Fields(strings.TrimSpace(address[:idx]))
	if len(fields) == 0 {
		return 0, false
	}

	value, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// NormalizeAddress strips the "distance · " prefix when the separator is
// present.
func NormalizeAddress(address string) string {
	idx := strings.Index(address, distanceSeparator)
	if idx < 0 {
		return address
	}
	return strings.TrimSpace(address[idx+len(distanceSeparator):])
}

func websiteOf(record domain.Record) any {
	links, ok := record["links"].(map[string]any)
	if !ok {
		return nil
	}
	return links["website"]
}
