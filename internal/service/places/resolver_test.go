package places

import (
	"context"
	"fmt"
	"testing"

	"github.com/aparra/img2card-bot/internal/domain"
	"go.uber.org/zap"
)

type fakeSearcher struct {
	tokenResults   []map[string]any
	tokenErr       error
	tokenQueries   []string
	detailResults  []map[string]any
	detailErr      error
	detailPlaceIDs []string
}

func (f *fakeSearcher) SearchByToken(_ context.Context, query, _ string) ([]map[string]any, error) {
	f.tokenQueries = append(f.tokenQueries, query)
	return f.tokenResults, f.tokenErr
}

func (f *fakeSearcher) SearchByPlaceID(_ context.Context, _ string, placeID string) ([]map[string]any, error) {
	f.detailPlaceIDs = append(f.detailPlaceIDs, placeID)
	return f.detailResults, f.detailErr
}

type fakeGeocoder struct {
	locality domain.Record
	err      error
	calls    int
}

func (f *fakeGeocoder) ReverseGeocode(_ context.Context, _ domain.Coordinates) (domain.Record, error) {
	f.calls++
	return f.locality, f.err
}

func menorcaLocality() domain.Record {
	return domain.Record{
		"country":  "Spain",
		"state":    "Balearic Islands",
		"county":   "Menorca",
		"city":     "Maó",
		"postcode": "07703",
	}
}

func bakeryResults() []map[string]any {
	return []map[string]any{
		{
			"title":    "Bakery Three",
			"place_id": "pid-3",
			"type":     "Bakery",
			"address":  "142.5 m · 789 Oak Street",
		},
		{
			"title":    "Bakery One",
			"place_id": "pid-1",
			"type":     "Bakery",
			"phone":    "971123456",
			"address":  "2 m · 123 Main Street",
			"links":    map[string]any{"website": "https://bakeryone.example"},
		},
		{
			"title":    "Bakery Two",
			"place_id": "pid-2",
			"type":     "Bakery",
			"address":  "4.3 m · 456 Elm Street",
		},
		{
			"title":    "Bakery Four",
			"place_id": "pid-4",
			"type":     "Bakery",
			"address":  "145.5 m · 12 Pine Street",
		},
		{
			"title":    "Bakery Five",
			"place_id": "pid-5",
			"type":     "Bakery",
			"address":  "142.3 m · 34 Cedar Street",
		},
	}
}

func TestParseDistance(t *testing.T) {
	cases := []struct {
		address string
		want    float64
		ok      bool
	}{
		{"2 m · 123 Main Street", 2, true},
		{"142.5 m · 789 Oak Street", 142.5, true},
		{"0.4 km · Camí des Castell, 12", 0.4, true},
		{"123 Main Street", 0, false},
		{"nearby · 123 Main Street", 0, false},
		{" · 123 Main Street", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		got, ok := ParseDistance(tc.address)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseDistance(%q) = (%v, %v), want (%v, %v)", tc.address, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormalizeAddress(t *testing.T) {
	if got := NormalizeAddress("2 m · 123 Main Street"); got != "123 Main Street" {
		t.Fatalf("unexpected normalized address: %q", got)
	}
	if got := NormalizeAddress("123 Main Street"); got != "123 Main Street" {
		t.Fatalf("address without separator must pass through, got %q", got)
	}
	if got := NormalizeAddress("17.79 m · Plaça Bastió, 10"); got != "Plaça Bastió, 10" {
		t.Fatalf("unexpected normalized address: %q", got)
	}
}

func TestAugmentQuery(t *testing.T) {
	got := AugmentQuery("Forn del St. Cristo Bakery", menorcaLocality())
	if got != "Forn del St. Cristo Bakery, Maó, Spain" {
		t.Fatalf("unexpected augmented query: %q", got)
	}

	got = AugmentQuery("Forn del St. Cristo Bakery", domain.Record{"country": "Spain"})
	if got != "Forn del St. Cristo Bakery, Spain" {
		t.Fatalf("missing city must be skipped, got %q", got)
	}

	got = AugmentQuery("Forn del St. Cristo Bakery", domain.Record{})
	if got != "Forn del St. Cristo Bakery" {
		t.Fatalf("empty locality must leave the query untouched, got %q", got)
	}
}

func TestBuildCandidatesRanksByDistance(t *testing.T) {
	candidates := BuildCandidates(bakeryResults())
	if len(candidates) != 5 {
		t.Fatalf("expected 5 candidates, got %d", len(candidates))
	}

	wantOrder := []string{"Bakery One", "Bakery Two", "Bakery Five", "Bakery Three", "Bakery Four"}
	for i, want := range wantOrder {
		if got := candidates[i].Record.GetString("title"); got != want {
			t.Fatalf("position %d: got %q, want %q", i, got, want)
		}
	}

	top := candidates[0].Record
	if got := top.GetString("address"); got != "123 Main Street" {
		t.Fatalf("top address not normalized: %q", got)
	}
	if got := top.GetString("website"); got != "https://bakeryone.example" {
		t.Fatalf("website not lifted from links: %q", got)
	}
	if got := top.GetString("phone"); got != "971123456" {
		t.Fatalf("unexpected phone: %q", got)
	}
	if candidates[0].Distance != 2 {
		t.Fatalf("unexpected top distance: %v", candidates[0].Distance)
	}
}

func TestBuildCandidatesUnparsableDistanceKeepsListPosition(t *testing.T) {
	raw := []map[string]any{
		{"title": "No Distance A", "address": "Carrer Nou, 1"},
		{"title": "Close By", "address": "0.5 m · Carrer Nou, 2"},
		{"title": "No Distance C", "address": "Carrer Nou, 3"},
	}

	candidates := BuildCandidates(raw)

	// Position fallback: index 0 ranks between 0.5 and index 2.
	wantOrder := []string{"No Distance A", "Close By", "No Distance C"}
	for i, want := range wantOrder {
		if got := candidates[i].Record.GetString("title"); got != want {
			t.Fatalf("position %d: got %q, want %q", i, got, want)
		}
	}
	if candidates[0].Distance != 0 || candidates[2].Distance != 2 {
		t.Fatalf("unexpected fallback distances: %v, %v", candidates[0].Distance, candidates[2].Distance)
	}
}

func TestBuildCandidatesOmitsAbsentFields(t *testing.T) {
	candidates := BuildCandidates([]map[string]any{
		{"title": "Bare Place", "address": "3 m · Somewhere 1"},
	})

	record := candidates[0].Record
	for _, key := range []string{"phone", "website", "description", "type", "gps_coordinates"} {
		if _, exists := record[key]; exists {
			t.Fatalf("expected %q to be omitted from a bare result", key)
		}
	}
}

func TestBuildDetailProjection(t *testing.T) {
	detail := BuildDetail(map[string]any{
		"title":   "Forn del St. Cristo",
		"phone":   "971362240",
		"type":    "Bakery",
		"address": "17.79 m · Plaça Bastió, 10",
		"rating":  4.6,
	})

	if got := detail.GetString("address"); got != "Plaça Bastió, 10" {
		t.Fatalf("detail address not normalized: %q", got)
	}
	if got := detail.GetString("phone"); got != "971362240" {
		t.Fatalf("unexpected detail phone: %q", got)
	}
	if _, exists := detail["rating"]; exists {
		t.Fatalf("unrelated detail fields must not be projected")
	}
}

func TestResolveMergesLocalityCandidateAndDetail(t *testing.T) {
	searcher := &fakeSearcher{
		tokenResults: bakeryResults(),
		detailResults: []map[string]any{
			{"phone": "971999888", "address": "17.79 m · Plaça Bastió, 10"},
		},
	}
	geocoder := &fakeGeocoder{locality: menorcaLocality()}
	resolver := NewResolver(searcher, geocoder, zap.NewNop())

	venue, err := resolver.Resolve(context.Background(), "Forn del St. Cristo Bakery", domain.Coordinates{Latitude: 39.8881713, Longitude: 4.2637637})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if venue == nil {
		t.Fatalf("expected a resolved venue")
	}

	if len(searcher.tokenQueries) != 1 || searcher.tokenQueries[0] != "Forn del St. Cristo Bakery, Maó, Spain" {
		t.Fatalf("unexpected search query: %v", searcher.tokenQueries)
	}
	if len(searcher.detailPlaceIDs) != 1 || searcher.detailPlaceIDs[0] != "pid-1" {
		t.Fatalf("detail lookup must use the top candidate's place id, got %v", searcher.detailPlaceIDs)
	}

	if got := venue.GetString("title"); got != "Bakery One" {
		t.Fatalf("unexpected title: %q", got)
	}
	if got := venue.GetString("city"); got != "Maó" {
		t.Fatalf("locality context missing: %q", got)
	}
	if got := venue.GetString("phone"); got != "971999888" {
		t.Fatalf("detail phone must win over candidate phone, got %q", got)
	}
	if got := venue.GetString("address"); got != "Plaça Bastió, 10" {
		t.Fatalf("detail address must win, got %q", got)
	}
	if got := venue.GetString("website"); got != "https://bakeryone.example" {
		t.Fatalf("candidate website must survive the detail merge, got %q", got)
	}
}

func TestResolveNoCandidatesIsNilNil(t *testing.T) {
	searcher := &fakeSearcher{tokenResults: nil}
	geocoder := &fakeGeocoder{locality: menorcaLocality()}
	resolver := NewResolver(searcher, geocoder, zap.NewNop())

	venue, err := resolver.Resolve(context.Background(), "Ghost Venue", domain.Coordinates{Latitude: 39.88, Longitude: 4.26})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if venue != nil {
		t.Fatalf("expected nil venue for zero candidates, got %v", venue)
	}
	if len(searcher.detailPlaceIDs) != 0 {
		t.Fatalf("detail lookup must not run without candidates")
	}
}

func TestResolveGeocodeFailureFailsResolution(t *testing.T) {
	searcher := &fakeSearcher{tokenResults: bakeryResults()}
	geocoder := &fakeGeocoder{err: fmt.Errorf("upstream down")}
	resolver := NewResolver(searcher, geocoder, zap.NewNop())

	_, err := resolver.Resolve(context.Background(), "Forn del St. Cristo Bakery", domain.Coordinates{Latitude: 39.88, Longitude: 4.26})
	if err == nil {
		t.Fatalf("expected geocode failure to propagate")
	}
	if len(searcher.tokenQueries) != 0 {
		t.Fatalf("nearby search must not run after a geocode failure")
	}
}

func TestResolveDetailFailureIsSoft(t *testing.T) {
	searcher := &fakeSearcher{
		tokenResults: bakeryResults(),
		detailErr:    fmt.Errorf("detail lookup down"),
	}
	geocoder := &fakeGeocoder{locality: menorcaLocality()}
	resolver := NewResolver(searcher, geocoder, zap.NewNop())

	venue, err := resolver.Resolve(context.Background(), "Forn del St. Cristo Bakery", domain.Coordinates{Latitude: 39.88, Longitude: 4.26})
	if err != nil {
		t.Fatalf("detail failure must not fail resolution, got %v", err)
	}
	if got := venue.GetString("title"); got != "Bakery One" {
		t.Fatalf("expected top candidate without detail, got %q", got)
	}
	if got := venue.GetString("phone"); got != "971123456" {
		t.Fatalf("candidate phone must survive a failed detail lookup, got %q", got)
	}
}

func TestResolveMissingPlaceIDSkipsDetail(t *testing.T) {
	searcher := &fakeSearcher{
		tokenResults: []map[string]any{
			{"title": "Anonymous Spot", "address": "1 m · Carrer Nou, 7"},
		},
	}
	geocoder := &fakeGeocoder{locality: menorcaLocality()}
	resolver := NewResolver(searcher, geocoder, zap.NewNop())

	venue, err := resolver.Resolve(context.Background(), "Anonymous Spot", domain.Coordinates{Latitude: 39.88, Longitude: 4.26})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if venue == nil {
		t.Fatalf("expected a venue")
	}
	if len(searcher.detailPlaceIDs) != 0 {
		t.Fatalf("detail lookup must be skipped without a place id")
	}
}
