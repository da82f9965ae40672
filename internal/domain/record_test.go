package domain

import "testing"

func TestSetIfPresentOmitsAbsentValues(t *testing.T) {
	record := Record{}
	record.SetIfPresent("city", "Maó")
	record.SetIfPresent("state", "")
	record.SetIfPresent("county", "   ")
	record.SetIfPresent("postcode", nil)

	if got := record.GetString("city"); got != "Maó" {
		t.Fatalf("unexpected city: %q", got)
	}
	for _, key := range []string{"state", "county", "postcode"} {
		if _, exists := record[key]; exists {
			t.Fatalf("expected %q to be omitted", key)
		}
	}
}

func TestSetIfPresentKeepsNonStringValues(t *testing.T) {
	record := Record{}
	record.SetIfPresent("distance", 0.0)
	record.SetIfPresent("gps_coordinates", map[string]any{"latitude": 39.888})

	if _, exists := record["distance"]; !exists {
		t.Fatalf("zero distance is a present value and must be stored")
	}
	if _, exists := record["gps_coordinates"]; !exists {
		t.Fatalf("expected gps_coordinates to be stored")
	}
}

func TestMergeIfPresentNeverOverwritesWithAbsent(t *testing.T) {
	base := Record{"city": "Maó", "phone": "971123456"}
	base.MergeIfPresent(Record{
		"city":    "",
		"phone":   "971654321",
		"website": "https://example.com",
	})

	if got := base.GetString("city"); got != "Maó" {
		t.Fatalf("present city was overwritten by absent value: %q", got)
	}
	if got := base.GetString("phone"); got != "971654321" {
		t.Fatalf("present phone should be overwritten by present value, got %q", got)
	}
	if got := base.GetString("website"); got != "https://example.com" {
		t.Fatalf("unexpected website: %q", got)
	}
}

func TestCopyKeyIfPresent(t *testing.T) {
	source := Record{"title": "Bakery One", "type": ""}
	dest := Record{}
	dest.CopyKeyIfPresent(source, "title")
	dest.CopyKeyIfPresent(source, "type")
	dest.CopyKeyIfPresent(source, "missing")

	if got := dest.GetString("title"); got != "Bakery One" {
		t.Fatalf("unexpected title: %q", got)
	}
	if len(dest) != 1 {
		t.Fatalf("expected only the present key to be copied, got %v", dest)
	}
}

func TestGetStringToleratesMissingAndNonString(t *testing.T) {
	record := Record{"distance": 2.0}
	if got := record.GetString("distance"); got != "" {
		t.Fatalf("expected empty string for non-string value, got %q", got)
	}
	if got := record.GetString("missing"); got != "" {
		t.Fatalf("expected empty string for missing key, got %q", got)
	}
}
