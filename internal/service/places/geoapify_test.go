package places

import "testing"

func TestBuildLocalityProjectsAdministrativeFields(t *testing.T) {
	locality := BuildLocality(map[string]any{
		"country":      "Spain",
		"state":        "Balearic Islands",
		"county":       "Menorca",
		"city":         "Maó",
		"postcode":     "07703",
		"street":       "Carrer Nou",
		"housenumber":  "12",
		"result_type":  "building",
		"country_code": "es",
	})

	want := map[string]string{
		"country":  "Spain",
		"state":    "Balearic Islands",
		"county":   "Menorca",
		"city":     "Maó",
		"postcode": "07703",
	}
	if len(locality) != len(want) {
		t.Fatalf("unexpected locality shape: %v", locality)
	}
	for key, value := range want {
		if got := locality.GetString(key); got != value {
			t.Fatalf("%s: got %q, want %q", key, got, value)
		}
	}
}

func TestBuildLocalityOmitsAbsentFields(t *testing.T) {
	locality := BuildLocality(map[string]any{
		"country": "Spain",
		"city":    "",
		"state":   nil,
	})

	if len(locality) != 1 {
		t.Fatalf("expected only country to survive, got %v", locality)
	}
	if got := locality.GetString("country"); got != "Spain" {
		t.Fatalf("unexpected country: %q", got)
	}
}

func TestRoundTo(t *testing.T) {
	if got := roundTo(39.88817134567, 4); got != 39.8882 {
		t.Fatalf("unexpected rounding: %v", got)
	}
	if got := roundTo(-4.26376349, 4); got != -4.2638 {
		t.Fatalf("unexpected rounding: %v", got)
	}
}
