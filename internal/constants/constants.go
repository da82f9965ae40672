package constants

import "time"

var CacheTTL = struct {
	ReverseGeocode time.Duration
	NearbySearch   time.Duration
	PlaceDetail    time.Duration
	LastLocation   time.Duration
}{
	ReverseGeocode: 24 * time.Hour,
	NearbySearch:   10 * time.Minute,
	PlaceDetail:    30 * time.Minute,
	LastLocation:   12 * time.Hour,
}

var APIConfig = struct {
	SerpBaseURL       string
	GeoapifyBaseURL   string
	RequestTimeout    time.Duration
	SerpEngine        string
	SerpGoogleDomain  string
	SerpCountry       string
	SerpLanguage      string
	SerpDevice        string
	GeocodePrecision  int
	SearchRadiusUnits float64
}{
	SerpBaseURL:       "https://serpapi.com/search.json",
	GeoapifyBaseURL:   "https://api.geoapify.com/v1/geocode/reverse",
	RequestTimeout:    15 * time.Second,
	SerpEngine:        "google_local",
	SerpGoogleDomain:  "google.es",
	SerpCountry:       "es",
	SerpLanguage:      "en",
	SerpDevice:        "tablet",
	GeocodePrecision:  4,
	SearchRadiusUnits: 300,
}

var VisionConfig = struct {
	MaxTranscriptionTokens int
}{
	MaxTranscriptionTokens: 500,
}

var BotConfig = struct {
	UpdateTimeout  int
	WorkerPoolSize int
	DownloadLimit  int64
}{
	UpdateTimeout:  30,
	WorkerPoolSize: 8,
	DownloadLimit:  20 << 20, // Telegram caps bot downloads at 20 MB
}
