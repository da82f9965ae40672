package places

import (
	"encoding/base64"
	"fmt"
	"math"
	"time"

	"github.com/aparra/img2card-bot/internal/domain"
)

// EncodeLocationToken builds the UULE v2 token that scopes a local search to
// a point and radius. The byte layout must stay bit-exact for provider
// compatibility: a fixed role/producer/provenance header, a microsecond
// timestamp, e7-scaled coordinates and the radius scaled by 620, base64
// encoded with the literal "a+" prefix.
func EncodeLocationToken(coords domain.Coordinates, radiusUnits float64, now time.Time) string {
	latitudeE7 := int64(math.Round(coords.Latitude * 1e7))
	longitudeE7 := int64(math.Round(coords.Longitude * 1e7))
	radius := int64(math.Round(radiusUnits * 620))
	timestamp := now.UnixMicro()

	block := fmt.Sprintf(
		"role:1\nproducer:12\nprovenance:6\ntimestamp:%d\nlatlng{\nlatitude_e7:%d\nlongitude_e7:%d\n}\nradius:%d\n",
		timestamp, latitudeE7, longitudeE7, radius,
	)

	return "a+" + base64.StdEncoding.EncodeToString([]byte(block))
}
