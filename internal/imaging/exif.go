package imaging

import (
	"bytes"
	"fmt"

	"github.com/aparra/img2card-bot/internal/domain"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// Rational is one degree/minute/second component of an EXIF GPS value.
// Plain-number encodings are represented with Den == 1.
type Rational struct {
	Num float64
	Den float64
}

func (r Rational) Value() float64 {
	if r.Den == 0 {
		return 0
	}
	return r.Num / r.Den
}

// DMSToDegrees converts a degrees/minutes/seconds triple to signed decimal
// degrees: degrees + minutes/60 + seconds/3600.
func DMSToDegrees(dms [3]Rational) float64 {
	return dms[0].Value() + dms[1].Value()/60 + dms[2].Value()/3600
}

// ExtractCoordinates reads the GPS block embedded in the image's EXIF
// metadata, when present. Southern latitudes and western longitudes come back
// negated. The second return is false when the image carries no EXIF data, no
// GPS block, or a malformed one.
func ExtractCoordinates(payload *domain.ImagePayload) (domain.Coordinates, bool) {
	meta, err := exif.Decode(bytes.NewReader(payload.Raw))
	if err != nil {
		return domain.Coordinates{}, false
	}

	lat, err := readAxis(meta, exif.GPSLatitude, exif.GPSLatitudeRef, "S")
	if err != nil {
		return domain.Coordinates{}, false
	}
	lon, err := readAxis(meta, exif.GPSLongitude, exif.GPSLongitudeRef, "W")
	if err != nil {
		return domain.Coordinates{}, false
	}

	coords := domain.Coordinates{Latitude: lat, Longitude: lon}
	if !coords.Valid() {
		return domain.Coordinates{}, false
	}
	return coords, true
}

func readAxis(meta *exif.Exif, field, refField exif.FieldName, negatingRef string) (float64, error) {
	tag, err := meta.Get(field)
	if err != nil {
		return 0, err
	}

	var dms [3]Rational
	for i := range dms {
		component, err := componentAt(tag, i)
		if err != nil {
			return 0, err
		}
		dms[i] = component
	}

	refTag, err := meta.Get(refField)
	if err != nil {
		return 0, err
	}
	ref, err := refTag.StringVal()
	if err != nil {
		return 0, err
	}
	return SignedDegrees(dms, ref, negatingRef), nil
}

// SignedDegrees converts a DMS triple and its hemisphere reference to signed
// decimal degrees; the negating reference ("S" or "W") flips the sign.
func SignedDegrees(dms [3]Rational, ref, negatingRef string) float64 {
	value := DMSToDegrees(dms)
	if ref == negatingRef {
		return -value
	}
	return value
}

// componentAt tolerates the component being stored either as a rational pair
// or as a plain integer/float value.
func componentAt(tag *tiff.Tag, i int) (Rational, error) {
	if int(tag.Count) <= i {
		return Rational{}, fmt.Errorf("gps tag has %d components, want at least %d", tag.Count, i+1)
	}

	switch tag.Format() {
	case tiff.RatVal:
		num, den, err := tag.Rat2(i)
		if err != nil {
			return Rational{}, err
		}
		return Rational{Num: float64(num), Den: float64(den)}, nil
	case tiff.IntVal:
		v, err := tag.Int(i)
		if err != nil {
			return Rational{}, err
		}
		return Rational{Num: float64(v), Den: 1}, nil
	case tiff.FloatVal:
		v, err := tag.Float(i)
		if err != nil {
			return Rational{}, err
		}
		return Rational{Num: v, Den: 1}, nil
	default:
		return Rational{}, fmt.Errorf("unsupported gps component format %v", tag.Format())
	}
}
