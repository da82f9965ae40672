package domain

import "fmt"

// ImageFormat is the detected container format of an uploaded image.
type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatPNG  ImageFormat = "png"
)

func (f ImageFormat) MIMEType() string {
	return "image/" + string(f)
}

// ImagePayload is the transport-ready form of one request's image. Built once
// per request and never mutated.
type ImagePayload struct {
	Path    string
	Format  ImageFormat
	Raw     []byte
	Encoded string // base64 of Raw
}

// DataURI renders the payload the way vision providers expect it.
func (p *ImagePayload) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", p.Format.MIMEType(), p.Encoded)
}

// Detail is the quality/cost knob for the vision call.
type Detail string

const (
	DetailLow  Detail = "low"
	DetailHigh Detail = "high"
)

// Coordinates is a pair of signed decimal degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}
