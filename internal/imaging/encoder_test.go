package imaging

import (
	"bytes"
	stderrors "errors"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/aparra/img2card-bot/internal/domain"
	"github.com/aparra/img2card-bot/pkg/errors"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("failed to encode test png: %v", err)
	}
	return buf.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2)), nil); err != nil {
		t.Fatalf("failed to encode test jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestEncodeBytesDetectsPNG(t *testing.T) {
	payload, err := EncodeBytes("card.png", pngBytes(t))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if payload.Format != domain.FormatPNG {
		t.Fatalf("unexpected format: %v", payload.Format)
	}
	if !strings.HasPrefix(payload.DataURI(), "data:image/png;base64,") {
		t.Fatalf("unexpected data URI prefix: %q", payload.DataURI()[:40])
	}
}

func TestEncodeBytesDetectsJPEG(t *testing.T) {
	payload, err := EncodeBytes("card.jpg", jpegBytes(t))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if payload.Format != domain.FormatJPEG {
		t.Fatalf("unexpected format: %v", payload.Format)
	}
}

func TestEncodeBytesRejectsOtherFormats(t *testing.T) {
	_, err := EncodeBytes("note.txt", []byte("just some text, not an image"))
	if err == nil {
		t.Fatalf("expected an error for non-image bytes")
	}

	var formatErr *errors.UnsupportedFormatError
	if !stderrors.As(err, &formatErr) {
		t.Fatalf("expected UnsupportedFormatError, got %T: %v", err, err)
	}
	if formatErr.Path != "note.txt" {
		t.Fatalf("unexpected path in error: %q", formatErr.Path)
	}
}

func TestExtractCoordinatesAbsentWithoutEXIF(t *testing.T) {
	payload, err := EncodeBytes("card.png", pngBytes(t))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if coords, ok := ExtractCoordinates(payload); ok {
		t.Fatalf("expected no coordinates from a bare png, got %+v", coords)
	}
}
