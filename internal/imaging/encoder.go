package imaging

import (
	"encoding/base64"
	"net/http"
	"os"

	"github.com/aparra/img2card-bot/internal/domain"
	"github.com/aparra/img2card-bot/pkg/errors"
)

// Encode loads the image at path and produces the transport-ready payload.
// Only JPEG and PNG containers are accepted; anything else fails with
// UnsupportedFormatError.
func Encode(path string) (*domain.ImagePayload, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewValidationError("failed to read image", "path", path).WithCause(err)
	}
	return EncodeBytes(path, raw)
}

// EncodeBytes builds a payload from in-memory image bytes. path is carried
// only for diagnostics.
func EncodeBytes(path string, raw []byte) (*domain.ImagePayload, error) {
	format, ok := sniffFormat(raw)
	if !ok {
		return nil, errors.NewUnsupportedFormatError(path, http.DetectContentType(raw))
	}

	return &domain.ImagePayload{
		Path:    path,
		Format:  format,
		Raw:     raw,
		Encoded: base64.StdEncoding.EncodeToString(raw),
	}, nil
}

func sniffFormat(raw []byte) (domain.ImageFormat, bool) {
	switch http.DetectContentType(raw) {
	case "image/jpeg":
		return domain.FormatJPEG, true
	case "image/png":
		return domain.FormatPNG, true
	default:
		return "", false
	}
}
