package dataset

import (
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"

	"medcouncil/internal/core"
)

// DefaultMaxImageBytes caps question images at 4.5 MiB, the limit the
// strictest provider accepts for inline base64 payloads.
const DefaultMaxImageBytes = int64(4.5 * 1024 * 1024)

// ValidateImage checks that the image exists and is within maxBytes. It
// returns a human-readable reason when invalid; the caller logs the skip.
func ValidateImage(path string, maxBytes int64) (ok bool, reason string) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Sprintf("image does not exist: %s", path)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return false, fmt.Sprintf("image exceeds maximum size: %.2fMB > %.2fMB",
			float64(info.Size())/(1024*1024), float64(maxBytes)/(1024*1024))
	}
	return true, ""
}

// LoadImage reads the image and sniffs its media type from content rather
// than trusting the file extension.
func LoadImage(path string) (core.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Image{}, fmt.Errorf("reading image %s: %w", path, err)
	}
	mtype := mimetype.Detect(data)
	return core.Image{Data: data, MediaType: mtype.String()}, nil
}
