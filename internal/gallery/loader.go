package gallery

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"github.com/faceforge/faceforge/internal/types"

	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
)

// LoadOverlay decodes an overlay image from a file. Undecodable or
// zero-sized images fail with ErrInvalidOverlay.
func LoadOverlay(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open overlay %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %v", types.ErrInvalidOverlay, path, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %s is zero-sized", types.ErrInvalidOverlay, path)
	}
	return img, nil
}

// DecodeOverlay decodes overlay bytes (as stored in the gallery store).
func DecodeOverlay(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode overlay data: %v", types.ErrInvalidOverlay, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: overlay is zero-sized", types.ErrInvalidOverlay)
	}
	return img, nil
}
