package cmd

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/faceforge/faceforge/internal/gallery"
	"github.com/faceforge/faceforge/internal/identity"

	_ "image/jpeg" // Register JPEG decoder
)

// readImage decodes a PNG or JPEG frame from disk.
func readImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// savePNG writes an image to disk, creating parent directories as needed.
func savePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// openGallery opens the configured overlay store, or returns nil when no
// gallery path is set (procedural overlays only).
func openGallery() (*gallery.Store, error) {
	path := viper.GetString("gallery_path")
	if path == "" {
		return nil, nil
	}
	return gallery.OpenStore(path)
}

// resolveOverlay picks the overlay image for a composite: an explicit file
// wins, then the gallery store, then the procedural generator.
func resolveOverlay(store *gallery.Store, identityID, expressionID, overlayPath string, size int, seed int64) (image.Image, error) {
	if overlayPath != "" {
		return gallery.LoadOverlay(overlayPath)
	}

	if store != nil {
		data, err := store.Get(identityID, expressionID)
		if err == nil {
			return gallery.DecodeOverlay(data)
		}
	}

	style, _ := identity.Lookup(identityID)
	if expressionID == "" {
		expressionID = string(style.Mouth)
	}
	return gallery.Generate(style, expressionID, size, seed)
}
