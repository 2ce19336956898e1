// Package catalog loads the fixed image catalog from a JSON manifest.
// Manifest order is preserved; it defines catalog insertion order, which the
// retriever uses for stable tie-breaking.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopthelook/scout/internal/models"
)

// Load reads a catalog manifest: a JSON array of catalog images
// ({id, path, category, color}). Relative image paths are resolved against the
// manifest's directory. Returns an error on duplicate or empty IDs so the
// catalog-ID list stays a valid parallel of the embedding matrix.
func Load(manifestPath string) ([]models.CatalogImage, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read catalog manifest: %w", err)
	}

	var images []models.CatalogImage
	if err := json.Unmarshal(data, &images); err != nil {
		return nil, fmt.Errorf("decode catalog manifest: %w", err)
	}

	if len(images) == 0 {
		return nil, fmt.Errorf("catalog manifest %s contains no images", manifestPath)
	}

	baseDir := filepath.Dir(manifestPath)
	seen := make(map[string]struct{}, len(images))

	for i := range images {
		img := &images[i]
		if img.ID == "" {
			return nil, fmt.Errorf("catalog manifest entry %d has empty id", i)
		}

		if _, dup := seen[img.ID]; dup {
			return nil, fmt.Errorf("catalog manifest has duplicate id %q", img.ID)
		}
		seen[img.ID] = struct{}{}

		if img.Path == "" {
			return nil, fmt.Errorf("catalog image %q has empty path", img.ID)
		}

		if !filepath.IsAbs(img.Path) {
			img.Path = filepath.Join(baseDir, img.Path)
		}
	}

	return images, nil
}

// ReadImage returns the raw bytes of a catalog image.
func ReadImage(img models.CatalogImage) ([]byte, error) {
	data, err := os.ReadFile(img.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog image %s: %w", img.ID, err)
	}

	return data, nil
}
