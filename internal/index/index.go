// Package index holds the catalog embedding index: one vector per catalog
// image plus the identity of the model that produced them. The index is built
// once, is read-only afterwards, and may be snapshotted to disk and reloaded.
package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopthelook/scout/internal/catalog"
	"github.com/shopthelook/scout/internal/embeddings"
	"github.com/shopthelook/scout/internal/models"
	"github.com/shopthelook/scout/pkg/vectormath"
)

var (
	// ErrEmptyIndex is returned when an index is built or loaded with no entries.
	ErrEmptyIndex = errors.New("index: no catalog images")
	// ErrDimensionMismatch is returned when a vector's length differs from the index dimension.
	ErrDimensionMismatch = errors.New("index: embedding dimension mismatch")
	// ErrModelMismatch is returned when a snapshot was built with a different embedding model.
	// Scores from different model versions are not comparable; rebuild instead.
	ErrModelMismatch = errors.New("index: snapshot built with a different embedding model")
)

// Index is an ordered collection of (catalog image, embedding vector) pairs.
// Vectors are stored unit-normalized in one flat matrix, row i belonging to
// images[i]. Safe for concurrent reads; never mutated after construction.
type Index struct {
	model  string
	dim    int
	images []models.CatalogImage
	data   []float32
}

// Build embeds every catalog image with the given client and returns the index.
// This is the dominant cost of the pipeline; run it once per session and prefer
// Save/Load over rebuilding. Catalog order is preserved so similarity ties break
// by insertion order.
func Build(ctx context.Context, client embeddings.Client, images []models.CatalogImage) (*Index, error) {
	if len(images) == 0 {
		return nil, ErrEmptyIndex
	}

	ix := &Index{
		images: make([]models.CatalogImage, len(images)),
	}
	copy(ix.images, images)

	for _, img := range images {
		raw, err := catalog.ReadImage(img)
		if err != nil {
			return nil, err
		}

		vec, err := client.EmbedImage(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("embed catalog image %s: %w", img.ID, err)
		}

		if ix.dim == 0 {
			ix.dim = len(vec)
			ix.data = make([]float32, 0, ix.dim*len(images))
		} else if len(vec) != ix.dim {
			return nil, fmt.Errorf("%w: image %s has %d dims, index has %d",
				ErrDimensionMismatch, img.ID, len(vec), ix.dim)
		}

		vectormath.NormalizeL2(vec)
		ix.data = append(ix.data, vec...)
	}

	ix.model = client.Model()

	return ix, nil
}

// Model returns the identity of the embedding model the index was built with.
func (ix *Index) Model() string {
	return ix.model
}

// Dimension returns the embedding dimensionality.
func (ix *Index) Dimension() int {
	return ix.dim
}

// Len returns the number of catalog images in the index.
func (ix *Index) Len() int {
	return len(ix.images)
}

// Images returns the catalog images in insertion order. The returned slice is
// a copy; the index itself stays immutable.
func (ix *Index) Images() []models.CatalogImage {
	out := make([]models.CatalogImage, len(ix.images))
	copy(out, ix.images)

	return out
}

// vector returns row i of the matrix.
func (ix *Index) vector(i int) []float32 {
	return ix.data[i*ix.dim : (i+1)*ix.dim]
}
