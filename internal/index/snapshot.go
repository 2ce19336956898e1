package index

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/shopthelook/scout/internal/models"
)

// Snapshot is the on-disk form of an index: the flat embedding matrix, the
// parallel catalog image list, and the identity of the model that built it.
type Snapshot struct {
	Model  string
	Dim    int
	Images []models.CatalogImage
	Data   []float32
}

// Save writes the index to path as a gob snapshot.
func (ix *Index) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer file.Close()

	snap := Snapshot{
		Model:  ix.model,
		Dim:    ix.dim,
		Images: ix.images,
		Data:   ix.data,
	}

	if err := gob.NewEncoder(file).Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	return nil
}

// Load reads a gob snapshot from path. model is the identity of the embedding
// model the caller will query with; a snapshot built with a different model is
// rejected with ErrModelMismatch because its scores would be meaningless.
// Pass "" to skip the check (e.g. when only inspecting a snapshot).
func Load(path, model string) (*Index, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer file.Close()

	var snap Snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	if len(snap.Images) == 0 {
		return nil, ErrEmptyIndex
	}

	if snap.Dim <= 0 || len(snap.Data) != snap.Dim*len(snap.Images) {
		return nil, fmt.Errorf("%w: matrix is %d floats, want %d",
			ErrDimensionMismatch, len(snap.Data), snap.Dim*len(snap.Images))
	}

	if model != "" && snap.Model != model {
		return nil, fmt.Errorf("%w: snapshot %q, configured %q", ErrModelMismatch, snap.Model, model)
	}

	return &Index{
		model:  snap.Model,
		dim:    snap.Dim,
		images: snap.Images,
		data:   snap.Data,
	}, nil
}
