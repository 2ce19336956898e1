package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopthelook/scout/internal/embeddings"
	"github.com/shopthelook/scout/internal/models"
	"github.com/shopthelook/scout/pkg/vectormath"
)

// ErrInvalidTopK is returned when Retrieve is called with topK < 1.
var ErrInvalidTopK = errors.New("retrieve: topK must be at least 1")

// Retriever ranks catalog images against clothing-item text. It embeds the
// item with the same model the index was built with, so the two vector sets
// live in one space.
type Retriever struct {
	index  *Index
	client embeddings.Client
	logger *slog.Logger
}

// RetrieverParams configures a Retriever. Logger may be nil (slog default).
type RetrieverParams struct {
	Index  *Index
	Client embeddings.Client
	Logger *slog.Logger
}

// NewRetriever creates a Retriever.
func NewRetriever(p RetrieverParams) *Retriever {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Retriever{
		index:  p.Index,
		client: p.Client,
		logger: logger,
	}
}

// Retrieve returns the topK catalog images closest to the item text by cosine
// similarity, ordered by descending score with ties broken by catalog insertion
// order. topK must be >= 1 and is clamped to the catalog size. The result is a
// pure function of (item text, index state); the index is never mutated.
func (r *Retriever) Retrieve(ctx context.Context, item models.ClothingItem, topK int) (models.RetrievalResult, error) {
	out := models.RetrievalResult{Item: item}

	if topK < 1 {
		return out, ErrInvalidTopK
	}

	if topK > r.index.Len() {
		topK = r.index.Len()
	}

	query, err := r.client.EmbedText(ctx, string(item))
	if err != nil {
		r.logger.Error("retrieve: embed item failed", "item", string(item), "error", err)

		return out, fmt.Errorf("embed item %q: %w", string(item), err)
	}

	if len(query) != r.index.Dimension() {
		return out, fmt.Errorf("%w: query has %d dims, index has %d",
			ErrDimensionMismatch, len(query), r.index.Dimension())
	}

	scored := make([]models.ScoredImage, r.index.Len())
	for i := 0; i < r.index.Len(); i++ {
		scored[i] = models.ScoredImage{
			Image: r.index.images[i],
			Score: vectormath.CosineSimilarity(query, r.index.vector(i)),
		}
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	out.Images = scored[:topK]

	return out, nil
}
