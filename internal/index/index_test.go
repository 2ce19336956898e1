package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopthelook/scout/internal/models"
)

// stubEmbedClient returns fixed vectors per text / image payload, so tests can
// control similarity rankings exactly.
type stubEmbedClient struct {
	textVecs  map[string][]float32
	imageVecs map[string][]float32
	model     string
}

func (s *stubEmbedClient) EmbedText(_ context.Context, text string) ([]float32, error) {
	return s.textVecs[text], nil
}

func (s *stubEmbedClient) EmbedImage(_ context.Context, image []byte) ([]float32, error) {
	return s.imageVecs[string(image)], nil
}

func (s *stubEmbedClient) Model() string {
	return s.model
}

// buildTestIndex writes three catalog image files whose embeddings are the
// standard basis vectors e1, e2, e3 and builds an index over them.
func buildTestIndex(t *testing.T) (*Index, *stubEmbedClient) {
	t.Helper()

	dir := t.TempDir()
	images := make([]models.CatalogImage, 3)
	payloads := []string{"jpeg-one", "jpeg-two", "jpeg-three"}
	ids := []string{"img-1", "img-2", "img-3"}

	for i := range images {
		path := filepath.Join(dir, ids[i]+".jpg")
		require.NoError(t, os.WriteFile(path, []byte(payloads[i]), 0o600))
		images[i] = models.CatalogImage{ID: ids[i], Path: path}
	}

	client := &stubEmbedClient{
		model: "clip-test",
		imageVecs: map[string][]float32{
			"jpeg-one":   {1, 0, 0},
			"jpeg-two":   {0, 1, 0},
			"jpeg-three": {0, 0, 1},
		},
		textVecs: map[string][]float32{},
	}

	ix, err := Build(context.Background(), client, images)
	require.NoError(t, err)

	return ix, client
}

func TestBuild(t *testing.T) {
	ix, _ := buildTestIndex(t)

	assert.Equal(t, 3, ix.Len())
	assert.Equal(t, 3, ix.Dimension())
	assert.Equal(t, "clip-test", ix.Model())

	imgs := ix.Images()
	require.Len(t, imgs, 3)
	assert.Equal(t, "img-1", imgs[0].ID)
	assert.Equal(t, "img-3", imgs[2].ID)
}

func TestBuild_EmptyCatalog(t *testing.T) {
	_, err := Build(context.Background(), &stubEmbedClient{}, nil)
	assert.ErrorIs(t, err, ErrEmptyIndex)
}

func TestRetrieve(t *testing.T) {
	ix, client := buildTestIndex(t)
	retriever := NewRetriever(RetrieverParams{Index: ix, Client: client})
	ctx := context.Background()

	t.Run("topK results sorted by descending score", func(t *testing.T) {
		// Closest to e2, then e1, then e3.
		client.textVecs["black turtleneck"] = []float32{0.4, 0.9, 0.1}

		res, err := retriever.Retrieve(ctx, "black turtleneck", 2)
		require.NoError(t, err)
		require.Len(t, res.Images, 2)

		assert.Equal(t, "img-2", res.Images[0].Image.ID)
		assert.Equal(t, "img-1", res.Images[1].Image.ID)
		assert.Greater(t, res.Images[0].Score, res.Images[1].Score)
	})

	t.Run("topK larger than catalog clamps to catalog size", func(t *testing.T) {
		client.textVecs["jeans"] = []float32{1, 0, 0}

		res, err := retriever.Retrieve(ctx, "jeans", 10)
		require.NoError(t, err)
		assert.Len(t, res.Images, 3)
	})

	t.Run("topK below 1 is rejected", func(t *testing.T) {
		_, err := retriever.Retrieve(ctx, "jeans", 0)
		assert.ErrorIs(t, err, ErrInvalidTopK)
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		client.textVecs["white sneakers"] = []float32{0.5, 0.5, 0.1}

		first, err := retriever.Retrieve(ctx, "white sneakers", 3)
		require.NoError(t, err)

		second, err := retriever.Retrieve(ctx, "white sneakers", 3)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("ties break by catalog insertion order", func(t *testing.T) {
		// Equidistant from e1 and e2; img-1 precedes img-2 in the catalog.
		client.textVecs["scarf"] = []float32{0.5, 0.5, 0}

		res, err := retriever.Retrieve(ctx, "scarf", 2)
		require.NoError(t, err)
		require.Len(t, res.Images, 2)

		assert.Equal(t, "img-1", res.Images[0].Image.ID)
		assert.Equal(t, "img-2", res.Images[1].Image.ID)
		assert.InDelta(t, res.Images[0].Score, res.Images[1].Score, 1e-9)
	})

	t.Run("query dimension mismatch", func(t *testing.T) {
		client.textVecs["belt"] = []float32{1, 0}

		_, err := retriever.Retrieve(ctx, "belt", 1)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})
}

func TestSnapshot(t *testing.T) {
	ix, client := buildTestIndex(t)
	path := filepath.Join(t.TempDir(), "index.gob")

	require.NoError(t, ix.Save(path))

	t.Run("round trip preserves index and retrieval", func(t *testing.T) {
		loaded, err := Load(path, "clip-test")
		require.NoError(t, err)

		assert.Equal(t, ix.Model(), loaded.Model())
		assert.Equal(t, ix.Len(), loaded.Len())
		assert.Equal(t, ix.Dimension(), loaded.Dimension())

		client.textVecs["coat"] = []float32{0, 0, 1}
		retriever := NewRetriever(RetrieverParams{Index: loaded, Client: client})

		res, err := retriever.Retrieve(context.Background(), "coat", 1)
		require.NoError(t, err)
		require.Len(t, res.Images, 1)
		assert.Equal(t, "img-3", res.Images[0].Image.ID)
	})

	t.Run("model mismatch is rejected", func(t *testing.T) {
		_, err := Load(path, "clip-vit-large")
		assert.ErrorIs(t, err, ErrModelMismatch)
	})

	t.Run("empty model skips the check", func(t *testing.T) {
		loaded, err := Load(path, "")
		require.NoError(t, err)
		assert.Equal(t, "clip-test", loaded.Model())
	})
}
