package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/shopthelook/scout/internal/models"
	"github.com/shopthelook/scout/internal/products"
	"github.com/shopthelook/scout/internal/scouterrors"
)

type mockGenerator struct {
	generateFunc func(ctx context.Context, text string) ([]models.ClothingItem, error)
}

func (m *mockGenerator) GenerateItems(ctx context.Context, text string) ([]models.ClothingItem, error) {
	return m.generateFunc(ctx, text)
}

type mockRetriever struct {
	retrieveFunc func(ctx context.Context, item models.ClothingItem, topK int) (models.RetrievalResult, error)
}

func (m *mockRetriever) Retrieve(ctx context.Context, item models.ClothingItem, topK int) (models.RetrievalResult, error) {
	return m.retrieveFunc(ctx, item, topK)
}

type mockPublisher struct {
	publishFunc func(ctx context.Context, imageID string, data []byte) (string, error)
}

func (m *mockPublisher) Publish(ctx context.Context, imageID string, data []byte) (string, error) {
	return m.publishFunc(ctx, imageID, data)
}

type mockSearch struct {
	searchFunc func(ctx context.Context, imageURL string, opts products.SearchOptions) ([]models.ProductResult, error)
}

func (m *mockSearch) SearchByImage(ctx context.Context, imageURL string, opts products.SearchOptions) ([]models.ProductResult, error) {
	return m.searchFunc(ctx, imageURL, opts)
}

func fixedReadImage(models.CatalogImage) ([]byte, error) {
	return []byte{0xFF, 0xD8}, nil
}

func price(v float64) *float64 { return &v }

// happyParams wires mocks for the end-to-end scenario: "minimal black
// turtleneck" generates one item, a 3-image catalog returns the closest image,
// publish yields a URL, and search returns two ordered products.
func happyParams(t *testing.T) Params {
	t.Helper()

	return Params{
		Generator: &mockGenerator{
			generateFunc: func(_ context.Context, text string) ([]models.ClothingItem, error) {
				assert.Equal(t, "minimal black turtleneck", text)

				return []models.ClothingItem{"black turtleneck"}, nil
			},
		},
		Retriever: &mockRetriever{
			retrieveFunc: func(_ context.Context, item models.ClothingItem, topK int) (models.RetrievalResult, error) {
				assert.Equal(t, models.ClothingItem("black turtleneck"), item)
				assert.Equal(t, 1, topK)

				// Highest-cosine image out of a 3-image catalog, already truncated to top-1.
				return models.RetrievalResult{
					Item: item,
					Images: []models.ScoredImage{
						{Image: models.CatalogImage{ID: "img-2", Path: "img-2.jpg"}, Score: 0.93},
					},
				}, nil
			},
		},
		Publisher: &mockPublisher{
			publishFunc: func(_ context.Context, imageID string, data []byte) (string, error) {
				assert.Equal(t, "img-2", imageID)
				assert.NotEmpty(t, data)

				return "https://i.host/img-2.jpg", nil
			},
		},
		Search: &mockSearch{
			searchFunc: func(_ context.Context, imageURL string, opts products.SearchOptions) ([]models.ProductResult, error) {
				assert.Equal(t, "https://i.host/img-2.jpg", imageURL)
				assert.Equal(t, 2, opts.MaxResults)

				return []models.ProductResult{
					{Title: "Black Turtleneck", Source: "Uniqlo", Price: price(29.9)},
					{Title: "Roll Neck", Source: "COS", Price: price(89)},
				}, nil
			},
		},
		ReadImage: fixedReadImage,
	}
}

func TestRun_EndToEnd(t *testing.T) {
	orch := New(happyParams(t))

	looks, err := orch.Run(context.Background(), "minimal black turtleneck", Options{TopK: 1, MaxResults: 2})
	require.NoError(t, err)
	require.Len(t, looks, 1)

	look := looks[0]
	assert.Equal(t, models.ClothingItem("black turtleneck"), look.Item)
	require.Len(t, look.Retrieval.Images, 1)
	assert.Equal(t, "img-2", look.Retrieval.Images[0].Image.ID)
	assert.Equal(t, "https://i.host/img-2.jpg", look.ImageURL)
	require.Len(t, look.Products, 2)
	assert.Equal(t, "Black Turtleneck", look.Products[0].Title)
	assert.Equal(t, "Roll Neck", look.Products[1].Title)
	assert.Nil(t, look.Err)
}

func TestRun_GenerationFailureAborts(t *testing.T) {
	params := happyParams(t)
	params.Generator = &mockGenerator{
		generateFunc: func(_ context.Context, _ string) ([]models.ClothingItem, error) {
			return nil, scouterrors.NewParseError("no array here", "")
		},
	}

	orch := New(params)

	_, err := orch.Run(context.Background(), "minimal black turtleneck", Options{TopK: 1, MaxResults: 2, ContinueOnError: true})
	assert.ErrorIs(t, err, scouterrors.ErrParse)
}

func TestRun_AbortOnFirstError(t *testing.T) {
	searched := 0
	params := happyParams(t)
	params.Generator = &mockGenerator{
		generateFunc: func(_ context.Context, _ string) ([]models.ClothingItem, error) {
			return []models.ClothingItem{"black turtleneck", "white sneakers"}, nil
		},
	}
	params.Retriever = &mockRetriever{
		retrieveFunc: func(_ context.Context, item models.ClothingItem, _ int) (models.RetrievalResult, error) {
			return models.RetrievalResult{
				Item:   item,
				Images: []models.ScoredImage{{Image: models.CatalogImage{ID: "img-1"}, Score: 0.8}},
			}, nil
		},
	}
	params.Publisher = &mockPublisher{
		publishFunc: func(_ context.Context, _ string, _ []byte) (string, error) {
			return "", scouterrors.NewUploadError(403, "invalid key")
		},
	}
	params.Search = &mockSearch{
		searchFunc: func(_ context.Context, _ string, _ products.SearchOptions) ([]models.ProductResult, error) {
			searched++

			return nil, nil
		},
	}

	orch := New(params)

	_, err := orch.Run(context.Background(), "two items", Options{TopK: 1, MaxResults: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, scouterrors.ErrUpload)
	// The failing item is named, and nothing past the failure ran.
	assert.Contains(t, err.Error(), "black turtleneck")
	assert.Zero(t, searched)
}

func TestRun_ContinueOnErrorIsolatesItems(t *testing.T) {
	params := happyParams(t)
	params.Generator = &mockGenerator{
		generateFunc: func(_ context.Context, _ string) ([]models.ClothingItem, error) {
			return []models.ClothingItem{"black turtleneck", "white sneakers"}, nil
		},
	}
	params.Retriever = &mockRetriever{
		retrieveFunc: func(_ context.Context, item models.ClothingItem, _ int) (models.RetrievalResult, error) {
			return models.RetrievalResult{
				Item:   item,
				Images: []models.ScoredImage{{Image: models.CatalogImage{ID: "img-" + string(item)}, Score: 0.8}},
			}, nil
		},
	}
	params.Publisher = &mockPublisher{
		publishFunc: func(_ context.Context, imageID string, _ []byte) (string, error) {
			if imageID == "img-black turtleneck" {
				return "", scouterrors.NewUploadError(500, "hosting down")
			}

			return "https://i.host/" + imageID + ".jpg", nil
		},
	}
	params.Search = &mockSearch{
		searchFunc: func(_ context.Context, imageURL string, _ products.SearchOptions) ([]models.ProductResult, error) {
			return []models.ProductResult{{Title: "Sneaker", Source: "Nike"}}, nil
		},
	}

	orch := New(params)

	looks, err := orch.Run(context.Background(), "two items", Options{TopK: 1, MaxResults: 2, ContinueOnError: true})
	require.NoError(t, err)
	require.Len(t, looks, 2)

	assert.ErrorIs(t, looks[0].Err, scouterrors.ErrUpload)
	assert.Empty(t, looks[0].Products)

	assert.Nil(t, looks[1].Err)
	require.Len(t, looks[1].Products, 1)
	assert.Equal(t, "Sneaker", looks[1].Products[0].Title)
}

func TestRun_RateLimiterIsUsed(t *testing.T) {
	params := happyParams(t)
	// Burst 4 covers the two outbound calls of the single item without blocking.
	params.Limiter = rate.NewLimiter(rate.Inf, 4)

	orch := New(params)

	looks, err := orch.Run(context.Background(), "minimal black turtleneck", Options{TopK: 1, MaxResults: 2})
	require.NoError(t, err)
	assert.Len(t, looks, 1)
}

func TestRun_EmptyRetrieval(t *testing.T) {
	params := happyParams(t)
	params.Retriever = &mockRetriever{
		retrieveFunc: func(_ context.Context, item models.ClothingItem, _ int) (models.RetrievalResult, error) {
			return models.RetrievalResult{Item: item}, nil
		},
	}

	orch := New(params)

	_, err := orch.Run(context.Background(), "minimal black turtleneck", Options{TopK: 1, MaxResults: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no catalog images")
}
