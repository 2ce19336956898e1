package embeddings

import (
	"context"
	"crypto/sha256"

	"github.com/shopthelook/scout/pkg/vectormath"
)

// MockClient implements the Client interface for testing purposes.
// It generates deterministic embeddings based on the input hash, so the same
// text or image always maps to the same unit vector.
type MockClient struct {
	dimensions int
}

// NewMockClient creates a new mock embedding client with 64 dimensions.
func NewMockClient() *MockClient {
	return &MockClient{dimensions: 64}
}

// NewMockClientWithDimensions creates a mock client with custom dimensions.
func NewMockClientWithDimensions(dimensions int) *MockClient {
	return &MockClient{dimensions: dimensions}
}

// EmbedText generates a deterministic embedding based on the text hash.
func (c *MockClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	return c.generateDeterministicEmbedding([]byte(text)), nil
}

// EmbedImage generates a deterministic embedding based on the image hash.
func (c *MockClient) EmbedImage(ctx context.Context, image []byte) ([]float32, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	return c.generateDeterministicEmbedding(image), nil
}

// Model returns a fixed mock model identity.
func (c *MockClient) Model() string {
	return "mock-clip"
}

// generateDeterministicEmbedding creates a normalized embedding vector from the input hash.
func (c *MockClient) generateDeterministicEmbedding(input []byte) []float32 {
	hash := sha256.Sum256(input)
	embedding := make([]float32, c.dimensions)

	for i := 0; i < c.dimensions; i++ {
		// Use hash bytes cyclically, mapped to [-1, 1]
		byteIdx := i % len(hash)
		embedding[i] = (float32(hash[byteIdx]) / 127.5) - 1.0
	}

	vectormath.NormalizeL2(embedding)

	return embedding
}

// Ensure MockClient implements Client interface
var _ Client = (*MockClient)(nil)
