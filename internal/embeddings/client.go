// Package embeddings provides clients for the CLIP embedding service.
// Text and image embeddings share one model so cosine scores are comparable;
// Model() reports the model identity that must be recorded with any persisted index.
package embeddings

import "context"

// Client defines the interface for generating CLIP embeddings.
type Client interface {
	// EmbedText generates an embedding vector for the given text.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedImage generates an embedding vector for the given image bytes.
	EmbedImage(ctx context.Context, image []byte) ([]float32, error)

	// Model returns the identity of the embedding model (e.g. "clip-vit-base-patch32").
	// Vectors from different models are not comparable.
	Model() string
}
