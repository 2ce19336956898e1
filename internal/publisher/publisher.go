// Package publisher uploads catalog images to a hosting service and returns
// public URLs the product-search service can reach. Each call creates a new
// hosted resource; the hosting record, not this process, owns the URL's lifetime.
package publisher

import "context"

// Publisher uploads image bytes and returns a publicly reachable URL.
// Non-success responses surface as *scouterrors.UploadError and are never
// retried here.
type Publisher interface {
	Publish(ctx context.Context, imageID string, data []byte) (string, error)
}
