// Package pipeline sequences the full text-to-shoppable-look flow:
// generate clothing items, retrieve the closest catalog image per item,
// publish it, and search for matching products. One linear control flow;
// items are processed to completion in order.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/shopthelook/scout/internal/catalog"
	"github.com/shopthelook/scout/internal/models"
	"github.com/shopthelook/scout/internal/products"
	"github.com/shopthelook/scout/internal/publisher"
)

// ItemGenerator produces an ordered clothing-item list from free-form text.
type ItemGenerator interface {
	GenerateItems(ctx context.Context, text string) ([]models.ClothingItem, error)
}

// ImageRetriever ranks catalog images against one clothing item.
type ImageRetriever interface {
	Retrieve(ctx context.Context, item models.ClothingItem, topK int) (models.RetrievalResult, error)
}

// Orchestrator wires the pipeline stages together. The embedding index behind
// the retriever is read-only, so an Orchestrator is safe for concurrent Runs;
// outbound publish/search calls go through one shared rate limiter so
// concurrent runs cannot hammer the providers.
type Orchestrator struct {
	generator  ItemGenerator
	retriever  ImageRetriever
	publisher  publisher.Publisher
	search     products.SearchClient
	limiter    *rate.Limiter
	readImage  func(models.CatalogImage) ([]byte, error)
	searchOpts products.SearchOptions
	logger     *slog.Logger
}

// Params configures an Orchestrator. Limiter, ReadImage, and Logger may be nil
// (no rate limiting, catalog file reads, slog default).
type Params struct {
	Generator  ItemGenerator
	Retriever  ImageRetriever
	Publisher  publisher.Publisher
	Search     products.SearchClient
	Limiter    *rate.Limiter
	ReadImage  func(models.CatalogImage) ([]byte, error)
	SearchOpts products.SearchOptions
	Logger     *slog.Logger
}

// New creates an Orchestrator.
func New(p Params) *Orchestrator {
	readImage := p.ReadImage
	if readImage == nil {
		readImage = catalog.ReadImage
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		generator:  p.Generator,
		retriever:  p.Retriever,
		publisher:  p.Publisher,
		search:     p.Search,
		limiter:    p.Limiter,
		readImage:  readImage,
		searchOpts: p.SearchOpts,
		logger:     logger,
	}
}

// Options are per-run knobs.
type Options struct {
	// TopK catalog images retrieved per item; the top-1 is published and searched.
	TopK int
	// MaxResults product entries kept per item.
	MaxResults int
	// ContinueOnError records a failed item's error and moves on instead of
	// aborting the whole run. Default is off: the first publish/retrieve/search
	// failure aborts, and the error names the item it belongs to.
	ContinueOnError bool
}

// Run executes the full pipeline for the user text and returns one ItemLook
// per generated clothing item, in generation order. A generation or parse
// failure always aborts; per-item failures follow opts.ContinueOnError.
func (o *Orchestrator) Run(ctx context.Context, userText string, opts Options) ([]models.ItemLook, error) {
	runID := uuid.Must(uuid.NewV7()).String()
	logger := o.logger.With("run_id", runID)

	items, err := o.generator.GenerateItems(ctx, userText)
	if err != nil {
		logger.Error("pipeline: generate items failed", "error", err)

		return nil, err
	}

	logger.Info("pipeline: items generated", "count", len(items))

	looks := make([]models.ItemLook, 0, len(items))

	for _, item := range items {
		look, err := o.processItem(ctx, logger, item, opts)
		if err != nil {
			if !opts.ContinueOnError {
				return nil, fmt.Errorf("item %q: %w", string(item), err)
			}

			logger.Warn("pipeline: item failed, continuing", "item", string(item), "error", err)
			look = models.ItemLook{Item: item, Err: err}
		}

		looks = append(looks, look)
	}

	return looks, nil
}

// processItem runs retrieve -> publish -> search for one clothing item.
func (o *Orchestrator) processItem(ctx context.Context, logger *slog.Logger, item models.ClothingItem, opts Options) (models.ItemLook, error) {
	look := models.ItemLook{Item: item}

	retrieval, err := o.retriever.Retrieve(ctx, item, opts.TopK)
	if err != nil {
		return look, fmt.Errorf("retrieve: %w", err)
	}

	look.Retrieval = retrieval
	if len(retrieval.Images) == 0 {
		return look, fmt.Errorf("retrieve: no catalog images")
	}

	best := retrieval.Images[0].Image
	logger.Debug("pipeline: image retrieved", "item", string(item), "image", best.ID, "score", retrieval.Images[0].Score)

	raw, err := o.readImage(best)
	if err != nil {
		return look, err
	}

	if err := o.waitOutbound(ctx); err != nil {
		return look, err
	}

	url, err := o.publisher.Publish(ctx, best.ID, raw)
	if err != nil {
		return look, fmt.Errorf("publish: %w", err)
	}

	look.ImageURL = url

	if err := o.waitOutbound(ctx); err != nil {
		return look, err
	}

	searchOpts := o.searchOpts
	searchOpts.MaxResults = opts.MaxResults

	results, err := o.search.SearchByImage(ctx, url, searchOpts)
	if err != nil {
		return look, fmt.Errorf("search: %w", err)
	}

	look.Products = results
	logger.Info("pipeline: item complete", "item", string(item), "image", best.ID, "products", len(results))

	return look, nil
}

func (o *Orchestrator) waitOutbound(ctx context.Context) error {
	if o.limiter == nil {
		return nil
	}

	if err := o.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	return nil
}
