// Package app wires configuration into a ready-to-run pipeline orchestrator.
// Shared by the API server and the CLI so both build identical pipelines.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/time/rate"

	"github.com/shopthelook/scout/internal/catalog"
	"github.com/shopthelook/scout/internal/config"
	"github.com/shopthelook/scout/internal/embeddings"
	"github.com/shopthelook/scout/internal/generator"
	"github.com/shopthelook/scout/internal/index"
	"github.com/shopthelook/scout/internal/pipeline"
	"github.com/shopthelook/scout/internal/products"
	"github.com/shopthelook/scout/internal/publisher"
)

var (
	errUnsupportedGenerationProvider = errors.New("unsupported GENERATION_PROVIDER")
	errUnsupportedHostingProvider    = errors.New("unsupported HOSTING_PROVIDER")
)

// NewGenerator builds the clothing-list generator for the configured provider.
func NewGenerator(ctx context.Context, cfg *config.Config) (*generator.Service, error) {
	var (
		completer generator.Completer
		err       error
	)

	switch cfg.GenerationProvider {
	case config.GenerationProviderOpenAI:
		completer, err = generator.NewOpenAICompleter(cfg.OpenAIAPIKey, generator.WithOpenAIModel(cfg.GenerationModel))
	case config.GenerationProviderGoogle:
		completer, err = generator.NewGoogleCompleter(ctx, cfg.GoogleAPIKey, generator.WithGoogleModel(cfg.GenerationModel))
	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedGenerationProvider, cfg.GenerationProvider)
	}

	if err != nil {
		return nil, err
	}

	return generator.NewService(generator.ServiceParams{Completer: completer}), nil
}

// NewPublisher builds the image publisher for the configured hosting provider.
func NewPublisher(ctx context.Context, cfg *config.Config) (publisher.Publisher, error) {
	switch cfg.HostingProvider {
	case config.HostingProviderImgBB:
		return publisher.NewImgBBPublisher(cfg.ImgBBAPIKey, publisher.WithImgBBTimeout(cfg.ExternalCallTimeout))
	case config.HostingProviderMinIO:
		return publisher.NewMinioPublisher(ctx, publisher.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			URLExpiry: cfg.MinioURLExpiry,
		})
	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedHostingProvider, cfg.HostingProvider)
	}
}

// LoadOrBuildIndex loads the configured index snapshot when present, and
// otherwise builds the index from the catalog manifest and saves the snapshot.
// A snapshot built with a different embedding model fails the load; delete it
// or rebuild with cmd/build-index.
func LoadOrBuildIndex(ctx context.Context, cfg *config.Config, client embeddings.Client) (*index.Index, error) {
	if _, err := os.Stat(cfg.IndexSnapshot); err == nil {
		// Probe the embedding service so its model identity is known, then hold
		// the snapshot to it. Stale snapshots must fail, not serve garbage scores.
		if _, err := client.EmbedText(ctx, "model probe"); err != nil {
			return nil, fmt.Errorf("probe embedding service: %w", err)
		}

		ix, err := index.Load(cfg.IndexSnapshot, client.Model())
		if err != nil {
			return nil, err
		}

		slog.Info("embedding index loaded from snapshot",
			"path", cfg.IndexSnapshot, "images", ix.Len(), "model", ix.Model())

		return ix, nil
	}

	images, err := catalog.Load(cfg.CatalogManifest)
	if err != nil {
		return nil, err
	}

	slog.Info("building embedding index", "images", len(images), "manifest", cfg.CatalogManifest)

	ix, err := index.Build(ctx, client, images)
	if err != nil {
		return nil, err
	}

	if err := ix.Save(cfg.IndexSnapshot); err != nil {
		return nil, err
	}

	slog.Info("embedding index built", "images", ix.Len(), "model", ix.Model(), "snapshot", cfg.IndexSnapshot)

	return ix, nil
}

// BuildOrchestrator wires every pipeline stage from configuration. The index
// is loaded or built up front; everything after that is cheap construction.
func BuildOrchestrator(ctx context.Context, cfg *config.Config) (*pipeline.Orchestrator, error) {
	gen, err := NewGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	clipClient := embeddings.NewClipClient(cfg.ClipServiceURL, embeddings.WithTimeout(cfg.EmbedTimeout))

	ix, err := LoadOrBuildIndex(ctx, cfg, clipClient)
	if err != nil {
		return nil, err
	}

	pub, err := NewPublisher(ctx, cfg)
	if err != nil {
		return nil, err
	}

	search, err := products.NewSerpClient(cfg.SerpAPIKey, products.WithSerpTimeout(cfg.ExternalCallTimeout))
	if err != nil {
		return nil, err
	}

	return pipeline.New(pipeline.Params{
		Generator: gen,
		Retriever: index.NewRetriever(index.RetrieverParams{Index: ix, Client: clipClient}),
		Publisher: pub,
		Search:    search,
		Limiter:   rate.NewLimiter(rate.Limit(cfg.OutboundRatePerSecond), 1),
		SearchOpts: products.SearchOptions{
			Country:    cfg.SearchCountry,
			Locale:     cfg.SearchLocale,
			SearchType: cfg.SearchType,
		},
	}), nil
}
