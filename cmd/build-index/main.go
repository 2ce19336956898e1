// build-index embeds every catalog image through the CLIP service and writes
// the resulting index snapshot to disk, so the API and CLI can start without
// re-embedding the catalog.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/shopthelook/scout/internal/catalog"
	"github.com/shopthelook/scout/internal/config"
	"github.com/shopthelook/scout/internal/embeddings"
	"github.com/shopthelook/scout/internal/index"
)

const (
	exitSuccess = 0
	exitFailure = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		manifest = flag.String("manifest", "", "catalog manifest path (default from CATALOG_MANIFEST)")
		out      = flag.String("out", "", "snapshot output path (default from INDEX_SNAPSHOT)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)

		return exitFailure
	}

	if *manifest == "" {
		*manifest = cfg.CatalogManifest
	}

	if *out == "" {
		*out = cfg.IndexSnapshot
	}

	images, err := catalog.Load(*manifest)
	if err != nil {
		slog.Error("failed to load catalog manifest", "manifest", *manifest, "error", err)

		return exitFailure
	}

	slog.Info("building index", "manifest", *manifest, "images", len(images))

	client := embeddings.NewClipClient(cfg.ClipServiceURL, embeddings.WithTimeout(cfg.EmbedTimeout))

	start := time.Now()

	ctx := context.Background()

	ix, err := index.Build(ctx, client, images)
	if err != nil {
		slog.Error("failed to build index", "error", err)

		return exitFailure
	}

	if err := ix.Save(*out); err != nil {
		slog.Error("failed to write snapshot", "path", *out, "error", err)

		return exitFailure
	}

	slog.Info("index built",
		"model", ix.Model(),
		"dimensions", ix.Dimension(),
		"images", ix.Len(),
		"snapshot", *out,
		"duration", time.Since(start).String(),
	)

	return exitSuccess
}
