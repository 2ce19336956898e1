// scout runs the full text-to-shoppable-look pipeline once and prints the
// per-item results. Credentials and service endpoints come from the
// environment (see internal/config).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/shopthelook/scout/internal/app"
	"github.com/shopthelook/scout/internal/config"
	"github.com/shopthelook/scout/internal/pipeline"
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
		text            = flag.String("text", "", "outfit description to shop for (required)")
		topK            = flag.Int("top-k", 0, "catalog images to retrieve per item (default from TOP_K)")
		maxResults      = flag.Int("max-results", 0, "product results to keep per item (default from MAX_RESULTS)")
		continueOnError = flag.Bool("continue-on-error", false, "record a failed item and keep going instead of aborting")
	)
	flag.Parse()

	if *text == "" {
		fmt.Fprintln(os.Stderr, "usage: scout -text \"minimal black turtleneck\" [-top-k N] [-max-results N]")

		return exitFailure
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)

		return exitFailure
	}

	if *topK == 0 {
		*topK = cfg.TopK
	}

	if *maxResults == 0 {
		*maxResults = cfg.MaxResults
	}

	ctx := context.Background()

	orchestrator, err := app.BuildOrchestrator(ctx, cfg)
	if err != nil {
		slog.Error("failed to build pipeline", "error", err)

		return exitFailure
	}

	looks, err := orchestrator.Run(ctx, *text, pipeline.Options{
		TopK:            *topK,
		MaxResults:      *maxResults,
		ContinueOnError: *continueOnError,
	})
	if err != nil {
		slog.Error("pipeline failed", "error", err)

		return exitFailure
	}

	for _, look := range looks {
		fmt.Printf("%s\n", look.Item)

		if look.Err != nil {
			fmt.Printf("  error: %v\n", look.Err)

			continue
		}

		for _, scored := range look.Retrieval.Images {
			fmt.Printf("  catalog %s (score %.3f)\n", scored.Image.ID, scored.Score)
		}

		fmt.Printf("  hosted at %s\n", look.ImageURL)

		for _, product := range look.Products {
			if product.Price != nil {
				fmt.Printf("  - %s | %s | %.2f\n", product.Title, product.Source, *product.Price)
			} else {
				fmt.Printf("  - %s | %s | price n/a\n", product.Title, product.Source)
			}
		}
	}

	return exitSuccess
}
