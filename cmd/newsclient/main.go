package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"newsagg/internal/aggregator"
	"newsagg/internal/cli"
	"newsagg/internal/config"
	"newsagg/internal/feed"
	"newsagg/internal/history"
	"newsagg/internal/models"
	"newsagg/internal/paginator"
	"newsagg/internal/storage"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	client := cfg.Client

	store, err := storage.NewStorage(client.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open client store: %w", err)
	}
	defer store.Close()

	var source feed.PageSource
	switch client.Pagination {
	case "offset":
		source = feed.NewOffsetSource(client.APIBaseURL, client.FeedPageSize, client.HTTPTimeout)
	case "", "cursor":
		source = feed.NewProxySource(client.APIBaseURL, client.FeedPageSize, client.HTTPTimeout)
	default:
		return fmt.Errorf("unknown pagination mode %q", client.Pagination)
	}

	// One recommendation set shared by every view
	recommendations := aggregator.NewSet()
	agg := aggregator.New(aggregator.NewClient(client.RecommendBaseURL, client.HTTPTimeout), recommendations)

	handler := cli.NewHandler(
		feed.NewController(source, feed.Filter{Kind: models.Latest}),
		agg,
		paginator.NewWindow(recommendations, client.RecommendWindow, client.RecommendStep),
		history.New(store),
		os.Stdout,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		updates := recommendations.Subscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case <-updates:
				log.Printf("Recommendations updated: %d available", recommendations.Len())
			}
		}
	}()

	return handler.Run(ctx, os.Stdin)
}
