// Copyright (c) 2024 cblomart
// Licensed under the MIT License

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "newsagg/docs"
	"newsagg/internal/api"
	"newsagg/internal/cache"
	"newsagg/internal/config"
	"newsagg/internal/upstream"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	gin.SetMode(api.ModeForLogLevel(cfg.LogLevel))

	if cfg.Upstream.APIKey == "" {
		log.Printf("Warning: API_KEY is not set, news requests will fail until it is configured")
	}

	// Per-client rate limiters expire after being idle
	limiters := cache.NewManager(cfg.Security.LimiterIdleTTL)

	adapter := upstream.New(cfg.Upstream)

	server := api.NewServer(adapter, cfg, limiters)

	log.Printf("Starting news proxy on port %d", cfg.Port)
	log.Printf("Upstream: %s (language %s)", cfg.Upstream.BaseURL, cfg.Upstream.Language)
	log.Printf("Rate limit: %v (%.1f/s, burst %d)", cfg.Security.EnableRateLimit, cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitBurst)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		<-sigChan
		log.Println("Received shutdown signal, stopping server...")
		cancel()
	}()

	if err := server.StartWithContext(ctx); err != nil && err != context.Canceled {
		log.Fatal("Failed to start server:", err)
	}
}
