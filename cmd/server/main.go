package main

import (
	"fmt"
	"log"
	"os"

	"github.com/cartsaver/backend/config"
	httpDelivery "github.com/cartsaver/backend/internal/delivery/http"
	"github.com/cartsaver/backend/internal/domain"
	"github.com/cartsaver/backend/internal/infrastructure/cache"
	"github.com/cartsaver/backend/internal/infrastructure/flyers"
	"github.com/cartsaver/backend/internal/infrastructure/store"
	"github.com/cartsaver/backend/internal/infrastructure/summary"
	"github.com/cartsaver/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting CartSaver Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Result cache, shared across requests
	resultCache := cache.New[*domain.ProductMatchResult](cfg.Cache.Capacity, cfg.Cache.TTL)
	stopSweeper := resultCache.StartSweeper(cfg.Cache.SweepInterval)
	defer stopSweeper()
	log.Printf("Cache: capacity=%d ttl=%s", cfg.Cache.Capacity, cfg.Cache.TTL)

	// Promotion store
	promotionStore, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open promotion store: %v", err)
	}
	defer promotionStore.Close()
	log.Printf("Promotion store: %s", cfg.Database.Path)

	// Flyer-search client
	flyerClient := flyers.NewClient(cfg.Flyers.APIKey, cfg.Flyers.BaseURL)
	if cfg.Server.Environment == "development" {
		flyerClient.SetDebug(true)
		log.Printf("Flyer client debug mode enabled")
	}
	log.Printf("Flyer search API: %s", cfg.Flyers.BaseURL)

	// Summary generator: LLM with deterministic fallback, or template only
	var summarizer domain.SummaryGenerator
	if cfg.Summary.Enabled {
		summarizer = summary.NewClient(cfg.Summary.APIKey, cfg.Summary.BaseURL, cfg.Summary.Model)
		log.Printf("Summary: LLM (%s)", cfg.Summary.Model)
	} else {
		summarizer = summary.NewTextBuilder()
		log.Printf("Summary: template")
	}

	// Usecase layer
	candidates := usecase.NewCandidateSource(flyerClient, promotionStore, flyers.MaxResults, cfg.Matching.EnableDebugLogging)
	comparisonService := usecase.NewComparisonService(
		resultCache,
		candidates,
		summarizer,
		usecase.ComparisonServiceConfig{
			CacheTTL:           cfg.Cache.TTL,
			DefaultMode:        usecase.MatchMode(cfg.Matching.Mode),
			EnableDebugLogging: cfg.Matching.EnableDebugLogging,
		},
	)
	log.Printf("Matching: mode=%s debug=%v", cfg.Matching.Mode, cfg.Matching.EnableDebugLogging)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(comparisonService, resultCache)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
