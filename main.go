package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"learnpath/catalog"
	"learnpath/config"
	"learnpath/database"
	"learnpath/matching"
	"learnpath/retrieval"
	"learnpath/web"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Load config (which includes log level setting)
	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	var store *database.PostgresStore
	if cfg.CatalogSource == "postgres" || cfg.RetrievalEnabled {
		if cfg.DatabaseURL == "" {
			logger.Fatal("DATABASE_URL is required when catalog source is postgres or retrieval is enabled")
		}
		store, err = database.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer store.Close()

		if err := store.EnsureSchema(ctx); err != nil {
			logger.Fatal("Failed to ensure database schema", zap.Error(err))
		}
	}

	tags, edges, items, err := loadCatalog(ctx, cfg, store)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}
	if store != nil && cfg.CatalogSource != "postgres" {
		// Keep the database copy in step with the YAML source so item
		// lookups and later postgres-sourced runs see the same catalog.
		if err := syncCatalog(ctx, store, tags, edges, items); err != nil {
			logger.Warn("Failed to sync catalog into database", zap.Error(err))
		}
	}
	logger.Info("Catalog loaded",
		zap.Int("tags", len(tags)),
		zap.Int("edges", len(edges)),
		zap.Int("items", len(items)))

	engine := matching.NewEngine(tags, edges, logger)

	var passages *retrieval.Store
	if cfg.RetrievalEnabled {
		embedder := retrieval.NewEmbeddingClient(cfg.EmbeddingHost, cfg.EmbeddingTimeout)
		passages = retrieval.NewStore(store, embedder, logger)
	}

	webServer := web.NewServer(engine, items, passages, store, cfg, logger)

	// Create context that listens for interrupt signals
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	port := fmt.Sprintf(":%d", cfg.WebPort)
	logger.Info("Starting learning path recommender", zap.String("port", port))
	if err := webServer.Start(ctx, port); err != nil {
		logger.Error("Web server error", zap.Error(err))
		os.Exit(1)
	}
}

func loadCatalog(ctx context.Context, cfg *config.Config, store *database.PostgresStore) ([]catalog.Tag, []catalog.Edge, []catalog.CourseItem, error) {
	if cfg.CatalogSource == "postgres" {
		tags, edges, err := store.LoadTaxonomy(ctx)
		if err != nil {
			return nil, nil, nil, err
		}
		items, err := store.LoadCatalog(ctx)
		if err != nil {
			return nil, nil, nil, err
		}
		return tags, edges, items, nil
	}

	tags, edges, err := catalog.LoadTaxonomy(cfg.TaxonomyPath)
	if err != nil {
		return nil, nil, nil, err
	}
	items, err := catalog.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, nil, nil, err
	}
	return tags, edges, items, nil
}

func syncCatalog(ctx context.Context, store *database.PostgresStore, tags []catalog.Tag, edges []catalog.Edge, items []catalog.CourseItem) error {
	for _, tag := range tags {
		if err := store.UpsertTag(ctx, tag); err != nil {
			return err
		}
	}
	for _, edge := range edges {
		if err := store.UpsertEdge(ctx, edge); err != nil {
			return err
		}
	}
	for _, item := range items {
		if err := store.UpsertCourseItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}
