package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rootedlabs/trellis/internal/api"
	"github.com/rootedlabs/trellis/internal/config"
	"github.com/rootedlabs/trellis/internal/embedding"
	"github.com/rootedlabs/trellis/internal/engine"
	"github.com/rootedlabs/trellis/internal/llm"
	"github.com/rootedlabs/trellis/internal/metrics"
	"github.com/rootedlabs/trellis/internal/semantic"
	"github.com/rootedlabs/trellis/internal/store"
	"github.com/rootedlabs/trellis/internal/vectorstore"
)

func main() {
	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	// SQLite
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Stores
	rootStore := store.NewRootStore(db)
	nodeStore := store.NewNodeStore(db)
	embCacheStore := store.NewEmbeddingCacheStore(db)

	// External services
	ollamaClient := embedding.NewOllamaClient(cfg.OllamaBaseURL, cfg.EmbeddingModel)
	qdrantClient := vectorstore.NewQdrantClient(cfg.QdrantURL, cfg.EmbeddingDim)
	chatClient := llm.NewOllamaClient(cfg.OllamaBaseURL, cfg.ChatModel)

	// Embedding with cache
	embedder := embedding.NewCachedEmbedder(ollamaClient, embCacheStore, cfg.EmbeddingModel, cfg.EmbeddingDim)

	// Vector index
	index := vectorstore.NewIndex(embedder, qdrantClient, cfg.Collection)
	if err := qdrantClient.HealthCheck(); err != nil {
		logger.Warn("qdrant not available at startup, will retry on first use", "error", err)
	} else if err := index.Init(); err != nil {
		logger.Warn("failed to ensure collection", "error", err)
	}

	// Semantic collaborators
	analyzer := semantic.NewAnalyzer(chatClient, logger)
	gatekeeper := semantic.NewGatekeeper(chatClient, logger)
	aligner := semantic.NewAlignmentClassifier(chatClient, logger)
	responder := semantic.NewResponder(chatClient)

	// Metrics
	collector := metrics.NewPrometheusCollector()

	// Lifecycle engine
	params := engine.Params{
		SimilarityThreshold: cfg.SimilarityThreshold,
		ReinforceStep:       cfg.ReinforceStep,
		PromotionCount:      cfg.PromotionCount,
		StemConfidence:      cfg.StemConfidence,
		LeafTopK:            cfg.LeafTopK,
		TTL: engine.TTLPolicy{
			LeafTTL:         time.Duration(cfg.LeafTTLHours) * time.Hour,
			BranchStaleness: time.Duration(cfg.BranchStaleDays) * 24 * time.Hour,
			RootCooldown:    time.Duration(cfg.RootCooldownMinutes) * time.Minute,
		},
	}
	eng := engine.New(rootStore, nodeStore, index, gatekeeper, aligner, params, logger, collector)

	// Router
	router := api.NewRouter(db, rootStore, nodeStore, eng, analyzer, responder,
		ollamaClient, qdrantClient, collector.Handler(), cfg.APIKey, logger)

	// Server
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("trellis server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
