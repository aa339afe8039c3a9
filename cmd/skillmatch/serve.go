package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/madcourses/skillmatch/internal/metrics"
	chiTransport "github.com/madcourses/skillmatch/internal/transport/chi"
	"github.com/madcourses/skillmatch/internal/version"
	healthuc "github.com/madcourses/skillmatch/internal/usecase/health"
	matchuc "github.com/madcourses/skillmatch/internal/usecase/match"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger := globalCfg, globalLogger
	ctx := cmd.Context()

	logger.Info("Starting skillmatch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_primary", cfg.Catalog.Primary),
		zap.String("catalog_fallback", cfg.Catalog.Fallback),
		zap.String("embedding_provider", cfg.Embedding.Provider),
	)

	metrics.Register()

	d := newDeps(cfg, logger)
	defer d.Close()

	cache, err := d.catalogCache(ctx)
	if err != nil {
		return err
	}
	embedder, err := d.embedder(ctx)
	if err != nil {
		return err
	}

	if cfg.Catalog.Preload {
		cat, err := cache.Get(ctx)
		if err != nil {
			return fmt.Errorf("preload catalog: %w", err)
		}
		logger.Info("Catalog preloaded", zap.String("source", cat.Source()), zap.Int("courses", cat.Len()))
	}

	matchSvc := matchuc.New(cache, embedder).WithMaxConcurrency(cfg.Match.MaxConcurrency)

	var redisPinger healthuc.Pinger
	if d.redis != nil {
		redisPinger = d.redis
	}
	healthSvc := healthuc.New(cache, redisPinger, embeddingHealthChecker{embedder: embedder})

	server := chiTransport.NewServer(matchSvc, cache, healthSvc, cfg.Match.Limits(), logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, chiTransport.RouterOptions{
			APIKeys:     cfg.Auth.APIKeys,
			CORSOrigins: cfg.HTTP.CORSOrigins,
		}, logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-quit:
		logger.Info("Received shutdown signal")
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
