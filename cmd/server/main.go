// Package main provides the API server entry point for the Cashback ID name service.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cashback-id/internal/api"
	"github.com/cashback-id/internal/config"
	"github.com/cashback-id/internal/ledger"
	"github.com/cashback-id/internal/logging"
	"github.com/cashback-id/internal/names"
	"github.com/cashback-id/internal/proof"
	"github.com/cashback-id/internal/registrar"
	"github.com/cashback-id/internal/routing"
	"github.com/cashback-id/internal/service"
	"github.com/cashback-id/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// Allocation store: file-backed, hydrated lazily on first access.
	store := names.NewStore(cfg.Namespace.ParentName, cfg.Store.SnapshotPath, logger)
	logger.WithFields(map[string]interface{}{
		"parent":   cfg.Namespace.ParentName,
		"snapshot": cfg.Store.SnapshotPath,
	}).Info("Subdomain store configured")

	// On-chain registrar. Missing key or RPC degrades to allocation-only.
	reg := registrar.New(cfg.Registrar, logger)
	status := reg.Status()
	logger.WithFields(map[string]interface{}{
		"keyConfigured": status.KeyConfigured,
		"keySource":     status.KeySource,
		"keyValid":      status.KeyValid,
		"rpcConfigured": status.RPCConfigured,
		"walletAddress": status.WalletAddress,
		"ready":         status.Ready,
	}).Info("Registrar status")
	if !status.Ready {
		logger.Warn("On-chain registration disabled, claims will be allocation-only")
	}

	// Optional Redis resolve cache.
	var cache service.ResolveCache
	if cfg.Cache.Addr != "" {
		redis, err := storage.NewRedisCache(&cfg.Cache)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, resolve cache disabled")
		} else {
			defer redis.Close()
			cache = storage.NewResolveCache(redis, cfg.Cache.TTL, logger)
			logger.WithField("ttl", cfg.Cache.TTL.String()).Info("Resolve cache enabled")
		}
	}

	nameService := service.NewNameService(store, reg, cache, logger)
	lifi := routing.NewLifiClient(cfg.Routing, logger)
	executor := ledger.NewExecutorClient(cfg.Ledger, logger)

	// Proof pinning. Without a token the client degrades to mock CIDs.
	proofs := proof.NewIPFSClient(cfg.Proof, logger)
	if cfg.Proof.Token == "" {
		logger.Warn("WEB3_STORAGE_TOKEN not set, proof pinning will use mock CIDs")
	}

	server := api.NewServer(&api.ServerConfig{
		Host:              cfg.Server.Host,
		Port:              cfg.Server.Port,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	}, nameService, lifi, executor, proofs, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.WithError(err).Info("API server stopped")
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
	logger.Info("Server stopped")
}
