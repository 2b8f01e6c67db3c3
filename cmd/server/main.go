// ShowGraph - TV Show Social Graph and Recommendation Service
// Copyright 2026 skazis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skazis/showgraph

// Command server runs the ShowGraph HTTP API on top of a Badger or
// Neo4j graph store.
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

	"github.com/skazis/showgraph/internal/api"
	"github.com/skazis/showgraph/internal/config"
	"github.com/skazis/showgraph/internal/domain"
	"github.com/skazis/showgraph/internal/graph"
	"github.com/skazis/showgraph/internal/graph/badgerstore"
	"github.com/skazis/showgraph/internal/graph/neo4jstore"
	"github.com/skazis/showgraph/internal/logging"
	"github.com/skazis/showgraph/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("backend", cfg.Storage.Backend).
		Str("addr", cfg.Server.Addr()).
		Msg("starting showgraph")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, gcStore, err := openStore(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open graph store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("failed to close graph store")
		}
	}()

	svc := domain.NewService(store)
	handler := api.NewHandler(svc, cfg.Recommend.DefaultLimit, cfg.Recommend.MaxLimit)
	router := api.NewRouter(handler, api.RouterConfig{
		RateLimitReqs:   cfg.Server.RateLimitReqs,
		RateLimitWindow: cfg.Server.RateLimitWindow,
		CORSOrigins:     cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.NewTree(
		logging.NewSlogLogger(logging.Logger()),
		supervisor.DefaultTreeConfig(),
	)
	tree.AddAPIService(supervisor.NewHTTPServerService(server, 10*time.Second))
	if gcStore != nil {
		tree.AddStorageService(supervisor.NewStoreGCService(gcStore, cfg.Storage.GCInterval))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("supervisor tree error")
	}

	logging.Info().Msg("showgraph stopped")
}

// openStore builds the configured backend. The second return value is
// non-nil only for Badger, which needs a GC worker.
func openStore(ctx context.Context, cfg *config.Config) (graph.Store, supervisor.GCStore, error) {
	switch cfg.Storage.Backend {
	case "badger":
		store, err := badgerstore.Open(badgerstore.Options{
			Path:   cfg.Storage.Path,
			Logger: logging.Logger(),
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case "neo4j":
		store, err := neo4jstore.Open(ctx, neo4jstore.Options{
			URI:            cfg.Neo4j.URI,
			Username:       cfg.Neo4j.Username,
			Password:       cfg.Neo4j.Password,
			Database:       cfg.Neo4j.Database,
			ConnectTimeout: cfg.Neo4j.ConnectTimeout,
			Logger:         logging.Logger(),
		})
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
