// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

// Command server runs the Shmali recommendation service.
//
// Startup sequence:
//  1. Configuration: Koanf-layered config (defaults, YAML, env)
//  2. Logging: zerolog initialized from config
//  3. Sources: local CSV dataset and Spotify catalog client
//  4. Intelligence: OpenAI-backed intent analysis with heuristic fallback
//  5. Engine: classifier, aggregator, session store, formatter
//  6. Supervisor tree: session sweeper and HTTP server under suture
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

	"github.com/SivanLackrif/shmali/internal/api"
	"github.com/SivanLackrif/shmali/internal/config"
	"github.com/SivanLackrif/shmali/internal/intent"
	"github.com/SivanLackrif/shmali/internal/logging"
	"github.com/SivanLackrif/shmali/internal/recommend"
	"github.com/SivanLackrif/shmali/internal/sources/dataset"
	"github.com/SivanLackrif/shmali/internal/sources/spotify"
	"github.com/SivanLackrif/shmali/internal/supervisor"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Bool("spotify_enabled", cfg.Spotify.Enabled).
		Bool("openai_enabled", cfg.OpenAI.Enabled).
		Str("dataset_path", cfg.Dataset.Path).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Shmali")

	// Candidate sources
	var catalog recommend.CatalogSource
	if cfg.Spotify.Enabled {
		catalog = spotify.New(cfg.Spotify)
		logging.Info().Str("market", cfg.Spotify.Market).Msg("Spotify catalog source enabled")
	} else {
		logging.Warn().Msg("Spotify catalog source disabled")
	}

	var local recommend.DatasetSource
	if cfg.Dataset.Path != "" {
		ds, err := dataset.Load(cfg.Dataset.Path)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to load local dataset")
		}
		local = ds
	} else {
		logging.Warn().Msg("No local dataset configured")
	}

	if catalog == nil && local == nil {
		logging.Fatal().Msg("No candidate sources configured; enable Spotify or set DATASET_PATH")
	}

	// Intent analysis and classification
	var semantic *intent.Client
	if cfg.OpenAI.Enabled {
		semantic = intent.NewClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Timeout)
		logging.Info().Str("model", cfg.OpenAI.Model).Msg("Semantic intent analysis enabled")
	}

	var analyzer recommend.Analyzer
	var classifier *recommend.Classifier
	if semantic != nil {
		analyzer = intent.NewComposite(semantic)
		classifier = recommend.NewClassifier(semantic)
	} else {
		analyzer = intent.NewComposite(nil)
		classifier = recommend.NewClassifier(nil)
	}

	// Recommendation engine
	scorer := recommend.NewScorer(
		cfg.Recommend.TopicWeight,
		cfg.Recommend.MetadataWeight,
		cfg.Recommend.DirectWeight,
		cfg.Recommend.FuzzyWeight,
	)
	aggregator := recommend.NewAggregator(scorer, catalog, local, cfg.Recommend.MinRemoteResults, cfg.Recommend.LocalThreshold)
	store := recommend.NewMemoryStore(cfg.Session.TTL)
	engine := recommend.NewEngine(classifier, analyzer, aggregator, store, cfg.Recommend.MaxHistory)

	// HTTP server
	handler := api.NewHandler(engine, store, local)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handler, cfg.API),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Supervisor tree
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddSessionService(supervisor.NewSweeperService(store, cfg.Session.SweepInterval))
	tree.AddAPIService(supervisor.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
