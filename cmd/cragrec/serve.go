// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/cragrec/internal/api"
	"github.com/tomtom215/cragrec/internal/config"
	"github.com/tomtom215/cragrec/internal/logging"
	"github.com/tomtom215/cragrec/internal/supervisor"
	"github.com/tomtom215/cragrec/internal/supervisor/services"
)

const serveUsage = "Usage: cragrec serve [flags]"

func runServe(ctx context.Context, e *env, args []string) int {
	cfg, ok := e.config()
	if !ok {
		return exitError
	}

	fs := e.newFlagSet("serve", serveUsage)
	storePath := fs.String("store", cfg.Server.StorePath, "rating store to recommend from")
	host := fs.String("host", cfg.Server.Host, "listen host")
	port := fs.Int("port", cfg.Server.Port, "listen port")
	if err := fs.Parse(args); err != nil {
		return exitError
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(e.stderr, serveUsage)
		return exitError
	}
	cfg.Server.StorePath = *storePath
	cfg.Server.Host = *host
	cfg.Server.Port = *port

	if err := serve(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		return e.fail(err)
	}
	return exitOK
}

// serve runs the API until ctx is canceled.
func serve(ctx context.Context, cfg *config.Config) error {
	if cfg.Server.StorePath == "" {
		return errors.New("no store to serve: set -store or CRAGREC_SERVE_STORE_PATH")
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("port must be within 1-65535, got %d", cfg.Server.Port)
	}

	logger := logging.WithComponent("serve")

	st, err := openStore(ctx, "serve", cfg.Server.StorePath, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing store")
		}
	}()

	engines, err := newEngines(cfg, []string{"usercf", "popularity"}, logger)
	if err != nil {
		return err
	}
	recs := make([]api.Recommender, len(engines))
	for i, eng := range engines {
		recs[i] = eng
	}

	handler, err := api.NewHandler(st, recs, api.Defaults{
		NRecommendations:    cfg.Recommend.NRecommendations,
		SimilarityThreshold: cfg.Recommend.SimilarityThreshold,
		Algorithm:           "usercf",
		RequestTimeout:      cfg.Server.Timeout,
	})
	if err != nil {
		return err
	}
	router := api.NewRouter(handler, api.NewMiddleware(api.MiddlewareConfigFromServer(&cfg.Server)))

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfigFromServer(&cfg.Server))
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.Timeout, logger))
	if cfg.Server.ProbeInterval > 0 {
		tree.AddStoreService(services.NewStoreProbeService(st, cfg.Server.ProbeInterval, logger))
	}

	logger.Info().
		Str("addr", srv.Addr).
		Str("store", st.DisplayPath()).
		Str("driver", st.Driver()).
		Msg("Starting cragrec API")

	err = tree.Serve(ctx)

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logger.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}
	logger.Info().Msg("Shutdown complete")
	return err
}
