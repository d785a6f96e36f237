// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cragrec/internal/metrics"
)

const (
	defaultProbeInterval = 30 * time.Second
	maxProbeTimeout      = 5 * time.Second
)

// Pinger is a store that can report whether it is reachable.
// *store.Store satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
	DisplayPath() string
}

// StoreProbeService pings the served rating store on a fixed interval,
// publishing the result as the store_up gauge and logging transitions.
// A failed ping never stops the service; the breaker in the store guards
// request traffic on its own.
type StoreProbeService struct {
	store    Pinger
	interval time.Duration
	timeout  time.Duration
	logger   zerolog.Logger
	up       atomic.Bool
	checked  atomic.Bool
}

// NewStoreProbeService creates a probe. A non-positive interval means 30s.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewStoreProbeService(store Pinger, interval time.Duration, logger zerolog.Logger) *StoreProbeService {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	timeout := interval / 2
	if timeout > maxProbeTimeout {
		timeout = maxProbeTimeout
	}
	return &StoreProbeService{
		store:    store,
		interval: interval,
		timeout:  timeout,
		logger:   logger.With().Str("service", "store-probe").Logger(),
	}
}

// Serve implements suture.Service.
func (s *StoreProbeService) Serve(ctx context.Context) error {
	s.logger.Debug().Dur("interval", s.interval).Msg("Store probe starting")
	s.probe(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.probe(ctx)
		}
	}
}

// Healthy reports the result of the most recent ping. It is false before
// the first ping completes.
func (s *StoreProbeService) Healthy() bool {
	return s.up.Load()
}

func (s *StoreProbeService) probe(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.store.Ping(pingCtx)
	if err != nil && ctx.Err() != nil {
		return
	}
	up := err == nil
	wasUp := s.up.Swap(up)
	first := !s.checked.Swap(true)

	gauge := 0.0
	if up {
		gauge = 1
	}
	metrics.StoreUp.WithLabelValues(s.store.DisplayPath()).Set(gauge)

	switch {
	case !up && (first || wasUp):
		s.logger.Warn().Err(err).Str("store", s.store.DisplayPath()).Msg("Rating store unreachable")
	case up && !first && !wasUp:
		s.logger.Info().Str("store", s.store.DisplayPath()).Msg("Rating store reachable again")
	}
}

func (s *StoreProbeService) String() string {
	return "store-probe"
}
