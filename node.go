// Copyright 2025 Tenure Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tenure implements a token lockup ledger service. Users lock a
// base asset into a custodial pool for a configured duration and receive
// non-transferable derived tokens against the amount released at maturity
package tenure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tenure-io/tenure/api"
	"github.com/tenure-io/tenure/database"
	"github.com/tenure-io/tenure/event"
	"github.com/tenure-io/tenure/ledger"
)

type Node struct {
	config        Config
	eventBus      *event.EventBus
	db            *database.Database
	ledgerState   *ledger.LedgerState
	apiServer     *api.Api
	shutdownFuncs []func(context.Context) error
	done          chan struct{}
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	if cfg.baseToken == nil {
		return nil, errors.New("no base token ledger provided")
	}
	n := &Node{
		config:   cfg,
		eventBus: event.NewEventBus(cfg.promRegistry, cfg.logger),
		done:     make(chan struct{}),
	}
	return n, nil
}

// Run starts the node and blocks until the provided context is cancelled
// or the node is stopped
func (n *Node) Run(ctx context.Context) error {
	// Load database
	db, err := database.New(database.Config{
		DataDir:      n.config.dataDir,
		Logger:       n.config.logger,
		PromRegistry: n.config.promRegistry,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	n.shutdownFuncs = append(
		n.shutdownFuncs,
		func(context.Context) error {
			return db.Close()
		},
	)
	// Load ledger state
	ledgerState, err := ledger.NewLedgerState(
		ledger.LedgerStateConfig{
			Logger:          n.config.logger,
			Database:        n.db,
			EventBus:        n.eventBus,
			BaseToken:       n.config.baseToken,
			Authorizer:      n.config.authorizer,
			PromRegistry:    n.config.promRegistry,
			Clock:           n.config.clock,
			PoolAccount:     n.config.poolAccount,
			DerivedDecimals: n.config.derivedDecimals,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to load ledger state: %w", err)
	}
	n.ledgerState = ledgerState
	// Start API listener
	if n.config.apiListenAddress != "" {
		n.apiServer = api.New(
			api.ApiConfig{
				ListenAddress: n.config.apiListenAddress,
			},
			n.ledgerState,
			n.config.logger,
		)
		if err := n.apiServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start API listener: %w", err)
		}
		n.shutdownFuncs = append(n.shutdownFuncs, n.apiServer.Stop)
	}
	// Start metrics listener
	if n.config.metricsListenAddress != "" {
		if err := n.startMetricsListener(ctx); err != nil {
			return err
		}
	}
	// Wait for shutdown
	select {
	case <-ctx.Done():
	case <-n.done:
	}
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		n.config.shutdownTimeout,
	)
	defer cancel()
	//nolint:contextcheck
	return n.shutdown(shutdownCtx)
}

// Stop shuts down the node
func (n *Node) Stop() {
	n.shutdownOnce.Do(func() {
		close(n.done)
	})
}

// LedgerState returns the underlying ledger state. It will be nil until
// Run has initialized the node
func (n *Node) LedgerState() *ledger.LedgerState {
	return n.ledgerState
}

func (n *Node) shutdown(ctx context.Context) error {
	var err error
	// Shutdown in reverse startup order
	for i := len(n.shutdownFuncs) - 1; i >= 0; i-- {
		if shutdownErr := n.shutdownFuncs[i](ctx); shutdownErr != nil {
			err = errors.Join(err, shutdownErr)
		}
	}
	n.eventBus.Stop()
	return err
}

func (n *Node) startMetricsListener(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              n.config.metricsListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 60 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			n.config.logger.Error(
				"metrics listener error",
				"error", err,
			)
		}
	}()
	n.config.logger.Info(
		"metrics listener started on " + n.config.metricsListenAddress,
	)
	n.shutdownFuncs = append(n.shutdownFuncs, server.Shutdown)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			30*time.Second,
		)
		defer cancel()
		//nolint:contextcheck
		server.Shutdown(shutdownCtx) //nolint:errcheck
	}()
	return nil
}
