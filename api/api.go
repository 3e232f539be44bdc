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

// Package api provides the REST interface to the lockup ledger
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/tenure-io/tenure/ledger"
)

// Api is the REST API server
type Api struct {
	config     ApiConfig
	logger     *slog.Logger
	ledger     *ledger.LedgerState
	httpServer *http.Server
	mu         sync.Mutex
}

type ApiConfig struct {
	ListenAddress string
}

// New creates a new API server instance
func New(
	cfg ApiConfig,
	ledgerState *ledger.LedgerState,
	logger *slog.Logger,
) *Api {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":3000"
	}
	return &Api{
		config: cfg,
		logger: logger,
		ledger: ledgerState,
	}
}

func (a *Api) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", a.handleRoot)
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("POST /v1/lock", a.handleLock)
	mux.HandleFunc("POST /v1/unlock", a.handleUnlock)
	mux.HandleFunc(
		"GET /v1/release-points",
		a.handleReleasePoints,
	)
	mux.HandleFunc(
		"GET /v1/release-points/{duration}",
		a.handleReleasePoint,
	)
	mux.HandleFunc(
		"GET /v1/accounts/{user}/slots",
		a.handleSlots,
	)
	mux.HandleFunc(
		"GET /v1/accounts/{user}/slots/{index}",
		a.handleSlot,
	)
	mux.HandleFunc(
		"GET /v1/accounts/{user}/derived-balance",
		a.handleDerivedBalance,
	)
	mux.HandleFunc("GET /v1/pool", a.handlePool)
	mux.HandleFunc("GET /v1/derived/supply", a.handleDerivedSupply)
	mux.HandleFunc(
		"POST /v1/admin/release-points",
		a.handleSetReleasePoint,
	)
	mux.HandleFunc("POST /v1/admin/suspend", a.handleSuspend)
	mux.HandleFunc("POST /v1/admin/resume", a.handleResume)
	return mux
}

// Start starts the HTTP server in a background goroutine
func (a *Api) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.httpServer != nil {
		a.mu.Unlock()
		return errors.New("server already started")
	}
	server := &http.Server{
		Addr:              a.config.ListenAddress,
		Handler:           a.routes(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	a.httpServer = server
	a.mu.Unlock()

	// Bind the listening socket first so port conflicts are detected
	// immediately, then serve in a background goroutine
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		a.mu.Lock()
		a.httpServer = nil
		a.mu.Unlock()
		return fmt.Errorf("failed to listen for API server: %w", err)
	}
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(
				"API server error",
				"error", err,
			)
		}
	}()
	a.logger.Info(
		"API listener started on " + a.config.ListenAddress,
	)

	go func() {
		<-ctx.Done()
		a.mu.Lock()
		srv := a.httpServer
		a.httpServer = nil
		a.mu.Unlock()
		if srv != nil {
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				30*time.Second,
			)
			defer cancel()
			//nolint:contextcheck
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error(
					"failed to shutdown API server on context cancellation",
					"error", err,
				)
			}
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server
func (a *Api) Stop(ctx context.Context) error {
	a.mu.Lock()
	srv := a.httpServer
	a.httpServer = nil
	a.mu.Unlock()
	if srv != nil {
		a.logger.Debug("shutting down API server")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf(
				"failed to shutdown API server: %w",
				err,
			)
		}
	}
	return nil
}
