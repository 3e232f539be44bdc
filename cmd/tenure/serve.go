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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	tenure "github.com/tenure-io/tenure"
	"github.com/tenure-io/tenure/auth"
	"github.com/tenure-io/tenure/basetoken"
	"github.com/tenure-io/tenure/internal/config"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the lockup ledger service",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				slog.Error("no config found in context")
				os.Exit(1)
			}
			serveRun(cmd, args, cfg)
		},
	}
}

func serveRun(_ *cobra.Command, _ []string, cfg *config.Config) {
	logger := commonRun()

	baseToken, err := buildBaseToken(cfg)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	authorizer := auth.NewStaticAuthorizer()
	for _, token := range cfg.ConfigTokens {
		authorizer.Grant(auth.Token(token), auth.RoleConfigurator)
	}
	if len(cfg.ConfigTokens) == 0 {
		logger.Warn(
			"no configurator tokens granted, admin operations are disabled",
			"component", programName,
		)
	}
	shutdownTimeout, err := time.ParseDuration(cfg.ShutdownTimeout)
	if err != nil {
		slog.Error("invalid shutdown timeout: " + err.Error())
		os.Exit(1)
	}

	node, err := tenure.New(
		tenure.NewConfig(
			tenure.WithLogger(logger),
			tenure.WithDatabasePath(cfg.DataDir),
			tenure.WithBaseToken(baseToken),
			tenure.WithAuthorizer(authorizer),
			tenure.WithPoolAccount(cfg.PoolAccount),
			tenure.WithDerivedDecimals(cfg.DerivedDecimals),
			tenure.WithApiListenAddress(
				fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.ApiPort),
			),
			tenure.WithMetricsListenAddress(
				fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.MetricsPort),
			),
			tenure.WithPrometheusRegistry(prometheus.DefaultRegisterer),
			tenure.WithShutdownTimeout(shutdownTimeout),
		),
	)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()
	if err := node.Run(ctx); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// buildBaseToken creates the in-memory base token ledger and seeds any
// configured balances
func buildBaseToken(cfg *config.Config) (*basetoken.MemoryLedger, error) {
	baseToken := basetoken.NewMemoryLedger(cfg.BaseTokenDecimals)
	for account, amount := range cfg.SeedBalances {
		parsed, ok := new(big.Int).SetString(amount, 10)
		if !ok {
			return nil, fmt.Errorf(
				"malformed seed balance for %s: %q",
				account,
				amount,
			)
		}
		if err := baseToken.Mint(account, parsed); err != nil {
			return nil, fmt.Errorf(
				"failed to seed balance for %s: %w",
				account,
				err,
			)
		}
	}
	return baseToken, nil
}
