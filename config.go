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

package tenure

import (
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tenure-io/tenure/auth"
	"github.com/tenure-io/tenure/basetoken"
	"github.com/tenure-io/tenure/ledger"
)

type Config struct {
	logger                *slog.Logger
	promRegistry          prometheus.Registerer
	baseToken             basetoken.Ledger
	authorizer            auth.Authorizer
	clock                 ledger.Clock
	dataDir               string
	poolAccount           string
	apiListenAddress      string
	metricsListenAddress  string
	derivedDecimals       uint
	shutdownTimeout       time.Duration
}

// ConfigOptionFunc is a type that represents functions that modify the Node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new node config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:          slog.New(slog.NewJSONHandler(io.Discard, nil)),
		shutdownTimeout: 30 * time.Second,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLogger specifies the logger to use. The default is to discard log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance for registering metrics
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithBaseToken specifies the base token ledger holding the asset being locked
func WithBaseToken(baseToken basetoken.Ledger) ConfigOptionFunc {
	return func(c *Config) {
		c.baseToken = baseToken
	}
}

// WithAuthorizer specifies the authorizer consulted for restricted operations
func WithAuthorizer(authorizer auth.Authorizer) ConfigOptionFunc {
	return func(c *Config) {
		c.authorizer = authorizer
	}
}

// WithClock specifies the clock used for maturity checks. This is mostly used in tests
func WithClock(clock ledger.Clock) ConfigOptionFunc {
	return func(c *Config) {
		c.clock = clock
	}
}

// WithPoolAccount specifies the base token account holding custodied funds
func WithPoolAccount(account string) ConfigOptionFunc {
	return func(c *Config) {
		c.poolAccount = account
	}
}

// WithDerivedDecimals specifies the decimal precision of the derived token
func WithDerivedDecimals(decimals uint) ConfigOptionFunc {
	return func(c *Config) {
		c.derivedDecimals = decimals
	}
}

// WithApiListenAddress specifies the listen address for the REST API (empty = disabled)
func WithApiListenAddress(address string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = address
	}
}

// WithMetricsListenAddress specifies the listen address for Prometheus metrics (empty = disabled)
func WithMetricsListenAddress(address string) ConfigOptionFunc {
	return func(c *Config) {
		c.metricsListenAddress = address
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
