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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "tenure.config"

const DefaultShutdownTimeout = "30s"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type Config struct {
	// DataDir holds both stores. Empty keeps everything in memory
	DataDir           string `yaml:"dataDir"           split_words:"true"`
	BindAddr          string `yaml:"bindAddr"          split_words:"true"`
	ApiPort           uint   `yaml:"apiPort"           split_words:"true"`
	MetricsPort       uint   `yaml:"metricsPort"       split_words:"true"`
	PoolAccount       string `yaml:"poolAccount"       split_words:"true"`
	DerivedDecimals   uint   `yaml:"derivedDecimals"   split_words:"true"`
	BaseTokenDecimals uint   `yaml:"baseTokenDecimals" split_words:"true"`
	ShutdownTimeout   string `yaml:"shutdownTimeout"   split_words:"true"`
	// ConfigTokens are capability tokens granted the configurator role
	ConfigTokens []string `yaml:"configTokens" envconfig:"TENURE_CONFIG_TOKENS"`
	// SeedBalances funds base token accounts at startup for the
	// built-in in-memory ledger. Amounts are decimal strings in base
	// token units
	SeedBalances map[string]string `yaml:"seedBalances"`
}

var globalConfig = &Config{
	DataDir:           ".tenure",
	BindAddr:          "0.0.0.0",
	ApiPort:           3000,
	MetricsPort:       12798,
	DerivedDecimals:   18,
	BaseTokenDecimals: 8,
	ShutdownTimeout:   DefaultShutdownTimeout,
}

func LoadConfig(configFile string) (*Config, error) {
	// Check well-known locations when no config file is given
	if configFile == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".tenure", "tenure.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}
		if configFile == "" {
			systemPath := "/etc/tenure/tenure.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Environment variables override config file values
	if err := envconfig.Process("tenure", globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}
