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

package database

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tenure-io/tenure/database/journal"
	"github.com/tenure-io/tenure/database/metadata"
)

// Database coordinates the sqlite metadata store and the badger event
// journal and hands out transactions spanning both
type Database struct {
	logger   *slog.Logger
	metadata metadata.MetadataStore
	journal  journal.JournalStore
	dataDir  string
}

type Config struct {
	DataDir      string
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
}

// New creates a new database instance. An empty DataDir keeps both
// stores in memory
func New(cfg Config) (*Database, error) {
	logger := cfg.Logger
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	metadataStore, err := metadata.New(
		cfg.DataDir,
		logger,
		cfg.PromRegistry,
	)
	if err != nil {
		return nil, err
	}
	journalStore, err := journal.New(
		cfg.DataDir,
		logger,
		cfg.PromRegistry,
	)
	if err != nil {
		metadataStore.Close()
		return nil, err
	}
	db := &Database{
		logger:   logger,
		metadata: metadataStore,
		journal:  journalStore,
		dataDir:  cfg.DataDir,
	}
	if err := db.init(); err != nil {
		// Database is closed on error during init
		return nil, err
	}
	return db, nil
}

func (d *Database) init() error {
	// Check commit timestamp
	if err := d.checkCommitTimestamp(); err != nil {
		d.Close()
		return err
	}
	return nil
}

// Metadata returns the underlying metadata store
func (d *Database) Metadata() metadata.MetadataStore {
	return d.metadata
}

// Journal returns the underlying journal store
func (d *Database) Journal() journal.JournalStore {
	return d.journal
}

// DataDir returns the path to the on-disk data, if any
func (d *Database) DataDir() string {
	return d.dataDir
}

// Logger returns the logger instance
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// Transaction starts a new transaction spanning both stores
func (d *Database) Transaction(readWrite bool) *Txn {
	return NewTxn(d, readWrite)
}

// Close cleans up the database connections
func (d *Database) Close() error {
	var err error
	if d.metadata != nil {
		metadataErr := d.metadata.Close()
		err = metadataErr
	}
	if d.journal != nil {
		journalErr := d.journal.Close()
		if err == nil {
			err = journalErr
		}
	}
	return err
}

// CommitTimestampError represents a mismatch in the commit timestamps
// between the metadata and journal stores
type CommitTimestampError struct {
	MetadataTimestamp int64
	JournalTimestamp  int64
}

func (e CommitTimestampError) Error() string {
	return fmt.Sprintf(
		"commit timestamp mismatch: metadata = %d, journal = %d",
		e.MetadataTimestamp,
		e.JournalTimestamp,
	)
}
