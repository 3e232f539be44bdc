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

package journal

import (
	"encoding/json"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	badgerplugin "github.com/tenure-io/tenure/database/journal/badger"
	"github.com/tenure-io/tenure/database/types"
)

// Record is one durable journal entry. Every committed ledger mutation
// appends a record with a contiguous sequence number so that external
// indexers can replay history.
type Record = badgerplugin.Record

// JournalStore is the append-only event journal. Appends happen inside the
// same coordinated transaction as the metadata mutation they describe.
type JournalStore interface {
	Close() error
	NewTransaction(readWrite bool) types.Txn

	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(types.Txn, int64) error

	// Append adds a record within a transaction, assigning and returning
	// the next sequence number
	Append(txn types.Txn, recordType string, payload json.RawMessage, timestamp int64) (uint64, error)
	// Get returns a single record by sequence number
	Get(seq uint64) (*Record, error)
	// GetRange returns up to limit records starting at fromSeq
	GetRange(fromSeq uint64, limit int) ([]Record, error)
	// NextSeq returns the sequence number the next append will receive
	NextSeq() (uint64, error)
}

// New creates a new badger-backed journal store using the provided data
// directory. An empty data directory results in an in-memory journal.
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (JournalStore, error) {
	return badgerplugin.New(
		badgerplugin.WithDataDir(dataDir),
		badgerplugin.WithLogger(logger),
		badgerplugin.WithPromRegistry(promRegistry),
	)
}
