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

package metadata

import (
	"log/slog"
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tenure-io/tenure/database/metadata/sqlite"
	"github.com/tenure-io/tenure/database/models"
	"gorm.io/gorm"
)

type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(*gorm.DB, int64) error
	Transaction() *gorm.DB

	// Release schedule
	GetReleasePoint(
		uint64, // duration
		*gorm.DB,
	) (*models.ReleasePoint, error)
	GetReleasePoints(*gorm.DB) ([]models.ReleasePoint, error)
	SetReleasePoint(
		uint64, // duration
		*big.Int, // ratio
		int64, // addedAt
		*gorm.DB,
	) error

	// Lockup ledger
	GetLockupSlot(
		string, // user
		uint64, // slotIndex
		*gorm.DB,
	) (*models.LockupSlot, error)
	GetLockupSlots(
		string, // user
		*gorm.DB,
	) ([]models.LockupSlot, error)
	GetActiveLockupSlots(*gorm.DB) ([]models.LockupSlot, error)
	AddLockupSlot(*models.LockupSlot, *gorm.DB) error
	SetLockupSlotWithdrawn(
		string, // user
		uint64, // slotIndex
		*gorm.DB,
	) error
	GetSlotCounter(
		string, // user
		*gorm.DB,
	) (uint64, error)
	SetSlotCounter(
		string, // user
		uint64, // nextIndex
		*gorm.DB,
	) error

	// Derived balances
	GetDerivedBalance(
		string, // user
		*gorm.DB,
	) (*big.Int, error)
	GetDerivedBalances(*gorm.DB) ([]models.DerivedBalance, error)
	SetDerivedBalance(
		string, // user
		*big.Int, // amount
		*gorm.DB,
	) error

	// Ledger-wide scalars
	GetNetworkState(
		string, // key
		*gorm.DB,
	) (string, bool, error)
	SetNetworkState(
		string, // key
		string, // value
		*gorm.DB,
	) error
}

// New creates a new sqlite-backed metadata store using the provided data
// directory. An empty data directory results in an in-memory store.
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (MetadataStore, error) {
	return sqlite.New(dataDir, logger, promRegistry)
}
