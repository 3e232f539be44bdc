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
	"errors"

	"github.com/tenure-io/tenure/database/types"
	"gorm.io/gorm"
)

// Txn is a transaction spanning the metadata and journal stores
type Txn struct {
	db          *Database
	readWrite   bool
	finished    bool
	metadataTxn *gorm.DB
	journalTxn  types.Txn
}

func NewTxn(db *Database, readWrite bool) *Txn {
	return &Txn{
		db:          db,
		readWrite:   readWrite,
		metadataTxn: db.metadata.Transaction(),
		journalTxn:  db.journal.NewTransaction(readWrite),
	}
}

// Metadata returns the metadata store transaction handle
func (t *Txn) Metadata() *gorm.DB {
	return t.metadataTxn
}

// Journal returns the journal store transaction handle
func (t *Txn) Journal() types.Txn {
	return t.journalTxn
}

// Do executes the specified function in the context of the transaction.
// Any error will result in the transaction being rolled back
func (t *Txn) Do(fn func(*Txn) error) error {
	if err := fn(t); err != nil {
		if rollbackErr := t.Rollback(); rollbackErr != nil {
			return errors.Join(err, rollbackErr)
		}
		return err
	}
	return t.Commit()
}

// Commit finishes the transaction and writes any pending changes to
// both stores. The shared commit timestamp is updated first so a crash
// between the two store commits is detectable at next startup
func (t *Txn) Commit() error {
	if t.finished {
		return nil
	}
	defer func() {
		t.finished = true
	}()
	if t.readWrite {
		timestamp := generateCommitTimestamp()
		if err := t.db.updateCommitTimestamp(t, timestamp); err != nil {
			t.Rollback() //nolint:errcheck
			return err
		}
	}
	// The journal commits first. If the metadata commit then fails, the
	// commit timestamp check at next startup will flag the mismatch
	if err := t.journalTxn.Commit(); err != nil {
		if rollbackErr := t.metadataTxn.Rollback().Error; rollbackErr != nil {
			return errors.Join(err, rollbackErr)
		}
		return err
	}
	return t.metadataTxn.Commit().Error
}

// Rollback discards any pending changes in both stores
func (t *Txn) Rollback() error {
	if t.finished {
		return nil
	}
	defer func() {
		t.finished = true
	}()
	t.journalTxn.Rollback()
	return t.metadataTxn.Rollback().Error
}
