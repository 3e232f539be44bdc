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
	"time"

	"github.com/tenure-io/tenure/database/types"
)

// checkCommitTimestamp compares the latest commit timestamps in the
// metadata and journal stores. A mismatch means an uncoordinated
// shutdown interrupted a commit between the two stores
func (d *Database) checkCommitTimestamp() error {
	metadataTimestamp, err := d.metadata.GetCommitTimestamp()
	if err != nil {
		return err
	}
	journalTimestamp, err := d.journal.GetCommitTimestamp()
	if err != nil {
		if errors.Is(err, types.ErrJournalKeyNotFound) {
			journalTimestamp = 0
		} else {
			return err
		}
	}
	if metadataTimestamp != journalTimestamp {
		return CommitTimestampError{
			MetadataTimestamp: metadataTimestamp,
			JournalTimestamp:  journalTimestamp,
		}
	}
	return nil
}

// updateCommitTimestamp writes the timestamp for the current commit
// into both stores within the given transaction
func (d *Database) updateCommitTimestamp(txn *Txn, timestamp int64) error {
	if err := d.metadata.SetCommitTimestamp(txn.Metadata(), timestamp); err != nil {
		return err
	}
	return d.journal.SetCommitTimestamp(txn.Journal(), timestamp)
}

func generateCommitTimestamp() int64 {
	return time.Now().UnixMilli()
}
