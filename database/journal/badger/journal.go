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

package badger

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tenure-io/tenure/database/types"
)

const (
	recordKeyPrefix = "r"
	nextSeqKey      = "next_seq"
)

// Record is one durable journal entry
type Record struct {
	Seq       uint64          `json:"seq"`
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

func recordKey(seq uint64) []byte {
	key := make([]byte, len(recordKeyPrefix)+8)
	copy(key, recordKeyPrefix)
	binary.BigEndian.PutUint64(key[len(recordKeyPrefix):], seq)
	return key
}

// Append adds a record within a transaction, assigning the next contiguous
// sequence number
func (d *JournalStoreBadger) Append(
	txn types.Txn,
	recordType string,
	payload json.RawMessage,
	timestamp int64,
) (uint64, error) {
	if txn == nil {
		return 0, types.ErrNilTxn
	}
	seq, err := d.nextSeq(txn)
	if err != nil {
		return 0, err
	}
	record := Record{
		Seq:       seq,
		ID:        uuid.NewString(),
		Type:      recordType,
		Timestamp: timestamp,
		Payload:   payload,
	}
	recordBytes, err := json.Marshal(&record)
	if err != nil {
		return 0, fmt.Errorf("failed to encode journal record: %w", err)
	}
	if err := d.set(txn, recordKey(seq), recordBytes); err != nil {
		return 0, err
	}
	// Advance the sequence counter within the same transaction
	seqBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(seqBytes, seq+1)
	if err := d.set(txn, []byte(nextSeqKey), seqBytes); err != nil {
		return 0, err
	}
	return seq, nil
}

// Get returns a single record by sequence number
func (d *JournalStoreBadger) Get(seq uint64) (*Record, error) {
	txn := d.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	val, err := d.get(txn, recordKey(seq))
	if err != nil {
		return nil, err
	}
	var record Record
	if err := json.Unmarshal(val, &record); err != nil {
		return nil, fmt.Errorf("failed to decode journal record: %w", err)
	}
	return &record, nil
}

// GetRange returns up to limit records starting at fromSeq. Sequence gaps do
// not occur; the range ends at the journal head
func (d *JournalStoreBadger) GetRange(
	fromSeq uint64,
	limit int,
) ([]Record, error) {
	var ret []Record
	txn := d.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	for seq := fromSeq; limit <= 0 || len(ret) < limit; seq++ {
		val, err := d.get(txn, recordKey(seq))
		if err != nil {
			if errors.Is(err, types.ErrJournalKeyNotFound) {
				break
			}
			return nil, err
		}
		var record Record
		if err := json.Unmarshal(val, &record); err != nil {
			return nil, fmt.Errorf(
				"failed to decode journal record: %w",
				err,
			)
		}
		ret = append(ret, record)
	}
	return ret, nil
}

// NextSeq returns the sequence number the next append will receive
func (d *JournalStoreBadger) NextSeq() (uint64, error) {
	txn := d.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	return d.nextSeq(txn)
}

func (d *JournalStoreBadger) nextSeq(txn types.Txn) (uint64, error) {
	val, err := d.get(txn, []byte(nextSeqKey))
	if err != nil {
		if errors.Is(err, types.ErrJournalKeyNotFound) {
			// Sequence numbers start at 1
			return 1, nil
		}
		return 0, err
	}
	if len(val) != 8 {
		return 0, fmt.Errorf(
			"malformed journal sequence counter: %d bytes",
			len(val),
		)
	}
	return binary.BigEndian.Uint64(val), nil
}
