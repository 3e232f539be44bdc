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

package badger_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	badgerplugin "github.com/tenure-io/tenure/database/journal/badger"
	"github.com/tenure-io/tenure/database/types"
)

func TestJournalAppendGet(t *testing.T) {
	store, err := badgerplugin.New()
	require.NoError(t, err)
	defer store.Close()

	txn := store.NewTransaction(true)
	seq, err := store.Append(
		txn,
		"ledger.locked",
		json.RawMessage(`{"user":"alice"}`),
		1000,
	)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)
	require.NoError(t, txn.Commit())

	record, err := store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), record.Seq)
	assert.Equal(t, "ledger.locked", record.Type)
	assert.Equal(t, int64(1000), record.Timestamp)
	assert.NotEmpty(t, record.ID)
	assert.JSONEq(t, `{"user":"alice"}`, string(record.Payload))
}

func TestJournalSequenceContinuity(t *testing.T) {
	store, err := badgerplugin.New()
	require.NoError(t, err)
	defer store.Close()

	for i := range 5 {
		txn := store.NewTransaction(true)
		seq, err := store.Append(
			txn,
			"ledger.locked",
			json.RawMessage(`{}`),
			int64(i),
		)
		require.NoError(t, err)
		assert.Equal(t, uint64(i+1), seq) //nolint:gosec
		require.NoError(t, txn.Commit())
	}

	nextSeq, err := store.NextSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(6), nextSeq)

	records, err := store.GetRange(1, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, uint64(1), records[0].Seq)
	assert.Equal(t, uint64(3), records[2].Seq)

	// Range past the head ends at the journal head
	records, err = store.GetRange(3, 10)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestJournalRollbackDiscardsAppend(t *testing.T) {
	store, err := badgerplugin.New()
	require.NoError(t, err)
	defer store.Close()

	txn := store.NewTransaction(true)
	_, err = store.Append(txn, "ledger.locked", json.RawMessage(`{}`), 0)
	require.NoError(t, err)
	require.NoError(t, txn.Rollback())

	nextSeq, err := store.NextSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nextSeq)

	_, err = store.Get(1)
	assert.ErrorIs(t, err, types.ErrJournalKeyNotFound)
}

func TestJournalCommitTimestamp(t *testing.T) {
	store, err := badgerplugin.New()
	require.NoError(t, err)
	defer store.Close()

	// Unset timestamp reads as zero
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)

	txn := store.NewTransaction(true)
	require.NoError(t, store.SetCommitTimestamp(txn, 12345))
	require.NoError(t, txn.Commit())

	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(12345), ts)
}
