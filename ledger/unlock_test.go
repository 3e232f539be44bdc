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

package ledger_test

import (
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenure-io/tenure/ledger"
)

func TestUnlockSlotNotFound(t *testing.T) {
	env := newTestEnv(t)
	err := env.ls.Unlock("alice", 0)
	require.ErrorIs(t, err, ledger.ErrSlotNotFound)
}

func TestUnlockTwice(t *testing.T) {
	env := newTestEnv(t)
	env.configureQuarter(t)
	amount := env.fund(t, "alice", 1000)
	slotIndex, err := env.ls.Lock("alice", amount, testDuration)
	require.NoError(t, err)

	// #nosec G115
	env.clock.Advance(int64(testDuration))
	require.NoError(t, env.ls.Unlock("alice", slotIndex))
	err = env.ls.Unlock("alice", slotIndex)
	require.ErrorIs(t, err, ledger.ErrAlreadyWithdrawn)

	// The second attempt moved no funds
	balance, err := env.token.BalanceOf("alice")
	require.NoError(t, err)
	assert.Zero(t, balance.Cmp(amount))
}

func TestUnlockMaturityBoundary(t *testing.T) {
	env := newTestEnv(t)
	env.configureQuarter(t)
	amount := env.fund(t, "alice", 1000)
	slotIndex, err := env.ls.Lock("alice", amount, testDuration)
	require.NoError(t, err)

	// One second before maturity the unlock is rejected with the
	// remaining wait time
	// #nosec G115
	env.clock.Set(testStartTime + int64(testDuration) - 1)
	err = env.ls.Unlock("alice", slotIndex)
	var inProgress ledger.LockupInProgressError
	require.True(t, errors.As(err, &inProgress))
	assert.Equal(t, int64(1), inProgress.Remaining)

	// At exactly the maturity timestamp the unlock succeeds
	env.clock.Advance(1)
	require.NoError(t, env.ls.Unlock("alice", slotIndex))
}

func TestUnlockWrongUser(t *testing.T) {
	env := newTestEnv(t)
	env.configureQuarter(t)
	amount := env.fund(t, "alice", 1000)
	slotIndex, err := env.ls.Lock("alice", amount, testDuration)
	require.NoError(t, err)

	// #nosec G115
	env.clock.Advance(int64(testDuration))
	err = env.ls.Unlock("bob", slotIndex)
	require.ErrorIs(t, err, ledger.ErrSlotNotFound)
}

func TestUnlockTamperedPool(t *testing.T) {
	env := newTestEnv(t)
	env.configureQuarter(t)
	amount := env.fund(t, "alice", 1000)
	slotIndex, err := env.ls.Lock("alice", amount, testDuration)
	require.NoError(t, err)

	// Drain the custodial account directly on the base token ledger,
	// bypassing the lockup ledger entirely
	require.NoError(
		t,
		env.token.Transfer(env.ls.PoolAccount(), "attacker", amount),
	)

	// #nosec G115
	env.clock.Advance(int64(testDuration))
	err = env.ls.Unlock("alice", slotIndex)
	require.ErrorIs(t, err, ledger.ErrPoolInsufficientFunds)

	// The slot is untouched and nothing was paid out
	slot, err := env.ls.Slot("alice", slotIndex)
	require.NoError(t, err)
	assert.False(t, slot.Withdrawn)
	balance, err := env.token.BalanceOf("alice")
	require.NoError(t, err)
	assert.Zero(t, balance.Sign())
}

func TestUnlockDerivedShortfall(t *testing.T) {
	env := newTestEnv(t)
	env.configureQuarter(t)
	amount := env.fund(t, "alice", 1000)
	slotIndex, err := env.ls.Lock("alice", amount, testDuration)
	require.NoError(t, err)

	// Corrupt the derived balance below what the burn requires
	require.NoError(
		t,
		env.db.Metadata().SetDerivedBalance("alice", big.NewInt(1), nil),
	)

	// #nosec G115
	env.clock.Advance(int64(testDuration))
	err = env.ls.Unlock("alice", slotIndex)
	require.ErrorIs(t, err, ledger.ErrInsufficientDerivedBalance)

	slot, err := env.ls.Slot("alice", slotIndex)
	require.NoError(t, err)
	assert.False(t, slot.Withdrawn)
}

func TestUnlockJournalPayload(t *testing.T) {
	env := newTestEnv(t)
	env.configureQuarter(t)
	amount := env.fund(t, "alice", 1000)
	slotIndex, err := env.ls.Lock("alice", amount, testDuration)
	require.NoError(t, err)

	// #nosec G115
	env.clock.Advance(int64(testDuration))
	require.NoError(t, env.ls.Unlock("alice", slotIndex))

	// Release point, lock, unlock
	record, err := env.db.Journal().Get(3)
	require.NoError(t, err)
	assert.Equal(t, string(ledger.UnlockEventType), record.Type)
	var evt ledger.UnlockEvent
	require.NoError(t, json.Unmarshal(record.Payload, &evt))
	assert.Equal(t, "alice", evt.User)
	assert.Equal(t, slotIndex, evt.SlotIndex)
	assert.Equal(t, amount.String(), evt.AmountLocked)
	assert.Equal(t, "25000000000", evt.AmountReleased)
	assert.Equal(t, "250000000000000000000", evt.DerivedBurned)
}

func TestUnlockSuspendedCheckedFirst(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.ls.Suspend(testConfigToken))

	// Suspension masks the missing slot
	err := env.ls.Unlock("alice", 99)
	require.ErrorIs(t, err, ledger.ErrSystemSuspended)
	require.NotErrorIs(t, err, ledger.ErrSlotNotFound)
}
