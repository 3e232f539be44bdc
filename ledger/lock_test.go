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
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenure-io/tenure/ledger"
)

func TestLockUnknownDuration(t *testing.T) {
	env := newTestEnv(t)
	env.fund(t, "alice", 1000)

	_, err := env.ls.Lock("alice", wholeTokens(100), 12345)
	require.ErrorIs(t, err, ledger.ErrUnknownLockupDuration)
}

func TestLockInvalidAmount(t *testing.T) {
	env := newTestEnv(t)
	env.configureQuarter(t)
	env.fund(t, "alice", 1000)

	_, err := env.ls.Lock("alice", big.NewInt(0), testDuration)
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)
	_, err = env.ls.Lock("alice", big.NewInt(-100), testDuration)
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)
	_, err = env.ls.Lock("alice", nil, testDuration)
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

func TestLockInsufficientBalance(t *testing.T) {
	env := newTestEnv(t)
	env.configureQuarter(t)
	env.fund(t, "alice", 100)

	_, err := env.ls.Lock("alice", wholeTokens(101), testDuration)
	require.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	// The rejected lock left nothing behind
	count, err := env.ls.SlotCount("alice")
	require.NoError(t, err)
	assert.Zero(t, count)
	pool, err := env.ls.PoolBalance()
	require.NoError(t, err)
	assert.Zero(t, pool.Sign())
	balance, err := env.token.BalanceOf("alice")
	require.NoError(t, err)
	assert.Zero(t, balance.Cmp(wholeTokens(100)))
}

func TestLockInsufficientAllowance(t *testing.T) {
	env := newTestEnv(t)
	env.configureQuarter(t)
	require.NoError(t, env.token.Mint("alice", wholeTokens(1000)))
	require.NoError(
		t,
		env.token.Approve("alice", env.ls.PoolAccount(), wholeTokens(100)),
	)

	_, err := env.ls.Lock("alice", wholeTokens(500), testDuration)
	require.ErrorIs(t, err, ledger.ErrInsufficientAllowance)
}

// The balance check comes before the allowance check, so a user short on
// both is told about the balance
func TestLockBalanceCheckedBeforeAllowance(t *testing.T) {
	env := newTestEnv(t)
	env.configureQuarter(t)
	require.NoError(t, env.token.Mint("alice", wholeTokens(100)))

	_, err := env.ls.Lock("alice", wholeTokens(500), testDuration)
	require.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	require.NotErrorIs(t, err, ledger.ErrInsufficientAllowance)
}

func TestLockSuspendedCheckedFirst(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.ls.Suspend(testConfigToken))

	// Suspension masks the unconfigured duration
	_, err := env.ls.Lock("alice", wholeTokens(100), 12345)
	require.ErrorIs(t, err, ledger.ErrSystemSuspended)
	require.NotErrorIs(t, err, ledger.ErrUnknownLockupDuration)
}

func TestLockConsumesAllowance(t *testing.T) {
	env := newTestEnv(t)
	env.configureQuarter(t)
	env.fund(t, "alice", 1000)

	_, err := env.ls.Lock("alice", wholeTokens(400), testDuration)
	require.NoError(t, err)

	allowance, err := env.token.Allowance("alice", env.ls.PoolAccount())
	require.NoError(t, err)
	assert.Zero(t, allowance.Cmp(wholeTokens(600)))
}

func TestConcurrentLocksSerialized(t *testing.T) {
	env := newTestEnv(t)
	env.configureQuarter(t)
	env.fund(t, "alice", 1000)

	const workers = 8
	indices := make([]uint64, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slotIndex, err := env.ls.Lock(
				"alice",
				wholeTokens(100),
				testDuration,
			)
			require.NoError(t, err)
			indices[i] = slotIndex
		}()
	}
	wg.Wait()

	// Every lock got a distinct slot index
	seen := make(map[uint64]bool)
	for _, slotIndex := range indices {
		assert.False(t, seen[slotIndex])
		seen[slotIndex] = true
	}
	count, err := env.ls.SlotCount("alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(workers), count)
	pool, err := env.ls.PoolBalance()
	require.NoError(t, err)
	assert.Zero(t, pool.Cmp(wholeTokens(800)))
}
