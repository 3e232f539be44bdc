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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenure-io/tenure/auth"
	"github.com/tenure-io/tenure/basetoken"
	"github.com/tenure-io/tenure/database"
	"github.com/tenure-io/tenure/ledger"
)

const (
	testBaseDecimals = uint(8)
	testStartTime    = int64(1_000_000)
	testDuration     = uint64(15_552_000)

	testConfigToken auth.Token = "test-config-token"
)

// quarterRatio releases 25% of the locked amount (2.5 * 10^9 against a
// precision scale of 10^10)
var quarterRatio = big.NewInt(2_500_000_000)

type testEnv struct {
	db    *database.Database
	token *basetoken.MemoryLedger
	clock *ledger.ManualClock
	ls    *ledger.LedgerState
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.New(database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	token := basetoken.NewMemoryLedger(testBaseDecimals)
	clock := ledger.NewManualClock(testStartTime)
	authorizer := auth.NewStaticAuthorizer()
	authorizer.Grant(testConfigToken, auth.RoleConfigurator)
	ls, err := ledger.NewLedgerState(
		ledger.LedgerStateConfig{
			Database:   db,
			BaseToken:  token,
			Authorizer: authorizer,
			Clock:      clock,
		},
	)
	require.NoError(t, err)
	return &testEnv{
		db:    db,
		token: token,
		clock: clock,
		ls:    ls,
	}
}

// fund mints whole base tokens to the user and approves the pool to
// spend them
func (e *testEnv) fund(t *testing.T, user string, whole int64) *big.Int {
	t.Helper()
	amount := wholeTokens(whole)
	require.NoError(t, e.token.Mint(user, amount))
	require.NoError(t, e.token.Approve(user, e.ls.PoolAccount(), amount))
	return amount
}

func (e *testEnv) configureQuarter(t *testing.T) {
	t.Helper()
	require.NoError(
		t,
		e.ls.SetReleasePoint(testConfigToken, testDuration, quarterRatio, false),
	)
}

// wholeTokens converts a whole token count into base units at 8 decimals
func wholeTokens(whole int64) *big.Int {
	return new(big.Int).Mul(
		big.NewInt(whole),
		big.NewInt(100_000_000),
	)
}

func TestWorkedExample(t *testing.T) {
	env := newTestEnv(t)
	env.configureQuarter(t)
	amount := env.fund(t, "alice", 1000)

	slotIndex, err := env.ls.Lock("alice", amount, testDuration)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), slotIndex)

	// Locking 1000 tokens at a 25% release ratio mints 250 derived
	// tokens at 18 decimals
	expected, ok := new(big.Int).SetString("250000000000000000000", 10)
	require.True(t, ok)
	derived, err := env.ls.DerivedBalanceOf("alice")
	require.NoError(t, err)
	assert.Zero(t, derived.Cmp(expected))

	supply, err := env.ls.DerivedSupply()
	require.NoError(t, err)
	assert.Zero(t, supply.Cmp(expected))

	slot, err := env.ls.Slot("alice", 0)
	require.NoError(t, err)
	assert.Zero(t, slot.AmountLocked.Cmp(amount))
	assert.Equal(
		t,
		int64(25_000_000_000),
		slot.AmountReleased.Int64(),
	)
	assert.Equal(t, testStartTime, slot.FromTimestamp)
	assert.Equal(
		t,
		testStartTime+int64(testDuration),
		slot.ToTimestamp,
	)
	assert.False(t, slot.Withdrawn)
}

func TestRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	env.configureQuarter(t)
	amount := env.fund(t, "alice", 1000)

	slotIndex, err := env.ls.Lock("alice", amount, testDuration)
	require.NoError(t, err)

	balance, err := env.token.BalanceOf("alice")
	require.NoError(t, err)
	assert.Zero(t, balance.Sign())

	// #nosec G115
	env.clock.Advance(int64(testDuration))
	require.NoError(t, env.ls.Unlock("alice", slotIndex))

	// The full locked amount is back with the user
	balance, err = env.token.BalanceOf("alice")
	require.NoError(t, err)
	assert.Zero(t, balance.Cmp(amount))

	// Derived balance and supply are fully burned
	derived, err := env.ls.DerivedBalanceOf("alice")
	require.NoError(t, err)
	assert.Zero(t, derived.Sign())
	supply, err := env.ls.DerivedSupply()
	require.NoError(t, err)
	assert.Zero(t, supply.Sign())

	// The pool is back to zero
	pool, err := env.ls.PoolBalance()
	require.NoError(t, err)
	assert.Zero(t, pool.Sign())

	slot, err := env.ls.Slot("alice", slotIndex)
	require.NoError(t, err)
	assert.True(t, slot.Withdrawn)
}

func TestSolvency(t *testing.T) {
	env := newTestEnv(t)
	env.configureQuarter(t)
	env.fund(t, "alice", 1000)
	env.fund(t, "bob", 500)

	_, err := env.ls.Lock("alice", wholeTokens(400), testDuration)
	require.NoError(t, err)
	_, err = env.ls.Lock("alice", wholeTokens(600), testDuration)
	require.NoError(t, err)
	bobSlot, err := env.ls.Lock("bob", wholeTokens(500), testDuration)
	require.NoError(t, err)

	// #nosec G115
	env.clock.Advance(int64(testDuration))
	require.NoError(t, env.ls.Unlock("bob", bobSlot))

	// The pool balance matches the sum of active slots
	expectedPool := wholeTokens(1000)
	pool, err := env.ls.PoolBalance()
	require.NoError(t, err)
	assert.Zero(t, pool.Cmp(expectedPool))

	poolTokens, err := env.token.BalanceOf(env.ls.PoolAccount())
	require.NoError(t, err)
	assert.Zero(t, poolTokens.Cmp(expectedPool))

	// The derived supply matches the sum of balances
	aliceDerived, err := env.ls.DerivedBalanceOf("alice")
	require.NoError(t, err)
	bobDerived, err := env.ls.DerivedBalanceOf("bob")
	require.NoError(t, err)
	supply, err := env.ls.DerivedSupply()
	require.NoError(t, err)
	total := new(big.Int).Add(aliceDerived, bobDerived)
	assert.Zero(t, supply.Cmp(total))
	assert.Zero(t, bobDerived.Sign())
}

func TestSlotIndexMonotonic(t *testing.T) {
	env := newTestEnv(t)
	env.configureQuarter(t)
	env.fund(t, "alice", 300)

	for i := uint64(0); i < 3; i++ {
		slotIndex, err := env.ls.Lock(
			"alice",
			wholeTokens(100),
			testDuration,
		)
		require.NoError(t, err)
		assert.Equal(t, i, slotIndex)
	}

	// Withdrawing a slot does not recycle its index
	// #nosec G115
	env.clock.Advance(int64(testDuration))
	require.NoError(t, env.ls.Unlock("alice", 1))
	env.fund(t, "alice", 100)
	slotIndex, err := env.ls.Lock("alice", wholeTokens(100), testDuration)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), slotIndex)

	count, err := env.ls.SlotCount("alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)

	slots, err := env.ls.Slots("alice")
	require.NoError(t, err)
	require.Len(t, slots, 4)
	for i, slot := range slots {
		// #nosec G115
		assert.Equal(t, uint64(i), slot.SlotIndex)
	}
}

func TestScheduleChangeNotRetroactive(t *testing.T) {
	env := newTestEnv(t)
	env.configureQuarter(t)
	env.fund(t, "alice", 2000)

	_, err := env.ls.Lock("alice", wholeTokens(1000), testDuration)
	require.NoError(t, err)

	// Double the ratio and lock again
	halfRatio := big.NewInt(5_000_000_000)
	require.NoError(
		t,
		env.ls.SetReleasePoint(testConfigToken, testDuration, halfRatio, true),
	)
	_, err = env.ls.Lock("alice", wholeTokens(1000), testDuration)
	require.NoError(t, err)

	// The first slot keeps the release amount it was created with
	first, err := env.ls.Slot("alice", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(25_000_000_000), first.AmountReleased.Int64())
	second, err := env.ls.Slot("alice", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(50_000_000_000), second.AmountReleased.Int64())
}

func TestDerivedNotTransferable(t *testing.T) {
	env := newTestEnv(t)
	env.configureQuarter(t)
	amount := env.fund(t, "alice", 1000)
	_, err := env.ls.Lock("alice", amount, testDuration)
	require.NoError(t, err)

	err = env.ls.TransferDerived("alice", "bob", big.NewInt(1))
	require.ErrorIs(t, err, ledger.ErrNotTransferable)
	err = env.ls.ApproveDerived("alice", "bob", big.NewInt(1))
	require.ErrorIs(t, err, ledger.ErrNotTransferable)
}

func TestSuspendGate(t *testing.T) {
	env := newTestEnv(t)
	env.configureQuarter(t)
	amount := env.fund(t, "alice", 1000)
	slotIndex, err := env.ls.Lock("alice", wholeTokens(500), testDuration)
	require.NoError(t, err)
	// #nosec G115
	env.clock.Advance(int64(testDuration))

	require.NoError(t, env.ls.Suspend(testConfigToken))
	suspended, err := env.ls.Suspended()
	require.NoError(t, err)
	assert.True(t, suspended)

	_, err = env.ls.Lock("alice", amount, testDuration)
	require.ErrorIs(t, err, ledger.ErrSystemSuspended)
	err = env.ls.Unlock("alice", slotIndex)
	require.ErrorIs(t, err, ledger.ErrSystemSuspended)

	// Queries still work while suspended
	_, err = env.ls.DerivedBalanceOf("alice")
	require.NoError(t, err)

	require.NoError(t, env.ls.Resume(testConfigToken))
	_, err = env.ls.Lock("alice", wholeTokens(500), testDuration)
	require.NoError(t, err)
	require.NoError(t, env.ls.Unlock("alice", slotIndex))
}

func TestSuspendRequiresAuthorization(t *testing.T) {
	env := newTestEnv(t)
	err := env.ls.Suspend("wrong-token")
	require.ErrorIs(t, err, auth.ErrNotAuthorized)
}

func TestJournalSequenceContinuity(t *testing.T) {
	env := newTestEnv(t)
	env.configureQuarter(t)
	env.fund(t, "alice", 300)

	for range 3 {
		_, err := env.ls.Lock("alice", wholeTokens(100), testDuration)
		require.NoError(t, err)
	}
	// #nosec G115
	env.clock.Advance(int64(testDuration))
	require.NoError(t, env.ls.Unlock("alice", 0))

	// One release point record plus three locks and an unlock
	nextSeq, err := env.db.Journal().NextSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(6), nextSeq)
	records, err := env.db.Journal().GetRange(1, 10)
	require.NoError(t, err)
	require.Len(t, records, 5)
	for i, record := range records {
		// #nosec G115
		assert.Equal(t, uint64(i+1), record.Seq)
	}
	assert.Equal(
		t,
		string(ledger.ReleasePointSetEventType),
		records[0].Type,
	)
	assert.Equal(t, string(ledger.UnlockEventType), records[4].Type)
}
