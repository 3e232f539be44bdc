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

package tenure_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tenure "github.com/tenure-io/tenure"
	"github.com/tenure-io/tenure/auth"
	"github.com/tenure-io/tenure/basetoken"
	"github.com/tenure-io/tenure/ledger"
)

func TestNewRequiresBaseToken(t *testing.T) {
	_, err := tenure.New(tenure.NewConfig())
	require.Error(t, err)
}

func TestNodeRunStop(t *testing.T) {
	const configToken auth.Token = "node-test-config-token"
	baseToken := basetoken.NewMemoryLedger(8)
	require.NoError(
		t,
		baseToken.Mint("alice", big.NewInt(100_000_000_000)),
	)
	authorizer := auth.NewStaticAuthorizer()
	authorizer.Grant(configToken, auth.RoleConfigurator)
	clock := ledger.NewManualClock(1_000_000)
	node, err := tenure.New(
		tenure.NewConfig(
			tenure.WithBaseToken(baseToken),
			tenure.WithAuthorizer(authorizer),
			tenure.WithClock(clock),
		),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runResult := make(chan error, 1)
	go func() {
		runResult <- node.Run(ctx)
	}()

	// Wait for the ledger state to come up
	var ls *ledger.LedgerState
	require.Eventually(
		t,
		func() bool {
			ls = node.LedgerState()
			return ls != nil
		},
		5*time.Second,
		10*time.Millisecond,
	)

	// Exercise a lock through the running node
	require.NoError(
		t,
		ls.SetReleasePoint(
			configToken,
			15_552_000,
			big.NewInt(2_500_000_000),
			false,
		),
	)
	require.NoError(
		t,
		baseToken.Approve("alice", ls.PoolAccount(), big.NewInt(100_000_000_000)),
	)
	slotIndex, err := ls.Lock(
		"alice",
		big.NewInt(100_000_000_000),
		15_552_000,
	)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), slotIndex)

	node.Stop()
	select {
	case err := <-runResult:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("timeout waiting for node shutdown")
	}
}
