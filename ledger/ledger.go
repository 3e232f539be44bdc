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

package ledger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tenure-io/tenure/auth"
	"github.com/tenure-io/tenure/basetoken"
	"github.com/tenure-io/tenure/database"
	"github.com/tenure-io/tenure/database/models"
	"github.com/tenure-io/tenure/event"
	"gorm.io/gorm"
)

const (
	// PrecisionExponent sets the fixed-point scale for release ratios.
	// A ratio of 10^10 releases the full locked amount
	PrecisionExponent = 10

	// DefaultDerivedDecimals is the decimal precision of the derived
	// token when none is configured
	DefaultDerivedDecimals = 18

	// DefaultPoolAccount is the base token account holding custodied
	// funds when none is configured
	DefaultPoolAccount = "tenure-pool"
)

const (
	networkStateTrue  = "1"
	networkStateFalse = "0"
)

// LedgerState manages the lockup ledger: the release schedule, per-user
// lockup slots, derived balances, and the custodial pool. All
// state-changing operations are serialized behind its mutex
type LedgerState struct {
	mutex           sync.Mutex
	logger          *slog.Logger
	db              *database.Database
	eventBus        *event.EventBus
	baseToken       basetoken.Ledger
	authorizer      auth.Authorizer
	clock           Clock
	poolAccount     string
	baseDecimals    uint
	derivedDecimals uint
	// derivedScale converts released base token units into derived
	// token units
	derivedScale   *big.Int
	precisionScale *big.Int
	metrics        ledgerMetrics
}

type LedgerStateConfig struct {
	Logger          *slog.Logger
	Database        *database.Database
	EventBus        *event.EventBus
	BaseToken       basetoken.Ledger
	Authorizer      auth.Authorizer
	PromRegistry    prometheus.Registerer
	Clock           Clock
	PoolAccount     string
	DerivedDecimals uint
}

func NewLedgerState(cfg LedgerStateConfig) (*LedgerState, error) {
	if cfg.Database == nil {
		return nil, errors.New("no database provided")
	}
	if cfg.BaseToken == nil {
		return nil, errors.New("no base token ledger provided")
	}
	logger := cfg.Logger
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	clock := cfg.Clock
	if clock == nil {
		clock = WallClock{}
	}
	poolAccount := cfg.PoolAccount
	if poolAccount == "" {
		poolAccount = DefaultPoolAccount
	}
	derivedDecimals := cfg.DerivedDecimals
	if derivedDecimals == 0 {
		derivedDecimals = DefaultDerivedDecimals
	}
	baseDecimals, err := cfg.BaseToken.Decimals()
	if err != nil {
		return nil, fmt.Errorf("query base token decimals: %w", err)
	}
	if derivedDecimals < baseDecimals {
		return nil, fmt.Errorf(
			"derived decimals (%d) below base token decimals (%d)",
			derivedDecimals,
			baseDecimals,
		)
	}
	ls := &LedgerState{
		logger:          logger,
		db:              cfg.Database,
		eventBus:        cfg.EventBus,
		baseToken:       cfg.BaseToken,
		authorizer:      cfg.Authorizer,
		clock:           clock,
		poolAccount:     poolAccount,
		baseDecimals:    baseDecimals,
		derivedDecimals: derivedDecimals,
		derivedScale: new(big.Int).Exp(
			big.NewInt(10),
			big.NewInt(int64(derivedDecimals-baseDecimals)),
			nil,
		),
		precisionScale: new(big.Int).Exp(
			big.NewInt(10),
			big.NewInt(PrecisionExponent),
			nil,
		),
	}
	if cfg.PromRegistry != nil {
		ls.initMetrics(cfg.PromRegistry)
	}
	if err := ls.audit(); err != nil {
		return nil, err
	}
	return ls, nil
}

// audit recomputes the pool balance and derived supply from the slot
// and balance tables and checks them against the stored aggregates
func (ls *LedgerState) audit() error {
	activeSlots, err := ls.db.Metadata().GetActiveLockupSlots(nil)
	if err != nil {
		return err
	}
	slotTotal := new(big.Int)
	for _, slot := range activeSlots {
		slotTotal.Add(slotTotal, slot.AmountLocked.ToBig())
	}
	poolBalance, err := ls.poolBalance(nil)
	if err != nil {
		return err
	}
	if slotTotal.Cmp(poolBalance) != 0 {
		return fmt.Errorf(
			"pool balance audit failed: slots hold %s, pool records %s",
			slotTotal.String(),
			poolBalance.String(),
		)
	}
	derivedBalances, err := ls.db.Metadata().GetDerivedBalances(nil)
	if err != nil {
		return err
	}
	balanceTotal := new(big.Int)
	for _, balance := range derivedBalances {
		balanceTotal.Add(balanceTotal, balance.Amount.ToBig())
	}
	derivedSupply, err := ls.derivedSupply(nil)
	if err != nil {
		return err
	}
	if balanceTotal.Cmp(derivedSupply) != 0 {
		return fmt.Errorf(
			"derived supply audit failed: balances hold %s, supply records %s",
			balanceTotal.String(),
			derivedSupply.String(),
		)
	}
	// The base token ledger is outside our control, so a shortfall
	// there is logged rather than fatal
	actual, err := ls.baseToken.BalanceOf(ls.poolAccount)
	if err != nil {
		return err
	}
	if actual.Cmp(poolBalance) < 0 {
		ls.logger.Warn(
			"pool account underfunded in base token ledger",
			"component", "ledger",
			"expected", poolBalance.String(),
			"actual", actual.String(),
		)
	}
	if ls.metrics.poolBalance != nil {
		ls.metrics.poolBalance.Set(bigFloat(poolBalance))
		ls.metrics.derivedSupply.Set(bigFloat(derivedSupply))
	}
	return nil
}

// Suspended returns whether state-changing operations are blocked
func (ls *LedgerState) Suspended() (bool, error) {
	ls.mutex.Lock()
	defer ls.mutex.Unlock()
	return ls.suspended(nil)
}

// Suspend blocks lock and unlock operations until Resume. It requires
// configurator authorization
func (ls *LedgerState) Suspend(token auth.Token) error {
	return ls.setSuspended(token, true)
}

// Resume unblocks lock and unlock operations. It requires configurator
// authorization
func (ls *LedgerState) Resume(token auth.Token) error {
	return ls.setSuspended(token, false)
}

func (ls *LedgerState) setSuspended(token auth.Token, suspended bool) error {
	ls.mutex.Lock()
	defer ls.mutex.Unlock()
	if ls.authorizer != nil {
		if err := ls.authorizer.Authorize(token, auth.RoleConfigurator); err != nil {
			return err
		}
	}
	value := networkStateFalse
	eventType := ResumeEventType
	if suspended {
		value = networkStateTrue
		eventType = SuspendEventType
	}
	txn := ls.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		return ls.db.Metadata().SetNetworkState(
			models.NetworkStateKeySuspended,
			value,
			txn.Metadata(),
		)
	})
	if err != nil {
		return err
	}
	if ls.metrics.suspended != nil {
		if suspended {
			ls.metrics.suspended.Set(1)
		} else {
			ls.metrics.suspended.Set(0)
		}
	}
	ls.logger.Info(
		"suspension state changed",
		"component", "ledger",
		"suspended", suspended,
	)
	if ls.eventBus != nil {
		ls.eventBus.Publish(
			eventType,
			event.NewEvent(eventType, SuspendEvent{Suspended: suspended}),
		)
	}
	return nil
}

// SlotCount returns the number of slots ever created for the user,
// including withdrawn ones
func (ls *LedgerState) SlotCount(user string) (uint64, error) {
	ls.mutex.Lock()
	defer ls.mutex.Unlock()
	return ls.db.Metadata().GetSlotCounter(user, nil)
}

// Slot returns the lockup slot at the given index for the user
func (ls *LedgerState) Slot(
	user string,
	slotIndex uint64,
) (*models.LockupSlot, error) {
	ls.mutex.Lock()
	defer ls.mutex.Unlock()
	slot, err := ls.db.Metadata().GetLockupSlot(user, slotIndex, nil)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	return slot, nil
}

// Slots returns all lockup slots for the user in index order
func (ls *LedgerState) Slots(user string) ([]models.LockupSlot, error) {
	ls.mutex.Lock()
	defer ls.mutex.Unlock()
	return ls.db.Metadata().GetLockupSlots(user, nil)
}

// PoolBalance returns the recorded custodial pool balance
func (ls *LedgerState) PoolBalance() (*big.Int, error) {
	ls.mutex.Lock()
	defer ls.mutex.Unlock()
	return ls.poolBalance(nil)
}

// PoolAccount returns the base token account holding custodied funds
func (ls *LedgerState) PoolAccount() string {
	return ls.poolAccount
}

func (ls *LedgerState) suspended(txn *gorm.DB) (bool, error) {
	value, found, err := ls.db.Metadata().GetNetworkState(
		models.NetworkStateKeySuspended,
		txn,
	)
	if err != nil {
		return false, err
	}
	return found && value == networkStateTrue, nil
}

func (ls *LedgerState) poolBalance(txn *gorm.DB) (*big.Int, error) {
	return ls.bigNetworkState(models.NetworkStateKeyPoolBalance, txn)
}

func (ls *LedgerState) setPoolBalance(
	value *big.Int,
	txn *gorm.DB,
) error {
	return ls.db.Metadata().SetNetworkState(
		models.NetworkStateKeyPoolBalance,
		value.String(),
		txn,
	)
}

func (ls *LedgerState) derivedSupply(txn *gorm.DB) (*big.Int, error) {
	return ls.bigNetworkState(models.NetworkStateKeyDerivedSupply, txn)
}

func (ls *LedgerState) setDerivedSupply(
	value *big.Int,
	txn *gorm.DB,
) error {
	return ls.db.Metadata().SetNetworkState(
		models.NetworkStateKeyDerivedSupply,
		value.String(),
		txn,
	)
}

func (ls *LedgerState) bigNetworkState(
	key string,
	txn *gorm.DB,
) (*big.Int, error) {
	value, found, err := ls.db.Metadata().GetNetworkState(key, txn)
	if err != nil {
		return nil, err
	}
	if !found {
		return new(big.Int), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf(
			"malformed network state value for %s: %q",
			key,
			value,
		)
	}
	return parsed, nil
}

func (ls *LedgerState) countOpError(operation string) {
	if ls.metrics.opErrors != nil {
		ls.metrics.opErrors.WithLabelValues(operation).Inc()
	}
}
