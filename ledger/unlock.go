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
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/tenure-io/tenure/basetoken"
	"github.com/tenure-io/tenure/database"
	"github.com/tenure-io/tenure/database/models"
	"github.com/tenure-io/tenure/event"
)

// Unlock pays out a matured lockup slot. It burns the derived tokens
// minted for the slot, releases the locked amount from the custodial
// pool back to the user, and marks the slot withdrawn
func (ls *LedgerState) Unlock(user string, slotIndex uint64) error {
	ls.mutex.Lock()
	defer ls.mutex.Unlock()
	if err := ls.unlock(user, slotIndex); err != nil {
		ls.countOpError("unlock")
		return err
	}
	return nil
}

func (ls *LedgerState) unlock(user string, slotIndex uint64) error {
	suspended, err := ls.suspended(nil)
	if err != nil {
		return err
	}
	if suspended {
		return ErrSystemSuspended
	}
	slot, err := ls.db.Metadata().GetLockupSlot(user, slotIndex, nil)
	if err != nil {
		return err
	}
	if slot == nil {
		return fmt.Errorf(
			"%w: user %s, slot %d",
			ErrSlotNotFound,
			user,
			slotIndex,
		)
	}
	if slot.Withdrawn {
		return fmt.Errorf(
			"%w: user %s, slot %d",
			ErrAlreadyWithdrawn,
			user,
			slotIndex,
		)
	}
	now := ls.clock.Now()
	if !slot.Matured(now) {
		return LockupInProgressError{
			Remaining: slot.ToTimestamp - now,
		}
	}
	amountLocked := slot.AmountLocked.ToBig()
	poolBalance, err := ls.poolBalance(nil)
	if err != nil {
		return err
	}
	if poolBalance.Cmp(amountLocked) < 0 {
		return fmt.Errorf(
			"%w: have %s, need %s",
			ErrPoolInsufficientFunds,
			poolBalance.String(),
			amountLocked.String(),
		)
	}
	// The recorded pool balance always covers active slots, but the base
	// token ledger is outside our control. Check the account we actually
	// pay out of before staging anything
	poolActual, err := ls.baseToken.BalanceOf(ls.poolAccount)
	if err != nil {
		return err
	}
	if poolActual.Cmp(amountLocked) < 0 {
		return fmt.Errorf(
			"%w: pool account holds %s, need %s",
			ErrPoolInsufficientFunds,
			poolActual.String(),
			amountLocked.String(),
		)
	}
	derivedBurned := new(big.Int).Mul(
		slot.AmountReleased.ToBig(),
		ls.derivedScale,
	)
	derivedBalance, err := ls.db.Metadata().GetDerivedBalance(user, nil)
	if err != nil {
		return err
	}
	if derivedBalance.Cmp(derivedBurned) < 0 {
		return fmt.Errorf(
			"%w: have %s, need %s",
			ErrInsufficientDerivedBalance,
			derivedBalance.String(),
			derivedBurned.String(),
		)
	}

	newPoolBalance := new(big.Int).Sub(poolBalance, amountLocked)
	newDerivedBalance := new(big.Int).Sub(derivedBalance, derivedBurned)
	derivedSupply, err := ls.derivedSupply(nil)
	if err != nil {
		return err
	}
	newDerivedSupply := new(big.Int).Sub(derivedSupply, derivedBurned)

	evt := UnlockEvent{
		User:           user,
		SlotIndex:      slotIndex,
		AmountLocked:   amountLocked.String(),
		AmountReleased: slot.AmountReleased.String(),
		DerivedBurned:  derivedBurned.String(),
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	// Stage all ledger mutations, then pay out. The transaction only
	// commits once the base token transfer has succeeded
	txn := ls.db.Transaction(true)
	transferred := false
	err = txn.Do(func(txn *database.Txn) error {
		if err := ls.db.Metadata().SetLockupSlotWithdrawn(
			user,
			slotIndex,
			txn.Metadata(),
		); err != nil {
			return err
		}
		if err := ls.setPoolBalance(newPoolBalance, txn.Metadata()); err != nil {
			return err
		}
		if err := ls.db.Metadata().SetDerivedBalance(
			user,
			newDerivedBalance,
			txn.Metadata(),
		); err != nil {
			return err
		}
		if err := ls.setDerivedSupply(newDerivedSupply, txn.Metadata()); err != nil {
			return err
		}
		if _, err := ls.db.Journal().Append(
			txn.Journal(),
			string(UnlockEventType),
			payload,
			now,
		); err != nil {
			return err
		}
		if err := ls.baseToken.Transfer(
			ls.poolAccount,
			user,
			amountLocked,
		); err != nil {
			return mapBaseTokenError(err)
		}
		transferred = true
		return nil
	})
	if err != nil {
		if transferred {
			// The payout went through but the commit failed. The slot
			// still reads as active, so suspend to keep it from being
			// paid out twice before an operator steps in
			ls.logger.Error(
				"unlock commit failed after payout, suspending",
				"component", "ledger",
				"user", user,
				"slot_index", slotIndex,
				"amount", amountLocked.String(),
				"error", err,
			)
			if suspendErr := ls.db.Metadata().SetNetworkState(
				models.NetworkStateKeySuspended,
				networkStateTrue,
				nil,
			); suspendErr != nil {
				ls.logger.Error(
					"failed to suspend after unlock commit failure",
					"component", "ledger",
					"error", suspendErr,
				)
			} else if ls.metrics.suspended != nil {
				ls.metrics.suspended.Set(1)
			}
		}
		return err
	}

	if ls.metrics.unlocks != nil {
		ls.metrics.unlocks.Inc()
		ls.metrics.poolBalance.Set(bigFloat(newPoolBalance))
		ls.metrics.derivedSupply.Set(bigFloat(newDerivedSupply))
	}
	ls.logger.Info(
		"lockup slot withdrawn",
		"component", "ledger",
		"user", user,
		"slot_index", slotIndex,
		"amount", amountLocked.String(),
	)
	if ls.eventBus != nil {
		ls.eventBus.Publish(
			UnlockEventType,
			event.NewEvent(UnlockEventType, evt),
		)
	}
	return nil
}

// mapBaseTokenError translates base token ledger errors into their
// ledger-level counterparts
func mapBaseTokenError(err error) error {
	switch {
	case errors.Is(err, basetoken.ErrInsufficientBalance):
		return fmt.Errorf("%w: %w", ErrInsufficientBalance, err)
	case errors.Is(err, basetoken.ErrInsufficientAllowance):
		return fmt.Errorf("%w: %w", ErrInsufficientAllowance, err)
	default:
		return err
	}
}
