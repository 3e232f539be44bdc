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
	"fmt"
	"math/big"

	"github.com/tenure-io/tenure/database"
	"github.com/tenure-io/tenure/database/models"
	"github.com/tenure-io/tenure/database/types"
	"github.com/tenure-io/tenure/event"
)

// Lock moves amount base tokens from the user into the custodial pool,
// opens a lockup slot for the given duration, and mints derived tokens
// against the slot's release amount. It returns the new slot's index
func (ls *LedgerState) Lock(
	user string,
	amount *big.Int,
	duration uint64,
) (uint64, error) {
	ls.mutex.Lock()
	defer ls.mutex.Unlock()
	slotIndex, err := ls.lock(user, amount, duration)
	if err != nil {
		ls.countOpError("lock")
	}
	return slotIndex, err
}

func (ls *LedgerState) lock(
	user string,
	amount *big.Int,
	duration uint64,
) (uint64, error) {
	suspended, err := ls.suspended(nil)
	if err != nil {
		return 0, err
	}
	if suspended {
		return 0, ErrSystemSuspended
	}
	point, err := ls.db.Metadata().GetReleasePoint(duration, nil)
	if err != nil {
		return 0, err
	}
	if point == nil {
		return 0, fmt.Errorf(
			"%w: duration %d",
			ErrUnknownLockupDuration,
			duration,
		)
	}
	if amount == nil || amount.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	balance, err := ls.baseToken.BalanceOf(user)
	if err != nil {
		return 0, err
	}
	if balance.Cmp(amount) < 0 {
		return 0, fmt.Errorf(
			"%w: have %s, need %s",
			ErrInsufficientBalance,
			balance.String(),
			amount.String(),
		)
	}
	allowance, err := ls.baseToken.Allowance(user, ls.poolAccount)
	if err != nil {
		return 0, err
	}
	if allowance.Cmp(amount) < 0 {
		return 0, fmt.Errorf(
			"%w: have %s, need %s",
			ErrInsufficientAllowance,
			allowance.String(),
			amount.String(),
		)
	}

	now := ls.clock.Now()
	// amountReleased = amount * ratio / 10^10, in base token units
	amountReleased := new(big.Int).Mul(amount, point.Ratio.ToBig())
	amountReleased.Quo(amountReleased, ls.precisionScale)
	derivedMinted := new(big.Int).Mul(amountReleased, ls.derivedScale)

	slotIndex, err := ls.db.Metadata().GetSlotCounter(user, nil)
	if err != nil {
		return 0, err
	}
	slot := &models.LockupSlot{
		User:           user,
		SlotIndex:      slotIndex,
		AmountLocked:   types.NewBigInt(amount),
		AmountReleased: types.NewBigInt(amountReleased),
		FromTimestamp:  now,
		// #nosec G115
		ToTimestamp: now + int64(duration),
	}
	poolBalance, err := ls.poolBalance(nil)
	if err != nil {
		return 0, err
	}
	newPoolBalance := new(big.Int).Add(poolBalance, amount)
	derivedBalance, err := ls.db.Metadata().GetDerivedBalance(user, nil)
	if err != nil {
		return 0, err
	}
	newDerivedBalance := new(big.Int).Add(derivedBalance, derivedMinted)
	derivedSupply, err := ls.derivedSupply(nil)
	if err != nil {
		return 0, err
	}
	newDerivedSupply := new(big.Int).Add(derivedSupply, derivedMinted)

	evt := LockEvent{
		User:           user,
		SlotIndex:      slotIndex,
		AmountLocked:   amount.String(),
		AmountReleased: amountReleased.String(),
		DerivedMinted:  derivedMinted.String(),
		Duration:       duration,
		FromTimestamp:  slot.FromTimestamp,
		ToTimestamp:    slot.ToTimestamp,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return 0, err
	}

	// Stage all ledger mutations, then pull the funds. The transaction
	// only commits once the base token transfer has succeeded, so a
	// transfer failure leaves the ledger untouched
	txn := ls.db.Transaction(true)
	transferred := false
	err = txn.Do(func(txn *database.Txn) error {
		if err := ls.db.Metadata().AddLockupSlot(slot, txn.Metadata()); err != nil {
			return err
		}
		if err := ls.db.Metadata().SetSlotCounter(
			user,
			slotIndex+1,
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
			string(LockEventType),
			payload,
			now,
		); err != nil {
			return err
		}
		if err := ls.baseToken.TransferFrom(
			ls.poolAccount,
			user,
			ls.poolAccount,
			amount,
		); err != nil {
			return mapBaseTokenError(err)
		}
		transferred = true
		return nil
	})
	if err != nil {
		if transferred {
			// The funds moved but the commit failed, so send them back
			if refundErr := ls.baseToken.Transfer(
				ls.poolAccount,
				user,
				amount,
			); refundErr != nil {
				ls.logger.Error(
					"failed to refund lock after commit failure",
					"component", "ledger",
					"user", user,
					"amount", amount.String(),
					"error", refundErr,
				)
			}
		}
		return 0, err
	}

	if ls.metrics.locks != nil {
		ls.metrics.locks.Inc()
		ls.metrics.poolBalance.Set(bigFloat(newPoolBalance))
		ls.metrics.derivedSupply.Set(bigFloat(newDerivedSupply))
	}
	ls.logger.Info(
		"lock created",
		"component", "ledger",
		"user", user,
		"slot_index", slotIndex,
		"amount", amount.String(),
		"duration", duration,
	)
	if ls.eventBus != nil {
		ls.eventBus.Publish(
			LockEventType,
			event.NewEvent(LockEventType, evt),
		)
	}
	return slotIndex, nil
}
