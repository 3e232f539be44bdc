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
)

var (
	// ErrSystemSuspended is returned by state-changing operations while
	// the ledger is suspended
	ErrSystemSuspended = errors.New("system suspended")

	// ErrUnknownLockupDuration is returned when a lock names a duration
	// with no configured release point
	ErrUnknownLockupDuration = errors.New("unknown lockup duration")

	// ErrAlreadyConfigured is returned when setting a release point for
	// a duration that already has one without forcing the overwrite
	ErrAlreadyConfigured = errors.New("release point already configured")

	// ErrInsufficientBalance is returned when the user's base token
	// balance cannot cover the requested lock amount
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientAllowance is returned when the pool's spending
	// allowance from the user cannot cover the requested lock amount
	ErrInsufficientAllowance = errors.New("insufficient allowance")

	// ErrPoolInsufficientFunds is returned when the custodial pool does
	// not hold enough to pay out an unlock
	ErrPoolInsufficientFunds = errors.New("pool insufficient funds")

	// ErrInsufficientDerivedBalance is returned when the user's derived
	// balance cannot cover the amount to be burned on unlock
	ErrInsufficientDerivedBalance = errors.New(
		"insufficient derived balance",
	)

	// ErrSlotNotFound is returned when the named lockup slot does not
	// exist for the user
	ErrSlotNotFound = errors.New("lockup slot not found")

	// ErrAlreadyWithdrawn is returned when the named lockup slot was
	// already paid out
	ErrAlreadyWithdrawn = errors.New("lockup slot already withdrawn")

	// ErrNotTransferable is returned for any attempt to move derived
	// balance between accounts
	ErrNotTransferable = errors.New("derived balance is not transferable")

	// ErrInvalidAmount is returned when a lock amount is zero or negative
	ErrInvalidAmount = errors.New("invalid amount")
)

// LockupInProgressError is returned when unlocking a slot that has not
// yet matured. It carries the remaining wait time in seconds
type LockupInProgressError struct {
	Remaining int64
}

func (e LockupInProgressError) Error() string {
	return fmt.Sprintf(
		"lockup in progress: %d seconds remaining",
		e.Remaining,
	)
}

func (e LockupInProgressError) Is(target error) bool {
	_, ok := target.(LockupInProgressError)
	return ok
}
