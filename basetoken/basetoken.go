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

// Package basetoken defines the capability set consumed from the external
// base-asset ledger. The lockup ledger never manages base-asset balances
// itself; it only moves funds between caller accounts and the custodial pool
// through this interface.
package basetoken

import (
	"errors"
	"math/big"
)

var (
	// ErrInsufficientBalance is returned when an account cannot cover a transfer
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInsufficientAllowance is returned when a delegated transfer exceeds
	// the approved allowance
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	// ErrInvalidAmount is returned for nil, zero or negative transfer amounts
	ErrInvalidAmount = errors.New("invalid amount")
)

// Ledger is the minimal account-balance service required from the base-asset
// ledger: {transfer, transferFrom, balanceOf, decimals}. Implementations must
// apply each call atomically.
type Ledger interface {
	// Decimals returns the base asset's decimal precision. It is consulted
	// once at configuration time to compute scale adjustments between base
	// and derived precision.
	Decimals() (uint, error)
	// BalanceOf returns the current balance of an account
	BalanceOf(account string) (*big.Int, error)
	// Transfer moves amount from one account to another
	Transfer(from, to string, amount *big.Int) error
	// TransferFrom moves amount from owner to recipient on behalf of spender,
	// consuming spender's allowance
	TransferFrom(spender, owner, recipient string, amount *big.Int) error
	// Approve sets spender's allowance over owner's funds
	Approve(owner, spender string, amount *big.Int) error
	// Allowance returns the remaining allowance of spender over owner's funds
	Allowance(owner, spender string) (*big.Int, error)
}
