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

package basetoken

import (
	"math/big"
	"sync"
)

// MemoryLedger is an in-memory base-asset ledger used in dev mode and tests.
// A production deployment swaps in an RPC-backed client implementing the same
// Ledger interface.
type MemoryLedger struct {
	mu         sync.Mutex
	decimals   uint
	balances   map[string]*big.Int
	allowances map[string]map[string]*big.Int
}

// NewMemoryLedger creates an empty in-memory ledger with the given decimal
// precision
func NewMemoryLedger(decimals uint) *MemoryLedger {
	return &MemoryLedger{
		decimals:   decimals,
		balances:   make(map[string]*big.Int),
		allowances: make(map[string]map[string]*big.Int),
	}
}

func (m *MemoryLedger) Decimals() (uint, error) {
	return m.decimals, nil
}

func (m *MemoryLedger) BalanceOf(account string) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.balance(account)), nil
}

func (m *MemoryLedger) Transfer(from, to string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.move(from, to, amount)
}

func (m *MemoryLedger) TransferFrom(
	spender, owner, recipient string,
	amount *big.Int,
) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	allowance := m.allowance(owner, spender)
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := m.move(owner, recipient, amount); err != nil {
		return err
	}
	allowance.Sub(allowance, amount)
	return nil
}

func (m *MemoryLedger) Approve(owner, spender string, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ownerAllowances, ok := m.allowances[owner]
	if !ok {
		ownerAllowances = make(map[string]*big.Int)
		m.allowances[owner] = ownerAllowances
	}
	ownerAllowances[spender] = new(big.Int).Set(amount)
	return nil
}

func (m *MemoryLedger) Allowance(owner, spender string) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.allowance(owner, spender)), nil
}

// Mint credits newly created funds to an account. This exists for seeding
// dev-mode and test balances and is not part of the Ledger capability set.
func (m *MemoryLedger) Mint(account string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bal := m.balance(account)
	bal.Add(bal, amount)
	return nil
}

// balance returns the mutable balance entry for an account, creating a zero
// entry if needed. Callers must hold the lock.
func (m *MemoryLedger) balance(account string) *big.Int {
	bal, ok := m.balances[account]
	if !ok {
		bal = new(big.Int)
		m.balances[account] = bal
	}
	return bal
}

// allowance returns the mutable allowance entry for an owner/spender pair.
// Callers must hold the lock.
func (m *MemoryLedger) allowance(owner, spender string) *big.Int {
	ownerAllowances, ok := m.allowances[owner]
	if !ok {
		ownerAllowances = make(map[string]*big.Int)
		m.allowances[owner] = ownerAllowances
	}
	allowance, ok := ownerAllowances[spender]
	if !ok {
		allowance = new(big.Int)
		ownerAllowances[spender] = allowance
	}
	return allowance
}

// move transfers between accounts. Callers must hold the lock.
func (m *MemoryLedger) move(from, to string, amount *big.Int) error {
	fromBal := m.balance(from)
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	fromBal.Sub(fromBal, amount)
	toBal := m.balance(to)
	toBal.Add(toBal, amount)
	return nil
}
