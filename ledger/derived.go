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
	"math/big"
)

// DerivedBalanceOf returns the user's derived token balance
func (ls *LedgerState) DerivedBalanceOf(user string) (*big.Int, error) {
	ls.mutex.Lock()
	defer ls.mutex.Unlock()
	return ls.db.Metadata().GetDerivedBalance(user, nil)
}

// DerivedSupply returns the total derived token supply
func (ls *LedgerState) DerivedSupply() (*big.Int, error) {
	ls.mutex.Lock()
	defer ls.mutex.Unlock()
	return ls.derivedSupply(nil)
}

// DerivedDecimals returns the decimal precision of the derived token
func (ls *LedgerState) DerivedDecimals() uint {
	return ls.derivedDecimals
}

// TransferDerived always fails. Derived balance exists only as a claim
// on locked funds and cannot move between accounts
func (ls *LedgerState) TransferDerived(
	from string,
	to string,
	amount *big.Int,
) error {
	ls.countOpError("transfer_derived")
	return ErrNotTransferable
}

// ApproveDerived always fails for the same reason as TransferDerived
func (ls *LedgerState) ApproveDerived(
	owner string,
	spender string,
	amount *big.Int,
) error {
	ls.countOpError("approve_derived")
	return ErrNotTransferable
}
