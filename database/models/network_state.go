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

package models

// Well-known NetworkState keys
const (
	NetworkStateKeySuspended     = "suspended"
	NetworkStateKeyPoolBalance   = "pool_balance"
	NetworkStateKeyDerivedSupply = "derived_supply"
)

// NetworkState holds individual ledger-wide scalar values as key/value pairs.
// The pool balance and derived supply entries are stored redundantly with the
// slot records and are audited against them at startup.
type NetworkState struct {
	ID    uint   `gorm:"primarykey"`
	Key   string `gorm:"uniqueIndex"`
	Value string
}

func (NetworkState) TableName() string {
	return "network_state"
}
