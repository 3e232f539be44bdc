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

import (
	"github.com/tenure-io/tenure/database/types"
)

// DerivedBalance holds a user's non-transferable derived balance in raw
// derived-asset units. Balances only change through lock (mint) and unlock
// (burn); there are no transfer or allowance paths.
type DerivedBalance struct {
	ID     uint         `gorm:"primarykey"`
	User   string       `gorm:"uniqueIndex"`
	Amount types.BigInt `gorm:"type:text"`
}

func (DerivedBalance) TableName() string {
	return "derived_balance"
}
