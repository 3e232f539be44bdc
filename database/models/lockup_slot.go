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

// LockupSlot is one lock record belonging to a single user, addressed by a
// per-user sequential index. Slots are append-only; the only mutation ever
// applied is the one-way withdrawn flag transition at unlock.
type LockupSlot struct {
	ID             uint         `gorm:"primarykey"`
	User           string       `gorm:"index:idx_slot_user_index,unique,priority:1"`
	SlotIndex      uint64       `gorm:"index:idx_slot_user_index,unique,priority:2"`
	AmountLocked   types.BigInt `gorm:"type:text"`
	AmountReleased types.BigInt `gorm:"type:text"`
	FromTimestamp  int64
	ToTimestamp    int64
	Withdrawn      bool `gorm:"index"`
}

func (LockupSlot) TableName() string {
	return "lockup_slot"
}

// Matured returns true once the slot is eligible for unlock at the given time
func (s *LockupSlot) Matured(now int64) bool {
	return now >= s.ToTimestamp
}

// SlotCounter tracks the next slot index for a user. The counter only ever
// increments, which keeps per-user slot indices dense and never reused.
type SlotCounter struct {
	ID        uint   `gorm:"primarykey"`
	User      string `gorm:"uniqueIndex"`
	NextIndex uint64
}

func (SlotCounter) TableName() string {
	return "slot_counter"
}
