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
	"github.com/tenure-io/tenure/event"
)

const (
	LockEventType            event.EventType = "ledger.locked"
	UnlockEventType          event.EventType = "ledger.unlocked"
	ReleasePointSetEventType event.EventType = "ledger.release_point_set"
	SuspendEventType         event.EventType = "ledger.suspended"
	ResumeEventType          event.EventType = "ledger.resumed"
)

// LockEvent records a completed lock operation
type LockEvent struct {
	User           string `json:"user"`
	SlotIndex      uint64 `json:"slotIndex"`
	AmountLocked   string `json:"amountLocked"`
	AmountReleased string `json:"amountReleased"`
	DerivedMinted  string `json:"derivedMinted"`
	Duration       uint64 `json:"duration"`
	FromTimestamp  int64  `json:"fromTimestamp"`
	ToTimestamp    int64  `json:"toTimestamp"`
}

// UnlockEvent records a completed unlock operation
type UnlockEvent struct {
	User           string `json:"user"`
	SlotIndex      uint64 `json:"slotIndex"`
	AmountLocked   string `json:"amountLocked"`
	AmountReleased string `json:"amountReleased"`
	DerivedBurned  string `json:"derivedBurned"`
}

// ReleasePointSetEvent records a release schedule change
type ReleasePointSetEvent struct {
	Duration uint64 `json:"duration"`
	Ratio    string `json:"ratio"`
	Forced   bool   `json:"forced"`
}

// SuspendEvent records a change to the suspension gate
type SuspendEvent struct {
	Suspended bool `json:"suspended"`
}
