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
	"sync"
	"time"
)

// Clock provides the current time for maturity checks and slot
// timestamps. Injecting it keeps time-dependent behavior testable
type Clock interface {
	Now() int64
}

// WallClock reads the system time in seconds
type WallClock struct{}

func (WallClock) Now() int64 {
	return time.Now().Unix()
}

// ManualClock is a clock that only moves when told to
type ManualClock struct {
	sync.Mutex
	now int64
}

func NewManualClock(now int64) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() int64 {
	c.Lock()
	defer c.Unlock()
	return c.now
}

// Set moves the clock to the given time
func (c *ManualClock) Set(now int64) {
	c.Lock()
	defer c.Unlock()
	c.now = now
}

// Advance moves the clock forward by the given number of seconds
func (c *ManualClock) Advance(seconds int64) {
	c.Lock()
	defer c.Unlock()
	c.now += seconds
}
