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

// ReleasePoint maps a lockup duration to its release ratio. The ratio is a
// fixed-point integer scaled by the ratio precision; it may exceed 1.0 to
// model bonus multipliers. Durations are exact lookup keys, there is no
// interpolation between configured points.
type ReleasePoint struct {
	ID       uint          `gorm:"primarykey"`
	Duration uint64        `gorm:"uniqueIndex"`
	Ratio    types.BigInt  `gorm:"type:text"`
	AddedAt  int64
}

func (ReleasePoint) TableName() string {
	return "release_point"
}
