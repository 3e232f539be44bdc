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
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/tenure-io/tenure/auth"
	"github.com/tenure-io/tenure/database"
	"github.com/tenure-io/tenure/database/models"
	"github.com/tenure-io/tenure/event"
)

// SetReleasePoint configures the release ratio for a lockup duration.
// An existing release point is only overwritten when force is set.
// Existing slots keep the ratio they were created with. It requires
// configurator authorization
func (ls *LedgerState) SetReleasePoint(
	token auth.Token,
	duration uint64,
	ratio *big.Int,
	force bool,
) error {
	ls.mutex.Lock()
	defer ls.mutex.Unlock()
	if ls.authorizer != nil {
		if err := ls.authorizer.Authorize(token, auth.RoleConfigurator); err != nil {
			return err
		}
	}
	if duration == 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidAmount)
	}
	if ratio == nil || ratio.Sign() <= 0 {
		return fmt.Errorf("%w: ratio must be positive", ErrInvalidAmount)
	}
	existing, err := ls.db.Metadata().GetReleasePoint(duration, nil)
	if err != nil {
		return err
	}
	if existing != nil && !force {
		return fmt.Errorf(
			"%w: duration %d",
			ErrAlreadyConfigured,
			duration,
		)
	}
	now := ls.clock.Now()
	evt := ReleasePointSetEvent{
		Duration: duration,
		Ratio:    ratio.String(),
		Forced:   existing != nil,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	txn := ls.db.Transaction(true)
	err = txn.Do(func(txn *database.Txn) error {
		if err := ls.db.Metadata().SetReleasePoint(
			duration,
			ratio,
			now,
			txn.Metadata(),
		); err != nil {
			return err
		}
		_, err := ls.db.Journal().Append(
			txn.Journal(),
			string(ReleasePointSetEventType),
			payload,
			now,
		)
		return err
	})
	if err != nil {
		return err
	}
	ls.logger.Info(
		"release point configured",
		"component", "ledger",
		"duration", duration,
		"ratio", ratio.String(),
		"forced", evt.Forced,
	)
	if ls.eventBus != nil {
		ls.eventBus.Publish(
			ReleasePointSetEventType,
			event.NewEvent(ReleasePointSetEventType, evt),
		)
	}
	return nil
}

// ReleaseRatio returns the configured release ratio for the given
// lockup duration
func (ls *LedgerState) ReleaseRatio(duration uint64) (*big.Int, error) {
	ls.mutex.Lock()
	defer ls.mutex.Unlock()
	point, err := ls.db.Metadata().GetReleasePoint(duration, nil)
	if err != nil {
		return nil, err
	}
	if point == nil {
		return nil, fmt.Errorf(
			"%w: duration %d",
			ErrUnknownLockupDuration,
			duration,
		)
	}
	return point.Ratio.ToBig(), nil
}

// ReleasePoints returns all configured release points ordered by
// duration
func (ls *LedgerState) ReleasePoints() ([]models.ReleasePoint, error) {
	ls.mutex.Lock()
	defer ls.mutex.Unlock()
	return ls.db.Metadata().GetReleasePoints(nil)
}
