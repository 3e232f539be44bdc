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

package sqlite

import (
	"errors"
	"fmt"

	"github.com/tenure-io/tenure/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetNetworkState returns a ledger-wide scalar value by key. The boolean
// indicates whether the key was present
func (d *MetadataStoreSqlite) GetNetworkState(
	key string,
	txn *gorm.DB,
) (string, bool, error) {
	var tmpState models.NetworkState
	if txn == nil {
		txn = d.DB()
	}
	result := txn.Where("key = ?", key).First(&tmpState)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, result.Error
	}
	return tmpState.Value, true, nil
}

// SetNetworkState stores a ledger-wide scalar value by key
func (d *MetadataStoreSqlite) SetNetworkState(
	key string,
	value string,
	txn *gorm.DB,
) error {
	db := d.DB()
	if txn != nil {
		db = txn
	}
	tmpState := models.NetworkState{
		Key:   key,
		Value: value,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&tmpState)
	if result.Error != nil {
		return fmt.Errorf("failed to set network state: %w", result.Error)
	}
	return nil
}
