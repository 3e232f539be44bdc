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

// GetLockupSlot gets a single slot by user and index. Returns nil when no
// such slot exists
func (d *MetadataStoreSqlite) GetLockupSlot(
	user string,
	slotIndex uint64,
	txn *gorm.DB,
) (*models.LockupSlot, error) {
	ret := &models.LockupSlot{}
	if txn == nil {
		txn = d.DB()
	}
	result := txn.Where("user = ? AND slot_index = ?", user, slotIndex).
		First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// GetLockupSlots lists all slots belonging to a user ordered by slot index
func (d *MetadataStoreSqlite) GetLockupSlots(
	user string,
	txn *gorm.DB,
) ([]models.LockupSlot, error) {
	var ret []models.LockupSlot
	if txn == nil {
		txn = d.DB()
	}
	result := txn.Where("user = ?", user).Order("slot_index").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// GetActiveLockupSlots lists all slots that have not been withdrawn, across
// all users. Used by the startup consistency audit
func (d *MetadataStoreSqlite) GetActiveLockupSlots(
	txn *gorm.DB,
) ([]models.LockupSlot, error) {
	var ret []models.LockupSlot
	if txn == nil {
		txn = d.DB()
	}
	result := txn.Where("withdrawn = ?", false).Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// AddLockupSlot appends a new slot record
func (d *MetadataStoreSqlite) AddLockupSlot(
	slot *models.LockupSlot,
	txn *gorm.DB,
) error {
	db := d.DB()
	if txn != nil {
		db = txn
	}
	if result := db.Create(slot); result.Error != nil {
		return fmt.Errorf("failed to add lockup slot: %w", result.Error)
	}
	return nil
}

// SetLockupSlotWithdrawn marks a slot withdrawn. This is the only mutation
// ever applied to a slot record
func (d *MetadataStoreSqlite) SetLockupSlotWithdrawn(
	user string,
	slotIndex uint64,
	txn *gorm.DB,
) error {
	db := d.DB()
	if txn != nil {
		db = txn
	}
	result := db.Model(&models.LockupSlot{}).
		Where("user = ? AND slot_index = ?", user, slotIndex).
		Update("withdrawn", true)
	if result.Error != nil {
		return fmt.Errorf(
			"failed to mark lockup slot withdrawn: %w",
			result.Error,
		)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetSlotCounter returns the next slot index for a user. Users without any
// locks have a counter of zero
func (d *MetadataStoreSqlite) GetSlotCounter(
	user string,
	txn *gorm.DB,
) (uint64, error) {
	var tmpCounter models.SlotCounter
	if txn == nil {
		txn = d.DB()
	}
	result := txn.Where("user = ?", user).First(&tmpCounter)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, result.Error
	}
	return tmpCounter.NextIndex, nil
}

// SetSlotCounter stores the next slot index for a user
func (d *MetadataStoreSqlite) SetSlotCounter(
	user string,
	nextIndex uint64,
	txn *gorm.DB,
) error {
	db := d.DB()
	if txn != nil {
		db = txn
	}
	tmpCounter := models.SlotCounter{
		User:      user,
		NextIndex: nextIndex,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user"}},
		DoUpdates: clause.AssignmentColumns([]string{"next_index"}),
	}).Create(&tmpCounter)
	if result.Error != nil {
		return fmt.Errorf("failed to set slot counter: %w", result.Error)
	}
	return nil
}
