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
	"math/big"

	"github.com/tenure-io/tenure/database/models"
	"github.com/tenure-io/tenure/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetReleasePoint gets the release point for an exact duration. Returns nil
// when the duration has not been configured
func (d *MetadataStoreSqlite) GetReleasePoint(
	duration uint64,
	txn *gorm.DB,
) (*models.ReleasePoint, error) {
	ret := &models.ReleasePoint{}
	if txn == nil {
		txn = d.DB()
	}
	result := txn.Where("duration = ?", duration).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// GetReleasePoints lists all configured release points ordered by duration
func (d *MetadataStoreSqlite) GetReleasePoints(
	txn *gorm.DB,
) ([]models.ReleasePoint, error) {
	var ret []models.ReleasePoint
	if txn == nil {
		txn = d.DB()
	}
	result := txn.Order("duration").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetReleasePoint inserts or overwrites the release point for a duration
func (d *MetadataStoreSqlite) SetReleasePoint(
	duration uint64,
	ratio *big.Int,
	addedAt int64,
	txn *gorm.DB,
) error {
	db := d.DB()
	if txn != nil {
		db = txn
	}
	tmpPoint := models.ReleasePoint{
		Duration: duration,
		Ratio:    types.NewBigInt(ratio),
		AddedAt:  addedAt,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "duration"}},
		DoUpdates: clause.AssignmentColumns([]string{"ratio", "added_at"}),
	}).Create(&tmpPoint)
	if result.Error != nil {
		return fmt.Errorf("failed to set release point: %w", result.Error)
	}
	return nil
}
