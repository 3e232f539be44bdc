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

// GetDerivedBalance returns a user's derived balance in raw derived units.
// Users with no balance record hold zero
func (d *MetadataStoreSqlite) GetDerivedBalance(
	user string,
	txn *gorm.DB,
) (*big.Int, error) {
	var tmpBalance models.DerivedBalance
	if txn == nil {
		txn = d.DB()
	}
	result := txn.Where("user = ?", user).First(&tmpBalance)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return new(big.Int), nil
		}
		return nil, result.Error
	}
	return tmpBalance.Amount.ToBig(), nil
}

// GetDerivedBalances lists all derived balance records. Used by the startup
// consistency audit
func (d *MetadataStoreSqlite) GetDerivedBalances(
	txn *gorm.DB,
) ([]models.DerivedBalance, error) {
	var ret []models.DerivedBalance
	if txn == nil {
		txn = d.DB()
	}
	result := txn.Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetDerivedBalance stores a user's derived balance
func (d *MetadataStoreSqlite) SetDerivedBalance(
	user string,
	amount *big.Int,
	txn *gorm.DB,
) error {
	db := d.DB()
	if txn != nil {
		db = txn
	}
	tmpBalance := models.DerivedBalance{
		User:   user,
		Amount: types.NewBigInt(amount),
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount"}),
	}).Create(&tmpBalance)
	if result.Error != nil {
		return fmt.Errorf("failed to set derived balance: %w", result.Error)
	}
	return nil
}
