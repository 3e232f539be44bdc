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

package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math/big"
)

// BigInt is a database-friendly wrapper around big.Int. Values are stored
// as decimal strings so that asset quantities beyond uint64 range survive
// round trips through the metadata store.
//
//nolint:recvcheck
type BigInt struct {
	*big.Int
}

// NewBigInt wraps a copy of an existing big.Int value. A nil input is
// treated as zero.
func NewBigInt(v *big.Int) BigInt {
	if v == nil {
		return BigInt{Int: new(big.Int)}
	}
	return BigInt{Int: new(big.Int).Set(v)}
}

// NewBigIntFromInt64 creates a BigInt from an int64 value.
func NewBigIntFromInt64(v int64) BigInt {
	return BigInt{Int: big.NewInt(v)}
}

// ToBig returns a copy of the wrapped big.Int. A zero-value BigInt yields
// a zero big.Int rather than nil.
func (b BigInt) ToBig() *big.Int {
	if b.Int == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(b.Int)
}

func (b BigInt) Value() (driver.Value, error) {
	if b.Int == nil {
		return "0", nil
	}
	return b.String(), nil
}

func (b *BigInt) Scan(val any) error {
	if b.Int == nil {
		b.Int = new(big.Int)
	}
	var s string
	switch v := val.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case int64:
		b.SetInt64(v)
		return nil
	default:
		return fmt.Errorf(
			"value was not expected type, wanted string, got %T",
			val,
		)
	}
	if _, ok := b.SetString(s, 10); !ok {
		return fmt.Errorf("failed to set big.Int value from string: %s", s)
	}
	return nil
}

// Txn represents a transaction handle for an underlying store
type Txn interface {
	Commit() error
	Rollback() error
}

// ErrJournalKeyNotFound is returned by journal operations when a key is missing
var ErrJournalKeyNotFound = errors.New("journal key not found")

// ErrTxnWrongType is returned when a transaction has the wrong type
var ErrTxnWrongType = errors.New("invalid transaction type")

// ErrNilTxn is returned when a nil transaction is provided where a valid transaction is required
var ErrNilTxn = errors.New("nil transaction")

// ErrNoStoreAvailable is returned when no metadata or journal store is available
var ErrNoStoreAvailable = errors.New("no store available")

// ErrJournalStoreUnavailable is returned when the journal store cannot be accessed
var ErrJournalStoreUnavailable = errors.New("journal store unavailable")
