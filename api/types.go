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

package api

// Amounts are carried as decimal strings to avoid JSON number precision
// limits

type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
	Suspended bool `json:"suspended"`
}

type LockRequest struct {
	User     string `json:"user"`
	Amount   string `json:"amount"`
	Duration uint64 `json:"duration"`
}

type LockResponse struct {
	SlotIndex uint64 `json:"slot_index"`
}

type UnlockRequest struct {
	User      string `json:"user"`
	SlotIndex uint64 `json:"slot_index"`
}

type SetReleasePointRequest struct {
	Duration uint64 `json:"duration"`
	Ratio    string `json:"ratio"`
	Force    bool   `json:"force"`
}

type ReleasePointResponse struct {
	Duration uint64 `json:"duration"`
	Ratio    string `json:"ratio"`
	AddedAt  int64  `json:"added_at"`
}

type SlotResponse struct {
	SlotIndex      uint64 `json:"slot_index"`
	AmountLocked   string `json:"amount_locked"`
	AmountReleased string `json:"amount_released"`
	FromTimestamp  int64  `json:"from_timestamp"`
	ToTimestamp    int64  `json:"to_timestamp"`
	Withdrawn      bool   `json:"withdrawn"`
}

type BalanceResponse struct {
	User    string `json:"user"`
	Balance string `json:"balance"`
}

type PoolResponse struct {
	Account string `json:"account"`
	Balance string `json:"balance"`
}

type SupplyResponse struct {
	Supply   string `json:"supply"`
	Decimals uint   `json:"decimals"`
}
