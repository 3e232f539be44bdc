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

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/tenure-io/tenure/auth"
	"github.com/tenure-io/tenure/internal/version"
	"github.com/tenure-io/tenure/ledger"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

// writeLedgerError maps ledger errors onto HTTP status codes
func (a *Api) writeLedgerError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, auth.ErrNotAuthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, ledger.ErrSlotNotFound),
		errors.Is(err, ledger.ErrUnknownLockupDuration):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrAlreadyConfigured),
		errors.Is(err, ledger.ErrAlreadyWithdrawn):
		status = http.StatusConflict
	case errors.Is(err, ledger.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrInsufficientAllowance),
		errors.Is(err, ledger.ErrInsufficientDerivedBalance),
		errors.Is(err, ledger.ErrPoolInsufficientFunds),
		errors.Is(err, ledger.ErrNotTransferable),
		errors.Is(err, ledger.LockupInProgressError{}):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrSystemSuspended):
		status = http.StatusServiceUnavailable
	default:
		a.logger.Error(
			"internal error handling request",
			"error", err,
		)
		writeError(
			w,
			http.StatusInternalServerError,
			"internal server error",
		)
		return
	}
	writeError(w, status, err.Error())
}

// bearerToken extracts the capability token from the Authorization
// header
func bearerToken(r *http.Request) auth.Token {
	header := r.Header.Get("Authorization")
	token, _ := strings.CutPrefix(header, "Bearer ")
	return auth.Token(token)
}

func decodeRequest(
	w http.ResponseWriter,
	r *http.Request,
	v any,
) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"malformed request body: "+err.Error(),
		)
		return false
	}
	return true
}

func parseAmount(
	w http.ResponseWriter,
	value string,
) (*big.Int, bool) {
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		writeError(
			w,
			http.StatusBadRequest,
			"malformed amount: "+value,
		)
		return nil, false
	}
	return amount, true
}

func (a *Api) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Name:    "tenure",
		Version: version.GetVersionString(),
	})
}

func (a *Api) handleHealth(w http.ResponseWriter, _ *http.Request) {
	suspended, err := a.ledger.Suspended()
	if err != nil {
		a.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		IsHealthy: true,
		Suspended: suspended,
	})
}

func (a *Api) handleLock(w http.ResponseWriter, r *http.Request) {
	var req LockRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.User == "" {
		writeError(w, http.StatusBadRequest, "missing user")
		return
	}
	amount, ok := parseAmount(w, req.Amount)
	if !ok {
		return
	}
	slotIndex, err := a.ledger.Lock(req.User, amount, req.Duration)
	if err != nil {
		a.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, LockResponse{
		SlotIndex: slotIndex,
	})
}

func (a *Api) handleUnlock(w http.ResponseWriter, r *http.Request) {
	var req UnlockRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.User == "" {
		writeError(w, http.StatusBadRequest, "missing user")
		return
	}
	if err := a.ledger.Unlock(req.User, req.SlotIndex); err != nil {
		a.writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *Api) handleReleasePoints(
	w http.ResponseWriter,
	_ *http.Request,
) {
	points, err := a.ledger.ReleasePoints()
	if err != nil {
		a.writeLedgerError(w, err)
		return
	}
	resp := make([]ReleasePointResponse, 0, len(points))
	for _, point := range points {
		resp = append(resp, ReleasePointResponse{
			Duration: point.Duration,
			Ratio:    point.Ratio.String(),
			AddedAt:  point.AddedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *Api) handleReleasePoint(
	w http.ResponseWriter,
	r *http.Request,
) {
	duration, err := strconv.ParseUint(r.PathValue("duration"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed duration")
		return
	}
	ratio, err := a.ledger.ReleaseRatio(duration)
	if err != nil {
		a.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ReleasePointResponse{
		Duration: duration,
		Ratio:    ratio.String(),
	})
}

func (a *Api) handleSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := a.ledger.Slots(r.PathValue("user"))
	if err != nil {
		a.writeLedgerError(w, err)
		return
	}
	resp := make([]SlotResponse, 0, len(slots))
	for _, slot := range slots {
		resp = append(resp, SlotResponse{
			SlotIndex:      slot.SlotIndex,
			AmountLocked:   slot.AmountLocked.String(),
			AmountReleased: slot.AmountReleased.String(),
			FromTimestamp:  slot.FromTimestamp,
			ToTimestamp:    slot.ToTimestamp,
			Withdrawn:      slot.Withdrawn,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *Api) handleSlot(w http.ResponseWriter, r *http.Request) {
	slotIndex, err := strconv.ParseUint(r.PathValue("index"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed slot index")
		return
	}
	slot, err := a.ledger.Slot(r.PathValue("user"), slotIndex)
	if err != nil {
		a.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SlotResponse{
		SlotIndex:      slot.SlotIndex,
		AmountLocked:   slot.AmountLocked.String(),
		AmountReleased: slot.AmountReleased.String(),
		FromTimestamp:  slot.FromTimestamp,
		ToTimestamp:    slot.ToTimestamp,
		Withdrawn:      slot.Withdrawn,
	})
}

func (a *Api) handleDerivedBalance(
	w http.ResponseWriter,
	r *http.Request,
) {
	user := r.PathValue("user")
	balance, err := a.ledger.DerivedBalanceOf(user)
	if err != nil {
		a.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{
		User:    user,
		Balance: balance.String(),
	})
}

func (a *Api) handlePool(w http.ResponseWriter, _ *http.Request) {
	balance, err := a.ledger.PoolBalance()
	if err != nil {
		a.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PoolResponse{
		Account: a.ledger.PoolAccount(),
		Balance: balance.String(),
	})
}

func (a *Api) handleDerivedSupply(
	w http.ResponseWriter,
	_ *http.Request,
) {
	supply, err := a.ledger.DerivedSupply()
	if err != nil {
		a.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SupplyResponse{
		Supply:   supply.String(),
		Decimals: a.ledger.DerivedDecimals(),
	})
}

func (a *Api) handleSetReleasePoint(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req SetReleasePointRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	ratio, ok := parseAmount(w, req.Ratio)
	if !ok {
		return
	}
	err := a.ledger.SetReleasePoint(
		bearerToken(r),
		req.Duration,
		ratio,
		req.Force,
	)
	if err != nil {
		a.writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *Api) handleSuspend(w http.ResponseWriter, r *http.Request) {
	if err := a.ledger.Suspend(bearerToken(r)); err != nil {
		a.writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *Api) handleResume(w http.ResponseWriter, r *http.Request) {
	if err := a.ledger.Resume(bearerToken(r)); err != nil {
		a.writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
