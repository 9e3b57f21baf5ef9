package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"stablestake/native/stablestake"
)

const requestLimit = 64 << 10

var errBadAddress = errors.New("not a hex account address")

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil && strings.TrimSpace(err.Error()) != "" {
		message = strings.TrimSpace(err.Error())
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSONError(w, http.StatusBadRequest, err)
}

// writeLedgerError maps ledger error kinds onto HTTP status codes.
func (h *handlers) writeLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("ledger operation failed", "path", r.URL.Path, "error", err)
	}
	writeJSONError(w, status, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, stablestake.ErrInvalidAmount),
		errors.Is(err, stablestake.ErrInvalidConfig),
		errors.Is(err, stablestake.ErrInvalidAddress),
		errors.Is(err, stablestake.ErrInvalidDepositType):
		return http.StatusBadRequest
	case errors.Is(err, stablestake.ErrUnauthorized),
		errors.Is(err, stablestake.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, stablestake.ErrDepositNotFound):
		return http.StatusNotFound
	case errors.Is(err, stablestake.ErrStillLocked),
		errors.Is(err, stablestake.ErrInsufficientAllocation):
		return http.StatusConflict
	case errors.Is(err, stablestake.ErrBelowMinimum),
		errors.Is(err, stablestake.ErrTransferFailed),
		errors.Is(err, stablestake.ErrOverflow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, stablestake.ErrUnavailable),
		errors.Is(err, stablestake.ErrNotInitialized):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes a JSON object into dst. An empty body leaves dst
// untouched.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, requestLimit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

// parseAmount reads a base-10 token amount. Empty input yields nil.
func parseAmount(field, raw string) (*big.Int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("%s must be a base-10 integer", field)
	}
	return amount, nil
}

func requireAmount(field, raw string) (*big.Int, error) {
	amount, err := parseAmount(field, raw)
	if err != nil {
		return nil, err
	}
	if amount == nil {
		return nil, fmt.Errorf("%s required", field)
	}
	return amount, nil
}

func parseAddress(field, raw string) (common.Address, error) {
	raw = strings.TrimSpace(raw)
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("%s: %w", field, errBadAddress)
	}
	return common.HexToAddress(raw), nil
}

func parseUint(field, raw string) (uint64, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an unsigned integer", field)
	}
	return value, nil
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
