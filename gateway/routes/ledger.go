package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"stablestake/gateway/middleware"
	"stablestake/integrations/exports"
	"stablestake/storage/journal"
)

var errNoCaller = errors.New("caller not authenticated")

func caller(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	addr, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, errNoCaller)
	}
	return addr, ok
}

func (h *handlers) getConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.ledger.Config()
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newConfigView(cfg))
}

func (h *handlers) listDepositTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.ledger.DepositTypes()
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	out := make([]depositTypeView, 0, len(types))
	for _, dt := range types {
		out = append(out, newDepositTypeView(dt))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) getDepositType(w http.ResponseWriter, r *http.Request) {
	id, err := parseUint("id", chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	dt, err := h.ledger.DepositType(id)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newDepositTypeView(dt))
}

func (h *handlers) previewFeeSplit(w http.ResponseWriter, r *http.Request) {
	amount, err := requireAmount("amount", r.URL.Query().Get("amount"))
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	fee, investment, err := h.ledger.SplitDepositFee(amount)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"amount":     amount.String(),
		"fee":        fee.String(),
		"investment": investment.String(),
	})
}

func (h *handlers) getAccount(w http.ResponseWriter, r *http.Request) {
	account, err := parseAddress("address", chi.URLParam(r, "address"))
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	summary, err := h.ledger.AccountSummary(account)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAccountView(summary))
}

func (h *handlers) getBalance(w http.ResponseWriter, r *http.Request) {
	account, err := parseAddress("address", chi.URLParam(r, "address"))
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	balance, err := h.ledger.TokenBalance(account)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"address": account.Hex(), "balance": amountString(balance)})
}

func (h *handlers) listEvents(w http.ResponseWriter, r *http.Request) {
	records, ok := h.queryEvents(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// exportEvents renders the filtered journal as CSV or JSON Lines with the
// payload checksum in X-Checksum.
func (h *handlers) exportEvents(w http.ResponseWriter, r *http.Request) {
	var (
		render      func([]journal.Record) ([]byte, string, error)
		contentType string
	)
	switch format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format"))); format {
	case "", "csv":
		render, contentType = exports.EventsCSV, "text/csv"
	case "jsonl":
		render, contentType = exports.EventsJSONL, "application/x-ndjson"
	default:
		writeBadRequest(w, fmt.Errorf("unsupported export format %q", format))
		return
	}
	records, ok := h.queryEvents(w, r)
	if !ok {
		return
	}
	data, sum, err := render(records)
	if err != nil {
		h.logger.Error("export events failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, errors.New("export events failed"))
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Checksum", sum)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *handlers) queryEvents(w http.ResponseWriter, r *http.Request) ([]journal.Record, bool) {
	if h.events == nil {
		writeJSONError(w, http.StatusServiceUnavailable, errors.New("event journal disabled"))
		return nil, false
	}
	query := r.URL.Query()
	filter := journal.Filter{Type: strings.TrimSpace(query.Get("type"))}
	if raw := strings.TrimSpace(query.Get("account")); raw != "" {
		account, err := parseAddress("account", raw)
		if err != nil {
			writeBadRequest(w, err)
			return nil, false
		}
		filter.Account = account.Hex()
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := parseUint("limit", raw)
		if err != nil {
			writeBadRequest(w, err)
			return nil, false
		}
		filter.Limit = int(min(limit, 1000))
	}
	records, err := h.events.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list events failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, errors.New("list events failed"))
		return nil, false
	}
	return records, true
}

type createDepositRequest struct {
	DepositType uint64 `json:"depositType"`
	Amount      string `json:"amount"`
}

func (h *handlers) createDeposit(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r)
	if !ok {
		return
	}
	var req createDepositRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	amount, err := requireAmount("amount", req.Amount)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	index, err := h.ledger.CreateDeposit(from, req.DepositType, amount)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"index": index, "amount": amount.String()})
}

func (h *handlers) cashoutDeposit(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r)
	if !ok {
		return
	}
	index, err := parseUint("index", chi.URLParam(r, "index"))
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	payout, err := h.ledger.CashoutDeposit(from, index)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payoutView{Payout: amountString(payout)})
}

func (h *handlers) claimInterest(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r)
	if !ok {
		return
	}
	payout, err := h.ledger.ClaimInterest(from)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payoutView{Payout: amountString(payout)})
}

type amountRequest struct {
	Amount string `json:"amount"`
}

func (h *handlers) claimAffiliate(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r)
	if !ok {
		return
	}
	var req amountRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	payout, err := h.ledger.ClaimAffiliateInterest(from, amount)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payoutView{Payout: amountString(payout)})
}

func (h *handlers) fundFromFaucet(w http.ResponseWriter, r *http.Request) {
	to, ok := caller(w, r)
	if !ok {
		return
	}
	release, err := h.quota.reserve(to, h.faucet)
	if err != nil {
		writeJSONError(w, http.StatusTooManyRequests, err)
		return
	}
	if err := h.ledger.Faucet(to, h.faucet); err != nil {
		release()
		h.writeLedgerError(w, r, err)
		return
	}
	balance, err := h.ledger.TokenBalance(to)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"address": to.Hex(),
		"amount":  h.faucet.String(),
		"balance": amountString(balance),
	})
}
