package routes

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"stablestake/native/stablestake"
)

type depositTypeRequest struct {
	DepositType    uint64 `json:"depositType"`
	LockPeriod     uint64 `json:"lockPeriod"`
	MinimalDeposit string `json:"minimalDeposit"`
	Multiplier     uint64 `json:"multiplier"`
	RewardInterval uint64 `json:"rewardInterval"`
}

type addressRequest struct {
	Address string `json:"address"`
}

type blacklistRequest struct {
	Account     string `json:"account"`
	Blacklisted bool   `json:"blacklisted"`
}

type pauseRequest struct {
	Paused bool `json:"paused"`
}

type airdropRequest struct {
	Account     string `json:"account"`
	DepositType uint64 `json:"depositType"`
	Amount      string `json:"amount"`
}

type withdrawRequest struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

func (h *handlers) updateDepositType(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r)
	if !ok {
		return
	}
	var req depositTypeRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	minimal, err := requireAmount("minimalDeposit", req.MinimalDeposit)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	dt := stablestake.DepositType{
		ID:             req.DepositType,
		LockPeriod:     req.LockPeriod,
		MinimalDeposit: minimal,
		Multiplier:     req.Multiplier,
		RewardInterval: req.RewardInterval,
	}
	if err := h.ledger.UpdateDepositType(from, dt); err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newDepositTypeView(&dt))
}

func (h *handlers) setCreateDepositFee(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r)
	if !ok {
		return
	}
	var req struct {
		Fee uint64 `json:"fee"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := h.ledger.SetCreateDepositFee(from, req.Fee); err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) setAffiliateVestingPeriod(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r)
	if !ok {
		return
	}
	var req struct {
		Seconds uint64 `json:"seconds"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := h.ledger.SetAffiliateVestingPeriod(from, req.Seconds); err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) setInvestmentWallet(w http.ResponseWriter, r *http.Request) {
	h.addressSetter(w, r, h.ledger.SetInvestmentWallet)
}

func (h *handlers) setFeesWallet(w http.ResponseWriter, r *http.Request) {
	h.addressSetter(w, r, h.ledger.SetFeesWallet)
}

func (h *handlers) setSupportedToken(w http.ResponseWriter, r *http.Request) {
	h.addressSetter(w, r, h.ledger.SetSupportedToken)
}

func (h *handlers) transferOwnership(w http.ResponseWriter, r *http.Request) {
	h.addressSetter(w, r, h.ledger.TransferOwnership)
}

func (h *handlers) addressSetter(w http.ResponseWriter, r *http.Request, set func(caller, addr common.Address) error) {
	from, ok := caller(w, r)
	if !ok {
		return
	}
	var req addressRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	addr, err := parseAddress("address", req.Address)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := set(from, addr); err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) blacklist(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r)
	if !ok {
		return
	}
	var req blacklistRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	account, err := parseAddress("account", req.Account)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := h.ledger.Blacklist(from, account, req.Blacklisted); err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) pauseDeposits(w http.ResponseWriter, r *http.Request) {
	h.pauseSetter(w, r, h.ledger.PauseDepositCreation)
}

func (h *handlers) pauseCashouts(w http.ResponseWriter, r *http.Request) {
	h.pauseSetter(w, r, h.ledger.PauseCashout)
}

func (h *handlers) pauseSetter(w http.ResponseWriter, r *http.Request, set func(caller common.Address, paused bool) error) {
	from, ok := caller(w, r)
	if !ok {
		return
	}
	var req pauseRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := set(from, req.Paused); err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) airdropDeposit(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r)
	if !ok {
		return
	}
	var req airdropRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	account, err := parseAddress("account", req.Account)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	amount, err := requireAmount("amount", req.Amount)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	index, err := h.ledger.AirdropDeposit(from, account, req.DepositType, amount)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"account": account.Hex(), "index": index})
}

func (h *handlers) airdropAffiliate(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r)
	if !ok {
		return
	}
	var req struct {
		Account string `json:"account"`
		Amount  string `json:"amount"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	account, err := parseAddress("account", req.Account)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	amount, err := requireAmount("amount", req.Amount)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := h.ledger.AirdropAffiliateInterest(from, account, amount); err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) cashoutAll(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r)
	if !ok {
		return
	}
	account, err := parseAddress("address", chi.URLParam(r, "address"))
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	payout, err := h.ledger.CashoutAllDeposits(from, account)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payoutView{Payout: amountString(payout)})
}

func (h *handlers) updateDepositSize(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r)
	if !ok {
		return
	}
	account, err := parseAddress("address", chi.URLParam(r, "address"))
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	index, err := parseUint("index", chi.URLParam(r, "index"))
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	var req struct {
		Size string `json:"size"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	size, err := requireAmount("size", req.Size)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := h.ledger.UpdateDepositSize(from, account, index, size); err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) withdraw(w http.ResponseWriter, r *http.Request) {
	from, ok := caller(w, r)
	if !ok {
		return
	}
	var req withdrawRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	token, err := parseAddress("token", req.Token)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	amount, err := requireAmount("amount", req.Amount)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := h.ledger.WithdrawERC20(from, token, amount); err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
