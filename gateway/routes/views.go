package routes

import (
	"stablestake/native/stablestake"
)

// JSON views render token amounts as base-10 strings.

type depositTypeView struct {
	ID             uint64 `json:"depositType"`
	LockPeriod     uint64 `json:"lockPeriod"`
	MinimalDeposit string `json:"minimalDeposit"`
	Multiplier     uint64 `json:"multiplier"`
	RewardInterval uint64 `json:"rewardInterval"`
}

func newDepositTypeView(dt *stablestake.DepositType) depositTypeView {
	return depositTypeView{
		ID:             dt.ID,
		LockPeriod:     dt.LockPeriod,
		MinimalDeposit: amountString(dt.MinimalDeposit),
		Multiplier:     dt.Multiplier,
		RewardInterval: dt.RewardInterval,
	}
}

type depositView struct {
	Index         int    `json:"index"`
	DepositType   uint64 `json:"depositType"`
	Size          string `json:"size"`
	CreatedAt     uint64 `json:"createdAt"`
	LastClaimTime uint64 `json:"lastClaimTime"`
}

type affiliateView struct {
	TotalAllocated string `json:"totalAllocated"`
	Claimed        string `json:"claimed"`
	Claimable      string `json:"claimable"`
	GrantedAt      uint64 `json:"grantedAt"`
	VestingPeriod  uint64 `json:"vestingPeriod"`
}

type accountView struct {
	Address           string         `json:"address"`
	Blacklisted       bool           `json:"blacklisted"`
	DepositedValue    string         `json:"depositedValue"`
	InterestAvailable string         `json:"interestAvailable"`
	LastClaimTimes    []uint64       `json:"lastClaimTimes"`
	NextInterestTimes []uint64       `json:"nextInterestTimes"`
	Deposits          []depositView  `json:"deposits"`
	Affiliate         *affiliateView `json:"affiliate,omitempty"`
	ObservedAt        uint64         `json:"observedAt"`
}

func newAccountView(s *stablestake.AccountSummary) accountView {
	view := accountView{
		Address:           s.Address.Hex(),
		Blacklisted:       s.Blacklisted,
		DepositedValue:    amountString(s.DepositedValue),
		InterestAvailable: amountString(s.InterestAvailable),
		LastClaimTimes:    s.LastClaimTimes,
		NextInterestTimes: s.NextInterestTimes,
		Deposits:          make([]depositView, 0, len(s.Deposits)),
		ObservedAt:        s.ObservedAt,
	}
	for i, d := range s.Deposits {
		view.Deposits = append(view.Deposits, depositView{
			Index:         i,
			DepositType:   d.DepositType,
			Size:          amountString(d.Size),
			CreatedAt:     d.CreatedAt,
			LastClaimTime: d.LastClaimTime,
		})
	}
	if s.Affiliate != nil {
		view.Affiliate = &affiliateView{
			TotalAllocated: amountString(s.Affiliate.TotalAllocated),
			Claimed:        amountString(s.Affiliate.Claimed),
			Claimable:      amountString(s.AffiliateClaimable),
			GrantedAt:      s.Affiliate.GrantedAt,
			VestingPeriod:  s.Affiliate.VestingPeriod,
		}
	}
	return view
}

type configView struct {
	Owner                  string `json:"owner"`
	FeesWallet             string `json:"feesWallet"`
	InvestmentWallet       string `json:"investmentWallet"`
	SupportedToken         string `json:"supportedToken"`
	CreateDepositFee       uint64 `json:"createDepositFee"`
	DepositCreationPaused  bool   `json:"depositCreationPaused"`
	CashoutPaused          bool   `json:"cashoutPaused"`
	AffiliateVestingPeriod uint64 `json:"affiliateVestingPeriod"`
}

func newConfigView(cfg *stablestake.GlobalConfig) configView {
	return configView{
		Owner:                  cfg.Owner.Hex(),
		FeesWallet:             cfg.FeesWallet.Hex(),
		InvestmentWallet:       cfg.InvestmentWallet.Hex(),
		SupportedToken:         cfg.SupportedToken.Hex(),
		CreateDepositFee:       cfg.CreateDepositFee,
		DepositCreationPaused:  cfg.DepositCreationPaused,
		CashoutPaused:          cfg.CashoutPaused,
		AffiliateVestingPeriod: cfg.AffiliateVestingPeriod,
	}
}

type payoutView struct {
	Payout string `json:"payout"`
}
