package model

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/babylonchain/staking-hub-service/internal/ledger"
)

const (
	HubConfigCollection     = "hub_config"
	HubParametersCollection = "hub_parameters"
	LedgerStateCollection   = "ledger_state"
	CurrentBatchCollection  = "current_batch"
	UnbondHistoryCollection = "unbond_history"
	UnbondWaitCollection    = "unbond_wait_list"
	GuardiansCollection     = "guardians"
	PendingBurnCollection   = "pending_burns"

	// SingletonID is the _id of the only document of a singleton collection.
	SingletonID = "singleton"
)

// Amounts and rates are stored as decimal strings so that no precision is
// lost to BSON number types.

type HubConfigDocument struct {
	ID                 string `bson:"_id"`
	Owner              string `bson:"owner"`
	RewardsDispatcher  string `bson:"rewards_dispatcher"`
	ValidatorsRegistry string `bson:"validators_registry"`
	TokenContract      string `bson:"token_contract"`
}

func NewHubConfigDocument(cfg *ledger.HubConfig) *HubConfigDocument {
	return &HubConfigDocument{
		ID:                 SingletonID,
		Owner:              cfg.Owner,
		RewardsDispatcher:  cfg.RewardsDispatcher,
		ValidatorsRegistry: cfg.ValidatorsRegistry,
		TokenContract:      cfg.TokenContract,
	}
}

func (d *HubConfigDocument) ToLedger() *ledger.HubConfig {
	return &ledger.HubConfig{
		Owner:              d.Owner,
		RewardsDispatcher:  d.RewardsDispatcher,
		ValidatorsRegistry: d.ValidatorsRegistry,
		TokenContract:      d.TokenContract,
	}
}

type HubParametersDocument struct {
	ID              string `bson:"_id"`
	EpochPeriod     int64  `bson:"epoch_period"`
	UnbondingPeriod int64  `bson:"unbonding_period"`
	UnderlyingDenom string `bson:"underlying_denom"`
	Paused          bool   `bson:"paused"`
}

func NewHubParametersDocument(p *ledger.Parameters) *HubParametersDocument {
	return &HubParametersDocument{
		ID:              SingletonID,
		EpochPeriod:     int64(p.EpochPeriod),
		UnbondingPeriod: int64(p.UnbondingPeriod),
		UnderlyingDenom: p.UnderlyingDenom,
		Paused:          p.Paused,
	}
}

func (d *HubParametersDocument) ToLedger() *ledger.Parameters {
	return &ledger.Parameters{
		EpochPeriod:     uint64(d.EpochPeriod),
		UnbondingPeriod: uint64(d.UnbondingPeriod),
		UnderlyingDenom: d.UnderlyingDenom,
		Paused:          d.Paused,
	}
}

type LedgerStateDocument struct {
	ID                 string                 `bson:"_id"`
	ExchangeRate       string                 `bson:"exchange_rate"`
	TotalBonded        string                 `bson:"total_bonded"`
	PrevNativeBalance  string                 `bson:"prev_native_balance"`
	LastUnbondedTime   int64                  `bson:"last_unbonded_time"`
	LastProcessedBatch int64                  `bson:"last_processed_batch"`
	Pending            PendingEffectsDocument `bson:"pending"`
}

// PendingEffectsDocument holds the totals of emitted, unconfirmed
// instructions. Empty fields read as zero.
type PendingEffectsDocument struct {
	Delegated   string `bson:"delegated,omitempty"`
	Undelegated string `bson:"undelegated,omitempty"`
	Minted      string `bson:"minted,omitempty"`
	Burned      string `bson:"burned,omitempty"`
	Sent        string `bson:"sent,omitempty"`
}

func newPendingEffectsDocument(p ledger.PendingEffects) PendingEffectsDocument {
	str := func(i sdkmath.Int) string {
		if i.IsNil() {
			return ""
		}
		return i.String()
	}
	return PendingEffectsDocument{
		Delegated:   str(p.Delegated),
		Undelegated: str(p.Undelegated),
		Minted:      str(p.Minted),
		Burned:      str(p.Burned),
		Sent:        str(p.Sent),
	}
}

func (d PendingEffectsDocument) toLedger() (ledger.PendingEffects, error) {
	p := ledger.NewPendingEffects()
	for _, f := range []struct {
		raw string
		out *sdkmath.Int
	}{
		{d.Delegated, &p.Delegated},
		{d.Undelegated, &p.Undelegated},
		{d.Minted, &p.Minted},
		{d.Burned, &p.Burned},
		{d.Sent, &p.Sent},
	} {
		if f.raw == "" {
			continue
		}
		amount, err := parseInt(f.raw)
		if err != nil {
			return p, err
		}
		*f.out = amount
	}
	return p, nil
}

func NewLedgerStateDocument(s *ledger.State) *LedgerStateDocument {
	return &LedgerStateDocument{
		ID:                 SingletonID,
		ExchangeRate:       s.ExchangeRate.String(),
		TotalBonded:        s.TotalBonded.String(),
		PrevNativeBalance:  s.PrevNativeBalance.String(),
		LastUnbondedTime:   int64(s.LastUnbondedTime),
		LastProcessedBatch: int64(s.LastProcessedBatch),
		Pending:            newPendingEffectsDocument(s.Pending),
	}
}

func (d *LedgerStateDocument) ToLedger() (*ledger.State, error) {
	rate, err := sdkmath.LegacyNewDecFromStr(d.ExchangeRate)
	if err != nil {
		return nil, fmt.Errorf("invalid exchange rate %q: %w", d.ExchangeRate, err)
	}
	bonded, err := parseInt(d.TotalBonded)
	if err != nil {
		return nil, err
	}
	prev, err := parseInt(d.PrevNativeBalance)
	if err != nil {
		return nil, err
	}
	pending, err := d.Pending.toLedger()
	if err != nil {
		return nil, err
	}
	return &ledger.State{
		ExchangeRate:       rate,
		TotalBonded:        bonded,
		TotalIssued:        sdkmath.ZeroInt(),
		PrevNativeBalance:  prev,
		LastUnbondedTime:   uint64(d.LastUnbondedTime),
		LastProcessedBatch: uint64(d.LastProcessedBatch),
		Pending:            pending,
	}, nil
}

type CurrentBatchDocument struct {
	ID              string `bson:"_id"`
	BatchID         int64  `bson:"batch_id"`
	RequestedAmount string `bson:"requested_amount"`
}

func NewCurrentBatchDocument(b *ledger.CurrentBatch) *CurrentBatchDocument {
	return &CurrentBatchDocument{
		ID:              SingletonID,
		BatchID:         int64(b.ID),
		RequestedAmount: b.RequestedAmount.String(),
	}
}

func (d *CurrentBatchDocument) ToLedger() (*ledger.CurrentBatch, error) {
	requested, err := parseInt(d.RequestedAmount)
	if err != nil {
		return nil, err
	}
	return &ledger.CurrentBatch{ID: uint64(d.BatchID), RequestedAmount: requested}, nil
}

type UnbondHistoryDocument struct {
	BatchID             int64  `bson:"_id"`
	Time                int64  `bson:"time"`
	Amount              string `bson:"amount"`
	AppliedExchangeRate string `bson:"applied_exchange_rate"`
	WithdrawRate        string `bson:"withdraw_rate"`
	Released            bool   `bson:"released"`
}

func NewUnbondHistoryDocument(h *ledger.UnbondHistory) *UnbondHistoryDocument {
	withdrawRate := sdkmath.LegacyZeroDec()
	if !h.WithdrawRate.IsNil() {
		withdrawRate = h.WithdrawRate
	}
	return &UnbondHistoryDocument{
		BatchID:             int64(h.BatchID),
		Time:                int64(h.Time),
		Amount:              h.Amount.String(),
		AppliedExchangeRate: h.AppliedExchangeRate.String(),
		WithdrawRate:        withdrawRate.String(),
		Released:            h.Released,
	}
}

func (d *UnbondHistoryDocument) ToLedger() (*ledger.UnbondHistory, error) {
	amount, err := parseInt(d.Amount)
	if err != nil {
		return nil, err
	}
	applied, err := sdkmath.LegacyNewDecFromStr(d.AppliedExchangeRate)
	if err != nil {
		return nil, fmt.Errorf("invalid applied exchange rate %q: %w", d.AppliedExchangeRate, err)
	}
	withdraw, err := sdkmath.LegacyNewDecFromStr(d.WithdrawRate)
	if err != nil {
		return nil, fmt.Errorf("invalid withdraw rate %q: %w", d.WithdrawRate, err)
	}
	return &ledger.UnbondHistory{
		BatchID:             uint64(d.BatchID),
		Time:                uint64(d.Time),
		Amount:              amount,
		AppliedExchangeRate: applied,
		WithdrawRate:        withdraw,
		Released:            d.Released,
	}, nil
}

type UnbondWaitDocument struct {
	ID      string `bson:"_id"`
	BatchID int64  `bson:"batch_id"`
	Address string `bson:"address"`
	Amount  string `bson:"amount"`
}

func UnbondWaitID(batchID uint64, address string) string {
	return fmt.Sprintf("%d:%s", batchID, address)
}

func NewUnbondWaitDocument(batchID uint64, address string, amount sdkmath.Int) *UnbondWaitDocument {
	return &UnbondWaitDocument{
		ID:      UnbondWaitID(batchID, address),
		BatchID: int64(batchID),
		Address: address,
		Amount:  amount.String(),
	}
}

type GuardianDocument struct {
	Address string `bson:"_id"`
}

// PendingBurnDocument is the amount of an owner's tokens queued for burning
// that the token contract has not confirmed yet.
type PendingBurnDocument struct {
	Address string `bson:"_id"`
	Amount  string `bson:"amount"`
}

func parseInt(s string) (sdkmath.Int, error) {
	i, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return sdkmath.ZeroInt(), fmt.Errorf("invalid integer amount %q", s)
	}
	return i, nil
}

// ParseAmount parses a stored decimal integer string.
func ParseAmount(s string) (sdkmath.Int, error) {
	return parseInt(s)
}
