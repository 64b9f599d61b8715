package ledger

import (
	sdkmath "cosmossdk.io/math"

	"github.com/babylonchain/staking-hub-service/internal/registry"
)

// BondType distinguishes a user deposit from a rewards redeposit.
type BondType int

const (
	BondTypeUser BondType = iota
	BondTypeRewards
)

func (b BondType) String() string {
	if b == BondTypeRewards {
		return "bond_rewards"
	}
	return "bond"
}

// HubConfig holds the addresses of the principals the hub trusts.
type HubConfig struct {
	Owner              string `json:"owner"`
	RewardsDispatcher  string `json:"rewards_dispatcher,omitempty"`
	ValidatorsRegistry string `json:"validators_registry,omitempty"`
	TokenContract      string `json:"token_contract,omitempty"`
}

type Parameters struct {
	EpochPeriod     uint64 `json:"epoch_period"`
	UnbondingPeriod uint64 `json:"unbonding_period"`
	UnderlyingDenom string `json:"underlying_denom"`
	Paused          bool   `json:"paused"`
}

// State is the ledger singleton. TotalIssued is refreshed from the token
// contract on every reconciliation and is never persisted.
//
// The Pending amounts are the effects of emitted instructions the executor
// has not confirmed yet. Until then the chain does not reflect them.
type State struct {
	ExchangeRate       sdkmath.LegacyDec `json:"exchange_rate"`
	TotalBonded        sdkmath.Int       `json:"total_bonded"`
	TotalIssued        sdkmath.Int       `json:"-"`
	PrevNativeBalance  sdkmath.Int       `json:"prev_native_balance"`
	LastUnbondedTime   uint64            `json:"last_unbonded_time"`
	LastProcessedBatch uint64            `json:"last_processed_batch"`
	Pending            PendingEffects    `json:"pending"`
}

// PendingEffects sums the unconfirmed instructions by kind.
type PendingEffects struct {
	Delegated   sdkmath.Int `json:"delegated"`
	Undelegated sdkmath.Int `json:"undelegated"`
	Minted      sdkmath.Int `json:"minted"`
	Burned      sdkmath.Int `json:"burned"`
	Sent        sdkmath.Int `json:"sent"`
}

func NewPendingEffects() PendingEffects {
	return PendingEffects{
		Delegated:   sdkmath.ZeroInt(),
		Undelegated: sdkmath.ZeroInt(),
		Minted:      sdkmath.ZeroInt(),
		Burned:      sdkmath.ZeroInt(),
		Sent:        sdkmath.ZeroInt(),
	}
}

type CurrentBatch struct {
	ID              uint64      `json:"id"`
	RequestedAmount sdkmath.Int `json:"requested_amount"`
}

// UnbondHistory is written once per closed batch. WithdrawRate stays zero
// until Released flips to true, after which the record is frozen.
type UnbondHistory struct {
	BatchID             uint64            `json:"batch_id"`
	Time                uint64            `json:"time"`
	Amount              sdkmath.Int       `json:"amount"`
	AppliedExchangeRate sdkmath.LegacyDec `json:"applied_exchange_rate"`
	WithdrawRate        sdkmath.LegacyDec `json:"withdraw_rate"`
	Released            bool              `json:"released"`
}

// UnbondRequest is one (batch, amount) pair of an address's wait list.
type UnbondRequest struct {
	BatchID uint64      `json:"batch_id"`
	Amount  sdkmath.Int `json:"amount"`
}

type Coin struct {
	Denom  string      `json:"denom"`
	Amount sdkmath.Int `json:"amount"`
}

func NewCoin(denom string, amount sdkmath.Int) Coin {
	return Coin{Denom: denom, Amount: amount}
}

// Delegation is a delegation of the hub as reported by the staking module.
type Delegation struct {
	Validator string `json:"validator"`
	Amount    Coin   `json:"amount"`
}

// Validator is an entry of the registry's target set.
type Validator = registry.Validator

// Redelegation moves Amount from the proxy source validator to Validator.
type Redelegation struct {
	Validator string `json:"validator"`
	Amount    Coin   `json:"amount"`
}

// Env carries the block context a call executes in.
type Env struct {
	BlockTime       uint64
	ContractAddress string
}

// MessageInfo carries the caller and the funds attached to a call.
type MessageInfo struct {
	Sender string
	Funds  []Coin
}
