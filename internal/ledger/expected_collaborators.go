package ledger

import (
	"context"

	sdkmath "cosmossdk.io/math"
)

// TokenQuerier reads the derivative token contract.
type TokenQuerier interface {
	TokenSupply(ctx context.Context, tokenContract string) (sdkmath.Int, error)
	TokenBalance(ctx context.Context, tokenContract, address string) (sdkmath.Int, error)
}

// RegistryQuerier reads the validators registry contract.
type RegistryQuerier interface {
	ValidatorsForDelegation(ctx context.Context, registryContract string) ([]Validator, error)
}

// StakingQuerier reads the staking module.
type StakingQuerier interface {
	AllDelegations(ctx context.Context, delegator string) ([]Delegation, error)
}

// BankQuerier reads the bank module.
type BankQuerier interface {
	NativeBalance(ctx context.Context, address, denom string) (sdkmath.Int, error)
}

// ChainQuerier is everything the hub reads from the chain during a call.
type ChainQuerier interface {
	TokenQuerier
	RegistryQuerier
	StakingQuerier
	BankQuerier
}
