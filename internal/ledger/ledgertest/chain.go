// Package ledgertest provides an in-memory chain for exercising the ledger.
package ledgertest

import (
	"context"

	sdkmath "cosmossdk.io/math"

	"github.com/babylonchain/staking-hub-service/internal/ledger"
)

// Chain answers the hub's queries and applies the instructions the hub
// emits, so scenarios can run end to end.
type Chain struct {
	Denom       string
	Supply      sdkmath.Int
	Balances    map[string]sdkmath.Int
	Registry    []string
	Delegations []ledger.Delegation
	Native      sdkmath.Int
	// Err fails every query when set.
	Err error
}

func NewChain(denom string, validators ...string) *Chain {
	return &Chain{
		Denom:    denom,
		Supply:   sdkmath.ZeroInt(),
		Balances: make(map[string]sdkmath.Int),
		Registry: validators,
		Native:   sdkmath.ZeroInt(),
	}
}

var _ ledger.ChainQuerier = (*Chain)(nil)

func (c *Chain) TokenSupply(ctx context.Context, tokenContract string) (sdkmath.Int, error) {
	if c.Err != nil {
		return sdkmath.ZeroInt(), c.Err
	}
	return c.Supply, nil
}

func (c *Chain) TokenBalance(ctx context.Context, tokenContract, address string) (sdkmath.Int, error) {
	if c.Err != nil {
		return sdkmath.ZeroInt(), c.Err
	}
	return c.Balance(address), nil
}

func (c *Chain) ValidatorsForDelegation(ctx context.Context, registryContract string) ([]ledger.Validator, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	vals := make([]ledger.Validator, 0, len(c.Registry))
	for _, addr := range c.Registry {
		vals = append(vals, ledger.Validator{Address: addr, TotalDelegated: c.DelegatedTo(addr)})
	}
	return vals, nil
}

func (c *Chain) AllDelegations(ctx context.Context, delegator string) ([]ledger.Delegation, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	out := make([]ledger.Delegation, 0, len(c.Delegations))
	for _, d := range c.Delegations {
		if d.Amount.Amount.IsPositive() {
			out = append(out, d)
		}
	}
	return out, nil
}

func (c *Chain) NativeBalance(ctx context.Context, address, denom string) (sdkmath.Int, error) {
	if c.Err != nil {
		return sdkmath.ZeroInt(), c.Err
	}
	return c.Native, nil
}

func (c *Chain) Balance(addr string) sdkmath.Int {
	if b, ok := c.Balances[addr]; ok {
		return b
	}
	return sdkmath.ZeroInt()
}

func (c *Chain) DelegatedTo(validator string) sdkmath.Int {
	for _, d := range c.Delegations {
		if d.Validator == validator {
			return d.Amount.Amount
		}
	}
	return sdkmath.ZeroInt()
}

func (c *Chain) Delegate(validator string, amount sdkmath.Int) {
	for i, d := range c.Delegations {
		if d.Validator == validator {
			c.Delegations[i].Amount.Amount = d.Amount.Amount.Add(amount)
			return
		}
	}
	c.Delegations = append(c.Delegations, ledger.Delegation{Validator: validator, Amount: ledger.NewCoin(c.Denom, amount)})
}

// SetDelegation overrides what the staking module reports, e.g. after a slash.
func (c *Chain) SetDelegation(validator string, amount int64) {
	for i, d := range c.Delegations {
		if d.Validator == validator {
			c.Delegations[i].Amount.Amount = sdkmath.NewInt(amount)
			return
		}
	}
	c.Delegations = append(c.Delegations, ledger.Delegation{Validator: validator, Amount: ledger.NewCoin(c.Denom, sdkmath.NewInt(amount))})
}

// Apply executes the instructions of res the way the chain would.
func (c *Chain) Apply(res *ledger.Response) {
	for _, in := range res.Instructions {
		switch in.Type {
		case ledger.InstructionDelegate:
			c.Delegate(in.Validator, in.Amount.Amount)
		case ledger.InstructionUndelegate:
			c.Delegate(in.Validator, in.Amount.Amount.Neg())
		case ledger.InstructionMint:
			c.Supply = c.Supply.Add(in.Amount.Amount)
			c.Balances[in.Recipient] = c.Balance(in.Recipient).Add(in.Amount.Amount)
		case ledger.InstructionBurn:
			c.Supply = c.Supply.Sub(in.Amount.Amount)
			c.Balances[in.Owner] = c.Balance(in.Owner).Sub(in.Amount.Amount)
		case ledger.InstructionBankSend:
			c.Native = c.Native.Sub(in.Amount.Amount)
		}
	}
}

