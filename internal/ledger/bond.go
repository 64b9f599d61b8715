package ledger

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/babylonchain/staking-hub-service/internal/registry"
)

// Bond accepts a deposit of the underlying denom. A user deposit mints
// floor(deposit / rate) derivative tokens at the reconciled, pre-deposit rate.
// A rewards deposit mints nothing and raises the rate for every holder.
func (h *Hub) Bond(ctx context.Context, env Env, info MessageInfo, bondType BondType) (*Response, error) {
	params, err := h.loadUnpausedParams(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := h.store.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.RewardsDispatcher == "" {
		return nil, errorsmod.Wrap(ErrContractNotRegistered, "rewards dispatcher")
	}
	if bondType == BondTypeRewards && info.Sender != cfg.RewardsDispatcher {
		return nil, errorsmod.Wrapf(ErrUnauthorized, "%s may not bond rewards", info.Sender)
	}

	batch, err := h.store.GetCurrentBatch(ctx)
	if err != nil {
		return nil, err
	}

	if len(info.Funds) > 1 {
		return nil, ErrMultipleCoins
	}
	payment, ok := findPayment(info.Funds, params.UnderlyingDenom)
	if !ok {
		return nil, errorsmod.Wrapf(ErrNoFunds, "no %s assets are provided to bond", params.UnderlyingDenom)
	}

	state, err := h.slashing(ctx, env)
	if err != nil {
		return nil, err
	}

	mintAmount := sdkmath.ZeroInt()
	if bondType == BondTypeUser {
		if mintAmount, err = quoTruncateInt(payment.Amount, state.ExchangeRate); err != nil {
			return nil, err
		}
	}

	if state.TotalBonded, err = checkedAdd(state.TotalBonded, payment.Amount); err != nil {
		return nil, err
	}
	if bondType == BondTypeRewards {
		// reconciliation skips the supply query when nothing is delegated yet
		if state.TotalIssued, err = h.effectiveIssued(ctx, cfg, state.Pending); err != nil {
			return nil, err
		}
		if err := state.UpdateExchangeRate(state.TotalIssued, batch.RequestedAmount); err != nil {
			return nil, err
		}
	}

	delegations, err := h.apportionDelegations(ctx, cfg, payment)
	if err != nil {
		return nil, err
	}

	res := NewResponse(bondType.String())
	for _, d := range delegations {
		res.AddInstruction(d)
	}
	res.AddAttribute("from", info.Sender).AddAttribute("bonded", payment.Amount.String())

	if bondType == BondTypeUser {
		if cfg.TokenContract == "" {
			return nil, errorsmod.Wrap(ErrContractNotRegistered, "token contract")
		}
		res.AddInstruction(mintInstruction(cfg.TokenContract, info.Sender, mintAmount))
		res.AddAttribute("minted", mintAmount.String())
	}

	if err := h.trackPending(ctx, state, res.Instructions); err != nil {
		return nil, err
	}
	if err := h.store.SetState(ctx, state); err != nil {
		return nil, err
	}
	return res, nil
}

func findPayment(funds []Coin, denom string) (Coin, bool) {
	for _, c := range funds {
		if c.Denom == denom && !c.Amount.IsNil() && c.Amount.IsPositive() {
			return c, true
		}
	}
	return Coin{}, false
}

// apportionDelegations splits payment across the registry's target set.
func (h *Hub) apportionDelegations(ctx context.Context, cfg *HubConfig, payment Coin) ([]Instruction, error) {
	if cfg.ValidatorsRegistry == "" {
		return nil, errorsmod.Wrap(ErrContractNotRegistered, "validators registry")
	}
	validators, err := h.querier.ValidatorsForDelegation(ctx, cfg.ValidatorsRegistry)
	if err != nil {
		return nil, errorsmod.Wrapf(ErrCollaborator, "validators registry: %v", err)
	}
	if len(validators) == 0 {
		return nil, ErrEmptyRegistry
	}
	allocations, err := registry.CalculateDelegations(payment.Amount, validators)
	if err != nil {
		return nil, errorsmod.Wrapf(ErrCollaborator, "apportion delegations: %v", err)
	}

	instructions := make([]Instruction, 0, len(allocations))
	for _, a := range allocations {
		if a.Amount.IsZero() {
			continue
		}
		instructions = append(instructions, delegateInstruction(a.Validator, NewCoin(payment.Denom, a.Amount)))
	}
	return instructions, nil
}
