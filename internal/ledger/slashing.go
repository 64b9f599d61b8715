package ledger

import (
	"context"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"
)

// actualState reconciles the recorded bonded amount with the delegations the
// staking module reports plus the stake instructions still pending.
// TotalBonded is only ever clamped down, then the exchange rate is
// recomputed. Nothing is persisted.
func (h *Hub) actualState(ctx context.Context, env Env) (*State, error) {
	state, err := h.store.GetState(ctx)
	if err != nil {
		return nil, err
	}
	state.Pending.fill()
	params, err := h.store.GetParameters(ctx)
	if err != nil {
		return nil, err
	}
	delegations, err := h.delegations(ctx, env.ContractAddress)
	if err != nil {
		return nil, err
	}
	onChain := sdkmath.ZeroInt()
	for _, d := range delegations {
		if d.Amount.Denom != params.UnderlyingDenom {
			continue
		}
		if onChain, err = checkedAdd(onChain, d.Amount.Amount); err != nil {
			return nil, err
		}
	}
	if onChain.IsZero() || state.TotalBonded.IsZero() {
		return state, nil
	}
	actualBonded, err := expectedDelegated(onChain, state.Pending)
	if err != nil {
		return nil, err
	}

	cfg, err := h.store.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if state.TotalIssued, err = h.effectiveIssued(ctx, cfg, state.Pending); err != nil {
		return nil, err
	}
	batch, err := h.store.GetCurrentBatch(ctx)
	if err != nil {
		return nil, err
	}

	if state.TotalBonded.GT(actualBonded) {
		log.Ctx(ctx).Warn().
			Str("recorded", state.TotalBonded.String()).
			Str("actual", actualBonded.String()).
			Str("onChain", onChain.String()).
			Msg("slashing detected, writing down total bonded")
		state.TotalBonded = actualBonded
	}
	if err := state.UpdateExchangeRate(state.TotalIssued, batch.RequestedAmount); err != nil {
		return nil, err
	}
	return state, nil
}

// slashing reconciles and persists the ledger state.
func (h *Hub) slashing(ctx context.Context, env Env) (*State, error) {
	state, err := h.actualState(ctx, env)
	if err != nil {
		return nil, err
	}
	if err := h.store.SetState(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// CheckSlashing is the explicit, permissionless reconciliation entry point.
func (h *Hub) CheckSlashing(ctx context.Context, env Env) (*Response, error) {
	if _, err := h.loadUnpausedParams(ctx); err != nil {
		return nil, err
	}
	state, err := h.slashing(ctx, env)
	if err != nil {
		return nil, err
	}
	return NewResponse("check_slashing").
		AddAttribute("new_exchange_rate", state.ExchangeRate.String()), nil
}
