package ledger

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
)

// Hub executes the ledger operations against a Store bound to a single
// transaction. A Hub must not outlive the transaction it was built for.
type Hub struct {
	store   Store
	querier ChainQuerier
}

func NewHub(store Store, querier ChainQuerier) *Hub {
	return &Hub{
		store:   store,
		querier: querier,
	}
}

type InstantiateParams struct {
	Config          HubConfig
	EpochPeriod     uint64
	UnbondingPeriod uint64
	UnderlyingDenom string
	Guardians       []string
}

// Instantiate writes the genesis config, parameters, state and first batch.
// It is a no-op returning false when the hub has already been instantiated.
func (h *Hub) Instantiate(ctx context.Context, env Env, p InstantiateParams) (bool, error) {
	if _, err := h.store.GetState(ctx); err == nil {
		return false, nil
	} else if !errorsmod.IsOf(err, ErrStateNotFound) {
		return false, err
	}
	if p.Config.Owner == "" {
		return false, errorsmod.Wrap(ErrInvalidParams, "owner must be set")
	}
	if p.UnderlyingDenom == "" {
		return false, errorsmod.Wrap(ErrInvalidParams, "underlying denom must be set")
	}

	cfg := p.Config
	if err := h.store.SetConfig(ctx, &cfg); err != nil {
		return false, err
	}
	params := &Parameters{
		EpochPeriod:     p.EpochPeriod,
		UnbondingPeriod: p.UnbondingPeriod,
		UnderlyingDenom: p.UnderlyingDenom,
	}
	if err := h.store.SetParameters(ctx, params); err != nil {
		return false, err
	}
	if err := h.store.SetState(ctx, NewGenesisState(env.BlockTime)); err != nil {
		return false, err
	}
	if err := h.store.SetCurrentBatch(ctx, &CurrentBatch{ID: 1, RequestedAmount: sdkmath.ZeroInt()}); err != nil {
		return false, err
	}
	for _, g := range p.Guardians {
		if err := h.store.AddGuardian(ctx, g); err != nil {
			return false, err
		}
	}
	return true, nil
}

// loadUnpausedParams returns ErrPaused when the hub is paused.
func (h *Hub) loadUnpausedParams(ctx context.Context) (*Parameters, error) {
	params, err := h.store.GetParameters(ctx)
	if err != nil {
		return nil, err
	}
	if params.Paused {
		return nil, ErrPaused
	}
	return params, nil
}

func (h *Hub) totalIssued(ctx context.Context, cfg *HubConfig) (sdkmath.Int, error) {
	if cfg.TokenContract == "" {
		return sdkmath.ZeroInt(), errorsmod.Wrap(ErrContractNotRegistered, "token contract")
	}
	supply, err := h.querier.TokenSupply(ctx, cfg.TokenContract)
	if err != nil {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(ErrCollaborator, "token supply: %v", err)
	}
	return supply, nil
}

func (h *Hub) delegations(ctx context.Context, delegator string) ([]Delegation, error) {
	delegations, err := h.querier.AllDelegations(ctx, delegator)
	if err != nil {
		return nil, errorsmod.Wrapf(ErrCollaborator, "delegations: %v", err)
	}
	return delegations, nil
}
