package ledger

import (
	"context"
	"strconv"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/babylonchain/staking-hub-service/internal/registry"
)

// Unbond queues amount derivative tokens of requester for redemption. When
// the epoch has elapsed and the open batch holds requests, that batch is
// closed at the current rate and its underlying equivalent is undelegated
// before the new request is folded into the next batch.
//
// The sender must be the token contract relaying the request or the
// requester itself.
func (h *Hub) Unbond(ctx context.Context, env Env, info MessageInfo, amount sdkmath.Int, requester string) (*Response, error) {
	params, err := h.loadUnpausedParams(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := h.store.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.TokenContract == "" {
		return nil, errorsmod.Wrap(ErrContractNotRegistered, "token contract")
	}
	if info.Sender != cfg.TokenContract && info.Sender != requester {
		return nil, errorsmod.Wrapf(ErrUnauthorized, "%s may not unbond for %s", info.Sender, requester)
	}
	if amount.IsNil() || !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	state, err := h.slashing(ctx, env)
	if err != nil {
		return nil, err
	}

	balance, err := h.unbondableBalance(ctx, cfg, requester)
	if err != nil {
		return nil, err
	}
	if balance.LT(amount) {
		return nil, errorsmod.Wrapf(ErrInsufficientTokenBalance, "balance %s, requested %s", balance, amount)
	}

	batch, err := h.store.GetCurrentBatch(ctx)
	if err != nil {
		return nil, err
	}

	res := NewResponse("burn").
		AddAttribute("from", requester).
		AddAttribute("burnt_amount", amount.String())

	if epochElapsed(state.LastUnbondedTime, env.BlockTime, params.EpochPeriod) && batch.RequestedAmount.IsPositive() {
		undelegations, err := h.closeBatch(ctx, env, params, state, batch)
		if err != nil {
			return nil, err
		}
		for _, u := range undelegations {
			res.AddInstruction(u)
		}
		res.AddAttribute("closed_batch", strconv.FormatUint(state.LastProcessedBatch, 10))
	}

	if batch.RequestedAmount, err = checkedAdd(batch.RequestedAmount, amount); err != nil {
		return nil, err
	}
	entry, err := h.store.GetUnbondWaitEntry(ctx, batch.ID, requester)
	if err != nil {
		return nil, err
	}
	if entry, err = checkedAdd(entry, amount); err != nil {
		return nil, err
	}
	if err := h.store.SetUnbondWaitEntry(ctx, batch.ID, requester, entry); err != nil {
		return nil, err
	}
	if err := h.store.SetCurrentBatch(ctx, batch); err != nil {
		return nil, err
	}

	res.AddInstruction(burnInstruction(cfg.TokenContract, requester, amount))
	if err := h.trackPending(ctx, state, res.Instructions); err != nil {
		return nil, err
	}
	if err := h.store.SetState(ctx, state); err != nil {
		return nil, err
	}
	return res, nil
}

func epochElapsed(lastUnbondedTime, now, epochPeriod uint64) bool {
	if now < lastUnbondedTime {
		return false
	}
	return now-lastUnbondedTime >= epochPeriod
}

// closeBatch writes the history record of batch, opens the next batch and
// returns the undelegate instructions for the closed amount. state and batch
// are mutated in place; the caller persists them.
func (h *Hub) closeBatch(
	ctx context.Context, env Env, params *Parameters, state *State, batch *CurrentBatch,
) ([]Instruction, error) {
	closed := &UnbondHistory{
		BatchID:             batch.ID,
		Time:                env.BlockTime,
		Amount:              batch.RequestedAmount,
		AppliedExchangeRate: state.ExchangeRate,
		WithdrawRate:        sdkmath.LegacyZeroDec(),
		Released:            false,
	}
	if err := h.store.SetUnbondHistory(ctx, closed); err != nil {
		return nil, err
	}

	undelegateAmount, err := mulTruncateInt(closed.Amount, closed.AppliedExchangeRate)
	if err != nil {
		return nil, err
	}

	state.LastUnbondedTime = env.BlockTime
	state.LastProcessedBatch = batch.ID
	batch.ID++
	batch.RequestedAmount = sdkmath.ZeroInt()

	if state.TotalBonded, err = checkedSub(state.TotalBonded, undelegateAmount); err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Uint64("batchId", closed.BatchID).
		Str("amount", closed.Amount.String()).
		Str("appliedRate", closed.AppliedExchangeRate.String()).
		Str("undelegate", undelegateAmount.String()).
		Msg("unbond batch closed")

	if undelegateAmount.IsZero() {
		return nil, nil
	}
	return h.apportionUndelegations(ctx, env, params, NewCoin(params.UnderlyingDenom, undelegateAmount))
}

// apportionUndelegations splits amount across the hub's current delegations.
func (h *Hub) apportionUndelegations(ctx context.Context, env Env, params *Parameters, amount Coin) ([]Instruction, error) {
	delegations, err := h.delegations(ctx, env.ContractAddress)
	if err != nil {
		return nil, err
	}
	validators := make([]Validator, 0, len(delegations))
	for _, d := range delegations {
		if d.Amount.Denom != params.UnderlyingDenom {
			continue
		}
		validators = append(validators, Validator{Address: d.Validator, TotalDelegated: d.Amount.Amount})
	}
	allocations, err := registry.CalculateUndelegations(amount.Amount, validators)
	if err != nil {
		return nil, errorsmod.Wrapf(ErrCollaborator, "apportion undelegations: %v", err)
	}

	instructions := make([]Instruction, 0, len(allocations))
	for _, a := range allocations {
		if a.Amount.IsZero() {
			continue
		}
		instructions = append(instructions, undelegateInstruction(a.Validator, NewCoin(amount.Denom, a.Amount)))
	}
	return instructions, nil
}
