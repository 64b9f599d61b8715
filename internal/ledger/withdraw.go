package ledger

import (
	"context"
	"strconv"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"
)

// WithdrawUnbonded settles every matured batch at a shared shortfall factor
// and pays the sender its share of all released batches it holds entries in.
func (h *Hub) WithdrawUnbonded(ctx context.Context, env Env, info MessageInfo) (*Response, error) {
	params, err := h.loadUnpausedParams(ctx)
	if err != nil {
		return nil, err
	}
	state, err := h.store.GetState(ctx)
	if err != nil {
		return nil, err
	}
	state.Pending.fill()
	onChain, err := h.querier.NativeBalance(ctx, env.ContractAddress, params.UnderlyingDenom)
	if err != nil {
		return nil, errorsmod.Wrapf(ErrCollaborator, "native balance: %v", err)
	}
	balance := effectiveNativeBalance(onChain, state.Pending)

	settled, err := h.processWithdrawRate(ctx, env, params, state, balance)
	if err != nil {
		return nil, err
	}

	requester := info.Sender
	payout, releasedEntries, err := h.collectReleased(ctx, requester)
	if err != nil {
		return nil, err
	}
	if payout.IsZero() {
		if settled == 0 && releasedEntries == 0 {
			return nil, ErrNotYetWithdrawable
		}
		return nil, errorsmod.Wrapf(ErrNoWithdrawableAssets, "no withdrawable %s assets are available yet", params.UnderlyingDenom)
	}

	if state.PrevNativeBalance, err = checkedSub(balance, payout); err != nil {
		return nil, err
	}

	res := NewResponse("finish_burn").
		AddInstruction(bankSendInstruction(requester, NewCoin(params.UnderlyingDenom, payout))).
		AddAttribute("from", env.ContractAddress).
		AddAttribute("amount", payout.String()).
		AddAttribute("settled_batches", strconv.Itoa(settled))
	if err := h.trackPending(ctx, state, res.Instructions); err != nil {
		return nil, err
	}
	if err := h.store.SetState(ctx, state); err != nil {
		return nil, err
	}
	return res, nil
}

func matured(closeTime, now, unbondingPeriod uint64) bool {
	if now < unbondingPeriod {
		return false
	}
	return closeTime <= now-unbondingPeriod
}

// processWithdrawRate releases every unreleased batch whose unbonding period
// has passed. All of them share factor = min(1, available / promised) where
// available is the balance received since the last payout and promised is the
// exact sum of amount * applied rate. Nothing is settled while no funds have
// arrived. Returns the number of released batches.
func (h *Hub) processWithdrawRate(
	ctx context.Context, env Env, params *Parameters, state *State, balance sdkmath.Int,
) (int, error) {
	unreleased, err := h.store.UnreleasedUnbondHistory(ctx)
	if err != nil {
		return 0, err
	}
	var maturable []UnbondHistory
	for _, hist := range unreleased {
		if matured(hist.Time, env.BlockTime, params.UnbondingPeriod) {
			maturable = append(maturable, hist)
		}
	}
	if len(maturable) == 0 {
		return 0, nil
	}

	available := saturatingSub(balance, state.PrevNativeBalance)
	if available.IsZero() {
		return 0, nil
	}

	promised := sdkmath.LegacyZeroDec()
	for _, hist := range maturable {
		amount, rate := hist.Amount, hist.AppliedExchangeRate
		if promised, err = decMath("promised", func() sdkmath.LegacyDec {
			return promised.Add(rate.MulInt(amount))
		}); err != nil {
			return 0, err
		}
	}

	factor := sdkmath.LegacyOneDec()
	availableDec := sdkmath.LegacyNewDecFromInt(available)
	if promised.IsPositive() && availableDec.LT(promised) {
		if factor, err = decMath("withdraw factor", func() sdkmath.LegacyDec {
			return availableDec.QuoTruncate(promised)
		}); err != nil {
			return 0, err
		}
	}

	for i := range maturable {
		hist := &maturable[i]
		rate := hist.AppliedExchangeRate
		hist.WithdrawRate, err = decMath("withdraw rate", func() sdkmath.LegacyDec {
			return rate.MulTruncate(factor)
		})
		if err != nil {
			return 0, err
		}
		hist.Released = true
		if err := h.store.SetUnbondHistory(ctx, hist); err != nil {
			return 0, err
		}
	}

	log.Ctx(ctx).Info().
		Int("batches", len(maturable)).
		Str("available", available.String()).
		Str("promised", promised.String()).
		Str("factor", factor.String()).
		Msg("unbonded batches released")
	return len(maturable), nil
}

// collectReleased sums floor(entry * withdraw rate) over the requester's
// entries in released batches and removes those entries.
func (h *Hub) collectReleased(ctx context.Context, requester string) (sdkmath.Int, int, error) {
	entries, err := h.store.UnbondWaitEntries(ctx, requester)
	if err != nil {
		return sdkmath.ZeroInt(), 0, err
	}
	payout := sdkmath.ZeroInt()
	released := 0
	for _, entry := range entries {
		hist, err := h.store.GetUnbondHistory(ctx, entry.BatchID)
		if errorsmod.IsOf(err, ErrStateNotFound) {
			// the open batch has no history yet
			continue
		}
		if err != nil {
			return sdkmath.ZeroInt(), 0, err
		}
		if !hist.Released {
			continue
		}
		released++
		share, err := mulTruncateInt(entry.Amount, hist.WithdrawRate)
		if err != nil {
			return sdkmath.ZeroInt(), 0, err
		}
		if payout, err = checkedAdd(payout, share); err != nil {
			return sdkmath.ZeroInt(), 0, err
		}
		if err := h.store.RemoveUnbondWaitEntry(ctx, entry.BatchID, requester); err != nil {
			return sdkmath.ZeroInt(), 0, err
		}
	}
	return payout, released, nil
}
