package ledger

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
)

const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

// QueryState returns the reconciled state without persisting it.
func (h *Hub) QueryState(ctx context.Context, env Env) (*State, error) {
	return h.actualState(ctx, env)
}

func (h *Hub) QueryCurrentBatch(ctx context.Context) (*CurrentBatch, error) {
	return h.store.GetCurrentBatch(ctx)
}

func (h *Hub) QueryParameters(ctx context.Context) (*Parameters, error) {
	return h.store.GetParameters(ctx)
}

func (h *Hub) QueryConfig(ctx context.Context) (*HubConfig, error) {
	return h.store.GetConfig(ctx)
}

func (h *Hub) QueryGuardians(ctx context.Context) ([]string, error) {
	return h.store.Guardians(ctx)
}

// QueryUnbondRequests lists the pending wait entries of address.
func (h *Hub) QueryUnbondRequests(ctx context.Context, address string) ([]UnbondRequest, error) {
	return h.store.UnbondWaitEntries(ctx, address)
}

// QueryAllHistory pages through closed batches. startFrom is exclusive; limit
// defaults to DefaultHistoryLimit and is capped at MaxHistoryLimit.
func (h *Hub) QueryAllHistory(ctx context.Context, startFrom uint64, limit int) ([]UnbondHistory, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return h.store.UnbondHistoryRange(ctx, startFrom, limit)
}

// QueryWithdrawableUnbonded returns what address could withdraw at env's
// block time. Released batches use their withdraw rate and matured
// unreleased batches use their applied rate, so the result can overstate the
// payout until a withdraw call has realized a shortfall.
func (h *Hub) QueryWithdrawableUnbonded(ctx context.Context, env Env, address string) (sdkmath.Int, error) {
	params, err := h.store.GetParameters(ctx)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	entries, err := h.store.UnbondWaitEntries(ctx, address)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	total := sdkmath.ZeroInt()
	for _, entry := range entries {
		hist, err := h.store.GetUnbondHistory(ctx, entry.BatchID)
		if errorsmod.IsOf(err, ErrStateNotFound) {
			continue
		}
		if err != nil {
			return sdkmath.ZeroInt(), err
		}

		var rate sdkmath.LegacyDec
		switch {
		case hist.Released:
			rate = hist.WithdrawRate
		case matured(hist.Time, env.BlockTime, params.UnbondingPeriod):
			rate = hist.AppliedExchangeRate
		default:
			continue
		}
		share, err := mulTruncateInt(entry.Amount, rate)
		if err != nil {
			return sdkmath.ZeroInt(), err
		}
		if total, err = checkedAdd(total, share); err != nil {
			return sdkmath.ZeroInt(), err
		}
	}
	return total, nil
}
