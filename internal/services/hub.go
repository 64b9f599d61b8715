package services

import (
	"context"
	"strconv"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/babylonchain/staking-hub-service/internal/db"
	"github.com/babylonchain/staking-hub-service/internal/ledger"
	"github.com/babylonchain/staking-hub-service/internal/observability/metrics"
	"github.com/babylonchain/staking-hub-service/internal/types"
)

// Call carries who invokes a state-changing operation and with what funds.
// Callers are authenticated before a Call is built.
type Call struct {
	Sender string
	Funds  []ledger.Coin
}

func (c Call) info() ledger.MessageInfo {
	return ledger.MessageInfo{Sender: c.Sender, Funds: c.Funds}
}

type hubOp func(ctx context.Context, hub *ledger.Hub, env ledger.Env) (*ledger.Response, error)

// execute runs op in a single transaction together with the outbox write of
// its instructions. Either both persist or neither does.
func (s *Services) execute(ctx context.Context, operation string, call Call, op hubOp) (*ledger.Response, *types.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	env := s.env()
	var (
		res   *ledger.Response
		state *ledger.State
		batch *ledger.CurrentBatch
	)
	err := s.DbClient.RunInTx(ctx, func(ctx context.Context, store db.HubStore) error {
		var err error
		if res, err = op(ctx, ledger.NewHub(store, s.chain), env); err != nil {
			return err
		}
		if err = store.EnqueueInstructions(ctx, operation, res.Instructions); err != nil {
			return err
		}
		if state, err = store.GetState(ctx); err != nil {
			return err
		}
		batch, err = store.GetCurrentBatch(ctx)
		return err
	})
	if err != nil {
		metrics.RecordHubOperation(operation, metrics.Error)
		return nil, toApiError(ctx, operation, err)
	}

	metrics.RecordHubOperation(operation, metrics.Success)
	recordResponse(res)
	metrics.SetLedgerState(
		toFloat(state.ExchangeRate.String()), toFloat(state.TotalBonded.String()), toFloat(batch.RequestedAmount.String()),
	)
	log.Ctx(ctx).Debug().
		Str("operation", operation).
		Str("sender", call.Sender).
		Int("instructions", len(res.Instructions)).
		Msg("ledger call committed")
	return res, nil
}

func recordResponse(res *ledger.Response) {
	for _, in := range res.Instructions {
		metrics.RecordInstruction(string(in.Type))
	}
	if _, ok := res.Attribute("closed_batch"); ok {
		metrics.RecordClosedBatch()
	}
	if settled, ok := res.Attribute("settled_batches"); ok {
		if n, err := strconv.Atoi(settled); err == nil {
			metrics.RecordSettledBatches(n)
		}
	}
}

func toFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func (s *Services) Bond(ctx context.Context, call Call) (*ledger.Response, *types.Error) {
	return s.execute(ctx, "bond", call, func(ctx context.Context, hub *ledger.Hub, env ledger.Env) (*ledger.Response, error) {
		return hub.Bond(ctx, env, call.info(), ledger.BondTypeUser)
	})
}

func (s *Services) BondRewards(ctx context.Context, call Call) (*ledger.Response, *types.Error) {
	return s.execute(ctx, "bond_rewards", call, func(ctx context.Context, hub *ledger.Hub, env ledger.Env) (*ledger.Response, error) {
		return hub.Bond(ctx, env, call.info(), ledger.BondTypeRewards)
	})
}

// Unbond queues amount derivative tokens of requester for redemption. The
// call's sender is the token contract relaying the request or the requester.
func (s *Services) Unbond(ctx context.Context, call Call, amount sdkmath.Int, requester string) (*ledger.Response, *types.Error) {
	return s.execute(ctx, "unbond", call, func(ctx context.Context, hub *ledger.Hub, env ledger.Env) (*ledger.Response, error) {
		return hub.Unbond(ctx, env, call.info(), amount, requester)
	})
}

func (s *Services) WithdrawUnbonded(ctx context.Context, call Call) (*ledger.Response, *types.Error) {
	return s.execute(ctx, "withdraw_unbonded", call, func(ctx context.Context, hub *ledger.Hub, env ledger.Env) (*ledger.Response, error) {
		return hub.WithdrawUnbonded(ctx, env, call.info())
	})
}

func (s *Services) CheckSlashing(ctx context.Context, call Call) (*ledger.Response, *types.Error) {
	return s.execute(ctx, "check_slashing", call, func(ctx context.Context, hub *ledger.Hub, env ledger.Env) (*ledger.Response, error) {
		return hub.CheckSlashing(ctx, env)
	})
}

func (s *Services) DispatchRewards(ctx context.Context, call Call) (*ledger.Response, *types.Error) {
	return s.execute(ctx, "dispatch_rewards", call, func(ctx context.Context, hub *ledger.Hub, env ledger.Env) (*ledger.Response, error) {
		return hub.DispatchRewards(ctx, env)
	})
}

func (s *Services) Redelegate(
	ctx context.Context, call Call, srcValidator string, redelegations []ledger.Redelegation,
) (*ledger.Response, *types.Error) {
	return s.execute(ctx, "redelegate", call, func(ctx context.Context, hub *ledger.Hub, env ledger.Env) (*ledger.Response, error) {
		return hub.RedelegateProxy(ctx, call.info(), srcValidator, redelegations)
	})
}

func (s *Services) Pause(ctx context.Context, call Call) (*ledger.Response, *types.Error) {
	return s.execute(ctx, "pause", call, func(ctx context.Context, hub *ledger.Hub, env ledger.Env) (*ledger.Response, error) {
		return hub.Pause(ctx, call.info())
	})
}

func (s *Services) Unpause(ctx context.Context, call Call) (*ledger.Response, *types.Error) {
	return s.execute(ctx, "unpause", call, func(ctx context.Context, hub *ledger.Hub, env ledger.Env) (*ledger.Response, error) {
		return hub.Unpause(ctx, call.info())
	})
}

func (s *Services) AddGuardians(ctx context.Context, call Call, addresses []string) (*ledger.Response, *types.Error) {
	return s.execute(ctx, "add_guardians", call, func(ctx context.Context, hub *ledger.Hub, env ledger.Env) (*ledger.Response, error) {
		return hub.AddGuardians(ctx, call.info(), addresses)
	})
}

func (s *Services) RemoveGuardians(ctx context.Context, call Call, addresses []string) (*ledger.Response, *types.Error) {
	return s.execute(ctx, "remove_guardians", call, func(ctx context.Context, hub *ledger.Hub, env ledger.Env) (*ledger.Response, error) {
		return hub.RemoveGuardians(ctx, call.info(), addresses)
	})
}

func (s *Services) UpdateParams(
	ctx context.Context, call Call, epochPeriod, unbondingPeriod *uint64,
) (*ledger.Response, *types.Error) {
	return s.execute(ctx, "update_params", call, func(ctx context.Context, hub *ledger.Hub, env ledger.Env) (*ledger.Response, error) {
		return hub.UpdateParams(ctx, call.info(), epochPeriod, unbondingPeriod)
	})
}

func (s *Services) UpdateConfig(ctx context.Context, call Call, update ledger.ConfigUpdate) (*ledger.Response, *types.Error) {
	return s.execute(ctx, "update_config", call, func(ctx context.Context, hub *ledger.Hub, env ledger.Env) (*ledger.Response, error) {
		return hub.UpdateConfig(ctx, call.info(), update)
	})
}
