package ledger_test

import (
	"context"
	"errors"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/babylonchain/staking-hub-service/internal/db"
	"github.com/babylonchain/staking-hub-service/internal/db/memdb"
	"github.com/babylonchain/staking-hub-service/internal/ledger"
	"github.com/babylonchain/staking-hub-service/internal/ledger/ledgertest"
)

const (
	denom      = "uatom"
	hubAddr    = "hub"
	owner      = "owner"
	dispatcher = "dispatcher"
	registry   = "registry"
	token      = "token"

	genesisTime     = uint64(1000)
	epochPeriod     = uint64(30)
	unbondingPeriod = uint64(100)
)

var errChainDown = errors.New("lcd unreachable")

type hubSuite struct {
	t     *testing.T
	ctx   context.Context
	db    *memdb.MemDB
	chain *ledgertest.Chain
	now   uint64
}

func newHubSuite(t *testing.T, validators ...string) *hubSuite {
	if len(validators) == 0 {
		validators = []string{"val1"}
	}
	s := &hubSuite{
		t:     t,
		ctx:   context.Background(),
		db:    memdb.New(),
		chain: ledgertest.NewChain(denom, validators...),
		now:   genesisTime,
	}
	err := s.run(func(hub *ledger.Hub) error {
		created, err := hub.Instantiate(s.ctx, s.env(), ledger.InstantiateParams{
			Config: ledger.HubConfig{
				Owner:              owner,
				RewardsDispatcher:  dispatcher,
				ValidatorsRegistry: registry,
				TokenContract:      token,
			},
			EpochPeriod:     epochPeriod,
			UnbondingPeriod: unbondingPeriod,
			UnderlyingDenom: denom,
			Guardians:       []string{"guardian"},
		})
		require.True(t, created)
		return err
	})
	require.NoError(t, err)
	return s
}

func (s *hubSuite) env() ledger.Env {
	return ledger.Env{BlockTime: s.now, ContractAddress: hubAddr}
}

func (s *hubSuite) run(fn func(hub *ledger.Hub) error) error {
	return s.db.RunInTx(s.ctx, func(ctx context.Context, store db.HubStore) error {
		return fn(ledger.NewHub(store, s.chain))
	})
}

// exec runs a state-changing call, applies its instructions on success and
// confirms them, the way the executor does.
func (s *hubSuite) exec(fn func(hub *ledger.Hub) (*ledger.Response, error)) (*ledger.Response, error) {
	res, err := s.execPending(fn)
	if err != nil {
		return nil, err
	}
	s.settle(res)
	return res, nil
}

// execPending runs a state-changing call and leaves its instructions
// in flight.
func (s *hubSuite) execPending(fn func(hub *ledger.Hub) (*ledger.Response, error)) (*ledger.Response, error) {
	var res *ledger.Response
	err := s.run(func(hub *ledger.Hub) error {
		var err error
		res, err = fn(hub)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// settle executes the instructions of res on chain and confirms them.
func (s *hubSuite) settle(res *ledger.Response) {
	s.chain.Apply(res)
	require.NoError(s.t, s.confirm(res))
}

func (s *hubSuite) confirm(res *ledger.Response) error {
	return s.run(func(hub *ledger.Hub) error {
		_, err := hub.ConfirmInstructions(s.ctx, res.Instructions)
		return err
	})
}

func (s *hubSuite) bond(sender string, amount int64) (*ledger.Response, error) {
	return s.exec(func(hub *ledger.Hub) (*ledger.Response, error) {
		return hub.Bond(s.ctx, s.env(), ledger.MessageInfo{
			Sender: sender,
			Funds:  []ledger.Coin{ledger.NewCoin(denom, sdkmath.NewInt(amount))},
		}, ledger.BondTypeUser)
	})
}

func (s *hubSuite) bondRewards(sender string, amount int64) (*ledger.Response, error) {
	return s.exec(func(hub *ledger.Hub) (*ledger.Response, error) {
		return hub.Bond(s.ctx, s.env(), ledger.MessageInfo{
			Sender: sender,
			Funds:  []ledger.Coin{ledger.NewCoin(denom, sdkmath.NewInt(amount))},
		}, ledger.BondTypeRewards)
	})
}

func (s *hubSuite) unbond(requester string, amount int64) (*ledger.Response, error) {
	return s.exec(func(hub *ledger.Hub) (*ledger.Response, error) {
		return hub.Unbond(s.ctx, s.env(), ledger.MessageInfo{Sender: token}, sdkmath.NewInt(amount), requester)
	})
}

func (s *hubSuite) bondPending(sender string, amount int64) *ledger.Response {
	res, err := s.execPending(func(hub *ledger.Hub) (*ledger.Response, error) {
		return hub.Bond(s.ctx, s.env(), ledger.MessageInfo{
			Sender: sender,
			Funds:  []ledger.Coin{ledger.NewCoin(denom, sdkmath.NewInt(amount))},
		}, ledger.BondTypeUser)
	})
	require.NoError(s.t, err)
	return res
}

func (s *hubSuite) unbondPending(requester string, amount int64) (*ledger.Response, error) {
	return s.execPending(func(hub *ledger.Hub) (*ledger.Response, error) {
		return hub.Unbond(s.ctx, s.env(), ledger.MessageInfo{Sender: token}, sdkmath.NewInt(amount), requester)
	})
}

func (s *hubSuite) withdraw(requester string) (*ledger.Response, error) {
	return s.exec(func(hub *ledger.Hub) (*ledger.Response, error) {
		return hub.WithdrawUnbonded(s.ctx, s.env(), ledger.MessageInfo{Sender: requester})
	})
}

func (s *hubSuite) checkSlashing() (*ledger.Response, error) {
	return s.exec(func(hub *ledger.Hub) (*ledger.Response, error) {
		return hub.CheckSlashing(s.ctx, s.env())
	})
}

func (s *hubSuite) state() *ledger.State {
	var st *ledger.State
	require.NoError(s.t, s.run(func(hub *ledger.Hub) error {
		var err error
		st, err = hub.QueryState(s.ctx, s.env())
		return err
	}))
	return st
}

// storedState reads the persisted state without reconciling.
func (s *hubSuite) storedState() *ledger.State {
	var st *ledger.State
	require.NoError(s.t, s.db.RunInTx(s.ctx, func(ctx context.Context, store db.HubStore) error {
		var err error
		st, err = store.GetState(ctx)
		return err
	}))
	return st
}

func (s *hubSuite) currentBatch() *ledger.CurrentBatch {
	var b *ledger.CurrentBatch
	require.NoError(s.t, s.run(func(hub *ledger.Hub) error {
		var err error
		b, err = hub.QueryCurrentBatch(s.ctx)
		return err
	}))
	return b
}

func (s *hubSuite) history(batchID uint64) *ledger.UnbondHistory {
	var h *ledger.UnbondHistory
	require.NoError(s.t, s.db.RunInTx(s.ctx, func(ctx context.Context, store db.HubStore) error {
		var err error
		h, err = store.GetUnbondHistory(ctx, batchID)
		return err
	}))
	return h
}

func (s *hubSuite) unbondRequests(addr string) []ledger.UnbondRequest {
	var reqs []ledger.UnbondRequest
	require.NoError(s.t, s.run(func(hub *ledger.Hub) error {
		var err error
		reqs, err = hub.QueryUnbondRequests(s.ctx, addr)
		return err
	}))
	return reqs
}

func (s *hubSuite) withdrawable(addr string) sdkmath.Int {
	var amount sdkmath.Int
	require.NoError(s.t, s.run(func(hub *ledger.Hub) error {
		var err error
		amount, err = hub.QueryWithdrawableUnbonded(s.ctx, s.env(), addr)
		return err
	}))
	return amount
}

func dec(s string) sdkmath.LegacyDec {
	return sdkmath.LegacyMustNewDecFromStr(s)
}

func instructionsOf(res *ledger.Response, typ ledger.InstructionType) []ledger.Instruction {
	var out []ledger.Instruction
	for _, in := range res.Instructions {
		if in.Type == typ {
			out = append(out, in)
		}
	}
	return out
}
