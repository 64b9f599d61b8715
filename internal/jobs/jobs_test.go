package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babylonchain/staking-hub-service/internal/config"
	"github.com/babylonchain/staking-hub-service/internal/db"
	"github.com/babylonchain/staking-hub-service/internal/db/memdb"
	"github.com/babylonchain/staking-hub-service/internal/jobs"
	"github.com/babylonchain/staking-hub-service/internal/ledger"
	"github.com/babylonchain/staking-hub-service/internal/ledger/ledgertest"
	"github.com/babylonchain/staking-hub-service/internal/services"
)

func setupServices(t *testing.T) (*services.Services, *memdb.MemDB, *ledgertest.Chain) {
	cfg := &config.Config{
		Db:    config.DbConfig{OutboxBatchSize: 10},
		Chain: config.ChainConfig{HubAddress: "hub"},
		Hub: config.HubConfig{
			UnderlyingDenom:    "uatom",
			EpochPeriod:        30,
			UnbondingPeriod:    100,
			Owner:              "owner",
			RewardsDispatcher:  "dispatcher",
			TokenContract:      "token",
			ValidatorsRegistry: "registry",
		},
	}
	store := memdb.New()
	chain := ledgertest.NewChain("uatom", "val1")
	svc := services.NewWithDB(cfg, store, chain)
	svc.SetClock(func() time.Time { return time.Unix(1000, 0) })
	_, err := svc.Instantiate(context.Background())
	require.Nil(t, err)
	return svc, store, chain
}

func bond(t *testing.T, svc *services.Services, amount int64) *ledger.Response {
	res, err := svc.Bond(context.Background(), services.Call{
		Sender: "alice",
		Funds:  []ledger.Coin{ledger.NewCoin("uatom", sdkmath.NewInt(amount))},
	})
	require.Nil(t, err)
	return res
}

// bondAndSettle bonds, executes the bond on chain and confirms it.
func bondAndSettle(t *testing.T, svc *services.Services, store *memdb.MemDB, chain *ledgertest.Chain, amount int64) {
	chain.Apply(bond(t, svc, amount))
	outbox := store.Outbox()
	_, err := svc.ConfirmInstructions(context.Background(), outbox[len(outbox)-1].ID)
	require.Nil(t, err)
}

func TestRelayOutbox(t *testing.T) {
	svc, store, _ := setupServices(t)
	bond(t, svc, 100)
	bond(t, svc, 200)

	var published []string
	j := jobs.New(svc, func(ctx context.Context, body string) error {
		published = append(published, body)
		return nil
	})
	j.RelayOutbox(context.Background())

	assert.Len(t, published, 2)
	pending, err := store.FindPendingInstructions(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRelayOutboxKeepsUnpublished(t *testing.T) {
	svc, store, _ := setupServices(t)
	bond(t, svc, 100)

	j := jobs.New(svc, func(ctx context.Context, body string) error {
		return errors.New("broker unavailable")
	})
	j.RelayOutbox(context.Background())

	pending, err := store.FindPendingInstructions(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestCheckSlashingPersistsWriteDown(t *testing.T) {
	svc, store, chain := setupServices(t)
	bondAndSettle(t, svc, store, chain, 1000)
	chain.SetDelegation("val1", 950)

	jobs.New(svc, nil).CheckSlashing(context.Background())

	var state *ledger.State
	require.NoError(t, store.RunInTx(context.Background(), func(ctx context.Context, s db.HubStore) error {
		var err error
		state, err = s.GetState(ctx)
		return err
	}))
	assert.Equal(t, sdkmath.NewInt(950), state.TotalBonded)
	assert.True(t, state.ExchangeRate.Equal(sdkmath.LegacyMustNewDecFromStr("0.95")))
}

func TestCheckSlashingIgnoresUnexecutedBonds(t *testing.T) {
	svc, store, chain := setupServices(t)
	bondAndSettle(t, svc, store, chain, 1000)
	bond(t, svc, 500)

	jobs.New(svc, nil).CheckSlashing(context.Background())

	state, err := svc.GetState(context.Background())
	require.Nil(t, err)
	assert.Equal(t, "1500", state.TotalBonded)
	assert.Equal(t, "1.000000000000000000", state.ExchangeRate)
}

func TestStartStopsWithContext(t *testing.T) {
	svc, _, _ := setupServices(t)
	ctx, cancel := context.WithCancel(context.Background())

	j := jobs.New(svc, func(ctx context.Context, body string) error { return nil })
	require.NoError(t, j.Start(ctx, config.JobsConfig{OutboxRelayInterval: 5, CheckSlashingInterval: 0}))
	cancel()
}
