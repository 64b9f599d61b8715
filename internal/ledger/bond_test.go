package ledger_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babylonchain/staking-hub-service/internal/ledger"
)

func TestInstantiateIsIdempotent(t *testing.T) {
	s := newHubSuite(t)

	err := s.run(func(hub *ledger.Hub) error {
		created, err := hub.Instantiate(s.ctx, s.env(), ledger.InstantiateParams{
			Config:          ledger.HubConfig{Owner: "someone-else"},
			UnderlyingDenom: "uother",
		})
		assert.False(t, created)
		return err
	})
	require.NoError(t, err)

	st := s.storedState()
	assert.True(t, st.ExchangeRate.Equal(sdkmath.LegacyOneDec()))
	assert.Equal(t, genesisTime, st.LastUnbondedTime)
	assert.Equal(t, uint64(0), st.LastProcessedBatch)

	batch := s.currentBatch()
	assert.Equal(t, uint64(1), batch.ID)
	assert.True(t, batch.RequestedAmount.IsZero())
}

func TestBondMintsAtRateOne(t *testing.T) {
	s := newHubSuite(t)

	res, err := s.bond("alice", 10000)
	require.NoError(t, err)

	require.Len(t, res.Instructions, 2)
	assert.Equal(t, ledger.InstructionDelegate, res.Instructions[0].Type)
	assert.Equal(t, "val1", res.Instructions[0].Validator)
	assert.Equal(t, sdkmath.NewInt(10000), res.Instructions[0].Amount.Amount)

	mint := res.Instructions[1]
	assert.Equal(t, ledger.InstructionMint, mint.Type)
	assert.Equal(t, token, mint.Contract)
	assert.Equal(t, "alice", mint.Recipient)
	assert.Equal(t, sdkmath.NewInt(10000), mint.Amount.Amount)

	minted, ok := res.Attribute("minted")
	require.True(t, ok)
	assert.Equal(t, "10000", minted)

	st := s.storedState()
	assert.Equal(t, sdkmath.NewInt(10000), st.TotalBonded)
	assert.True(t, st.ExchangeRate.Equal(sdkmath.LegacyOneDec()))
}

func TestBondSplitsAcrossRegistry(t *testing.T) {
	s := newHubSuite(t, "val1", "val2")

	res, err := s.bond("alice", 1000)
	require.NoError(t, err)

	delegations := instructionsOf(res, ledger.InstructionDelegate)
	require.Len(t, delegations, 2)
	total := sdkmath.ZeroInt()
	for _, d := range delegations {
		assert.Equal(t, sdkmath.NewInt(500), d.Amount.Amount)
		total = total.Add(d.Amount.Amount)
	}
	assert.Equal(t, sdkmath.NewInt(1000), total)
}

func TestSlashingLowersRateAndBondPricesAtIt(t *testing.T) {
	s := newHubSuite(t)

	_, err := s.bond("alice", 1000)
	require.NoError(t, err)

	s.chain.SetDelegation("val1", 900)
	res, err := s.checkSlashing()
	require.NoError(t, err)
	rate, _ := res.Attribute("new_exchange_rate")
	assert.Equal(t, dec("0.9").String(), rate)

	st := s.storedState()
	assert.Equal(t, sdkmath.NewInt(900), st.TotalBonded)
	assert.True(t, st.ExchangeRate.Equal(dec("0.9")))

	res, err = s.bond("bob", 900)
	require.NoError(t, err)
	minted, _ := res.Attribute("minted")
	assert.Equal(t, "1000", minted)

	st = s.state()
	assert.Equal(t, sdkmath.NewInt(1800), st.TotalBonded)
	assert.True(t, st.ExchangeRate.Equal(dec("0.9")))
}

func TestSlashingNeverRaisesBonded(t *testing.T) {
	s := newHubSuite(t)

	_, err := s.bond("alice", 1000)
	require.NoError(t, err)

	s.chain.SetDelegation("val1", 1500)
	_, err = s.checkSlashing()
	require.NoError(t, err)

	st := s.storedState()
	assert.Equal(t, sdkmath.NewInt(1000), st.TotalBonded)
	assert.True(t, st.ExchangeRate.Equal(sdkmath.LegacyOneDec()))
}

func TestSlashingWithoutDelegationsKeepsState(t *testing.T) {
	s := newHubSuite(t)

	res, err := s.checkSlashing()
	require.NoError(t, err)
	rate, _ := res.Attribute("new_exchange_rate")
	assert.Equal(t, sdkmath.LegacyOneDec().String(), rate)
	assert.True(t, s.storedState().TotalBonded.IsZero())
}

func TestSlashingCountsOnlyUnderlyingDenom(t *testing.T) {
	s := newHubSuite(t)

	_, err := s.bond("alice", 1000)
	require.NoError(t, err)

	s.chain.SetDelegation("val1", 900)
	s.chain.Delegations = append(s.chain.Delegations, ledger.Delegation{
		Validator: "val2",
		Amount:    ledger.NewCoin("uother", sdkmath.NewInt(500)),
	})
	_, err = s.checkSlashing()
	require.NoError(t, err)

	st := s.storedState()
	assert.Equal(t, sdkmath.NewInt(900), st.TotalBonded)
	assert.True(t, st.ExchangeRate.Equal(dec("0.9")))
}

func TestSlashingWithOnlyForeignDenomKeepsState(t *testing.T) {
	s := newHubSuite(t)

	_, err := s.bond("alice", 1000)
	require.NoError(t, err)

	s.chain.Delegations = []ledger.Delegation{{
		Validator: "val1",
		Amount:    ledger.NewCoin("uother", sdkmath.NewInt(1000)),
	}}
	_, err = s.checkSlashing()
	require.NoError(t, err)

	st := s.storedState()
	assert.Equal(t, sdkmath.NewInt(1000), st.TotalBonded)
	assert.True(t, st.ExchangeRate.Equal(sdkmath.LegacyOneDec()))
}

func TestQueryStateDoesNotPersist(t *testing.T) {
	s := newHubSuite(t)

	_, err := s.bond("alice", 1000)
	require.NoError(t, err)
	s.chain.SetDelegation("val1", 800)

	st := s.state()
	assert.Equal(t, sdkmath.NewInt(800), st.TotalBonded)
	assert.True(t, st.ExchangeRate.Equal(dec("0.8")))
	assert.Equal(t, sdkmath.NewInt(1000), st.TotalIssued)

	stored := s.storedState()
	assert.Equal(t, sdkmath.NewInt(1000), stored.TotalBonded)
	assert.True(t, stored.ExchangeRate.Equal(sdkmath.LegacyOneDec()))
}

func TestBondRewardsRaisesRate(t *testing.T) {
	s := newHubSuite(t)

	_, err := s.bond("alice", 1000)
	require.NoError(t, err)

	res, err := s.bondRewards(dispatcher, 100)
	require.NoError(t, err)
	assert.Empty(t, instructionsOf(res, ledger.InstructionMint))
	require.Len(t, res.Instructions, 1)
	assert.Equal(t, ledger.InstructionDelegate, res.Instructions[0].Type)

	st := s.storedState()
	assert.Equal(t, sdkmath.NewInt(1100), st.TotalBonded)
	assert.True(t, st.ExchangeRate.Equal(dec("1.1")))

	res, err = s.bond("bob", 110)
	require.NoError(t, err)
	minted, _ := res.Attribute("minted")
	assert.Equal(t, "100", minted)
}

func TestBondRewardsRequiresDispatcher(t *testing.T) {
	s := newHubSuite(t)

	_, err := s.bondRewards("alice", 100)
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
	assert.True(t, ledger.IsPolicyError(err))
}

func TestBondRejectsBadFunds(t *testing.T) {
	s := newHubSuite(t)

	tests := []struct {
		name  string
		funds []ledger.Coin
		err   error
	}{
		{
			name: "multiple coins",
			funds: []ledger.Coin{
				ledger.NewCoin(denom, sdkmath.NewInt(10)),
				ledger.NewCoin("uother", sdkmath.NewInt(10)),
			},
			err: ledger.ErrMultipleCoins,
		},
		{
			name:  "wrong denom",
			funds: []ledger.Coin{ledger.NewCoin("uother", sdkmath.NewInt(10))},
			err:   ledger.ErrNoFunds,
		},
		{
			name:  "zero amount",
			funds: []ledger.Coin{ledger.NewCoin(denom, sdkmath.ZeroInt())},
			err:   ledger.ErrNoFunds,
		},
		{
			name: "no funds",
			err:  ledger.ErrNoFunds,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.exec(func(hub *ledger.Hub) (*ledger.Response, error) {
				return hub.Bond(s.ctx, s.env(), ledger.MessageInfo{Sender: "alice", Funds: tt.funds}, ledger.BondTypeUser)
			})
			require.ErrorIs(t, err, tt.err)
		})
	}
	assert.True(t, s.storedState().TotalBonded.IsZero())
}

func TestBondEmptyRegistryRollsBack(t *testing.T) {
	s := newHubSuite(t)
	s.chain.Registry = nil

	_, err := s.bond("alice", 100)
	require.ErrorIs(t, err, ledger.ErrEmptyRegistry)
	assert.True(t, s.storedState().TotalBonded.IsZero())
}

func TestBondCollaboratorFailure(t *testing.T) {
	s := newHubSuite(t)
	s.chain.Err = errChainDown

	_, err := s.bond("alice", 100)
	require.ErrorIs(t, err, ledger.ErrCollaborator)
	assert.False(t, ledger.IsPolicyError(err))
	assert.False(t, ledger.IsSolvencyError(err))
}

func TestRateIsMonotonicWithoutSlashing(t *testing.T) {
	s := newHubSuite(t)
	prev := s.state().ExchangeRate

	steps := []func() error{
		func() error { _, err := s.bond("alice", 1000); return err },
		func() error { _, err := s.bondRewards(dispatcher, 100); return err },
		func() error { _, err := s.bond("bob", 220); return err },
		func() error { s.now = 1010; _, err := s.unbond("alice", 500); return err },
		func() error { s.now = 1040; _, err := s.unbond("bob", 100); return err },
		func() error { _, err := s.bondRewards(dispatcher, 70); return err },
	}
	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
		rate := s.state().ExchangeRate
		assert.True(t, rate.GTE(prev), "step %d: rate %s dropped below %s", i, rate, prev)
		prev = rate
	}
	assert.True(t, prev.Equal(dec("1.2")))
}
