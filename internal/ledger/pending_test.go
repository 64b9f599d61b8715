package ledger_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babylonchain/staking-hub-service/internal/ledger"
)

func TestUnexecutedDelegationsAreNotSlashing(t *testing.T) {
	s := newHubSuite(t)

	_, err := s.bond("alice", 1000)
	require.NoError(t, err)

	bob := s.bondPending("bob", 500)
	carol := s.bondPending("carol", 500)
	minted, _ := carol.Attribute("minted")
	assert.Equal(t, "500", minted)

	res, err := s.checkSlashing()
	require.NoError(t, err)
	rate, _ := res.Attribute("new_exchange_rate")
	assert.Equal(t, sdkmath.LegacyOneDec().String(), rate)

	st := s.storedState()
	assert.Equal(t, sdkmath.NewInt(2000), st.TotalBonded)
	assert.True(t, st.ExchangeRate.Equal(sdkmath.LegacyOneDec()))
	assert.Equal(t, sdkmath.NewInt(1000), st.Pending.Delegated)
	assert.Equal(t, sdkmath.NewInt(1000), st.Pending.Minted)

	s.settle(bob)
	s.settle(carol)

	st = s.state()
	assert.Equal(t, sdkmath.NewInt(2000), st.TotalBonded)
	assert.Equal(t, sdkmath.NewInt(2000), st.TotalIssued)
	assert.True(t, st.ExchangeRate.Equal(sdkmath.LegacyOneDec()))
	assert.True(t, s.storedState().Pending.IsZero())
}

func TestSlashingIsDetectedWhileDelegationsArePending(t *testing.T) {
	s := newHubSuite(t)

	_, err := s.bond("alice", 1000)
	require.NoError(t, err)
	s.bondPending("bob", 500)

	s.chain.SetDelegation("val1", 900)
	_, err = s.checkSlashing()
	require.NoError(t, err)

	st := s.storedState()
	assert.Equal(t, sdkmath.NewInt(1400), st.TotalBonded)
	assert.True(t, st.ExchangeRate.Equal(dec("0.933333333333333333")))
}

func TestPendingBurnCannotBeUnbondedTwice(t *testing.T) {
	s := newHubSuite(t)

	_, err := s.bond("alice", 1000)
	require.NoError(t, err)

	s.now = 1010
	first, err := s.unbondPending("alice", 1000)
	require.NoError(t, err)

	_, err = s.unbondPending("alice", 1000)
	require.ErrorIs(t, err, ledger.ErrInsufficientTokenBalance)
	assert.True(t, ledger.IsSolvencyError(err))

	assert.Equal(t, sdkmath.NewInt(1000), s.currentBatch().RequestedAmount)
	st := s.state()
	assert.True(t, st.ExchangeRate.Equal(sdkmath.LegacyOneDec()))
	assert.True(t, st.TotalIssued.IsZero())

	s.settle(first)
	assert.True(t, s.state().ExchangeRate.Equal(sdkmath.LegacyOneDec()))

	_, err = s.unbond("alice", 1)
	require.ErrorIs(t, err, ledger.ErrInsufficientTokenBalance)
}

func TestPendingBurnsAccumulatePerOwner(t *testing.T) {
	s := newHubSuite(t)

	_, err := s.bond("alice", 1000)
	require.NoError(t, err)
	_, err = s.bond("bob", 1000)
	require.NoError(t, err)

	s.now = 1010
	_, err = s.unbondPending("alice", 600)
	require.NoError(t, err)
	_, err = s.unbondPending("alice", 400)
	require.NoError(t, err)
	_, err = s.unbondPending("alice", 1)
	require.ErrorIs(t, err, ledger.ErrInsufficientTokenBalance)

	// another owner's balance is untouched
	_, err = s.unbondPending("bob", 1000)
	require.NoError(t, err)

	st := s.storedState()
	assert.Equal(t, sdkmath.NewInt(2000), st.Pending.Burned)
	assert.True(t, s.state().ExchangeRate.Equal(sdkmath.LegacyOneDec()))
}

func TestConfirmMoreThanPendingFails(t *testing.T) {
	s := newHubSuite(t)

	res, err := s.bond("alice", 1000)
	require.NoError(t, err)
	before := s.storedState()

	err = s.confirm(res)
	require.ErrorIs(t, err, ledger.ErrPendingMismatch)
	assert.True(t, ledger.IsPolicyError(err))

	after := s.storedState()
	assert.True(t, after.Pending.IsZero())
	assert.Equal(t, before.TotalBonded, after.TotalBonded)
}

func TestConfirmIgnoresInstructionsWithoutAmounts(t *testing.T) {
	s := newHubSuite(t)

	_, err := s.bond("alice", 1000)
	require.NoError(t, err)

	res, err := s.execPending(func(hub *ledger.Hub) (*ledger.Response, error) {
		return hub.DispatchRewards(s.ctx, s.env())
	})
	require.NoError(t, err)
	require.Len(t, res.Instructions, 2)

	require.NoError(t, s.run(func(hub *ledger.Hub) error {
		confirmRes, err := hub.ConfirmInstructions(s.ctx, res.Instructions)
		if err != nil {
			return err
		}
		confirmed, _ := confirmRes.Attribute("confirmed")
		assert.Equal(t, "0", confirmed)
		return nil
	}))
	assert.True(t, s.storedState().Pending.IsZero())
}

func TestWithdrawSkipsUndelegatedDeposits(t *testing.T) {
	s := newHubSuite(t)
	closeFirstBatch(t, s, map[string]int64{"alice": 1000})

	s.now = 1040 + unbondingPeriod
	// 900 came back from unbonding, bob's 500 deposit is not delegated yet
	s.bondPending("bob", 500)
	s.chain.Native = sdkmath.NewInt(1400)

	res, err := s.withdraw("alice")
	require.NoError(t, err)
	amount, _ := res.Attribute("amount")
	assert.Equal(t, "900", amount)
	assert.True(t, s.history(1).WithdrawRate.Equal(dec("0.9")))
	assert.True(t, s.storedState().PrevNativeBalance.IsZero())
}

func TestWithdrawFactorUsesExactPromisedAmount(t *testing.T) {
	s := newHubSuite(t)

	_, err := s.bond("alice", 6002)
	require.NoError(t, err)
	s.chain.SetDelegation("val1", 3001)
	_, err = s.checkSlashing()
	require.NoError(t, err)
	require.True(t, s.storedState().ExchangeRate.Equal(dec("0.5")))

	s.now = 1010
	_, err = s.unbond("alice", 3001)
	require.NoError(t, err)
	s.now = 1040
	res, err := s.unbond("alice", 1)
	require.NoError(t, err)
	closed, _ := res.Attribute("closed_batch")
	require.Equal(t, "1", closed)

	// 3001 * 0.5 = 1500.5 is promised, 1500 arrived
	s.now = 1040 + unbondingPeriod
	s.chain.Native = sdkmath.NewInt(1500)

	res, err = s.withdraw("alice")
	require.NoError(t, err)
	amount, _ := res.Attribute("amount")
	assert.Equal(t, "1499", amount)

	hist := s.history(1)
	assert.True(t, hist.WithdrawRate.Equal(dec("0.499833388870376541")))
	assert.True(t, hist.WithdrawRate.MulInt(hist.Amount).LTE(sdkmath.LegacyNewDec(1500)))
	assert.Equal(t, sdkmath.NewInt(1), s.storedState().PrevNativeBalance)
}

func TestWithdrawPayoutsNeverExceedArrivedFunds(t *testing.T) {
	s := newHubSuite(t)

	_, err := s.bond("alice", 3000)
	require.NoError(t, err)
	s.chain.SetDelegation("val1", 2999)
	_, err = s.checkSlashing()
	require.NoError(t, err)

	// three short batches of odd sizes
	for i, amount := range []int64{333, 335, 337} {
		s.now = 1040 + uint64(i)*epochPeriod
		_, err = s.unbond("alice", amount)
		require.NoError(t, err)
	}
	s.now = 1040 + 3*epochPeriod
	_, err = s.unbond("alice", 1)
	require.NoError(t, err)

	s.now += unbondingPeriod
	available := sdkmath.NewInt(1000)
	s.chain.Native = available

	res, err := s.withdraw("alice")
	require.NoError(t, err)
	amount, _ := res.Attribute("amount")
	paid, ok := sdkmath.NewIntFromString(amount)
	require.True(t, ok)
	assert.True(t, paid.LTE(available), "paid %s of %s", paid, available)
	assert.True(t, paid.IsPositive())
}
