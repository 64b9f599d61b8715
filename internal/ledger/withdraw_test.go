package ledger_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babylonchain/staking-hub-service/internal/ledger"
)

// closeFirstBatch bonds for every holder, queues their unbond requests in
// batch 1 at t=1010 and closes it at t=1040 with a 1 unit request from bob.
func closeFirstBatch(t *testing.T, s *hubSuite, holders map[string]int64) {
	for user, amount := range holders {
		_, err := s.bond(user, amount)
		require.NoError(t, err)
	}
	_, err := s.bond("bob", 10)
	require.NoError(t, err)

	s.now = 1010
	for user, amount := range holders {
		_, err := s.unbond(user, amount)
		require.NoError(t, err)
	}

	s.now = 1040
	res, err := s.unbond("bob", 1)
	require.NoError(t, err)
	closed, _ := res.Attribute("closed_batch")
	require.Equal(t, "1", closed)
}

func TestWithdrawAppliesShortfallFactor(t *testing.T) {
	s := newHubSuite(t)
	closeFirstBatch(t, s, map[string]int64{"alice": 1000})

	s.now = 1040 + unbondingPeriod
	s.chain.Native = sdkmath.NewInt(900)

	// the query does not know about the shortfall yet
	assert.Equal(t, sdkmath.NewInt(1000), s.withdrawable("alice"))

	res, err := s.withdraw("alice")
	require.NoError(t, err)
	require.Len(t, res.Instructions, 1)
	send := res.Instructions[0]
	assert.Equal(t, ledger.InstructionBankSend, send.Type)
	assert.Equal(t, "alice", send.Recipient)
	assert.Equal(t, ledger.NewCoin(denom, sdkmath.NewInt(900)), *send.Amount)
	settled, _ := res.Attribute("settled_batches")
	assert.Equal(t, "1", settled)

	hist := s.history(1)
	assert.True(t, hist.Released)
	assert.True(t, hist.WithdrawRate.Equal(dec("0.9")))
	assert.True(t, hist.WithdrawRate.LTE(hist.AppliedExchangeRate))

	assert.True(t, s.storedState().PrevNativeBalance.IsZero())
	assert.True(t, s.withdrawable("alice").IsZero())
	assert.Empty(t, s.unbondRequests("alice"))

	_, err = s.withdraw("alice")
	require.ErrorIs(t, err, ledger.ErrNotYetWithdrawable)
}

func TestWithdrawFullyFundedBatch(t *testing.T) {
	s := newHubSuite(t)
	closeFirstBatch(t, s, map[string]int64{"alice": 1000})

	s.now = 1040 + unbondingPeriod
	s.chain.Native = sdkmath.NewInt(1200)

	res, err := s.withdraw("alice")
	require.NoError(t, err)
	amount, _ := res.Attribute("amount")
	assert.Equal(t, "1000", amount)

	hist := s.history(1)
	assert.True(t, hist.WithdrawRate.Equal(hist.AppliedExchangeRate))
	assert.Equal(t, sdkmath.NewInt(200), s.storedState().PrevNativeBalance)
}

func TestWithdrawReleaseIsIdempotent(t *testing.T) {
	s := newHubSuite(t)
	closeFirstBatch(t, s, map[string]int64{"alice": 600, "carol": 400})

	s.now = 1040 + unbondingPeriod
	s.chain.Native = sdkmath.NewInt(900)

	res, err := s.withdraw("alice")
	require.NoError(t, err)
	amount, _ := res.Attribute("amount")
	assert.Equal(t, "540", amount)
	assert.Equal(t, sdkmath.NewInt(360), s.storedState().PrevNativeBalance)

	res, err = s.withdraw("carol")
	require.NoError(t, err)
	amount, _ = res.Attribute("amount")
	assert.Equal(t, "360", amount)
	settled, _ := res.Attribute("settled_batches")
	assert.Equal(t, "0", settled)

	hist := s.history(1)
	assert.True(t, hist.WithdrawRate.Equal(dec("0.9")))
	assert.True(t, s.storedState().PrevNativeBalance.IsZero())
	assert.True(t, s.chain.Native.IsZero())
}

func TestWithdrawBeforeMaturity(t *testing.T) {
	s := newHubSuite(t)
	closeFirstBatch(t, s, map[string]int64{"alice": 1000})

	s.now = 1040 + unbondingPeriod - 1
	s.chain.Native = sdkmath.NewInt(1000)

	assert.True(t, s.withdrawable("alice").IsZero())
	_, err := s.withdraw("alice")
	require.ErrorIs(t, err, ledger.ErrNotYetWithdrawable)
	assert.True(t, ledger.IsSolvencyError(err))
	assert.False(t, s.history(1).Released)
}

func TestWithdrawWithoutArrivedFunds(t *testing.T) {
	s := newHubSuite(t)
	closeFirstBatch(t, s, map[string]int64{"alice": 1000})

	s.now = 1040 + unbondingPeriod

	_, err := s.withdraw("alice")
	require.ErrorIs(t, err, ledger.ErrNotYetWithdrawable)
	assert.False(t, s.history(1).Released)
}

func TestWithdrawWithoutEntriesRollsBackRelease(t *testing.T) {
	s := newHubSuite(t)
	closeFirstBatch(t, s, map[string]int64{"alice": 1000})

	s.now = 1040 + unbondingPeriod
	s.chain.Native = sdkmath.NewInt(900)

	_, err := s.withdraw("carol")
	require.ErrorIs(t, err, ledger.ErrNoWithdrawableAssets)
	assert.False(t, s.history(1).Released)

	// bob's request sits in the open batch
	_, err = s.withdraw("bob")
	require.ErrorIs(t, err, ledger.ErrNoWithdrawableAssets)
}

func TestWithdrawWhilePaused(t *testing.T) {
	s := newHubSuite(t)
	_, err := s.exec(func(hub *ledger.Hub) (*ledger.Response, error) {
		return hub.Pause(s.ctx, ledger.MessageInfo{Sender: "guardian"})
	})
	require.NoError(t, err)

	_, err = s.withdraw("alice")
	require.ErrorIs(t, err, ledger.ErrPaused)
}
