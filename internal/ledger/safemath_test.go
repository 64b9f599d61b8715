package ledger

import (
	"math/big"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func maxInt() sdkmath.Int {
	v := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), sdkmath.MaxBitLen), big.NewInt(1))
	return sdkmath.NewIntFromBigInt(v)
}

func TestCheckedArithmetic(t *testing.T) {
	sum, err := checkedAdd(sdkmath.NewInt(2), sdkmath.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, sdkmath.NewInt(5), sum)

	_, err = checkedAdd(maxInt(), sdkmath.OneInt())
	require.ErrorIs(t, err, ErrOverflow)

	diff, err := checkedSub(sdkmath.NewInt(5), sdkmath.NewInt(5))
	require.NoError(t, err)
	assert.True(t, diff.IsZero())

	_, err = checkedSub(sdkmath.NewInt(4), sdkmath.NewInt(5))
	require.ErrorIs(t, err, ErrOverflow)

	assert.True(t, saturatingSub(sdkmath.NewInt(4), sdkmath.NewInt(5)).IsZero())
	assert.Equal(t, sdkmath.NewInt(1), saturatingSub(sdkmath.NewInt(5), sdkmath.NewInt(4)))
}

func TestRateConversionsTruncate(t *testing.T) {
	minted, err := quoTruncateInt(sdkmath.NewInt(10), sdkmath.LegacyMustNewDecFromStr("3"))
	require.NoError(t, err)
	assert.Equal(t, sdkmath.NewInt(3), minted)

	owed, err := mulTruncateInt(sdkmath.NewInt(7), sdkmath.LegacyMustNewDecFromStr("0.9"))
	require.NoError(t, err)
	assert.Equal(t, sdkmath.NewInt(6), owed)

	_, err = quoTruncateInt(sdkmath.NewInt(10), sdkmath.LegacyZeroDec())
	require.ErrorIs(t, err, ErrOverflow)

	_, err = mulTruncateInt(maxInt(), sdkmath.LegacyMustNewDecFromStr("2"))
	require.ErrorIs(t, err, ErrOverflow)

	r, err := ratio(sdkmath.NewInt(2), sdkmath.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, "0.666666666666666666", r.String())

	_, err = ratio(sdkmath.NewInt(2), sdkmath.ZeroInt())
	require.ErrorIs(t, err, ErrOverflow)
}

func TestUpdateExchangeRate(t *testing.T) {
	tests := []struct {
		name      string
		bonded    int64
		issued    int64
		requested int64
		expected  string
	}{
		{"nothing bonded", 0, 100, 0, "1"},
		{"nothing issued", 100, 0, 0, "1"},
		{"par", 1000, 1000, 0, "1"},
		{"requested counts as supply", 900, 800, 200, "0.9"},
		{"rewards", 1100, 1000, 0, "1.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewGenesisState(0)
			s.TotalBonded = sdkmath.NewInt(tt.bonded)
			require.NoError(t, s.UpdateExchangeRate(sdkmath.NewInt(tt.issued), sdkmath.NewInt(tt.requested)))
			assert.True(t, s.ExchangeRate.Equal(sdkmath.LegacyMustNewDecFromStr(tt.expected)),
				"got %s", s.ExchangeRate)
		})
	}
}

func TestEpochAndMaturity(t *testing.T) {
	assert.False(t, epochElapsed(100, 129, 30))
	assert.True(t, epochElapsed(100, 130, 30))
	assert.False(t, epochElapsed(100, 90, 30))

	assert.False(t, matured(100, 199, 100))
	assert.True(t, matured(100, 200, 100))
	assert.False(t, matured(0, 50, 100))
}
