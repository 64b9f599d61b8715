package registry

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validatorSet(amounts map[string]int64) []Validator {
	var vals []Validator
	for addr, amt := range amounts {
		vals = append(vals, Validator{Address: addr, TotalDelegated: sdkmath.NewInt(amt)})
	}
	return vals
}

func toMap(allocs []Allocation) map[string]int64 {
	m := make(map[string]int64)
	for _, a := range allocs {
		m[a.Validator] = a.Amount.Int64()
	}
	return m
}

func TestCalculateUndelegationsDrawsDownLargestFirst(t *testing.T) {
	vals := validatorSet(map[string]int64{"val1": 10, "val2": 150, "val3": 200})

	allocs, err := CalculateUndelegations(sdkmath.NewInt(150), vals)
	require.NoError(t, err)
	require.Len(t, allocs, 2)
	assert.Equal(t, "val3", allocs[0].Validator)
	assert.Equal(t, map[string]int64{"val3": 130, "val2": 20}, toMap(allocs))
}

func TestCalculateUndelegationsSingleValidator(t *testing.T) {
	vals := validatorSet(map[string]int64{"val1": 1000})

	allocs, err := CalculateUndelegations(sdkmath.NewInt(8), vals)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"val1": 8}, toMap(allocs))
}

func TestCalculateUndelegationsExceedingStake(t *testing.T) {
	vals := validatorSet(map[string]int64{"val1": 10, "val2": 20})

	_, err := CalculateUndelegations(sdkmath.NewInt(31), vals)
	require.ErrorIs(t, err, ErrInsufficientStake)
}

func TestCalculateUndelegationsFullWithdrawal(t *testing.T) {
	vals := validatorSet(map[string]int64{"val1": 10, "val2": 20, "val3": 7})

	allocs, err := CalculateUndelegations(sdkmath.NewInt(37), vals)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"val1": 10, "val2": 20, "val3": 7}, toMap(allocs))
}

func TestCalculateDelegationsEqualizes(t *testing.T) {
	vals := validatorSet(map[string]int64{"val1": 0, "val2": 100, "val3": 300})

	allocs, err := CalculateDelegations(sdkmath.NewInt(200), vals)
	require.NoError(t, err)
	// target is (400 + 200) / 3 = 200 each
	assert.Equal(t, map[string]int64{"val1": 200}, toMap(allocs))

	allocs, err = CalculateDelegations(sdkmath.NewInt(500), vals)
	require.NoError(t, err)
	// target is 900 / 3 = 300 each
	assert.Equal(t, map[string]int64{"val1": 300, "val2": 200}, toMap(allocs))
}

func TestCalculateDelegationsRemainder(t *testing.T) {
	vals := validatorSet(map[string]int64{"val1": 0, "val2": 0, "val3": 0})

	allocs, err := CalculateDelegations(sdkmath.NewInt(10), vals)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"val1": 4, "val2": 3, "val3": 3}, toMap(allocs))

	sum := sdkmath.ZeroInt()
	for _, a := range allocs {
		sum = sum.Add(a.Amount)
	}
	assert.Equal(t, int64(10), sum.Int64())
}

func TestCalculateDelegationsRejectsEmptySet(t *testing.T) {
	_, err := CalculateDelegations(sdkmath.NewInt(10), nil)
	require.ErrorIs(t, err, ErrNoValidators)

	_, err = CalculateUndelegations(sdkmath.NewInt(10), nil)
	require.ErrorIs(t, err, ErrNoValidators)
}

func TestCalculateRejectsNonPositiveAmount(t *testing.T) {
	vals := validatorSet(map[string]int64{"val1": 10})

	_, err := CalculateDelegations(sdkmath.ZeroInt(), vals)
	require.ErrorIs(t, err, ErrNonPositiveAmount)

	_, err = CalculateUndelegations(sdkmath.ZeroInt(), vals)
	require.ErrorIs(t, err, ErrNonPositiveAmount)
}
