// Package registry apportions delegate and undelegate amounts across a
// validator set so that delegations converge towards an even split.
package registry

import (
	"errors"
	"fmt"
	"sort"

	sdkmath "cosmossdk.io/math"
)

var (
	ErrNoValidators       = errors.New("validator set is empty")
	ErrInsufficientStake  = errors.New("undelegation exceeds the total delegated amount")
	ErrNonPositiveAmount  = errors.New("amount must be positive")
	errUnallocatedRemnant = errors.New("amount could not be fully allocated")
)

type Validator struct {
	Address        string      `json:"address"`
	TotalDelegated sdkmath.Int `json:"total_delegated"`
}

// Allocation is the share of an amount assigned to one validator.
type Allocation struct {
	Validator string
	Amount    sdkmath.Int
}

// CalculateDelegations splits amount so that every validator moves towards
// (total delegated + amount) / n. Validators already above the target get
// nothing. Least-delegated validators are filled first and receive the
// remainder of the integer division. Zero allocations are omitted.
func CalculateDelegations(amount sdkmath.Int, validators []Validator) ([]Allocation, error) {
	if len(validators) == 0 {
		return nil, ErrNoValidators
	}
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	sorted := sortValidators(validators, true)
	total := sumDelegated(sorted).Add(amount)
	n := sdkmath.NewInt(int64(len(sorted)))
	perValidator := total.Quo(n)
	extra := total.Mod(n)

	remaining := amount
	allocations := make([]Allocation, 0, len(sorted))
	for i, v := range sorted {
		target := perValidator
		if sdkmath.NewInt(int64(i)).LT(extra) {
			target = target.AddRaw(1)
		}
		if target.LTE(v.TotalDelegated) {
			continue
		}
		toDelegate := sdkmath.MinInt(target.Sub(v.TotalDelegated), remaining)
		allocations = append(allocations, Allocation{Validator: v.Address, Amount: toDelegate})
		remaining = remaining.Sub(toDelegate)
		if remaining.IsZero() {
			break
		}
	}
	if !remaining.IsZero() {
		return nil, fmt.Errorf("%w: %s left", errUnallocatedRemnant, remaining)
	}
	return allocations, nil
}

// CalculateUndelegations draws amount down from the most-delegated
// validators first, taking from each only its excess over
// (total delegated - amount) / n and splitting the deficit across the next
// validator when one cannot cover it. Zero allocations are omitted.
func CalculateUndelegations(amount sdkmath.Int, validators []Validator) ([]Allocation, error) {
	if len(validators) == 0 {
		return nil, ErrNoValidators
	}
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	sorted := sortValidators(validators, false)
	total := sumDelegated(sorted)
	if total.LT(amount) {
		return nil, fmt.Errorf("%w: want %s, have %s", ErrInsufficientStake, amount, total)
	}
	target := total.Sub(amount).Quo(sdkmath.NewInt(int64(len(sorted))))

	remaining := amount
	allocations := make([]Allocation, 0, len(sorted))
	for _, v := range sorted {
		if v.TotalDelegated.LTE(target) {
			continue
		}
		toUndelegate := sdkmath.MinInt(v.TotalDelegated.Sub(target), remaining)
		allocations = append(allocations, Allocation{Validator: v.Address, Amount: toUndelegate})
		remaining = remaining.Sub(toUndelegate)
		if remaining.IsZero() {
			break
		}
	}
	if !remaining.IsZero() {
		return nil, fmt.Errorf("%w: %s left", errUnallocatedRemnant, remaining)
	}
	return allocations, nil
}

func sumDelegated(validators []Validator) sdkmath.Int {
	total := sdkmath.ZeroInt()
	for _, v := range validators {
		total = total.Add(v.TotalDelegated)
	}
	return total
}

// sortValidators copies validators ordered by delegated amount, ties broken
// by address so that the split is deterministic.
func sortValidators(validators []Validator, ascending bool) []Validator {
	sorted := make([]Validator, len(validators))
	copy(sorted, validators)
	for i := range sorted {
		if sorted[i].TotalDelegated.IsNil() {
			sorted[i].TotalDelegated = sdkmath.ZeroInt()
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].TotalDelegated, sorted[j].TotalDelegated
		if !a.Equal(b) {
			if ascending {
				return a.LT(b)
			}
			return a.GT(b)
		}
		return sorted[i].Address < sorted[j].Address
	})
	return sorted
}
