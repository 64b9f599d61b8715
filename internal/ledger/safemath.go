package ledger

import (
	"fmt"
	"math/big"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
)

// checkedAdd returns a + b or ErrOverflow when the sum leaves the 256-bit range.
func checkedAdd(a, b sdkmath.Int) (sdkmath.Int, error) {
	sum := new(big.Int).Add(a.BigInt(), b.BigInt())
	if sum.BitLen() > sdkmath.MaxBitLen {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(ErrOverflow, "%s + %s", a, b)
	}
	return sdkmath.NewIntFromBigInt(sum), nil
}

// checkedSub returns a - b or ErrOverflow when b > a. Amounts never go negative.
func checkedSub(a, b sdkmath.Int) (sdkmath.Int, error) {
	if a.LT(b) {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(ErrOverflow, "%s - %s", a, b)
	}
	return a.Sub(b), nil
}

// saturatingSub returns a - b, floored at zero.
func saturatingSub(a, b sdkmath.Int) sdkmath.Int {
	if a.LT(b) {
		return sdkmath.ZeroInt()
	}
	return a.Sub(b)
}

// decMath runs a decimal computation and converts a panic from the decimal
// type (bit length exceeded) into ErrOverflow.
func decMath[T any](op string, fn func() T) (res T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errorsmod.Wrapf(ErrOverflow, "%s: %v", op, r)
		}
	}()
	return fn(), nil
}

// mulTruncateInt returns floor(amount * rate).
func mulTruncateInt(amount sdkmath.Int, rate sdkmath.LegacyDec) (sdkmath.Int, error) {
	return decMath(fmt.Sprintf("%s * %s", amount, rate), func() sdkmath.Int {
		return rate.MulInt(amount).TruncateInt()
	})
}

// quoTruncateInt returns floor(amount / rate). rate must be positive.
func quoTruncateInt(amount sdkmath.Int, rate sdkmath.LegacyDec) (sdkmath.Int, error) {
	if !rate.IsPositive() {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(ErrOverflow, "division by non-positive rate %s", rate)
	}
	return decMath(fmt.Sprintf("%s / %s", amount, rate), func() sdkmath.Int {
		return sdkmath.LegacyNewDecFromInt(amount).QuoTruncate(rate).TruncateInt()
	})
}

// ratio returns num / den truncated to 18 decimals. den must be positive.
func ratio(num, den sdkmath.Int) (sdkmath.LegacyDec, error) {
	if !den.IsPositive() {
		return sdkmath.LegacyZeroDec(), errorsmod.Wrapf(ErrOverflow, "division by %s", den)
	}
	return decMath(fmt.Sprintf("%s / %s", num, den), func() sdkmath.LegacyDec {
		return sdkmath.LegacyNewDecFromInt(num).QuoTruncate(sdkmath.LegacyNewDecFromInt(den))
	})
}
