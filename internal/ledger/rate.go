package ledger

import (
	sdkmath "cosmossdk.io/math"
)

// NewGenesisState returns the ledger state of a freshly instantiated hub.
func NewGenesisState(blockTime uint64) *State {
	return &State{
		ExchangeRate:      sdkmath.LegacyOneDec(),
		TotalBonded:       sdkmath.ZeroInt(),
		TotalIssued:       sdkmath.ZeroInt(),
		PrevNativeBalance: sdkmath.ZeroInt(),
		LastUnbondedTime:  blockTime,
		Pending:           NewPendingEffects(),
	}
}

// UpdateExchangeRate sets the rate to TotalBonded / (totalIssued + requested).
// The rate falls back to one when either side is zero.
func (s *State) UpdateExchangeRate(totalIssued, requested sdkmath.Int) error {
	actualSupply, err := checkedAdd(totalIssued, requested)
	if err != nil {
		return err
	}
	if s.TotalBonded.IsZero() || actualSupply.IsZero() {
		s.ExchangeRate = sdkmath.LegacyOneDec()
		return nil
	}
	rate, err := ratio(s.TotalBonded, actualSupply)
	if err != nil {
		return err
	}
	s.ExchangeRate = rate
	return nil
}
