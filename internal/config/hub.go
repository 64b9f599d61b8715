package config

import (
	"errors"
	"fmt"
)

// HubConfig holds the genesis values written when the ledger is first
// instantiated. Later changes go through the admin routes.
type HubConfig struct {
	UnderlyingDenom    string   `mapstructure:"underlying-denom"`
	EpochPeriod        uint64   `mapstructure:"epoch-period"`
	UnbondingPeriod    uint64   `mapstructure:"unbonding-period"`
	Owner              string   `mapstructure:"owner"`
	RewardsDispatcher  string   `mapstructure:"rewards-dispatcher"`
	TokenContract      string   `mapstructure:"token-contract"`
	ValidatorsRegistry string   `mapstructure:"validators-registry"`
	Guardians          []string `mapstructure:"guardians"`
}

func (cfg *HubConfig) Validate() error {
	if cfg.UnderlyingDenom == "" {
		return errors.New("underlying denom cannot be empty")
	}

	if cfg.Owner == "" {
		return errors.New("owner cannot be empty")
	}

	if cfg.EpochPeriod == 0 {
		return errors.New("epoch period must be positive")
	}

	if cfg.UnbondingPeriod < cfg.EpochPeriod {
		return fmt.Errorf("unbonding period %d must not be shorter than the epoch period %d",
			cfg.UnbondingPeriod, cfg.EpochPeriod)
	}

	return nil
}
