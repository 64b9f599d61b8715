package config

import (
	"errors"
)

// JobsConfig holds the intervals, in seconds, of the background cron jobs.
type JobsConfig struct {
	OutboxRelayInterval   int `mapstructure:"outbox-relay-interval"`
	CheckSlashingInterval int `mapstructure:"check-slashing-interval"`
}

func (cfg *JobsConfig) Validate() error {
	if cfg.OutboxRelayInterval <= 0 {
		return errors.New("outbox relay interval must be a positive integer")
	}

	// 0 disables the periodic reconciliation
	if cfg.CheckSlashingInterval < 0 {
		return errors.New("check slashing interval cannot be negative")
	}

	return nil
}
