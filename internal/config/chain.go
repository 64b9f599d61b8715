package config

import (
	"errors"
	"net/url"
)

// ChainConfig points at the LCD REST endpoint the hub queries.
type ChainConfig struct {
	Host string `mapstructure:"host"`
	// Timeout of a single LCD request in milliseconds.
	Timeout    int    `mapstructure:"timeout"`
	HubAddress string `mapstructure:"hub-address"`
}

func (cfg *ChainConfig) Validate() error {
	if cfg.Host == "" {
		return errors.New("host cannot be empty")
	}

	if cfg.Timeout <= 0 {
		return errors.New("timeout cannot be smaller or equal to 0")
	}

	if cfg.HubAddress == "" {
		return errors.New("hub address cannot be empty")
	}

	parsedURL, err := url.ParseRequestURI(cfg.Host)
	if err != nil {
		return errors.New("invalid chain lcd host")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("host must start with http or https")
	}

	return nil
}
