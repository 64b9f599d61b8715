package clients

import (
	"github.com/babylonchain/staking-hub-service/internal/clients/chain"
	"github.com/babylonchain/staking-hub-service/internal/config"
)

type Clients struct {
	Chain *chain.ChainClient
}

func New(cfg *config.Config) *Clients {
	chainClient := chain.NewChainClient(&cfg.Chain)

	return &Clients{
		Chain: chainClient,
	}
}
