package chain

import (
	"net/http"

	"github.com/babylonchain/staking-hub-service/internal/ledger"
)

type ChainClientInterface interface {
	GetBaseURL() string
	GetDefaultRequestTimeout() int
	GetHttpClient() *http.Client
	/*
		The ledger queries are served by the LCD REST endpoints of the bank,
		staking and wasm modules.
		Refer to https://docs.cosmos.network/api
	*/
	ledger.ChainQuerier
}
