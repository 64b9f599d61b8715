package chain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	sdkmath "cosmossdk.io/math"

	baseclient "github.com/babylonchain/staking-hub-service/internal/clients/base"
	"github.com/babylonchain/staking-hub-service/internal/config"
	"github.com/babylonchain/staking-hub-service/internal/ledger"
	"github.com/babylonchain/staking-hub-service/internal/types"
)

type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

type DelegationResponse struct {
	Delegation struct {
		DelegatorAddress string `json:"delegator_address"`
		ValidatorAddress string `json:"validator_address"`
	} `json:"delegation"`
	Balance Coin `json:"balance"`
}

type PageResponse struct {
	NextKey string `json:"next_key"`
}

// Refer to https://docs.cosmos.network/api#tag/Query/operation/DelegatorDelegations
type DelegationsResponse struct {
	DelegationResponses []DelegationResponse `json:"delegation_responses"`
	Pagination          PageResponse         `json:"pagination"`
}

type BalanceResponse struct {
	Balance Coin `json:"balance"`
}

type SmartQueryResponse[T any] struct {
	Data T `json:"data"`
}

type TokenInfoResponse struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	TotalSupply string `json:"total_supply"`
}

type TokenBalanceResponse struct {
	Balance string `json:"balance"`
}

type RegistryValidator struct {
	Address        string `json:"address"`
	TotalDelegated string `json:"total_delegated"`
}

type ChainClient struct {
	config        *config.ChainConfig
	httpClient    *http.Client
	defaultHeader map[string]string
}

var _ ChainClientInterface = (*ChainClient)(nil)

func NewChainClient(config *config.ChainConfig) *ChainClient {
	httpClient := &http.Client{}
	defaultHeader := map[string]string{
		"Accept": "application/json",
	}
	return &ChainClient{
		config,
		httpClient,
		defaultHeader,
	}
}

// Necessary for the BaseClient interface
func (c *ChainClient) GetBaseURL() string {
	return c.config.Host
}

func (c *ChainClient) GetDefaultRequestTimeout() int {
	return c.config.Timeout
}

func (c *ChainClient) GetHttpClient() *http.Client {
	return c.httpClient
}

func (c *ChainClient) get(path string, query url.Values) *baseclient.BaseClientOptions {
	return &baseclient.BaseClientOptions{
		Path:    path,
		Query:   query,
		Headers: c.defaultHeader,
	}
}

// smartQuery runs a wasm smart query against contract and decodes its data.
func smartQuery[R any](ctx context.Context, c *ChainClient, contract string, query any) (*R, *types.Error) {
	msg, err := json.Marshal(query)
	if err != nil {
		return nil, types.NewInternalServiceError(err)
	}
	path := fmt.Sprintf(
		"/cosmwasm/wasm/v1/contract/%s/smart/%s",
		contract, url.PathEscape(base64.StdEncoding.EncodeToString(msg)),
	)
	resp, typedErr := baseclient.SendRequest[any, SmartQueryResponse[R]](
		ctx, c, http.MethodGet, c.get(path, nil), nil,
	)
	if typedErr != nil {
		return nil, typedErr
	}
	return &resp.Data, nil
}

func parseAmount(raw string) (sdkmath.Int, error) {
	if raw == "" {
		return sdkmath.ZeroInt(), nil
	}
	amount, ok := sdkmath.NewIntFromString(raw)
	if !ok || amount.IsNegative() {
		return sdkmath.ZeroInt(), fmt.Errorf("invalid amount %q", raw)
	}
	return amount, nil
}

func (c *ChainClient) TokenSupply(ctx context.Context, tokenContract string) (sdkmath.Int, error) {
	resp, err := smartQuery[TokenInfoResponse](ctx, c, tokenContract, map[string]any{
		"token_info": struct{}{},
	})
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return parseAmount(resp.TotalSupply)
}

func (c *ChainClient) TokenBalance(ctx context.Context, tokenContract, address string) (sdkmath.Int, error) {
	resp, err := smartQuery[TokenBalanceResponse](ctx, c, tokenContract, map[string]any{
		"balance": map[string]string{"address": address},
	})
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return parseAmount(resp.Balance)
}

func (c *ChainClient) ValidatorsForDelegation(ctx context.Context, registryContract string) ([]ledger.Validator, error) {
	resp, err := smartQuery[[]RegistryValidator](ctx, c, registryContract, map[string]any{
		"get_validators_for_delegation": struct{}{},
	})
	if err != nil {
		return nil, err
	}
	validators := make([]ledger.Validator, 0, len(*resp))
	for _, v := range *resp {
		delegated, parseErr := parseAmount(v.TotalDelegated)
		if parseErr != nil {
			return nil, parseErr
		}
		validators = append(validators, ledger.Validator{Address: v.Address, TotalDelegated: delegated})
	}
	return validators, nil
}

// AllDelegations follows the pagination of the staking module until the
// last page.
func (c *ChainClient) AllDelegations(ctx context.Context, delegator string) ([]ledger.Delegation, error) {
	var delegations []ledger.Delegation
	path := fmt.Sprintf("/cosmos/staking/v1beta1/delegations/%s", delegator)
	query := url.Values{}
	for {
		resp, err := baseclient.SendRequest[any, DelegationsResponse](
			ctx, c, http.MethodGet, c.get(path, query), nil,
		)
		if err != nil {
			return nil, err
		}
		for _, d := range resp.DelegationResponses {
			amount, parseErr := parseAmount(d.Balance.Amount)
			if parseErr != nil {
				return nil, parseErr
			}
			delegations = append(delegations, ledger.Delegation{
				Validator: d.Delegation.ValidatorAddress,
				Amount:    ledger.NewCoin(d.Balance.Denom, amount),
			})
		}
		if resp.Pagination.NextKey == "" {
			return delegations, nil
		}
		query.Set("pagination.key", resp.Pagination.NextKey)
	}
}

func (c *ChainClient) NativeBalance(ctx context.Context, address, denom string) (sdkmath.Int, error) {
	path := fmt.Sprintf("/cosmos/bank/v1beta1/balances/%s/by_denom", address)
	resp, err := baseclient.SendRequest[any, BalanceResponse](
		ctx, c, http.MethodGet, c.get(path, url.Values{"denom": {denom}}), nil,
	)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return parseAmount(resp.Balance.Amount)
}
