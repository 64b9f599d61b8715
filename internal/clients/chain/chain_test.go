package chain_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babylonchain/staking-hub-service/internal/clients/chain"
	"github.com/babylonchain/staking-hub-service/internal/config"
	"github.com/babylonchain/staking-hub-service/internal/ledger"
	"github.com/babylonchain/staking-hub-service/internal/types"
)

const smartPrefix = "/cosmwasm/wasm/v1/contract/"

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// fakeLCD serves the subset of LCD routes the hub queries.
func fakeLCD(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc(smartPrefix, func(w http.ResponseWriter, r *http.Request) {
		parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, smartPrefix), "/smart/", 2)
		require.Len(t, parts, 2)
		raw, err := base64.StdEncoding.DecodeString(parts[1])
		require.NoError(t, err)
		var query map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &query))

		switch {
		case parts[0] == "token" && query["token_info"] != nil:
			writeJSON(w, map[string]any{"data": map[string]any{
				"name": "staked atom", "symbol": "statom", "decimals": 6, "total_supply": "123456789",
			}})
		case parts[0] == "token" && query["balance"] != nil:
			var q struct {
				Address string `json:"address"`
			}
			require.NoError(t, json.Unmarshal(query["balance"], &q))
			writeJSON(w, map[string]any{"data": map[string]string{"balance": map[string]string{"alice": "42"}[q.Address]}})
		case parts[0] == "registry" && query["get_validators_for_delegation"] != nil:
			writeJSON(w, map[string]any{"data": []map[string]string{
				{"address": "val1", "total_delegated": "100"},
				{"address": "val2", "total_delegated": "0"},
			}})
		default:
			http.Error(w, "unknown query", http.StatusBadRequest)
		}
	})
	mux.HandleFunc("/cosmos/staking/v1beta1/delegations/hub", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pagination.key") == "" {
			writeJSON(w, map[string]any{
				"delegation_responses": []map[string]any{{
					"delegation": map[string]string{"delegator_address": "hub", "validator_address": "val1"},
					"balance":    map[string]string{"denom": "uatom", "amount": "100"},
				}},
				"pagination": map[string]string{"next_key": "page/2=="},
			})
			return
		}
		assert.Equal(t, "page/2==", r.URL.Query().Get("pagination.key"))
		writeJSON(w, map[string]any{
			"delegation_responses": []map[string]any{{
				"delegation": map[string]string{"delegator_address": "hub", "validator_address": "val2"},
				"balance":    map[string]string{"denom": "uatom", "amount": "50"},
			}},
			"pagination": map[string]any{"next_key": nil},
		})
	})
	mux.HandleFunc("/cosmos/bank/v1beta1/balances/hub/by_denom", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "uatom", r.URL.Query().Get("denom"))
		writeJSON(w, map[string]any{"balance": map[string]string{"denom": "uatom", "amount": "900"}})
	})
	mux.HandleFunc("/cosmos/bank/v1beta1/balances/broken/by_denom", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/cosmos/bank/v1beta1/balances/invalid/by_denom", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 3, "message": "decoding bech32 failed"})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newClient(t *testing.T) *chain.ChainClient {
	server := fakeLCD(t)
	return chain.NewChainClient(&config.ChainConfig{
		Host:       server.URL,
		Timeout:    1000,
		HubAddress: "hub",
	})
}

func TestTokenQueries(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	supply, err := c.TokenSupply(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, sdkmath.NewInt(123456789), supply)

	balance, err := c.TokenBalance(ctx, "token", "alice")
	require.NoError(t, err)
	assert.Equal(t, sdkmath.NewInt(42), balance)

	balance, err = c.TokenBalance(ctx, "token", "nobody")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestValidatorsForDelegation(t *testing.T) {
	c := newClient(t)

	validators, err := c.ValidatorsForDelegation(context.Background(), "registry")
	require.NoError(t, err)
	require.Len(t, validators, 2)
	assert.Equal(t, "val1", validators[0].Address)
	assert.Equal(t, sdkmath.NewInt(100), validators[0].TotalDelegated)
	assert.True(t, validators[1].TotalDelegated.IsZero())
}

func TestAllDelegationsFollowsPagination(t *testing.T) {
	c := newClient(t)

	delegations, err := c.AllDelegations(context.Background(), "hub")
	require.NoError(t, err)
	assert.Equal(t, []ledger.Delegation{
		{Validator: "val1", Amount: ledger.NewCoin("uatom", sdkmath.NewInt(100))},
		{Validator: "val2", Amount: ledger.NewCoin("uatom", sdkmath.NewInt(50))},
	}, delegations)
}

func TestNativeBalance(t *testing.T) {
	c := newClient(t)

	balance, err := c.NativeBalance(context.Background(), "hub", "uatom")
	require.NoError(t, err)
	assert.Equal(t, sdkmath.NewInt(900), balance)
}

func TestServerErrorsAreTyped(t *testing.T) {
	c := newClient(t)

	_, err := c.NativeBalance(context.Background(), "broken", "uatom")
	require.Error(t, err)
	var typed *types.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, types.InternalServiceError, typed.ErrorCode)

	_, err = c.TokenSupply(context.Background(), "unknown")
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, types.BadRequest, typed.ErrorCode)
	assert.Contains(t, typed.Err.Error(), "Bad Request")

	_, err = c.NativeBalance(context.Background(), "invalid", "uatom")
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, http.StatusBadRequest, typed.StatusCode)
	assert.Contains(t, typed.Err.Error(), "decoding bech32 failed")
}

func TestUnreachableHostIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	host := server.URL
	server.Close()

	c := chain.NewChainClient(&config.ChainConfig{Host: host, Timeout: 1000, HubAddress: "hub"})
	_, err := c.NativeBalance(context.Background(), "hub", "uatom")
	var typed *types.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, types.ServiceUnavailable, typed.ErrorCode)
}
