package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/babylonchain/staking-hub-service/internal/ledger"
	"github.com/babylonchain/staking-hub-service/internal/services"
	"github.com/babylonchain/staking-hub-service/internal/types"
)

// CallRequestPayload is the common body of every state-changing route.
// The caller is authenticated by the route, the block time is always the
// service clock.
type CallRequestPayload struct {
	Sender string        `json:"sender"`
	Funds  []ledger.Coin `json:"funds,omitempty"`
}

func (p CallRequestPayload) call() services.Call {
	return services.Call{Sender: p.Sender, Funds: p.Funds}
}

func (p CallRequestPayload) validate() *types.Error {
	if p.Sender == "" {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "sender is required")
	}
	for _, coin := range p.Funds {
		if coin.Denom == "" || coin.Amount.IsNil() {
			return types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid funds")
		}
	}
	return nil
}

type validatable interface {
	validate() *types.Error
}

func parsePayload[T validatable](request *http.Request) (T, *types.Error) {
	var payload T
	if err := json.NewDecoder(request.Body).Decode(&payload); err != nil {
		return payload, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid request payload")
	}
	if err := payload.validate(); err != nil {
		return payload, err
	}
	return payload, nil
}

func parseAddressQuery(request *http.Request) (string, *types.Error) {
	address := request.URL.Query().Get("address")
	if address == "" {
		return "", types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "address is required")
	}
	return address, nil
}

func parseUintQuery(request *http.Request, name string) (uint64, *types.Error) {
	str := request.URL.Query().Get(name)
	if str == "" {
		return 0, nil
	}
	value, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid "+name)
	}
	return value, nil
}
