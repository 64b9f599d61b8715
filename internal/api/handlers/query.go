package handlers

import (
	"net/http"

	"github.com/babylonchain/staking-hub-service/internal/db/model"
	"github.com/babylonchain/staking-hub-service/internal/types"
)

// GetState godoc
// @Summary Get the ledger state
// @Description Returns the state reconciled against the chain. Nothing is persisted.
// @Produce json
// @Success 200 {object} PublicResponse[services.StatePublic] "Ledger state"
// @Router /v1/state [get]
func (h *Handler) GetState(request *http.Request) (*Result, *types.Error) {
	state, err := h.services.GetState(request.Context())
	if err != nil {
		return nil, err
	}
	return NewResult(state), nil
}

// GetCurrentBatch godoc
// @Summary Get the open unbond batch
// @Produce json
// @Success 200 {object} PublicResponse[services.CurrentBatchPublic] "Current batch"
// @Router /v1/current-batch [get]
func (h *Handler) GetCurrentBatch(request *http.Request) (*Result, *types.Error) {
	batch, err := h.services.GetCurrentBatch(request.Context())
	if err != nil {
		return nil, err
	}
	return NewResult(batch), nil
}

// GetParameters godoc
// @Summary Get hub parameters
// @Produce json
// @Success 200 {object} PublicResponse[ledger.Parameters] "Parameters"
// @Router /v1/parameters [get]
func (h *Handler) GetParameters(request *http.Request) (*Result, *types.Error) {
	params, err := h.services.GetParameters(request.Context())
	if err != nil {
		return nil, err
	}
	return NewResult(params), nil
}

// GetConfig godoc
// @Summary Get hub config
// @Produce json
// @Success 200 {object} PublicResponse[ledger.HubConfig] "Config"
// @Router /v1/config [get]
func (h *Handler) GetConfig(request *http.Request) (*Result, *types.Error) {
	cfg, err := h.services.GetConfig(request.Context())
	if err != nil {
		return nil, err
	}
	return NewResult(cfg), nil
}

// GetGuardians godoc
// @Summary List guardians
// @Produce json
// @Success 200 {object} PublicResponse[[]string] "Guardian addresses"
// @Router /v1/guardians [get]
func (h *Handler) GetGuardians(request *http.Request) (*Result, *types.Error) {
	guardians, err := h.services.GetGuardians(request.Context())
	if err != nil {
		return nil, err
	}
	return NewResult(guardians), nil
}

// GetUnbondRequests godoc
// @Summary List pending unbond requests of an address
// @Produce json
// @Param address query string true "Requester address"
// @Success 200 {object} PublicResponse[services.UnbondRequestsPublic] "Unbond requests"
// @Failure 400 {object} types.Error "Missing address"
// @Router /v1/unbond-requests [get]
func (h *Handler) GetUnbondRequests(request *http.Request) (*Result, *types.Error) {
	address, err := parseAddressQuery(request)
	if err != nil {
		return nil, err
	}
	requests, err := h.services.GetUnbondRequests(request.Context(), address)
	if err != nil {
		return nil, err
	}
	return NewResult(requests), nil
}

// GetAllHistory godoc
// @Summary Page through closed unbond batches
// @Produce json
// @Param start_from query int false "Exclusive batch id to start after"
// @Param pagination_key query string false "Pagination key returned by the previous page, overrides start_from"
// @Param limit query int false "Page size, 10 by default and 100 at most"
// @Success 200 {object} PublicResponse[[]services.UnbondHistoryPublic] "Closed batches"
// @Router /v1/history [get]
func (h *Handler) GetAllHistory(request *http.Request) (*Result, *types.Error) {
	startFrom, err := parseUintQuery(request, "start_from")
	if err != nil {
		return nil, err
	}
	if paginationKey := request.URL.Query().Get("pagination_key"); paginationKey != "" {
		token, decodeErr := model.DecodePaginationToken[model.UnbondHistoryPagination](paginationKey)
		if decodeErr != nil {
			return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid pagination key")
		}
		startFrom = token.BatchID
	}
	limit, err := parseUintQuery(request, "limit")
	if err != nil {
		return nil, err
	}
	history, nextKey, err := h.services.GetAllHistory(request.Context(), startFrom, int(limit))
	if err != nil {
		return nil, err
	}
	pageToken := ""
	if nextKey != 0 {
		token, tokenErr := model.GetPaginationToken(model.UnbondHistoryPagination{BatchID: nextKey})
		if tokenErr != nil {
			return nil, types.NewInternalServiceError(tokenErr)
		}
		pageToken = token
	}
	return NewResultWithPagination(history, pageToken), nil
}

// GetWithdrawable godoc
// @Summary Get the withdrawable amount of an address
// @Description Theoretical amount from matured batches. A shortfall at release can lower the actual payout.
// @Produce json
// @Param address query string true "Requester address"
// @Success 200 {object} PublicResponse[services.WithdrawablePublic] "Withdrawable amount"
// @Router /v1/withdrawable [get]
func (h *Handler) GetWithdrawable(request *http.Request) (*Result, *types.Error) {
	address, err := parseAddressQuery(request)
	if err != nil {
		return nil, err
	}
	withdrawable, err := h.services.GetWithdrawable(request.Context(), address)
	if err != nil {
		return nil, err
	}
	return NewResult(withdrawable), nil
}
