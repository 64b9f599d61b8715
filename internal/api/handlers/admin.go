package handlers

import (
	"net/http"

	"github.com/babylonchain/staking-hub-service/internal/ledger"
	"github.com/babylonchain/staking-hub-service/internal/types"
)

type GuardiansRequestPayload struct {
	CallRequestPayload
	Addresses []string `json:"addresses"`
}

func (p GuardiansRequestPayload) validate() *types.Error {
	if err := p.CallRequestPayload.validate(); err != nil {
		return err
	}
	if len(p.Addresses) == 0 {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "addresses are required")
	}
	return nil
}

type UpdateParamsRequestPayload struct {
	CallRequestPayload
	EpochPeriod     *uint64 `json:"epoch_period,omitempty"`
	UnbondingPeriod *uint64 `json:"unbonding_period,omitempty"`
}

type UpdateConfigRequestPayload struct {
	CallRequestPayload
	ledger.ConfigUpdate
}

// Pause godoc
// @Summary Pause the hub
// @Description Blocks every state-changing call except unpause. Owner or guardian only.
// @Accept json
// @Produce json
// @Param payload body CallRequestPayload true "Pause call"
// @Success 200 {object} PublicResponse[ledger.Response]
// @Failure 403 {object} types.Error "Sender is neither owner nor guardian"
// @Router /v1/admin/pause [post]
func (h *Handler) Pause(request *http.Request) (*Result, *types.Error) {
	payload, err := parsePayload[CallRequestPayload](request)
	if err != nil {
		return nil, err
	}
	return callResult(h.services.Pause(request.Context(), payload.call()))
}

// Unpause godoc
// @Summary Unpause the hub
// @Description Owner only.
// @Accept json
// @Produce json
// @Param payload body CallRequestPayload true "Unpause call"
// @Success 200 {object} PublicResponse[ledger.Response]
// @Failure 403 {object} types.Error "Sender is not the owner"
// @Router /v1/admin/unpause [post]
func (h *Handler) Unpause(request *http.Request) (*Result, *types.Error) {
	payload, err := parsePayload[CallRequestPayload](request)
	if err != nil {
		return nil, err
	}
	return callResult(h.services.Unpause(request.Context(), payload.call()))
}

// AddGuardians godoc
// @Summary Add guardians
// @Accept json
// @Produce json
// @Param payload body GuardiansRequestPayload true "Guardians to add"
// @Success 200 {object} PublicResponse[ledger.Response]
// @Router /v1/admin/guardians [post]
func (h *Handler) AddGuardians(request *http.Request) (*Result, *types.Error) {
	payload, err := parsePayload[GuardiansRequestPayload](request)
	if err != nil {
		return nil, err
	}
	return callResult(h.services.AddGuardians(request.Context(), payload.call(), payload.Addresses))
}

// RemoveGuardians godoc
// @Summary Remove guardians
// @Accept json
// @Produce json
// @Param payload body GuardiansRequestPayload true "Guardians to remove"
// @Success 200 {object} PublicResponse[ledger.Response]
// @Router /v1/admin/guardians [delete]
func (h *Handler) RemoveGuardians(request *http.Request) (*Result, *types.Error) {
	payload, err := parsePayload[GuardiansRequestPayload](request)
	if err != nil {
		return nil, err
	}
	return callResult(h.services.RemoveGuardians(request.Context(), payload.call(), payload.Addresses))
}

// UpdateParams godoc
// @Summary Update epoch and unbonding periods
// @Accept json
// @Produce json
// @Param payload body UpdateParamsRequestPayload true "Parameters to change"
// @Success 200 {object} PublicResponse[ledger.Response]
// @Router /v1/admin/params [post]
func (h *Handler) UpdateParams(request *http.Request) (*Result, *types.Error) {
	payload, err := parsePayload[UpdateParamsRequestPayload](request)
	if err != nil {
		return nil, err
	}
	return callResult(h.services.UpdateParams(
		request.Context(), payload.call(), payload.EpochPeriod, payload.UnbondingPeriod,
	))
}

// UpdateConfig godoc
// @Summary Update owner and collaborator addresses
// @Accept json
// @Produce json
// @Param payload body UpdateConfigRequestPayload true "Addresses to change"
// @Success 200 {object} PublicResponse[ledger.Response]
// @Router /v1/admin/config [post]
func (h *Handler) UpdateConfig(request *http.Request) (*Result, *types.Error) {
	payload, err := parsePayload[UpdateConfigRequestPayload](request)
	if err != nil {
		return nil, err
	}
	return callResult(h.services.UpdateConfig(request.Context(), payload.call(), payload.ConfigUpdate))
}
