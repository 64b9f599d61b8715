package handlers

import (
	"net/http"

	sdkmath "cosmossdk.io/math"

	"github.com/babylonchain/staking-hub-service/internal/ledger"
	"github.com/babylonchain/staking-hub-service/internal/types"
)

type UnbondRequestPayload struct {
	CallRequestPayload
	// Amount of derivative tokens to redeem.
	Amount    string `json:"amount"`
	Requester string `json:"requester"`
}

func (p UnbondRequestPayload) validate() *types.Error {
	if err := p.CallRequestPayload.validate(); err != nil {
		return err
	}
	if _, ok := sdkmath.NewIntFromString(p.Amount); !ok {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid amount")
	}
	return nil
}

type RedelegateRequestPayload struct {
	CallRequestPayload
	SrcValidator  string                `json:"src_validator"`
	Redelegations []ledger.Redelegation `json:"redelegations"`
}

func (p RedelegateRequestPayload) validate() *types.Error {
	if err := p.CallRequestPayload.validate(); err != nil {
		return err
	}
	if p.SrcValidator == "" {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "src_validator is required")
	}
	if len(p.Redelegations) == 0 {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "redelegations are required")
	}
	for _, r := range p.Redelegations {
		if r.Validator == "" || r.Amount.Amount.IsNil() {
			return types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid redelegation")
		}
	}
	return nil
}

func callResult(res *ledger.Response, err *types.Error) (*Result, *types.Error) {
	if err != nil {
		return nil, err
	}
	return NewResult(res), nil
}

// Bond godoc
// @Summary Bond native tokens
// @Description Delegates the attached funds and mints derivative tokens to the sender at the current exchange rate.
// @Accept json
// @Produce json
// @Param payload body CallRequestPayload true "Bond call"
// @Success 200 {object} PublicResponse[ledger.Response] "Emitted instructions and attributes"
// @Failure 400 {object} types.Error "Invalid funds"
// @Failure 403 {object} types.Error "Hub is paused"
// @Router /v1/bond [post]
func (h *Handler) Bond(request *http.Request) (*Result, *types.Error) {
	payload, err := parsePayload[CallRequestPayload](request)
	if err != nil {
		return nil, err
	}
	return callResult(h.services.Bond(request.Context(), payload.call()))
}

// BondRewards godoc
// @Summary Restake rewards
// @Description Delegates rewards sent by the rewards dispatcher without minting, raising the exchange rate.
// @Accept json
// @Produce json
// @Param payload body CallRequestPayload true "Bond rewards call"
// @Success 200 {object} PublicResponse[ledger.Response] "Emitted instructions and attributes"
// @Failure 403 {object} types.Error "Sender is not the rewards dispatcher"
// @Router /v1/bond-rewards [post]
func (h *Handler) BondRewards(request *http.Request) (*Result, *types.Error) {
	payload, err := parsePayload[CallRequestPayload](request)
	if err != nil {
		return nil, err
	}
	return callResult(h.services.BondRewards(request.Context(), payload.call()))
}

// Unbond godoc
// @Summary Queue an unbond request
// @Description Burns derivative tokens of the requester and adds them to the current unbond batch.
// @Accept json
// @Produce json
// @Param payload body UnbondRequestPayload true "Unbond call"
// @Success 200 {object} PublicResponse[ledger.Response] "Emitted instructions and attributes"
// @Failure 400 {object} types.Error "Invalid amount or insufficient balance"
// @Router /v1/unbond [post]
func (h *Handler) Unbond(request *http.Request) (*Result, *types.Error) {
	payload, err := parsePayload[UnbondRequestPayload](request)
	if err != nil {
		return nil, err
	}
	amount, _ := sdkmath.NewIntFromString(payload.Amount)
	requester := payload.Requester
	if requester == "" {
		requester = payload.Sender
	}
	return callResult(h.services.Unbond(request.Context(), payload.call(), amount, requester))
}

// WithdrawUnbonded godoc
// @Summary Withdraw matured unbond requests
// @Description Releases matured batches and pays the sender out at each batch's withdraw rate.
// @Accept json
// @Produce json
// @Param payload body CallRequestPayload true "Withdraw call"
// @Success 200 {object} PublicResponse[ledger.Response] "Emitted instructions and attributes"
// @Failure 403 {object} types.Error "Nothing withdrawable yet"
// @Router /v1/withdraw-unbonded [post]
func (h *Handler) WithdrawUnbonded(request *http.Request) (*Result, *types.Error) {
	payload, err := parsePayload[CallRequestPayload](request)
	if err != nil {
		return nil, err
	}
	return callResult(h.services.WithdrawUnbonded(request.Context(), payload.call()))
}

// CheckSlashing godoc
// @Summary Reconcile with on-chain delegations
// @Description Writes down total bonded when the delegations on chain fell below it and recomputes the exchange rate.
// @Accept json
// @Produce json
// @Param payload body CallRequestPayload true "Check slashing call"
// @Success 200 {object} PublicResponse[ledger.Response] "New exchange rate"
// @Router /v1/check-slashing [post]
func (h *Handler) CheckSlashing(request *http.Request) (*Result, *types.Error) {
	payload, err := parsePayload[CallRequestPayload](request)
	if err != nil {
		return nil, err
	}
	return callResult(h.services.CheckSlashing(request.Context(), payload.call()))
}

// DispatchRewards godoc
// @Summary Withdraw and dispatch staking rewards
// @Description Withdraws rewards from every validator and hands them to the rewards dispatcher.
// @Accept json
// @Produce json
// @Param payload body CallRequestPayload true "Dispatch rewards call"
// @Success 200 {object} PublicResponse[ledger.Response] "Emitted instructions and attributes"
// @Router /v1/dispatch-rewards [post]
func (h *Handler) DispatchRewards(request *http.Request) (*Result, *types.Error) {
	payload, err := parsePayload[CallRequestPayload](request)
	if err != nil {
		return nil, err
	}
	return callResult(h.services.DispatchRewards(request.Context(), payload.call()))
}

// Redelegate godoc
// @Summary Redelegate from one validator
// @Description Moves stake away from a validator. Only the validators registry or the owner may call it.
// @Accept json
// @Produce json
// @Param payload body RedelegateRequestPayload true "Redelegate call"
// @Success 200 {object} PublicResponse[ledger.Response] "Emitted instructions and attributes"
// @Failure 403 {object} types.Error "Sender is not allowed to redelegate"
// @Router /v1/redelegate [post]
func (h *Handler) Redelegate(request *http.Request) (*Result, *types.Error) {
	payload, err := parsePayload[RedelegateRequestPayload](request)
	if err != nil {
		return nil, err
	}
	return callResult(h.services.Redelegate(
		request.Context(), payload.call(), payload.SrcValidator, payload.Redelegations,
	))
}

type ConfirmRequestPayload struct {
	OutboxID string `json:"outbox_id"`
}

func (p ConfirmRequestPayload) validate() *types.Error {
	if p.OutboxID == "" {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "outbox_id is required")
	}
	return nil
}

// ConfirmInstructions godoc
// @Summary Confirm executed instructions
// @Description Called by the executor once every instruction of an outbox entry ran on chain. Their effects stop counting as pending.
// @Accept json
// @Produce json
// @Param payload body ConfirmRequestPayload true "Outbox entry to confirm"
// @Success 200 {object} PublicResponse[ledger.Response] "Confirmed instructions"
// @Failure 400 {object} types.Error "Already confirmed or more than is pending"
// @Failure 404 {object} types.Error "Unknown outbox entry"
// @Router /v1/instructions/confirm [post]
func (h *Handler) ConfirmInstructions(request *http.Request) (*Result, *types.Error) {
	payload, err := parsePayload[ConfirmRequestPayload](request)
	if err != nil {
		return nil, err
	}
	return callResult(h.services.ConfirmInstructions(request.Context(), payload.OutboxID))
}
