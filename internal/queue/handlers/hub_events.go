package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/babylonchain/staking-hub-service/internal/queue/client"
	"github.com/babylonchain/staking-hub-service/internal/services"
	"github.com/babylonchain/staking-hub-service/internal/types"
)

// HubEventHandler applies one relayed hub call to the ledger. The resulting
// instructions are written to the outbox by the service layer.
func (qh *QueueHandler) HubEventHandler(ctx context.Context, messageBody string) *types.Error {
	var event client.HubEvent
	err := json.Unmarshal([]byte(messageBody), &event)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal the message body into HubEvent")
		return types.NewError(http.StatusBadRequest, types.BadRequest, err)
	}
	if event.EventType == client.ConfirmInstructionsEventType {
		return qh.confirmInstructions(ctx, event.OutboxID)
	}
	if event.Sender == "" {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "missing sender")
	}

	call := services.Call{
		Sender: event.Sender,
		Funds:  event.Funds,
	}
	logger := log.Ctx(ctx).With().
		Str("eventType", event.EventType.String()).
		Str("sender", event.Sender).
		Logger()

	var callErr *types.Error
	switch event.EventType {
	case client.BondEventType:
		_, callErr = qh.Services.Bond(ctx, call)
	case client.BondRewardsEventType:
		_, callErr = qh.Services.BondRewards(ctx, call)
	case client.UnbondEventType:
		amount, ok := sdkmath.NewIntFromString(event.Amount)
		if !ok {
			return types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest,
				fmt.Sprintf("invalid unbond amount %q", event.Amount))
		}
		requester := event.Requester
		if requester == "" {
			requester = event.Sender
		}
		_, callErr = qh.Services.Unbond(ctx, call, amount, requester)
	case client.WithdrawUnbondedEventType:
		_, callErr = qh.Services.WithdrawUnbonded(ctx, call)
	case client.CheckSlashingEventType:
		_, callErr = qh.Services.CheckSlashing(ctx, call)
	case client.DispatchRewardsEventType:
		_, callErr = qh.Services.DispatchRewards(ctx, call)
	default:
		return types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest,
			fmt.Sprintf("unknown event type %d", event.EventType))
	}
	if callErr != nil {
		return callErr
	}

	logger.Debug().Msg("hub event applied")
	return nil
}

func (qh *QueueHandler) confirmInstructions(ctx context.Context, outboxID string) *types.Error {
	if outboxID == "" {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "missing outbox id")
	}
	_, err := qh.Services.ConfirmInstructions(ctx, outboxID)
	if err != nil && errors.Is(err, services.ErrAlreadyConfirmed) {
		// redelivered confirmation
		log.Ctx(ctx).Debug().Str("outboxId", outboxID).Msg("instructions already confirmed")
		return nil
	}
	return err
}
