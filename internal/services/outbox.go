package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/babylonchain/staking-hub-service/internal/db"
	"github.com/babylonchain/staking-hub-service/internal/db/model"
	"github.com/babylonchain/staking-hub-service/internal/ledger"
	"github.com/babylonchain/staking-hub-service/internal/observability/metrics"
	"github.com/babylonchain/staking-hub-service/internal/types"
)

// ErrAlreadyConfirmed rejects a second confirmation of an outbox entry.
var ErrAlreadyConfirmed = errors.New("instructions are already confirmed")

// Publisher sends a relayed instruction batch to the chain executor.
type Publisher func(ctx context.Context, body string) error

// RelayInstructions publishes pending outbox entries oldest first and marks
// each one sent after it was published. It stops at the first publish error
// so ordering is preserved; the entry is retried on the next run.
func (s *Services) RelayInstructions(ctx context.Context, publish Publisher) (int, *types.Error) {
	pending, err := s.DbClient.FindPendingInstructions(ctx, s.cfg.Db.OutboxBatchSize)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching pending instructions")
		return 0, types.NewInternalServiceError(err)
	}

	metrics.SetPendingOutbox(len(pending))

	relayed := 0
	for _, doc := range pending {
		if err := publish(ctx, doc.Payload); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("id", doc.ID).Msg("error while publishing instructions")
			return relayed, types.NewError(http.StatusServiceUnavailable, types.ServiceUnavailable, err)
		}
		err := s.DbClient.MarkInstructionsSent(ctx, doc.ID)
		if db.IsNotFoundError(err) {
			// confirmed before the relay got to mark it
			log.Ctx(ctx).Debug().Str("id", doc.ID).Msg("instructions already confirmed")
		} else if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("id", doc.ID).Msg("error while marking instructions sent")
			return relayed, types.NewInternalServiceError(err)
		}
		relayed++
	}
	return relayed, nil
}

// ConfirmInstructions records that the executor ran every instruction of the
// outbox entry id on chain. The entry's effects stop counting as pending in
// the same transaction that marks it CONFIRMED.
func (s *Services) ConfirmInstructions(ctx context.Context, id string) (*ledger.Response, *types.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const operation = "confirm_instructions"
	var res *ledger.Response
	err := s.DbClient.RunInTx(ctx, func(ctx context.Context, store db.HubStore) error {
		doc, err := store.GetOutboxEntry(ctx, id)
		if err != nil {
			return err
		}
		if doc.State == model.OutboxConfirmed {
			return types.NewError(http.StatusBadRequest, types.BadRequest, fmt.Errorf("%w: %s", ErrAlreadyConfirmed, id))
		}
		msg, err := doc.Message()
		if err != nil {
			return fmt.Errorf("invalid outbox payload %s: %w", id, err)
		}
		if res, err = ledger.NewHub(store, s.chain).ConfirmInstructions(ctx, msg.Instructions); err != nil {
			return err
		}
		return store.MarkInstructionsConfirmed(ctx, id)
	})

	var apiErr *types.Error
	switch {
	case err == nil:
	case errors.As(err, &apiErr):
		metrics.RecordHubOperation(operation, metrics.Error)
		log.Ctx(ctx).Warn().Err(err).Str("id", id).Msg("confirmation rejected")
		return nil, apiErr
	case db.IsNotFoundError(err):
		metrics.RecordHubOperation(operation, metrics.Error)
		log.Ctx(ctx).Warn().Err(err).Str("id", id).Msg("confirmation of unknown instructions")
		return nil, types.NewError(http.StatusNotFound, types.NotFound, err)
	default:
		metrics.RecordHubOperation(operation, metrics.Error)
		return nil, toApiError(ctx, operation, err)
	}

	metrics.RecordHubOperation(operation, metrics.Success)
	log.Ctx(ctx).Debug().Str("id", id).Msg("instructions confirmed")
	return res.AddAttribute("outbox_id", id), nil
}
