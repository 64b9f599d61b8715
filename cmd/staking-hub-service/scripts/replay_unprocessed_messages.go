package scripts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/babylonchain/staking-hub-service/internal/db"
	"github.com/babylonchain/staking-hub-service/internal/queue"
	"github.com/babylonchain/staking-hub-service/internal/queue/client"
)

type GenericEvent struct {
	EventType client.EventType `json:"event_type"`
}

// ReplayUnprocessableMessages puts every stored unprocessable message back on
// the events queue and removes it from the store.
func ReplayUnprocessableMessages(ctx context.Context, queues *queue.Queues, db db.DBClient) (err error) {
	// Fetch unprocessable messages
	unprocessableMessages, err := db.FindUnprocessableMessages(ctx)
	if err != nil {
		return errors.New("failed to retrieve unprocessable messages")
	}

	// Get the message count
	messageCount := len(unprocessableMessages)

	// Inform the user of the number of unprocessable messages
	fmt.Printf("There are %d unprocessable messages.\n", messageCount)
	if messageCount == 0 {
		return errors.New("no unprocessable messages to replay")
	}

	// Process each unprocessable message
	for _, msg := range unprocessableMessages {
		var genericEvent GenericEvent
		if err := json.Unmarshal([]byte(msg.MessageBody), &genericEvent); err != nil {
			fmt.Printf("Failed to unmarshal event message: %v\n", err)
			return errors.New("failed to unmarshal event message")
		}

		// Process the event message
		if err := processEventMessage(ctx, queues, genericEvent, msg.MessageBody); err != nil {
			return fmt.Errorf("failed to process message: %w", err)
		}

		// Delete the processed message from the database
		if err := db.DeleteUnprocessableMessage(ctx, msg.Receipt); err != nil {
			return errors.New("failed to delete unprocessable message")
		}
	}

	log.Info().Msg("Reprocessing of unprocessable messages completed.")
	return
}

// processEventMessage processes the event message based on its EventType.
func processEventMessage(ctx context.Context, queues *queue.Queues, event GenericEvent, messageBody string) error {
	switch event.EventType {
	case client.BondEventType, client.BondRewardsEventType, client.UnbondEventType,
		client.WithdrawUnbondedEventType, client.CheckSlashingEventType, client.DispatchRewardsEventType,
		client.ConfirmInstructionsEventType:
		return queues.EventsQueueClient.SendMessage(ctx, messageBody)
	default:
		return fmt.Errorf("unknown event type: %v", event.EventType)
	}
}
