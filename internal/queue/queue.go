package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/babylonchain/staking-hub-service/internal/config"
	"github.com/babylonchain/staking-hub-service/internal/observability/metrics"
	"github.com/babylonchain/staking-hub-service/internal/observability/tracing"
	"github.com/babylonchain/staking-hub-service/internal/queue/client"
	"github.com/babylonchain/staking-hub-service/internal/queue/handlers"
	"github.com/babylonchain/staking-hub-service/internal/services"
)

type Queues struct {
	EventsQueueClient       client.QueueClient
	InstructionsQueueClient client.QueueClient
	Handlers                *handlers.QueueHandler
	processingTimeout       time.Duration
	maxRetryAttempts        int32
}

func New(cfg *config.QueueConfig, service *services.Services) *Queues {
	eventsQueueClient, err := client.NewQueueClient(cfg, cfg.EventsQueueName)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating EventsQueueClient")
	}
	instructionsQueueClient, err := client.NewQueueClient(cfg, cfg.InstructionsQueueName)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating InstructionsQueueClient")
	}
	return NewWithClients(cfg, service, eventsQueueClient, instructionsQueueClient)
}

// NewWithClients wires the queues on already connected clients.
func NewWithClients(
	cfg *config.QueueConfig, service *services.Services, events, instructions client.QueueClient,
) *Queues {
	return &Queues{
		EventsQueueClient:       events,
		InstructionsQueueClient: instructions,
		Handlers:                handlers.NewQueueHandler(service),
		processingTimeout:       cfg.QueueProcessingTimeout,
		maxRetryAttempts:        cfg.MsgMaxRetryAttempts,
	}
}

// Start all message processing
func (q *Queues) StartReceivingMessages() {
	// start processing messages from the hub events queue
	startQueueMessageProcessing(
		q.EventsQueueClient,
		q.Handlers.HubEventHandler, q.Handlers.HandleUnprocessedMessage,
		q.maxRetryAttempts, q.processingTimeout,
	)
	// ...add more queues here
}

// Turn off all message processing
func (q *Queues) StopReceivingMessages() {
	if err := q.EventsQueueClient.Stop(); err != nil {
		log.Error().Err(err).Str("queueName", q.EventsQueueClient.GetQueueName()).Msg("error while stopping queue")
	}
	if err := q.InstructionsQueueClient.Stop(); err != nil {
		log.Error().Err(err).Str("queueName", q.InstructionsQueueClient.GetQueueName()).Msg("error while stopping queue")
	}
}

// PublishInstructions sends one relayed instruction batch to the chain
// executor. It matches services.Publisher.
func (q *Queues) PublishInstructions(ctx context.Context, body string) error {
	return q.InstructionsQueueClient.SendMessage(ctx, body)
}

func startQueueMessageProcessing(
	queueClient client.QueueClient,
	handler handlers.MessageHandler, unprocessableHandler handlers.UnprocessableMessageHandler,
	maxRetryAttempts int32, timeout time.Duration,
) {
	messagesChan, err := queueClient.ReceiveMessages()
	if err != nil {
		log.Fatal().Err(err).Str("queueName", queueClient.GetQueueName()).Msg("error setting up message channel from queue")
	}

	go func() {
		for message := range messagesChan {
			processMessage(queueClient, message, handler, unprocessableHandler, maxRetryAttempts, timeout)
		}
	}()
}

func processMessage(
	queueClient client.QueueClient, message client.QueueMessage,
	handler handlers.MessageHandler, unprocessableHandler handlers.UnprocessableMessageHandler,
	maxRetryAttempts int32, timeout time.Duration,
) {
	// For each message, create a new context with a deadline or timeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ctx = tracing.AttachTracingIntoContext(ctx)

	queueName := queueClient.GetQueueName()
	logger := log.With().
		Str("queueName", queueName).
		Interface("traceId", ctx.Value(tracing.TraceIdKey)).
		Logger()
	ctx = logger.WithContext(ctx)

	timer := metrics.StartProcessFuncTimer(queueName)
	result := handler(ctx, message.Body)
	if result == nil {
		timer(metrics.Success)
		if delErr := queueClient.DeleteMessage(message.Receipt); delErr != nil {
			logger.Error().Err(delErr).Msg("error while deleting message from queue")
		}
		return
	}
	timer(metrics.Error)

	if handlers.IsUnrecoverable(result) {
		logger.Warn().Err(result).Msg("message rejected, storing as unprocessable")
		dumpMessage(ctx, logger, queueClient, message, unprocessableHandler, result.Error())
		return
	}

	if message.RetryAttempts >= maxRetryAttempts {
		logger.Error().Err(result).Int32("attempts", message.RetryAttempts).
			Msg("exceeded retry attempts, storing message as unprocessable")
		reason := fmt.Sprintf("exceeded %d retry attempts: %s", maxRetryAttempts, result.Error())
		dumpMessage(ctx, logger, queueClient, message, unprocessableHandler, reason)
		return
	}

	logger.Error().Err(result).Msg("error while processing message from queue, requeueing")
	if err := queueClient.ReQueueMessage(ctx, message); err != nil {
		logger.Error().Err(err).Msg("error while requeuing message")
	}
}

func dumpMessage(
	ctx context.Context, logger zerolog.Logger, queueClient client.QueueClient, message client.QueueMessage,
	unprocessableHandler handlers.UnprocessableMessageHandler, reason string,
) {
	if err := unprocessableHandler(ctx, message.Body, message.Receipt, reason); err != nil {
		// leave the message unacknowledged so it is redelivered
		logger.Error().Err(err).Msg("error while saving unprocessable message")
		return
	}
	if err := queueClient.DeleteMessage(message.Receipt); err != nil {
		logger.Error().Err(err).Msg("error while deleting message from queue")
	}
}

func (q *Queues) IsConnectionHealthy() error {
	var errorMessages []string

	for _, c := range []client.QueueClient{q.EventsQueueClient, q.InstructionsQueueClient} {
		if err := c.Ping(); err != nil {
			errorMessages = append(errorMessages, fmt.Sprintf("%s is not healthy: %v", c.GetQueueName(), err))
		}
	}

	if len(errorMessages) > 0 {
		return fmt.Errorf("queue health check failed: %v", errorMessages)
	}
	return nil
}
