package client

import (
	"context"

	"github.com/babylonchain/staking-hub-service/internal/config"
)

type QueueMessage struct {
	Body    string
	Receipt string
	// RetryAttempts counts how many times the message was requeued.
	RetryAttempts int32
}

func (m QueueMessage) IncrementRetryAttempts() int32 {
	m.RetryAttempts++
	return m.RetryAttempts
}

// A common interface for queue clients regardless if it's a SQS, RabbitMQ, etc.
type QueueClient interface {
	SendMessage(ctx context.Context, messageBody string) error
	ReceiveMessages() (<-chan QueueMessage, error)
	DeleteMessage(receipt string) error
	// ReQueueMessage acknowledges the message and publishes it again after
	// the configured delay with its retry counter increased.
	ReQueueMessage(ctx context.Context, message QueueMessage) error
	Stop() error
	GetQueueName() string
	Ping() error
}

func NewQueueClient(cfg *config.QueueConfig, queueName string) (QueueClient, error) {
	return NewRabbitMqClient(cfg, queueName)
}
