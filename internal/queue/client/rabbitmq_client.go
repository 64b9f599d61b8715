package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/babylonchain/staking-hub-service/internal/config"
)

const (
	dlxName                = "common_dlx"
	delayedQueueSuffix     = "_delay"
	retryAttemptsHeaderKey = "x-processing-attempts"
)

type RabbitMqClient struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	queueName  string
	stopCh     chan struct{}
}

func NewRabbitMqClient(cfg *config.QueueConfig, queueName string) (*RabbitMqClient, error) {
	amqpURI := fmt.Sprintf("amqp://%s:%s@%s", cfg.QueueUser, cfg.QueuePassword, cfg.Url)

	conn, err := amqp.Dial(amqpURI)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	// messages that expire in the delay queue are routed back to the main
	// queue through the dead letter exchange
	if err := ch.ExchangeDeclare(dlxName, "direct", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.QueueBind(queueName, queueName, dlxName, false, nil); err != nil {
		conn.Close()
		return nil, err
	}

	_, err = ch.QueueDeclare(queueName+delayedQueueSuffix, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    dlxName,
		"x-dead-letter-routing-key": queueName,
		"x-message-ttl":             cfg.ReQueueDelayTime.Milliseconds(),
	})
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &RabbitMqClient{
		connection: conn,
		channel:    ch,
		queueName:  queueName,
		stopCh:     make(chan struct{}),
	}, nil
}

func (c *RabbitMqClient) ReceiveMessages() (<-chan QueueMessage, error) {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return nil, err
	}

	output := make(chan QueueMessage)
	go func() {
		defer close(output)
		for {
			select {
			case d, ok := <-msgs:
				if !ok {
					return
				}
				output <- QueueMessage{
					Body:          string(d.Body),
					Receipt:       strconv.FormatUint(d.DeliveryTag, 10),
					RetryAttempts: retryAttempts(d.Headers),
				}
			case <-c.stopCh:
				return
			}
		}
	}()

	return output, nil
}

func retryAttempts(headers amqp.Table) int32 {
	if headers == nil {
		return 0
	}
	switch v := headers[retryAttemptsHeaderKey].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case int:
		return int32(v)
	}
	return 0
}

// DeleteMessage acknowledges the delivery identified by receipt.
func (c *RabbitMqClient) DeleteMessage(receipt string) error {
	deliveryTag, err := strconv.ParseUint(receipt, 10, 64)
	if err != nil {
		return err
	}
	return c.channel.Ack(deliveryTag, false)
}

func (c *RabbitMqClient) ReQueueMessage(ctx context.Context, message QueueMessage) error {
	if err := c.publish(ctx, c.queueName+delayedQueueSuffix, message.Body, amqp.Table{
		retryAttemptsHeaderKey: message.IncrementRetryAttempts(),
	}); err != nil {
		return fmt.Errorf("failed to requeue message: %w", err)
	}
	return c.DeleteMessage(message.Receipt)
}

func (c *RabbitMqClient) SendMessage(ctx context.Context, messageBody string) error {
	return c.publish(ctx, c.queueName, messageBody, nil)
}

func (c *RabbitMqClient) publish(ctx context.Context, routingKey, body string, headers amqp.Table) error {
	return c.channel.PublishWithContext(ctx,
		"",         // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         []byte(body),
			Headers:      headers,
		})
}

func (c *RabbitMqClient) Stop() error {
	close(c.stopCh)
	if err := c.channel.Close(); err != nil {
		return err
	}
	return c.connection.Close()
}

func (c *RabbitMqClient) GetQueueName() string {
	return c.queueName
}

func (c *RabbitMqClient) Ping() error {
	if c.connection.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	if c.channel.IsClosed() {
		return errors.New("rabbitmq channel is closed")
	}
	return nil
}
