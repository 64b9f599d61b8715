package queue

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/babylonchain/staking-hub-service/internal/queue/client"
	"github.com/babylonchain/staking-hub-service/internal/types"
)

type mockQueueClient struct {
	mock.Mock
}

func (m *mockQueueClient) SendMessage(ctx context.Context, messageBody string) error {
	return m.Called(ctx, messageBody).Error(0)
}

func (m *mockQueueClient) ReceiveMessages() (<-chan client.QueueMessage, error) {
	args := m.Called()
	return args.Get(0).(<-chan client.QueueMessage), args.Error(1)
}

func (m *mockQueueClient) DeleteMessage(receipt string) error {
	return m.Called(receipt).Error(0)
}

func (m *mockQueueClient) ReQueueMessage(ctx context.Context, message client.QueueMessage) error {
	return m.Called(ctx, message).Error(0)
}

func (m *mockQueueClient) Stop() error {
	return m.Called().Error(0)
}

func (m *mockQueueClient) GetQueueName() string {
	return "hub_events"
}

func (m *mockQueueClient) Ping() error {
	return m.Called().Error(0)
}

type unprocessableRecorder struct {
	reasons []string
	err     error
}

func (r *unprocessableRecorder) save(ctx context.Context, body, receipt, reason string) error {
	if r.err != nil {
		return r.err
	}
	r.reasons = append(r.reasons, reason)
	return nil
}

func failWith(err *types.Error) func(ctx context.Context, body string) *types.Error {
	return func(ctx context.Context, body string) *types.Error {
		return err
	}
}

func TestProcessMessage(t *testing.T) {
	message := client.QueueMessage{Body: `{"event_type":1}`, Receipt: "7", RetryAttempts: 1}
	transient := types.NewErrorWithMsg(http.StatusServiceUnavailable, types.ServiceUnavailable, "lcd unreachable")
	rejected := types.NewErrorWithMsg(http.StatusForbidden, types.Forbidden, "hub is paused")

	t.Run("success deletes the message", func(t *testing.T) {
		qc := new(mockQueueClient)
		qc.On("DeleteMessage", "7").Return(nil).Once()
		rec := &unprocessableRecorder{}

		processMessage(qc, message, failWith(nil), rec.save, 3, time.Second)

		qc.AssertExpectations(t)
		assert.Empty(t, rec.reasons)
	})

	t.Run("rejection is stored and acknowledged", func(t *testing.T) {
		qc := new(mockQueueClient)
		qc.On("DeleteMessage", "7").Return(nil).Once()
		rec := &unprocessableRecorder{}

		processMessage(qc, message, failWith(rejected), rec.save, 3, time.Second)

		qc.AssertExpectations(t)
		qc.AssertNotCalled(t, "ReQueueMessage", mock.Anything, mock.Anything)
		assert.Equal(t, []string{"hub is paused"}, rec.reasons)
	})

	t.Run("transient failure is requeued", func(t *testing.T) {
		qc := new(mockQueueClient)
		qc.On("ReQueueMessage", mock.Anything, message).Return(nil).Once()
		rec := &unprocessableRecorder{}

		processMessage(qc, message, failWith(transient), rec.save, 3, time.Second)

		qc.AssertExpectations(t)
		qc.AssertNotCalled(t, "DeleteMessage", mock.Anything)
		assert.Empty(t, rec.reasons)
	})

	t.Run("transient failure past max retries is stored", func(t *testing.T) {
		qc := new(mockQueueClient)
		qc.On("DeleteMessage", "7").Return(nil).Once()
		rec := &unprocessableRecorder{}

		processMessage(qc, message, failWith(transient), rec.save, 1, time.Second)

		qc.AssertExpectations(t)
		assert.Len(t, rec.reasons, 1)
		assert.Contains(t, rec.reasons[0], "lcd unreachable")
	})

	t.Run("message stays queued when it cannot be stored", func(t *testing.T) {
		qc := new(mockQueueClient)
		rec := &unprocessableRecorder{err: errors.New("db down")}

		processMessage(qc, message, failWith(rejected), rec.save, 3, time.Second)

		qc.AssertNotCalled(t, "DeleteMessage", mock.Anything)
		qc.AssertNotCalled(t, "ReQueueMessage", mock.Anything, mock.Anything)
	})
}

func TestIsConnectionHealthy(t *testing.T) {
	events := new(mockQueueClient)
	instructions := new(mockQueueClient)
	q := &Queues{EventsQueueClient: events, InstructionsQueueClient: instructions}

	events.On("Ping").Return(nil)
	instructions.On("Ping").Return(nil).Once()
	assert.NoError(t, q.IsConnectionHealthy())

	instructions.On("Ping").Return(errors.New("rabbitmq connection is closed"))
	err := q.IsConnectionHealthy()
	assert.ErrorContains(t, err, "rabbitmq connection is closed")
}

func TestPublishInstructions(t *testing.T) {
	instructions := new(mockQueueClient)
	q := &Queues{InstructionsQueueClient: instructions}
	instructions.On("SendMessage", mock.Anything, `{"id":"1"}`).Return(nil).Once()

	assert.NoError(t, q.PublishInstructions(context.Background(), `{"id":"1"}`))
	instructions.AssertExpectations(t)
}
