package scripts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babylonchain/staking-hub-service/internal/db/memdb"
	"github.com/babylonchain/staking-hub-service/internal/queue"
	"github.com/babylonchain/staking-hub-service/internal/queue/client"
)

type recordingQueueClient struct {
	client.QueueClient
	sent []string
}

func (c *recordingQueueClient) SendMessage(ctx context.Context, messageBody string) error {
	c.sent = append(c.sent, messageBody)
	return nil
}

func TestReplayUnprocessableMessages(t *testing.T) {
	ctx := context.Background()
	store := memdb.New()
	events := &recordingQueueClient{}
	queues := &queue.Queues{EventsQueueClient: events}

	require.NoError(t, store.SaveUnprocessableMessage(ctx, `{"event_type":1,"sender":"alice"}`, "1", "hub is paused"))
	require.NoError(t, store.SaveUnprocessableMessage(ctx, `{"event_type":4,"sender":"bob"}`, "2", "not yet withdrawable"))

	require.NoError(t, ReplayUnprocessableMessages(ctx, queues, store))
	assert.Len(t, events.sent, 2)

	left, err := store.FindUnprocessableMessages(ctx)
	require.NoError(t, err)
	assert.Empty(t, left)

	assert.Error(t, ReplayUnprocessableMessages(ctx, queues, store))
}

func TestReplayStopsAtUnknownEvent(t *testing.T) {
	ctx := context.Background()
	store := memdb.New()
	events := &recordingQueueClient{}

	require.NoError(t, store.SaveUnprocessableMessage(ctx, `{"event_type":42}`, "1", "unknown event type 42"))

	err := ReplayUnprocessableMessages(ctx, &queue.Queues{EventsQueueClient: events}, store)
	assert.ErrorContains(t, err, "unknown event type")
	assert.Empty(t, events.sent)

	left, findErr := store.FindUnprocessableMessages(ctx)
	require.NoError(t, findErr)
	assert.Len(t, left, 1)
}
