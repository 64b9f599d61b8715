package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/babylonchain/staking-hub-service/internal/utils"
)

func writeConflictError() *mongo.CommandError {
	return &mongo.CommandError{
		Code:    112,
		Message: "write conflict",
		Name:    "WriteConflict",
	}
}

type mockTransactionClient struct {
	mock.Mock
}

func (m *mockTransactionClient) StartSession(opts ...*options.SessionOptions) (DBSession, error) {
	args := m.Called()
	return args.Get(0).(DBSession), args.Error(1)
}

type mockSession struct {
	mock.Mock
}

func (m *mockSession) EndSession(ctx context.Context) {
	m.Called(ctx)
}

func (m *mockSession) WithTransaction(
	ctx context.Context, fn func(sessCtx mongo.SessionContext) (interface{}, error),
	opts ...*options.TransactionOptions,
) (interface{}, error) {
	args := m.Called(ctx, fn)
	return args.Get(0), args.Error(1)
}

func recordSleeps(t *testing.T) *[]time.Duration {
	sleepDurations := []time.Duration{}
	utils.SetSleepFunc(func(d time.Duration) {
		sleepDurations = append(sleepDurations, d)
	})
	t.Cleanup(utils.ResetSleepFunc)
	return &sleepDurations
}

func noopTxn(sessCtx mongo.SessionContext) (interface{}, error) {
	return nil, nil
}

func TestTxWithRetries_ExponentialBackoff(t *testing.T) {
	session := &mockSession{}
	session.On("WithTransaction", mock.Anything, mock.Anything).Return(nil, writeConflictError()).Twice()
	session.On("WithTransaction", mock.Anything, mock.Anything).Return("success", nil).Once()
	session.On("EndSession", mock.Anything).Return()

	client := &mockTransactionClient{}
	client.On("StartSession").Return(session, nil)

	sleeps := recordSleeps(t)

	result, err := TxWithRetries(context.Background(), client, noopTxn)
	require.NoError(t, err)
	require.Equal(t, "success", result)

	require.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, *sleeps)
	session.AssertNumberOfCalls(t, "EndSession", 3)
	client.AssertNumberOfCalls(t, "StartSession", 3)
}

func TestTxWithRetries_MaxRetries(t *testing.T) {
	session := &mockSession{}
	session.On("WithTransaction", mock.Anything, mock.Anything).Return(nil, writeConflictError())
	session.On("EndSession", mock.Anything).Return()

	client := &mockTransactionClient{}
	client.On("StartSession").Return(session, nil)

	sleeps := recordSleeps(t)

	result, err := TxWithRetries(context.Background(), client, noopTxn)
	require.Error(t, err)
	require.Nil(t, result)
	require.True(t, IsWriteConflictError(err))
	require.Len(t, *sleeps, DefaultMaxAttempts-1)
	session.AssertNumberOfCalls(t, "WithTransaction", DefaultMaxAttempts)
}

func TestTxWithRetries_NonRetryableError(t *testing.T) {
	nonRetryableError := &mongo.CommandError{
		Code:    403,
		Message: "Forbidden",
		Name:    "NonRetryableError",
	}

	session := &mockSession{}
	session.On("WithTransaction", mock.Anything, mock.Anything).Return(nil, nonRetryableError).Once()
	session.On("EndSession", mock.Anything).Return()

	client := &mockTransactionClient{}
	client.On("StartSession").Return(session, nil)

	sleeps := recordSleeps(t)

	result, err := TxWithRetries(context.Background(), client, noopTxn)
	require.Error(t, err)
	require.Nil(t, result)
	require.Empty(t, *sleeps)
	require.IsType(t, nonRetryableError, err)
	session.AssertExpectations(t)
}
