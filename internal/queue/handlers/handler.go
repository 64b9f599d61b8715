package handlers

import (
	"context"
	"net/http"

	"github.com/babylonchain/staking-hub-service/internal/services"
	"github.com/babylonchain/staking-hub-service/internal/types"
)

type QueueHandler struct {
	Services *services.Services
}

type MessageHandler func(ctx context.Context, messageBody string) *types.Error
type UnprocessableMessageHandler func(ctx context.Context, messageBody, receipt, reason string) error

func NewQueueHandler(services *services.Services) *QueueHandler {
	return &QueueHandler{
		Services: services,
	}
}

func (qh *QueueHandler) HandleUnprocessedMessage(ctx context.Context, messageBody, receipt, reason string) error {
	return qh.Services.SaveUnprocessableMessages(ctx, messageBody, receipt, reason)
}

// IsUnrecoverable reports whether redelivering the message can never make
// it succeed: it is malformed or the ledger rejected it.
func IsUnrecoverable(err *types.Error) bool {
	if err == nil {
		return false
	}
	if services.IsRejection(err) {
		return true
	}
	return err.StatusCode == http.StatusBadRequest || err.StatusCode == http.StatusForbidden
}
