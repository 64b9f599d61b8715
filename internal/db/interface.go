package db

import (
	"context"

	"github.com/babylonchain/staking-hub-service/internal/db/model"
	"github.com/babylonchain/staking-hub-service/internal/ledger"
)

// HubStore is a ledger.Store bound to one transaction, plus the outbox the
// call's instructions are recorded in.
type HubStore interface {
	ledger.Store
	EnqueueInstructions(ctx context.Context, operation string, instructions []ledger.Instruction) error
	// GetOutboxEntry returns a NotFoundError when no entry has the id.
	GetOutboxEntry(ctx context.Context, id string) (*model.InstructionOutboxDocument, error)
	MarkInstructionsConfirmed(ctx context.Context, id string) error
}

type DBClient interface {
	Ping(ctx context.Context) error
	// RunInTx executes fn inside a single transaction. Every write made
	// through store is committed when fn returns nil and discarded otherwise.
	RunInTx(ctx context.Context, fn func(ctx context.Context, store HubStore) error) error

	SaveUnprocessableMessage(ctx context.Context, messageBody, receipt, reason string) error
	FindUnprocessableMessages(ctx context.Context) ([]model.UnprocessableMessageDocument, error)
	DeleteUnprocessableMessage(ctx context.Context, receipt interface{}) error

	FindPendingInstructions(ctx context.Context, limit int64) ([]model.InstructionOutboxDocument, error)
	MarkInstructionsSent(ctx context.Context, id string) error
}
