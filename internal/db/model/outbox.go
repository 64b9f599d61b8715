package model

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/babylonchain/staking-hub-service/internal/ledger"
)

const InstructionOutboxCollection = "instruction_outbox"

type OutboxState string

const (
	OutboxPending   OutboxState = "PENDING"
	OutboxSent      OutboxState = "SENT"
	OutboxConfirmed OutboxState = "CONFIRMED"
)

// InstructionOutboxDocument holds the instructions produced by one call. It
// is written in the same transaction as the ledger changes and relayed to
// the instruction queue afterwards.
type InstructionOutboxDocument struct {
	ID        string      `bson:"_id"`
	Operation string      `bson:"operation"`
	Payload   string      `bson:"payload"`
	State     OutboxState `bson:"state"`
	CreatedAt int64       `bson:"created_at"`
}

// InstructionMessage is the body published to the instruction queue.
type InstructionMessage struct {
	ID           string               `json:"id"`
	Operation    string               `json:"operation"`
	Instructions []ledger.Instruction `json:"instructions"`
}

// Message decodes the payload published for this entry.
func (d *InstructionOutboxDocument) Message() (*InstructionMessage, error) {
	var msg InstructionMessage
	if err := json.Unmarshal([]byte(d.Payload), &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func NewInstructionOutboxDocument(
	operation string, instructions []ledger.Instruction, createdAt int64,
) (*InstructionOutboxDocument, error) {
	id := uuid.New().String()
	payload, err := json.Marshal(InstructionMessage{
		ID:           id,
		Operation:    operation,
		Instructions: instructions,
	})
	if err != nil {
		return nil, err
	}
	return &InstructionOutboxDocument{
		ID:        id,
		Operation: operation,
		Payload:   string(payload),
		State:     OutboxPending,
		CreatedAt: createdAt,
	}, nil
}
