package client

import (
	"github.com/babylonchain/staking-hub-service/internal/ledger"
)

const (
	HubEventsQueueName       string = "hub_events"
	HubInstructionsQueueName string = "hub_instructions"
)

const (
	BondEventType             EventType = 1
	BondRewardsEventType      EventType = 2
	UnbondEventType           EventType = 3
	WithdrawUnbondedEventType EventType = 4
	CheckSlashingEventType    EventType = 5
	DispatchRewardsEventType  EventType = 6
	// ConfirmInstructionsEventType is published by the executor once an
	// outbox entry ran on chain.
	ConfirmInstructionsEventType EventType = 7
)

type EventType int

func (t EventType) String() string {
	switch t {
	case BondEventType:
		return "bond"
	case BondRewardsEventType:
		return "bond_rewards"
	case UnbondEventType:
		return "unbond"
	case WithdrawUnbondedEventType:
		return "withdraw_unbonded"
	case CheckSlashingEventType:
		return "check_slashing"
	case DispatchRewardsEventType:
		return "dispatch_rewards"
	case ConfirmInstructionsEventType:
		return "confirm_instructions"
	default:
		return "unknown"
	}
}

// HubEvent is a call to the hub relayed from the chain. Fields a given
// event type does not use are left empty. Only the relayer and the executor
// hold publish rights on the events queue, and the block time is always the
// service clock.
type HubEvent struct {
	EventType EventType     `json:"event_type"`
	Sender    string        `json:"sender"`
	Funds     []ledger.Coin `json:"funds,omitempty"`
	// Amount of derivative tokens, unbond only.
	Amount    string `json:"amount,omitempty"`
	Requester string `json:"requester,omitempty"`
	// OutboxID of the executed instructions, confirmations only.
	OutboxID string `json:"outbox_id,omitempty"`
}
