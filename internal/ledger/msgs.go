package ledger

import (
	sdkmath "cosmossdk.io/math"
)

type InstructionType string

const (
	InstructionDelegate        InstructionType = "delegate"
	InstructionUndelegate      InstructionType = "undelegate"
	InstructionRedelegate      InstructionType = "redelegate"
	InstructionWithdrawReward  InstructionType = "withdraw_delegator_reward"
	InstructionMint            InstructionType = "mint"
	InstructionBurn            InstructionType = "burn"
	InstructionBankSend        InstructionType = "bank_send"
	InstructionDispatchRewards InstructionType = "dispatch_rewards"
)

// Instruction is an outbound message the hub asks the chain to execute.
// Only the fields relevant to Type are set.
type Instruction struct {
	Type         InstructionType `json:"type"`
	Validator    string          `json:"validator,omitempty"`
	DstValidator string          `json:"dst_validator,omitempty"`
	Contract     string          `json:"contract,omitempty"`
	Recipient    string          `json:"recipient,omitempty"`
	Owner        string          `json:"owner,omitempty"`
	Amount       *Coin           `json:"amount,omitempty"`
}

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Response is the outcome of a state-changing call.
type Response struct {
	Instructions []Instruction `json:"instructions"`
	Attributes   []Attribute   `json:"attributes"`
}

func NewResponse(action string) *Response {
	return &Response{Attributes: []Attribute{{Key: "action", Value: action}}}
}

func (r *Response) AddInstruction(in Instruction) *Response {
	r.Instructions = append(r.Instructions, in)
	return r
}

func (r *Response) AddAttribute(key, value string) *Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

// Attribute returns the first value stored under key.
func (r *Response) Attribute(key string) (string, bool) {
	for _, a := range r.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

func delegateInstruction(validator string, amount Coin) Instruction {
	return Instruction{Type: InstructionDelegate, Validator: validator, Amount: &amount}
}

func undelegateInstruction(validator string, amount Coin) Instruction {
	return Instruction{Type: InstructionUndelegate, Validator: validator, Amount: &amount}
}

func mintInstruction(tokenContract, recipient string, amount sdkmath.Int) Instruction {
	coin := NewCoin("", amount)
	return Instruction{Type: InstructionMint, Contract: tokenContract, Recipient: recipient, Amount: &coin}
}

func burnInstruction(tokenContract, owner string, amount sdkmath.Int) Instruction {
	coin := NewCoin("", amount)
	return Instruction{Type: InstructionBurn, Contract: tokenContract, Owner: owner, Amount: &coin}
}

func bankSendInstruction(recipient string, amount Coin) Instruction {
	return Instruction{Type: InstructionBankSend, Recipient: recipient, Amount: &amount}
}
