package model

const UnprocessableMsgCollection = "unprocessable_messages"

type UnprocessableMessageDocument struct {
	MessageBody string `bson:"message_body"`
	Receipt     string `bson:"receipt"`
	Reason      string `bson:"reason,omitempty"`
}

func NewUnprocessableMessageDocument(messageBody, receipt, reason string) *UnprocessableMessageDocument {
	return &UnprocessableMessageDocument{
		MessageBody: messageBody,
		Receipt:     receipt,
		Reason:      reason,
	}
}
