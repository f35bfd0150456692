package model

import "time"

type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

type Status string

const (
	Sent     Status = "sent"
	Received Status = "received"
	Failed   Status = "failed"
)

// Message is an immutable record of one SMS in a conversation.
type Message struct {
	ID               string    `db:"id" json:"id"`
	ConversationID   string    `db:"conversation_id" json:"conversation_id"`
	Direction        Direction `db:"direction" json:"direction"`
	Body             string    `db:"body" json:"body"`
	Status           Status    `db:"status" json:"status"`
	CarrierMessageID *string   `db:"carrier_message_id" json:"carrier_message_id,omitempty"`
	FromNumber       string    `db:"from_number" json:"from_number"`
	ToNumber         string    `db:"to_number" json:"to_number"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
