package model

import "time"

const PreviewLength = 100

type Conversation struct {
	ID                   string     `db:"id" json:"id"`
	CounterpartyPhone    string     `db:"counterparty_phone" json:"counterparty_phone"`
	AssignedSender       string     `db:"assigned_sender" json:"assigned_sender"`
	CandidateID          *string    `db:"candidate_id" json:"candidate_id,omitempty"`
	ContactName          string     `db:"contact_name" json:"contact_name"`
	LastMessageAt        *time.Time `db:"last_message_at" json:"last_message_at,omitempty"`
	LastMessagePreview   string     `db:"last_message_preview" json:"last_message_preview"`
	LastMessageDirection Direction  `db:"last_message_direction" json:"last_message_direction"`
	UnreadCount          int        `db:"unread_count" json:"unread_count"`
	TotalMessages        int        `db:"total_messages" json:"total_messages"`
	CandidateReplied     bool       `db:"candidate_replied" json:"candidate_replied"`
	InterestDetected     bool       `db:"interest_detected" json:"interest_detected"`
	OptedOut             bool       `db:"opted_out" json:"opted_out"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}

// NewConversation holds what is known about a counterparty when its thread is first opened.
type NewConversation struct {
	CounterpartyPhone string
	AssignedSender    string
	CandidateID       string
	ContactName       string
}

// ThreadUpdate is applied to a conversation together with the message that caused it.
type ThreadUpdate struct {
	At               time.Time
	Preview          string
	Direction        Direction
	Unread           int
	CandidateReplied bool
	InterestDetected bool
	OptedOut         bool
}

// Preview returns the first PreviewLength runes of body.
func Preview(body string) string {
	r := []rune(body)
	if len(r) <= PreviewLength {
		return body
	}
	return string(r[:PreviewLength])
}
