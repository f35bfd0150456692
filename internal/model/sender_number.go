package model

import "time"

type NumberStatus string

const (
	NumberActive   NumberStatus = "active"
	NumberDisabled NumberStatus = "disabled"
)

func (s NumberStatus) Valid() bool {
	return s == NumberActive || s == NumberDisabled
}

// UsageDay returns the start of the UTC day t falls in; daily counters
// are bucketed by it.
func UsageDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type SenderNumber struct {
	ID                string       `db:"id" json:"id"`
	PhoneNumber       string       `db:"phone_number" json:"phone_number"`
	Label             string       `db:"label" json:"label"`
	Status            NumberStatus `db:"status" json:"status"`
	MessagesSentToday int          `db:"messages_sent_today" json:"messages_sent_today"`
	DailyLimit        int          `db:"daily_limit" json:"daily_limit"`
	LastUsedAt        *time.Time   `db:"last_used_at" json:"last_used_at,omitempty"`
	CountersResetAt   *time.Time   `db:"counters_reset_at" json:"counters_reset_at,omitempty"`
	CreatedAt         time.Time    `db:"created_at" json:"created_at"`
}
