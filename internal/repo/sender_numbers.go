package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/LeventeLantos/campaign-builder/internal/model"
)

const senderNumberColumns = `id, phone_number, label, status, messages_sent_today, daily_limit,
	last_used_at, counters_reset_at, created_at`

// LeastLoaded returns the active number with spare daily capacity that has sent the
// fewest messages today, preferring the one idle the longest.
func (s *Store) LeastLoaded(ctx context.Context) (*model.SenderNumber, error) {
	var n model.SenderNumber
	err := s.get(ctx, &n, `
		SELECT `+senderNumberColumns+`
		FROM sender_numbers
		WHERE status = ? AND messages_sent_today < daily_limit
		ORDER BY messages_sent_today ASC, last_used_at ASC NULLS FIRST, phone_number ASC
		LIMIT 1
	`, string(model.NumberActive))
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// RecordUsage bumps the daily counter of the number that sent a message. Numbers outside
// the pool (the fallback default) are not an error.
func (s *Store) RecordUsage(ctx context.Context, phoneNumber string, at time.Time) error {
	_, err := s.exec(ctx, `
		UPDATE sender_numbers
		SET messages_sent_today = messages_sent_today + 1,
		    last_used_at = ?
		WHERE phone_number = ?
	`, at.UTC(), phoneNumber)
	return err
}

// ResetDailyCounters zeroes the counters of numbers not yet reset since startOfDay.
func (s *Store) ResetDailyCounters(ctx context.Context, startOfDay time.Time) (int64, error) {
	return s.exec(ctx, `
		UPDATE sender_numbers
		SET messages_sent_today = 0,
		    counters_reset_at = ?
		WHERE counters_reset_at IS NULL OR counters_reset_at < ?
	`, startOfDay.UTC(), startOfDay.UTC())
}

func (s *Store) CreateNumber(ctx context.Context, n *model.SenderNumber) error {
	_, err := s.exec(ctx, `
		INSERT INTO sender_numbers
			(id, phone_number, label, status, messages_sent_today, daily_limit, last_used_at, counters_reset_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.PhoneNumber, n.Label, string(n.Status), n.MessagesSentToday, n.DailyLimit, n.LastUsedAt, n.CountersResetAt, n.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting sender number: %w", err)
	}
	return nil
}

func (s *Store) ListNumbers(ctx context.Context) ([]model.SenderNumber, error) {
	var out []model.SenderNumber
	err := s.selectAll(ctx, &out, `
		SELECT `+senderNumberColumns+`
		FROM sender_numbers
		ORDER BY phone_number ASC
	`)
	return out, err
}

func (s *Store) SetNumberStatus(ctx context.Context, id string, status model.NumberStatus) error {
	return s.execOne(ctx, `UPDATE sender_numbers SET status = ? WHERE id = ?`, string(status), id)
}
