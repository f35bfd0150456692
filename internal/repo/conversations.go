package repo

import (
	"context"
	"fmt"

	"github.com/LeventeLantos/campaign-builder/internal/model"
)

const conversationColumns = `id, counterparty_phone, assigned_sender, candidate_id, contact_name,
	last_message_at, last_message_preview, last_message_direction, unread_count, total_messages,
	candidate_replied, interest_detected, opted_out, created_at, updated_at`

const messageColumns = `id, conversation_id, direction, body, status, carrier_message_id,
	from_number, to_number, created_at`

func (s *Store) FindConversation(ctx context.Context, id string) (*model.Conversation, error) {
	var c model.Conversation
	if err := s.get(ctx, &c, `SELECT `+conversationColumns+` FROM conversations WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) FindConversationByPhone(ctx context.Context, phone string) (*model.Conversation, error) {
	var c model.Conversation
	err := s.get(ctx, &c, `SELECT `+conversationColumns+` FROM conversations WHERE counterparty_phone = ?`, phone)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateConversation(ctx context.Context, c *model.Conversation) (bool, error) {
	n, err := s.exec(ctx, `
		INSERT INTO conversations
			(id, counterparty_phone, assigned_sender, candidate_id, contact_name,
			 unread_count, total_messages, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, 0, ?, ?)
		ON CONFLICT (counterparty_phone) DO NOTHING
	`, c.ID, c.CounterpartyPhone, c.AssignedSender, c.CandidateID, c.ContactName, c.CreatedAt.UTC(), c.UpdatedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("inserting conversation: %w", err)
	}
	return n == 1, nil
}

func (s *Store) AppendMessage(ctx context.Context, m *model.Message, u model.ThreadUpdate) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO messages (`+messageColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (carrier_message_id) DO NOTHING
	`), m.ID, m.ConversationID, string(m.Direction), m.Body, string(m.Status), m.CarrierMessageID,
		m.FromNumber, m.ToNumber, m.CreatedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("inserting message: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, err
	} else if n == 0 {
		return false, tx.Commit()
	}

	res, err = tx.ExecContext(ctx, tx.Rebind(`
		UPDATE conversations
		SET last_message_at = ?,
		    last_message_preview = ?,
		    last_message_direction = ?,
		    total_messages = total_messages + 1,
		    unread_count = unread_count + ?,
		    candidate_replied = (candidate_replied OR ?),
		    opted_out = (opted_out OR ?),
		    interest_detected = CASE WHEN ? THEN FALSE ELSE (interest_detected OR ?) END,
		    updated_at = ?
		WHERE id = ?
	`), u.At.UTC(), u.Preview, string(u.Direction), u.Unread, u.CandidateReplied, u.OptedOut,
		u.OptedOut, u.InterestDetected, u.At.UTC(), m.ConversationID)
	if err != nil {
		return false, fmt.Errorf("updating conversation: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, err
	} else if n == 0 {
		return false, fmt.Errorf("conversation %s: %w", m.ConversationID, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) ListConversations(ctx context.Context, limit, offset int) ([]model.Conversation, error) {
	limit, offset = page(limit, offset)

	var out []model.Conversation
	err := s.selectAll(ctx, &out, `
		SELECT `+conversationColumns+`
		FROM conversations
		ORDER BY last_message_at DESC NULLS LAST, created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	return out, err
}

func (s *Store) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]model.Message, error) {
	limit, offset = page(limit, offset)

	var out []model.Message
	err := s.selectAll(ctx, &out, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at ASC, id ASC
		LIMIT ? OFFSET ?
	`, conversationID, limit, offset)
	return out, err
}

func (s *Store) MarkRead(ctx context.Context, conversationID string) error {
	return s.execOne(ctx, `UPDATE conversations SET unread_count = 0 WHERE id = ?`, conversationID)
}

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
