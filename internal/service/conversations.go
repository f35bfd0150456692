package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LeventeLantos/campaign-builder/internal/model"
	"github.com/LeventeLantos/campaign-builder/internal/repo"
)

// MessageMeta carries the carrier-side facts of a message being appended.
type MessageMeta struct {
	Status           model.Status
	CarrierMessageID string
	From             string
	To               string
	At               time.Time
}

// Conversations keeps exactly one thread per counterparty phone number.
type Conversations struct {
	repo       repo.ConversationRepository
	candidates repo.CandidateDirectory
	now        func() time.Time
}

func NewConversations(r repo.ConversationRepository, candidates repo.CandidateDirectory) *Conversations {
	return &Conversations{repo: r, candidates: candidates, now: time.Now}
}

func (c *Conversations) Find(ctx context.Context, id string) (*model.Conversation, error) {
	return c.repo.FindConversation(ctx, id)
}

func (c *Conversations) FindByPhone(ctx context.Context, phone string) (*model.Conversation, error) {
	return c.repo.FindConversationByPhone(ctx, strings.TrimSpace(phone))
}

// GetOrCreate returns the conversation for the counterparty in nc, creating it with
// nc's sender when absent. An existing thread is returned untouched. It reports
// whether the conversation was created by this call.
func (c *Conversations) GetOrCreate(ctx context.Context, nc model.NewConversation) (*model.Conversation, bool, error) {
	phone := strings.TrimSpace(nc.CounterpartyPhone)
	if phone == "" {
		return nil, false, invalid("counterparty phone is required")
	}

	existing, err := c.repo.FindConversationByPhone(ctx, phone)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, false, fmt.Errorf("looking up conversation: %w", err)
	}

	nc.CounterpartyPhone = phone
	c.attachCandidate(ctx, &nc)

	now := c.now().UTC()
	conv := &model.Conversation{
		ID:                uuid.NewString(),
		CounterpartyPhone: phone,
		AssignedSender:    nc.AssignedSender,
		ContactName:       nc.ContactName,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if nc.CandidateID != "" {
		id := nc.CandidateID
		conv.CandidateID = &id
	}

	created, err := c.repo.CreateConversation(ctx, conv)
	if err != nil {
		return nil, false, err
	}
	if created {
		return conv, true, nil
	}

	// Lost a concurrent create; the winner's row is the thread.
	winner, err := c.repo.FindConversationByPhone(ctx, phone)
	if err != nil {
		return nil, false, fmt.Errorf("reading back conversation: %w", err)
	}
	return winner, false, nil
}

// Append records a message on a thread. Inbound messages bump unread, mark the
// candidate as having replied and run keyword detection. It returns the message id
// and false when the carrier id was already recorded.
func (c *Conversations) Append(ctx context.Context, conversationID string, dir model.Direction, body string, meta MessageMeta) (string, bool, error) {
	at := meta.At
	if at.IsZero() {
		at = c.now()
	}
	at = at.UTC()

	msg := &model.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Direction:      dir,
		Body:           body,
		Status:         meta.Status,
		FromNumber:     meta.From,
		ToNumber:       meta.To,
		CreatedAt:      at,
	}
	if meta.CarrierMessageID != "" {
		sid := meta.CarrierMessageID
		msg.CarrierMessageID = &sid
	}

	update := model.ThreadUpdate{
		At:        at,
		Preview:   model.Preview(body),
		Direction: dir,
	}
	if dir == model.Inbound {
		signals := detectSignals(body)
		update.Unread = 1
		update.CandidateReplied = true
		update.InterestDetected = signals.Interest
		update.OptedOut = signals.OptOut
	}

	appended, err := c.repo.AppendMessage(ctx, msg, update)
	if err != nil {
		return "", false, err
	}
	return msg.ID, appended, nil
}

func (c *Conversations) List(ctx context.Context, limit, offset int) ([]model.Conversation, error) {
	return c.repo.ListConversations(ctx, limit, offset)
}

func (c *Conversations) Messages(ctx context.Context, conversationID string, limit, offset int) ([]model.Message, error) {
	return c.repo.ListMessages(ctx, conversationID, limit, offset)
}

func (c *Conversations) MarkRead(ctx context.Context, conversationID string) error {
	return c.repo.MarkRead(ctx, conversationID)
}

// attachCandidate fills a missing candidate reference or display name from the
// directory. A miss is not an error.
func (c *Conversations) attachCandidate(ctx context.Context, nc *model.NewConversation) {
	if c.candidates == nil || (nc.CandidateID != "" && nc.ContactName != "") {
		return
	}

	var (
		cand *model.Candidate
		err  error
	)
	if nc.CandidateID != "" {
		cand, err = c.candidates.FindCandidate(ctx, nc.CandidateID)
	} else {
		cand, err = c.candidates.FindCandidateByPhone(ctx, nc.CounterpartyPhone)
	}
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			slog.Warn("candidate lookup failed", "phone", nc.CounterpartyPhone, "err", err)
		}
		return
	}

	if nc.CandidateID == "" {
		nc.CandidateID = cand.ID
	}
	if nc.ContactName == "" {
		nc.ContactName = cand.DisplayName()
	}
}
