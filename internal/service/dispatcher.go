package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/LeventeLantos/campaign-builder/internal/client"
	"github.com/LeventeLantos/campaign-builder/internal/metrics"
	"github.com/LeventeLantos/campaign-builder/internal/model"
	"github.com/LeventeLantos/campaign-builder/internal/repo"
)

type Carrier interface {
	Configured() bool
	SendSMS(ctx context.Context, to, from, body string) (client.CarrierMessage, error)
}

type SendRequest struct {
	To             string
	Body           string
	PinnedSender   string
	ConversationID string
	CandidateID    string
	ContactName    string
}

type SendResult struct {
	MessageID      string
	MessageSID     string
	ConversationID string
	SenderUsed     string
	Source         SelectionSource
	Warnings       []PersistenceWarning
}

// Dispatcher performs an outbound send: pick a sender, hand the message to the
// carrier, then record it on the counterparty's thread.
type Dispatcher struct {
	carrier       Carrier
	selector      *NumberSelector
	conversations *Conversations
	contentMax    int
	metrics       *metrics.Metrics
	now           func() time.Time
}

func NewDispatcher(carrier Carrier, selector *NumberSelector, conversations *Conversations, contentMax int, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		carrier:       carrier,
		selector:      selector,
		conversations: conversations,
		contentMax:    contentMax,
		metrics:       m,
		now:           time.Now,
	}
}

// Send never retries. Once the carrier has accepted the message, bookkeeping failures
// are reported as warnings on a successful result.
func (d *Dispatcher) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	req.To = strings.TrimSpace(req.To)
	if req.To == "" {
		return nil, invalid("to_phone is required")
	}
	if strings.TrimSpace(req.Body) == "" {
		return nil, invalid("custom_message is required")
	}
	if d.contentMax > 0 && utf8.RuneCountInString(req.Body) > d.contentMax {
		return nil, invalid("message exceeds %d chars", d.contentMax)
	}
	if !d.carrier.Configured() {
		return nil, invalidConfig("carrier credentials are not set")
	}

	thread := d.affinityThread(ctx, req)

	sel, err := d.selector.Select(ctx, req.PinnedSender, thread)
	if err != nil {
		return nil, err
	}

	sent, err := d.carrier.SendSMS(ctx, req.To, sel.Number, req.Body)
	if err != nil {
		d.metrics.Dispatch("failed")
		slog.Warn("carrier rejected message", "to", req.To, "from", sel.Number, "err", err)
		return nil, toDispatchError(err)
	}
	d.metrics.Dispatch("sent")

	res := &SendResult{
		MessageSID: sent.SID,
		SenderUsed: sel.Number,
		Source:     sel.Source,
	}
	now := d.now().UTC()

	if err := d.record(ctx, req, sel.Number, sent.SID, now, res); err != nil {
		res.warn(PersistenceWarning{Step: "recording message", MessageSID: sent.SID, Err: err})
	}
	if err := d.selector.RecordUsage(ctx, sel.Number, now); err != nil {
		res.warn(PersistenceWarning{Step: "updating sender usage", MessageSID: sent.SID, Err: err})
	}

	slog.Info("sms dispatched",
		"message_sid", sent.SID,
		"to", req.To,
		"from", sel.Number,
		"source", string(sel.Source),
		"conversation_id", res.ConversationID,
	)
	return res, nil
}

func (d *Dispatcher) record(ctx context.Context, req SendRequest, sender, sid string, at time.Time, res *SendResult) error {
	conv, _, err := d.conversations.GetOrCreate(ctx, model.NewConversation{
		CounterpartyPhone: req.To,
		AssignedSender:    sender,
		CandidateID:       req.CandidateID,
		ContactName:       req.ContactName,
	})
	if err != nil {
		return err
	}
	res.ConversationID = conv.ID

	msgID, _, err := d.conversations.Append(ctx, conv.ID, model.Outbound, req.Body, MessageMeta{
		Status:           model.Sent,
		CarrierMessageID: sid,
		From:             sender,
		To:               req.To,
		At:               at,
	})
	if err != nil {
		return err
	}
	res.MessageID = msgID
	return nil
}

// affinityThread finds the thread whose sender the message should reuse: the named
// conversation, else the counterparty's existing one.
func (d *Dispatcher) affinityThread(ctx context.Context, req SendRequest) *model.Conversation {
	if strings.TrimSpace(req.PinnedSender) != "" {
		return nil
	}

	if req.ConversationID != "" {
		conv, err := d.conversations.Find(ctx, req.ConversationID)
		if err == nil {
			return conv
		}
		if !errors.Is(err, repo.ErrNotFound) {
			slog.Warn("conversation lookup failed", "conversation_id", req.ConversationID, "err", err)
		}
	}

	conv, err := d.conversations.FindByPhone(ctx, req.To)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			slog.Warn("conversation lookup failed", "to", req.To, "err", err)
		}
		return nil
	}
	return conv
}

func (r *SendResult) warn(w PersistenceWarning) {
	w.log()
	r.Warnings = append(r.Warnings, w)
}

func toDispatchError(err error) error {
	var ce *client.CarrierError
	if errors.As(err, &ce) {
		return &DispatchError{Status: ce.StatusCode, Code: ce.Code, Message: ce.Message}
	}
	return &DispatchError{Message: err.Error()}
}
