package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LeventeLantos/campaign-builder/internal/cache"
	"github.com/LeventeLantos/campaign-builder/internal/metrics"
	"github.com/LeventeLantos/campaign-builder/internal/model"
	"github.com/LeventeLantos/campaign-builder/internal/webhook"
)

// Reconciler applies carrier webhook events to local state. Its errors are for logging
// only; the webhook is acknowledged regardless.
type Reconciler struct {
	conversations *Conversations
	deliveries    cache.DeliveryCache
	dedupe        cache.InboundDeduper
	metrics       *metrics.Metrics
	now           func() time.Time
}

func NewReconciler(conversations *Conversations, m *metrics.Metrics) *Reconciler {
	return &Reconciler{conversations: conversations, metrics: m, now: time.Now}
}

// WithCache enables delivery status tracking and the redelivery fast path.
func (r *Reconciler) WithCache(deliveries cache.DeliveryCache, dedupe cache.InboundDeduper) *Reconciler {
	r.deliveries = deliveries
	r.dedupe = dedupe
	return r
}

func (r *Reconciler) Handle(ctx context.Context, ev webhook.Event) error {
	var err error
	switch ev.Kind {
	case webhook.InboundMessage:
		err = r.HandleInbound(ctx, ev.Inbound)
	case webhook.StatusCallback:
		err = r.HandleStatus(ctx, ev.Status)
	default:
		slog.Warn("unrecognized carrier webhook", "reason", ev.Reason)
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.metrics.WebhookEvent(ev.Kind.String(), outcome)
	return err
}

// HandleInbound threads a counterparty's reply. The receiving number becomes the
// thread's sender only when the thread is new.
func (r *Reconciler) HandleInbound(ctx context.Context, in webhook.Inbound) error {
	if in.From == "" {
		return invalid("inbound message without From")
	}

	// The sid is marked only once the message is stored, so a redelivery that
	// overlaps a failing first attempt is still processed. Overlapping attempts
	// that both get through are collapsed by the store's carrier sid key.
	dedupe := in.MessageSID != "" && r.dedupe != nil
	if dedupe {
		seen, err := r.dedupe.Seen(ctx, in.MessageSID)
		if err != nil {
			slog.Warn("inbound dedupe unavailable", "message_sid", in.MessageSID, "err", err)
		} else if seen {
			slog.Info("inbound redelivery ignored", "message_sid", in.MessageSID)
			return nil
		}
	}

	if err := r.reconcile(ctx, in); err != nil {
		return err
	}

	if dedupe {
		if err := r.dedupe.MarkSeen(ctx, in.MessageSID); err != nil {
			slog.Warn("inbound dedupe mark failed", "message_sid", in.MessageSID, "err", err)
		}
	}
	return nil
}

func (r *Reconciler) reconcile(ctx context.Context, in webhook.Inbound) error {
	conv, created, err := r.conversations.GetOrCreate(ctx, model.NewConversation{
		CounterpartyPhone: in.From,
		AssignedSender:    in.To,
	})
	if err != nil {
		return fmt.Errorf("resolving conversation for %s: %w", in.From, err)
	}

	_, appended, err := r.conversations.Append(ctx, conv.ID, model.Inbound, in.Body, MessageMeta{
		Status:           model.Received,
		CarrierMessageID: in.MessageSID,
		From:             in.From,
		To:               in.To,
		At:               r.now(),
	})
	if err != nil {
		return fmt.Errorf("appending inbound %s: %w", in.MessageSID, err)
	}
	if !appended {
		slog.Info("inbound duplicate ignored", "message_sid", in.MessageSID, "conversation_id", conv.ID)
		return nil
	}

	slog.Info("inbound message recorded",
		"message_sid", in.MessageSID,
		"from", in.From,
		"conversation_id", conv.ID,
		"new_conversation", created,
	)
	return nil
}

func (r *Reconciler) HandleStatus(ctx context.Context, st webhook.Status) error {
	slog.Info("delivery status", "message_sid", st.MessageSID, "status", st.Status, "error_code", st.ErrorCode)
	if r.deliveries == nil {
		return nil
	}
	return r.deliveries.StoreDelivery(ctx, st.MessageSID, cache.Delivery{
		Status:       st.Status,
		ErrorCode:    st.ErrorCode,
		ErrorMessage: st.ErrorMessage,
		UpdatedAt:    r.now(),
	})
}

// Delivery returns the last known delivery status of an outbound message.
func (r *Reconciler) Delivery(ctx context.Context, messageSID string) (cache.Delivery, error) {
	if r.deliveries == nil {
		return cache.Delivery{}, cache.ErrMiss
	}
	return r.deliveries.Delivery(ctx, messageSID)
}
