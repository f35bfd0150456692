package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/LeventeLantos/campaign-builder/internal/cache"
	"github.com/LeventeLantos/campaign-builder/internal/service"
	"github.com/LeventeLantos/campaign-builder/internal/webhook"
)

type sendRequest struct {
	ToPhone        string `json:"to_phone"`
	CustomMessage  string `json:"custom_message"`
	FromNumber     string `json:"from_number"`
	CandidateID    string `json:"candidate_id"`
	ConversationID string `json:"conversation_id"`
	ContactName    string `json:"contact_name"`
}

type sendResponse struct {
	Success        bool     `json:"success"`
	MessageID      string   `json:"message_id"`
	MessageSID     string   `json:"message_sid"`
	ConversationID string   `json:"conversation_id"`
	FromNumber     string   `json:"from_number"`
	Warnings       []string `json:"warnings,omitempty"`
}

func (h *Handler) SendSMS(w http.ResponseWriter, r *http.Request) {
	var in sendRequest
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.dispatcher.Send(r.Context(), service.SendRequest{
		To:             in.ToPhone,
		Body:           in.CustomMessage,
		PinnedSender:   in.FromNumber,
		ConversationID: in.ConversationID,
		CandidateID:    in.CandidateID,
		ContactName:    in.ContactName,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := sendResponse{
		Success:        true,
		MessageID:      res.MessageID,
		MessageSID:     res.MessageSID,
		ConversationID: res.ConversationID,
		FromNumber:     res.SenderUsed,
	}
	for _, warn := range res.Warnings {
		out.Warnings = append(out.Warnings, warn.Error())
	}
	writeJSON(w, http.StatusOK, out)
}

// SMSWebhook acknowledges every carrier callback with an empty TwiML response.
// Processing failures are logged and never surfaced to the carrier.
func (h *Handler) SMSWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.Warn("unreadable carrier webhook", "err", err)
	} else if err := h.reconciler.Handle(r.Context(), webhook.Classify(r.PostForm)); err != nil {
		slog.Error("carrier webhook processing failed", "err", err)
	}

	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(webhook.EmptyResponse))
}

func (h *Handler) MessageDelivery(w http.ResponseWriter, r *http.Request) {
	sid := r.PathValue("sid")

	d, err := h.reconciler.Delivery(r.Context(), sid)
	if errors.Is(err, cache.ErrMiss) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "no delivery status for " + sid})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message_sid": sid, "delivery": d})
}
