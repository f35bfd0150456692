// Package webhook turns carrier webhook payloads into typed events.
package webhook

import (
	"net/url"
	"strings"
)

type Kind int

const (
	Unrecognized Kind = iota
	InboundMessage
	StatusCallback
)

func (k Kind) String() string {
	switch k {
	case InboundMessage:
		return "inbound"
	case StatusCallback:
		return "status"
	default:
		return "unrecognized"
	}
}

// Inbound is a message a counterparty sent to one of our numbers.
type Inbound struct {
	From       string
	To         string
	Body       string
	MessageSID string
}

// Status is a delivery update for a message we sent.
type Status struct {
	MessageSID   string
	Status       string
	ErrorCode    string
	ErrorMessage string
}

// Event is a tagged union: exactly one of Inbound or Status is meaningful, as
// selected by Kind. Reason explains an Unrecognized event.
type Event struct {
	Kind    Kind
	Inbound Inbound
	Status  Status
	Reason  string
}

var deliveryStatuses = map[string]bool{
	"accepted":    true,
	"scheduled":   true,
	"queued":      true,
	"sending":     true,
	"sent":        true,
	"delivered":   true,
	"undelivered": true,
	"failed":      true,
	"read":        true,
	"canceled":    true,
}

// Classify maps a form-encoded carrier payload to an Event. Every input maps to a
// variant; anything not understood is Unrecognized.
func Classify(form url.Values) Event {
	status := strings.ToLower(strings.TrimSpace(form.Get("SmsStatus")))
	if s := strings.ToLower(strings.TrimSpace(form.Get("MessageStatus"))); s != "" {
		status = s
	}
	sid := strings.TrimSpace(form.Get("MessageSid"))
	if sid == "" {
		sid = strings.TrimSpace(form.Get("SmsSid"))
	}

	switch {
	case status == "received" || (status == "" && form.Has("Body")):
		in := Inbound{
			From:       strings.TrimSpace(form.Get("From")),
			To:         strings.TrimSpace(form.Get("To")),
			Body:       form.Get("Body"),
			MessageSID: sid,
		}
		if in.From == "" {
			return Event{Kind: Unrecognized, Reason: "inbound message without From"}
		}
		return Event{Kind: InboundMessage, Inbound: in}

	case deliveryStatuses[status]:
		if sid == "" {
			return Event{Kind: Unrecognized, Reason: "status callback without MessageSid"}
		}
		return Event{Kind: StatusCallback, Status: Status{
			MessageSID:   sid,
			Status:       status,
			ErrorCode:    form.Get("ErrorCode"),
			ErrorMessage: form.Get("ErrorMessage"),
		}}

	case status == "":
		return Event{Kind: Unrecognized, Reason: "no status and no body"}

	default:
		return Event{Kind: Unrecognized, Reason: "unknown status " + status}
	}
}

// EmptyResponse is the acknowledgement the carrier expects from a messaging webhook.
const EmptyResponse = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`
