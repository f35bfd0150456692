package service

import "strings"

var interestKeywords = []string{
	"interested",
	"yes",
	"available",
	"call me",
	"sounds good",
	"tell me more",
	"sure",
}

var optOutKeywords = []string{
	"stop",
	"unsubscribe",
	"remove me",
	"do not contact",
	"opt out",
}

type replySignals struct {
	Interest bool
	OptOut   bool
}

// detectSignals scans an inbound body for interest and opt-out keywords with a
// case-insensitive substring match. Opt-out takes precedence over interest.
func detectSignals(body string) replySignals {
	lower := strings.ToLower(body)

	if containsAny(lower, optOutKeywords) {
		return replySignals{OptOut: true}
	}
	return replySignals{Interest: containsAny(lower, interestKeywords)}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
