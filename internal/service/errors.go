package service

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrConfiguration  = errors.New("configuration error")
)

// DispatchError reports that the carrier refused an outbound message.
type DispatchError struct {
	Status  int
	Code    int
	Message string
}

func (e *DispatchError) Error() string {
	if e.Status == 0 {
		return "dispatch failed: " + e.Message
	}
	if e.Code != 0 {
		return fmt.Sprintf("dispatch failed: carrier status %d code %d: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("dispatch failed: carrier status %d: %s", e.Status, e.Message)
}

// PersistenceWarning is bookkeeping that failed after the carrier accepted a message.
// It is logged for manual reconciliation and never returned as a failure.
type PersistenceWarning struct {
	Step       string
	MessageSID string
	Err        error
}

func (w PersistenceWarning) Error() string {
	return fmt.Sprintf("%s after carrier accepted %s: %v", w.Step, w.MessageSID, w.Err)
}

func (w PersistenceWarning) Unwrap() error { return w.Err }

func (w PersistenceWarning) log() {
	slog.Warn("persistence warning", "step", w.Step, "message_sid", w.MessageSID, "err", w.Err)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

func invalidConfig(msg string) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, msg)
}
