package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LeventeLantos/campaign-builder/internal/metrics"
	"github.com/LeventeLantos/campaign-builder/internal/model"
	"github.com/LeventeLantos/campaign-builder/internal/repo"
)

type SelectionSource string

const (
	SourcePinned   SelectionSource = "pinned"
	SourceAffinity SelectionSource = "affinity"
	SourcePool     SelectionSource = "pool"
	SourceFallback SelectionSource = "fallback"
)

type Selection struct {
	Number string
	Source SelectionSource
}

// NumberSelector decides which sender number an outbound message uses.
//
// Selection and the usage update are separate statements, so two concurrent sends can
// pick the same least-loaded number; balancing is approximate.
type NumberSelector struct {
	pool          repo.NumberPool
	defaultNumber string
	dailyLimit    int
	metrics       *metrics.Metrics
}

func NewNumberSelector(pool repo.NumberPool, defaultNumber string, m *metrics.Metrics) *NumberSelector {
	return &NumberSelector{pool: pool, defaultNumber: defaultNumber, dailyLimit: 200, metrics: m}
}

// WithDailyLimit sets the limit given to numbers registered without one.
func (s *NumberSelector) WithDailyLimit(limit int) *NumberSelector {
	if limit > 0 {
		s.dailyLimit = limit
	}
	return s
}

// Select returns pinned when set, else the conversation's assigned sender, else the
// least-loaded pool number, else the default number.
func (s *NumberSelector) Select(ctx context.Context, pinned string, conv *model.Conversation) (Selection, error) {
	sel, err := s.selectNumber(ctx, pinned, conv)
	if err != nil {
		return Selection{}, err
	}
	s.metrics.Selection(string(sel.Source))
	return sel, nil
}

func (s *NumberSelector) selectNumber(ctx context.Context, pinned string, conv *model.Conversation) (Selection, error) {
	if p := strings.TrimSpace(pinned); p != "" {
		return Selection{Number: p, Source: SourcePinned}, nil
	}
	if conv != nil && conv.AssignedSender != "" {
		return Selection{Number: conv.AssignedSender, Source: SourceAffinity}, nil
	}

	n, err := s.pool.LeastLoaded(ctx)
	switch {
	case err == nil:
		return Selection{Number: n.PhoneNumber, Source: SourcePool}, nil
	case errors.Is(err, repo.ErrNotFound):
		slog.Info("sender pool exhausted, using default number")
	default:
		slog.Error("sender pool query failed, using default number", "err", err)
	}

	if s.defaultNumber == "" {
		return Selection{}, invalidConfig("no sender number available and no default configured")
	}
	return Selection{Number: s.defaultNumber, Source: SourceFallback}, nil
}

// RecordUsage applies the post-send counter update for the number actually used.
func (s *NumberSelector) RecordUsage(ctx context.Context, number string, at time.Time) error {
	return s.pool.RecordUsage(ctx, number, at)
}

// ResetDailyCounters is run periodically; it zeroes each number once per UTC day.
func (s *NumberSelector) ResetDailyCounters(ctx context.Context, now time.Time) {
	startOfDay := model.UsageDay(now)

	n, err := s.pool.ResetDailyCounters(ctx, startOfDay)
	if err != nil {
		slog.Error("resetting sender counters failed", "err", err)
		return
	}
	if n > 0 {
		slog.Info("sender counters reset", "numbers", n, "day", startOfDay.Format(time.DateOnly))
	}
}

func (s *NumberSelector) Register(ctx context.Context, phone, label string, dailyLimit int) (*model.SenderNumber, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, invalid("phone_number is required")
	}
	if dailyLimit < 0 {
		return nil, invalid("daily_limit must be >= 0")
	}
	if dailyLimit == 0 {
		dailyLimit = s.dailyLimit
	}

	// Usage recorded today belongs to today; the next reset is tomorrow's.
	now := time.Now().UTC()
	day := model.UsageDay(now)
	n := &model.SenderNumber{
		ID:              uuid.NewString(),
		PhoneNumber:     phone,
		Label:           strings.TrimSpace(label),
		Status:          model.NumberActive,
		DailyLimit:      dailyLimit,
		CountersResetAt: &day,
		CreatedAt:       now,
	}
	if err := s.pool.CreateNumber(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NumberSelector) List(ctx context.Context) ([]model.SenderNumber, error) {
	return s.pool.ListNumbers(ctx)
}

func (s *NumberSelector) SetStatus(ctx context.Context, id string, status model.NumberStatus) error {
	if !status.Valid() {
		return invalid("status must be active or disabled")
	}
	return s.pool.SetNumberStatus(ctx, id, status)
}
