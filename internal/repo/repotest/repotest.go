// Package repotest provides an in-memory SQLite store for tests.
package repotest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/LeventeLantos/campaign-builder/internal/model"
	"github.com/LeventeLantos/campaign-builder/internal/repo"
)

func NewStore(t *testing.T) *repo.Store {
	t.Helper()

	ctx := context.Background()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	s, err := repo.Open(ctx, "sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

// AddNumber registers an active sender number with the given usage.
func AddNumber(t *testing.T, s *repo.Store, phone string, sentToday, dailyLimit int) *model.SenderNumber {
	t.Helper()

	now := time.Now().UTC()
	day := model.UsageDay(now)
	n := &model.SenderNumber{
		ID:                uuid.NewString(),
		PhoneNumber:       phone,
		Status:            model.NumberActive,
		MessagesSentToday: sentToday,
		DailyLimit:        dailyLimit,
		CountersResetAt:   &day,
		CreatedAt:         now,
	}
	if err := s.CreateNumber(context.Background(), n); err != nil {
		t.Fatalf("add number %s: %v", phone, err)
	}
	return n
}

func AddCandidate(t *testing.T, s *repo.Store, c model.Candidate) model.Candidate {
	t.Helper()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := s.DB().NamedExecContext(context.Background(), `
		INSERT INTO candidates (id, first_name, last_name, email, phone, specialty, created_at)
		VALUES (:id, :first_name, :last_name, :email, :phone, :specialty, :created_at)
	`, c)
	if err != nil {
		t.Fatalf("add candidate: %v", err)
	}
	return c
}

// Number reads back a sender number by phone.
// MarkCountersReset backdates the last counter reset of phone to at.
func MarkCountersReset(t *testing.T, s *repo.Store, phone string, at time.Time) {
	t.Helper()

	db := s.DB()
	_, err := db.ExecContext(context.Background(),
		db.Rebind("UPDATE sender_numbers SET counters_reset_at = ? WHERE phone_number = ?"), at.UTC(), phone)
	if err != nil {
		t.Fatalf("mark counters reset %s: %v", phone, err)
	}
}

func Number(t *testing.T, s *repo.Store, phone string) model.SenderNumber {
	t.Helper()

	numbers, err := s.ListNumbers(context.Background())
	if err != nil {
		t.Fatalf("list numbers: %v", err)
	}
	for _, n := range numbers {
		if n.PhoneNumber == phone {
			return n
		}
	}
	t.Fatalf("number %s not found", phone)
	return model.SenderNumber{}
}

func CountConversations(t *testing.T, s *repo.Store, phone string) int {
	t.Helper()

	var n int
	err := s.DB().GetContext(context.Background(), &n,
		s.DB().Rebind(`SELECT COUNT(*) FROM conversations WHERE counterparty_phone = ?`), phone)
	if err != nil {
		t.Fatalf("count conversations: %v", err)
	}
	return n
}
