package scheduler

import (
	"context"
	"time"
)

// CounterResetter zeroes per-day sender usage once the UTC day has rolled over.
type CounterResetter interface {
	ResetDailyCounters(ctx context.Context, now time.Time)
}

// NewCounterReset checks for a day rollover every interval. Resetting is idempotent
// within a day, so the interval only bounds how late after midnight it happens.
func NewCounterReset(interval time.Duration, r CounterResetter) (*Scheduler, error) {
	return New("sender-counter-reset", interval, func(ctx context.Context) {
		r.ResetDailyCounters(ctx, time.Now())
	})
}
