// Package scheduler runs named background jobs on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

type Job func(context.Context)

// Status is a point-in-time view of a scheduler.
type Status struct {
	Name      string     `json:"name"`
	Running   bool       `json:"running"`
	Interval  string     `json:"interval"`
	Runs      int64      `json:"runs"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
}

type Scheduler struct {
	name     string
	interval time.Duration
	job      Job

	running atomic.Bool
	runs    atomic.Int64
	lastRun atomic.Pointer[time.Time]

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(name string, interval time.Duration, job Job) (*Scheduler, error) {
	if name == "" {
		return nil, errors.New("name must not be empty")
	}
	if interval <= 0 {
		return nil, errors.New("interval must be > 0")
	}
	if job == nil {
		return nil, errors.New("job must not be nil")
	}
	return &Scheduler{
		name:     name,
		interval: interval,
		job:      job,
		done:     make(chan struct{}),
	}, nil
}

// Start runs the job once immediately and then every interval. It reports false
// when already running.
func (s *Scheduler) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running.Store(true)

	go s.loop(ctx)
	return true
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("scheduler started", "job", s.name, "interval", s.interval.String())

	s.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// Stop cancels the running job and waits for it to return.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return false
	}

	s.cancel()
	<-s.done
	s.running.Store(false)

	slog.Info("scheduler stopped", "job", s.name)
	return true
}

func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

func (s *Scheduler) Status() Status {
	st := Status{
		Name:     s.name,
		Running:  s.running.Load(),
		Interval: s.interval.String(),
		Runs:     s.runs.Load(),
	}
	if last := s.lastRun.Load(); last != nil {
		t := *last
		st.LastRunAt = &t
	}
	return st
}

func (s *Scheduler) runOnce(ctx context.Context) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("scheduled job panic recovered", "job", s.name, "panic", r)
		}
		s.runs.Add(1)
		s.lastRun.Store(&start)
	}()

	s.job(ctx)
	slog.Debug("scheduled job completed", "job", s.name, "duration_ms", time.Since(start).Milliseconds())
}
