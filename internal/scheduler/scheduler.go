package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler fires a named tick function at a fixed interval, with an
// immediate first pass on Start. Ticks are single-flight: a tick that
// arrives while the previous invocation is still running is skipped and
// counted, never run concurrently with it.
type Scheduler struct {
	name     string
	interval time.Duration
	tickFn   func(context.Context)

	running atomic.Bool

	// inFlight is the idle/running tag guarding tick overlap. It also
	// covers RunNow racing the ticker loop.
	inFlight     atomic.Bool
	skippedTicks atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(name string, interval time.Duration, tickFn func(context.Context)) (*Scheduler, error) {
	if name == "" {
		return nil, errors.New("name must not be empty")
	}
	if interval <= 0 {
		return nil, errors.New("interval must be > 0")
	}
	if tickFn == nil {
		return nil, errors.New("tickFn must not be nil")
	}
	return &Scheduler{
		name:     name,
		interval: interval,
		tickFn:   tickFn,
		done:     make(chan struct{}),
	}, nil
}

func (s *Scheduler) Name() string {
	return s.name
}

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

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		slog.Info("scheduler started", "name", s.name, "interval", s.interval.String())

		s.tryTick(ctx)

		for {
			select {
			case <-ctx.Done():
				slog.Info("scheduler stopping", "name", s.name)
				return
			case <-ticker.C:
				s.tryTick(ctx)
			}
		}
	}()

	return true
}

// Stop cancels the tick context and waits for the loop goroutine. An
// in-flight tick observes the cancellation through its context but is not
// forcibly aborted; it finishes its writes.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return false
	}

	s.cancel()
	<-s.done
	s.running.Store(false)

	slog.Info("scheduler stopped", "name", s.name)
	return true
}

func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

// SkippedTicks reports how many ticks were dropped because a previous
// invocation was still in flight.
func (s *Scheduler) SkippedTicks() int64 {
	return s.skippedTicks.Load()
}

// RunNow triggers one immediate guarded pass outside the ticker cadence.
// It reports false if the scheduler is stopped or a pass is already in
// flight.
func (s *Scheduler) RunNow(ctx context.Context) bool {
	if !s.running.Load() {
		return false
	}
	return s.tryTick(ctx)
}

// tryTick runs one tick unless a previous one is still in flight.
func (s *Scheduler) tryTick(ctx context.Context) bool {
	if !s.inFlight.CompareAndSwap(false, true) {
		n := s.skippedTicks.Add(1)
		slog.Warn("scheduler tick skipped, previous still running",
			"name", s.name, "skipped_total", n)
		return false
	}
	defer s.inFlight.Store(false)

	s.safeTick(ctx)
	return true
}

func (s *Scheduler) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("scheduler tick panic recovered", "name", s.name, "panic", r)
		}
	}()

	start := time.Now()
	s.tickFn(ctx)
	slog.Info("scheduler tick completed",
		"name", s.name, "duration_ms", time.Since(start).Milliseconds())
}
