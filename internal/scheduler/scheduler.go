// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scheduler owns the per-profile recurring timers and the single
// background driver that fires them.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/journal-grabber/pkg/types"
)

// RunFunc executes one full pipeline run for a profile id and returns the
// new-item count. The scheduler holds only profile ids; the run function
// resolves the current profile state at fire time.
type RunFunc func(ctx context.Context, profileID string) (int, error)

// timer is one recurring schedule entry.
type timer struct {
	interval time.Duration
	next     time.Time
}

// Scheduler maintains at most one timer per profile id and a driver
// goroutine that polls for due timers at a short fixed interval. All
// scheduled pipeline invocations originate from that one goroutine.
type Scheduler struct {
	run  RunFunc
	poll time.Duration
	log  *zap.Logger

	mu     sync.Mutex
	timers map[string]*timer

	stop chan struct{}
	done chan struct{}
}

// New builds a scheduler. poll defaults to one minute when zero.
func New(run RunFunc, poll time.Duration, log *zap.Logger) *Scheduler {
	if poll <= 0 {
		poll = time.Minute
	}
	return &Scheduler{
		run:    run,
		poll:   poll,
		log:    log,
		timers: make(map[string]*timer),
	}
}

// Register installs (or replaces) the recurring timer for a profile. An
// inactive profile is a no-op. Re-registration replaces the timer
// entirely: the next fire is one full interval from now.
func (s *Scheduler) Register(p types.Profile) {
	if !p.IsActive {
		return
	}

	interval := p.Interval()
	s.mu.Lock()
	s.timers[p.ID] = &timer{interval: interval, next: time.Now().Add(interval)}
	s.mu.Unlock()

	s.log.Info("profile scheduled",
		zap.String("profile_id", p.ID),
		zap.Duration("interval", interval),
	)
}

// Unregister cancels the profile's timer if present; no-op otherwise.
func (s *Scheduler) Unregister(profileID string) {
	s.mu.Lock()
	_, had := s.timers[profileID]
	delete(s.timers, profileID)
	s.mu.Unlock()

	if had {
		s.log.Info("profile unscheduled", zap.String("profile_id", profileID))
	}
}

// Scheduled reports whether a timer exists for the profile id.
func (s *Scheduler) Scheduled(profileID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[profileID]
	return ok
}

// Start launches the background driver. It returns immediately; the
// driver runs until Stop is called or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.poll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case now := <-ticker.C:
				s.fireDue(ctx, now)
			}
		}
	}()
}

// Stop halts the driver and waits for an in-flight firing to finish.
func (s *Scheduler) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop = nil
}

// fireDue runs every profile whose timer has elapsed. Fires are
// sequential; a failure or panic in one run is logged and never
// terminates the driver.
func (s *Scheduler) fireDue(ctx context.Context, now time.Time) {
	s.mu.Lock()
	var due []string
	for id, t := range s.timers {
		if !now.Before(t.next) {
			due = append(due, id)
			t.next = now.Add(t.interval)
		}
	}
	s.mu.Unlock()

	for _, id := range due {
		s.fire(ctx, id)
	}
}

func (s *Scheduler) fire(ctx context.Context, profileID string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scheduled run panicked",
				zap.String("profile_id", profileID),
				zap.Any("panic", r),
			)
		}
	}()

	n, err := s.run(ctx, profileID)
	if err != nil {
		s.log.Error("scheduled run failed",
			zap.String("profile_id", profileID),
			zap.Error(err),
		)
		return
	}
	s.log.Info("scheduled run complete",
		zap.String("profile_id", profileID),
		zap.Int("new_items", n),
	)
}
