package fulfillment

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// CompleteFunc is invoked when an order's timer elapses.
type CompleteFunc func(ctx context.Context, orderID string) error

// PendingRecorder observes the number of armed timers.
type PendingRecorder interface {
	SetPendingTimers(count int)
}

// Scheduler holds at most one automatic completion timer per order.
type Scheduler struct {
	complete CompleteFunc
	recorder PendingRecorder
	logger   *slog.Logger
	timeout  time.Duration

	mu       sync.Mutex
	timers   map[string]*pendingTimer
	stopped  bool
	inFlight sync.WaitGroup
}

func NewScheduler(complete CompleteFunc, recorder PendingRecorder, logger *slog.Logger, callbackTimeout time.Duration) *Scheduler {
	if callbackTimeout <= 0 {
		callbackTimeout = time.Minute
	}
	return &Scheduler{
		complete: complete,
		recorder: recorder,
		logger:   logger.With("component", "fulfillment_scheduler"),
		timeout:  callbackTimeout,
		timers:   make(map[string]*pendingTimer),
	}
}

// pendingTimer is allocated before its timer is armed, so the callback can
// compare identities without reading the timer itself.
type pendingTimer struct {
	timer *time.Timer
}

// Schedule arms the timer for orderID, replacing any timer already armed for it.
func (s *Scheduler) Schedule(orderID string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		s.logger.Warn("scheduler stopped, timer not armed", "order_id", orderID)
		return
	}

	if previous, ok := s.timers[orderID]; ok {
		previous.timer.Stop()
	}

	entry := &pendingTimer{}
	s.timers[orderID] = entry
	entry.timer = time.AfterFunc(delay, func() {
		s.fire(orderID, entry)
	})
	s.recordPending()

	s.logger.Info("fulfillment timer armed", "order_id", orderID, "delay", delay.String())
}

func (s *Scheduler) fire(orderID string, entry *pendingTimer) {
	s.mu.Lock()
	if s.stopped || s.timers[orderID] != entry {
		s.mu.Unlock()
		return
	}
	delete(s.timers, orderID)
	s.recordPending()
	s.inFlight.Add(1)
	s.mu.Unlock()

	defer s.inFlight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.logger.Info("fulfillment timer fired", "order_id", orderID)
	if err := s.complete(ctx, orderID); err != nil {
		s.logger.Error("automatic completion failed", "order_id", orderID, "error", err)
	}
}

// Cancel disarms the timer of orderID and reports whether one was armed.
func (s *Scheduler) Cancel(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.timers[orderID]
	if !ok {
		return false
	}
	entry.timer.Stop()
	delete(s.timers, orderID)
	s.recordPending()
	return true
}

func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop disarms every timer and waits for running callbacks until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	for orderID, entry := range s.timers {
		entry.timer.Stop()
		delete(s.timers, orderID)
	}
	s.recordPending()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.inFlight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// recordPending must be called with s.mu held.
func (s *Scheduler) recordPending() {
	if s.recorder != nil {
		s.recorder.SetPendingTimers(len(s.timers))
	}
}
