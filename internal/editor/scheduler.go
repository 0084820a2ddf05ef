package editor

import (
	"sort"
	"sync"
	"time"
)

// Timer is a cancellable pending callback.
type Timer interface {
	Stop()
}

// Scheduler abstracts delayed execution so session timing (autosave
// debounce, fade, retry, history coalescing) is testable without wall
// clocks.
type Scheduler interface {
	After(d time.Duration, fn func()) Timer
}

type wallScheduler struct{}

// NewScheduler returns a Scheduler backed by time.AfterFunc.
func NewScheduler() Scheduler { return wallScheduler{} }

func (wallScheduler) After(d time.Duration, fn func()) Timer {
	return wallTimer{time.AfterFunc(d, fn)}
}

type wallTimer struct{ t *time.Timer }

func (w wallTimer) Stop() { w.t.Stop() }

// ManualScheduler is a deterministic Scheduler driven by Advance.
// Callbacks run synchronously on the advancing goroutine, in due
// order.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

func NewManualScheduler() *ManualScheduler { return &ManualScheduler{} }

func (s *ManualScheduler) After(d time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{due: s.now + d, fn: fn, sched: s}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves virtual time forward and fires every timer that comes
// due, including timers scheduled by the callbacks themselves.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	deadline := s.now
	s.mu.Unlock()
	for {
		t := s.popDue(deadline)
		if t == nil {
			return
		}
		t.fn()
	}
}

func (s *ManualScheduler) popDue(deadline time.Duration) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	sort.SliceStable(s.timers, func(i, j int) bool { return s.timers[i].due < s.timers[j].due })
	for i, t := range s.timers {
		if t.stopped {
			continue
		}
		if t.due <= deadline {
			s.timers = append(s.timers[:i:i], s.timers[i+1:]...)
			return t
		}
	}
	return nil
}

type manualTimer struct {
	due     time.Duration
	fn      func()
	sched   *ManualScheduler
	stopped bool
}

func (t *manualTimer) Stop() {
	t.sched.mu.Lock()
	t.stopped = true
	t.sched.mu.Unlock()
}
