// internal/game/timer.go
//
// Restartable elapsed-time counter for one game session.
// Elapsed seconds are computed from a wall-clock baseline fixed at start
// time minus any already-accumulated duration, so stop/start preserves the
// accumulator. One cooperative tick per second drives observers; ticks
// stop completely when the timer stops, and starting while running cancels
// the prior schedule first (never double-scheduled).

package game

import (
	"fmt"
	"sync"
	"time"
)

// Timer counts elapsed whole seconds for a session. Safe for concurrent use.
type Timer struct {
	mu       sync.Mutex
	now      func() time.Time // injectable clock for tests
	interval time.Duration

	baseline time.Time // start instant minus accumulated duration
	acc      int       // seconds accumulated across previous runs
	running  bool
	stop     chan struct{}
	onTick   func(seconds int)
}

// NewTimer builds a stopped, zeroed Timer ticking once per second.
func NewTimer() *Timer {
	return &Timer{now: time.Now, interval: time.Second}
}

// OnTick registers a per-second observer callback. Must be set before Start.
func (t *Timer) OnTick(fn func(seconds int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTick = fn
}

// Start begins (or resumes) counting. A running timer is stopped first so
// ticks are never double-scheduled.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		t.stopLocked()
	}
	t.baseline = t.now().Add(-time.Duration(t.acc) * time.Second)
	t.running = true
	t.stop = make(chan struct{})
	go t.loop(t.stop)
}

// Stop halts ticking without resetting the accumulator.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Reset stops the timer and zeroes the accumulator.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.acc = 0
}

// Elapsed returns the current elapsed whole seconds.
func (t *Timer) Elapsed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsedLocked()
}

func (t *Timer) elapsedLocked() int {
	if !t.running {
		return t.acc
	}
	return int(t.now().Sub(t.baseline) / time.Second)
}

// stopLocked freezes the accumulator and cancels the tick schedule.
// Caller holds t.mu.
func (t *Timer) stopLocked() {
	if !t.running {
		return
	}
	t.acc = t.elapsedLocked()
	t.running = false
	close(t.stop)
	t.stop = nil
}

// loop delivers one observer tick per interval until stopped.
func (t *Timer) loop(stop chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			fn, sec := t.onTick, t.elapsedLocked()
			t.mu.Unlock()
			if fn != nil {
				fn(sec)
			}
		}
	}
}

// FormatElapsed renders seconds as MM:SS, zero-padded, minutes unbounded.
func FormatElapsed(totalSeconds int) string {
	return fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
}
