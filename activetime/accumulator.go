// Package activetime estimates how long a participant kept each problem
// focused. The figure is a hint sent along with submissions; the backend must
// not treat it as authoritative.
package activetime

import (
	"sync"
	"time"
)

type Accumulator struct {
	mu       sync.Mutex
	now      func() time.Time
	acc      map[int]time.Duration
	current  int
	hasCur   bool
	openedAt time.Time
	running  bool
}

func New(now func() time.Time) *Accumulator {
	if now == nil {
		now = time.Now
	}
	return &Accumulator{
		now: now,
		acc: make(map[int]time.Duration),
	}
}

// Select pauses the running problem, makes pid current and starts its clock.
func (a *Accumulator) Select(pid int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pauseLocked()
	a.current = pid
	a.hasCur = true
	a.openedAt = a.now()
	a.running = true
}

// Pause folds the in-flight interval into the current problem's total.
func (a *Accumulator) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pauseLocked()
}

func (a *Accumulator) pauseLocked() {
	if !a.hasCur || !a.running {
		return
	}
	a.acc[a.current] += a.now().Sub(a.openedAt)
	a.running = false
}

// Resume restarts the clock of the current problem. It is a no-op when no
// problem is selected or the clock already runs.
func (a *Accumulator) Resume() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.hasCur || a.running {
		return
	}
	a.openedAt = a.now()
	a.running = true
}

// Seconds returns the stored total for pid plus the in-flight interval when
// pid is the running problem.
func (a *Accumulator) Seconds(pid int) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	d := a.acc[pid]
	if a.hasCur && a.current == pid && a.running {
		d += a.now().Sub(a.openedAt)
	}
	return d.Seconds()
}

func (a *Accumulator) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Current returns the selected problem, if any.
func (a *Accumulator) Current() (int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current, a.hasCur
}
