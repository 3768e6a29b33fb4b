// Package countdown projects the server-reported contest window onto a local
// clock. The backend's contest status stays authoritative: Reconcile forces
// the terminal state whenever the server says the contest is over.
package countdown

import (
	"sync"
	"time"

	"github.com/programme-lv/contest-portal/view"
)

type Level int

const (
	LevelNormal Level = iota
	LevelWarning
	LevelCritical
)

// Class is the CSS class of the timer element.
func (l Level) Class() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelCritical:
		return "critical"
	}
	return ""
}

type EndReason string

const (
	ReasonNone       EndReason = ""
	ReasonTimeUp     EndReason = "time_up"
	ReasonStopped    EndReason = "stopped"
	ReasonForceEnded EndReason = "force_ended"
)

type Thresholds struct {
	Warning   time.Duration
	Critical  time.Duration
	EndButton time.Duration
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Warning:   10 * time.Minute,
		Critical:  5 * time.Minute,
		EndButton: 10 * time.Minute,
	}
}

type Reading struct {
	Started   bool
	Remaining time.Duration
	Text      string
	Level     Level

	ShowEndButton     bool
	EndButtonRevealed bool // revealed by this tick

	Ended    bool
	EndedNow bool // terminal transition happened on this tick
	Reason   EndReason
}

// ServerState is the part of the contest status the countdown cares about.
type ServerState struct {
	Active     bool
	ForceEnded bool
	Start      time.Time
	HasStart   bool
	Duration   time.Duration
}

type Reconciliation struct {
	StartedNow bool
	EndedNow   bool
	Reason     EndReason
}

type Countdown struct {
	mu  sync.Mutex
	now func() time.Time
	th  Thresholds

	start    time.Time
	duration time.Duration
	started  bool

	endShown bool
	ended    bool
	reason   EndReason
}

func New(now func() time.Time, th Thresholds) *Countdown {
	if now == nil {
		now = time.Now
	}
	return &Countdown{now: now, th: th}
}

// Start (re)anchors the countdown to the server's start time.
func (c *Countdown) Start(start time.Time, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = start
	c.duration = duration
	c.started = true
}

func (c *Countdown) Started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

func (c *Countdown) Ended() (bool, EndReason) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ended, c.reason
}

// Tick computes remaining = max(0, duration - elapsed since start) and
// latches the end-button and terminal thresholds.
func (c *Countdown) Tick() Reading {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return Reading{Ended: c.ended, Reason: c.reason, ShowEndButton: c.endShown}
	}

	remaining := c.duration - c.now().Sub(c.start)
	if remaining < 0 {
		remaining = 0
	}
	r := Reading{
		Started:   true,
		Remaining: remaining,
		Text:      view.ClockText(remaining),
	}
	switch {
	case remaining < c.th.Critical:
		r.Level = LevelCritical
	case remaining < c.th.Warning:
		r.Level = LevelWarning
	}

	if remaining <= c.th.EndButton && !c.endShown {
		c.endShown = true
		r.EndButtonRevealed = true
	}
	if remaining <= 0 && !c.ended {
		c.ended = true
		c.reason = ReasonTimeUp
		r.EndedNow = true
	}
	r.ShowEndButton = c.endShown
	r.Ended = c.ended
	r.Reason = c.reason
	return r
}

// Reconcile applies a polled server status. An inactive or force-ended
// contest ends the countdown regardless of the remaining local time; an
// active contest with a known start begins it if it has not started yet.
func (c *Countdown) Reconcile(s ServerState) Reconciliation {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out Reconciliation
	if (!s.Active || s.ForceEnded) && !c.ended {
		c.ended = true
		c.reason = ReasonStopped
		if s.ForceEnded {
			c.reason = ReasonForceEnded
		}
		out.EndedNow = true
		out.Reason = c.reason
	}
	if s.Active && s.HasStart && !c.started && !c.ended {
		c.start = s.Start
		c.duration = s.Duration
		c.started = true
		out.StartedNow = true
	}
	return out
}
