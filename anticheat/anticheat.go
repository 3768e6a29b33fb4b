// Package anticheat counts focus-loss style violations for the contest page.
// It only drives a warning overlay; nothing here can be enforced against a
// participant who controls their own browser.
package anticheat

import (
	"fmt"
	"sync"
	"time"
)

type Kind string

const (
	KindVisibilityHidden Kind = "visibility_hidden"
	KindBlur             Kind = "blur"
	KindFullscreenExit   Kind = "fullscreen_exit"
	KindBlockedKey       Kind = "blocked_key"
)

// Key is a keydown event as reported by the browser.
type Key struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl"`
	Alt   bool   `json:"alt"`
	Shift bool   `json:"shift"`
	Meta  bool   `json:"meta"`
}

func (k Key) String() string {
	s := ""
	if k.Ctrl {
		s += "ctrl+"
	}
	if k.Alt {
		s += "alt+"
	}
	if k.Shift {
		s += "shift+"
	}
	if k.Meta {
		s += "meta+"
	}
	return s + k.Key
}

var ctrlBlocked = map[string]bool{"t": true, "w": true, "n": true, "Tab": true}

// IsBlockedChord reports whether the chord opens, closes or switches tabs or
// opens developer tools.
func IsBlockedChord(k Key) bool {
	switch {
	case k.Ctrl && ctrlBlocked[k.Key]:
		return true
	case k.Alt && k.Key == "Tab":
		return true
	case k.Key == "F12":
		return true
	}
	return false
}

type Violation struct {
	Kind Kind
	At   time.Time
	Key  string
}

// Warning is the overlay state.
type Warning struct {
	Shown bool
	Count int
	Text  string
}

const maxKept = 256

type Tracker struct {
	mu         sync.Mutex
	now        func() time.Time
	count      int
	shown      bool
	frozen     bool
	violations []Violation
}

func NewTracker(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{now: now}
}

// Record counts a violation and raises the overlay. Once the tracker is
// frozen it ignores everything and reports false.
func (t *Tracker) Record(kind Kind, key string) (Warning, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.frozen {
		return t.warningLocked(), false
	}
	t.count++
	t.shown = true
	t.violations = append(t.violations, Violation{Kind: kind, At: t.now(), Key: key})
	if len(t.violations) > maxKept {
		t.violations = t.violations[len(t.violations)-maxKept:]
	}
	return t.warningLocked(), true
}

// Freeze stops counting, used once the contest is over for this page.
func (t *Tracker) Freeze() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frozen = true
}

func (t *Tracker) Dismiss() Warning {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shown = false
	return t.warningLocked()
}

func (t *Tracker) Warning() Warning {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.warningLocked()
}

func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Violations returns the most recent violations, oldest first.
func (t *Tracker) Violations() []Violation {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Violation, len(t.violations))
	copy(out, t.violations)
	return out
}

func (t *Tracker) warningLocked() Warning {
	return Warning{
		Shown: t.shown,
		Count: t.count,
		Text:  fmt.Sprintf("Violation count: %d", t.count),
	}
}
