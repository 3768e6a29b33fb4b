// Package page contains the plumbing every page controller is built from:
// renderers for typed screen snapshots, navigation and dialogs.
package page

import "sync"

// Renderer receives a complete screen snapshot after every state change.
// Implementations must treat each snapshot as replacing the previous one.
type Renderer[S any] interface {
	Render(S)
}

type RenderFunc[S any] func(S)

func (f RenderFunc[S]) Render(s S) { f(s) }

// Navigator moves the browser to another page.
type Navigator interface {
	Navigate(path string)
}

type NavigateFunc func(path string)

func (f NavigateFunc) Navigate(path string) { f(path) }

// Dialog asks the user for confirmation and shows blocking notices.
type Dialog interface {
	Confirm(msg string) bool
	Alert(msg string)
}

// Holder keeps the latest snapshot of a screen. Every Render bumps the
// generation and wakes subscribers.
type Holder[S any] struct {
	mu   sync.RWMutex
	gen  uint64
	cur  S
	subs map[chan uint64]struct{}
}

func NewHolder[S any](initial S) *Holder[S] {
	return &Holder[S]{
		cur:  initial,
		subs: make(map[chan uint64]struct{}),
	}
}

func (h *Holder[S]) Render(s S) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.gen++
	h.cur = s
	for ch := range h.subs {
		select {
		case ch <- h.gen:
		default:
		}
	}
}

// Latest returns the current snapshot and its generation.
func (h *Holder[S]) Latest() (S, uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cur, h.gen
}

// Subscribe returns a channel receiving generation numbers. The channel
// holds one pending value; slow readers only miss intermediate generations.
func (h *Holder[S]) Subscribe() (<-chan uint64, func()) {
	ch := make(chan uint64, 1)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
}

// Flash is a Dialog for request/response front ends: confirmation already
// happened in the browser before the request was sent, and alerts are queued
// until the next response picks them up.
type Flash struct {
	mu     sync.Mutex
	alerts []string
}

func (f *Flash) Confirm(string) bool { return true }

func (f *Flash) Alert(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, msg)
}

// Drain returns and clears the queued alerts.
func (f *Flash) Drain() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.alerts
	f.alerts = nil
	return out
}

// Redirect records the last navigation target.
type Redirect struct {
	mu   sync.Mutex
	path string
}

func (r *Redirect) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = path
}

// Take returns and clears the pending target.
func (r *Redirect) Take() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.path
	r.path = ""
	return p
}
