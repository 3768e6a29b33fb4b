package contest

import (
	"context"
	"fmt"

	"github.com/programme-lv/contest-portal/anticheat"
)

type EventType string

const (
	EventVisibility     EventType = "visibility"
	EventBlur           EventType = "blur"
	EventFocus          EventType = "focus"
	EventFullscreen     EventType = "fullscreen"
	EventKeyDown        EventType = "keydown"
	EventContextMenu    EventType = "contextmenu"
	EventClick          EventType = "click"
	EventDismissWarning EventType = "dismiss_warning"
	EventTab            EventType = "tab"
	EventResize         EventType = "resize"
)

// Event is a browser event forwarded by the page script.
type Event struct {
	Type       EventType     `json:"type"`
	Hidden     bool          `json:"hidden,omitempty"`
	Fullscreen bool          `json:"fullscreen,omitempty"`
	Key        anticheat.Key `json:"key,omitempty"`
	Tab        string        `json:"tab,omitempty"`

	StartHeight int `json:"start_height,omitempty"`
	StartY      int `json:"start_y,omitempty"`
	Y           int `json:"y,omitempty"`
}

// Reaction tells the page script what to do with the event.
type Reaction struct {
	PreventDefault    bool `json:"prevent_default"`
	RequestFullscreen bool `json:"request_fullscreen"`
}

func (p *IDE) HandleEvent(ctx context.Context, ev Event) (Reaction, error) {
	switch ev.Type {
	case EventVisibility:
		if ev.Hidden {
			p.clock.Pause()
			p.violation(anticheat.KindVisibilityHidden, "")
		} else {
			p.resumeIfUnsolved()
		}
	case EventBlur:
		p.clock.Pause()
		p.violation(anticheat.KindBlur, "")
	case EventFocus:
		p.resumeIfUnsolved()
	case EventFullscreen:
		if !ev.Fullscreen {
			p.violation(anticheat.KindFullscreenExit, "")
		}
	case EventKeyDown:
		if anticheat.IsBlockedChord(ev.Key) {
			p.violation(anticheat.KindBlockedKey, ev.Key.String())
			p.publish()
			return Reaction{PreventDefault: true}, nil
		}
		return Reaction{}, nil
	case EventContextMenu:
		return Reaction{PreventDefault: true}, nil
	case EventClick:
		return Reaction{RequestFullscreen: p.firstClick()}, nil
	case EventDismissWarning:
		p.DismissWarning()
		return Reaction{RequestFullscreen: true}, nil
	case EventTab:
		p.SwitchTab(ev.Tab)
		return Reaction{}, nil
	case EventResize:
		p.ResizeOutput(ev.StartHeight, ev.StartY, ev.Y)
		return Reaction{}, nil
	default:
		return Reaction{}, fmt.Errorf("unknown event type %q", ev.Type)
	}
	p.publish()
	return Reaction{}, nil
}

// violation counts a focus-loss event and asks the page to take focus and
// fullscreen back. Nothing is counted once the contest is over.
func (p *IDE) violation(kind anticheat.Kind, key string) {
	if _, ok := p.cheats.Record(kind, key); !ok {
		return
	}
	p.mu.Lock()
	p.focus++
	p.mu.Unlock()
	p.logger.Debug("violation", "kind", kind, "key", key, "count", p.cheats.Count())
}

// Violations lists what the page recorded, oldest first.
func (p *IDE) Violations() []anticheat.Violation {
	return p.cheats.Violations()
}

func countByKind(vs []anticheat.Violation) map[anticheat.Kind]int {
	out := make(map[anticheat.Kind]int)
	for _, v := range vs {
		out[v.Kind]++
	}
	return out
}

func (p *IDE) resumeIfUnsolved() {
	p.mu.Lock()
	resume := p.current != nil && !p.solved[p.current.ID] && !p.timesUp
	p.mu.Unlock()
	if resume {
		p.clock.Resume()
	}
}

func (p *IDE) firstClick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.clicked {
		return false
	}
	p.clicked = true
	return true
}

func (p *IDE) DismissWarning() {
	p.cheats.Dismiss()
	p.mu.Lock()
	p.focus++
	p.mu.Unlock()
	p.publish()
}
