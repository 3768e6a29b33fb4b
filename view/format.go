// Package view holds the formatting helpers and small typed fragments shared by
// the page controllers and their renderers.
package view

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Dash is shown wherever a value is missing.
const Dash = "—"

// FormatTime renders a duration in seconds as "Xm Ys". Zero and negative
// values render as Dash.
func FormatTime(seconds float64) string {
	if seconds <= 0 || math.IsNaN(seconds) {
		return Dash
	}
	m := int64(math.Floor(seconds / 60))
	s := int64(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%dm %ds", m, s)
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// Esc escapes &, <, > and " for interpolation into markup. Empty input yields
// an empty string.
func Esc(s string) string {
	if s == "" {
		return ""
	}
	return escaper.Replace(s)
}

var rankSymbols = []string{"🥇", "🥈", "🥉"}
var rankClasses = []string{"rank-gold", "rank-silver", "rank-bronze"}

// RankSymbol is the medal for the first three leaderboard rows and the
// 1-based rank for the rest.
func RankSymbol(i int) string {
	if i >= 0 && i < len(rankSymbols) {
		return rankSymbols[i]
	}
	return strconv.Itoa(i + 1)
}

func RankClass(i int) string {
	if i >= 0 && i < len(rankClasses) {
		return rankClasses[i]
	}
	return "rank-other"
}

// ClockText renders remaining time as zero-padded "MM:SS".
func ClockText(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	total := int64(remaining / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

var taskPrefix = regexp.MustCompile(`^Task \d+: `)

// StripTaskPrefix turns "Task 3: Vent Stack" into "Vent Stack".
func StripTaskPrefix(title string) string {
	return taskPrefix.ReplaceAllString(title, "")
}

// StripResultMarker drops the RESULT: markers the judge driver prints.
func StripResultMarker(s string) string {
	return strings.ReplaceAll(s, "RESULT:", "")
}

// ProblemName looks up a configured display name, falling back to "Problem N".
func ProblemName(names map[int]string, id int) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("Problem %d", id)
}

const (
	MinPanelHeight = 80
	MaxPanelHeight = 400
)

// ClampPanelHeight computes the output panel height while the resize handle is
// dragged from startY to y.
func ClampPanelHeight(startHeight, startY, y int) int {
	h := startHeight + startY - y
	return max(MinPanelHeight, min(MaxPanelHeight, h))
}

// LocalTime formats a backend timestamp as a wall clock time, or Dash when it
// cannot be parsed.
func LocalTime(raw string, loc *time.Location) string {
	t, ok := ParseTimestamp(raw)
	if !ok {
		return Dash
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("15:04:05")
}

// LocalDateTime is LocalTime with the date.
func LocalDateTime(raw string, loc *time.Location) string {
	t, ok := ParseTimestamp(raw)
	if !ok {
		return Dash
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("2006-01-02 15:04:05")
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05",
}

// ParseTimestamp accepts the ISO-8601 forms the backend emits. Timestamps
// without an offset are taken as UTC.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
