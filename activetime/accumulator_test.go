package activetime_test

import (
	"testing"
	"time"

	"github.com/programme-lv/contest-portal/activetime"
	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)}
}

func TestSwitchingProblemsSplitsTime(t *testing.T) {
	clk := newClock()
	acc := activetime.New(clk.Now)

	acc.Select(1)
	clk.Advance(90 * time.Second)
	acc.Select(2)
	clk.Advance(30 * time.Second)

	assert.InDelta(t, 90, acc.Seconds(1), 0.001)
	assert.InDelta(t, 30, acc.Seconds(2), 0.001)

	clk.Advance(15 * time.Second)
	assert.InDelta(t, 90, acc.Seconds(1), 0.001, "problem 1 is not open")
	assert.InDelta(t, 45, acc.Seconds(2), 0.001)
}

func TestPauseAndResume(t *testing.T) {
	clk := newClock()
	acc := activetime.New(clk.Now)

	acc.Select(3)
	clk.Advance(10 * time.Second)
	acc.Pause()
	assert.False(t, acc.Running())

	clk.Advance(time.Minute)
	assert.InDelta(t, 10, acc.Seconds(3), 0.001, "hidden time is not counted")

	acc.Resume()
	clk.Advance(5 * time.Second)
	assert.InDelta(t, 15, acc.Seconds(3), 0.001)

	acc.Pause()
	acc.Pause()
	assert.InDelta(t, 15, acc.Seconds(3), 0.001, "double pause is harmless")
}

func TestResumeWithoutSelectionDoesNothing(t *testing.T) {
	clk := newClock()
	acc := activetime.New(clk.Now)
	acc.Resume()
	clk.Advance(time.Minute)
	assert.False(t, acc.Running())
	_, ok := acc.Current()
	assert.False(t, ok)
	assert.Zero(t, acc.Seconds(1))
}

func TestReselectKeepsAccumulatedTime(t *testing.T) {
	clk := newClock()
	acc := activetime.New(clk.Now)

	acc.Select(1)
	clk.Advance(20 * time.Second)
	acc.Select(2)
	clk.Advance(20 * time.Second)
	acc.Select(1)
	clk.Advance(20 * time.Second)

	assert.InDelta(t, 40, acc.Seconds(1), 0.001)
	assert.InDelta(t, 20, acc.Seconds(2), 0.001)
}
