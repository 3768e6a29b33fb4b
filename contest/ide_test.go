package contest_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/programme-lv/contest-portal/anticheat"
	"github.com/programme-lv/contest-portal/contest"
	"github.com/programme-lv/contest-portal/contestapi"
	"github.com/programme-lv/contest-portal/page"
	"github.com/programme-lv/contest-portal/planglist"
	"github.com/programme-lv/contest-portal/srvcerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeAPI struct {
	mu sync.Mutex

	status    contestapi.ContestStatus
	statusErr error
	problems  []contestapi.Problem
	solved    []int
	loadErr   error

	run       contestapi.RunResult
	submit    contestapi.SubmitResult
	judgeErr  error
	saveErr   error
	end       contestapi.ActionResult
	endErr    error
	opened    []int
	saves     []contestapi.CodeRequest
	runs      []contestapi.CodeRequest
	submits   []contestapi.SubmitRequest
	endCalled int
}

func (f *fakeAPI) ContestStatus(context.Context) (contestapi.ContestStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.statusErr
}

func (f *fakeAPI) Problems(context.Context) ([]contestapi.Problem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.problems, f.loadErr
}

func (f *fakeAPI) Solved(context.Context) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.solved, nil
}

func (f *fakeAPI) OpenProblem(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, id)
	return nil
}

func (f *fakeAPI) Run(_ context.Context, req contestapi.CodeRequest) (contestapi.RunResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, req)
	return f.run, f.judgeErr
}

func (f *fakeAPI) Submit(_ context.Context, req contestapi.SubmitRequest) (contestapi.SubmitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits = append(f.submits, req)
	return f.submit, f.judgeErr
}

func (f *fakeAPI) SaveCode(_ context.Context, req contestapi.CodeRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, req)
	return f.saveErr
}

func (f *fakeAPI) EndTest(context.Context) (contestapi.ActionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.endCalled++
	return f.end, f.endErr
}

var t0 = time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

func problems() []contestapi.Problem {
	return []contestapi.Problem{
		{
			ID: 1, Title: "Task 1: Signal Decoder", Subtitle: "strings",
			Description: "<p>Decode it.</p>",
			VisibleTestCases: []contestapi.TestCase{
				{Input: "abc", Expected: "RESULT:cba", Explanation: "reversed"},
			},
			Boilerplate: map[string]string{"python": "def solve(s):\n", "cpp": "string solve(string s) {}"},
		},
		{
			ID: 2, Title: "Task 2: Reactor Frequency", Subtitle: "math",
			Boilerplate: map[string]string{"python": "def freq(n):\n"},
		},
		{ID: 3, Title: "Task 3: Vent Stack", Subtitle: "stacks"},
	}
}

type harness struct {
	api   *fakeAPI
	clock *fakeClock
	ide   *contest.IDE
	shown *page.Holder[contest.Screen]
	nav   *page.Redirect
}

func newHarness(t *testing.T, api *fakeAPI) *harness {
	t.Helper()
	clock := &fakeClock{t: t0}
	if api.problems == nil {
		api.problems = problems()
	}
	if api.status == (contestapi.ContestStatus{}) {
		api.status = contestapi.ContestStatus{
			Active:    true,
			StartTime: t0.Add(-3300*time.Second - 500*time.Millisecond).Format(time.RFC3339Nano),
			Duration:  3600,
		}
	}
	h := &harness{api: api, clock: clock, shown: page.NewHolder(contest.Initial()), nav: &page.Redirect{}}
	h.ide = contest.New(api, h.shown, h.nav, contest.Config{Now: clock.Now, Location: time.UTC})
	return h
}

func (h *harness) screen() contest.Screen {
	s, _ := h.shown.Latest()
	return s
}

func TestLoadRendersSidebarAndTimer(t *testing.T) {
	h := newHarness(t, &fakeAPI{solved: []int{3}})

	require.NoError(t, h.ide.Load(context.Background()))
	s := h.screen()

	require.Len(t, s.Sidebar, 3)
	assert.Equal(t, "1.", s.Sidebar[0].Number)
	assert.Equal(t, "Signal Decoder", s.Sidebar[0].Title)
	assert.False(t, s.Sidebar[0].Solved)
	assert.True(t, s.Sidebar[2].Solved)

	assert.True(t, s.Timer.Started)
	assert.Equal(t, "04:59", s.Timer.Text)
	assert.Equal(t, "critical", s.Timer.Class)
	assert.True(t, s.EndButton)
	assert.False(t, s.TimesUp.Open)

	assert.Nil(t, s.Problem)
	assert.Equal(t, contest.TextSelectTask, s.Editor.Code)
	assert.False(t, s.Buttons.RunEnabled)
}

func TestLoadFailure(t *testing.T) {
	h := newHarness(t, &fakeAPI{loadErr: srvcerror.ErrNetwork()})

	require.Error(t, h.ide.Load(context.Background()))
	s := h.screen()
	assert.Equal(t, "Network error: Network error", s.Output.Notice)
	assert.Equal(t, "error", s.Output.NoticeClass)
	assert.Empty(t, s.Sidebar)
}

func TestSelectProblem(t *testing.T) {
	h := newHarness(t, &fakeAPI{})
	ctx := context.Background()
	require.NoError(t, h.ide.Load(ctx))

	require.NoError(t, h.ide.SelectProblem(ctx, 1))
	s := h.screen()

	require.NotNil(t, s.Problem)
	assert.Equal(t, "Task 1: Signal Decoder", s.Problem.Title)
	assert.Equal(t, contest.TextProblemNotice, s.Problem.Notice)
	require.Len(t, s.Problem.Samples, 1)
	assert.Equal(t, "SAMPLE 1", s.Problem.Samples[0].Label)
	assert.Equal(t, "cba", s.Problem.Samples[0].Expected)

	assert.True(t, s.Sidebar[0].Active)
	assert.Equal(t, "def solve(s):\n", s.Editor.Code)
	assert.Equal(t, "python", s.Editor.MonacoID)
	assert.True(t, s.Buttons.RunEnabled)
	assert.True(t, s.Buttons.SubmitEnabled)
	assert.Equal(t, contest.TextOutputHint, s.Output.Notice)

	require.NoError(t, h.ide.SelectProblem(ctx, 2))
	require.NoError(t, h.ide.SelectProblem(ctx, 1))
	assert.Equal(t, []int{1, 2}, h.api.opened, "the backend hears about the first open only")

	err := h.ide.SelectProblem(ctx, 42)
	assert.True(t, srvcerror.HasCode(err, srvcerror.ErrCodeProblemNotFound))
}

func TestSelectSolvedProblemOnlyShowsNotice(t *testing.T) {
	h := newHarness(t, &fakeAPI{solved: []int{2}})
	ctx := context.Background()
	require.NoError(t, h.ide.Load(ctx))
	require.NoError(t, h.ide.SelectProblem(ctx, 1))

	require.NoError(t, h.ide.SelectProblem(ctx, 2))
	s := h.screen()
	assert.Equal(t, contest.TextAlreadySolved, s.Output.Notice)
	assert.Equal(t, "success", s.Output.NoticeClass)
	require.NotNil(t, s.Problem)
	assert.Equal(t, 1, s.Problem.ID)
}

func TestCodeStoreKeepsEditsPerProblemAndLanguage(t *testing.T) {
	h := newHarness(t, &fakeAPI{})
	ctx := context.Background()
	require.NoError(t, h.ide.Load(ctx))

	require.NoError(t, h.ide.SelectProblem(ctx, 1))
	h.ide.EditCode("def solve(s):\n    return s[::-1]\n")
	rev := h.ide.Snapshot().Editor.Revision

	require.NoError(t, h.ide.ChangeLanguage("cpp"))
	s := h.screen()
	assert.Equal(t, "string solve(string s) {}", s.Editor.Code)
	assert.Equal(t, "cpp", s.Editor.MonacoID)
	assert.Greater(t, s.Editor.Revision, rev)

	require.NoError(t, h.ide.SelectProblem(ctx, 2))
	assert.Equal(t, "", h.screen().Editor.Code, "no cpp boilerplate for problem 2")

	require.NoError(t, h.ide.ChangeLanguage("python"))
	assert.Equal(t, "def freq(n):\n", h.screen().Editor.Code)

	require.NoError(t, h.ide.SelectProblem(ctx, 1))
	assert.Equal(t, "def solve(s):\n    return s[::-1]\n", h.screen().Editor.Code)
}

func TestChangeLanguageRejectsUnknown(t *testing.T) {
	h := newHarness(t, &fakeAPI{})
	err := h.ide.ChangeLanguage("cobol")
	assert.True(t, srvcerror.HasCode(err, planglist.ErrCodeInvalidProgLang))
}

func TestActiveTimeFollowsSelectionAndFocus(t *testing.T) {
	h := newHarness(t, &fakeAPI{})
	ctx := context.Background()
	require.NoError(t, h.ide.Load(ctx))

	require.NoError(t, h.ide.SelectProblem(ctx, 1))
	h.clock.Advance(10 * time.Second)
	require.NoError(t, h.ide.SelectProblem(ctx, 2))
	h.clock.Advance(5 * time.Second)

	assert.InDelta(t, 10, h.ide.ActiveSeconds(1), 0.001)
	assert.InDelta(t, 5, h.ide.ActiveSeconds(2), 0.001)

	_, err := h.ide.HandleEvent(ctx, contest.Event{Type: contest.EventBlur})
	require.NoError(t, err)
	h.clock.Advance(time.Minute)
	assert.InDelta(t, 5, h.ide.ActiveSeconds(2), 0.001, "away time is not counted")

	_, err = h.ide.HandleEvent(ctx, contest.Event{Type: contest.EventFocus})
	require.NoError(t, err)
	h.clock.Advance(2 * time.Second)
	assert.InDelta(t, 7, h.ide.ActiveSeconds(2), 0.001)
	assert.InDelta(t, 10, h.ide.ActiveSeconds(1), 0.001)
}

func TestRunShowsVisibleResults(t *testing.T) {
	api := &fakeAPI{run: contestapi.RunResult{Results: []contestapi.TestResult{
		{Passed: true, Expected: "RESULT:cba", Got: "cba"},
		{Passed: false, Expected: "RESULT:x", Got: ""},
	}}}
	h := newHarness(t, api)
	ctx := context.Background()
	require.NoError(t, h.ide.Load(ctx))
	require.NoError(t, h.ide.SelectProblem(ctx, 1))
	h.ide.EditCode("def solve(s): return s[::-1]")

	require.NoError(t, h.ide.Run(ctx))

	require.Len(t, api.runs, 1)
	assert.Equal(t, contestapi.CodeRequest{ProblemID: 1, Language: "python", Code: "def solve(s): return s[::-1]"}, api.runs[0])

	s := h.screen()
	assert.Empty(t, s.Output.Banner)
	require.Len(t, s.Output.Results, 2)
	assert.Equal(t, "Test Case 1", s.Output.Results[0].Label)
	assert.Equal(t, "cba", s.Output.Results[0].Expected)
	assert.Equal(t, "Test Case 2", s.Output.Results[1].Label, "runs never label hidden cases")
	assert.Equal(t, contest.TextNoOutput, s.Output.Results[1].Got)
	assert.Equal(t, contest.ButtonRun, s.Buttons.RunText)
	assert.True(t, s.Buttons.RunEnabled)
}

func TestRunWithoutResults(t *testing.T) {
	h := newHarness(t, &fakeAPI{})
	ctx := context.Background()
	require.NoError(t, h.ide.Load(ctx))
	require.NoError(t, h.ide.SelectProblem(ctx, 1))

	require.NoError(t, h.ide.Run(ctx))
	assert.Equal(t, contest.TextNoResults, h.screen().Output.Notice)
}

func TestRunNetworkError(t *testing.T) {
	h := newHarness(t, &fakeAPI{judgeErr: errors.New("connection reset")})
	ctx := context.Background()
	require.NoError(t, h.ide.Load(ctx))
	require.NoError(t, h.ide.SelectProblem(ctx, 1))

	require.Error(t, h.ide.Run(ctx))
	s := h.screen()
	assert.Equal(t, "Network error: connection reset", s.Output.Notice)
	assert.Equal(t, contest.ButtonSubmit, s.Buttons.SubmitText)
	assert.True(t, s.Buttons.SubmitEnabled)
}

func TestRunWithoutProblemDoesNothing(t *testing.T) {
	api := &fakeAPI{}
	h := newHarness(t, api)
	require.NoError(t, h.ide.Run(context.Background()))
	require.NoError(t, h.ide.Submit(context.Background()))
	assert.Empty(t, api.runs)
	assert.Empty(t, api.submits)
}

func TestSubmitAllPassedMarksSolved(t *testing.T) {
	api := &fakeAPI{submit: contestapi.SubmitResult{AllPassed: true, Results: []contestapi.TestResult{
		{Passed: true, Expected: "RESULT:cba", Got: "cba"},
		{Passed: true, Expected: "RESULT:zz", Got: "zz"},
	}}}
	h := newHarness(t, api)
	ctx := context.Background()
	require.NoError(t, h.ide.Load(ctx))
	require.NoError(t, h.ide.SelectProblem(ctx, 1))
	h.clock.Advance(42 * time.Second)

	require.NoError(t, h.ide.Submit(ctx))

	require.Len(t, api.submits, 1)
	assert.InDelta(t, 42, api.submits[0].ActiveSeconds, 0.001)

	s := h.screen()
	assert.True(t, s.Sidebar[0].Solved)
	assert.Equal(t, contest.TextAllPassed, s.Output.Banner)
	assert.Equal(t, "success", s.Output.BannerClass)
	require.Len(t, s.Output.Results, 2)
	assert.Equal(t, "Test Case 1", s.Output.Results[0].Label)
	assert.Equal(t, "Test Case 2 (hidden)", s.Output.Results[1].Label)

	h.clock.Advance(time.Minute)
	assert.InDelta(t, 42, h.ide.ActiveSeconds(1), 0.001, "the clock stops on a solved problem")

	_, err := h.ide.HandleEvent(ctx, contest.Event{Type: contest.EventFocus})
	require.NoError(t, err)
	h.clock.Advance(time.Minute)
	assert.InDelta(t, 42, h.ide.ActiveSeconds(1), 0.001)
}

func TestSubmitFailureLeavesProblemUnsolved(t *testing.T) {
	api := &fakeAPI{submit: contestapi.SubmitResult{Results: []contestapi.TestResult{{Passed: false, Expected: "1", Got: "2"}}}}
	h := newHarness(t, api)
	ctx := context.Background()
	require.NoError(t, h.ide.Load(ctx))
	require.NoError(t, h.ide.SelectProblem(ctx, 1))

	require.NoError(t, h.ide.Submit(ctx))
	s := h.screen()
	assert.False(t, s.Sidebar[0].Solved)
	assert.Equal(t, contest.TextSomeFailed, s.Output.Banner)
	assert.Equal(t, "error", s.Output.BannerClass)
}

func TestStatusPollForceEnds(t *testing.T) {
	api := &fakeAPI{}
	h := newHarness(t, api)
	ctx := context.Background()
	require.NoError(t, h.ide.Load(ctx))
	require.NoError(t, h.ide.SelectProblem(ctx, 1))

	api.mu.Lock()
	api.status.ForceEnded = true
	api.mu.Unlock()
	require.NoError(t, h.ide.CheckStatus(ctx))

	s := h.screen()
	assert.True(t, s.TimesUp.Open)
	assert.Equal(t, contest.TextForceEnded, s.TimesUp.Text)
	assert.Len(t, api.saves, 1, "code is saved when the contest ends")

	_, err := h.ide.HandleEvent(ctx, contest.Event{Type: contest.EventBlur})
	require.NoError(t, err)
	assert.Equal(t, 0, h.screen().Warning.Count, "violations are ignored after the end")
}

func TestStatusPollStopped(t *testing.T) {
	api := &fakeAPI{}
	h := newHarness(t, api)
	ctx := context.Background()
	require.NoError(t, h.ide.Load(ctx))

	api.mu.Lock()
	api.status.Active = false
	api.mu.Unlock()
	require.NoError(t, h.ide.CheckStatus(ctx))
	assert.Equal(t, contest.TextStopped, h.screen().TimesUp.Text)

	require.NoError(t, h.ide.CheckStatus(ctx))
	assert.Equal(t, contest.TextStopped, h.screen().TimesUp.Text)
	assert.Empty(t, api.saves, "nothing to save without a problem")
}

func TestStatusPollStartsCountdown(t *testing.T) {
	api := &fakeAPI{status: contestapi.ContestStatus{Active: true, Duration: 3600}}
	h := newHarness(t, api)
	ctx := context.Background()
	require.NoError(t, h.ide.Load(ctx))
	assert.False(t, h.screen().Timer.Started)

	api.mu.Lock()
	api.status.StartTime = t0.Format(time.RFC3339)
	api.mu.Unlock()
	require.NoError(t, h.ide.CheckStatus(ctx))

	s := h.screen()
	assert.True(t, s.Timer.Started)
	assert.Equal(t, "60:00", s.Timer.Text)
	assert.Equal(t, "", s.Timer.Class)
	assert.False(t, s.EndButton)
}

func TestTickReachesZero(t *testing.T) {
	h := newHarness(t, &fakeAPI{})
	ctx := context.Background()
	require.NoError(t, h.ide.Load(ctx))

	h.clock.Advance(5 * time.Minute)
	require.NoError(t, h.ide.Tick(ctx))

	s := h.screen()
	assert.Equal(t, "00:00", s.Timer.Text)
	assert.True(t, s.TimesUp.Open)
	assert.Equal(t, contest.TextTimeUp, s.TimesUp.Text)
}

func TestAutosave(t *testing.T) {
	api := &fakeAPI{}
	h := newHarness(t, api)
	ctx := context.Background()
	require.NoError(t, h.ide.Load(ctx))

	require.NoError(t, h.ide.Autosave(ctx))
	assert.Empty(t, api.saves, "nothing is open yet")

	require.NoError(t, h.ide.SelectProblem(ctx, 1))
	h.ide.EditCode("x = 1")
	require.NoError(t, h.ide.Autosave(ctx))
	require.Len(t, api.saves, 1)
	assert.Equal(t, "x = 1", api.saves[0].Code)
	assert.Equal(t, "Saved 10:00:00", h.screen().Autosave)

	api.mu.Lock()
	api.saveErr = errors.New("down")
	api.mu.Unlock()
	require.Error(t, h.ide.Autosave(ctx))
	assert.Equal(t, contest.TextSaveFailed, h.screen().Autosave)
}

func TestConfirmEndNavigatesOnlyOnSuccess(t *testing.T) {
	api := &fakeAPI{}
	h := newHarness(t, api)
	ctx := context.Background()
	require.NoError(t, h.ide.Load(ctx))

	h.ide.ShowEndModal()
	assert.True(t, h.screen().EndModalOpen)
	require.NoError(t, h.ide.ConfirmEnd(ctx))
	assert.Empty(t, h.nav.Take())

	api.mu.Lock()
	api.end = contestapi.ActionResult{Success: true}
	api.mu.Unlock()
	require.NoError(t, h.ide.ConfirmEnd(ctx))
	assert.Equal(t, contest.EndedPath, h.nav.Take())

	h.ide.CloseEndModal()
	assert.False(t, h.screen().EndModalOpen)
}

func TestForceEndAlwaysNavigates(t *testing.T) {
	api := &fakeAPI{endErr: srvcerror.ErrNetwork()}
	h := newHarness(t, api)
	ctx := context.Background()
	require.NoError(t, h.ide.Load(ctx))
	require.NoError(t, h.ide.SelectProblem(ctx, 1))

	assert.Error(t, h.ide.ForceEnd(ctx))
	assert.Equal(t, contest.EndedPath, h.nav.Take())
	assert.Len(t, api.saves, 1)
	assert.Equal(t, 1, api.endCalled)
}

func TestViolations(t *testing.T) {
	h := newHarness(t, &fakeAPI{})
	ctx := context.Background()
	require.NoError(t, h.ide.Load(ctx))

	r, err := h.ide.HandleEvent(ctx, contest.Event{Type: contest.EventKeyDown, Key: anticheat.Key{Key: "t", Ctrl: true}})
	require.NoError(t, err)
	assert.True(t, r.PreventDefault)

	r, err = h.ide.HandleEvent(ctx, contest.Event{Type: contest.EventKeyDown, Key: anticheat.Key{Key: "c", Ctrl: true}})
	require.NoError(t, err)
	assert.False(t, r.PreventDefault)

	_, err = h.ide.HandleEvent(ctx, contest.Event{Type: contest.EventVisibility, Hidden: true})
	require.NoError(t, err)
	_, err = h.ide.HandleEvent(ctx, contest.Event{Type: contest.EventFullscreen, Fullscreen: false})
	require.NoError(t, err)

	vs := h.ide.Violations()
	require.Len(t, vs, 3)
	assert.Equal(t, anticheat.KindBlockedKey, vs[0].Kind)
	assert.Equal(t, "ctrl+t", vs[0].Key)
	assert.Equal(t, anticheat.KindVisibilityHidden, vs[1].Kind)
	assert.Equal(t, anticheat.KindFullscreenExit, vs[2].Kind)

	s := h.screen()
	assert.True(t, s.Warning.Shown)
	assert.Equal(t, 3, s.Warning.Count)
	assert.Equal(t, "Violation count: 3", s.Warning.Text)
	focus := s.Focus

	r, err = h.ide.HandleEvent(ctx, contest.Event{Type: contest.EventDismissWarning})
	require.NoError(t, err)
	assert.True(t, r.RequestFullscreen)
	s = h.screen()
	assert.False(t, s.Warning.Shown)
	assert.Equal(t, 3, s.Warning.Count)
	assert.Greater(t, s.Focus, focus)
}

func TestClickAndContextMenu(t *testing.T) {
	h := newHarness(t, &fakeAPI{})
	ctx := context.Background()

	r, err := h.ide.HandleEvent(ctx, contest.Event{Type: contest.EventClick})
	require.NoError(t, err)
	assert.True(t, r.RequestFullscreen)
	r, err = h.ide.HandleEvent(ctx, contest.Event{Type: contest.EventClick})
	require.NoError(t, err)
	assert.False(t, r.RequestFullscreen, "only the first click asks for fullscreen")

	r, err = h.ide.HandleEvent(ctx, contest.Event{Type: contest.EventContextMenu})
	require.NoError(t, err)
	assert.True(t, r.PreventDefault)

	_, err = h.ide.HandleEvent(ctx, contest.Event{Type: "teleport"})
	assert.Error(t, err)
}

func TestTabsAndResize(t *testing.T) {
	h := newHarness(t, &fakeAPI{})
	ctx := context.Background()

	_, err := h.ide.HandleEvent(ctx, contest.Event{Type: contest.EventTab, Tab: contest.TabRaw})
	require.NoError(t, err)
	assert.Equal(t, contest.TabRaw, h.screen().Output.Tab)

	_, err = h.ide.HandleEvent(ctx, contest.Event{Type: contest.EventResize, StartHeight: 200, StartY: 500, Y: 100})
	require.NoError(t, err)
	assert.Equal(t, 400, h.screen().Output.Height)

	_, err = h.ide.HandleEvent(ctx, contest.Event{Type: contest.EventResize, StartHeight: 200, StartY: 500, Y: 900})
	require.NoError(t, err)
	assert.Equal(t, 80, h.screen().Output.Height)
}

func TestStartSchedulesAndCloseStops(t *testing.T) {
	api := &fakeAPI{}
	clock := &fakeClock{t: t0}
	api.problems = problems()
	api.status = contestapi.ContestStatus{Active: true, StartTime: t0.Format(time.RFC3339), Duration: 3600}
	shown := page.NewHolder(contest.Initial())
	ide := contest.New(api, shown, &page.Redirect{}, contest.Config{
		Now:            clock.Now,
		TickInterval:   5 * time.Millisecond,
		StatusInterval: 5 * time.Millisecond,
	})

	require.NoError(t, ide.Start(context.Background()))
	_, gen := shown.Latest()
	require.Eventually(t, func() bool {
		_, g := shown.Latest()
		return g > gen+3
	}, time.Second, 5*time.Millisecond)

	ide.Close()
	_, gen = shown.Latest()
	time.Sleep(30 * time.Millisecond)
	_, after := shown.Latest()
	assert.Equal(t, gen, after)
}
