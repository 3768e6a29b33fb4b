// Package contest is the participant's contest page: problem list, editor,
// test runner, countdown and the focus-loss warnings.
package contest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/programme-lv/contest-portal/activetime"
	"github.com/programme-lv/contest-portal/anticheat"
	"github.com/programme-lv/contest-portal/contestapi"
	"github.com/programme-lv/contest-portal/countdown"
	"github.com/programme-lv/contest-portal/page"
	"github.com/programme-lv/contest-portal/planglist"
	"github.com/programme-lv/contest-portal/sched"
	"github.com/programme-lv/contest-portal/srvcerror"
	"github.com/programme-lv/contest-portal/view"
	"golang.org/x/sync/errgroup"
)

const (
	TextSelectTask     = "// Select a task to begin."
	TextOutputHint     = "// Run your code to see output here."
	TextAlreadySolved  = "✅ You have already solved this problem. Move on to the next task!"
	TextRunning        = "Running visible test cases..."
	TextJudging        = "Running all test cases (including hidden)..."
	TextAllPassed      = "✅ ALL TEST CASES PASSED! Question marked as solved."
	TextSomeFailed     = "❌ Some test cases failed. Keep trying!"
	TextNoResults      = "No results."
	TextNoOutput       = "(no output)"
	TextProblemNotice  = "⚠ Write the function body only. The hidden driver code will call your function with test inputs."
	TextSaving         = "Saving..."
	TextSaveFailed     = "Save failed!"
	TextTimeUp         = "Time is up! Your code has been auto-saved. Please submit and exit."
	TextStopped        = "The contest has been stopped by the administrator. Please submit and exit."
	TextForceEnded     = "Your test has been ended by the administrator. Your code has been auto-saved. Please submit and exit."
	ButtonRun          = "▶ Run"
	ButtonSubmit       = "✓ Submit"
	ButtonRunBusy      = "⏳ Running..."
	ButtonSubmitBusy   = "⏳ Judging..."
	TimerPlaceholder   = "--:--"
	EndedPath          = "/ended"
	DefaultTick        = time.Second
	DefaultStatusPoll  = 5 * time.Second
	DefaultAutosave    = 30 * time.Second
	DefaultPanelHeight = 200

	taskTimer    = "contest-timer"
	taskStatus   = "contest-status"
	taskAutosave = "contest-autosave"
)

type API interface {
	ContestStatus(ctx context.Context) (contestapi.ContestStatus, error)
	Problems(ctx context.Context) ([]contestapi.Problem, error)
	Solved(ctx context.Context) ([]int, error)
	OpenProblem(ctx context.Context, problemID int) error
	Run(ctx context.Context, req contestapi.CodeRequest) (contestapi.RunResult, error)
	Submit(ctx context.Context, req contestapi.SubmitRequest) (contestapi.SubmitResult, error)
	SaveCode(ctx context.Context, req contestapi.CodeRequest) error
	EndTest(ctx context.Context) (contestapi.ActionResult, error)
}

type Config struct {
	Languages  []string
	Thresholds countdown.Thresholds

	TickInterval     time.Duration
	StatusInterval   time.Duration
	AutosaveInterval time.Duration

	Now      func() time.Time
	Location *time.Location
	Logger   *slog.Logger
}

func (c *Config) setDefaults() {
	if c.Thresholds == (countdown.Thresholds{}) {
		c.Thresholds = countdown.DefaultThresholds()
	}
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTick
	}
	if c.StatusInterval <= 0 {
		c.StatusInterval = DefaultStatusPoll
	}
	if c.AutosaveInterval <= 0 {
		c.AutosaveInterval = DefaultAutosave
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Location == nil {
		c.Location = time.Local
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

type IDE struct {
	api    API
	render page.Renderer[Screen]
	nav    page.Navigator
	cfg    Config
	logger *slog.Logger
	langs  []planglist.ProgrammingLang

	clock  *activetime.Accumulator
	timer  *countdown.Countdown
	cheats *anticheat.Tracker

	mu       sync.Mutex
	sched    *sched.Scheduler
	problems []contestapi.Problem
	solved   map[int]bool
	opened   map[int]bool
	current  *contestapi.Problem
	lang     string
	store    map[string]string // "<problem>_<lang>" -> code
	buffer   string
	revision uint64
	busy     bool
	loaded   bool
	timesUp  bool
	clicked  bool

	output    OutputView
	buttons   ButtonsView
	timerView TimerView
	endButton bool
	endModal  bool
	timesUpV  TimesUpView
	autosave  string
	focus     uint64
}

func New(api API, r page.Renderer[Screen], nav page.Navigator, cfg Config) *IDE {
	cfg.setDefaults()
	langs := planglist.Restrict(cfg.Languages)
	lang := planglist.Default
	if len(langs) > 0 {
		lang = langs[0].ID
	}
	return &IDE{
		api:    api,
		render: r,
		nav:    nav,
		cfg:    cfg,
		logger: cfg.Logger,
		langs:  langs,
		clock:  activetime.New(cfg.Now),
		timer:  countdown.New(cfg.Now, cfg.Thresholds),
		cheats: anticheat.NewTracker(cfg.Now),
		solved: make(map[int]bool),
		opened: make(map[int]bool),
		store:  make(map[string]string),
		lang:   lang,
		buffer: TextSelectTask,
		output: hintOutput(DefaultPanelHeight),
		buttons: ButtonsView{
			RunText:    ButtonRun,
			SubmitText: ButtonSubmit,
		},
		timerView: TimerView{Text: TimerPlaceholder},
	}
}

// Initial is the screen before anything was loaded.
func Initial() Screen {
	return Screen{
		Editor: EditorView{
			Code:     TextSelectTask,
			Language: planglist.Default,
			MonacoID: planglist.MonacoID(planglist.Default),
			File:     planglist.ProblemFile(planglist.Default),
		},
		Output:  hintOutput(DefaultPanelHeight),
		Buttons: ButtonsView{RunText: ButtonRun, SubmitText: ButtonSubmit},
		Timer:   TimerView{Text: TimerPlaceholder},
	}
}

func hintOutput(height int) OutputView {
	return OutputView{
		Tab:         TabTestCases,
		Notice:      TextOutputHint,
		NoticeClass: "info",
		Height:      height,
	}
}

func codeKey(problemID int, lang string) string {
	return fmt.Sprintf("%d_%s", problemID, lang)
}

// Start loads the page data and schedules the status poll and, once the
// data is there, the autosave. The countdown is scheduled as soon as a start
// time is known.
func (p *IDE) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.sched == nil {
		p.sched = sched.New(ctx, p.logger)
	}
	s := p.sched
	p.mu.Unlock()

	s.Every(taskStatus, p.cfg.StatusInterval, p.CheckStatus)
	if err := p.Load(ctx); err != nil {
		return err
	}
	s.Every(taskAutosave, p.cfg.AutosaveInterval, p.Autosave)
	return nil
}

// Close stops every scheduled task of the page.
func (p *IDE) Close() {
	p.mu.Lock()
	s := p.sched
	p.mu.Unlock()
	if s != nil {
		s.Stop()
	}
}

func (p *IDE) Snapshot() Screen {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.screenLocked()
}

// Loaded reports whether a Load has succeeded.
func (p *IDE) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// ActiveSeconds is the time the page believes was spent on a problem.
func (p *IDE) ActiveSeconds(problemID int) float64 {
	return p.clock.Seconds(problemID)
}

// Load fetches problems, solved ids and contest status together. Any
// failure leaves the page empty with the error in the output panel.
func (p *IDE) Load(ctx context.Context) error {
	var (
		problems []contestapi.Problem
		solved   []int
		status   contestapi.ContestStatus
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		problems, err = p.api.Problems(gctx)
		return err
	})
	g.Go(func() (err error) {
		solved, err = p.api.Solved(gctx)
		return err
	})
	g.Go(func() (err error) {
		status, err = p.api.ContestStatus(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		p.mu.Lock()
		p.output = errorOutput(p.output.Height, err)
		p.mu.Unlock()
		p.publish()
		return fmt.Errorf("load contest page: %w", err)
	}

	p.mu.Lock()
	p.problems = problems
	p.loaded = true
	for _, id := range solved {
		p.solved[id] = true
	}
	p.mu.Unlock()

	ended := false
	if start, ok := status.Started(); ok {
		p.timer.Start(start, status.DurationValue())
		ended = p.startTimer()
	}
	if p.reconcile(status) {
		ended = true
	}
	p.publish()
	if ended {
		p.saveAfterEnd(ctx)
	}
	return nil
}

// startTimer renders the first reading and schedules the 1 Hz tick unless
// the contest is already over. It reports whether the first reading ended
// the contest.
func (p *IDE) startTimer() bool {
	if p.tick() {
		return true
	}
	if ended, _ := p.timer.Ended(); ended {
		return false
	}
	p.mu.Lock()
	s := p.sched
	p.mu.Unlock()
	if s != nil {
		s.Every(taskTimer, p.cfg.TickInterval, p.Tick)
	}
	return false
}

func (p *IDE) stopTimer() {
	p.mu.Lock()
	s := p.sched
	p.mu.Unlock()
	if s != nil {
		s.Cancel(taskTimer)
	}
}

// Tick advances the countdown once and renders it.
func (p *IDE) Tick(ctx context.Context) error {
	ended := p.tick()
	p.publish()
	if ended {
		p.saveAfterEnd(ctx)
	}
	return nil
}

func (p *IDE) tick() bool {
	r := p.timer.Tick()
	if !r.Started {
		return false
	}
	p.mu.Lock()
	p.timerView = TimerView{Started: true, Text: r.Text, Class: r.Level.Class()}
	p.endButton = r.ShowEndButton
	p.mu.Unlock()

	if r.EndedNow {
		p.stopTimer()
		return p.enterTimesUp(r.Reason)
	}
	return false
}

// CheckStatus polls the contest status and reconciles the countdown with it.
func (p *IDE) CheckStatus(ctx context.Context) error {
	status, err := p.api.ContestStatus(ctx)
	if err != nil {
		return err
	}
	ended := p.reconcile(status)
	p.publish()
	if ended {
		p.saveAfterEnd(ctx)
	}
	return nil
}

func (p *IDE) reconcile(status contestapi.ContestStatus) bool {
	start, hasStart := status.Started()
	rec := p.timer.Reconcile(countdown.ServerState{
		Active:     status.Active,
		ForceEnded: status.ForceEnded,
		Start:      start,
		HasStart:   hasStart,
		Duration:   status.DurationValue(),
	})
	ended := false
	if rec.EndedNow {
		p.stopTimer()
		ended = p.enterTimesUp(rec.Reason)
	}
	if rec.StartedNow && p.startTimer() {
		ended = true
	}
	return ended
}

// enterTimesUp shows the terminal notice once and reports whether this call
// showed it.
func (p *IDE) enterTimesUp(reason countdown.EndReason) bool {
	p.clock.Pause()
	p.cheats.Freeze()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timesUp {
		return false
	}
	p.timesUp = true
	text := TextTimeUp
	switch reason {
	case countdown.ReasonStopped:
		text = TextStopped
	case countdown.ReasonForceEnded:
		text = TextForceEnded
	}
	p.timesUpV = TimesUpView{Open: true, Text: text, Reason: string(reason)}
	p.logger.Info("contest over for page", "reason", reason, "violations", countByKind(p.cheats.Violations()))
	return true
}

// saveAfterEnd stores the editor content once the contest is over. The
// calling task may already be cancelled, so the save outlives it.
func (p *IDE) saveAfterEnd(ctx context.Context) {
	if err := p.Autosave(context.WithoutCancel(ctx)); err != nil {
		p.logger.Debug("autosave after contest end failed", "error", err)
	}
}

// SelectProblem switches the editor to a problem. Solved problems are not
// reopened; the output panel says so instead.
func (p *IDE) SelectProblem(ctx context.Context, problemID int) error {
	p.mu.Lock()
	if p.solved[problemID] {
		p.output = OutputView{
			Tab:         p.output.Tab,
			Notice:      TextAlreadySolved,
			NoticeClass: "success",
			Height:      p.output.Height,
		}
		p.mu.Unlock()
		p.publish()
		return nil
	}
	next := p.findLocked(problemID)
	if next == nil {
		p.mu.Unlock()
		return srvcerror.ErrProblemNotFound()
	}
	if p.current != nil {
		p.store[codeKey(p.current.ID, p.lang)] = p.buffer
	}
	p.current = next
	p.clock.Select(next.ID)
	p.loadBufferLocked()
	if !p.busy {
		p.buttons.RunEnabled = true
		p.buttons.SubmitEnabled = true
	}
	p.output = hintOutput(p.output.Height)
	firstOpen := !p.opened[next.ID]
	p.opened[next.ID] = true
	p.mu.Unlock()
	p.publish()

	if firstOpen {
		if err := p.api.OpenProblem(ctx, problemID); err != nil {
			p.logger.Debug("open problem notification failed", "problem", problemID, "error", err)
		}
	}
	return nil
}

func (p *IDE) findLocked(problemID int) *contestapi.Problem {
	for i := range p.problems {
		if p.problems[i].ID == problemID {
			return &p.problems[i]
		}
	}
	return nil
}

// loadBufferLocked puts the stored code for the current problem and
// language into the editor, seeding it from the boilerplate.
func (p *IDE) loadBufferLocked() {
	key := codeKey(p.current.ID, p.lang)
	if p.store[key] == "" {
		p.store[key] = p.current.Boilerplate[p.lang]
	}
	p.buffer = p.store[key]
	p.revision++
}

// EditCode records the editor content of the current problem.
func (p *IDE) EditCode(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return
	}
	p.buffer = code
	p.store[codeKey(p.current.ID, p.lang)] = code
}

func (p *IDE) ChangeLanguage(lang string) error {
	if !p.offers(lang) {
		return planglist.ErrInvalidProgLang()
	}
	p.mu.Lock()
	if p.lang == lang {
		p.mu.Unlock()
		return nil
	}
	p.lang = lang
	if p.current != nil {
		p.loadBufferLocked()
		p.output = hintOutput(p.output.Height)
	}
	p.mu.Unlock()
	p.publish()
	return nil
}

func (p *IDE) offers(lang string) bool {
	for _, l := range p.langs {
		if l.ID == lang {
			return true
		}
	}
	return false
}

// Run executes the code against the visible test cases.
func (p *IDE) Run(ctx context.Context) error {
	prob, req, ok := p.beginJudging(false)
	if !ok {
		return nil
	}
	res, err := p.api.Run(ctx, req)
	p.finishJudging(prob, false, res.Results, false, res.Error, err)
	return err
}

// Submit judges the code against every test case and marks the problem
// solved when all of them pass.
func (p *IDE) Submit(ctx context.Context) error {
	prob, req, ok := p.beginJudging(true)
	if !ok {
		return nil
	}
	res, err := p.api.Submit(ctx, contestapi.SubmitRequest{
		ProblemID:     req.ProblemID,
		Language:      req.Language,
		Code:          req.Code,
		ActiveSeconds: p.clock.Seconds(req.ProblemID),
	})
	if err == nil && res.AllPassed {
		p.mu.Lock()
		p.solved[prob.ID] = true
		cur := p.current
		p.mu.Unlock()
		if cur != nil && cur.ID == prob.ID {
			p.clock.Pause()
		}
	}
	p.finishJudging(prob, true, res.Results, res.AllPassed, res.Error, err)
	return err
}

func (p *IDE) beginJudging(submit bool) (*contestapi.Problem, contestapi.CodeRequest, bool) {
	p.mu.Lock()
	if p.current == nil || p.busy {
		p.mu.Unlock()
		return nil, contestapi.CodeRequest{}, false
	}
	p.busy = true
	p.buttons.RunEnabled = false
	p.buttons.SubmitEnabled = false
	notice := TextRunning
	if submit {
		p.buttons.SubmitText = ButtonSubmitBusy
		notice = TextJudging
	} else {
		p.buttons.RunText = ButtonRunBusy
	}
	p.output = OutputView{
		Tab:     p.output.Tab,
		Notice:  notice,
		Spinner: true,
		Height:  p.output.Height,
	}
	prob := p.current
	req := contestapi.CodeRequest{ProblemID: prob.ID, Language: p.lang, Code: p.buffer}
	p.mu.Unlock()
	p.publish()
	return prob, req, true
}

func (p *IDE) finishJudging(prob *contestapi.Problem, submit bool, results []contestapi.TestResult, allPassed bool, backendErr string, err error) {
	p.mu.Lock()
	p.busy = false
	p.buttons = ButtonsView{
		RunText:       ButtonRun,
		SubmitText:    ButtonSubmit,
		RunEnabled:    p.current != nil,
		SubmitEnabled: p.current != nil,
	}
	switch {
	case err != nil:
		p.output = errorOutput(p.output.Height, err)
	case backendErr != "" && len(results) == 0:
		p.output = OutputView{
			Tab:         TabTestCases,
			Notice:      backendErr,
			NoticeClass: "error",
			Height:      p.output.Height,
		}
	default:
		p.output = resultsOutput(p.output.Height, prob, submit, results, allPassed)
	}
	p.mu.Unlock()
	p.publish()
}

func errorOutput(height int, err error) OutputView {
	return OutputView{
		Tab:         TabTestCases,
		Notice:      "Network error: " + err.Error(),
		NoticeClass: "error",
		Height:      height,
	}
}

func resultsOutput(height int, prob *contestapi.Problem, submit bool, results []contestapi.TestResult, allPassed bool) OutputView {
	out := OutputView{Tab: TabTestCases, Height: height}
	if submit {
		out.Banner, out.BannerClass = TextSomeFailed, "error"
		if allPassed {
			out.Banner, out.BannerClass = TextAllPassed, "success"
		}
	}

	visible := len(prob.VisibleTestCases)
	raw := make([]string, 0, len(results))
	for i, r := range results {
		label := fmt.Sprintf("Test Case %d", i+1)
		if submit && i >= visible {
			label += " (hidden)"
		}
		got := r.Got
		if got == "" {
			got = TextNoOutput
		}
		out.Results = append(out.Results, ResultRow{
			Label:       label,
			Passed:      r.Passed,
			Expected:    view.StripResultMarker(r.Expected),
			Got:         got,
			Explanation: r.Explanation,
		})
		raw = append(raw, r.Got)
	}
	out.Raw = strings.Join(raw, "\n")
	if len(out.Results) == 0 && out.Banner == "" {
		out.Notice, out.NoticeClass = TextNoResults, "info"
	}
	return out
}

func (p *IDE) SwitchTab(tab string) {
	if tab != TabTestCases && tab != TabRaw {
		return
	}
	p.mu.Lock()
	p.output.Tab = tab
	p.mu.Unlock()
	p.publish()
}

// ResizeOutput applies a drag of the resize handle from startY to y.
func (p *IDE) ResizeOutput(startHeight, startY, y int) {
	p.mu.Lock()
	p.output.Height = view.ClampPanelHeight(startHeight, startY, y)
	p.mu.Unlock()
	p.publish()
}

// Autosave stores the editor content of the current problem.
func (p *IDE) Autosave(ctx context.Context) error {
	p.mu.Lock()
	if p.current == nil {
		p.mu.Unlock()
		return nil
	}
	req := contestapi.CodeRequest{ProblemID: p.current.ID, Language: p.lang, Code: p.buffer}
	p.autosave = TextSaving
	p.mu.Unlock()
	p.publish()

	err := p.api.SaveCode(ctx, req)

	p.mu.Lock()
	if err != nil {
		p.autosave = TextSaveFailed
	} else {
		p.autosave = "Saved " + p.cfg.Now().In(p.cfg.Location).Format("15:04:05")
	}
	p.mu.Unlock()
	p.publish()
	return err
}

func (p *IDE) ShowEndModal() {
	p.mu.Lock()
	p.endModal = true
	p.mu.Unlock()
	p.publish()
}

func (p *IDE) CloseEndModal() {
	p.mu.Lock()
	p.endModal = false
	p.mu.Unlock()
	p.publish()
}

// ConfirmEnd saves, ends the test and leaves the page only if the backend
// accepted the end.
func (p *IDE) ConfirmEnd(ctx context.Context) error {
	if err := p.Autosave(ctx); err != nil {
		p.logger.Debug("autosave before end failed", "error", err)
	}
	res, err := p.api.EndTest(ctx)
	if err != nil {
		return err
	}
	if res.Success {
		p.nav.Navigate(EndedPath)
	}
	return nil
}

// ForceEnd is the way out of the times-up notice: save, end and leave
// whatever the backend answers.
func (p *IDE) ForceEnd(ctx context.Context) error {
	if err := p.Autosave(ctx); err != nil {
		p.logger.Debug("autosave before end failed", "error", err)
	}
	_, err := p.api.EndTest(ctx)
	p.nav.Navigate(EndedPath)
	return err
}

func (p *IDE) publish() {
	p.mu.Lock()
	s := p.screenLocked()
	p.mu.Unlock()
	p.render.Render(s)
}

func (p *IDE) screenLocked() Screen {
	s := Screen{
		Sidebar:      make([]SidebarItem, 0, len(p.problems)),
		Output:       p.output,
		Buttons:      p.buttons,
		Timer:        p.timerView,
		EndButton:    p.endButton,
		EndModalOpen: p.endModal,
		TimesUp:      p.timesUpV,
		Warning:      p.cheats.Warning(),
		Autosave:     p.autosave,
		Focus:        p.focus,
	}
	for _, prob := range p.problems {
		s.Sidebar = append(s.Sidebar, SidebarItem{
			ID:       prob.ID,
			Number:   fmt.Sprintf("%d.", prob.ID),
			Title:    view.StripTaskPrefix(prob.Title),
			Subtitle: prob.Subtitle,
			Solved:   p.solved[prob.ID],
			Active:   p.current != nil && p.current.ID == prob.ID,
		})
	}

	s.Editor = EditorView{
		Revision: p.revision,
		Code:     p.buffer,
		Language: p.lang,
		MonacoID: planglist.MonacoID(p.lang),
		File:     planglist.ProblemFile(p.lang),
		Enabled:  p.current != nil,
	}
	for _, l := range p.langs {
		s.Editor.Languages = append(s.Editor.Languages, LangOption{ID: l.ID, Name: l.FullName, Selected: l.ID == p.lang})
	}

	if p.current != nil {
		s.Problem = problemView(p.current)
	}
	return s
}

func problemView(prob *contestapi.Problem) *ProblemView {
	v := &ProblemView{
		ID:           prob.ID,
		Title:        prob.Title,
		Subtitle:     prob.Subtitle,
		Description:  prob.Description,
		Constraints:  prob.Constraints,
		InputFormat:  prob.InputFormat,
		OutputFormat: prob.OutputFormat,
		Notice:       TextProblemNotice,
	}
	for i, tc := range prob.VisibleTestCases {
		v.Samples = append(v.Samples, SampleView{
			Label:       fmt.Sprintf("SAMPLE %d", i+1),
			Input:       tc.Input,
			Expected:    view.StripResultMarker(tc.Expected),
			Explanation: tc.Explanation,
		})
	}
	return v
}
