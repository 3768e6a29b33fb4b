// Package admin drives the admin dashboard: contest status, participant
// table, leaderboard, per-participant submission modal and contest controls.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/programme-lv/contest-portal/contestapi"
	"github.com/programme-lv/contest-portal/page"
	"github.com/programme-lv/contest-portal/sched"
	"github.com/programme-lv/contest-portal/view"
	"golang.org/x/sync/errgroup"
)

const (
	TextLive        = "Contest is LIVE"
	TextNotActive   = "Contest is NOT active"
	TextNoPartic    = "No participants yet."
	TextNoData      = "No data yet."
	TextLoading     = "Loading..."
	TextNoSubs      = "No submissions yet."
	TextNetworkErr  = "Network error."
	TextEmptyCode   = "(empty)"
	TextSolved      = "✓ Solved"
	TextUnsolved    = "✗ Unsolved"
	ConfirmStart    = "Start the contest for all participants now?"
	ConfirmStop     = "Stop the contest? All participants will see an end modal."
	AlertStarted    = "Contest started! Timer begins NOW for everyone."
	AlertStopped    = "Contest stopped."
	DefaultInterval = 15 * time.Second
)

func ConfirmEnd(name string) string {
	return fmt.Sprintf("End test for %s? They will not be able to continue.", name)
}

func AlertEnded(name string) string {
	return fmt.Sprintf("Test ended for %s.", name)
}

// API is the part of the backend the dashboard talks to.
type API interface {
	ContestStatus(ctx context.Context) (contestapi.ContestStatus, error)
	Participants(ctx context.Context) ([]contestapi.Participant, error)
	Leaderboard(ctx context.Context) ([]contestapi.LeaderboardEntry, error)
	ParticipantDetail(ctx context.Context, participantID int) ([]contestapi.SubmissionDetail, error)
	StartContest(ctx context.Context) (contestapi.ActionResult, error)
	StopContest(ctx context.Context) (contestapi.ActionResult, error)
	EndParticipant(ctx context.Context, participantID int) (contestapi.ActionResult, error)
}

type Config struct {
	ProblemNames map[int]string
	ProblemCount int
	PollInterval time.Duration
	Location     *time.Location
	Logger       *slog.Logger
}

type Dashboard struct {
	api    API
	render page.Renderer[Screen]
	dialog page.Dialog
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	screen Screen
	sched  *sched.Scheduler

	// refreshes are numbered; a part is applied only when it is newer than
	// the one already on screen
	issued  uint64
	applied map[part]uint64

	modalSeq uint64
}

type part int

const (
	partStatus part = iota
	partParticipants
	partLeaderboard
)

func New(api API, r page.Renderer[Screen], d page.Dialog, cfg Config) *Dashboard {
	if cfg.ProblemCount <= 0 {
		cfg.ProblemCount = 6
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultInterval
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Dashboard{
		api:     api,
		render:  r,
		dialog:  d,
		cfg:     cfg,
		logger:  cfg.Logger,
		applied: make(map[part]uint64),
		screen: Screen{
			Status: StatusView{Text: TextNotActive},
			Stats:  StatsView{AvgSolved: "0"},
		},
	}
}

// Start refreshes immediately and then on every poll interval until Close.
func (d *Dashboard) Start(ctx context.Context) {
	d.mu.Lock()
	if d.sched == nil {
		d.sched = sched.New(ctx, d.logger)
	}
	s := d.sched
	d.mu.Unlock()
	s.Every("admin-refresh", d.cfg.PollInterval, d.Refresh, sched.Immediately())
}

func (d *Dashboard) Close() {
	d.mu.Lock()
	s := d.sched
	d.mu.Unlock()
	if s != nil {
		s.Stop()
	}
}

// Snapshot returns the screen as last rendered.
func (d *Dashboard) Snapshot() Screen {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.screen
}

// Refresh fetches status, participants and leaderboard concurrently and
// renders once all three have answered. A failed part keeps its previous
// content; the joined failures are returned for logging only.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.mu.Lock()
	d.issued++
	seq := d.issued
	d.mu.Unlock()

	var (
		status       contestapi.ContestStatus
		participants []contestapi.Participant
		leaderboard  []contestapi.LeaderboardEntry
		errs         [3]error
	)

	var g errgroup.Group
	g.Go(func() error {
		status, errs[partStatus] = d.api.ContestStatus(ctx)
		return nil
	})
	g.Go(func() error {
		participants, errs[partParticipants] = d.api.Participants(ctx)
		return nil
	})
	g.Go(func() error {
		leaderboard, errs[partLeaderboard] = d.api.Leaderboard(ctx)
		return nil
	})
	_ = g.Wait()

	d.mu.Lock()
	if errs[partStatus] == nil && d.claim(partStatus, seq) {
		d.screen.Status = d.statusView(status)
	}
	if errs[partParticipants] == nil && d.claim(partParticipants, seq) {
		d.screen.Stats = statsView(participants)
		d.screen.Participants = d.participantRows(participants)
		d.screen.ParticipantsEmpty = ""
		if len(participants) == 0 {
			d.screen.ParticipantsEmpty = TextNoPartic
		}
	}
	if errs[partLeaderboard] == nil && d.claim(partLeaderboard, seq) {
		d.screen.Leaderboard = d.leaderboardRows(leaderboard)
		d.screen.LeaderboardEmpty = ""
		if len(leaderboard) == 0 {
			d.screen.LeaderboardEmpty = TextNoData
		}
	}
	snap := d.screen
	d.mu.Unlock()

	d.render.Render(snap)
	return errors.Join(errs[:]...)
}

func (d *Dashboard) claim(p part, seq uint64) bool {
	if seq <= d.applied[p] {
		return false
	}
	d.applied[p] = seq
	return true
}

func (d *Dashboard) statusView(s contestapi.ContestStatus) StatusView {
	v := StatusView{Live: s.Active, Text: TextNotActive}
	if s.Active {
		v.Text = TextLive
	}
	if s.StartTime != "" {
		v.Started = "Started: " + view.LocalTime(s.StartTime, d.cfg.Location)
	}
	return v
}

func statsView(ps []contestapi.Participant) StatsView {
	v := StatsView{Total: len(ps), AvgSolved: "0"}
	solved := 0
	for _, p := range ps {
		if p.Submitted {
			v.Submitted++
		} else {
			v.Active++
		}
		solved += p.SolvedCount
	}
	if len(ps) > 0 {
		v.AvgSolved = strconv.FormatFloat(float64(solved)/float64(len(ps)), 'f', 1, 64)
	}
	return v
}

func (d *Dashboard) solvedBadge(n int) string {
	return fmt.Sprintf("%d/%d", n, d.cfg.ProblemCount)
}

func (d *Dashboard) participantRows(ps []contestapi.Participant) []ParticipantRow {
	rows := make([]ParticipantRow, len(ps))
	for i, p := range ps {
		rows[i] = ParticipantRow{
			Number:       i + 1,
			ID:           p.ID,
			Name:         p.Name,
			College:      p.College,
			SystemNumber: p.SystemNumber,
			Phone:        p.Phone,
			Solved:       d.solvedBadge(p.SolvedCount),
			Submitted:    bool(p.Submitted),
		}
	}
	return rows
}

func (d *Dashboard) leaderboardRows(entries []contestapi.LeaderboardEntry) []LeaderboardRow {
	rows := make([]LeaderboardRow, len(entries))
	for i, e := range entries {
		row := LeaderboardRow{
			Symbol:       view.RankSymbol(i),
			Class:        view.RankClass(i),
			Name:         e.Name,
			College:      e.College,
			SystemNumber: e.SystemNumber,
			Solved:       d.solvedBadge(e.SolvedCount),
			Time:         view.FormatTime(e.TotalTime),
			Wrong:        view.Dash,
		}
		if e.TotalWrong > 0 {
			row.Wrong = fmt.Sprintf("%d wrong", e.TotalWrong)
			row.HasWrong = true
		}
		rows[i] = row
	}
	return rows
}

// ViewCode opens the submissions modal for a participant and fills it once
// the details arrive. A response for a modal that was closed or reopened for
// someone else in the meantime is dropped.
func (d *Dashboard) ViewCode(ctx context.Context, participantID int, name string) error {
	d.mu.Lock()
	d.modalSeq++
	seq := d.modalSeq
	d.screen.Modal = ModalView{
		Open:    true,
		Title:   "Submissions — " + name,
		Loading: true,
		Message: TextLoading,
	}
	snap := d.screen
	d.mu.Unlock()
	d.render.Render(snap)

	subs, err := d.api.ParticipantDetail(ctx, participantID)

	d.mu.Lock()
	if seq != d.modalSeq || !d.screen.Modal.Open {
		d.mu.Unlock()
		return err
	}
	m := ModalView{Open: true, Title: d.screen.Modal.Title}
	switch {
	case err != nil:
		m.Message = TextNetworkErr
	case len(subs) == 0:
		m.Message = TextNoSubs
	default:
		m.Cards = d.cards(subs)
	}
	d.screen.Modal = m
	snap = d.screen
	d.mu.Unlock()
	d.render.Render(snap)
	return err
}

func (d *Dashboard) cards(subs []contestapi.SubmissionDetail) []SubmissionCard {
	cards := make([]SubmissionCard, len(subs))
	for i, s := range subs {
		c := SubmissionCard{
			ProblemName:   view.ProblemName(d.cfg.ProblemNames, s.ProblemID),
			Language:      s.Language,
			Solved:        bool(s.IsSolved),
			SolvedText:    TextUnsolved,
			TimeTaken:     view.FormatTime(s.TimeTakenSeconds),
			WrongAttempts: s.WrongAttempts,
			TotalAttempts: s.WrongAttempts,
			LastSaved:     view.Dash,
			Code:          s.Code,
		}
		if c.Language == "" {
			c.Language = "?"
		}
		if c.Solved {
			c.SolvedText = TextSolved
			c.TotalAttempts++
		}
		if s.LastUpdated != "" {
			c.LastSaved = view.LocalDateTime(s.LastUpdated, d.cfg.Location)
		}
		if c.Code == "" {
			c.Code = TextEmptyCode
		}
		cards[i] = c
	}
	return cards
}

func (d *Dashboard) CloseModal() {
	d.mu.Lock()
	d.modalSeq++
	d.screen.Modal = ModalView{}
	snap := d.screen
	d.mu.Unlock()
	d.render.Render(snap)
}

func (d *Dashboard) StartContest(ctx context.Context) error {
	if !d.dialog.Confirm(ConfirmStart) {
		return nil
	}
	res, err := d.api.StartContest(ctx)
	if err != nil {
		d.dialog.Alert(TextNetworkErr)
		return err
	}
	if !res.Success {
		d.dialog.Alert(res.Error)
		return nil
	}
	d.dialog.Alert(AlertStarted)
	d.refreshQuietly(ctx)
	return nil
}

// StopContest only reports success; a refused stop leaves the page as is.
func (d *Dashboard) StopContest(ctx context.Context) error {
	if !d.dialog.Confirm(ConfirmStop) {
		return nil
	}
	res, err := d.api.StopContest(ctx)
	if err != nil {
		d.dialog.Alert(TextNetworkErr)
		return err
	}
	if res.Success {
		d.dialog.Alert(AlertStopped)
		d.refreshQuietly(ctx)
	}
	return nil
}

func (d *Dashboard) EndParticipant(ctx context.Context, participantID int, name string) error {
	if !d.dialog.Confirm(ConfirmEnd(name)) {
		return nil
	}
	res, err := d.api.EndParticipant(ctx, participantID)
	if err != nil {
		d.dialog.Alert(TextNetworkErr)
		return err
	}
	if !res.Success {
		d.dialog.Alert(res.Error)
		return nil
	}
	d.dialog.Alert(AlertEnded(name))
	d.refreshQuietly(ctx)
	return nil
}

func (d *Dashboard) refreshQuietly(ctx context.Context) {
	if err := d.Refresh(ctx); err != nil {
		d.logger.Debug("dashboard refresh failed", "error", err)
	}
}
