package admin_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/programme-lv/contest-portal/admin"
	"github.com/programme-lv/contest-portal/contestapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu sync.Mutex

	status       contestapi.ContestStatus
	statusErr    error
	participants []contestapi.Participant
	partErr      error
	leaderboard  []contestapi.LeaderboardEntry
	boardErr     error
	detail       []contestapi.SubmissionDetail
	detailErr    error
	action       contestapi.ActionResult
	actionErr    error

	// blocks the participants call until released when set
	gate chan struct{}

	calls []string
	ended []int
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeAPI) ContestStatus(context.Context) (contestapi.ContestStatus, error) {
	f.record("status")
	return f.status, f.statusErr
}

func (f *fakeAPI) Participants(context.Context) ([]contestapi.Participant, error) {
	f.record("participants")
	f.mu.Lock()
	gate := f.gate
	ps, err := f.participants, f.partErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return ps, err
}

func (f *fakeAPI) Leaderboard(context.Context) ([]contestapi.LeaderboardEntry, error) {
	f.record("leaderboard")
	return f.leaderboard, f.boardErr
}

func (f *fakeAPI) ParticipantDetail(context.Context, int) ([]contestapi.SubmissionDetail, error) {
	f.record("detail")
	return f.detail, f.detailErr
}

func (f *fakeAPI) StartContest(context.Context) (contestapi.ActionResult, error) {
	f.record("start")
	return f.action, f.actionErr
}

func (f *fakeAPI) StopContest(context.Context) (contestapi.ActionResult, error) {
	f.record("stop")
	return f.action, f.actionErr
}

func (f *fakeAPI) EndParticipant(_ context.Context, id int) (contestapi.ActionResult, error) {
	f.record("end")
	f.mu.Lock()
	f.ended = append(f.ended, id)
	f.mu.Unlock()
	return f.action, f.actionErr
}

type recorder struct {
	mu      sync.Mutex
	screens []admin.Screen
}

func (r *recorder) Render(s admin.Screen) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.screens = append(r.screens, s)
}

func (r *recorder) last() admin.Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.screens[len(r.screens)-1]
}

type dialog struct {
	answer   bool
	confirms []string
	alerts   []string
}

func (d *dialog) Confirm(msg string) bool {
	d.confirms = append(d.confirms, msg)
	return d.answer
}

func (d *dialog) Alert(msg string) { d.alerts = append(d.alerts, msg) }

func newDashboard(api *fakeAPI, dlg *dialog) (*admin.Dashboard, *recorder) {
	rec := &recorder{}
	d := admin.New(api, rec, dlg, admin.Config{
		ProblemNames: map[int]string{1: "Task 1: Signal Decoder"},
		Location:     time.UTC,
	})
	return d, rec
}

func sampleParticipants() []contestapi.Participant {
	return []contestapi.Participant{
		{ID: 7, Name: "Ada <3", College: "MIT", SystemNumber: "S1", Phone: "1", SolvedCount: 3},
		{ID: 8, Name: "Bob", College: "CMU", SystemNumber: "S2", Phone: "2", SolvedCount: 2, Submitted: true},
		{ID: 9, Name: "Cy", College: "ETH", SystemNumber: "S3", Phone: "3", SolvedCount: 0},
	}
}

func TestRefreshRendersAllParts(t *testing.T) {
	api := &fakeAPI{
		status:       contestapi.ContestStatus{Active: true, StartTime: "2026-10-18T09:30:00Z", Duration: 3600},
		participants: sampleParticipants(),
		leaderboard: []contestapi.LeaderboardEntry{
			{Name: "Ada", SolvedCount: 3, TotalTime: 125, TotalWrong: 2},
			{Name: "Bob", SolvedCount: 2, TotalTime: 300},
			{Name: "Cy"},
			{Name: "Dee"},
		},
	}
	d, rec := newDashboard(api, &dialog{})

	require.NoError(t, d.Refresh(context.Background()))
	s := rec.last()

	assert.True(t, s.Status.Live)
	assert.Equal(t, admin.TextLive, s.Status.Text)
	assert.Equal(t, "Started: 09:30:00", s.Status.Started)

	assert.Equal(t, 3, s.Stats.Total)
	assert.Equal(t, 1, s.Stats.Submitted)
	assert.Equal(t, 2, s.Stats.Active)
	assert.Equal(t, s.Stats.Total, s.Stats.Submitted+s.Stats.Active)
	assert.Equal(t, "1.7", s.Stats.AvgSolved)

	require.Len(t, s.Participants, 3)
	assert.Equal(t, 1, s.Participants[0].Number)
	assert.Equal(t, "Ada <3", s.Participants[0].Name, "escaping is left to the template")
	assert.Equal(t, "3/6", s.Participants[0].Solved)
	assert.True(t, s.Participants[0].CanEnd())
	assert.False(t, s.Participants[1].CanEnd())
	assert.Empty(t, s.ParticipantsEmpty)

	require.Len(t, s.Leaderboard, 4)
	assert.Equal(t, "🥇", s.Leaderboard[0].Symbol)
	assert.Equal(t, "rank-gold", s.Leaderboard[0].Class)
	assert.Equal(t, "2m 5s", s.Leaderboard[0].Time)
	assert.Equal(t, "2 wrong", s.Leaderboard[0].Wrong)
	assert.True(t, s.Leaderboard[0].HasWrong)
	assert.Equal(t, "—", s.Leaderboard[1].Wrong)
	assert.Equal(t, "—", s.Leaderboard[2].Time)
	assert.Equal(t, "4", s.Leaderboard[3].Symbol)
	assert.Equal(t, "rank-other", s.Leaderboard[3].Class)
}

func TestRefreshEmptyLists(t *testing.T) {
	d, rec := newDashboard(&fakeAPI{}, &dialog{})

	require.NoError(t, d.Refresh(context.Background()))
	s := rec.last()

	assert.Equal(t, admin.TextNotActive, s.Status.Text)
	assert.Empty(t, s.Status.Started)
	assert.Equal(t, "0", s.Stats.AvgSolved)
	assert.Equal(t, admin.TextNoPartic, s.ParticipantsEmpty)
	assert.Equal(t, admin.TextNoData, s.LeaderboardEmpty)
}

func TestFailedPartKeepsPreviousContent(t *testing.T) {
	api := &fakeAPI{participants: sampleParticipants()}
	d, rec := newDashboard(api, &dialog{})
	require.NoError(t, d.Refresh(context.Background()))

	api.partErr = errors.New("boom")
	api.status = contestapi.ContestStatus{Active: true}
	err := d.Refresh(context.Background())
	require.Error(t, err)

	s := rec.last()
	assert.True(t, s.Status.Live, "healthy parts still update")
	assert.Len(t, s.Participants, 3)
	assert.Equal(t, 3, s.Stats.Total)
}

func TestStaleRefreshIsDropped(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{participants: sampleParticipants(), gate: gate}
	d, rec := newDashboard(api, &dialog{})

	slow := make(chan struct{})
	go func() {
		_ = d.Refresh(context.Background())
		close(slow)
	}()
	require.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		for _, c := range api.calls {
			if c == "participants" {
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)

	api.mu.Lock()
	api.gate = nil
	api.participants = sampleParticipants()[:1]
	api.mu.Unlock()
	require.NoError(t, d.Refresh(context.Background()))
	assert.Len(t, rec.last().Participants, 1)

	// the first refresh was handed three rows and answers last
	close(gate)
	<-slow
	assert.Len(t, rec.last().Participants, 1)
	assert.Len(t, d.Snapshot().Participants, 1)
}

func TestViewCodeModal(t *testing.T) {
	api := &fakeAPI{detail: []contestapi.SubmissionDetail{
		{ProblemID: 1, Language: "python", IsSolved: true, WrongAttempts: 2, TimeTakenSeconds: 61, LastUpdated: "2026-10-18T10:00:05Z", Code: "print(1)"},
		{ProblemID: 5, WrongAttempts: 0},
	}}
	d, rec := newDashboard(api, &dialog{})

	require.NoError(t, d.ViewCode(context.Background(), 7, "Ada"))

	require.GreaterOrEqual(t, len(rec.screens), 2)
	loading := rec.screens[len(rec.screens)-2].Modal
	assert.True(t, loading.Open)
	assert.True(t, loading.Loading)
	assert.Equal(t, admin.TextLoading, loading.Message)
	assert.Equal(t, "Submissions — Ada", loading.Title)

	m := rec.last().Modal
	require.Len(t, m.Cards, 2)
	first, second := m.Cards[0], m.Cards[1]
	assert.Equal(t, "Task 1: Signal Decoder", first.ProblemName)
	assert.Equal(t, admin.TextSolved, first.SolvedText)
	assert.Equal(t, 3, first.TotalAttempts)
	assert.Equal(t, "1m 1s", first.TimeTaken)
	assert.Equal(t, "2026-10-18 10:00:05", first.LastSaved)

	assert.Equal(t, "Problem 5", second.ProblemName)
	assert.Equal(t, "?", second.Language)
	assert.Equal(t, admin.TextUnsolved, second.SolvedText)
	assert.Equal(t, 0, second.TotalAttempts)
	assert.Equal(t, "—", second.TimeTaken)
	assert.Equal(t, "—", second.LastSaved)
	assert.Equal(t, admin.TextEmptyCode, second.Code)

	d.CloseModal()
	assert.False(t, rec.last().Modal.Open)
}

func TestViewCodeWithoutSubmissions(t *testing.T) {
	d, rec := newDashboard(&fakeAPI{}, &dialog{})
	require.NoError(t, d.ViewCode(context.Background(), 1, "Ada"))
	assert.Equal(t, admin.TextNoSubs, rec.last().Modal.Message)
	assert.False(t, rec.last().Modal.Loading)
}

func TestStartContest(t *testing.T) {
	api := &fakeAPI{action: contestapi.ActionResult{Success: true}}
	dlg := &dialog{answer: true}
	d, _ := newDashboard(api, dlg)

	require.NoError(t, d.StartContest(context.Background()))
	assert.Equal(t, []string{admin.ConfirmStart}, dlg.confirms)
	assert.Equal(t, []string{admin.AlertStarted}, dlg.alerts)
	assert.Contains(t, api.calls, "status", "the dashboard reloads after starting")
}

func TestStartContestDeclined(t *testing.T) {
	api := &fakeAPI{}
	d, _ := newDashboard(api, &dialog{answer: false})

	require.NoError(t, d.StartContest(context.Background()))
	assert.Empty(t, api.calls)
}

func TestStartContestRefused(t *testing.T) {
	api := &fakeAPI{action: contestapi.ActionResult{Error: "Contest already running"}}
	dlg := &dialog{answer: true}
	d, _ := newDashboard(api, dlg)

	require.NoError(t, d.StartContest(context.Background()))
	assert.Equal(t, []string{"Contest already running"}, dlg.alerts)
	assert.Equal(t, []string{"start"}, api.calls)
}

func TestStopContestFailureIsSilent(t *testing.T) {
	api := &fakeAPI{action: contestapi.ActionResult{Error: "nope"}}
	dlg := &dialog{answer: true}
	d, _ := newDashboard(api, dlg)

	require.NoError(t, d.StopContest(context.Background()))
	assert.Equal(t, []string{admin.ConfirmStop}, dlg.confirms)
	assert.Empty(t, dlg.alerts)
}

func TestEndParticipant(t *testing.T) {
	api := &fakeAPI{action: contestapi.ActionResult{Success: true}}
	dlg := &dialog{answer: true}
	d, _ := newDashboard(api, dlg)

	require.NoError(t, d.EndParticipant(context.Background(), 9, "Cy"))
	assert.Equal(t, []string{"End test for Cy? They will not be able to continue."}, dlg.confirms)
	assert.Equal(t, []string{"Test ended for Cy."}, dlg.alerts)
	assert.Equal(t, []int{9}, api.ended)
}

func TestActionNetworkError(t *testing.T) {
	api := &fakeAPI{actionErr: errors.New("dial tcp: refused")}
	dlg := &dialog{answer: true}
	d, _ := newDashboard(api, dlg)

	assert.Error(t, d.EndParticipant(context.Background(), 9, "Cy"))
	assert.Equal(t, []string{admin.TextNetworkErr}, dlg.alerts)
}

func TestStartPollsUntilClosed(t *testing.T) {
	api := &fakeAPI{}
	rec := &recorder{}
	d := admin.New(api, rec, &dialog{}, admin.Config{PollInterval: 10 * time.Millisecond})

	d.Start(context.Background())
	require.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return len(rec.screens) >= 3
	}, time.Second, 5*time.Millisecond)
	d.Close()

	rec.mu.Lock()
	n := len(rec.screens)
	rec.mu.Unlock()
	time.Sleep(40 * time.Millisecond)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, n, len(rec.screens))
}
