package main

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/programme-lv/contest-portal/admin"
	"github.com/programme-lv/contest-portal/adminlogin"
	"github.com/rs/zerolog/log"
)

type state int

const (
	stateLogin state = iota
	stateDashboard
	stateConfirm
	stateModal
)

type (
	loginMsg  adminlogin.Screen
	navMsg    string
	screenMsg admin.Screen
	alertMsg  string
	doneMsg   struct {
		action string
		err    error
	}
)

// app holds the controllers; they are built after the program because
// their renderers send to it.
type app struct {
	ctx   context.Context
	login interface {
		Submit(ctx context.Context, password string) error
	}
	dash interface {
		Start(ctx context.Context)
		Refresh(ctx context.Context) error
		StartContest(ctx context.Context) error
		StopContest(ctx context.Context) error
		EndParticipant(ctx context.Context, participantID int, name string) error
		ViewCode(ctx context.Context, participantID int, name string) error
		CloseModal()
		Close()
	}
}

type pendingAction struct {
	name   string
	prompt string
	run    func(ctx context.Context) error
}

type model struct {
	app   *app
	state state

	password textinput.Model
	spinner  spinner.Model
	login    adminlogin.Screen

	screen   admin.Screen
	loaded   bool
	selected int
	alert    string
	pending  *pendingAction
	busy     bool
}

func newModel(a *app) model {
	ti := textinput.New()
	ti.Placeholder = "admin password"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 128
	ti.Width = 32
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#3498db"))

	return model{app: a, state: stateLogin, password: ti, spinner: s}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m model) run(name string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.app.ctx
	return func() tea.Msg {
		return doneMsg{action: name, err: fn(ctx)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case loginMsg:
		m.login = adminlogin.Screen(msg)
		return m, nil
	case navMsg:
		if string(msg) == adminlogin.DashboardPath && m.state == stateLogin {
			m.state = stateDashboard
			m.password.Blur()
			ctx, dash := m.app.ctx, m.app.dash
			return m, func() tea.Msg {
				dash.Start(ctx)
				return nil
			}
		}
		return m, nil
	case screenMsg:
		m.screen = admin.Screen(msg)
		m.loaded = true
		if m.selected >= len(m.screen.Participants) {
			m.selected = max(0, len(m.screen.Participants)-1)
		}
		switch {
		case m.screen.Modal.Open && m.state == stateDashboard:
			m.state = stateModal
		case !m.screen.Modal.Open && m.state == stateModal:
			m.state = stateDashboard
		}
		return m, nil
	case alertMsg:
		m.alert = string(msg)
		return m, nil
	case doneMsg:
		m.busy = false
		if msg.err != nil {
			log.Warn().Err(msg.err).Str("action", msg.action).Msg("dashboard action failed")
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.state {
		case stateLogin:
			return m.updateLogin(msg)
		case stateConfirm:
			return m.updateConfirm(msg)
		case stateModal:
			return m.updateModal(msg)
		default:
			return m.updateDashboard(msg)
		}
	}
	return m, nil
}

func (m model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		if m.login.Busy {
			return m, nil
		}
		password := m.password.Value()
		m.login = adminlogin.Screen{Busy: password != ""}
		return m, m.run("login", func(ctx context.Context) error {
			return m.app.login.Submit(ctx, password)
		})
	}
	var cmd tea.Cmd
	m.password, cmd = m.password.Update(msg)
	return m, cmd
}

func (m model) selectedRow() (admin.ParticipantRow, bool) {
	if m.selected < 0 || m.selected >= len(m.screen.Participants) {
		return admin.ParticipantRow{}, false
	}
	return m.screen.Participants[m.selected], true
}

func (m model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.screen.Participants)-1 {
			m.selected++
		}
	case "r":
		m.busy = true
		return m, m.run("refresh", m.app.dash.Refresh)
	case "s":
		m.pending = &pendingAction{name: "start", prompt: admin.ConfirmStart, run: m.app.dash.StartContest}
		m.state = stateConfirm
	case "x":
		m.pending = &pendingAction{name: "stop", prompt: admin.ConfirmStop, run: m.app.dash.StopContest}
		m.state = stateConfirm
	case "e":
		row, ok := m.selectedRow()
		if !ok || !row.CanEnd() {
			return m, nil
		}
		m.pending = &pendingAction{
			name:   "end",
			prompt: admin.ConfirmEnd(row.Name),
			run: func(ctx context.Context) error {
				return m.app.dash.EndParticipant(ctx, row.ID, row.Name)
			},
		}
		m.state = stateConfirm
	case "v", "enter":
		row, ok := m.selectedRow()
		if !ok {
			return m, nil
		}
		m.state = stateModal
		return m, m.run("view", func(ctx context.Context) error {
			return m.app.dash.ViewCode(ctx, row.ID, row.Name)
		})
	}
	return m, nil
}

func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y":
		p := m.pending
		m.pending = nil
		m.state = stateDashboard
		m.busy = true
		return m, m.run(p.name, p.run)
	case "n", "esc":
		m.pending = nil
		m.state = stateDashboard
	}
	return m, nil
}

func (m model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "enter":
		m.screen.Modal.Open = false
		m.state = stateDashboard
		// the controller renders through the program, so not from Update
		dash := m.app.dash
		return m, func() tea.Msg {
			dash.CloseModal()
			return nil
		}
	}
	return m, nil
}
