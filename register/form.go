// Package register is the participant registration page: a contest status
// poll gating the form, and the form itself.
package register

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/programme-lv/contest-portal/contestapi"
	"github.com/programme-lv/contest-portal/page"
	"github.com/programme-lv/contest-portal/sched"
)

const (
	TextLive             = "Contest is LIVE"
	TextWaiting          = "Waiting for contest to start..."
	TextConnectionError  = "Server connection error"
	TextFieldsRequired   = "All fields are required."
	TextRegistrationFail = "Registration failed."
	TextNetworkError     = "Network error. Try again."
	ButtonEnter          = "Enter the Ship"
	ButtonBoarding       = "Boarding..."

	ContestPath     = "/contest"
	DefaultInterval = 5 * time.Second
)

type API interface {
	ContestStatus(ctx context.Context) (contestapi.ContestStatus, error)
	Register(ctx context.Context, r contestapi.Registration) (contestapi.ActionResult, error)
}

type Screen struct {
	Live         bool
	StatusText   string
	Waiting      bool // waiting message visible
	ButtonText   string
	ButtonEnable bool
	Error        string
}

type Config struct {
	PollInterval time.Duration
	Logger       *slog.Logger
}

type Form struct {
	api      API
	render   page.Renderer[Screen]
	nav      page.Navigator
	validate *validator.Validate
	cfg      Config

	mu         sync.Mutex
	screen     Screen
	active     bool
	submitting bool
	sched      *sched.Scheduler
}

func New(api API, r page.Renderer[Screen], nav page.Navigator, cfg Config) *Form {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Form{
		api:      api,
		render:   r,
		nav:      nav,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		cfg:      cfg,
		screen:   Initial(),
	}
}

// Initial is the page before the first status answer.
func Initial() Screen {
	return Screen{ButtonText: ButtonEnter}
}

func (f *Form) Start(ctx context.Context) {
	f.mu.Lock()
	if f.sched == nil {
		f.sched = sched.New(ctx, f.cfg.Logger)
	}
	s := f.sched
	f.mu.Unlock()
	s.Every("register-status", f.cfg.PollInterval, f.CheckStatus, sched.Immediately())
}

func (f *Form) Close() {
	f.mu.Lock()
	s := f.sched
	f.mu.Unlock()
	if s != nil {
		s.Stop()
	}
}

func (f *Form) Snapshot() Screen {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.screen
}

// Active reports the contest state seen by the last successful poll.
func (f *Form) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// CheckStatus polls the contest status. A failed poll only changes the
// status text; the button keeps its last state.
func (f *Form) CheckStatus(ctx context.Context) error {
	status, err := f.api.ContestStatus(ctx)

	f.mu.Lock()
	if err != nil {
		f.screen.StatusText = TextConnectionError
	} else {
		f.active = status.Active
		f.screen.Live = status.Active
		if status.Active {
			f.screen.StatusText = TextLive
			f.screen.Waiting = false
		} else {
			f.screen.StatusText = TextWaiting
			f.screen.Waiting = true
		}
		if !f.submitting {
			f.screen.ButtonEnable = status.Active
		}
	}
	snap := f.screen
	f.mu.Unlock()

	f.render.Render(snap)
	return err
}

// Submit trims the fields, rejects the form locally when one is empty and
// otherwise registers. Success moves the browser to the contest page.
func (f *Form) Submit(ctx context.Context, reg contestapi.Registration) error {
	reg = contestapi.Registration{
		Name:         strings.TrimSpace(reg.Name),
		College:      strings.TrimSpace(reg.College),
		SystemNumber: strings.TrimSpace(reg.SystemNumber),
		Phone:        strings.TrimSpace(reg.Phone),
	}

	f.mu.Lock()
	f.screen.Error = ""
	if err := f.validate.Struct(reg); err != nil {
		f.screen.Error = TextFieldsRequired
		snap := f.screen
		f.mu.Unlock()
		f.render.Render(snap)
		return nil
	}
	if f.submitting {
		f.mu.Unlock()
		return nil
	}
	f.submitting = true
	f.screen.ButtonText = ButtonBoarding
	f.screen.ButtonEnable = false
	snap := f.screen
	f.mu.Unlock()
	f.render.Render(snap)

	res, err := f.api.Register(ctx, reg)

	f.mu.Lock()
	f.submitting = false
	success := err == nil && res.Success
	switch {
	case err != nil:
		f.screen.Error = TextNetworkError
	case !res.Success && res.Error != "":
		f.screen.Error = res.Error
	case !res.Success:
		f.screen.Error = TextRegistrationFail
	}
	if !success {
		f.screen.ButtonText = ButtonEnter
		f.screen.ButtonEnable = true
	}
	snap = f.screen
	f.mu.Unlock()
	f.render.Render(snap)

	if success {
		f.nav.Navigate(ContestPath)
	}
	return err
}

// EnterPressed submits the form only while the contest is live.
func (f *Form) EnterPressed(ctx context.Context, reg contestapi.Registration) error {
	if !f.Active() {
		return nil
	}
	return f.Submit(ctx, reg)
}
