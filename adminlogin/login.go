// Package adminlogin is the admin password form.
package adminlogin

import (
	"context"
	"sync"

	"github.com/programme-lv/contest-portal/contestapi"
	"github.com/programme-lv/contest-portal/page"
)

const (
	TextPasswordRequired = "Password required."
	TextLoginFailed      = "Login failed."
	TextNetworkError     = "Network error."

	DashboardPath = "/admin"
)

type API interface {
	AdminLogin(ctx context.Context, password string) (contestapi.ActionResult, error)
}

type Screen struct {
	Error string // shown when non-empty
	Busy  bool
}

type Form struct {
	api    API
	render page.Renderer[Screen]
	nav    page.Navigator

	mu     sync.Mutex
	screen Screen
}

func New(api API, r page.Renderer[Screen], nav page.Navigator) *Form {
	return &Form{api: api, render: r, nav: nav}
}

// Submit hides the previous error, rejects an empty password locally and
// otherwise asks the backend. On success the browser goes to the dashboard.
func (f *Form) Submit(ctx context.Context, password string) error {
	if password == "" {
		f.show(Screen{Error: TextPasswordRequired})
		return nil
	}
	f.show(Screen{Busy: true})

	res, err := f.api.AdminLogin(ctx, password)
	switch {
	case err != nil:
		f.show(Screen{Error: TextNetworkError})
		return err
	case res.Success:
		f.show(Screen{})
		f.nav.Navigate(DashboardPath)
	case res.Error != "":
		f.show(Screen{Error: res.Error})
	default:
		f.show(Screen{Error: TextLoginFailed})
	}
	return nil
}

func (f *Form) Snapshot() Screen {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.screen
}

func (f *Form) show(s Screen) {
	f.mu.Lock()
	f.screen = s
	f.mu.Unlock()
	f.render.Render(s)
}
