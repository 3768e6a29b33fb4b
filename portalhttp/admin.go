package portalhttp

import (
	"context"
	"net/http"

	"github.com/programme-lv/contest-portal/admin"
	"github.com/programme-lv/contest-portal/adminlogin"
	"github.com/programme-lv/contest-portal/logger"
)

func (httpserver *HttpServer) loginPage(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())
	if s.isAdmin() {
		http.Redirect(w, r, adminlogin.DashboardPath, http.StatusSeeOther)
		return
	}
	p := httpserver.openLogin(s)
	screen, _ := p.screen.Latest()
	httpserver.renderPage(w, r, "login-page", pageData{Title: "Admin login", Screen: screen})
}

func (httpserver *HttpServer) loginFragment(w http.ResponseWriter, r *http.Request) {
	p, ok := lookupPage[*loginPage](sessionFrom(r.Context()), pageLogin)
	if !ok {
		writeFragment(httpserver, w, r, loginFragments, adminlogin.Screen{})
		return
	}
	screen, _ := p.screen.Latest()
	writeFragment(httpserver, w, r, loginFragments, screen)
}

func (httpserver *HttpServer) loginSubmit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	s := sessionFrom(r.Context())
	p := httpserver.openLogin(s)
	if err := p.form.Submit(actionCtx(r), body.Password); err != nil {
		logger.FromContext(r.Context()).Warn("admin login failed", "error", err)
	}

	res := actionResult{Redirect: p.nav.Take()}
	if res.Redirect == adminlogin.DashboardPath {
		s.setAdmin()
	}
	screen, _ := p.screen.Latest()
	writeAction(httpserver, w, r, loginFragments, screen, res)
}

// logout forgets the whole session, backend cookie included.
func (httpserver *HttpServer) logout(w http.ResponseWriter, r *http.Request) {
	httpserver.sessions.remove(sessionFrom(r.Context()).id)
	clearCookie(w)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

func (httpserver *HttpServer) adminPage(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())
	p := httpserver.openAdmin(s)
	if err := httpserver.issueCookie(w, s.id); err != nil {
		writeError(w, r, err)
		return
	}
	screen, _ := p.screen.Latest()
	httpserver.renderPage(w, r, "admin-page", pageData{
		Title:        "Mission Control",
		Stream:       "/admin/stream",
		Screen:       screen,
		ConfirmStart: admin.ConfirmStart,
		ConfirmStop:  admin.ConfirmStop,
	})
}

func (httpserver *HttpServer) adminFragment(w http.ResponseWriter, r *http.Request) {
	p, ok := lookupPage[*adminPage](sessionFrom(r.Context()), pageAdmin)
	if !ok {
		p = httpserver.openAdmin(sessionFrom(r.Context()))
	}
	screen, _ := p.screen.Latest()
	writeFragment(httpserver, w, r, adminFragments, screen)
}

func (httpserver *HttpServer) adminStream(w http.ResponseWriter, r *http.Request) {
	p := httpserver.openAdmin(sessionFrom(r.Context()))
	streamScreen(httpserver, w, r, p.screen, adminFragments)
}

// adminAction runs fn against the session's dashboard and answers with the
// resulting fragments and any alerts the dashboard raised.
func (httpserver *HttpServer) adminAction(w http.ResponseWriter, r *http.Request, name string, fn func(ctx context.Context, d *admin.Dashboard) error) {
	p := httpserver.openAdmin(sessionFrom(r.Context()))
	if err := fn(actionCtx(r), p.dash); err != nil {
		logger.FromContext(r.Context()).Warn("admin action failed", "action", name, "error", err)
	}
	screen, _ := p.screen.Latest()
	writeAction(httpserver, w, r, adminFragments, screen, actionResult{Alerts: p.flash.Drain()})
}

func (httpserver *HttpServer) adminRefresh(w http.ResponseWriter, r *http.Request) {
	httpserver.adminAction(w, r, "refresh", func(ctx context.Context, d *admin.Dashboard) error {
		return d.Refresh(ctx)
	})
}

func (httpserver *HttpServer) adminStart(w http.ResponseWriter, r *http.Request) {
	httpserver.adminAction(w, r, "start", func(ctx context.Context, d *admin.Dashboard) error {
		return d.StartContest(ctx)
	})
}

func (httpserver *HttpServer) adminStop(w http.ResponseWriter, r *http.Request) {
	httpserver.adminAction(w, r, "stop", func(ctx context.Context, d *admin.Dashboard) error {
		return d.StopContest(ctx)
	})
}

type participantRef struct {
	Name string `json:"name"`
}

func (httpserver *HttpServer) adminEnd(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var ref participantRef
	if err := decodeBody(r, &ref); err != nil {
		writeError(w, r, err)
		return
	}
	httpserver.adminAction(w, r, "end", func(ctx context.Context, d *admin.Dashboard) error {
		return d.EndParticipant(ctx, id, ref.Name)
	})
}

func (httpserver *HttpServer) adminView(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var ref participantRef
	if err := decodeBody(r, &ref); err != nil {
		writeError(w, r, err)
		return
	}
	httpserver.adminAction(w, r, "view", func(ctx context.Context, d *admin.Dashboard) error {
		return d.ViewCode(ctx, id, ref.Name)
	})
}

func (httpserver *HttpServer) adminCloseModal(w http.ResponseWriter, r *http.Request) {
	httpserver.adminAction(w, r, "close-modal", func(ctx context.Context, d *admin.Dashboard) error {
		d.CloseModal()
		return nil
	})
}
