package portalhttp

import (
	"context"

	"github.com/programme-lv/contest-portal/admin"
	"github.com/programme-lv/contest-portal/adminlogin"
	"github.com/programme-lv/contest-portal/contest"
	"github.com/programme-lv/contest-portal/countdown"
	"github.com/programme-lv/contest-portal/logger"
	"github.com/programme-lv/contest-portal/page"
	"github.com/programme-lv/contest-portal/register"
)

type registerPage struct {
	form   *register.Form
	screen *page.Holder[register.Screen]
	nav    *page.Redirect
}

func (p *registerPage) close() { p.form.Close() }

type loginPage struct {
	form   *adminlogin.Form
	screen *page.Holder[adminlogin.Screen]
	nav    *page.Redirect
}

func (p *loginPage) close() {}

type adminPage struct {
	dash   *admin.Dashboard
	screen *page.Holder[admin.Screen]
	flash  *page.Flash
}

func (p *adminPage) close() { p.dash.Close() }

type contestPage struct {
	ide    *contest.IDE
	screen *page.Holder[contest.Screen]
	nav    *page.Redirect
}

func (p *contestPage) close() { p.ide.Close() }

// Controllers outlive the request that opened them, so they run on the
// server's base context.
func (httpserver *HttpServer) sessionCtx(s *session) context.Context {
	return logger.WithLogger(httpserver.baseCtx, s.logger)
}

func (httpserver *HttpServer) openRegister(s *session) *registerPage {
	p, created := s.open(pageRegister, func() livePage {
		holder := page.NewHolder(register.Initial())
		nav := &page.Redirect{}
		form := register.New(s.client, holder, nav, register.Config{
			PollInterval: httpserver.cfg.Polling.Status(),
			Logger:       s.logger,
		})
		return &registerPage{form: form, screen: holder, nav: nav}
	})
	rp := p.(*registerPage)
	if created {
		rp.form.Start(httpserver.sessionCtx(s))
	}
	return rp
}

func (httpserver *HttpServer) openLogin(s *session) *loginPage {
	p, _ := s.open(pageLogin, func() livePage {
		holder := page.NewHolder(adminlogin.Screen{})
		nav := &page.Redirect{}
		return &loginPage{form: adminlogin.New(s.client, holder, nav), screen: holder, nav: nav}
	})
	return p.(*loginPage)
}

func (httpserver *HttpServer) openAdmin(s *session) *adminPage {
	p, created := s.open(pageAdmin, func() livePage {
		holder := page.NewHolder(admin.Screen{})
		flash := &page.Flash{}
		dash := admin.New(s.client, holder, flash, admin.Config{
			ProblemNames: httpserver.cfg.Contest.Names(),
			ProblemCount: httpserver.cfg.Contest.ProblemCount,
			PollInterval: httpserver.cfg.Polling.Admin(),
			Location:     httpserver.location,
			Logger:       s.logger,
		})
		holder.Render(dash.Snapshot())
		return &adminPage{dash: dash, screen: holder, flash: flash}
	})
	ap := p.(*adminPage)
	if created {
		ap.dash.Start(httpserver.sessionCtx(s))
	}
	return ap
}

// openContest reuses the session's IDE unless it never managed to load;
// such a page is rebuilt so a reload tries the backend again.
func (httpserver *HttpServer) openContest(s *session) *contestPage {
	if old, ok := lookupPage[*contestPage](s, pageContest); ok && !old.ide.Loaded() {
		s.drop(pageContest, old)
	}
	p, created := s.open(pageContest, func() livePage {
		holder := page.NewHolder(contest.Initial())
		nav := &page.Redirect{}
		c := httpserver.cfg.Contest
		ide := contest.New(s.client, holder, nav, contest.Config{
			Languages: c.Languages,
			Thresholds: countdown.Thresholds{
				Warning:   c.Warning(),
				Critical:  c.Critical(),
				EndButton: c.EndButton(),
			},
			TickInterval:     httpserver.cfg.Polling.Tick(),
			StatusInterval:   httpserver.cfg.Polling.Status(),
			AutosaveInterval: httpserver.cfg.Polling.Autosave(),
			Now:              httpserver.now,
			Location:         httpserver.location,
			Logger:           s.logger,
		})
		return &contestPage{ide: ide, screen: holder, nav: nav}
	})
	cp := p.(*contestPage)
	if created {
		if err := cp.ide.Start(httpserver.sessionCtx(s)); err != nil {
			s.logger.Warn("contest page load failed", "error", err)
		}
	}
	return cp
}

func lookupPage[P livePage](s *session, kind pageKind) (P, bool) {
	var zero P
	p, ok := s.lookup(kind)
	if !ok {
		return zero, false
	}
	typed, ok := p.(P)
	return typed, ok
}
