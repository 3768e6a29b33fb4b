package portalhttp

import (
	"net/http"

	"github.com/programme-lv/contest-portal/contestapi"
	"github.com/programme-lv/contest-portal/logger"
	"github.com/programme-lv/contest-portal/register"
)

func (httpserver *HttpServer) registerPage(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())
	p := httpserver.openRegister(s)
	screen, _ := p.screen.Latest()
	httpserver.renderPage(w, r, "register-page", pageData{
		Title:  "Board the Ship",
		Stream: "/register/stream",
		Screen: screen,
	})
}

func (httpserver *HttpServer) registerFragment(w http.ResponseWriter, r *http.Request) {
	p, ok := lookupPage[*registerPage](sessionFrom(r.Context()), pageRegister)
	if !ok {
		writeFragment(httpserver, w, r, registerFragments, register.Initial())
		return
	}
	screen, _ := p.screen.Latest()
	writeFragment(httpserver, w, r, registerFragments, screen)
}

func (httpserver *HttpServer) registerStream(w http.ResponseWriter, r *http.Request) {
	p := httpserver.openRegister(sessionFrom(r.Context()))
	streamScreen(httpserver, w, r, p.screen, registerFragments)
}

func (httpserver *HttpServer) registerSubmit(w http.ResponseWriter, r *http.Request) {
	httpserver.register(w, r, false)
}

func (httpserver *HttpServer) registerEnter(w http.ResponseWriter, r *http.Request) {
	httpserver.register(w, r, true)
}

func (httpserver *HttpServer) register(w http.ResponseWriter, r *http.Request, enter bool) {
	var reg contestapi.Registration
	if err := decodeBody(r, &reg); err != nil {
		writeError(w, r, err)
		return
	}
	s := sessionFrom(r.Context())
	p := httpserver.openRegister(s)

	var err error
	if enter {
		err = p.form.EnterPressed(actionCtx(r), reg)
	} else {
		err = p.form.Submit(actionCtx(r), reg)
	}
	if err != nil {
		logger.FromContext(r.Context()).Warn("registration failed", "error", err)
	}

	res := actionResult{Redirect: p.nav.Take()}
	if res.Redirect == register.ContestPath {
		s.setParticipant()
	}
	screen, _ := p.screen.Latest()
	writeAction(httpserver, w, r, registerFragments, screen, res)
}
