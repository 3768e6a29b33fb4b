package portalhttp

import (
	"context"
	"net/http"

	"github.com/programme-lv/contest-portal/contest"
	"github.com/programme-lv/contest-portal/logger"
)

func (httpserver *HttpServer) contestPage(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r.Context())
	p := httpserver.openContest(s)
	if err := httpserver.issueCookie(w, s.id); err != nil {
		writeError(w, r, err)
		return
	}
	screen, _ := p.screen.Latest()
	httpserver.renderPage(w, r, "contest-page", pageData{
		Title:  "Contest",
		Stream: "/contest/stream",
		Screen: screen,

		EditorURL: httpserver.cfg.EditorURL,
	})
}

func (httpserver *HttpServer) contestFragment(w http.ResponseWriter, r *http.Request) {
	p, ok := httpserver.contestPageOf(w, r)
	if !ok {
		return
	}
	screen, _ := p.screen.Latest()
	writeFragment(httpserver, w, r, contestFragments, screen)
}

func (httpserver *HttpServer) contestStream(w http.ResponseWriter, r *http.Request) {
	p, ok := httpserver.contestPageOf(w, r)
	if !ok {
		return
	}
	streamScreen(httpserver, w, r, p.screen, contestFragments)
}

// contestPageOf finds the IDE the browser loaded. Script requests for a
// page that was closed, by another tab or by expiry, make the browser
// reload.
func (httpserver *HttpServer) contestPageOf(w http.ResponseWriter, r *http.Request) (*contestPage, bool) {
	p, ok := lookupPage[*contestPage](sessionFrom(r.Context()), pageContest)
	if !ok {
		writeError(w, r, errPageClosed())
		return nil, false
	}
	return p, true
}

func (httpserver *HttpServer) contestAction(w http.ResponseWriter, r *http.Request, name string, fn func(ctx context.Context, ide *contest.IDE) (any, error)) {
	p, ok := httpserver.contestPageOf(w, r)
	if !ok {
		return
	}
	reaction, err := fn(actionCtx(r), p.ide)
	if err != nil {
		if isClientError(err) {
			writeError(w, r, err)
			return
		}
		logger.FromContext(r.Context()).Warn("contest action failed", "action", name, "error", err)
	}
	screen, _ := p.screen.Latest()
	writeAction(httpserver, w, r, contestFragments, screen, actionResult{
		Redirect: p.nav.Take(),
		Reaction: reaction,
	})
}

func (httpserver *HttpServer) contestSelect(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpserver.contestAction(w, r, "select", func(ctx context.Context, ide *contest.IDE) (any, error) {
		return nil, ide.SelectProblem(ctx, id)
	})
}

// contestCode only records the buffer; nothing on screen changes, so the
// answer carries no fragments.
func (httpserver *HttpServer) contestCode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	p, ok := httpserver.contestPageOf(w, r)
	if !ok {
		return
	}
	p.ide.EditCode(body.Code)
	w.WriteHeader(http.StatusNoContent)
}

func (httpserver *HttpServer) contestLanguage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Language string `json:"language"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	httpserver.contestAction(w, r, "language", func(ctx context.Context, ide *contest.IDE) (any, error) {
		return nil, ide.ChangeLanguage(body.Language)
	})
}

func (httpserver *HttpServer) contestRun(w http.ResponseWriter, r *http.Request) {
	httpserver.contestAction(w, r, "run", func(ctx context.Context, ide *contest.IDE) (any, error) {
		return nil, ide.Run(ctx)
	})
}

func (httpserver *HttpServer) contestSubmit(w http.ResponseWriter, r *http.Request) {
	httpserver.contestAction(w, r, "submit", func(ctx context.Context, ide *contest.IDE) (any, error) {
		return nil, ide.Submit(ctx)
	})
}

func (httpserver *HttpServer) contestAutosave(w http.ResponseWriter, r *http.Request) {
	httpserver.contestAction(w, r, "autosave", func(ctx context.Context, ide *contest.IDE) (any, error) {
		return nil, ide.Autosave(ctx)
	})
}

func (httpserver *HttpServer) contestShowEnd(w http.ResponseWriter, r *http.Request) {
	httpserver.contestAction(w, r, "end-modal", func(ctx context.Context, ide *contest.IDE) (any, error) {
		ide.ShowEndModal()
		return nil, nil
	})
}

func (httpserver *HttpServer) contestCloseEnd(w http.ResponseWriter, r *http.Request) {
	httpserver.contestAction(w, r, "end-modal-close", func(ctx context.Context, ide *contest.IDE) (any, error) {
		ide.CloseEndModal()
		return nil, nil
	})
}

func (httpserver *HttpServer) contestEnd(w http.ResponseWriter, r *http.Request) {
	httpserver.contestAction(w, r, "end", func(ctx context.Context, ide *contest.IDE) (any, error) {
		return nil, ide.ConfirmEnd(ctx)
	})
}

func (httpserver *HttpServer) contestForceEnd(w http.ResponseWriter, r *http.Request) {
	httpserver.contestAction(w, r, "force-end", func(ctx context.Context, ide *contest.IDE) (any, error) {
		return nil, ide.ForceEnd(ctx)
	})
}

func (httpserver *HttpServer) contestEvent(w http.ResponseWriter, r *http.Request) {
	var ev contest.Event
	if err := decodeBody(r, &ev); err != nil {
		writeError(w, r, err)
		return
	}
	httpserver.contestAction(w, r, "event", func(ctx context.Context, ide *contest.IDE) (any, error) {
		reaction, err := ide.HandleEvent(ctx, ev)
		return reaction, err
	})
}

// endedPage is where the contest page leaves to; the session keeps its
// participant flag but no live page.
func (httpserver *HttpServer) endedPage(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r.Context()).close()
	httpserver.renderPage(w, r, "ended-page", pageData{Title: "Test ended"})
}
