package portalhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/programme-lv/contest-portal/httpjson"
	"github.com/programme-lv/contest-portal/logger"
	"github.com/programme-lv/contest-portal/srvcerror"
	"github.com/programme-lv/contest-portal/view"
)

// actionResult is the data of every successful POST: what the browser must
// swap in, alert and where it must go next.
type actionResult struct {
	Redirect  string                      `json:"redirect,omitempty"`
	Alerts    []string                    `json:"alerts,omitempty"`
	Fragments map[string]renderedFragment `json:"fragments,omitempty"`
	Reaction  any                         `json:"reaction,omitempty"`
}

// actionCtx detaches controller work from the request: a browser leaving
// the page must not abort a registration or a submission halfway.
func actionCtx(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return srvcerror.ErrValidation("invalid request body").SetDebug(err)
	}
	return nil
}

func intParam(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, srvcerror.ErrValidation("invalid " + name).SetDebug(err)
	}
	return n, nil
}

func errPageClosed() error {
	return srvcerror.ErrSessionNotFound()
}

// isClientError reports errors caused by the request itself rather than by
// the backend; those are answered as errors instead of a screen update.
func isClientError(err error) bool {
	var srvcErr *srvcerror.Error
	if !errors.As(err, &srvcErr) {
		return false
	}
	status := srvcErr.HttpStatusCode()
	return status >= 400 && status < 500 && srvcErr.ErrorCode() != srvcerror.ErrCodeBackendError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	httpjson.HandleError(logger.FromContext(r.Context()), w, err)
}

func (httpserver *HttpServer) renderPage(w http.ResponseWriter, r *http.Request, name string, data pageData) {
	var buf bytes.Buffer
	if err := httpserver.tmpl.execute(&buf, name, data); err != nil {
		logger.FromContext(r.Context()).Error("render page failed", "page", name, "error", err)
		writeErrorPage(w, http.StatusInternalServerError, "Something went wrong. Reload the page.")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func writeErrorPage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte("<!doctype html><p>" + view.Esc(msg) + "</p>"))
}

func writeFragment[S any](httpserver *HttpServer, w http.ResponseWriter, r *http.Request, frags []fragment[S], s S) {
	f, ok := findFragment(frags, r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	rf, err := renderFragment(httpserver.tmpl, f, s)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Fragment-Key", rf.Key)
	w.Write([]byte(rf.HTML))
}

func writeAction[S any](httpserver *HttpServer, w http.ResponseWriter, r *http.Request, frags []fragment[S], s S, res actionResult) {
	all, err := renderFragments(httpserver.tmpl, frags, s)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res.Fragments = all
	httpjson.WriteSuccessJson(w, res)
}
