// Package portalhttp serves the participant and admin pages to browsers and
// drives one set of page controllers per browser session.
package portalhttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/klauspost/compress/gzhttp"
	"github.com/programme-lv/contest-portal/admin"
	"github.com/programme-lv/contest-portal/auth"
	"github.com/programme-lv/contest-portal/conf"
	"github.com/programme-lv/contest-portal/contestapi"
	"github.com/programme-lv/contest-portal/tracing"
)

type HttpServer struct {
	cfg      conf.Config
	router   *chi.Mux
	logger   *slog.Logger
	tmpl     *renderer
	sessions *sessionStore
	stats    *statsLogger
	server   *http.Server

	baseCtx  context.Context
	cancel   context.CancelFunc
	now      func() time.Time
	location *time.Location
}

type Option func(*HttpServer)

// WithClock replaces the wall clock of the contest pages.
func WithClock(now func() time.Time) Option {
	return func(s *HttpServer) { s.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(s *HttpServer) { s.location = loc }
}

func NewHttpServer(cfg conf.Config, version string, opts ...Option) (*HttpServer, error) {
	router := chi.NewRouter()

	reqLogger := httplog.NewLogger("contest-portal", httplog.Options{
		LogLevel:         cfg.LogLevel,
		JSON:             cfg.Env != conf.EnvDev,
		Concise:          true,
		RequestHeaders:   cfg.Env == conf.EnvDev,
		MessageFieldName: "message",
		Tags: map[string]string{
			"version": version,
			"env":     cfg.Env,
		},
	})

	baseCtx, cancel := context.WithCancel(context.Background())
	httpserver := &HttpServer{
		cfg:      cfg,
		router:   router,
		logger:   reqLogger.Logger,
		baseCtx:  baseCtx,
		cancel:   cancel,
		now:      time.Now,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(httpserver)
	}
	httpserver.tmpl = &renderer{tmpl: parseTemplates(template.FuncMap{
		"trusted":    func(s string) template.HTML { return template.HTML(s) },
		"confirmEnd": admin.ConfirmEnd,
		"json": func(v any) (string, error) {
			b, err := json.Marshal(v)
			return string(b), err
		},
	})}
	httpserver.sessions = newSessionStore(SessionTTL, httpserver.newSession)
	httpserver.stats = newStatsLogger(baseCtx, httpserver.logger, httpserver.sessions.count)

	gzip, err := gzhttp.NewWrapper(gzhttp.ExceptContentTypes([]string{"text/event-stream"}))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create gzip wrapper failed: %w", err)
	}

	router.Use(middleware.RequestID)
	router.Use(tracing.NewTracingMiddleware("contest-portal").Middleware)
	router.Use(httplog.RequestLogger(reqLogger))
	router.Use(func(next http.Handler) http.Handler { return gzip(next) })
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           3000,
		}))
	}
	router.Use(httpserver.stats.middleware)

	httpserver.routes()

	return httpserver, nil
}

func (httpserver *HttpServer) newSession(id string) (*session, error) {
	sessLogger := httpserver.logger.With("session_id", id)
	client, err := contestapi.New(httpserver.cfg.BackendURL,
		contestapi.WithTimeout(httpserver.cfg.HTTPTimeout),
		contestapi.WithLogger(sessLogger))
	if err != nil {
		return nil, err
	}
	return &session{
		id:     id,
		client: client,
		logger: sessLogger,
		pages:  make(map[pageKind]livePage),
	}, nil
}

func (httpserver *HttpServer) Handler() http.Handler {
	return httpserver.router
}

func (httpserver *HttpServer) Start(address string) error {
	httpserver.server = &http.Server{
		Addr:              address,
		Handler:           httpserver.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	httpserver.logger.Info("portal listening", "addr", address, "backend", httpserver.cfg.BackendURL)
	err := httpserver.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests, closes open streams and stops every
// page controller.
func (httpserver *HttpServer) Shutdown(ctx context.Context) error {
	httpserver.cancel()
	var err error
	if httpserver.server != nil {
		err = httpserver.server.Shutdown(ctx)
	}
	httpserver.sessions.closeAll(ctx)
	return err
}

func (httpserver *HttpServer) routes() {
	r := httpserver.router

	r.Get("/healthz", httpserver.healthz)
	r.Get("/static/*", httpserver.serveStatic)

	r.Group(func(r chi.Router) {
		r.Use(auth.GetJwtAuthMiddleware(httpserver.cfg.JWTKey))
		r.Use(httpserver.sessionMiddleware)

		r.Get("/", httpserver.registerPage)
		r.Get("/register/status", httpserver.registerFragment)
		r.Get("/register/stream", httpserver.registerStream)
		r.Post("/register", httpserver.registerSubmit)
		r.Post("/register/enter", httpserver.registerEnter)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/login", httpserver.loginPage)
			r.Get("/login/error", httpserver.loginFragment)
			r.Post("/login", httpserver.loginSubmit)
			r.Get("/logout", httpserver.logout)

			r.Group(func(r chi.Router) {
				r.Use(httpserver.requireAdmin)
				r.Get("/", httpserver.adminPage)
				r.Get("/fragments/{name}", httpserver.adminFragment)
				r.Get("/stream", httpserver.adminStream)
				r.Post("/actions/refresh", httpserver.adminRefresh)
				r.Post("/actions/start", httpserver.adminStart)
				r.Post("/actions/stop", httpserver.adminStop)
				r.Post("/actions/end/{id}", httpserver.adminEnd)
				r.Post("/actions/view/{id}", httpserver.adminView)
				r.Post("/actions/close-modal", httpserver.adminCloseModal)
			})
		})

		r.Route("/contest", func(r chi.Router) {
			r.Use(httpserver.requireParticipant)
			r.Get("/", httpserver.contestPage)
			r.Get("/fragments/{name}", httpserver.contestFragment)
			r.Get("/stream", httpserver.contestStream)
			r.Post("/select/{id}", httpserver.contestSelect)
			r.Post("/code", httpserver.contestCode)
			r.Post("/language", httpserver.contestLanguage)
			r.Post("/run", httpserver.contestRun)
			r.Post("/submit", httpserver.contestSubmit)
			r.Post("/autosave", httpserver.contestAutosave)
			r.Post("/end-modal", httpserver.contestShowEnd)
			r.Post("/end-modal/close", httpserver.contestCloseEnd)
			r.Post("/end", httpserver.contestEnd)
			r.Post("/force-end", httpserver.contestForceEnd)
			r.Post("/events", httpserver.contestEvent)
		})

		r.Get("/ended", httpserver.endedPage)
	})
}
