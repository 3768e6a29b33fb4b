package portalhttp

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/programme-lv/contest-portal/auth"
	"github.com/programme-lv/contest-portal/conf"
	"github.com/programme-lv/contest-portal/httpjson"
	"github.com/programme-lv/contest-portal/logger"
	"github.com/programme-lv/contest-portal/srvcerror"
	"github.com/programme-lv/contest-portal/tracing"
)

type sessionKey struct{}

func sessionFrom(ctx context.Context) *session {
	s, _ := ctx.Value(sessionKey{}).(*session)
	return s
}

// sessionMiddleware resolves the session named by the token claims. A
// browser without a valid token gets a new session and cookie; a valid
// token whose session is gone (restart, expiry) gets an empty session under
// the same id.
func (httpserver *HttpServer) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
			id = claims.SessionID
		}
		fresh := id == ""
		if fresh {
			id = uuid.NewString()
		}

		s, err := httpserver.sessions.getOrCreate(id)
		if err != nil {
			httpjson.HandleError(httpserver.logger, w, srvcerror.ErrInternalSE().SetDebug(err))
			return
		}
		if fresh {
			if err := httpserver.issueCookie(w, id); err != nil {
				httpjson.HandleError(httpserver.logger, w, srvcerror.ErrInternalSE().SetDebug(err))
				return
			}
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, s)
		ctx = logger.WithLogger(ctx, s.logger)
		if reqID := middleware.GetReqID(ctx); reqID != "" {
			ctx = logger.WithRequestID(ctx, reqID)
		}
		if traceID := tracing.TagSession(ctx, id); traceID != "" {
			ctx = logger.WithLogger(ctx, logger.FromContext(ctx).With("trace_id", traceID))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (httpserver *HttpServer) issueCookie(w http.ResponseWriter, id string) error {
	sid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	token, err := auth.GenerateJWT(sid, SessionTTL, httpserver.cfg.JWTKey)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   httpserver.cfg.Env != conf.EnvDev,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// requireAdmin sends browsers that never logged in to the login page and
// answers API calls with 401.
func (httpserver *HttpServer) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionFrom(r.Context()).isAdmin() {
			next.ServeHTTP(w, r)
			return
		}
		if r.Method == http.MethodGet && !isFragmentRequest(r) {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		httpjson.HandleError(logger.FromContext(r.Context()), w, srvcerror.ErrUnauthorized())
	})
}

// requireParticipant does the same for the contest pages; unregistered
// browsers go to registration.
func (httpserver *HttpServer) requireParticipant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sessionFrom(r.Context()).isParticipant() {
			next.ServeHTTP(w, r)
			return
		}
		if r.Method == http.MethodGet && !isFragmentRequest(r) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		httpjson.HandleError(logger.FromContext(r.Context()), w, srvcerror.ErrSessionNotFound())
	})
}

// isFragmentRequest tells script requests apart from page navigations.
func isFragmentRequest(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "portal" || r.Header.Get("Accept") == "text/event-stream"
}
