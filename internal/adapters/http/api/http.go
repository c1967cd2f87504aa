// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	service "github.com/okian/skillmonitor/internal/app"
	"github.com/okian/skillmonitor/internal/ui/dom"
	"github.com/okian/skillmonitor/internal/ui/page"
)

// Cookie names.
const (
	SessionCookie = "sm_session"
	ThemeCookie   = "theme"
)

const themeCookieMaxAge = 365 * 24 * 60 * 60

// Sessions is what the handlers need from the session service.
type Sessions interface {
	Create(ctx context.Context, theme page.Theme) (*service.Session, error)
	Session(id string) (*service.Session, error)
	Enter(ctx context.Context, sess *service.Session, v page.View, params url.Values) (string, error)
	Dispatch(ctx context.Context, sess *service.Session, action string, form url.Values) (service.Update, error)
	Flush(ctx context.Context, sess *service.Session) ([]dom.Patch, error)
}

// Server wires HTTP routes for the web frontend.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	pagesHandler   *PagesHandler
	actionsHandler *ActionsHandler
	eventsHandler  *EventsHandler
}

// NewServer creates a new server with all handlers.
func NewServer(sessions Sessions, statsProvider StatsProvider, opts ...Option) *Server {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		pagesHandler:   NewPagesHandler(sessions, o.logger),
		actionsHandler: NewActionsHandler(sessions, o.logger),
		eventsHandler:  NewEventsHandler(sessions, o.heartbeat, o.logger),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandleStream, "events"))
	mux.HandleFunc("/actions/", MetricsMiddleware(s.actionsHandler.HandleAction, "actions"))
	for _, v := range page.Views {
		mux.HandleFunc(v.Path(), MetricsMiddleware(s.pagesHandler.Handle(v), string(v)))
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// sessionFrom resolves the session named by the request cookie.
func sessionFrom(r *http.Request, sessions Sessions) (*service.Session, error) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return nil, service.ErrUnknownSession
	}
	return sessions.Session(c.Value)
}

func themeFrom(r *http.Request) page.Theme {
	c, err := r.Cookie(ThemeCookie)
	if err != nil {
		return page.ThemeLight
	}
	return page.ParseTheme(c.Value)
}

func setThemeCookie(w http.ResponseWriter, theme page.Theme) {
	http.SetCookie(w, &http.Cookie{
		Name:     ThemeCookie,
		Value:    string(theme),
		Path:     "/",
		MaxAge:   themeCookieMaxAge,
		SameSite: http.SameSiteLaxMode,
	})
}
