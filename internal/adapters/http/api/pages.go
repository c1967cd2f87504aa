package api

import (
	"errors"
	"net/http"

	"github.com/okian/skillmonitor/internal/adapters/mq/worker"
	service "github.com/okian/skillmonitor/internal/app"
	"github.com/okian/skillmonitor/internal/ui/page"
	"github.com/okian/skillmonitor/pkg/logger"
)

// PagesHandler serves the full page of each view.
type PagesHandler struct {
	sessions Sessions
	logger   logger.Logger
}

// NewPagesHandler creates a new pages handler.
func NewPagesHandler(sessions Sessions, log logger.Logger) *PagesHandler {
	return &PagesHandler{sessions: sessions, logger: log}
}

// Handle returns the handler of GET v.Path(). The request's query string is
// handed to the view-model.
func (h *PagesHandler) Handle(v page.View) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "api.page"
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.NotFound(w, r)
			return
		}
		// "/" is the mux fallback for every unknown path.
		if r.URL.Path != v.Path() {
			http.NotFound(w, r)
			return
		}

		sess, err := h.session(w, r, false)
		if err != nil {
			h.fail(w, r, op, err)
			return
		}
		out, err := h.sessions.Enter(r.Context(), sess, v, r.URL.Query())
		if errors.Is(err, worker.ErrStopped) {
			// swept between lookup and entry
			if sess, err = h.session(w, r, true); err == nil {
				out, err = h.sessions.Enter(r.Context(), sess, v, r.URL.Query())
			}
		}
		if err != nil {
			h.fail(w, r, op, err)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(out))
		}
	}
}

// session returns the request's session, opening one when the cookie is
// missing, stale or fresh is set.
func (h *PagesHandler) session(w http.ResponseWriter, r *http.Request, fresh bool) (*service.Session, error) {
	if !fresh {
		if sess, err := sessionFrom(r, h.sessions); err == nil {
			return sess, nil
		}
	}
	sess, err := h.sessions.Create(r.Context(), themeFrom(r))
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	h.logger.Debug(r.Context(), "session opened", logger.String("session", sess.ID()))
	return sess, nil
}

func (h *PagesHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, _, kind := classify(err)
	if status >= http.StatusInternalServerError && !errors.Is(kind, ErrOverloaded) {
		h.logger.Error(r.Context(), "page failed", logger.String("path", r.URL.Path), logger.Error(WrapKind(op, kind, err)))
	}
	if errors.Is(kind, ErrOverloaded) {
		w.Header().Set("Retry-After", "30")
	}
	http.Error(w, http.StatusText(status), status)
}
