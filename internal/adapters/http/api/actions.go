package api

import (
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/okian/skillmonitor/pkg/logger"
)

const (
	actionsPrefix = "/actions/"
	maxFormBytes  = 1 << 20
)

// ActionsHandler runs view actions posted by the page script.
type ActionsHandler struct {
	sessions Sessions
	logger   logger.Logger
}

// NewActionsHandler creates a new actions handler.
func NewActionsHandler(sessions Sessions, log logger.Logger) *ActionsHandler {
	return &ActionsHandler{sessions: sessions, logger: log}
}

// HandleAction handles POST /actions/{action} requests and answers the
// patches the action produced.
func (h *ActionsHandler) HandleAction(w http.ResponseWriter, r *http.Request) {
	const op = "api.action"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	action := strings.Trim(strings.TrimPrefix(r.URL.Path, actionsPrefix), "/")
	if action == "" {
		writeError(w, http.StatusNotFound, "unknown_action", NewKind(op, ErrUnknownAction))
		return
	}

	sess, err := sessionFrom(r, h.sessions)
	if err != nil {
		writeError(w, http.StatusGone, "session_gone", WrapKind(op, ErrSessionGone, err))
		return
	}
	form, err := parseForm(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	update, err := h.sessions.Dispatch(r.Context(), sess, action, form)
	if err != nil {
		status, code, kind := classify(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error(r.Context(), "action failed",
				logger.String("action", action),
				logger.String("session", sess.ID()),
				logger.Error(err))
		}
		writeError(w, status, code, WrapKind(op, kind, err))
		return
	}
	if update.Theme != "" {
		setThemeCookie(w, update.Theme)
	}
	writeJSON(w, http.StatusOK, update)
}

// parseForm reads an urlencoded or multipart body.
func parseForm(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxFormBytes); err != nil {
			return nil, err
		}
		return r.PostForm, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return r.PostForm, nil
}
