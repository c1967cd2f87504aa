package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/skillmonitor/internal/adapters/mq/worker"
	service "github.com/okian/skillmonitor/internal/app"
	"github.com/okian/skillmonitor/pkg/logger"
)

// Event names on the stream.
const (
	EventPatch = "patch"
	EventGone  = "gone"
)

// EventsHandler streams page changes that happen outside of a request:
// poll refreshes, late backend answers and expiring alerts.
type EventsHandler struct {
	sessions  Sessions
	heartbeat time.Duration
	logger    logger.Logger
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(sessions Sessions, heartbeat time.Duration, log logger.Logger) *EventsHandler {
	return &EventsHandler{sessions: sessions, heartbeat: heartbeat, logger: log}
}

// HandleStream handles GET /events requests as a Server-Sent Events stream.
func (h *EventsHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	const op = "api.events"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	sess, err := sessionFrom(r, h.sessions)
	if err != nil {
		writeError(w, http.StatusGone, "session_gone", WrapKind(op, ErrSessionGone, err))
		return
	}

	rc := http.NewResponseController(w)
	// the stream outlives the server's write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		h.logger.Warn(r.Context(), "streaming unsupported", logger.Error(err))
		return
	}

	ctx := r.Context()
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	if !h.push(ctx, w, rc, sess) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-sess.Done():
			h.gone(w, rc)
			return
		case <-sess.Changed():
			if !h.push(ctx, w, rc, sess) {
				return
			}
		case <-ticker.C:
			if _, err := h.sessions.Session(sess.ID()); err != nil {
				h.gone(w, rc)
				return
			}
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

// push sends the session's pending patches. It reports whether the stream
// should go on.
func (h *EventsHandler) push(ctx context.Context, w http.ResponseWriter, rc *http.ResponseController, sess *service.Session) bool {
	patches, err := h.sessions.Flush(ctx, sess)
	if err != nil {
		if errors.Is(err, worker.ErrStopped) {
			h.gone(w, rc)
		}
		return false
	}
	if len(patches) == 0 {
		return true
	}
	data, err := json.Marshal(service.Update{Patches: patches})
	if err != nil {
		h.logger.Error(ctx, "failed to encode patches", logger.Error(err))
		return false
	}
	if err := writeEvent(w, EventPatch, data); err != nil {
		return false
	}
	return rc.Flush() == nil
}

func (h *EventsHandler) gone(w http.ResponseWriter, rc *http.ResponseController) {
	if writeEvent(w, EventGone, []byte("{}")) == nil {
		_ = rc.Flush()
	}
}

func writeEvent(w http.ResponseWriter, name string, data []byte) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
