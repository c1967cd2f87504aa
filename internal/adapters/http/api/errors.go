package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/skillmonitor/internal/adapters/mq/worker"
	service "github.com/okian/skillmonitor/internal/app"
	"github.com/okian/skillmonitor/internal/viewmodel"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrSessionGone   = errors.New("session gone")
	ErrUnknownAction = errors.New("unknown action")
	ErrNoView        = errors.New("no view entered")
	ErrBackpressure  = errors.New("backpressure")
	ErrOverloaded    = errors.New("too many sessions")
	ErrTimeout       = errors.New("timed out")
	ErrInternal      = errors.New("internal error")
)

// WrapKind tags err with the operation and the API error kind.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// NewKind tags the operation with an API error kind.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// classify maps a service error to a status and an API error kind.
func classify(err error) (int, string, error) {
	switch {
	case errors.Is(err, service.ErrUnknownSession), errors.Is(err, worker.ErrStopped):
		return http.StatusGone, "session_gone", ErrSessionGone
	case errors.Is(err, viewmodel.ErrUnknownAction):
		return http.StatusNotFound, "unknown_action", ErrUnknownAction
	case errors.Is(err, service.ErrNoView):
		return http.StatusConflict, "no_view", ErrNoView
	case errors.Is(err, worker.ErrRejected):
		return http.StatusTooManyRequests, "backpressure", ErrBackpressure
	case errors.Is(err, service.ErrTooManySessions):
		return http.StatusServiceUnavailable, "overloaded", ErrOverloaded
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "timeout", ErrTimeout
	default:
		return http.StatusInternalServerError, "internal", ErrInternal
	}
}
