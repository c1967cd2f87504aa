package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/okian/skillmonitor/internal/adapters/mq/worker"
	service "github.com/okian/skillmonitor/internal/app"
	"github.com/okian/skillmonitor/internal/viewmodel"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		kind   error
	}{
		{"unknown session", service.ErrUnknownSession, http.StatusGone, "session_gone", ErrSessionGone},
		{"stopped loop", fmt.Errorf("dispatching x: %w", worker.ErrStopped), http.StatusGone, "session_gone", ErrSessionGone},
		{"unknown action", viewmodel.ErrUnknownAction, http.StatusNotFound, "unknown_action", ErrUnknownAction},
		{"no view", service.ErrNoView, http.StatusConflict, "no_view", ErrNoView},
		{"full queue", fmt.Errorf("dispatching x: %w", worker.ErrRejected), http.StatusTooManyRequests, "backpressure", ErrBackpressure},
		{"session cap", service.ErrTooManySessions, http.StatusServiceUnavailable, "overloaded", ErrOverloaded},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable, "timeout", ErrTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal", ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, kind := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
			assert.ErrorIs(t, kind, tt.kind)
		})
	}
}

func TestWrapKind(t *testing.T) {
	cause := errors.New("cause")
	err := WrapKind("api.action", ErrBadRequest, cause)

	assert.ErrorIs(t, err, ErrBadRequest)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "api.action: bad request: cause", err.Error())
	assert.ErrorIs(t, NewKind("api.action", ErrSessionGone), ErrSessionGone)
}

func TestMiddlewareErrorTypes(t *testing.T) {
	assert.Equal(t, "server_error", getErrorType(http.StatusBadGateway))
	assert.Equal(t, "rate_limit", getErrorType(http.StatusTooManyRequests))
	assert.Equal(t, "not_found", getErrorType(http.StatusNotFound))
	assert.Equal(t, "session_gone", getErrorType(http.StatusGone))
	assert.Equal(t, "client_error", getErrorType(http.StatusConflict))
	assert.Equal(t, "high", getErrorSeverity(http.StatusInternalServerError))
	assert.Equal(t, "medium", getErrorSeverity(http.StatusBadRequest))
	assert.Equal(t, "low", getErrorSeverity(http.StatusOK))
}
