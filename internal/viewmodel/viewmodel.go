// Package viewmodel defines what every view-model is handed on view entry
// and the contract the session uses to drive it.
//
// A view-model is built when its view is entered and discarded when another
// view is entered. All of its methods run on the session loop.
package viewmodel

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/okian/skillmonitor/internal/ui/dom"
	"github.com/okian/skillmonitor/internal/ui/fetch"
	"github.com/okian/skillmonitor/internal/ui/notify"
	"github.com/okian/skillmonitor/pkg/logger"
)

// ErrUnknownAction is returned by Handle for actions the view does not offer.
var ErrUnknownAction = errors.New("unknown action")

// Scheduler runs tasks on the session loop later.
type Scheduler interface {
	After(d time.Duration, task func(ctx context.Context)) (stop func())
	Every(d time.Duration, task func(ctx context.Context)) (stop func())
}

// Env bundles the collaborators of one view entry.
type Env struct {
	Doc    *dom.Document
	Sched  Scheduler
	Fetch  *fetch.Fetcher
	Notify *notify.Presenter
	Logger logger.Logger
	// Params are the query parameters of the page request.
	Params url.Values
}

// Model is a view-model.
type Model interface {
	// Start issues the initial loads.
	Start(ctx context.Context)
	// Handle runs a named user action with its form values.
	Handle(ctx context.Context, action string, form url.Values) error
	// Dispose stops timers; late completions are ignored afterwards.
	Dispose()
}

// Checked interprets a posted checkbox state.
func Checked(v string) bool {
	switch v {
	case "true", "on", "1", "checked":
		return true
	default:
		return false
	}
}
