// Package fetch binds the backend client to one session loop.
//
// Exchanges run off the loop; their Results are handed to the callback on
// the loop. A transport failure raises the generic connectivity alert before
// the callback runs.
package fetch

import (
	"context"

	"github.com/okian/skillmonitor/internal/adapters/backend"
	"github.com/okian/skillmonitor/internal/adapters/mq/worker"
	"github.com/okian/skillmonitor/internal/ui/notify"
)

// ConnectionErrorMessage is the alert shown on every transport failure.
const ConnectionErrorMessage = "Error de conexión con el servidor"

// Client is the backend facade.
type Client interface {
	Get(ctx context.Context, path string) backend.Result
	Post(ctx context.Context, path string, body any) backend.Result
}

// Alerter shows an alert.
type Alerter interface {
	ShowAlert(message string, sev notify.Severity) string
}

// Callback receives a Result on the session loop.
type Callback func(ctx context.Context, res backend.Result)

// Fetcher issues backend calls on behalf of one view.
type Fetcher struct {
	client Client
	loop   *worker.Loop
	alerts Alerter
}

// New creates a Fetcher.
func New(client Client, loop *worker.Loop, alerts Alerter) *Fetcher {
	return &Fetcher{client: client, loop: loop, alerts: alerts}
}

// Get fetches path and calls then with the Result.
func (f *Fetcher) Get(path string, then Callback) {
	worker.Await(f.loop, func(ctx context.Context) backend.Result {
		return f.client.Get(ctx, path)
	}, f.deliver(then))
}

// Post sends body to path and calls then with the Result.
func (f *Fetcher) Post(path string, body any, then Callback) {
	worker.Await(f.loop, func(ctx context.Context) backend.Result {
		return f.client.Post(ctx, path, body)
	}, f.deliver(then))
}

func (f *Fetcher) deliver(then Callback) func(ctx context.Context, res backend.Result) {
	return func(ctx context.Context, res backend.Result) {
		if res.Kind == backend.KindTransport && f.alerts != nil {
			f.alerts.ShowAlert(ConnectionErrorMessage, notify.SeverityDanger)
		}
		if then != nil {
			then(ctx, res)
		}
	}
}
