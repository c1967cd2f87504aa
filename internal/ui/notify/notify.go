// Package notify shows loading indicators, error placeholders and the single
// dismissible alert of a page.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/okian/skillmonitor/internal/ui/dom"
	"github.com/okian/skillmonitor/internal/ui/view"
	"github.com/okian/skillmonitor/pkg/metrics"
)

const defaultAlertTTL = 5 * time.Second

// Severity controls an alert's visual class.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
	SeveritySuccess Severity = "success"
)

// ParseSeverity maps s to a known severity; anything unknown is info.
func ParseSeverity(s string) Severity {
	switch sev := Severity(s); sev {
	case SeverityInfo, SeverityWarning, SeverityDanger, SeveritySuccess:
		return sev
	default:
		return SeverityInfo
	}
}

// Scheduler runs a task on the session loop after a delay.
type Scheduler interface {
	After(d time.Duration, task func(ctx context.Context)) (stop func())
}

// Presenter renders transient status into a page. It must only be used from
// the session loop.
type Presenter struct {
	alerts *dom.Region
	sched  Scheduler
	ttl    time.Duration

	current string
	stop    func()
}

// Option applies a configuration option to the Presenter.
type Option func(*Presenter)

// WithAlertTTL sets how long an alert stays up.
func WithAlertTTL(d time.Duration) Option {
	return func(p *Presenter) {
		if d > 0 {
			p.ttl = d
		}
	}
}

// New creates a Presenter writing alerts into the alerts region.
func New(alerts *dom.Region, sched Scheduler, opts ...Option) *Presenter {
	p := &Presenter{
		alerts: alerts,
		sched:  sched,
		ttl:    defaultAlertTTL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ShowLoading replaces the region's content with a loading indicator.
func (p *Presenter) ShowLoading(r *dom.Region) {
	r.Replace(view.El("div", view.Class("text-center", "py-4"), view.Data("state", "loading"), view.Kids(
		view.El("div", view.Class("loader-modern")),
		view.El("p", view.Class("text-muted", "mt-2"), view.Text("Cargando...")),
	)))
}

// ShowError renders the terminal failed state of a region.
func (p *Presenter) ShowError(r *dom.Region, message string) {
	r.Replace(Placeholder("bi-exclamation-triangle text-warning", message))
}

// Placeholder is a centered icon with a muted caption, used for error and
// empty states.
func Placeholder(icon, caption string) *html.Node {
	return view.El("div", view.Class("text-center", "py-4"), view.Kids(
		view.El("i", view.Class("bi", icon, "display-4")),
		view.El("p", view.Class("text-muted", "mt-2"), view.Text(caption)),
	))
}

// ShowAlert puts message in the alert slot, replacing any alert already
// shown, and schedules its removal. It returns the alert id.
func (p *Presenter) ShowAlert(message string, sev Severity) string {
	sev = ParseSeverity(string(sev))
	p.cancelTimer()

	id := "alert-" + uuid.NewString()
	p.current = id
	p.alerts.Replace(view.El("div",
		view.ID(id),
		view.Class("alert", "alert-"+string(sev), "alert-dismissible", "fade", "show"),
		view.Attr("role", "alert"),
		view.Text(message),
		view.Kids(view.El("button",
			view.Class("btn-close"),
			view.Attr("type", "button"),
			view.Attr("aria-label", "Cerrar"),
			view.Data("action", "alerts/dismiss"),
			view.Data("id", id),
		)),
	))
	metrics.RecordAlert(string(sev))

	if p.sched != nil {
		p.stop = p.sched.After(p.ttl, func(context.Context) { p.Dismiss(id) })
	}
	return id
}

// Dismiss removes the alert with the given id if it is still the one shown.
func (p *Presenter) Dismiss(id string) bool {
	if id == "" || id != p.current {
		return false
	}
	p.cancelTimer()
	p.current = ""
	p.alerts.Replace()
	return true
}

// Current returns the id of the alert on screen, or "".
func (p *Presenter) Current() string { return p.current }

// Close cancels a pending auto-dismiss.
func (p *Presenter) Close() { p.cancelTimer() }

func (p *Presenter) cancelTimer() {
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
}
