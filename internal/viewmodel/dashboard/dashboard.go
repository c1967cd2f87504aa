// Package dashboard drives the dashboard view: metric tiles, the demand
// chart and the ranked skills table, refreshed on a fixed interval.
package dashboard

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/net/html"

	"github.com/okian/skillmonitor/internal/adapters/backend"
	"github.com/okian/skillmonitor/internal/domain/classify"
	"github.com/okian/skillmonitor/internal/domain/model"
	"github.com/okian/skillmonitor/internal/ui/dom"
	"github.com/okian/skillmonitor/internal/ui/notify"
	"github.com/okian/skillmonitor/internal/ui/page"
	"github.com/okian/skillmonitor/internal/ui/view"
	"github.com/okian/skillmonitor/internal/viewmodel"
	"github.com/okian/skillmonitor/pkg/logger"
	"github.com/okian/skillmonitor/pkg/metrics"
)

// ActionRefresh reloads the snapshot on demand.
const ActionRefresh = "dashboard/refresh"

const (
	defaultPollInterval = 30 * time.Second

	failureMessage   = "Error cargando datos del dashboard"
	loadErrorMessage = "No se pudieron cargar los datos"
	noChartMessage   = "No se pudieron cargar los gráficos"
	emptyMessage     = "No hay datos disponibles"
)

// Model is the dashboard view-model.
type Model struct {
	env      viewmodel.Env
	log      logger.Logger
	interval time.Duration
	now      func() time.Time

	skills, priority, score, users *dom.Region
	chart, table, updated          *dom.Region

	snapshot *model.DashboardSnapshot
	token    uint64
	stopPoll func()
	disposed bool
}

// Option applies a configuration option to the Model.
type Option func(*Model)

// WithPollInterval sets the re-poll period.
func WithPollInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithClock replaces the clock used for the last-updated caption.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// New creates the dashboard view-model over env.Doc.
func New(env viewmodel.Env, opts ...Option) *Model {
	m := &Model{
		env:      env,
		log:      env.Logger,
		interval: defaultPollInterval,
		now:      time.Now,
		skills:   env.Doc.Region(page.IDMetricSkills),
		priority: env.Doc.Region(page.IDMetricPriority),
		score:    env.Doc.Region(page.IDMetricScore),
		users:    env.Doc.Region(page.IDMetricUsers),
		chart:    env.Doc.Region(page.IDChart),
		table:    env.Doc.Region(page.IDSkillsTable),
		updated:  env.Doc.Region(page.IDLastUpdated),
	}
	if m.log == nil {
		m.log = logger.Nop()
	}
	m.log = m.log.Named("dashboard")
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start loads the snapshot and starts the poll.
func (m *Model) Start(ctx context.Context) {
	m.Refresh(ctx)
	if m.env.Sched != nil {
		m.stopPoll = m.env.Sched.Every(m.interval, m.Refresh)
	}
}

// Handle runs a dashboard action.
func (m *Model) Handle(ctx context.Context, action string, _ url.Values) error {
	if action != ActionRefresh {
		return fmt.Errorf("%w: %s", viewmodel.ErrUnknownAction, action)
	}
	m.Refresh(ctx)
	return nil
}

// Dispose stops the poll. Responses still in flight are dropped.
func (m *Model) Dispose() {
	m.disposed = true
	if m.stopPoll != nil {
		m.stopPoll()
		m.stopPoll = nil
	}
}

// Snapshot returns the last stored snapshot, or nil.
func (m *Model) Snapshot() *model.DashboardSnapshot { return m.snapshot }

// Refresh shows the loading state and fetches a new snapshot. A refresh
// issued while another is in flight supersedes it.
func (m *Model) Refresh(ctx context.Context) {
	if m.disposed {
		return
	}
	m.token++
	token := m.token
	m.env.Notify.ShowLoading(m.chart)
	m.showTableLoading()
	m.env.Fetch.Get(backend.PathDashboard, func(ctx context.Context, res backend.Result) {
		m.complete(ctx, token, res)
	})
}

func (m *Model) complete(ctx context.Context, token uint64, res backend.Result) {
	if m.disposed || token != m.token {
		metrics.RecordStaleResponse("dashboard")
		m.log.Debug(ctx, "stale dashboard response dropped", logger.Uint64("token", token))
		return
	}

	if res.Kind == backend.KindOK {
		snap, err := backend.DecodeDashboard(res)
		if err == nil {
			m.snapshot = &snap
			m.render(snap)
			m.updated.SetText("Actualizado a las " + m.now().Format("15:04:05"))
			return
		}
		m.log.Warn(ctx, "dashboard payload rejected", logger.Error(err))
		res.Kind = backend.KindBackend
	}

	// Transport failures already raised the connectivity alert.
	if res.Kind == backend.KindBackend {
		m.env.Notify.ShowAlert(failureMessage, notify.SeverityDanger)
	}
	m.log.Warn(ctx, "dashboard refresh failed", logger.String("kind", res.Kind.String()), logger.String("message", res.Message))
	if m.snapshot != nil {
		m.render(*m.snapshot)
		return
	}
	m.env.Notify.ShowError(m.chart, loadErrorMessage)
	m.table.Replace(messageRow("bi-exclamation-triangle text-warning", loadErrorMessage))
}

func (m *Model) render(snap model.DashboardSnapshot) {
	m.renderMetrics(snap.Metrics)
	m.renderChart(snap.Chart)
	m.renderTable(snap.Rows)
}

func (m *Model) renderMetrics(mt *model.Metrics) {
	if mt == nil {
		return
	}
	m.skills.SetText(model.FormatNumber(mt.TotalSkills))
	m.priority.SetText(model.FormatNumber(mt.HighPriorityCount))
	m.score.SetText(model.FormatPercent(mt.AverageScore))
	m.users.SetText(model.FormatNumber(mt.TotalUsers))
}

func (m *Model) renderChart(c model.Chart) {
	if !c.Present() {
		m.chart.Replace(notify.Placeholder("bi-exclamation-triangle text-warning", noChartMessage))
		return
	}
	spec := page.ChartSpec{Data: c.Data}
	if len(c.Layout) > 0 {
		spec.Layout = c.Layout
	}
	n, err := page.Chart(spec)
	if err != nil {
		m.chart.Replace(notify.Placeholder("bi-exclamation-triangle text-warning", noChartMessage))
		return
	}
	m.chart.Replace(n)
}

func (m *Model) renderTable(rows []model.MatrixRow) {
	if len(rows) == 0 {
		m.table.Replace(messageRow("bi-inbox", emptyMessage))
		return
	}
	m.table.Replace(view.Each(rows, matrixRow)...)
}

func (m *Model) showTableLoading() {
	m.table.Replace(view.El("tr", view.Data("state", "loading"), view.Kids(
		view.El("td", view.Attr("colspan", "4"), view.Class("text-center", "py-4"), view.Kids(
			view.El("div", view.Class("loader-modern")),
			view.El("p", view.Class("text-muted", "mt-2"), view.Text("Cargando...")),
		)),
	)))
}

func messageRow(icon, caption string) *html.Node {
	return view.El("tr", view.Kids(
		view.El("td", view.Attr("colspan", "4"), view.Class("text-center", "py-4"), view.Kids(
			notify.Placeholder(icon, caption),
		)),
	))
}

func matrixRow(_ int, r model.MatrixRow) *html.Node {
	tier := classify.Importance(r.Importance)
	pct := min(max(r.MarketPercentage, 0), 100)
	return view.El("tr", view.Kids(
		view.El("td", view.Kids(view.El("strong", view.Text(r.Skill)))),
		view.El("td", view.Kids(
			view.El("div", view.Class("progress"), view.Kids(
				view.El("div",
					view.Class("progress-bar", "bg-"+tierClass(tier)),
					view.Attr("role", "progressbar"),
					view.Attr("style", "width: "+model.FormatPercent(pct)),
					view.Attr("aria-valuenow", model.FormatNumber(r.MarketPercentage)),
					view.Attr("aria-valuemin", "0"),
					view.Attr("aria-valuemax", "100"),
				),
			)),
			view.El("small", view.Class("text-muted"), view.Text(model.FormatPercent(r.MarketPercentage))),
		)),
		view.El("td", view.Kids(
			view.El("span", view.Class("badge", "badge-"+tierClass(tier)), view.Text(r.Importance)),
		)),
		view.El("td", view.Kids(
			view.El("small", view.Class("text-muted"), view.Text(classify.Of(r.Skill).Label())),
		)),
	))
}

// tierClass is the CSS suffix of a tier; neutral rows use the secondary tone.
func tierClass(t classify.Tier) string {
	if t == classify.TierNeutral {
		return "secondary"
	}
	return string(t)
}
