// Package market drives the market analysis view: the demand share of each
// skill as a ranked chart and table.
package market

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

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

// ActionRefresh reloads the analysis.
const ActionRefresh = "market/refresh"

const (
	failureMessage   = "Error cargando el análisis de mercado"
	loadErrorMessage = "No se pudieron cargar los datos"
	emptyMessage     = "No hay datos de mercado disponibles"
	barColor         = "#6366f1"
)

// Model is the market analysis view-model.
type Model struct {
	env viewmodel.Env
	log logger.Logger

	source, chart, table *dom.Region

	analysis *model.MarketAnalysis
	token    uint64
	disposed bool
}

// New creates the market view-model over env.Doc.
func New(env viewmodel.Env) *Model {
	m := &Model{
		env:    env,
		log:    env.Logger,
		source: env.Doc.Region(page.IDMarketSource),
		chart:  env.Doc.Region(page.IDMarketChart),
		table:  env.Doc.Region(page.IDMarketTable),
	}
	if m.log == nil {
		m.log = logger.Nop()
	}
	m.log = m.log.Named("market")
	return m
}

// Start loads the analysis once.
func (m *Model) Start(ctx context.Context) { m.Refresh(ctx) }

// Handle runs a market action.
func (m *Model) Handle(ctx context.Context, action string, _ url.Values) error {
	if action != ActionRefresh {
		return fmt.Errorf("%w: %s", viewmodel.ErrUnknownAction, action)
	}
	m.Refresh(ctx)
	return nil
}

// Dispose marks the view gone; a response still in flight is dropped.
func (m *Model) Dispose() { m.disposed = true }

// Analysis returns the last good analysis, or nil.
func (m *Model) Analysis() *model.MarketAnalysis { return m.analysis }

// Refresh fetches the analysis. A newer refresh supersedes one in flight.
func (m *Model) Refresh(_ context.Context) {
	if m.disposed {
		return
	}
	m.token++
	token := m.token
	m.env.Notify.ShowLoading(m.chart)
	m.env.Fetch.Get(backend.PathMarket, func(ctx context.Context, res backend.Result) {
		m.complete(ctx, token, res)
	})
}

func (m *Model) complete(ctx context.Context, token uint64, res backend.Result) {
	if m.disposed || token != m.token {
		metrics.RecordStaleResponse("market")
		return
	}

	if res.Kind == backend.KindOK {
		a, err := backend.DecodeMarket(res)
		if err == nil {
			m.analysis = &a
			m.render(a)
			return
		}
		m.log.Warn(ctx, "market payload rejected", logger.Error(err))
		res.Kind = backend.KindBackend
	}

	if res.Kind == backend.KindBackend {
		m.env.Notify.ShowAlert(failureMessage, notify.SeverityDanger)
	}
	m.log.Warn(ctx, "market refresh failed", logger.String("kind", res.Kind.String()))
	if m.analysis != nil {
		m.render(*m.analysis)
		return
	}
	m.env.Notify.ShowError(m.chart, loadErrorMessage)
	m.table.Replace(messageRow("bi-exclamation-triangle text-warning", loadErrorMessage))
}

func (m *Model) render(a model.MarketAnalysis) {
	if a.Source != "" {
		m.source.SetText("Fuente: " + a.Source)
		m.source.Show()
	} else {
		m.source.Hide()
	}

	if len(a.Shares) == 0 {
		m.chart.Replace(notify.Placeholder("bi-inbox", emptyMessage))
		m.table.Replace(messageRow("bi-inbox", emptyMessage))
		return
	}
	n, err := page.Chart(DemandChart(a))
	if err != nil {
		m.chart.Replace(notify.Placeholder("bi-exclamation-triangle text-warning", loadErrorMessage))
	} else {
		m.chart.Replace(n)
	}
	m.table.Replace(view.Each(a.Shares, shareRow)...)
}

type demandTrace struct {
	Type        string    `json:"type"`
	Orientation string    `json:"orientation"`
	X           []float64 `json:"x"`
	Y           []string  `json:"y"`
	Marker      struct {
		Color string `json:"color"`
	} `json:"marker"`
}

// DemandChart is the horizontal bar chart of a, highest share on top.
func DemandChart(a model.MarketAnalysis) page.ChartSpec {
	t := demandTrace{Type: "bar", Orientation: "h"}
	t.Marker.Color = barColor
	for _, s := range a.Shares {
		t.X = append(t.X, s.Percentage)
		t.Y = append(t.Y, s.Skill)
	}
	return page.ChartSpec{
		Data: []demandTrace{t},
		Layout: map[string]any{
			"title":      "📈 Demanda del Mercado por Habilidad",
			"xaxis":      map[string]any{"title": "Porcentaje de ofertas (%)", "range": []int{0, 100}},
			"yaxis":      map[string]any{"autorange": "reversed", "automargin": true},
			"showlegend": false,
			"height":     max(300, 40*len(a.Shares)),
		},
	}
}

func shareRow(i int, s model.MarketShare) *html.Node {
	pct := min(max(s.Percentage, 0), 100)
	return view.El("tr", view.Kids(
		view.El("td", view.Text(strconv.Itoa(i+1))),
		view.El("td", view.Kids(view.El("strong", view.Text(s.Skill)))),
		view.El("td", view.Kids(
			view.El("div", view.Class("progress"), view.Kids(
				view.El("div",
					view.Class("progress-bar"),
					view.Attr("role", "progressbar"),
					view.Attr("style", "width: "+model.FormatPercent(pct)),
				),
			)),
			view.El("small", view.Class("text-muted"), view.Text(model.FormatPercent(s.Percentage))),
		)),
		view.El("td", view.Kids(
			view.El("small", view.Class("text-muted"), view.Text(classify.Of(s.Skill).Label())),
		)),
	))
}

func messageRow(icon, caption string) *html.Node {
	return view.El("tr", view.Kids(
		view.El("td", view.Attr("colspan", "4"), view.Class("text-center", "py-4"), view.Kids(
			notify.Placeholder(icon, caption),
		)),
	))
}
