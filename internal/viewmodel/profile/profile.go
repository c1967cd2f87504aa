// Package profile drives the per-user gap report: user selector, header,
// metric cards, skill chips, the gap chart and the action plan.
package profile

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"golang.org/x/net/html"

	"github.com/okian/skillmonitor/internal/adapters/backend"
	"github.com/okian/skillmonitor/internal/domain/model"
	"github.com/okian/skillmonitor/internal/domain/plan"
	"github.com/okian/skillmonitor/internal/ui/dom"
	"github.com/okian/skillmonitor/internal/ui/page"
	"github.com/okian/skillmonitor/internal/ui/view"
	"github.com/okian/skillmonitor/internal/viewmodel"
	"github.com/okian/skillmonitor/pkg/logger"
)

// ActionSelect switches the profile on display.
const ActionSelect = "profile/select"

// ParamUser preselects a user on view entry.
const ParamUser = "user"

const (
	colorCurrent     = "#10b981"
	colorRecommended = "#6366f1"
	chartFailed      = "No se pudo generar el gráfico"
)

// Model is the profile view-model.
type Model struct {
	env viewmodel.Env
	log logger.Logger

	selector, empty, content    *dom.Region
	name, experience, objective *dom.Region
	fit, metrics                *dom.Region
	current, recommended        *dom.Region
	chart, plan                 *dom.Region

	directory model.UserDirectory
	selected  string
	disposed  bool
}

// New creates the profile view-model over env.Doc.
func New(env viewmodel.Env) *Model {
	d := env.Doc
	m := &Model{
		env:         env,
		log:         env.Logger,
		selector:    d.Region(page.IDUserSelector),
		empty:       d.Region(page.IDEmptyState),
		content:     d.Region(page.IDProfileContent),
		name:        d.Region(page.IDUserName),
		experience:  d.Region(page.IDUserExperience),
		objective:   d.Region(page.IDUserObjective),
		fit:         d.Region(page.IDUserFit),
		metrics:     d.Region(page.IDUserMetrics),
		current:     d.Region(page.IDCurrentSkills),
		recommended: d.Region(page.IDRecommendedSkill),
		chart:       d.Region(page.IDGapChart),
		plan:        d.Region(page.IDActionPlan),
	}
	if m.log == nil {
		m.log = logger.Nop()
	}
	m.log = m.log.Named("profile")
	return m
}

// Start loads the directory, then selects the user named in the query.
func (m *Model) Start(ctx context.Context) {
	m.LoadDirectory(ctx, m.env.Params.Get(ParamUser))
}

// Handle runs a profile action.
func (m *Model) Handle(ctx context.Context, action string, form url.Values) error {
	if action != ActionSelect {
		return fmt.Errorf("%w: %s", viewmodel.ErrUnknownAction, action)
	}
	m.Select(ctx, form.Get(page.FieldUserID))
	return nil
}

// Dispose marks the view gone; a directory still in flight is dropped.
func (m *Model) Dispose() { m.disposed = true }

// Selected returns the id on display, or "".
func (m *Model) Selected() string { return m.selected }

// LoadDirectory fetches the users. An empty directory or any failure shows
// the empty state.
func (m *Model) LoadDirectory(_ context.Context, preselect string) {
	m.env.Fetch.Get(backend.PathUsers, func(ctx context.Context, res backend.Result) {
		if m.disposed {
			return
		}
		dir, err := backend.DecodeDirectory(res)
		if err != nil || len(dir) == 0 {
			if err != nil {
				m.log.Debug(ctx, "user directory unavailable", logger.Error(err))
			}
			m.directory = nil
			m.content.Hide()
			m.empty.Show()
			return
		}
		m.directory = dir
		m.empty.Hide()
		m.renderSelector()
		if preselect != "" {
			m.Select(ctx, preselect)
		}
	})
}

func (m *Model) renderSelector() {
	opts := []*html.Node{view.El("option", view.Attr("value", ""), view.Text("Selecciona un usuario..."))}
	for _, id := range m.directory.IDs() {
		u := m.directory[id]
		opts = append(opts, view.El("option",
			view.Attr("value", id),
			view.If(id == m.selected, view.Attr("selected", "")),
			view.Text(fmt.Sprintf("%s (%s)", u.Name, id)),
		))
	}
	m.selector.Replace(opts...)
}

// Select shows the profile of id. An unknown or empty id hides the detail.
func (m *Model) Select(ctx context.Context, id string) {
	u, ok := m.directory[id]
	if id == "" || !ok {
		m.selected = ""
		m.content.Hide()
		if m.directory != nil {
			m.renderSelector()
		}
		return
	}
	m.selected = id
	m.renderSelector()
	m.content.Show()
	m.renderHeader(u)
	m.renderMetrics(u)
	m.renderSkills(u)
	m.renderChart(ctx, u)
	m.renderPlan(plan.For(u))
}

func (m *Model) renderHeader(u model.UserProfile) {
	m.name.SetText(u.Name)
	m.experience.SetText(u.ExperienceLevel)
	m.objective.SetText(u.Objective)
	m.fit.SetText(model.FormatPercent(u.FitScore))
}

func (m *Model) renderMetrics(u model.UserProfile) {
	m.metrics.Replace(
		page.MetricCard("bi-check-circle", strconv.Itoa(len(u.CurrentSkills)), "Habilidades Actuales", "success"),
		page.MetricCard("bi-lightbulb", strconv.Itoa(len(u.RecommendedSkills)), "Recomendaciones", "primary"),
		page.MetricCard("bi-graph-up", model.FormatPercent(u.FitScore), "Adecuación", "info"),
		page.MetricCard("bi-exclamation-triangle", u.PrimaryGap, "Brecha Principal", "warning"),
	)
}

func (m *Model) renderSkills(u model.UserProfile) {
	m.current.Replace(view.Each(u.CurrentSkills, func(_ int, s string) *html.Node {
		return page.SkillChip(s, page.ChipCurrent)
	})...)
	m.recommended.Replace(view.Each(u.RecommendedSkills, func(_ int, s string) *html.Node {
		return page.SkillChip(s, page.ChipRecommended)
	})...)
}

type gapTrace struct {
	X           []int          `json:"x"`
	Y           []string       `json:"y"`
	Text        []string       `json:"text"`
	Type        string         `json:"type"`
	Orientation string         `json:"orientation"`
	Marker      map[string]any `json:"marker"`
}

// GapChart is the chart of u: one horizontal bar per skill, current skills
// first, colored by group.
func GapChart(u model.UserProfile) page.ChartSpec {
	n := len(u.CurrentSkills) + len(u.RecommendedSkills)
	trace := gapTrace{
		X:           make([]int, 0, n),
		Y:           make([]string, 0, n),
		Text:        make([]string, 0, n),
		Type:        "bar",
		Orientation: "h",
	}
	colors := make([]string, 0, n)
	add := func(skills []string, kind, color string) {
		for _, s := range skills {
			trace.X = append(trace.X, 1)
			trace.Y = append(trace.Y, s)
			trace.Text = append(trace.Text, kind)
			colors = append(colors, color)
		}
	}
	add(u.CurrentSkills, "Actual", colorCurrent)
	add(u.RecommendedSkills, "Recomendada", colorRecommended)
	trace.Marker = map[string]any{"color": colors}

	return page.ChartSpec{
		Data: []gapTrace{trace},
		Layout: map[string]any{
			"title":      "Análisis de Brechas de Habilidades",
			"xaxis":      map[string]any{"visible": false},
			"yaxis":      map[string]any{"title": "Habilidades", "automargin": true},
			"showlegend": false,
			"height":     400,
			"margin":     map[string]any{"l": 150},
		},
	}
}

func (m *Model) renderChart(ctx context.Context, u model.UserProfile) {
	n, err := page.Chart(GapChart(u))
	if err != nil {
		m.log.Warn(ctx, "gap chart not rendered", logger.Error(err))
		m.chart.SetText(chartFailed)
		return
	}
	m.chart.Replace(n)
}

func (m *Model) renderPlan(p plan.Plan) {
	phase := func(ph plan.Phase, tone, icon string) *html.Node {
		return view.El("div", view.Class("col-md-6", "mb-4"), view.Kids(
			view.El("div", view.Class("card-modern", "h-100", "plan-phase"), view.Kids(
				view.El("div", view.Class("card-header", "bg-"+tone), view.Kids(
					view.El("h3", view.Class("h6", "mb-0"), view.Text(ph.Title)),
				)),
				view.El("div", view.Class("card-body"), view.Kids(
					view.El("ul", view.Class("list-unstyled"), view.Kids(view.Each(ph.Skills, func(_ int, s string) *html.Node {
						return view.El("li", view.Class("mb-2"), view.Kids(
							view.El("i", view.Class("bi", icon, "me-2")),
							view.El("strong", view.Text(s)),
							view.El("br"),
							view.El("small", view.Class("text-muted"), view.Text(ph.Hint)),
						))
					})...)),
				)),
			)),
		))
	}

	m.plan.Replace(
		view.El("div", view.Class("row"), view.Kids(
			phase(p.Immediate, "primary", "bi-check-circle"),
			phase(p.MidTerm, "success", "bi-lightbulb"),
		)),
		view.El("div", view.Class("card-modern", "mt-3", "plan-advice"), view.Kids(
			view.El("div", view.Class("card-header", "bg-info"), view.Kids(
				view.El("h3", view.Class("h6", "mb-0"), view.Text("💡 Recomendaciones Personalizadas")),
			)),
			view.El("div", view.Class("card-body"), view.Kids(
				view.El("p", view.Text(p.Intro)),
				view.El("ol", view.Kids(view.Each(p.Steps, func(_ int, s string) *html.Node {
					return view.El("li", view.Text(s))
				})...)),
			)),
		)),
	)
}
