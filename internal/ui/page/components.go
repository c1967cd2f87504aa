package page

import (
	"encoding/json"

	"golang.org/x/net/html"

	"github.com/okian/skillmonitor/internal/ui/view"
)

// ChipKind distinguishes skill chips visually.
type ChipKind string

const (
	ChipDefault     ChipKind = ""
	ChipCurrent     ChipKind = "actual"
	ChipRecommended ChipKind = "recomendada"
)

// SkillChip renders one skill name as a tag.
func SkillChip(skill string, kind ChipKind) *html.Node {
	return view.El("span",
		view.Class("skill-chip"),
		view.If(kind != ChipDefault, view.Class(string(kind))),
		view.Kids(view.El("i", view.Class("bi", "bi-tag"))),
		view.Text(" "+skill),
	)
}

// MetricCard renders a labelled figure.
func MetricCard(icon, value, label, tone string) *html.Node {
	return view.El("div", view.Class("metric-card", "tone-"+tone), view.Kids(
		view.El("div", view.Class("metric-icon"), view.Kids(view.El("i", view.Class("bi", icon)))),
		view.El("div", view.Class("metric-value"), view.Text(value)),
		view.El("div", view.Class("metric-label"), view.Text(label)),
	))
}

// ChartSpec is the declarative chart handed to the browser renderer.
type ChartSpec struct {
	Data   any `json:"data"`
	Layout any `json:"layout,omitempty"`
}

// Chart renders a chart container carrying spec as JSON. The browser draws
// every element with a data-chart attribute.
func Chart(spec ChartSpec) (*html.Node, error) {
	raw, err := json.Marshal(spec)
	if err != nil {
		return nil, err
	}
	return view.El("div", view.Class("chart-canvas"), view.Data("chart", string(raw))), nil
}
