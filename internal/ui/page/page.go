// Package page builds the layout shell and the anchor skeleton of each view.
//
// Skeletons only hold empty regions; the view-models fill them.
package page

import (
	"golang.org/x/net/html"

	"github.com/okian/skillmonitor/internal/domain/catalog"
	"github.com/okian/skillmonitor/internal/domain/model"
	"github.com/okian/skillmonitor/internal/ui/view"
)

// View names a page.
type View string

const (
	ViewDashboard    View = "dashboard"
	ViewRegistration View = "registro"
	ViewProfile      View = "perfil"
	ViewMarket       View = "analisis"
)

// Views lists the pages in navigation order.
var Views = []View{ViewDashboard, ViewRegistration, ViewProfile, ViewMarket}

// ParseView maps a name to a View.
func ParseView(s string) (View, bool) {
	for _, v := range Views {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// Path returns the URL path serving v.
func (v View) Path() string {
	switch v {
	case ViewRegistration:
		return "/registro"
	case ViewProfile:
		return "/perfil"
	case ViewMarket:
		return "/analisis"
	default:
		return "/"
	}
}

func (v View) title() string {
	switch v {
	case ViewRegistration:
		return "Registro"
	case ViewProfile:
		return "Mi Perfil"
	case ViewMarket:
		return "Análisis"
	default:
		return "Dashboard"
	}
}

// Theme is the light/dark preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme maps s to a Theme; anything but dark is light.
func ParseTheme(s string) Theme {
	if Theme(s) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Icon is the toggle button's icon class for t.
func (t Theme) Icon() string {
	if t == ThemeDark {
		return "bi bi-sun"
	}
	return "bi bi-moon"
}

// Build returns the full document of v.
func Build(v View, theme Theme) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(view.El("html",
		view.Attr("lang", "es"),
		view.Data("bs-theme", string(theme)),
		view.Kids(head(v), body(v, theme)),
	))
	return doc
}

func head(v View) *html.Node {
	return view.El("head", view.Kids(
		view.El("meta", view.Attr("charset", "utf-8")),
		view.El("meta", view.Attr("name", "viewport"), view.Attr("content", "width=device-width, initial-scale=1")),
		view.El("title", view.Text("SkillMonitor · "+v.title())),
		view.El("link", view.Attr("rel", "stylesheet"), view.Attr("href", "/static/css/app.css")),
		view.El("script", view.Attr("src", "/static/js/app.js"), view.Attr("defer", "")),
	))
}

func body(v View, theme Theme) *html.Node {
	var skeleton []*html.Node
	switch v {
	case ViewRegistration:
		skeleton = registrationSkeleton()
	case ViewProfile:
		skeleton = profileSkeleton()
	case ViewMarket:
		skeleton = marketSkeleton()
	default:
		skeleton = dashboardSkeleton()
	}

	return view.El("body", view.Data("view", string(v)), view.Kids(
		nav(v, theme),
		view.El("main", view.Class("container", "py-4"), view.Kids(
			append([]*html.Node{view.El("div", view.ID(IDAlerts), view.Attr("aria-live", "polite"))}, skeleton...)...,
		)),
	))
}

func nav(active View, theme Theme) *html.Node {
	links := view.Each(Views, func(_ int, v View) *html.Node {
		return view.El("a",
			view.Class("nav-link"),
			view.If(v == active, view.Class("active"), view.Attr("aria-current", "page")),
			view.Attr("href", v.Path()),
			view.Text(v.title()),
		)
	})
	return view.El("nav", view.Class("navbar"), view.Kids(
		view.El("a", view.Class("navbar-brand"), view.Attr("href", "/"), view.Text("SkillMonitor")),
		view.El("div", view.Class("navbar-nav"), view.Kids(links...)),
		ThemeToggle(theme),
	))
}

// ThemeToggle is the theme button for the current theme.
func ThemeToggle(theme Theme) *html.Node {
	return view.El("button",
		view.ID(IDTheme),
		view.Class("btn", "btn-theme"),
		view.Attr("type", "button"),
		view.Attr("aria-label", "Cambiar tema"),
		view.Data("action", "theme"),
		view.Kids(view.El("i", view.Class(theme.Icon()))),
	)
}

func card(title string, kids ...*html.Node) *html.Node {
	return view.El("section", view.Class("card-modern"), view.Kids(
		view.El("div", view.Class("card-header"), view.Kids(view.El("h2", view.Class("h6"), view.Text(title)))),
		view.El("div", view.Class("card-body"), view.Kids(kids...)),
	))
}

func region(tag, id string, opts ...view.Option) *html.Node {
	return view.El(tag, append([]view.Option{view.ID(id)}, opts...)...)
}

func metricTile(id, label string) *html.Node {
	return view.El("div", view.Class("metric-card"), view.Kids(
		region("div", id, view.Class("metric-value"), view.Text("—")),
		view.El("div", view.Class("metric-label"), view.Text(label)),
	))
}

func dashboardSkeleton() []*html.Node {
	return []*html.Node{
		view.El("div", view.Class("d-flex", "justify-content-between"), view.Kids(
			view.El("h1", view.Text("Dashboard de Habilidades")),
			view.El("button", view.Class("btn", "btn-outline-primary"), view.Attr("type", "button"),
				view.Data("action", "dashboard/refresh"), view.Text("Actualizar")),
		)),
		region("p", IDLastUpdated, view.Class("text-muted", "small")),
		view.El("div", view.Class("metrics-grid"), view.Kids(
			metricTile(IDMetricSkills, "Habilidades analizadas"),
			metricTile(IDMetricPriority, "Prioridad crítica"),
			metricTile(IDMetricScore, "Demanda promedio"),
			metricTile(IDMetricUsers, "Usuarios registrados"),
		)),
		card("Habilidades más demandadas", region("div", IDChart, view.Class("chart"))),
		card("Matriz de habilidades", view.El("table", view.Class("table"), view.Kids(
			view.El("thead", view.Kids(view.El("tr", view.Kids(
				view.El("th", view.Text("Habilidad")),
				view.El("th", view.Text("Demanda")),
				view.El("th", view.Text("Importancia")),
				view.El("th", view.Text("Categoría")),
			)))),
			region("tbody", IDSkillsTable),
		))),
	}
}

func registrationSkeleton() []*html.Node {
	return []*html.Node{
		view.El("h1", view.Text("Crear Perfil")),
		region("div", IDRegistrationCard, view.Class("card-modern"), view.Kids(
			region("form", IDRegistrationForm, view.Data("action", "registration/submit"), view.Attr("novalidate", ""),
				view.Kids(RegistrationForm()...)),
		)),
		region("div", IDResults, view.Attr("hidden", "")),
	}
}

// RegistrationForm returns the blank children of the registration form.
func RegistrationForm() []*html.Node {
	return []*html.Node{
		field("Identificador", textInput(FieldUserID, "user_id")),
		field("Nombre", textInput(FieldName, "nombre")),
		field("Experiencia", selectInput(FieldExperience, "experiencia", "Selecciona tu experiencia...", catalog.ExperienceLevels)),
		field("Objetivo", selectInput(FieldObjective, "objetivo", "Selecciona tu objetivo...", catalog.Objectives)),
		view.El("fieldset", view.Class("skills-groups"), view.Kids(
			skillsGroup(model.GroupTechnical, IDSkillsTechnical),
			skillsGroup(model.GroupAnalysis, IDSkillsAnalysis),
			skillsGroup(model.GroupManagement, IDSkillsManagement),
		)),
		view.El("div", view.Class("selected-skills"), view.Kids(
			region("div", IDSelectedSkills, view.Class("d-flex", "flex-wrap", "gap-2")),
			region("small", IDSelectedCounter, view.Class("text-muted")),
		)),
		SubmitButton(false),
	}
}

// SubmitButton renders the registration submit control, busy or idle.
func SubmitButton(busy bool) *html.Node {
	label := "Crear Perfil"
	if busy {
		label = "Creando perfil..."
	}
	return view.El("button",
		view.ID(IDSubmit),
		view.Class("btn", "btn-modern", "btn-primary"),
		view.Attr("type", "submit"),
		view.If(busy, view.Attr("disabled", ""), view.Attr("aria-busy", "true")),
		view.Text(label),
	)
}

func field(label string, input *html.Node) *html.Node {
	id, _ := view.GetAttr(input, "id")
	return view.El("div", view.Class("mb-3"), view.Kids(
		view.El("label", view.Class("form-label"), view.Attr("for", id), view.Text(label)),
		input,
	))
}

func textInput(name, id string) *html.Node {
	return view.El("input", view.ID(id), view.Class("form-control"), view.Attr("type", "text"),
		view.Attr("name", name), view.Attr("required", ""))
}

func selectInput(name, id, prompt string, options []catalog.Option) *html.Node {
	opts := []*html.Node{view.El("option", view.Attr("value", ""), view.Text(prompt))}
	for _, o := range options {
		opts = append(opts, view.El("option", view.Attr("value", o.Value), view.Text(o.Label)))
	}
	return view.El("select", view.ID(id), view.Class("form-select"), view.Attr("name", name),
		view.Attr("required", ""), view.Kids(opts...))
}

func skillsGroup(g model.Group, id string) *html.Node {
	return view.El("div", view.Class("skills-group"), view.Kids(
		view.El("h3", view.Class("h6"), view.Text(catalog.GroupTitle(g))),
		region("div", id, view.Data("group", string(g))),
	))
}

func profileSkeleton() []*html.Node {
	return []*html.Node{
		view.El("h1", view.Text("Mi Perfil")),
		view.El("div", view.Class("mb-3"), view.Kids(
			view.El("label", view.Class("form-label"), view.Attr("for", IDUserSelector), view.Text("Usuario")),
			region("select", IDUserSelector, view.Class("form-select"), view.Attr("name", FieldUserID),
				view.Data("action", "profile/select"),
				view.Kids(view.El("option", view.Attr("value", ""), view.Text("Selecciona un usuario...")))),
		)),
		region("div", IDEmptyState, view.Attr("hidden", ""), view.Class("text-center", "py-5"), view.Kids(
			view.El("i", view.Class("bi", "bi-person-x", "display-4")),
			view.El("p", view.Class("text-muted", "mt-2"), view.Text("Aún no hay usuarios registrados")),
			view.El("a", view.Class("btn", "btn-modern", "btn-primary"), view.Attr("href", ViewRegistration.Path()),
				view.Text("Crear un perfil")),
		)),
		region("div", IDProfileContent, view.Attr("hidden", ""), view.Kids(
			view.El("header", view.Class("profile-header"), view.Kids(
				region("h2", IDUserName),
				view.El("p", view.Kids(
					region("span", IDUserExperience, view.Class("badge")),
					view.TextNode(" · "),
					region("span", IDUserObjective, view.Class("badge")),
					view.TextNode(" · Adecuación "),
					region("strong", IDUserFit),
				)),
			)),
			region("div", IDUserMetrics, view.Class("metrics-grid")),
			view.El("div", view.Class("row"), view.Kids(
				card("Habilidades Actuales", region("div", IDCurrentSkills, view.Class("d-flex", "flex-wrap", "gap-2"))),
				card("Habilidades Recomendadas", region("div", IDRecommendedSkill, view.Class("d-flex", "flex-wrap", "gap-2"))),
			)),
			card("Análisis de Brechas", region("div", IDGapChart, view.Class("chart"))),
			card("Plan de Acción", region("div", IDActionPlan)),
		)),
	}
}

func marketSkeleton() []*html.Node {
	return []*html.Node{
		view.El("div", view.Class("d-flex", "justify-content-between"), view.Kids(
			view.El("h1", view.Text("Análisis de Mercado")),
			view.El("button", view.Class("btn", "btn-outline-primary"), view.Attr("type", "button"),
				view.Data("action", "market/refresh"), view.Text("Actualizar")),
		)),
		region("p", IDMarketSource, view.Class("text-muted", "small")),
		card("Demanda por habilidad", region("div", IDMarketChart, view.Class("chart"))),
		card("Ranking de demanda", view.El("table", view.Class("table"), view.Kids(
			view.El("thead", view.Kids(view.El("tr", view.Kids(
				view.El("th", view.Text("#")),
				view.El("th", view.Text("Habilidad")),
				view.El("th", view.Text("Demanda")),
				view.El("th", view.Text("Categoría")),
			)))),
			region("tbody", IDMarketTable),
		))),
	}
}
