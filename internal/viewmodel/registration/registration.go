// Package registration drives the profile registration form: the skill
// checklists, the selection summary, submission and the results panel.
package registration

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/net/html"

	"github.com/okian/skillmonitor/internal/adapters/backend"
	"github.com/okian/skillmonitor/internal/domain/catalog"
	"github.com/okian/skillmonitor/internal/domain/model"
	"github.com/okian/skillmonitor/internal/domain/selection"
	"github.com/okian/skillmonitor/internal/ui/dom"
	"github.com/okian/skillmonitor/internal/ui/notify"
	"github.com/okian/skillmonitor/internal/ui/page"
	"github.com/okian/skillmonitor/internal/ui/view"
	"github.com/okian/skillmonitor/internal/viewmodel"
	"github.com/okian/skillmonitor/pkg/logger"
)

// Actions offered by the registration view.
const (
	ActionToggle = "registration/toggle"
	ActionSubmit = "registration/submit"
	ActionReset  = "registration/reset"
)

const (
	missingFieldsMessage = "Por favor completa todos los campos obligatorios"
	noSkillsMessage      = "Selecciona al menos una habilidad"
	submitFailedMessage  = "Error creando el perfil"
	noSelectionCaption   = "No hay habilidades seleccionadas"
)

var groupRegions = map[model.Group]string{
	model.GroupTechnical:  page.IDSkillsTechnical,
	model.GroupAnalysis:   page.IDSkillsAnalysis,
	model.GroupManagement: page.IDSkillsManagement,
}

// Model is the registration view-model.
type Model struct {
	env      viewmodel.Env
	log      logger.Logger
	validate *validator.Validate
	fallback model.SkillCatalog

	card, results  *dom.Region
	form, submit   *dom.Region
	chips, counter *dom.Region
	catalog        model.SkillCatalog
	selected       *selection.Set
	busy, disposed bool
}

// Option applies a configuration option to the Model.
type Option func(*Model)

// WithFallback replaces the catalog used when the backend has none.
func WithFallback(c model.SkillCatalog) Option {
	return func(m *Model) {
		if !c.Empty() {
			m.fallback = c
		}
	}
}

// New creates the registration view-model over env.Doc.
func New(env viewmodel.Env, opts ...Option) *Model {
	m := &Model{
		env:      env,
		log:      env.Logger,
		validate: validator.New(),
		fallback: catalog.Fallback(),
		card:     env.Doc.Region(page.IDRegistrationCard),
		results:  env.Doc.Region(page.IDResults),
		form:     env.Doc.Region(page.IDRegistrationForm),
		submit:   env.Doc.Region(page.IDSubmit),
		chips:    env.Doc.Region(page.IDSelectedSkills),
		counter:  env.Doc.Region(page.IDSelectedCounter),
		selected: selection.New(),
	}
	if m.log == nil {
		m.log = logger.Nop()
	}
	m.log = m.log.Named("registration")
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start loads the catalog.
func (m *Model) Start(ctx context.Context) {
	m.renderSelection()
	m.LoadCatalog(ctx)
}

// Handle runs a registration action.
func (m *Model) Handle(ctx context.Context, action string, form url.Values) error {
	switch action {
	case ActionToggle:
		m.Toggle(form.Get(page.FieldSkill), viewmodel.Checked(form.Get(page.FieldChecked)))
	case ActionSubmit:
		m.Submit(ctx, form)
	case ActionReset:
		m.Reset()
	default:
		return fmt.Errorf("%w: %s", viewmodel.ErrUnknownAction, action)
	}
	return nil
}

// Dispose marks the view gone; completions still in flight are dropped.
func (m *Model) Dispose() { m.disposed = true }

// Selected returns the selected skill names in selection order.
func (m *Model) Selected() []string { return m.selected.Items() }

// Busy reports whether a submission is in flight.
func (m *Model) Busy() bool { return m.busy }

// LoadCatalog fetches the skill catalog. Any failure, or an answer without
// a single skill, falls back to the built-in catalog.
func (m *Model) LoadCatalog(_ context.Context) {
	for _, g := range model.Groups {
		m.env.Notify.ShowLoading(m.env.Doc.Region(groupRegions[g]))
	}
	m.env.Fetch.Get(backend.PathSkills, func(ctx context.Context, res backend.Result) {
		if m.disposed {
			return
		}
		c, err := backend.DecodeCatalog(res)
		if err != nil || c.Empty() {
			m.log.Warn(ctx, "using built-in skill catalog",
				logger.String("kind", res.Kind.String()), logger.Any("error", err))
			c = m.fallback
		}
		m.catalog = c
		m.renderCategories()
	})
}

// Catalog returns the loaded catalog, or nil before it arrives.
func (m *Model) Catalog() model.SkillCatalog { return m.catalog }

func (m *Model) renderCategories() {
	for _, g := range model.Groups {
		r := m.env.Doc.Region(groupRegions[g])
		r.Replace(view.Each(m.catalog[g], func(i int, skill string) *html.Node {
			return m.checkbox(g, i, skill)
		})...)
	}
}

func checkboxID(g model.Group, i int) string {
	return "skill-" + string(g) + "-" + strconv.Itoa(i)
}

func (m *Model) checkbox(g model.Group, i int, skill string) *html.Node {
	id := checkboxID(g, i)
	return view.El("div", view.Class("form-check"), view.Kids(
		view.El("input",
			view.ID(id),
			view.Class("form-check-input"),
			view.Attr("type", "checkbox"),
			view.Attr("name", page.FieldSkill),
			view.Attr("value", skill),
			view.Data("action", ActionToggle),
			view.Data("skill", skill),
			view.If(m.selected.Has(skill), view.Attr("checked", "")),
		),
		view.El("label", view.Class("form-check-label"), view.Attr("for", id), view.Text(skill)),
	))
}

// Toggle adds or removes skill from the selection. Names outside the loaded
// catalog are ignored.
func (m *Model) Toggle(skill string, checked bool) {
	if m.catalog == nil || !m.catalog.Contains(skill) {
		return
	}
	m.selected.Toggle(skill, checked)
	m.syncCheckbox(skill)
	m.renderSelection()
}

func (m *Model) syncCheckbox(skill string) {
	for _, g := range model.Groups {
		for i, s := range m.catalog[g] {
			if s != skill {
				continue
			}
			r := m.env.Doc.Region(checkboxID(g, i))
			if m.selected.Has(skill) {
				r.SetAttr("checked", "")
			} else {
				r.RemoveAttr("checked")
			}
		}
	}
}

func (m *Model) renderSelection() {
	items := m.selected.Items()
	if len(items) == 0 {
		m.chips.Replace(view.El("span", view.Class("text-muted"), view.Text(noSelectionCaption)))
	} else {
		m.chips.Replace(view.Each(items, func(_ int, s string) *html.Node {
			return page.SkillChip(s, page.ChipDefault)
		})...)
	}
	m.counter.SetText(fmt.Sprintf("%d habilidades seleccionadas", len(items)))
}

// Submit validates the form and posts the registration. A submit while one
// is in flight is ignored.
func (m *Model) Submit(ctx context.Context, form url.Values) {
	if m.busy {
		return
	}
	reg := model.Registration{
		UserID:          strings.TrimSpace(form.Get(page.FieldUserID)),
		Name:            strings.TrimSpace(form.Get(page.FieldName)),
		ExperienceLevel: strings.TrimSpace(form.Get(page.FieldExperience)),
		Objective:       strings.TrimSpace(form.Get(page.FieldObjective)),
		Skills:          m.selected.Items(),
	}
	if msg, ok := m.check(reg); !ok {
		m.env.Notify.ShowAlert(msg, notify.SeverityWarning)
		return
	}

	m.setBusy(true)
	m.env.Fetch.Post(backend.PathRegister, reg, func(ctx context.Context, res backend.Result) {
		m.setBusy(false)
		if m.disposed {
			return
		}
		m.complete(ctx, reg, res)
	})
}

// check reports the warning for an invalid registration. Missing fields
// take precedence over an empty selection.
func (m *Model) check(reg model.Registration) (string, bool) {
	err := m.validate.Struct(reg)
	if err == nil {
		return "", true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return missingFieldsMessage, false
	}
	for _, fe := range verrs {
		if fe.StructField() != "Skills" {
			return missingFieldsMessage, false
		}
	}
	return noSkillsMessage, false
}

func (m *Model) complete(ctx context.Context, reg model.Registration, res backend.Result) {
	switch res.Kind {
	case backend.KindTransport:
		// connectivity alert already shown
		return
	case backend.KindBackend:
		msg := res.Message
		if msg == "" {
			msg = submitFailedMessage
		}
		m.env.Notify.ShowAlert(msg, notify.SeverityDanger)
		return
	}

	out, err := backend.DecodeRegistration(res)
	if err != nil {
		m.log.Warn(ctx, "registration answer rejected", logger.Error(err))
		m.env.Notify.ShowAlert(submitFailedMessage, notify.SeverityDanger)
		return
	}
	m.log.Info(ctx, "profile registered", logger.String("user_id", reg.UserID))
	m.selected.Clear()
	m.showResults(reg.UserID, out)
}

func (m *Model) setBusy(busy bool) {
	m.busy = busy
	if busy {
		m.submit.SetAttr("disabled", "")
		m.submit.SetAttr("aria-busy", "true")
		m.submit.SetText("Creando perfil...")
		return
	}
	m.submit.RemoveAttr("disabled")
	m.submit.RemoveAttr("aria-busy")
	m.submit.SetText("Crear Perfil")
}

func (m *Model) showResults(userID string, out model.RegistrationResult) {
	chips := func(skills []string, kind page.ChipKind) []*html.Node {
		return view.Each(skills, func(_ int, s string) *html.Node { return page.SkillChip(s, kind) })
	}
	m.card.Hide()
	m.results.Replace(view.El("div", view.Class("card-modern", "results-card"), view.Kids(
		view.El("div", view.Class("text-center", "mb-4"),
			view.Kids(
				view.El("i", view.Class("bi", "bi-check-circle-fill", "text-success", "display-4")),
				view.El("h2", view.Class("h4", "mt-2"), view.Text("¡Perfil Creado Exitosamente!")),
			),
			view.If(out.Message != "", view.Kids(
				view.El("p", view.Class("text-muted"), view.Data("message", ""), view.Text(out.Message)),
			)),
		),
		view.El("h3", view.Class("h6"), view.Text("Tus Habilidades Actuales")),
		view.El("div", view.Class("d-flex", "flex-wrap", "gap-2", "mb-3"), view.Data("list", "current"),
			view.Kids(chips(out.CurrentSkills, page.ChipCurrent)...)),
		view.El("h3", view.Class("h6"), view.Text("Habilidades Recomendadas")),
		view.El("div", view.Class("d-flex", "flex-wrap", "gap-2", "mb-3"), view.Data("list", "recommended"),
			view.Kids(chips(out.RecommendedSkills, page.ChipRecommended)...)),
		view.El("p", view.Kids(
			view.TextNode("Adecuación al mercado: "),
			view.El("strong", view.Data("fit", ""), view.Text(model.FormatPercent(out.FitScore))),
		)),
		view.El("div", view.Class("d-flex", "gap-2"), view.Kids(
			view.El("a", view.Class("btn", "btn-modern", "btn-primary"),
				view.Attr("href", page.ViewProfile.Path()+"?user="+url.QueryEscape(userID)),
				view.Text("Ver Mi Perfil")),
			view.El("button", view.Class("btn", "btn-outline-secondary"), view.Attr("type", "button"),
				view.Data("action", ActionReset), view.Text("Crear Otro Perfil")),
		)),
	)))
	m.results.Show()
}

// Reset clears the form and the selection and brings the form back.
func (m *Model) Reset() {
	m.selected.Clear()
	m.form.Replace(page.RegistrationForm()...)
	if m.catalog != nil {
		m.renderCategories()
	} else {
		for _, g := range model.Groups {
			m.env.Notify.ShowLoading(m.env.Doc.Region(groupRegions[g]))
		}
	}
	m.renderSelection()
	m.setBusy(m.busy)
	m.results.Replace()
	m.results.Hide()
	m.card.Show()
}
