package registration_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/skillmonitor/internal/adapters/backend"
	"github.com/okian/skillmonitor/internal/domain/model"
	"github.com/okian/skillmonitor/internal/ui/fetch"
	"github.com/okian/skillmonitor/internal/ui/page"
	"github.com/okian/skillmonitor/internal/viewmodel"
	"github.com/okian/skillmonitor/internal/viewmodel/registration"
	"github.com/okian/skillmonitor/internal/viewmodel/viewmodeltest"
)

const catalogPayload = `{"success":true,"skills":{"tecnicas":["Python","SQL"],"analisis":["KPI"],"gestion":["Scrum"]}}`

const registeredPayload = `{
	"success": true,
	"message": "Usuario registrado",
	"recomendaciones": ["Tableau", "Spark"],
	"user_data": {"skills_actuales": ["Python", "KPI"], "puntuacion_adecuacion": 72.5}
}`

func filledForm() url.Values {
	return url.Values{
		page.FieldUserID:     {"  ana01 "},
		page.FieldName:       {"Ana"},
		page.FieldExperience: {"Junior"},
		page.FieldObjective:  {"Data Analyst"},
	}
}

func start(h *viewmodeltest.Harness) *registration.Model {
	m := registration.New(h.Env())
	convey.So(h.Do(m.Start), convey.ShouldBeNil)
	return m
}

func toggle(h *viewmodeltest.Harness, m *registration.Model, skill string, checked bool) {
	convey.So(h.Do(func(ctx context.Context) {
		v := "false"
		if checked {
			v = "true"
		}
		convey.So(m.Handle(ctx, registration.ActionToggle, url.Values{page.FieldSkill: {skill}, page.FieldChecked: {v}}), convey.ShouldBeNil)
	}), convey.ShouldBeNil)
}

func submit(h *viewmodeltest.Harness, m *registration.Model, form url.Values) {
	convey.So(h.Do(func(ctx context.Context) {
		convey.So(m.Handle(ctx, registration.ActionSubmit, form), convey.ShouldBeNil)
	}), convey.ShouldBeNil)
}

func TestCatalog(t *testing.T) {
	convey.Convey("Given the registration view", t, func() {
		h := viewmodeltest.New(page.ViewRegistration, nil)
		defer h.Close()

		convey.Convey("When the backend lists skills", func() {
			h.Backend.Set(backend.PathSkills, viewmodeltest.OK(catalogPayload))
			start(h)
			doc := h.Page()

			convey.Convey("Then one checkbox per skill is rendered in its group", func() {
				boxes := doc.Find("#" + page.IDSkillsTechnical + " input[type=checkbox]")
				convey.So(boxes.Length(), convey.ShouldEqual, 2)
				v, _ := boxes.Eq(1).Attr("value")
				convey.So(v, convey.ShouldEqual, "SQL")
				action, _ := boxes.Eq(1).Attr("data-action")
				convey.So(action, convey.ShouldEqual, registration.ActionToggle)
				convey.So(doc.Find("#"+page.IDSkillsManagement+" label").Text(), convey.ShouldEqual, "Scrum")
			})

			convey.Convey("Then the selection summary is empty", func() {
				convey.So(h.Text(page.IDSelectedSkills), convey.ShouldEqual, "No hay habilidades seleccionadas")
				convey.So(h.Text(page.IDSelectedCounter), convey.ShouldEqual, "0 habilidades seleccionadas")
			})
		})

		convey.Convey("When the backend cannot be reached", func() {
			m := start(h)

			convey.Convey("Then the built-in catalog is used", func() {
				convey.So(h.Page().Find("#"+page.IDSkillsTechnical+" input").Length(), convey.ShouldEqual, 6)
				text, _ := h.Alert()
				convey.So(text, convey.ShouldEqual, fetch.ConnectionErrorMessage)
				var c model.SkillCatalog
				_ = h.Run(func(context.Context) { c = m.Catalog() })
				convey.So(c.Contains("Business Analysis"), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the backend answers with no skills at all", func() {
			h.Backend.Set(backend.PathSkills, viewmodeltest.OK(`{"success":true,"skills":{}}`))
			start(h)

			convey.Convey("Then the built-in catalog is used silently", func() {
				convey.So(h.Page().Find("#"+page.IDSkillsManagement+" input").Length(), convey.ShouldEqual, 5)
				text, _ := h.Alert()
				convey.So(text, convey.ShouldBeEmpty)
			})
		})
	})
}

func TestToggle(t *testing.T) {
	convey.Convey("Given a loaded catalog", t, func() {
		h := viewmodeltest.New(page.ViewRegistration, nil)
		defer h.Close()
		h.Backend.Set(backend.PathSkills, viewmodeltest.OK(catalogPayload))
		m := start(h)

		convey.Convey("When two skills are checked", func() {
			toggle(h, m, "SQL", true)
			toggle(h, m, "Python", true)
			toggle(h, m, "SQL", true)

			convey.Convey("Then they are listed once in selection order", func() {
				convey.So(m.Selected(), convey.ShouldResemble, []string{"SQL", "Python"})
				convey.So(h.Page().Find("#"+page.IDSelectedSkills+" .skill-chip").Length(), convey.ShouldEqual, 2)
				convey.So(h.Text(page.IDSelectedCounter), convey.ShouldEqual, "2 habilidades seleccionadas")
				_, checked := h.Page().Find("input[value=SQL]").Attr("checked")
				convey.So(checked, convey.ShouldBeTrue)
			})

			convey.Convey("And one is unchecked", func() {
				toggle(h, m, "SQL", false)

				convey.Convey("Then only the other remains", func() {
					convey.So(m.Selected(), convey.ShouldResemble, []string{"Python"})
					_, checked := h.Page().Find("input[value=SQL]").Attr("checked")
					convey.So(checked, convey.ShouldBeFalse)
				})
			})
		})

		convey.Convey("When a skill outside the catalog is toggled", func() {
			toggle(h, m, "COBOL", true)

			convey.Convey("Then it is ignored", func() {
				convey.So(m.Selected(), convey.ShouldBeEmpty)
			})
		})
	})
}

func TestSubmit(t *testing.T) {
	convey.Convey("Given a form with a loaded catalog", t, func() {
		h := viewmodeltest.New(page.ViewRegistration, nil)
		defer h.Close()
		h.Backend.Set(backend.PathSkills, viewmodeltest.OK(catalogPayload))
		m := start(h)

		convey.Convey("When a required field is blank", func() {
			toggle(h, m, "Python", true)
			form := filledForm()
			form.Set(page.FieldObjective, "   ")
			submit(h, m, form)

			convey.Convey("Then a warning is shown and nothing is posted", func() {
				text, class := h.Alert()
				convey.So(text, convey.ShouldEqual, "Por favor completa todos los campos obligatorios")
				convey.So(class, convey.ShouldContainSubstring, "alert-warning")
				convey.So(h.Backend.Bodies(), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When no skill is selected", func() {
			submit(h, m, filledForm())

			convey.Convey("Then the selection warning is shown", func() {
				text, _ := h.Alert()
				convey.So(text, convey.ShouldEqual, "Selecciona al menos una habilidad")
				convey.So(h.Backend.Bodies(), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the registration succeeds", func() {
			h.Backend.Set(backend.PathRegister, viewmodeltest.OK(registeredPayload))
			toggle(h, m, "Python", true)
			toggle(h, m, "KPI", true)
			submit(h, m, filledForm())
			doc := h.Page()

			convey.Convey("Then the trimmed registration is posted", func() {
				bodies := h.Backend.Bodies()
				convey.So(bodies, convey.ShouldHaveLength, 1)
				reg := bodies[0].(model.Registration)
				convey.So(reg.UserID, convey.ShouldEqual, "ana01")
				convey.So(reg.Skills, convey.ShouldResemble, []string{"Python", "KPI"})
			})

			convey.Convey("Then the results panel replaces the form", func() {
				convey.So(h.Hidden(page.IDRegistrationCard), convey.ShouldBeTrue)
				convey.So(h.Hidden(page.IDResults), convey.ShouldBeFalse)
				convey.So(doc.Find("[data-list=current] .skill-chip.actual").Length(), convey.ShouldEqual, 2)
				convey.So(doc.Find("[data-list=recommended] .skill-chip.recomendada").Length(), convey.ShouldEqual, 2)
				convey.So(doc.Find("[data-fit]").Text(), convey.ShouldEqual, "72.5%")
				convey.So(doc.Find("[data-message]").Text(), convey.ShouldEqual, "Usuario registrado")
				href, _ := doc.Find("#" + page.IDResults + " a").Attr("href")
				convey.So(href, convey.ShouldEqual, "/perfil?user=ana01")
			})

			convey.Convey("Then the selection is cleared and the control restored", func() {
				convey.So(m.Selected(), convey.ShouldBeEmpty)
				convey.So(m.Busy(), convey.ShouldBeFalse)
				_, disabled := doc.Find("#" + page.IDSubmit).Attr("disabled")
				convey.So(disabled, convey.ShouldBeFalse)
			})

			convey.Convey("And the user starts over", func() {
				convey.So(h.Do(func(ctx context.Context) {
					convey.So(m.Handle(ctx, registration.ActionReset, nil), convey.ShouldBeNil)
				}), convey.ShouldBeNil)
				doc := h.Page()

				convey.Convey("Then the blank form is back with the catalog", func() {
					convey.So(h.Hidden(page.IDRegistrationCard), convey.ShouldBeFalse)
					convey.So(h.Hidden(page.IDResults), convey.ShouldBeTrue)
					convey.So(h.Text(page.IDResults), convey.ShouldBeEmpty)
					convey.So(doc.Find("#"+page.IDSkillsTechnical+" input").Length(), convey.ShouldEqual, 2)
					convey.So(doc.Find("input[checked]").Length(), convey.ShouldEqual, 0)
					convey.So(h.Text(page.IDSelectedCounter), convey.ShouldEqual, "0 habilidades seleccionadas")
					convey.So(h.Text(page.IDSubmit), convey.ShouldEqual, "Crear Perfil")
				})
			})
		})

		convey.Convey("When the backend rejects the registration", func() {
			h.Backend.Set(backend.PathRegister, viewmodeltest.Failed("El usuario ya existe"))
			toggle(h, m, "Python", true)
			submit(h, m, filledForm())

			convey.Convey("Then its message is shown and the form stays", func() {
				text, class := h.Alert()
				convey.So(text, convey.ShouldEqual, "El usuario ya existe")
				convey.So(class, convey.ShouldContainSubstring, "alert-danger")
				convey.So(h.Hidden(page.IDResults), convey.ShouldBeTrue)
				convey.So(m.Selected(), convey.ShouldResemble, []string{"Python"})
				convey.So(h.Text(page.IDSubmit), convey.ShouldEqual, "Crear Perfil")
			})
		})

		convey.Convey("When the backend cannot be reached on submit", func() {
			toggle(h, m, "Python", true)
			toggle(h, m, "KPI", true)
			submit(h, m, filledForm())
			doc := h.Page()

			convey.Convey("Then only the connectivity alert is shown and the control is restored", func() {
				text, class := h.Alert()
				convey.So(text, convey.ShouldEqual, fetch.ConnectionErrorMessage)
				convey.So(class, convey.ShouldContainSubstring, "alert-danger")
				convey.So(h.Backend.Bodies(), convey.ShouldHaveLength, 1)
				convey.So(m.Busy(), convey.ShouldBeFalse)
				_, disabled := doc.Find("#" + page.IDSubmit).Attr("disabled")
				convey.So(disabled, convey.ShouldBeFalse)
				convey.So(h.Text(page.IDSubmit), convey.ShouldEqual, "Crear Perfil")
				convey.So(h.Hidden(page.IDResults), convey.ShouldBeTrue)
				convey.So(m.Selected(), convey.ShouldResemble, []string{"Python", "KPI"})
			})
		})

		convey.Convey("When the backend rejects it without a message", func() {
			h.Backend.Set(backend.PathRegister, viewmodeltest.Failed(""))
			toggle(h, m, "Python", true)
			submit(h, m, filledForm())

			convey.Convey("Then the generic message is shown", func() {
				text, _ := h.Alert()
				convey.So(text, convey.ShouldEqual, "Error creando el perfil")
			})
		})

		convey.Convey("When the form is submitted twice while the first is in flight", func() {
			h.Backend.Set(backend.PathRegister, viewmodeltest.OK(registeredPayload))
			release := h.Backend.Hold(backend.PathRegister)
			toggle(h, m, "Python", true)
			convey.So(h.Run(func(ctx context.Context) { m.Submit(ctx, filledForm()) }), convey.ShouldBeNil)

			busy := false
			_ = h.Run(func(ctx context.Context) {
				busy = m.Busy()
				m.Submit(ctx, filledForm())
			})
			label := h.Text(page.IDSubmit)
			_, disabled := h.Page().Find("#" + page.IDSubmit).Attr("disabled")
			release()
			convey.So(h.Settle(), convey.ShouldBeNil)

			convey.Convey("Then only one registration is posted", func() {
				convey.So(busy, convey.ShouldBeTrue)
				convey.So(disabled, convey.ShouldBeTrue)
				convey.So(label, convey.ShouldEqual, "Creando perfil...")
				convey.So(h.Backend.Bodies(), convey.ShouldHaveLength, 1)
				convey.So(m.Busy(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When an unknown action arrives", func() {
			var err error
			_ = h.Run(func(ctx context.Context) { err = m.Handle(ctx, "registration/unknown", nil) })

			convey.Convey("Then it is rejected", func() {
				convey.So(errors.Is(err, viewmodel.ErrUnknownAction), convey.ShouldBeTrue)
			})
		})
	})
}
