package backend

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/okian/skillmonitor/internal/domain/model"
)

type dashboardWire struct {
	Metricas *struct {
		TotalHabilidades   float64 `json:"total_habilidades"`
		AltaPrioridad      float64 `json:"alta_prioridad"`
		PuntuacionPromedio float64 `json:"puntuacion_promedio"`
		TotalUsuarios      float64 `json:"total_usuarios"`
	} `json:"metricas"`
	BarChart   *model.Chart `json:"bar_chart"`
	MatrizData []struct {
		Skill             string  `json:"skill"`
		PorcentajeMercado float64 `json:"porcentaje_mercado"`
		Importancia       string  `json:"importancia"`
	} `json:"matriz_data"`
}

type skillsWire struct {
	Skills struct {
		Tecnicas []string `json:"tecnicas"`
		Analisis []string `json:"analisis"`
		Gestion  []string `json:"gestion"`
	} `json:"skills"`
}

type registrationWire struct {
	Message         string   `json:"message"`
	Recomendaciones []string `json:"recomendaciones"`
	UserData        struct {
		SkillsActuales       []string `json:"skills_actuales"`
		PuntuacionAdecuacion float64  `json:"puntuacion_adecuacion"`
	} `json:"user_data"`
}

type userWire struct {
	Nombre               string   `json:"nombre"`
	Experiencia          string   `json:"experiencia"`
	Objetivo             string   `json:"objetivo"`
	SkillsActuales       []string `json:"skills_actuales"`
	Recomendaciones      []string `json:"recomendaciones"`
	PuntuacionAdecuacion float64  `json:"puntuacion_adecuacion"`
	BrechaPrincipal      string   `json:"brecha_principal"`
}

type marketWire struct {
	Analisis map[string]*float64 `json:"analisis"`
	Fuente   string              `json:"fuente"`
}

type usersWire struct {
	Usuarios map[string]userWire `json:"usuarios"`
}

func decode(r Result, schema string, v any) error {
	if r.Kind != KindOK {
		return fmt.Errorf("%w: %s", ErrNotOK, r.Kind)
	}
	if err := validate(schema, r.Body); err != nil {
		return err
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// DecodeDashboard maps a dashboard-data answer. Missing sections stay empty,
// null figures read as zero and rows without a skill name are skipped.
func DecodeDashboard(r Result) (model.DashboardSnapshot, error) {
	var w dashboardWire
	if err := decode(r, schemaDashboard, &w); err != nil {
		return model.DashboardSnapshot{}, err
	}

	snap := model.DashboardSnapshot{Rows: make([]model.MatrixRow, 0, len(w.MatrizData))}
	if w.Metricas != nil {
		snap.Metrics = &model.Metrics{
			TotalSkills:       w.Metricas.TotalHabilidades,
			HighPriorityCount: w.Metricas.AltaPrioridad,
			AverageScore:      w.Metricas.PuntuacionPromedio,
			TotalUsers:        w.Metricas.TotalUsuarios,
		}
	}
	if w.BarChart != nil {
		snap.Chart = *w.BarChart
	}
	for _, row := range w.MatrizData {
		if strings.TrimSpace(row.Skill) == "" {
			continue
		}
		snap.Rows = append(snap.Rows, model.MatrixRow{
			Skill:            row.Skill,
			MarketPercentage: row.PorcentajeMercado,
			Importance:       row.Importancia,
		})
	}
	return snap, nil
}

// DecodeCatalog maps a skills-lista answer.
func DecodeCatalog(r Result) (model.SkillCatalog, error) {
	var w skillsWire
	if err := decode(r, schemaSkills, &w); err != nil {
		return nil, err
	}
	return model.SkillCatalog{
		model.GroupTechnical:  w.Skills.Tecnicas,
		model.GroupAnalysis:   w.Skills.Analisis,
		model.GroupManagement: w.Skills.Gestion,
	}, nil
}

// DecodeRegistration maps a registrar-usuario answer.
func DecodeRegistration(r Result) (model.RegistrationResult, error) {
	var w registrationWire
	if err := decode(r, schemaRegistration, &w); err != nil {
		return model.RegistrationResult{}, err
	}
	return model.RegistrationResult{
		Message:           w.Message,
		CurrentSkills:     w.UserData.SkillsActuales,
		RecommendedSkills: w.Recomendaciones,
		FitScore:          w.UserData.PuntuacionAdecuacion,
	}, nil
}

// DecodeDirectory maps a usuarios answer.
func DecodeDirectory(r Result) (model.UserDirectory, error) {
	var w usersWire
	if err := decode(r, schemaUsers, &w); err != nil {
		return nil, err
	}
	dir := make(model.UserDirectory, len(w.Usuarios))
	for id, u := range w.Usuarios {
		dir[id] = model.UserProfile{
			ID:                id,
			Name:              u.Nombre,
			ExperienceLevel:   u.Experiencia,
			Objective:         u.Objetivo,
			CurrentSkills:     u.SkillsActuales,
			RecommendedSkills: u.Recomendaciones,
			FitScore:          u.PuntuacionAdecuacion,
			PrimaryGap:        u.BrechaPrincipal,
		}
	}
	return dir, nil
}

// DecodeMarket maps an analisis-mercado answer. Keys are shown with
// underscores as spaces; null shares are skipped. Shares are ranked by
// percentage, then by name.
func DecodeMarket(r Result) (model.MarketAnalysis, error) {
	var w marketWire
	if err := decode(r, schemaMarket, &w); err != nil {
		return model.MarketAnalysis{}, err
	}
	out := model.MarketAnalysis{
		Source: strings.TrimSpace(w.Fuente),
		Shares: make([]model.MarketShare, 0, len(w.Analisis)),
	}
	for key, pct := range w.Analisis {
		name := strings.TrimSpace(strings.ReplaceAll(key, "_", " "))
		if pct == nil || name == "" {
			continue
		}
		out.Shares = append(out.Shares, model.MarketShare{Skill: name, Percentage: *pct})
	}
	sort.Slice(out.Shares, func(i, j int) bool {
		a, b := out.Shares[i], out.Shares[j]
		if a.Percentage != b.Percentage {
			return a.Percentage > b.Percentage
		}
		return a.Skill < b.Skill
	})
	return out, nil
}
