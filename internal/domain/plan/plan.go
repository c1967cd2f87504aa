// Package plan derives the two-phase learning plan shown on a user's profile.
package plan

import (
	"fmt"

	"github.com/okian/skillmonitor/internal/domain/model"
)

const phaseSize = 3

// Phase is one block of the plan. Skills may be empty; the phase is still
// rendered.
type Phase struct {
	Title  string
	Hint   string
	Skills []string
}

// Plan is the derived action plan of one profile.
type Plan struct {
	Immediate Phase
	MidTerm   Phase
	// Intro and Steps form the personalized narrative block.
	Intro string
	Steps []string
}

// For builds the plan of p. Phase one takes the first three recommendations,
// phase two the next three.
func For(p model.UserProfile) Plan {
	return Plan{
		Immediate: Phase{
			Title:  "📅 Plan Inmediato (1-3 meses)",
			Hint:   "Cursos recomendados y práctica guiada",
			Skills: window(p.RecommendedSkills, 0),
		},
		MidTerm: Phase{
			Title:  "🎯 Plan a Mediano Plazo (3-6 meses)",
			Hint:   "Proyectos prácticos y especialización",
			Skills: window(p.RecommendedSkills, phaseSize),
		},
		Intro: fmt.Sprintf("Basado en tu perfil de %s y objetivo de %s, te recomendamos:", p.ExperienceLevel, p.Objective),
		Steps: []string{
			fmt.Sprintf("Enfócate en desarrollar %s como prioridad máxima", p.PrimaryGap),
			"Combina aprendizaje teórico con proyectos prácticos",
			"Dedica al menos 5 horas semanales a tu desarrollo profesional",
			"Consulta el Análisis de Mercado para priorizar tus próximas habilidades",
		},
	}
}

func window(skills []string, from int) []string {
	if from >= len(skills) {
		return []string{}
	}
	to := min(from+phaseSize, len(skills))
	return append([]string(nil), skills[from:to]...)
}
