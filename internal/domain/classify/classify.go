// Package classify holds the presentation heuristics applied to dashboard rows.
//
// Both functions are pure: the same input always yields the same class.
package classify

import "strings"

// Tier is the visual severity of a row's importance.
type Tier string

const (
	TierHigh    Tier = "high"
	TierMedium  Tier = "medium"
	TierLow     Tier = "low"
	TierNeutral Tier = "neutral"
)

// Category is the coarse family a skill name belongs to.
type Category string

const (
	CategoryTechnical  Category = "Technical"
	CategoryBusiness   Category = "Business"
	CategoryManagement Category = "Management"
	CategoryAnalytical Category = "Analytical"
)

var importanceTiers = map[string]Tier{
	"crítica": TierHigh,
	"alta":    TierMedium,
	"media":   TierLow,
}

// keyword lists in match priority order; Analytical is the fallback.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryTechnical, []string{"python", "sql", "machine learning", "power bi", "tableau", "excel", "spark", "tensorflow"}},
	{CategoryBusiness, []string{"business intelligence", "kpi", "análisis financiero", "storytelling"}},
	{CategoryManagement, []string{"project management", "gestión de proyectos", "scrum", "agile"}},
}

// Importance maps a backend importance label to a tier. Matching ignores
// case; unknown labels are neutral.
func Importance(label string) Tier {
	if t, ok := importanceTiers[strings.ToLower(strings.TrimSpace(label))]; ok {
		return t
	}
	return TierNeutral
}

// Of returns the category of a skill name by case-insensitive substring match.
func Of(skill string) Category {
	s := strings.ToLower(skill)
	for _, c := range categoryKeywords {
		for _, k := range c.keywords {
			if strings.Contains(s, k) {
				return c.category
			}
		}
	}
	return CategoryAnalytical
}

// Label is the table caption for a category.
func (c Category) Label() string {
	switch c {
	case CategoryTechnical:
		return "💻 Técnica"
	case CategoryBusiness:
		return "📊 Negocio"
	case CategoryManagement:
		return "👥 Gestión"
	default:
		return "📈 Análisis"
	}
}
