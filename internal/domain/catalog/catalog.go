// Package catalog holds the built-in skill catalog and the registration form
// option lists.
package catalog

import "github.com/okian/skillmonitor/internal/domain/model"

var fallback = model.SkillCatalog{
	model.GroupTechnical:  {"Python", "SQL", "Machine Learning", "Power BI", "Tableau", "Excel"},
	model.GroupAnalysis:   {"Data Analysis", "Business Intelligence", "KPI", "Análisis Financiero"},
	model.GroupManagement: {"Project Management", "Gestión de Proyectos", "Scrum", "Agile", "Business Analysis"},
}

// Fallback returns a copy of the catalog used when the backend cannot
// provide one.
func Fallback() model.SkillCatalog {
	out := make(model.SkillCatalog, len(fallback))
	for g, skills := range fallback {
		out[g] = append([]string(nil), skills...)
	}
	return out
}

// GroupTitle is the heading rendered above a group's checkboxes.
func GroupTitle(g model.Group) string {
	switch g {
	case model.GroupTechnical:
		return "Habilidades Técnicas"
	case model.GroupAnalysis:
		return "Análisis de Datos"
	case model.GroupManagement:
		return "Gestión y Negocio"
	default:
		return string(g)
	}
}

// Option is one entry of a select control.
type Option struct {
	Value string
	Label string
}

// ExperienceLevels are the seniority choices of the registration form.
var ExperienceLevels = []Option{
	{Value: "Junior", Label: "Junior (0-2 años)"},
	{Value: "Semi-Senior", Label: "Semi-Senior (2-5 años)"},
	{Value: "Senior", Label: "Senior (5+ años)"},
}

// Objectives are the target roles of the registration form.
var Objectives = []Option{
	{Value: "Data Analyst", Label: "Data Analyst"},
	{Value: "Business Intelligence Analyst", Label: "Business Intelligence Analyst"},
	{Value: "Data Scientist", Label: "Data Scientist"},
	{Value: "Data Engineer", Label: "Data Engineer"},
}
