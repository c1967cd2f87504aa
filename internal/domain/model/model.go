// Package model contains domain models passed between layers.
//
// Values are decoded from the backend wire format by the backend adapter and
// rendered by the view-models. None of them is shared between sessions.
package model

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// Metrics are the four aggregate figures shown as dashboard tiles.
type Metrics struct {
	TotalSkills       float64
	HighPriorityCount float64
	AverageScore      float64 // percentage, 0-100
	TotalUsers        float64
}

// Chart is an opaque declarative chart description handed to the browser
// renderer untouched.
type Chart struct {
	Data   json.RawMessage `json:"data"`
	Layout json.RawMessage `json:"layout,omitempty"`
}

// Present reports whether the chart carries any data to draw.
func (c Chart) Present() bool {
	d := bytes.TrimSpace(c.Data)
	return len(d) > 0 && !bytes.Equal(d, []byte("null"))
}

// MatrixRow is one ranked skill of the dashboard table.
type MatrixRow struct {
	Skill            string
	MarketPercentage float64 // 0-100
	Importance       string
}

// DashboardSnapshot replaces the previous one wholesale on every successful poll.
// Rows keep the backend order. Metrics is nil when the backend omitted them.
type DashboardSnapshot struct {
	Metrics *Metrics
	Chart   Chart
	Rows    []MatrixRow
}

// MarketShare is the share of job offers asking for one skill.
type MarketShare struct {
	Skill      string
	Percentage float64 // 0-100
}

// MarketAnalysis is the market demand overview. Shares are ranked by
// percentage, highest first.
type MarketAnalysis struct {
	Source string
	Shares []MarketShare
}

// Group names one of the fixed skill catalog groups.
type Group string

const (
	GroupTechnical  Group = "technical"
	GroupAnalysis   Group = "analysis"
	GroupManagement Group = "management"
)

// Groups lists the catalog groups in render order.
var Groups = []Group{GroupTechnical, GroupAnalysis, GroupManagement}

// SkillCatalog maps each group to its ordered skill names.
type SkillCatalog map[Group][]string

// Empty reports whether no group holds a skill.
func (c SkillCatalog) Empty() bool {
	for _, g := range Groups {
		if len(c[g]) > 0 {
			return false
		}
	}
	return true
}

// Contains reports whether name is offered by any group.
func (c SkillCatalog) Contains(name string) bool {
	for _, g := range Groups {
		for _, s := range c[g] {
			if s == name {
				return true
			}
		}
	}
	return false
}

// UserProfile is one registered user as reported by the backend.
type UserProfile struct {
	ID                string
	Name              string
	ExperienceLevel   string
	Objective         string
	CurrentSkills     []string
	RecommendedSkills []string
	FitScore          float64 // percentage, 0-100
	PrimaryGap        string
}

// UserDirectory maps user id to profile.
type UserDirectory map[string]UserProfile

// IDs returns the user ids in ascending order.
func (d UserDirectory) IDs() []string {
	ids := make([]string, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Registration is a new profile submitted from the registration form.
type Registration struct {
	UserID          string   `json:"user_id" validate:"required"`
	Name            string   `json:"nombre" validate:"required"`
	ExperienceLevel string   `json:"experiencia" validate:"required"`
	Objective       string   `json:"objetivo" validate:"required"`
	Skills          []string `json:"habilidades" validate:"required,min=1,dive,required"`
}

// RegistrationResult is the backend's analysis of a freshly registered profile.
type RegistrationResult struct {
	Message           string
	CurrentSkills     []string
	RecommendedSkills []string
	FitScore          float64
}

// FormatNumber renders a figure without trailing zeros: 42, 72.5.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatPercent renders v followed by a percent sign.
func FormatPercent(v float64) string {
	return FormatNumber(v) + "%"
}
