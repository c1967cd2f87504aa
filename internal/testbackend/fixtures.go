package testbackend

// Skill is one row of the market matrix.
type Skill struct {
	Name             string  `json:"skill"`
	MarketPercentage float64 `json:"porcentaje_mercado"`
	Importance       string  `json:"importancia"`
}

// User is a stored profile.
type User struct {
	ID          string   `json:"-"`
	Name        string   `json:"nombre"`
	Experience  string   `json:"experiencia"`
	Objective   string   `json:"objetivo"`
	Current     []string `json:"skills_actuales"`
	Recommended []string `json:"recomendaciones"`
	Fit         float64  `json:"puntuacion_adecuacion"`
	Gap         string   `json:"brecha_principal"`
}

// Matrix is the default market matrix, most demanded first.
var Matrix = []Skill{
	{Name: "Python", MarketPercentage: 85, Importance: "Crítica"},
	{Name: "SQL", MarketPercentage: 80, Importance: "Crítica"},
	{Name: "Power BI", MarketPercentage: 62, Importance: "Alta"},
	{Name: "Excel", MarketPercentage: 58, Importance: "Alta"},
	{Name: "Tableau", MarketPercentage: 45, Importance: "Alta"},
	{Name: "Machine Learning", MarketPercentage: 40, Importance: "Media"},
	{Name: "Business Intelligence", MarketPercentage: 38, Importance: "Media"},
	{Name: "KPI", MarketPercentage: 30, Importance: "Media"},
	{Name: "Scrum", MarketPercentage: 22, Importance: "Baja"},
	{Name: "Storytelling", MarketPercentage: 18, Importance: "Baja"},
}

type seedUser struct {
	id, name, experience, objective string
	skills                          []string
}

var seedUsers = []seedUser{
	{id: "ana", name: "Ana Torres", experience: "Junior", objective: "Data Analyst", skills: []string{"Excel", "SQL"}},
	{id: "luis", name: "Luis Gómez", experience: "Senior", objective: "Data Scientist", skills: []string{"Python", "Machine Learning", "SQL", "Scrum"}},
}
