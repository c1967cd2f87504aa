// Package testbackend is an in-memory stand-in for the skills analysis API.
//
// It serves the four endpoints the frontend consumes, stores registered
// users in memory and can be told to fail per endpoint.
package testbackend

import (
	"encoding/json"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/okian/skillmonitor/internal/adapters/backend"
	"github.com/okian/skillmonitor/internal/domain/catalog"
	"github.com/okian/skillmonitor/internal/domain/model"
	"github.com/okian/skillmonitor/pkg/logger"
)

const (
	maxRecommendations = 5
	fitWindow          = 10
)

// Mode selects how an endpoint answers.
type Mode int

const (
	// ModeNormal answers with data.
	ModeNormal Mode = iota
	// ModeBackendError answers success:false.
	ModeBackendError
	// ModeTransportError answers with a body that is not an envelope.
	ModeTransportError
)

// Server is the stub backend.
type Server struct {
	mu      sync.RWMutex
	matrix  []Skill
	catalog model.SkillCatalog
	users   map[string]User
	modes   map[string]Mode
	hits    map[string]int
	delay   time.Duration
	logger  logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithDelay delays every answer.
func WithDelay(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithoutUsers starts with an empty directory.
func WithoutUsers() Option {
	return func(s *Server) { s.users = map[string]User{} }
}

// WithCatalog replaces the skill catalog served by skills-lista.
func WithCatalog(c model.SkillCatalog) Option {
	return func(s *Server) { s.catalog = c }
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Server seeded with the default matrix and users.
func New(opts ...Option) *Server {
	s := &Server{
		matrix:  append([]Skill(nil), Matrix...),
		catalog: catalog.Fallback(),
		modes:   map[string]Mode{},
		hits:    map[string]int{},
		logger:  logger.Nop(),
	}
	s.users = make(map[string]User, len(seedUsers))
	for _, u := range seedUsers {
		s.users[u.id] = s.profile(u.id, u.name, u.experience, u.objective, u.skills)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetMode changes how path answers.
func (s *Server) SetMode(path string, m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes[path] = m
}

// Hits returns how many requests path received.
func (s *Server) Hits(path string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hits[path]
}

// User returns a stored profile.
func (s *Server) User(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

// Handler serves the backend API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+backend.PathDashboard, s.guard(backend.PathDashboard, s.handleDashboard))
	mux.HandleFunc("GET "+backend.PathSkills, s.guard(backend.PathSkills, s.handleSkills))
	mux.HandleFunc("GET "+backend.PathUsers, s.guard(backend.PathUsers, s.handleUsers))
	mux.HandleFunc("GET "+backend.PathMarket, s.guard(backend.PathMarket, s.handleMarket))
	mux.HandleFunc("POST "+backend.PathRegister, s.guard(backend.PathRegister, s.handleRegister))
	return mux
}

func (s *Server) guard(path string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[path]++
		mode := s.modes[path]
		delay := s.delay
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		switch mode {
		case ModeBackendError:
			fail(w, http.StatusInternalServerError, "Error obteniendo datos")
		case ModeTransportError:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html><body>Bad Gateway</body></html>"))
		default:
			next(w, r)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	matrix := append([]Skill(nil), s.matrix...)
	users := len(s.users)
	s.mu.RUnlock()

	critical, total := 0, 0.0
	for _, sk := range matrix {
		if sk.Importance == "Crítica" {
			critical++
		}
		total += sk.MarketPercentage
	}
	avg := 0.0
	if len(matrix) > 0 {
		avg = math.Round(total/float64(len(matrix))*10) / 10
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"metricas": map[string]any{
			"total_habilidades":   len(matrix),
			"alta_prioridad":      critical,
			"puntuacion_promedio": avg,
			"total_usuarios":      users,
		},
		"bar_chart":   barChart(matrix),
		"matriz_data": matrix,
	})
}

func barChart(matrix []Skill) map[string]any {
	asc := append([]Skill(nil), matrix...)
	sort.SliceStable(asc, func(i, j int) bool { return asc[i].MarketPercentage < asc[j].MarketPercentage })
	names := make([]string, len(asc))
	values := make([]float64, len(asc))
	for i, sk := range asc {
		names[i] = sk.Name
		values[i] = sk.MarketPercentage
	}
	return map[string]any{
		"data": []map[string]any{{
			"type":        "bar",
			"orientation": "h",
			"x":           values,
			"y":           names,
		}},
		"layout": map[string]any{
			"title":  "📊 Habilidades Más Demandadas",
			"height": 500,
			"xaxis":  map[string]any{"title": "Porcentaje de Demanda"},
		},
	}
}

// MarketSource is the fuente reported by the market analysis endpoint.
const MarketSource = "Matriz de demanda del mercado"

func (s *Server) handleMarket(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	shares := make(map[string]float64, len(s.matrix))
	for _, sk := range s.matrix {
		shares[sk.Name] = sk.MarketPercentage
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "analisis": shares, "fuente": MarketSource})
}

func (s *Server) handleSkills(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	c := s.catalog
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"skills": map[string][]string{
			"tecnicas": c[model.GroupTechnical],
			"analisis": c[model.GroupAnalysis],
			"gestion":  c[model.GroupManagement],
		},
	})
}

func (s *Server) handleUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	users := make(map[string]User, len(s.users))
	for id, u := range s.users {
		users[id] = u
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "usuarios": users})
}

type registerRequest struct {
	UserID     string   `json:"user_id"`
	Name       string   `json:"nombre"`
	Experience string   `json:"experiencia"`
	Objective  string   `json:"objetivo"`
	Skills     []string `json:"habilidades"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Solicitud inválida")
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Name) == "" ||
		strings.TrimSpace(req.Experience) == "" || strings.TrimSpace(req.Objective) == "" || len(req.Skills) == 0 {
		fail(w, http.StatusBadRequest, "Todos los campos son obligatorios")
		return
	}

	s.mu.Lock()
	if _, exists := s.users[req.UserID]; exists {
		s.mu.Unlock()
		fail(w, http.StatusConflict, "El usuario ya existe")
		return
	}
	u := s.profile(req.UserID, req.Name, req.Experience, req.Objective, req.Skills)
	s.users[req.UserID] = u
	s.mu.Unlock()

	s.logger.Info(r.Context(), "user registered", logger.String("user_id", req.UserID))
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"message":         "🎉 Perfil creado exitosamente",
		"recomendaciones": u.Recommended,
		"user_data": map[string]any{
			"user_id":               u.ID,
			"nombre":                u.Name,
			"skills_actuales":       u.Current,
			"recomendaciones":       u.Recommended,
			"puntuacion_adecuacion": u.Fit,
		},
	})
}

// profile derives recommendations and fit from the matrix: the most
// demanded skills the user lacks, and the demand-weighted share of the top
// skills the user holds.
func (s *Server) profile(id, name, experience, objective string, skills []string) User {
	held := make(map[string]bool, len(skills))
	for _, sk := range skills {
		held[strings.ToLower(sk)] = true
	}

	recs := []string{}
	var covered, window float64
	for i, sk := range s.matrix {
		if i < fitWindow {
			window += sk.MarketPercentage
			if held[strings.ToLower(sk.Name)] {
				covered += sk.MarketPercentage
			}
		}
		if !held[strings.ToLower(sk.Name)] && len(recs) < maxRecommendations {
			recs = append(recs, sk.Name)
		}
	}
	fit := 0.0
	if window > 0 {
		fit = math.Round(covered / window * 100)
	}
	gap := ""
	if len(recs) > 0 {
		gap = recs[0]
	}
	return User{
		ID:          id,
		Name:        name,
		Experience:  experience,
		Objective:   objective,
		Current:     append([]string(nil), skills...),
		Recommended: recs,
		Fit:         fit,
		Gap:         gap,
	}
}
