package page

// Region ids shared by the skeletons and the view-models.
const (
	IDAlerts = "alert-container"
	IDTheme  = "themeToggle"

	// dashboard
	IDMetricSkills   = "metric-habilidades"
	IDMetricPriority = "metric-prioridad"
	IDMetricScore    = "metric-puntuacion"
	IDMetricUsers    = "metric-usuarios"
	IDChart          = "priorizacion-chart"
	IDSkillsTable    = "tabla-habilidades-body"
	IDLastUpdated    = "dashboard-actualizado"

	// registration
	IDRegistrationCard = "registro-card"
	IDRegistrationForm = "registro-form"
	IDSkillsTechnical  = "skills-tecnicas"
	IDSkillsAnalysis   = "skills-analisis"
	IDSkillsManagement = "skills-gestion"
	IDSelectedSkills   = "habilidades-seleccionadas"
	IDSelectedCounter  = "contador-skills"
	IDSubmit           = "registro-submit"
	IDResults          = "resultados-registro"

	// profile
	IDUserSelector     = "usuario-selector"
	IDEmptyState       = "estado-vacio"
	IDProfileContent   = "perfil-contenido"
	IDUserName         = "usuario-nombre"
	IDUserExperience   = "usuario-experiencia"
	IDUserObjective    = "usuario-objetivo"
	IDUserFit          = "puntuacion-adecuacion"
	IDUserMetrics      = "metricas-usuario"
	IDCurrentSkills    = "habilidades-actuales-list"
	IDRecommendedSkill = "habilidades-recomendadas-list"
	IDGapChart         = "grafico-brechas"
	IDActionPlan       = "plan-accion"

	// market analysis
	IDMarketSource = "analisis-fuente"
	IDMarketChart  = "analisis-chart"
	IDMarketTable  = "analisis-tabla-body"
)

// Form field names posted by the registration form.
const (
	FieldUserID     = "user_id"
	FieldName       = "name"
	FieldExperience = "experience"
	FieldObjective  = "objective"
	FieldSkill      = "skill"
	FieldChecked    = "checked"
	FieldID         = "id"
)
