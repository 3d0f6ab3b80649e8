package config

// Stage represents one column of the sales funnel
type Stage struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// DefaultStage is assigned when a lead arrives with an unknown or empty stage
const DefaultStage = "Novo Lead"

// FunnelStages is the fixed, ordered sales funnel
var FunnelStages = []Stage{
	{Name: "Novo Lead", Position: 0},
	{Name: "Qualificado", Position: 1},
	{Name: "Visita Agendada", Position: 2},
	{Name: "Em Negociação", Position: 3},
	{Name: "Documentação", Position: 4},
	{Name: "Contrato", Position: 5},
	{Name: "Fechamento", Position: 6},
}

// StageNames returns the ordered list of funnel stage names
func StageNames() []string {
	names := make([]string, len(FunnelStages))
	for i, stage := range FunnelStages {
		names[i] = stage.Name
	}
	return names
}

// IsValidStage reports whether name is a member of the funnel
func IsValidStage(name string) bool {
	for _, stage := range FunnelStages {
		if stage.Name == name {
			return true
		}
	}
	return false
}

// NormalizeStage maps unknown or empty stages to the default stage
func NormalizeStage(name string) string {
	if IsValidStage(name) {
		return name
	}
	return DefaultStage
}
