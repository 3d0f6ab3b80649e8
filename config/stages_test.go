package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageNames(t *testing.T) {
	names := StageNames()
	assert.Len(t, names, 7)
	assert.Equal(t, "Novo Lead", names[0])
	assert.Equal(t, "Fechamento", names[6])
}

func TestIsValidStage(t *testing.T) {
	tests := []struct {
		name  string
		stage string
		valid bool
	}{
		{"First stage", "Novo Lead", true},
		{"Middle stage", "Em Negociação", true},
		{"Last stage", "Fechamento", true},
		{"Unknown stage", "Perdido", false},
		{"Empty stage", "", false},
		{"Case sensitive", "novo lead", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidStage(tt.stage))
		})
	}
}

func TestNormalizeStage(t *testing.T) {
	assert.Equal(t, "Qualificado", NormalizeStage("Qualificado"))
	assert.Equal(t, DefaultStage, NormalizeStage(""))
	assert.Equal(t, DefaultStage, NormalizeStage("whatever"))
}
