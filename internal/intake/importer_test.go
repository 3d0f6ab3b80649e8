package intake

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLeadFile_CSV(t *testing.T) {
	csv := strings.Join([]string{
		"Nome,Email,Telefone,Origem,Etapa,Valor",
		"João Silva,joao@example.com,11999999999,Facebook,Qualificado,\"350000.50\"",
		"Maria Souza,,11888888888,Indicação,,",
		"Sem Contato,,,Portal,,",
	}, "\n")

	leads, result, err := ParseLeadFile([]byte(csv), ".csv", "broker-1")
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, leads, 2)

	assert.Equal(t, "João Silva", leads[0].Name)
	assert.Equal(t, "Qualificado", leads[0].Stage)
	assert.Equal(t, 350000.50, leads[0].EstimatedValue)
	assert.Equal(t, "broker-1", leads[0].UserID)

	// Missing stage defaults
	assert.Equal(t, "Novo Lead", leads[1].Stage)
	assert.NotEqual(t, leads[0].ID, leads[1].ID)
}

func TestParseLeadFile_CommaDecimal(t *testing.T) {
	csv := "nome,telefone,valor\nAna,119,\"1250,75\"\n"
	leads, result, err := ParseLeadFile([]byte(csv), ".csv", "broker-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1250.75, leads[0].EstimatedValue)
}

func TestParseLeadFile_NoHeader(t *testing.T) {
	csv := "foo,bar\n1,2\n"
	_, _, err := ParseLeadFile([]byte(csv), ".csv", "broker-1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no name column")
}

func TestParseLeadFile_Empty(t *testing.T) {
	_, _, err := ParseLeadFile([]byte("nome,email\n"), ".csv", "broker-1")
	assert.Error(t, err)
}

func TestParseLeadFile_UnsupportedType(t *testing.T) {
	_, _, err := ParseLeadFile([]byte("x"), ".pdf", "broker-1")
	assert.Error(t, err)
}
