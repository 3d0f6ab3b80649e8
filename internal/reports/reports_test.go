package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"imobdesk/server/config"
	"imobdesk/server/internal/models"
)

func sampleLeads() []models.Lead {
	return []models.Lead{
		{Name: "João Silva", Stage: "Novo Lead", EstimatedValue: 450000, ContactDate: time.Now()},
		{Name: "Maria Souza", Stage: "Novo Lead", EstimatedValue: 320000, ContactDate: time.Now()},
		{Name: "Pedro Lima", Stage: "Em Negociação", EstimatedValue: 610000, ContactDate: time.Now()},
	}
}

func TestBuildPipelineReport(t *testing.T) {
	report := BuildPipelineReport(sampleLeads())

	assert.Equal(t, 3, report.TotalLeads)
	assert.InDelta(t, 1380000, report.TotalValue, 0.01)

	// Every configured stage appears even when empty
	assert.Len(t, report.Stages, len(config.FunnelStages))

	assert.Equal(t, "Novo Lead", report.Stages[0].Stage)
	assert.Equal(t, 2, report.Stages[0].Count)
	assert.InDelta(t, 770000, report.Stages[0].EstimatedValue, 0.01)

	// Empty stage keeps its slot with zero counters
	assert.Equal(t, "Contrato", report.Stages[5].Stage)
	assert.Equal(t, 0, report.Stages[5].Count)
}

func TestBuildPipelineReportNormalizesUnknownStages(t *testing.T) {
	// Stages outside the funnel land in the default column
	leads := []models.Lead{{Name: "Ana", Stage: "Arquivado", EstimatedValue: 100}}
	report := BuildPipelineReport(leads)

	assert.Equal(t, 1, report.TotalLeads)
	assert.Equal(t, config.DefaultStage, report.Stages[0].Stage)
	assert.Equal(t, 1, report.Stages[0].Count)
}

func TestWritePipelineXLSX(t *testing.T) {
	leads := sampleLeads()
	report := BuildPipelineReport(leads)

	var buf bytes.Buffer
	require.NoError(t, WritePipelineXLSX(&buf, report, leads))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	stage, err := f.GetCellValue("Pipeline", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Novo Lead", stage)

	count, err := f.GetCellValue("Pipeline", "B2")
	require.NoError(t, err)
	assert.Equal(t, "2", count)

	name, err := f.GetCellValue("Leads", "A2")
	require.NoError(t, err)
	assert.Equal(t, "João Silva", name)
}
