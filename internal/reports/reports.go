// Package reports aggregates the sales funnel and exports it as a
// spreadsheet.
package reports

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"imobdesk/server/config"
	"imobdesk/server/internal/models"
)

// StageSummary is one funnel column in the pipeline report
type StageSummary struct {
	Stage          string  `json:"stage"`
	Count          int     `json:"count"`
	EstimatedValue float64 `json:"estimated_value"`
}

// PipelineReport is the aggregated funnel for one broker
type PipelineReport struct {
	GeneratedAt time.Time      `json:"generated_at"`
	TotalLeads  int            `json:"total_leads"`
	TotalValue  float64        `json:"total_value"`
	Stages      []StageSummary `json:"stages"`
}

// BuildPipelineReport groups leads by funnel stage. Every configured
// stage appears in the result even when empty, so the report columns
// stay stable across exports.
func BuildPipelineReport(leads []models.Lead) *PipelineReport {
	byStage := make(map[string]*StageSummary)
	stages := make([]StageSummary, 0, len(config.FunnelStages))

	report := &PipelineReport{GeneratedAt: time.Now()}
	for _, stage := range config.FunnelStages {
		stages = append(stages, StageSummary{Stage: stage.Name})
		byStage[stage.Name] = &stages[len(stages)-1]
	}

	for _, lead := range leads {
		summary := byStage[config.NormalizeStage(lead.Stage)]
		summary.Count++
		summary.EstimatedValue += lead.EstimatedValue
		report.TotalLeads++
		report.TotalValue += lead.EstimatedValue
	}

	report.Stages = stages
	return report
}

const pipelineSheet = "Pipeline"

// WritePipelineXLSX renders the report plus a per-lead detail sheet
func WritePipelineXLSX(w io.Writer, report *PipelineReport, leads []models.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(pipelineSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"Etapa", "Leads", "Valor Estimado"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(pipelineSheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for row, stage := range report.Stages {
		values := []interface{}{stage.Stage, stage.Count, stage.EstimatedValue}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(pipelineSheet, cell, v); err != nil {
				return fmt.Errorf("failed to write stage row: %w", err)
			}
		}
	}
	totalRow := len(report.Stages) + 2
	cell, _ := excelize.CoordinatesToCellName(1, totalRow)
	_ = f.SetCellValue(pipelineSheet, cell, "Total")
	cell, _ = excelize.CoordinatesToCellName(2, totalRow)
	_ = f.SetCellValue(pipelineSheet, cell, report.TotalLeads)
	cell, _ = excelize.CoordinatesToCellName(3, totalRow)
	_ = f.SetCellValue(pipelineSheet, cell, report.TotalValue)

	if err := writeLeadSheet(f, leads); err != nil {
		return err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeLeadSheet(f *excelize.File, leads []models.Lead) error {
	const sheet = "Leads"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headers := []string{"Nome", "Email", "Telefone", "Origem", "Etapa", "Interesse", "Valor Estimado", "Data de Contato"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for row, lead := range leads {
		values := []interface{}{
			lead.Name, lead.Email, lead.Phone, lead.Source,
			lead.Stage, lead.Interest, lead.EstimatedValue,
			lead.ContactDate.Format("2006-01-02"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write lead row: %w", err)
			}
		}
	}
	return nil
}
