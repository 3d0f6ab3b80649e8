package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"imobdesk/server/internal/auth"
	"imobdesk/server/internal/reports"
)

// GetPipelineReport returns the caller's funnel aggregated per stage
func (h *Handler) GetPipelineReport(c *gin.Context) {
	store := h.stores.Get(c.Request.Context(), auth.UserID(c))
	c.JSON(http.StatusOK, reports.BuildPipelineReport(store.Leads()))
}

// ExportPipelineXLSX streams the funnel report as a spreadsheet
func (h *Handler) ExportPipelineXLSX(c *gin.Context) {
	store := h.stores.Get(c.Request.Context(), auth.UserID(c))
	leads := store.Leads()
	report := reports.BuildPipelineReport(leads)

	filename := fmt.Sprintf("pipeline-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := reports.WritePipelineXLSX(c.Writer, report, leads); err != nil {
		h.logger.WithError(err).Error("Failed to export pipeline report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export report"})
		return
	}
}
