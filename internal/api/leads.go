package api

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"imobdesk/server/config"
	"imobdesk/server/internal/auth"
	"imobdesk/server/internal/intake"
	"imobdesk/server/internal/models"
)

// GetLeads returns the caller's mirrored pipeline. `?reload=true`
// forces a full refetch, which is the recovery path after a failed load.
func (h *Handler) GetLeads(c *gin.Context) {
	store := h.stores.Get(c.Request.Context(), auth.UserID(c))
	if c.Query("reload") == "true" {
		if err := store.Load(c.Request.Context()); err != nil {
			h.logger.WithError(err).Error("Failed to reload leads")
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"leads": store.Leads(),
		"error": store.Err(),
	})
}

func (h *Handler) CreateLead(c *gin.Context) {
	var input models.LeadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := h.stores.Get(c.Request.Context(), auth.UserID(c))
	lead := store.CreateLead(c.Request.Context(), input)
	if lead == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lead needs a name and an email or phone"})
		return
	}
	c.JSON(http.StatusCreated, lead)
}

func (h *Handler) UpdateLead(c *gin.Context) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := h.stores.Get(c.Request.Context(), auth.UserID(c))
	lead, err := store.UpdateLead(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		h.logger.WithError(err).WithField("lead_id", c.Param("id")).Error("Failed to update lead")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update lead"})
		return
	}
	if lead == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		return
	}
	c.JSON(http.StatusOK, lead)
}

type moveStageRequest struct {
	Stage string `json:"stage" binding:"required"`
}

func (h *Handler) MoveLeadStage(c *gin.Context) {
	var req moveStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stage is required"})
		return
	}
	if !config.IsValidStage(req.Stage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown funnel stage"})
		return
	}

	store := h.stores.Get(c.Request.Context(), auth.UserID(c))
	moved, err := store.MoveLeadToStage(c.Request.Context(), c.Param("id"), req.Stage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to move lead"})
		return
	}
	if !moved {
		c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"moved": true})
}

func (h *Handler) DeleteLead(c *gin.Context) {
	store := h.stores.Get(c.Request.Context(), auth.UserID(c))
	deleted, err := store.DeleteLead(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete lead"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// IntakeLeads accepts a batch of leads from an external capture source
// and hands it to the background processor
func (h *Handler) IntakeLeads(c *gin.Context) {
	var inputs []models.LeadInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(inputs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty batch"})
		return
	}

	userID := auth.UserID(c)
	now := time.Now()
	batch := make([]*models.Lead, 0, len(inputs))
	for _, input := range inputs {
		stage := config.NormalizeStage(input.Stage)
		batch = append(batch, &models.Lead{
			ID:             uuid.NewString(),
			Name:           input.Name,
			Email:          input.Email,
			Phone:          input.Phone,
			Address:        input.Address,
			MaritalStatus:  input.MaritalStatus,
			CPF:            input.CPF,
			Source:         input.Source,
			Stage:          stage,
			Interest:       input.Interest,
			EstimatedValue: input.EstimatedValue,
			Notes:          input.Notes,
			PropertyID:     input.PropertyID,
			UserID:         userID,
			ContactDate:    now,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	if err := h.intake.Enqueue(batch); err != nil {
		h.logger.WithError(err).WithField("count", len(batch)).Error("Failed to enqueue lead batch")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "intake is busy, retry later"})
		return
	}
	RecordLeadsIngested("webhook", len(batch))
	c.JSON(http.StatusAccepted, gin.H{"accepted": len(batch)})
}

// ImportLeads parses an uploaded CSV or XLSX spreadsheet and enqueues
// the resulting leads
func (h *Handler) ImportLeads(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	leads, result, err := intake.ParseLeadFile(content, ext, auth.UserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(leads) > 0 {
		if err := h.intake.Enqueue(leads); err != nil {
			h.logger.WithError(err).WithFields(logrus.Fields{
				"file":  header.Filename,
				"count": len(leads),
			}).Error("Failed to enqueue imported leads")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "intake is busy, retry later"})
			return
		}
		RecordLeadsIngested("import", len(leads))
	}
	c.JSON(http.StatusOK, result)
}
