package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"imobdesk/server/internal/auth"
	"imobdesk/server/internal/models"
)

type uploadTemplateRequest struct {
	Name    string `json:"name" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func (h *Handler) UploadContractTemplate(c *gin.Context) {
	var req uploadTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and content are required"})
		return
	}

	template, err := h.contracts.UploadTemplate(c.Request.Context(), req.Name, req.Content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, template)
}

func (h *Handler) ListContractTemplates(c *gin.Context) {
	templates, err := h.db.ListContractTemplates(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list contract templates")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list templates"})
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *Handler) DeleteContractTemplate(c *gin.Context) {
	if err := h.db.SoftDeleteContractTemplate(c.Request.Context(), c.Param("id")); err != nil {
		h.logger.WithError(err).Error("Failed to delete contract template")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete template"})
		return
	}
	c.Status(http.StatusNoContent)
}

type generateContractRequest struct {
	TemplateID string  `json:"template_id" binding:"required"`
	LeadID     string  `json:"lead_id" binding:"required"`
	PropertyID *string `json:"property_id"`
}

func (h *Handler) GenerateContract(c *gin.Context) {
	var req generateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "template_id and lead_id are required"})
		return
	}

	contract, err := h.contracts.Generate(c.Request.Context(), req.TemplateID, req.LeadID, auth.UserID(c), req.PropertyID)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, contract)
}

func (h *Handler) ListContracts(c *gin.Context) {
	contracts, err := h.db.GetContractsByUser(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to list contracts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list contracts"})
		return
	}
	c.JSON(http.StatusOK, contracts)
}

type contractStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) UpdateContractStatus(c *gin.Context) {
	var req contractStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	switch req.Status {
	case models.ContractDraft, models.ContractIssued, models.ContractSigned:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown contract status"})
		return
	}

	if err := h.db.UpdateContractStatus(c.Request.Context(), c.Param("id"), auth.UserID(c), req.Status); err != nil {
		h.logger.WithError(err).Error("Failed to update contract status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

func (h *Handler) DeleteContract(c *gin.Context) {
	if err := h.db.SoftDeleteContract(c.Request.Context(), c.Param("id"), auth.UserID(c)); err != nil {
		h.logger.WithError(err).Error("Failed to delete contract")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete contract"})
		return
	}
	c.Status(http.StatusNoContent)
}
