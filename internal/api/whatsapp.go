package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"imobdesk/server/internal/auth"
	"imobdesk/server/internal/models"
)

// CreateWhatsAppInstance registers a gateway instance for the caller.
// Each broker gets at most one instance, keyed by their user id.
func (h *Handler) CreateWhatsAppInstance(c *gin.Context) {
	if !h.whatsapp.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "whatsapp gateway is not configured"})
		return
	}

	var req models.WhatsAppInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := auth.UserID(c)
	instanceKey := fmt.Sprintf("imobdesk-%s", userID)

	if err := h.whatsapp.CreateInstance(c.Request.Context(), instanceKey); err != nil {
		h.logger.WithError(err).Error("Failed to create whatsapp instance")
		RecordGatewayError("whatsapp")
		c.JSON(http.StatusBadGateway, gin.H{"error": "gateway rejected instance creation"})
		return
	}

	now := time.Now()
	instance := &models.WhatsAppInstance{
		Name:        req.Name,
		InstanceKey: instanceKey,
		Phone:       req.Phone,
		Status:      models.InstanceDisconnected,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.db.UpsertWhatsAppInstance(c.Request.Context(), instance); err != nil {
		h.logger.WithError(err).Error("Failed to store whatsapp instance")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store instance"})
		return
	}
	c.JSON(http.StatusCreated, instance)
}

func (h *Handler) GetWhatsAppInstance(c *gin.Context) {
	instance, err := h.db.GetWhatsAppInstance(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get whatsapp instance")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get instance"})
		return
	}
	if instance == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no instance registered"})
		return
	}
	c.JSON(http.StatusOK, instance)
}

// GetWhatsAppQRCode fetches a pairing code from the gateway and marks
// the instance as pairing
func (h *Handler) GetWhatsAppQRCode(c *gin.Context) {
	instance, err := h.db.GetWhatsAppInstance(c.Request.Context(), auth.UserID(c))
	if err != nil || instance == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no instance registered"})
		return
	}

	qr, err := h.whatsapp.GetQRCode(c.Request.Context(), instance.InstanceKey)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get QR code")
		RecordGatewayError("whatsapp")
		c.JSON(http.StatusBadGateway, gin.H{"error": "gateway did not return a QR code"})
		return
	}

	if err := h.db.UpdateWhatsAppStatus(c.Request.Context(), instance.InstanceKey, models.InstancePairing); err != nil {
		h.logger.WithError(err).Warn("Failed to mark instance as pairing")
	}
	c.JSON(http.StatusOK, gin.H{"qrcode": qr})
}

// GetWhatsAppStatus asks the gateway for the live connection state and
// stores it
func (h *Handler) GetWhatsAppStatus(c *gin.Context) {
	instance, err := h.db.GetWhatsAppInstance(c.Request.Context(), auth.UserID(c))
	if err != nil || instance == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no instance registered"})
		return
	}

	status, err := h.whatsapp.ConnectionStatus(c.Request.Context(), instance.InstanceKey)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get connection status")
		RecordGatewayError("whatsapp")
		c.JSON(http.StatusBadGateway, gin.H{"error": "gateway did not return a status"})
		return
	}

	if status != instance.Status {
		if err := h.db.UpdateWhatsAppStatus(c.Request.Context(), instance.InstanceKey, status); err != nil {
			h.logger.WithError(err).Warn("Failed to store connection status")
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (h *Handler) DisconnectWhatsApp(c *gin.Context) {
	userID := auth.UserID(c)
	instance, err := h.db.GetWhatsAppInstance(c.Request.Context(), userID)
	if err != nil || instance == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no instance registered"})
		return
	}

	if err := h.whatsapp.Disconnect(c.Request.Context(), instance.InstanceKey); err != nil {
		h.logger.WithError(err).Warn("Gateway disconnect failed, removing instance anyway")
	}
	if err := h.db.DeleteWhatsAppInstance(c.Request.Context(), userID); err != nil {
		h.logger.WithError(err).Error("Failed to delete whatsapp instance")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete instance"})
		return
	}
	c.Status(http.StatusNoContent)
}

type sendMessageRequest struct {
	Phone string `json:"phone" binding:"required"`
	Text  string `json:"text" binding:"required"`
}

func (h *Handler) SendWhatsAppMessage(c *gin.Context) {
	instance, err := h.db.GetWhatsAppInstance(c.Request.Context(), auth.UserID(c))
	if err != nil || instance == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no instance registered"})
		return
	}
	if instance.Status != models.InstanceConnected {
		c.JSON(http.StatusConflict, gin.H{"error": "instance is not connected"})
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone and text are required"})
		return
	}

	if err := h.whatsapp.SendText(c.Request.Context(), instance.InstanceKey, req.Phone, req.Text); err != nil {
		h.logger.WithError(err).Error("Failed to send whatsapp message")
		RecordGatewayError("whatsapp")
		c.JSON(http.StatusBadGateway, gin.H{"error": "gateway rejected the message"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true})
}
